package board

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ldevreaux/gambit/model"
)

// NameIndex holds decorated names for both sides. Same-named units are
// disambiguated by occurrence order in ascending-ID order: the first keeps
// the bare name, later ones get "Name#2", "Name#3"… Labels are per-turn
// artifacts; the unit ID is the identity that survives across snapshots.
type NameIndex struct {
	Self  *SideIndex
	Enemy *SideIndex
}

// SideIndex is the decoration for one side's units.
type SideIndex struct {
	Labels map[int]string   // unit id → decorated label
	Groups map[string][]int // lowercase base name → unit ids, ascending
}

func buildNameIndex(snap *model.Snapshot) *NameIndex {
	return &NameIndex{
		Self:  decorate(snap.SelfUnits),
		Enemy: decorate(snap.EnemyUnits),
	}
}

func decorate(units []model.Unit) *SideIndex {
	idx := &SideIndex{
		Labels: make(map[int]string, len(units)),
		Groups: make(map[string][]int),
	}
	names := make(map[int]string, len(units))
	for _, u := range units {
		key := strings.ToLower(u.Name)
		idx.Groups[key] = append(idx.Groups[key], u.UnitID)
		names[u.UnitID] = u.Name
	}
	for _, ids := range idx.Groups {
		sort.Ints(ids)
		for i, id := range ids {
			if i == 0 {
				idx.Labels[id] = names[id]
			} else {
				idx.Labels[id] = fmt.Sprintf("%s#%d", names[id], i+1)
			}
		}
	}
	return idx
}

// Label returns a unit's decorated name from either side, or "".
func (n *NameIndex) Label(unitID int) string {
	if l, ok := n.Self.Labels[unitID]; ok {
		return l
	}
	if l, ok := n.Enemy.Labels[unitID]; ok {
		return l
	}
	return ""
}
