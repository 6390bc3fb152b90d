// Package board turns a raw snapshot into a symbolic view of the battle:
// a topology graph over cell indices, coarse zone labels, disambiguated
// unit names, role classification and a battle report for the intent
// source. Everything is rebuilt from scratch each snapshot — unit ID is
// the stable identity, never the label.
package board

import (
	"github.com/ldevreaux/gambit/model"
)

// Analysis is the perception output for one snapshot. All derived data
// degrades gracefully: unknown dimensions yield zone "unknown", missing
// preview rows yield empty hint lists. Nothing here returns an error.
type Analysis struct {
	Width   int
	Height  int
	Forward int // sign of (enemy hero row - self hero row); 0 when unknown

	Topo   *Topology
	Names  *NameIndex
	Report Report

	snap *model.Snapshot
}

// Analyze builds the full perception view for one snapshot.
func Analyze(snap *model.Snapshot) *Analysis {
	a := &Analysis{snap: snap}
	a.inferDimensions()
	a.Topo = buildTopology(snap)
	a.Names = buildNameIndex(snap)
	a.Report = a.buildReport()
	return a
}

// inferDimensions takes client-supplied board dimensions when present and
// derives height from the max observed cell index otherwise. Width cannot
// be derived from cell indices alone; without it zones stay "unknown".
func (a *Analysis) inferDimensions() {
	s := a.snap
	a.Width = s.BoardWidth
	if a.Width <= 0 {
		return
	}
	a.Height = s.BoardHeight
	if a.Height <= 0 {
		max := maxCellIndex(s)
		a.Height = max/a.Width + 1
	}
	selfRow := s.Self.HeroCell / a.Width
	enemyRow := s.Enemy.HeroCell / a.Width
	switch {
	case enemyRow > selfRow:
		a.Forward = 1
	case enemyRow < selfRow:
		a.Forward = -1
	}
}

func maxCellIndex(s *model.Snapshot) int {
	max := 0
	consider := func(c int) {
		if c > max {
			max = c
		}
	}
	consider(s.Self.HeroCell)
	consider(s.Enemy.HeroCell)
	for _, u := range s.SelfUnits {
		consider(u.Cell)
	}
	for _, u := range s.EnemyUnits {
		consider(u.Cell)
	}
	for _, act := range s.LegalActions {
		switch {
		case act.MoveUnit != nil:
			consider(act.MoveUnit.ToCell)
		case act.PlayCard != nil:
			consider(act.PlayCard.Cell)
		}
	}
	for _, row := range s.TacticalPreview {
		consider(row.ToCell)
	}
	return max
}

// Snapshot exposes the underlying snapshot for callers that already hold
// an Analysis (the resolver reads hand and unit stats through it).
func (a *Analysis) Snapshot() *model.Snapshot { return a.snap }

// Label returns the decorated name for a unit on either side, or "" when
// the unit is not in the snapshot.
func (a *Analysis) Label(unitID int) string { return a.Names.Label(unitID) }
