package board

import (
	"fmt"
	"sort"
	"strings"
)

// Report is the symbolic battle report handed to the intent source and the
// fast-path engine. It is self-contained: labels instead of raw IDs, zones
// instead of cell indices, plus the hint lists that make move-then-attack
// reasoning possible without geometry.
type Report struct {
	Turn      int
	Mana      int
	SelfHero  HeroStatus
	EnemyHero HeroStatus
	Units     []UnitStatus // own units
	Enemies   []UnitStatus
	Hand      []CardStatus
}

type HeroStatus struct {
	HP   int
	Cell int
	Zone ZoneLabel
}

type UnitStatus struct {
	UnitID    int
	Label     string
	Role      Role
	Zone      ZoneLabel
	HP        int
	Atk       int
	CanAttack bool

	// HeroDistance is hops to the opposing hero, -1 when unknown.
	HeroDistance int

	// TargetsNow lists labels attackable this instant ("enemy_hero" for a
	// direct strike). TargetsAfterMove lists what becomes attackable after
	// moving, with the enabling destination cell.
	TargetsNow       []string
	TargetsAfterMove []MoveTarget
}

type MoveTarget struct {
	Label   string
	ViaCell int
}

type CardStatus struct {
	CardID        int
	Name          string
	Cost          int
	Affordable    bool
	PlayableZones []ZoneLabel
}

func (a *Analysis) buildReport() Report {
	s := a.snap
	r := Report{
		Turn:      s.Turn,
		Mana:      s.Self.Mana,
		SelfHero:  HeroStatus{HP: s.Self.HeroHP, Cell: s.Self.HeroCell, Zone: a.Zone(s.Self.HeroCell)},
		EnemyHero: HeroStatus{HP: s.Enemy.HeroHP, Cell: s.Enemy.HeroCell, Zone: a.Zone(s.Enemy.HeroCell)},
	}

	// Immediate attack targets, grouped by attacker.
	targetsNow := make(map[int][]string)
	for _, act := range s.LegalActions {
		if act.UnitAttack == nil {
			continue
		}
		atk := act.UnitAttack
		label := "enemy_hero"
		if atk.TargetUnitID != nil {
			label = a.Names.Label(*atk.TargetUnitID)
		}
		if label != "" {
			targetsNow[atk.AttackerUnitID] = append(targetsNow[atk.AttackerUnitID], label)
		}
	}

	// Future targets unlocked by a move, from the preview rows.
	afterMove := make(map[int][]MoveTarget)
	for _, row := range s.TacticalPreview {
		for _, pa := range row.Attacks {
			if label := a.Names.Label(pa.TargetUnitID); label != "" {
				afterMove[row.UnitID] = append(afterMove[row.UnitID], MoveTarget{Label: label, ViaCell: row.ToCell})
			}
		}
	}

	for _, u := range s.SelfUnits {
		dist := -1
		if d, ok := a.Topo.DistanceFromEnemy(u.Cell); ok {
			dist = d
		}
		r.Units = append(r.Units, UnitStatus{
			UnitID:           u.UnitID,
			Label:            a.Names.Self.Labels[u.UnitID],
			Role:             classifyRole(u, s.Self.HeroCell),
			Zone:             a.Zone(u.Cell),
			HP:               u.HP,
			Atk:              u.Atk,
			CanAttack:        u.CanAttack,
			HeroDistance:     dist,
			TargetsNow:       targetsNow[u.UnitID],
			TargetsAfterMove: afterMove[u.UnitID],
		})
	}
	for _, u := range s.EnemyUnits {
		dist := -1
		if d, ok := a.Topo.DistanceFromSelf(u.Cell); ok {
			dist = d
		}
		r.Enemies = append(r.Enemies, UnitStatus{
			UnitID:       u.UnitID,
			Label:        a.Names.Enemy.Labels[u.UnitID],
			Role:         classifyRole(u, s.Enemy.HeroCell),
			Zone:         a.Zone(u.Cell),
			HP:           u.HP,
			Atk:          u.Atk,
			CanAttack:    u.CanAttack,
			HeroDistance: dist,
		})
	}

	// Hand summary with the zones each card can actually reach.
	for _, c := range s.Self.Hand {
		zones := make(map[ZoneLabel]bool)
		for _, act := range s.LegalActions {
			if act.PlayCard != nil && act.PlayCard.CardID == c.CardID {
				zones[a.Zone(act.PlayCard.Cell)] = true
			}
		}
		var list []ZoneLabel
		for z := range zones {
			list = append(list, z)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		r.Hand = append(r.Hand, CardStatus{
			CardID:        c.CardID,
			Name:          c.Name,
			Cost:          c.ManaCost,
			Affordable:    c.ManaCost <= s.Self.Mana,
			PlayableZones: list,
		})
	}

	return r
}

// Render produces the human-readable situation summary sent to the intent
// source. Deterministic ordering so identical states render identically.
func (r Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Turn %d | Mana: %d\n", r.Turn, r.Mana)
	fmt.Fprintf(&b, "Our hero: %d HP (%s) | Enemy hero: %d HP (%s)\n",
		r.SelfHero.HP, r.SelfHero.Zone, r.EnemyHero.HP, r.EnemyHero.Zone)

	if len(r.Units) > 0 {
		fmt.Fprintln(&b, "Our units:")
		for _, u := range r.Units {
			fmt.Fprintf(&b, "  %s [%s] %d/%d %s", u.Label, u.Role, u.Atk, u.HP, u.Zone)
			if u.HeroDistance >= 0 {
				fmt.Fprintf(&b, " dist:%d", u.HeroDistance)
			}
			if !u.CanAttack {
				fmt.Fprint(&b, " (exhausted)")
			}
			if len(u.TargetsNow) > 0 {
				fmt.Fprintf(&b, " can-hit:%s", strings.Join(u.TargetsNow, ","))
			}
			if len(u.TargetsAfterMove) > 0 {
				var hints []string
				for _, mt := range u.TargetsAfterMove {
					hints = append(hints, fmt.Sprintf("%s(via %d)", mt.Label, mt.ViaCell))
				}
				fmt.Fprintf(&b, " after-move:%s", strings.Join(hints, ","))
			}
			fmt.Fprintln(&b)
		}
	}

	if len(r.Enemies) > 0 {
		fmt.Fprintln(&b, "Enemy units:")
		for _, u := range r.Enemies {
			fmt.Fprintf(&b, "  %s [%s] %d/%d %s", u.Label, u.Role, u.Atk, u.HP, u.Zone)
			if u.HeroDistance >= 0 {
				fmt.Fprintf(&b, " dist:%d", u.HeroDistance)
			}
			fmt.Fprintln(&b)
		}
	}

	if len(r.Hand) > 0 {
		fmt.Fprintln(&b, "Hand:")
		for _, c := range r.Hand {
			fmt.Fprintf(&b, "  %s (cost %d", c.Name, c.Cost)
			if !c.Affordable {
				fmt.Fprint(&b, ", unaffordable")
			}
			fmt.Fprint(&b, ")")
			if len(c.PlayableZones) > 0 {
				var zs []string
				for _, z := range c.PlayableZones {
					zs = append(zs, string(z))
				}
				fmt.Fprintf(&b, " zones:%s", strings.Join(zs, ","))
			}
			fmt.Fprintln(&b)
		}
	}

	return b.String()
}
