package intent

import (
	"sort"

	"github.com/ldevreaux/gambit/board"
)

// Candidate is an intent-scoped, pre-validated action the resolver would
// consider for one intent, scored for an optional verification stage before
// anything is committed.
type Candidate struct {
	ActionID int
	Score    float64
	Signal   string
}

// Candidates pre-filters and scores the action subset relevant to one
// intent without mutating any pool state. The list is sorted best-first;
// an empty list means the intent cannot resolve as the pool stands.
func (r *Resolver) Candidates(it Intent, a *board.Analysis) []Candidate {
	snap := a.Snapshot()
	st := &state{
		a:        a,
		snap:     snap,
		plan:     &Plan{},
		used:     make(map[int]bool),
		moved:    make(map[int]bool),
		attacked: make(map[int]bool),
		mana:     snap.Self.Mana,
	}

	var out []Candidate
	switch it.Verb {
	case VerbKill, VerbAttack, VerbPoke:
		subject := r.Matcher.Resolve(it.Subject, st.selfCandidates())
		if !subject.Matched {
			return nil
		}
		sid := subject.Candidate.ID
		for _, act := range st.availAttacks(sid) {
			out = append(out, Candidate{ActionID: act.ID, Score: r.targetScore(st, act), Signal: "attack"})
		}
		for _, row := range snap.TacticalPreview {
			if row.UnitID != sid || len(row.Attacks) == 0 {
				continue
			}
			if mv := st.moveActionTo(sid, row.ToCell); mv != nil {
				score := 0.6
				for _, pa := range row.Attacks {
					if target, _ := snap.UnitByID(pa.TargetUnitID); target != nil {
						if attacker, _ := snap.UnitByID(sid); attacker != nil && attacker.Atk >= target.HP {
							score = 0.8
						}
					}
				}
				out = append(out, Candidate{ActionID: mv.ID, Score: score, Signal: "move_then_attack"})
			}
		}

	case VerbPosition, VerbScreen, VerbProtect:
		subject := r.Matcher.Resolve(it.Subject, st.selfCandidates())
		if !subject.Matched {
			return nil
		}
		zone := r.desiredZone(st, it)
		for i := range snap.LegalActions {
			act := &snap.LegalActions[i]
			if act.MoveUnit == nil || act.MoveUnit.UnitID != subject.Candidate.ID {
				continue
			}
			d := board.ZoneDistance(a.Zone(act.MoveUnit.ToCell), zone)
			out = append(out, Candidate{ActionID: act.ID, Score: 1.0 / float64(1+d), Signal: "reposition"})
		}

	case VerbDeploy:
		name, ok := ParseHandSubject(it.Subject)
		if !ok {
			return nil
		}
		verdict := r.Matcher.Resolve(name, st.handCandidates())
		if !verdict.Matched {
			return nil
		}
		zone := r.desiredZone(st, it)
		for i := range snap.LegalActions {
			act := &snap.LegalActions[i]
			if act.PlayCard == nil || act.PlayCard.CardID != verdict.Candidate.ID {
				continue
			}
			d := board.ZoneDistance(a.Zone(act.PlayCard.Cell), zone)
			out = append(out, Candidate{ActionID: act.ID, Score: 1.0 / float64(1+d), Signal: "deploy"})
		}

	case VerbEndTurn:
		for i := range snap.LegalActions {
			if snap.LegalActions[i].EndTurn {
				out = append(out, Candidate{ActionID: snap.LegalActions[i].ID, Score: 1, Signal: "end_turn"})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
