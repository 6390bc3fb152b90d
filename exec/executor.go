package exec

import (
	"log/slog"

	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/model"
)

// SubmitFunc writes one opaque action ID to the game client's action
// channel. Fire-and-forget: confirmation arrives via the next snapshot.
type SubmitFunc func(actionID int) error

// Result summarizes one batch pass.
type Result struct {
	Submitted []int
	Skipped   int // steps that could not resolve this pass (stay pending)
	Chained   []int
}

// RunBatch resolves every still-pending step in one pass, queueing each
// resolved ID. Already-queued or executed steps are skipped, so replaying
// the same plan on an unchanged state emits nothing. An unresolvable step
// is logged and skipped, never fatal to the batch.
func RunBatch(st *State, plan intent.Plan, snap *model.Snapshot, submit SubmitFunc) Result {
	st.AdoptPlan(plan, snap)
	var res Result
	claimed := make(map[int]bool)       // cells claimed earlier in this batch
	movedThisPass := make(map[int]bool) // units whose enabling move just went out

	for _, step := range st.steps {
		if step.Status != StepPending {
			if step.Kind == model.KindPlayCard {
				claimed[step.Cell] = true
			}
			continue
		}
		act := resolveStep(step, snap.LegalActions, claimed)
		if act == nil {
			slog.Warn("step unresolvable, skipping", "kind", step.Kind, "action", step.ActionID)
			res.Skipped++
			continue
		}
		if err := submit(act.ID); err != nil {
			slog.Error("submit failed", "action", act.ID, "error", err)
			res.Skipped++
			continue
		}
		step.Status = StepQueued
		step.ActionID = act.ID
		if act.PlayCard != nil {
			step.Cell = act.PlayCard.Cell
			claimed[step.Cell] = true
		}
		if act.MoveUnit != nil {
			movedThisPass[act.MoveUnit.UnitID] = true
		}
		st.Cursor++
		res.Submitted = append(res.Submitted, act.ID)
	}

	// Attack-after-move chains: fire once the enabling move has been
	// confirmed and the attack shows up in the legal pool. A chain whose
	// move went out in this very pass waits for the next snapshot — the
	// current pool predates the move, so any attack it lists would target
	// from the old cell.
	for _, c := range st.chains {
		if c.done || movedThisPass[c.hint.AttackerUnitID] {
			continue
		}
		act := chainAttack(snap.LegalActions, c.hint)
		if act == nil {
			continue
		}
		if err := submit(act.ID); err != nil {
			slog.Error("chain submit failed", "action", act.ID, "error", err)
			continue
		}
		c.done = true
		res.Chained = append(res.Chained, act.ID)
		slog.Debug("chained attack fired", "attacker", c.hint.AttackerUnitID, "target", c.hint.PreferredTargetUnitID)
	}

	return res
}

// RunSingle resolves and submits only the first resolvable pending step,
// for callers that resubmit after each confirmation.
func RunSingle(st *State, plan intent.Plan, snap *model.Snapshot, submit SubmitFunc) (int, bool) {
	st.AdoptPlan(plan, snap)
	claimed := make(map[int]bool)
	for _, step := range st.steps {
		if step.Status != StepPending {
			if step.Kind == model.KindPlayCard {
				claimed[step.Cell] = true
			}
			continue
		}
		act := resolveStep(step, snap.LegalActions, claimed)
		if act == nil {
			slog.Warn("step unresolvable, skipping", "kind", step.Kind, "action", step.ActionID)
			continue
		}
		if err := submit(act.ID); err != nil {
			slog.Error("submit failed", "action", act.ID, "error", err)
			return 0, false
		}
		step.Status = StepQueued
		step.ActionID = act.ID
		st.Cursor++
		return act.ID, true
	}
	return 0, false
}

// resolveStep finds the live action for a step: the originally-resolved ID
// when still legal, otherwise a semantic re-match against the fresh pool.
// Play-card steps avoid cells already claimed earlier in the batch, taking
// the nearest unclaimed alternative for the same card.
func resolveStep(step *Step, pool []model.Action, claimed map[int]bool) *model.Action {
	act := model.FindAction(pool, step.ActionID)
	if act != nil && act.Kind() != step.Kind {
		act = nil // id was reused for something else; drift
	}
	if act == nil {
		act = rematch(step, pool)
	}
	if act == nil {
		return nil
	}
	if act.PlayCard != nil && claimed[act.PlayCard.Cell] {
		act = nearestFreePlacement(pool, act.PlayCard.CardID, act.PlayCard.Cell, claimed)
	}
	return act
}

func rematch(step *Step, pool []model.Action) *model.Action {
	for i := range pool {
		act := &pool[i]
		if act.Kind() != step.Kind {
			continue
		}
		switch step.Kind {
		case model.KindPlayCard:
			if act.PlayCard.CardID == step.CardID {
				return act
			}
		case model.KindMoveUnit:
			if act.MoveUnit.UnitID == step.UnitID && act.MoveUnit.ToCell == step.Cell {
				return act
			}
		case model.KindUnitAttack:
			if act.UnitAttack.AttackerUnitID != step.UnitID {
				continue
			}
			if (step.TargetUnitID == nil) != (act.UnitAttack.TargetUnitID == nil) {
				continue
			}
			if step.TargetUnitID == nil || *step.TargetUnitID == *act.UnitAttack.TargetUnitID {
				return act
			}
		case model.KindHeroPower, model.KindEndTurn:
			return act
		}
	}
	return nil
}

func nearestFreePlacement(pool []model.Action, cardID, wantCell int, claimed map[int]bool) *model.Action {
	var best *model.Action
	bestDist := 0
	for i := range pool {
		act := &pool[i]
		if act.PlayCard == nil || act.PlayCard.CardID != cardID || claimed[act.PlayCard.Cell] {
			continue
		}
		d := absInt(act.PlayCard.Cell - wantCell)
		if best == nil || d < bestDist {
			best, bestDist = act, d
		}
	}
	return best
}

func chainAttack(pool []model.Action, h intent.ChainHint) *model.Action {
	var fallback *model.Action
	for i := range pool {
		act := &pool[i]
		if act.UnitAttack == nil || act.UnitAttack.AttackerUnitID != h.AttackerUnitID {
			continue
		}
		if act.UnitAttack.TargetUnitID != nil && *act.UnitAttack.TargetUnitID == h.PreferredTargetUnitID {
			return act
		}
		if fallback == nil {
			fallback = act
		}
	}
	return fallback
}

// SafeFallback picks the first legal action by fixed priority — attack,
// then a move that enables an attack, then play-card, hero-power, plain
// move, end-turn — so the turn always advances even when resolution
// produced nothing.
func SafeFallback(snap *model.Snapshot) (int, bool) {
	if id, ok := firstOfKind(snap.LegalActions, model.KindUnitAttack); ok {
		return id, true
	}
	for _, row := range snap.TacticalPreview {
		if len(row.Attacks) == 0 {
			continue
		}
		if mv := findMoveAction(snap.LegalActions, row.UnitID, row.ToCell); mv != nil {
			return mv.ID, true
		}
	}
	for _, kind := range []model.ActionKind{model.KindPlayCard, model.KindHeroPower, model.KindMoveUnit, model.KindEndTurn} {
		if id, ok := firstOfKind(snap.LegalActions, kind); ok {
			return id, true
		}
	}
	return 0, false
}

func firstOfKind(pool []model.Action, kind model.ActionKind) (int, bool) {
	for i := range pool {
		if pool[i].Kind() == kind {
			return pool[i].ID, true
		}
	}
	return 0, false
}

func findMoveAction(pool []model.Action, unitID, toCell int) *model.Action {
	for i := range pool {
		act := &pool[i]
		if act.MoveUnit != nil && act.MoveUnit.UnitID == unitID && act.MoveUnit.ToCell == toCell {
			return act
		}
	}
	return nil
}
