package exec

import (
	"log/slog"

	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/model"
)

// FlatStep is the legacy step shape some intent sources still emit: a typed
// record instead of a verb/subject/target intent. The Plan is the one
// canonical representation; flat steps adapt into it here and nowhere else.
type FlatStep struct {
	Type         string `json:"type"` // "attack" | "move" | "play" | "hero_power" | "end_turn"
	UnitID       int    `json:"unit_id,omitempty"`
	TargetUnitID *int   `json:"target_unit_id,omitempty"`
	CardID       int    `json:"card_id,omitempty"`
	Cell         int    `json:"cell_index,omitempty"`
}

// PlanFromFlatSteps resolves each flat step against the legal pool and
// builds a deduplicated plan. Unresolvable steps are logged and dropped —
// same non-fatal posture as per-intent errors.
func PlanFromFlatSteps(steps []FlatStep, snap *model.Snapshot) intent.Plan {
	plan := intent.Plan{}
	used := make(map[int]bool)

	for _, fs := range steps {
		act := matchFlatStep(fs, snap.LegalActions, used)
		if act == nil {
			slog.Warn("flat step unresolvable", "type", fs.Type, "unit", fs.UnitID)
			continue
		}
		used[act.ID] = true
		plan.ActionIDs = append(plan.ActionIDs, act.ID)
	}

	plan.OK = len(plan.ActionIDs) > 0 || len(steps) == 0
	plan.ManaLeft = snap.Self.Mana
	return plan
}

func matchFlatStep(fs FlatStep, pool []model.Action, used map[int]bool) *model.Action {
	for i := range pool {
		act := &pool[i]
		if used[act.ID] {
			continue
		}
		switch fs.Type {
		case "attack":
			if act.UnitAttack == nil || act.UnitAttack.AttackerUnitID != fs.UnitID {
				continue
			}
			if (fs.TargetUnitID == nil) != (act.UnitAttack.TargetUnitID == nil) {
				continue
			}
			if fs.TargetUnitID == nil || *fs.TargetUnitID == *act.UnitAttack.TargetUnitID {
				return act
			}
		case "move":
			if act.MoveUnit != nil && act.MoveUnit.UnitID == fs.UnitID && act.MoveUnit.ToCell == fs.Cell {
				return act
			}
		case "play":
			if act.PlayCard != nil && act.PlayCard.CardID == fs.CardID {
				return act
			}
		case "hero_power":
			if act.HeroPower {
				return act
			}
		case "end_turn":
			if act.EndTurn {
				return act
			}
		}
	}
	return nil
}
