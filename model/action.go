package model

// ActionKind discriminates the payload carried by a legal action.
type ActionKind string

const (
	KindPlayCard   ActionKind = "play_card"
	KindMoveUnit   ActionKind = "move_unit"
	KindUnitAttack ActionKind = "unit_attack"
	KindHeroPower  ActionKind = "hero_power"
	KindEndTurn    ActionKind = "end_turn"
	KindUnknown    ActionKind = "unknown"
)

// Action is one engine-validated, currently-submittable operation. The game
// client owns these; this side only ever selects an existing ID, never
// fabricates one. Exactly one payload field is set.
type Action struct {
	ID         int               `json:"id"`
	PlayCard   *PlayCardAction   `json:"play_card,omitempty"`
	MoveUnit   *MoveUnitAction   `json:"move_unit,omitempty"`
	UnitAttack *UnitAttackAction `json:"unit_attack,omitempty"`
	HeroPower  bool              `json:"hero_power,omitempty"`
	EndTurn    bool              `json:"end_turn,omitempty"`
}

type PlayCardAction struct {
	CardID int `json:"card_id"`
	Cell   int `json:"cell_index"`
}

type MoveUnitAction struct {
	UnitID int `json:"unit_id"`
	ToCell int `json:"to_cell_index"`
}

// UnitAttackAction with a nil TargetUnitID is a direct hero strike.
type UnitAttackAction struct {
	AttackerUnitID int  `json:"attacker_unit_id"`
	TargetUnitID   *int `json:"target_unit_id,omitempty"`
}

func (a Action) Kind() ActionKind {
	switch {
	case a.PlayCard != nil:
		return KindPlayCard
	case a.MoveUnit != nil:
		return KindMoveUnit
	case a.UnitAttack != nil:
		return KindUnitAttack
	case a.HeroPower:
		return KindHeroPower
	case a.EndTurn:
		return KindEndTurn
	default:
		return KindUnknown
	}
}

// IsHeroStrike reports whether the action is an attack aimed directly at
// the enemy hero.
func (a Action) IsHeroStrike() bool {
	return a.UnitAttack != nil && a.UnitAttack.TargetUnitID == nil
}

// FindAction returns the action with the given ID, or nil.
func FindAction(pool []Action, id int) *Action {
	for i := range pool {
		if pool[i].ID == id {
			return &pool[i]
		}
	}
	return nil
}
