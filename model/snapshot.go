package model

// Snapshot is one turn's authoritative game-state payload from the game
// client. It is normalized here, once, at the perception boundary — no
// package downstream re-guesses field names or shapes.
type Snapshot struct {
	Turn            int          `json:"turn"`
	IsMyTurn        bool         `json:"is_my_turn"`
	Self            SelfSide     `json:"self"`
	Enemy           EnemySide    `json:"enemy"`
	SelfUnits       []Unit       `json:"self_units"`
	EnemyUnits      []Unit       `json:"enemy_units"`
	TacticalPreview []PreviewRow `json:"tactical_preview"`
	LegalActions    []Action     `json:"legal_actions"`

	// Board dimensions when the client supplies them; zero means "infer".
	BoardWidth  int `json:"board_width,omitempty"`
	BoardHeight int `json:"board_height,omitempty"`

	// Optional per-cell hop distances precomputed by the client. Used as a
	// fallback for cells the move graph hasn't reached yet.
	ApproxDistances map[int]int `json:"approx_distances,omitempty"`
}

type SelfSide struct {
	HeroHP    int        `json:"hero_hp"`
	HeroCell  int        `json:"hero_cell_index"`
	Mana      int        `json:"mana"`
	Hand      []HandCard `json:"hand"`
}

type EnemySide struct {
	HeroHP   int `json:"hero_hp"`
	HeroCell int `json:"hero_cell_index"`
}

type HandCard struct {
	CardID   int    `json:"card_id"`
	Name     string `json:"name"`
	ManaCost int    `json:"mana_cost"`
}

type Unit struct {
	UnitID    int    `json:"unit_id"`
	Name      string `json:"name"`
	HP        int    `json:"hp"`
	Atk       int    `json:"atk"`
	Cell      int    `json:"cell_index"`
	CanAttack bool   `json:"can_attack"`

	// Optional fields some clients supply; role classification degrades
	// gracefully when they are absent.
	Range int    `json:"range,omitempty"`
	Kind  string `json:"kind,omitempty"` // e.g. "ranged", "melee"
}

// PreviewRow is one move-then-attack preview entry: if UnitID moves to
// ToCell, the listed attacks become legal.
type PreviewRow struct {
	UnitID  int             `json:"unit_id"`
	ToCell  int             `json:"to_cell_index"`
	Attacks []PreviewAttack `json:"attacks"`
}

type PreviewAttack struct {
	TargetUnitID int `json:"target_unit_id"`
}

// UnitByID looks a unit up on either side. The second return reports which
// side owns it ("self", "enemy") or "" when not found.
func (s *Snapshot) UnitByID(id int) (*Unit, string) {
	for i := range s.SelfUnits {
		if s.SelfUnits[i].UnitID == id {
			return &s.SelfUnits[i], "self"
		}
	}
	for i := range s.EnemyUnits {
		if s.EnemyUnits[i].UnitID == id {
			return &s.EnemyUnits[i], "enemy"
		}
	}
	return nil, ""
}
