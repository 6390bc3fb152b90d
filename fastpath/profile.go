// Package fastpath short-circuits the full decision pipeline for obvious
// plays: lethal, sole legal option, emergency defense. Checks are ordered
// condition → pick pairs; conditions are expr sources compiled once at
// engine construction, with profile values interpolated into the source so
// the generated expressions are always valid.
package fastpath

// Profile tunes the heuristic gates. Game-content knowledge (defensive
// cards, priority targets) is configuration, not code, and ships in the
// yaml config file.
type Profile struct {
	SafetyFirst      bool    `yaml:"safety_first"`
	Aggression       float64 `yaml:"aggression"`
	SoleAttackGate   float64 `yaml:"sole_attack_gate"` // min aggression to take a sole attack
	CriticalHeroHP   int     `yaml:"critical_hero_hp"`
	PriorityKillGate float64 `yaml:"priority_kill_gate"`
	PreviewGate      float64 `yaml:"preview_gate"`

	DefensiveCards  []string           `yaml:"defensive_cards"`
	PriorityTargets map[string]float64 `yaml:"priority_targets"` // name → value weight 0–1
}

// DefaultProfile is the built-in baseline used when no config is supplied.
func DefaultProfile() Profile {
	return Profile{
		SafetyFirst:      true,
		Aggression:       0.6,
		SoleAttackGate:   0.4,
		CriticalHeroHP:   5,
		PriorityKillGate: 0.85,
		PreviewGate:      0.8,
	}
}

// Validate clamps all gates into their working ranges.
func (p *Profile) Validate() {
	p.Aggression = clamp(p.Aggression, 0, 1)
	p.SoleAttackGate = clamp(p.SoleAttackGate, 0, 1)
	p.PriorityKillGate = clamp(p.PriorityKillGate, 0, 1)
	p.PreviewGate = clamp(p.PreviewGate, 0, 1)
	if p.CriticalHeroHP < 1 {
		p.CriticalHeroHP = 1
	}
	for name, w := range p.PriorityTargets {
		p.PriorityTargets[name] = clamp(w, 0, 1)
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
