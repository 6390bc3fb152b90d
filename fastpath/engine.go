package fastpath

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ldevreaux/gambit/board"
)

// Decision is a committed fast-path action: take this ID now and skip the
// full pipeline.
type Decision struct {
	ActionID   int
	Reason     string
	Confidence float64
}

// ReasonContinue is returned when no check fires and the full pipeline
// should run.
const ReasonContinue = "complex_situation"

// check is one ordered heuristic: an expr condition plus a pick that
// selects the concrete action. A pick may decline (ok=false) even when its
// condition held, in which case evaluation continues down the list.
type check struct {
	name         string
	conditionSrc string
	program      *vm.Program
	pick         func(env Env) (Decision, bool)
}

// Engine evaluates the checks in fixed order; the first hit wins.
type Engine struct {
	checks  []*check
	profile Profile
}

// NewEngine compiles all check conditions against the Env type. Profile
// values are interpolated into the condition sources, so a bad profile
// fails here, not mid-turn.
func NewEngine(p Profile) (*Engine, error) {
	p.Validate()
	checks := buildChecks(p)
	for _, c := range checks {
		prog, err := expr.Compile(c.conditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile check %q: %w", c.name, err)
		}
		c.program = prog
	}
	return &Engine{checks: checks, profile: p}, nil
}

// Evaluate runs the ordered checks against the analysis. ok=false means
// "continue" — hand the turn to the full resolver.
func (e *Engine) Evaluate(a *board.Analysis) (Decision, bool) {
	env := Env{Analysis: a, Snap: a.Snapshot(), Profile: e.profile}

	for _, c := range e.checks {
		result, err := vm.Run(c.program, env)
		if err != nil {
			slog.Warn("fast-path condition error", "check", c.name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}
		if d, ok := c.pick(env); ok {
			slog.Debug("fast-path hit", "check", c.name, "action", d.ActionID, "reason", d.Reason, "confidence", d.Confidence)
			return d, true
		}
	}

	slog.Debug("no fast-path check fired", "legal", len(env.Snap.LegalActions))
	return Decision{Reason: ReasonContinue}, false
}

// buildChecks generates the ordered check list from the profile, the same
// way a doctrine compiles into rules: thresholds are baked into the expr
// source so conditions are pure reads over Env.
func buildChecks(p Profile) []*check {
	return []*check{
		{
			name:         "only-end-turn",
			conditionSrc: `OnlyEndTurn()`,
			pick: func(env Env) (Decision, bool) {
				return Decision{ActionID: env.Snap.LegalActions[0].ID, Reason: "only_end_turn", Confidence: 1.0}, true
			},
		},
		{
			name:         "emergency-defense",
			conditionSrc: fmt.Sprintf(`%t && HeroHP() <= %d && HasDefensivePlay()`, p.SafetyFirst, p.CriticalHeroHP),
			pick: func(env Env) (Decision, bool) {
				act, ok := env.defensivePlay()
				if !ok {
					return Decision{}, false
				}
				return Decision{ActionID: act.ID, Reason: "emergency_defense", Confidence: 0.9}, true
			},
		},
		{
			name:         "lethal-kill",
			conditionSrc: `HasLethalAttack()`,
			pick: func(env Env) (Decision, bool) {
				act, ok := env.bestLethal(nil)
				if !ok {
					return Decision{}, false
				}
				label := env.Analysis.Label(*act.UnitAttack.TargetUnitID)
				return Decision{ActionID: act.ID, Reason: "lethal_kill_" + sanitize(label), Confidence: 0.95}, true
			},
		},
		{
			name:         "hero-lethal",
			conditionSrc: `EnemyHeroHP() > 0 && HeroStrikeDamage() >= EnemyHeroHP()`,
			pick: func(env Env) (Decision, bool) {
				// One strike per decision; the rest follow on later cycles.
				var best *Decision
				bestAtk := -1
				for _, act := range env.Snap.LegalActions {
					if !act.IsHeroStrike() {
						continue
					}
					attacker, _ := env.Snap.UnitByID(act.UnitAttack.AttackerUnitID)
					if attacker != nil && attacker.Atk > bestAtk {
						bestAtk = attacker.Atk
						best = &Decision{ActionID: act.ID, Reason: "hero_lethal", Confidence: 0.97}
					}
				}
				if best == nil {
					return Decision{}, false
				}
				return *best, true
			},
		},
		{
			name:         "priority-kill",
			conditionSrc: fmt.Sprintf(`BestPriorityKillScore() >= %.2f`, p.PriorityKillGate),
			pick: func(env Env) (Decision, bool) {
				act, score, ok := env.priorityKill()
				if !ok {
					return Decision{}, false
				}
				label := env.Analysis.Label(*act.UnitAttack.TargetUnitID)
				return Decision{ActionID: act.ID, Reason: "priority_kill_" + sanitize(label), Confidence: score}, true
			},
		},
		{
			name:         "sole-attack",
			conditionSrc: fmt.Sprintf(`AttackCount() == 1 && %.2f >= %.2f`, p.Aggression, p.SoleAttackGate),
			pick: func(env Env) (Decision, bool) {
				for i := range env.Snap.LegalActions {
					act := &env.Snap.LegalActions[i]
					if act.UnitAttack == nil {
						continue
					}
					if suicideTrade(env.Snap, act) {
						return Decision{}, false
					}
					return Decision{ActionID: act.ID, Reason: "sole_attack", Confidence: 0.8}, true
				}
				return Decision{}, false
			},
		},
		{
			name:         "preview-strike",
			conditionSrc: fmt.Sprintf(`BestPreviewConfidence() >= %.2f`, p.PreviewGate),
			pick: func(env Env) (Decision, bool) {
				act, conf, ok := env.bestPreviewMove()
				if !ok {
					return Decision{}, false
				}
				return Decision{ActionID: act.ID, Reason: "preview_strike", Confidence: conf}, true
			},
		},
	}
}

// sanitize makes a label safe for reason suffixes.
func sanitize(label string) string {
	label = strings.ToLower(label)
	label = strings.ReplaceAll(label, " ", "_")
	label = strings.ReplaceAll(label, "#", "")
	return label
}
