package fastpath

import (
	"strings"

	"github.com/ldevreaux/gambit/board"
	"github.com/ldevreaux/gambit/model"
)

// Env wraps one turn's analysis and exposes the helper methods callable
// from check conditions.
type Env struct {
	Analysis *board.Analysis
	Snap     *model.Snapshot
	Profile  Profile
}

// OnlyEndTurn reports whether the sole legal action is end-turn.
func (e Env) OnlyEndTurn() bool {
	return len(e.Snap.LegalActions) == 1 && e.Snap.LegalActions[0].EndTurn
}

func (e Env) HeroHP() int      { return e.Snap.Self.HeroHP }
func (e Env) EnemyHeroHP() int { return e.Snap.Enemy.HeroHP }

// AttackCount counts legal unit-attack actions.
func (e Env) AttackCount() int {
	n := 0
	for _, act := range e.Snap.LegalActions {
		if act.UnitAttack != nil {
			n++
		}
	}
	return n
}

// HeroStrikeDamage sums attacker ATK across all legal direct hero strikes.
func (e Env) HeroStrikeDamage() int {
	total := 0
	for _, act := range e.Snap.LegalActions {
		if act.IsHeroStrike() {
			if attacker, _ := e.Snap.UnitByID(act.UnitAttack.AttackerUnitID); attacker != nil {
				total += attacker.Atk
			}
		}
	}
	return total
}

// HasLethalAttack reports whether any legal attack kills its target outright.
func (e Env) HasLethalAttack() bool {
	_, ok := e.bestLethal(nil)
	return ok
}

// HasDefensivePlay reports whether an affordable known-defensive hand card
// has a legal play action.
func (e Env) HasDefensivePlay() bool {
	_, ok := e.defensivePlay()
	return ok
}

// BestPriorityKillScore is the best score among lethal attacks on
// configured high-value targets, 0 when none exists. Scores run 0.88–0.95
// with the target's value weight.
func (e Env) BestPriorityKillScore() float64 {
	_, score, ok := e.priorityKill()
	if !ok {
		return 0
	}
	return score
}

// BestPreviewConfidence is the confidence of the best move-then-attack
// opportunity in the tactical preview, 0 when the preview is empty.
func (e Env) BestPreviewConfidence() float64 {
	_, conf, ok := e.bestPreviewMove()
	if !ok {
		return 0
	}
	return conf
}

// --- shared lookups used by both conditions and picks -----------------

// bestLethal finds the lethal attack with the highest-value victim. The
// filter restricts which targets qualify (nil = all).
func (e Env) bestLethal(filter func(target *model.Unit) bool) (*model.Action, bool) {
	var best *model.Action
	bestHP := -1
	for i := range e.Snap.LegalActions {
		act := &e.Snap.LegalActions[i]
		if act.UnitAttack == nil || act.UnitAttack.TargetUnitID == nil {
			continue
		}
		target, _ := e.Snap.UnitByID(*act.UnitAttack.TargetUnitID)
		attacker, _ := e.Snap.UnitByID(act.UnitAttack.AttackerUnitID)
		if target == nil || attacker == nil || attacker.Atk < target.HP {
			continue
		}
		if filter != nil && !filter(target) {
			continue
		}
		// Prefer the biggest victim; ties keep the first seen.
		if target.HP > bestHP {
			best, bestHP = act, target.HP
		}
	}
	return best, best != nil
}

func (e Env) defensivePlay() (*model.Action, bool) {
	for _, card := range e.Snap.Self.Hand {
		if card.ManaCost > e.Snap.Self.Mana || !e.isDefensive(card.Name) {
			continue
		}
		for i := range e.Snap.LegalActions {
			act := &e.Snap.LegalActions[i]
			if act.PlayCard != nil && act.PlayCard.CardID == card.CardID {
				return act, true
			}
		}
	}
	return nil, false
}

func (e Env) isDefensive(name string) bool {
	for _, d := range e.Profile.DefensiveCards {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

func (e Env) priorityKill() (*model.Action, float64, bool) {
	act, ok := e.bestLethal(func(target *model.Unit) bool {
		w, found := e.Profile.PriorityTargets[strings.ToLower(target.Name)]
		return found && w > 0
	})
	if !ok {
		return nil, 0, false
	}
	target, _ := e.Snap.UnitByID(*act.UnitAttack.TargetUnitID)
	w := e.Profile.PriorityTargets[strings.ToLower(target.Name)]
	return act, 0.88 + 0.07*w, true
}

// bestPreviewMove scores each preview row by its best unlocked attack and
// returns the enabling move action: a lethal follow-up scores 0.9, a
// priority target 0.85, anything else 0.6.
func (e Env) bestPreviewMove() (*model.Action, float64, bool) {
	var best *model.Action
	bestConf := 0.0
	for _, row := range e.Snap.TacticalPreview {
		attacker, _ := e.Snap.UnitByID(row.UnitID)
		if attacker == nil {
			continue
		}
		mv := findMove(e.Snap.LegalActions, row.UnitID, row.ToCell)
		if mv == nil {
			continue
		}
		for _, pa := range row.Attacks {
			target, _ := e.Snap.UnitByID(pa.TargetUnitID)
			if target == nil {
				continue
			}
			conf := 0.6
			if _, prio := e.Profile.PriorityTargets[strings.ToLower(target.Name)]; prio {
				conf = 0.85
			}
			if attacker.Atk >= target.HP {
				conf = 0.9
			}
			if conf > bestConf {
				best, bestConf = mv, conf
			}
		}
	}
	return best, bestConf, best != nil
}

func findMove(pool []model.Action, unitID, toCell int) *model.Action {
	for i := range pool {
		act := &pool[i]
		if act.MoveUnit != nil && act.MoveUnit.UnitID == unitID && act.MoveUnit.ToCell == toCell {
			return act
		}
	}
	return nil
}

// suicideTrade reports whether the attack trades our unit away for nothing:
// the attacker dies to the counter while the defender survives.
func suicideTrade(snap *model.Snapshot, act *model.Action) bool {
	if act.UnitAttack == nil || act.UnitAttack.TargetUnitID == nil {
		return false
	}
	attacker, _ := snap.UnitByID(act.UnitAttack.AttackerUnitID)
	target, _ := snap.UnitByID(*act.UnitAttack.TargetUnitID)
	if attacker == nil || target == nil {
		return false
	}
	return attacker.HP <= target.Atk && target.HP > attacker.Atk
}
