// Package exec submits resolved plans to the game client and keeps the
// per-turn bookkeeping that makes repeated polling safe: already-queued
// steps are never re-emitted, stale plans are discarded on drift, and a
// fixed-priority safe fallback guarantees the turn always advances.
package exec

import (
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/model"
)

// StepStatus is the step state machine: pending → queued → executed.
// A step that cannot resolve stays pending.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepQueued   StepStatus = "queued"
	StepExecuted StepStatus = "executed"
)

// Step is one planned submission. Besides the resolved action ID it keeps
// the semantic fields needed to re-resolve against a fresh pool when the
// original ID disappeared.
type Step struct {
	Status   StepStatus
	ActionID int
	Kind     model.ActionKind

	UnitID       int
	TargetUnitID *int
	CardID       int
	Cell         int

	Note string
}

// chain is a pending attack-after-move hint.
type chain struct {
	hint intent.ChainHint
	done bool
}

// State is the caller-owned runtime decision state for one session. It is
// threaded through calls explicitly — nothing here is module-global — and
// reset at turn and session boundaries.
type State struct {
	Cursor   int
	Revision int
	Digest   string

	steps   []*Step
	chains  []*chain
	summary Summary
	hasPlan bool
}

func NewState() *State { return &State{} }

// Reset clears all plan bookkeeping (turn/session boundary).
func (s *State) Reset() {
	s.Cursor = 0
	s.steps = nil
	s.chains = nil
	s.hasPlan = false
	s.Revision++
}

// Steps exposes the current step list (read-only by convention).
func (s *State) Steps() []*Step { return s.steps }

// Summary is the drift-detection digest input: the coarse shape of a
// snapshot. Material change between summaries invalidates any stale plan.
type Summary struct {
	Turn      int
	UnitCount int
	TotalHP   int
	HandSize  int
}

// Drift thresholds. Below these, a snapshot change is routine (our own
// submissions echoing back); at or above, the world moved under us.
const (
	driftUnitDelta = 3
	driftHPDelta   = 10
	driftHandDelta = 4
	driftTurnJump  = 3
)

func Summarize(snap *model.Snapshot) Summary {
	sum := Summary{
		Turn:      snap.Turn,
		UnitCount: len(snap.SelfUnits) + len(snap.EnemyUnits),
		HandSize:  len(snap.Self.Hand),
	}
	sum.TotalHP = snap.Self.HeroHP + snap.Enemy.HeroHP
	for _, u := range snap.SelfUnits {
		sum.TotalHP += u.HP
	}
	for _, u := range snap.EnemyUnits {
		sum.TotalHP += u.HP
	}
	return sum
}

func (s Summary) digest() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%d|%d", s.Turn, s.UnitCount, s.TotalHP, s.HandSize)
	return fmt.Sprintf("%x", h.Sum64())
}

// Drifted reports whether the change between two summaries is material.
func Drifted(prev, cur Summary) bool {
	return absInt(cur.UnitCount-prev.UnitCount) >= driftUnitDelta ||
		absInt(cur.TotalHP-prev.TotalHP) >= driftHPDelta ||
		absInt(cur.HandSize-prev.HandSize) >= driftHandDelta ||
		absInt(cur.Turn-prev.Turn) >= driftTurnJump
}

// Observe reconciles the state with a fresh snapshot. Queued steps are
// considered executed (confirmation arrives via the snapshot itself, never
// via synchronous waiting). On turn advance or material drift the stale
// plan is discarded; the next cycle recomputes.
func (s *State) Observe(snap *model.Snapshot) {
	cur := Summarize(snap)
	defer func() {
		s.summary = cur
		s.Digest = cur.digest()
	}()

	if !s.hasPlan {
		return
	}
	if cur.Turn != s.summary.Turn {
		slog.Debug("turn advanced, resetting decision state", "from", s.summary.Turn, "to", cur.Turn)
		s.confirmQueued()
		s.Reset()
		return
	}
	if Drifted(s.summary, cur) {
		slog.Info("snapshot drift detected, discarding stale plan",
			"units", cur.UnitCount-s.summary.UnitCount,
			"hp", cur.TotalHP-s.summary.TotalHP,
			"hand", cur.HandSize-s.summary.HandSize)
		s.Reset()
	}
}

func (s *State) confirmQueued() {
	for _, st := range s.steps {
		if st.Status == StepQueued {
			st.Status = StepExecuted
		}
	}
}

// AdoptPlan derives steps from a resolved plan. Re-adopting a plan with the
// same action IDs is a no-op, which is what makes repeated batch calls
// idempotent.
func (s *State) AdoptPlan(plan intent.Plan, snap *model.Snapshot) {
	if s.hasPlan && s.samePlan(plan) {
		return
	}
	s.steps = nil
	s.chains = nil
	s.Cursor = 0
	s.Revision++
	s.hasPlan = true

	for _, id := range plan.ActionIDs {
		act := model.FindAction(snap.LegalActions, id)
		if act == nil {
			slog.Warn("plan references unknown action id", "id", id)
			continue
		}
		s.steps = append(s.steps, stepFromAction(act))
	}
	for _, h := range plan.Chains {
		s.chains = append(s.chains, &chain{hint: h})
	}
	sum := Summarize(snap)
	s.summary = sum
	s.Digest = sum.digest()
}

func (s *State) samePlan(plan intent.Plan) bool {
	if len(plan.ActionIDs) != len(s.steps) {
		return false
	}
	for i, id := range plan.ActionIDs {
		if s.steps[i].ActionID != id {
			return false
		}
	}
	return true
}

func stepFromAction(act *model.Action) *Step {
	st := &Step{Status: StepPending, ActionID: act.ID, Kind: act.Kind()}
	switch {
	case act.PlayCard != nil:
		st.CardID = act.PlayCard.CardID
		st.Cell = act.PlayCard.Cell
	case act.MoveUnit != nil:
		st.UnitID = act.MoveUnit.UnitID
		st.Cell = act.MoveUnit.ToCell
	case act.UnitAttack != nil:
		st.UnitID = act.UnitAttack.AttackerUnitID
		st.TargetUnitID = act.UnitAttack.TargetUnitID
	}
	return st
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
