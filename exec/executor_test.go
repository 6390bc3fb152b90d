package exec

import (
	"errors"
	"testing"

	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/model"
)

func ref(id int) *int { return &id }

func execSnap(actions ...model.Action) *model.Snapshot {
	return &model.Snapshot{
		Turn:       4,
		IsMyTurn:   true,
		BoardWidth: 5,
		Self: model.SelfSide{
			HeroHP: 20, HeroCell: 2, Mana: 3,
			Hand: []model.HandCard{{CardID: 100, Name: "Skeleton", ManaCost: 2}},
		},
		Enemy: model.EnemySide{HeroHP: 18, HeroCell: 22},
		SelfUnits: []model.Unit{
			{UnitID: 10, Name: "Skeleton", HP: 3, Atk: 2, Cell: 7, CanAttack: true},
		},
		EnemyUnits: []model.Unit{
			{UnitID: 20, Name: "Ash", HP: 5, Atk: 4, Cell: 17},
		},
		LegalActions: actions,
	}
}

type recorder struct {
	ids  []int
	fail bool
}

func (r *recorder) submit(id int) error {
	if r.fail {
		return errors.New("socket closed")
	}
	r.ids = append(r.ids, id)
	return nil
}

func TestRunBatchSubmitsPendingSteps(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
		model.Action{ID: 9, EndTurn: true},
	)
	st := NewState()
	rec := &recorder{}

	res := RunBatch(st, intent.Plan{ActionIDs: []int{7, 9}}, snap, rec.submit)
	if len(res.Submitted) != 2 || res.Submitted[0] != 7 || res.Submitted[1] != 9 {
		t.Errorf("Submitted = %v, want [7 9]", res.Submitted)
	}
	if res.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", res.Skipped)
	}
	for _, step := range st.Steps() {
		if step.Status != StepQueued {
			t.Errorf("step %d status = %q, want queued", step.ActionID, step.Status)
		}
	}
}

func TestRunBatchIsIdempotent(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	rec := &recorder{}
	plan := intent.Plan{ActionIDs: []int{7}}

	RunBatch(st, plan, snap, rec.submit)
	second := RunBatch(st, plan, snap, rec.submit)

	if len(second.Submitted) != 0 {
		t.Errorf("second pass Submitted = %v, want none", second.Submitted)
	}
	if len(rec.ids) != 1 {
		t.Errorf("total submissions = %v, want exactly one", rec.ids)
	}
}

func TestRunBatchRematchesChangedID(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	rec := &recorder{}
	st.AdoptPlan(intent.Plan{ActionIDs: []int{7}}, snap)

	// The pool refreshed and the same semantic attack now carries ID 17.
	fresh := execSnap(
		model.Action{ID: 17, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	res := RunBatch(st, intent.Plan{ActionIDs: []int{7}}, fresh, rec.submit)
	if len(res.Submitted) != 1 || res.Submitted[0] != 17 {
		t.Errorf("Submitted = %v, want [17]", res.Submitted)
	}
}

func TestRunBatchRejectsReusedIDOfDifferentKind(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	st.AdoptPlan(intent.Plan{ActionIDs: []int{7}}, snap)

	// ID 7 now means a card play and the original attack is gone entirely.
	fresh := execSnap(
		model.Action{ID: 7, PlayCard: &model.PlayCardAction{CardID: 100, Cell: 1}},
	)
	rec := &recorder{}
	res := RunBatch(st, intent.Plan{ActionIDs: []int{7}}, fresh, rec.submit)
	if len(res.Submitted) != 0 || res.Skipped != 1 {
		t.Errorf("result = %+v, want one skip and no submissions", res)
	}
}

func TestRunBatchClaimedCellSubstitution(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 5, PlayCard: &model.PlayCardAction{CardID: 100, Cell: 3}},
		model.Action{ID: 6, PlayCard: &model.PlayCardAction{CardID: 100, Cell: 4}},
	)
	st := NewState()
	rec := &recorder{}

	// Both steps resolved to the same placement cell; the second must take
	// the nearest free alternative.
	res := RunBatch(st, intent.Plan{ActionIDs: []int{5, 5}}, snap, rec.submit)
	if len(res.Submitted) != 2 {
		t.Fatalf("Submitted = %v, want two placements", res.Submitted)
	}
	if res.Submitted[0] != 5 || res.Submitted[1] != 6 {
		t.Errorf("Submitted = %v, want [5 6]", res.Submitted)
	}
}

func TestRunBatchFiresChainWhenAttackAppears(t *testing.T) {
	moveSnap := execSnap(
		model.Action{ID: 4, MoveUnit: &model.MoveUnitAction{UnitID: 10, ToCell: 13}},
	)
	st := NewState()
	rec := &recorder{}
	plan := intent.Plan{ActionIDs: []int{4}, Chains: []intent.ChainHint{{AttackerUnitID: 10, PreferredTargetUnitID: 20}}}

	res := RunBatch(st, plan, moveSnap, rec.submit)
	if len(res.Submitted) != 1 || len(res.Chained) != 0 {
		t.Fatalf("first pass = %+v, want move only", res)
	}

	// Next poll: the move confirmed and the unlocked attack is now legal.
	afterMove := execSnap(
		model.Action{ID: 21, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	afterMove.SelfUnits[0].Cell = 13
	res = RunBatch(st, plan, afterMove, rec.submit)
	if len(res.Chained) != 1 || res.Chained[0] != 21 {
		t.Fatalf("Chained = %v, want [21]", res.Chained)
	}

	// A third pass must not re-fire the chain.
	res = RunBatch(st, plan, afterMove, rec.submit)
	if len(res.Chained) != 0 {
		t.Errorf("chain re-fired: %v", res.Chained)
	}
}

func TestChainWaitsOutThePassThatMoved(t *testing.T) {
	// The pool still lists a pre-move attack on a different unit. Firing
	// the chain in the same pass as its enabling move would submit that
	// stale order and burn the chain.
	snap := execSnap(
		model.Action{ID: 4, MoveUnit: &model.MoveUnitAction{UnitID: 10, ToCell: 13}},
		model.Action{ID: 5, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(21)}},
	)
	st := NewState()
	rec := &recorder{}
	plan := intent.Plan{ActionIDs: []int{4}, Chains: []intent.ChainHint{{AttackerUnitID: 10, PreferredTargetUnitID: 20}}}

	res := RunBatch(st, plan, snap, rec.submit)
	if len(res.Submitted) != 1 || res.Submitted[0] != 4 {
		t.Fatalf("Submitted = %v, want the move only", res.Submitted)
	}
	if len(res.Chained) != 0 {
		t.Fatalf("Chained = %v, chain fired from the pre-move pool", res.Chained)
	}

	// Next snapshot: the move confirmed and the preferred target is in range.
	afterMove := execSnap(
		model.Action{ID: 22, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	afterMove.SelfUnits[0].Cell = 13
	res = RunBatch(st, plan, afterMove, rec.submit)
	if len(res.Chained) != 1 || res.Chained[0] != 22 {
		t.Errorf("Chained = %v, want the deferred attack [22]", res.Chained)
	}
}

func TestChainPrefersNamedTargetElseFallback(t *testing.T) {
	pool := []model.Action{
		{ID: 1, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(21)}},
		{ID: 2, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	}
	if act := chainAttack(pool, intent.ChainHint{AttackerUnitID: 10, PreferredTargetUnitID: 20}); act == nil || act.ID != 2 {
		t.Errorf("chainAttack preferred = %+v, want action 2", act)
	}
	if act := chainAttack(pool, intent.ChainHint{AttackerUnitID: 10, PreferredTargetUnitID: 99}); act == nil || act.ID != 1 {
		t.Errorf("chainAttack fallback = %+v, want first attack by the unit", act)
	}
	if act := chainAttack(pool, intent.ChainHint{AttackerUnitID: 55}); act != nil {
		t.Errorf("chainAttack for absent unit = %+v, want nil", act)
	}
}

func TestRunBatchSubmitFailureKeepsStepPending(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	rec := &recorder{fail: true}

	res := RunBatch(st, intent.Plan{ActionIDs: []int{7}}, snap, rec.submit)
	if len(res.Submitted) != 0 || res.Skipped != 1 {
		t.Fatalf("result = %+v, want one skip", res)
	}

	// The step stayed pending, so a later healthy pass retries it.
	rec.fail = false
	res = RunBatch(st, intent.Plan{ActionIDs: []int{7}}, snap, rec.submit)
	if len(res.Submitted) != 1 || res.Submitted[0] != 7 {
		t.Errorf("retry Submitted = %v, want [7]", res.Submitted)
	}
}

func TestRunSingleStopsAfterOne(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
		model.Action{ID: 9, EndTurn: true},
	)
	st := NewState()
	rec := &recorder{}
	plan := intent.Plan{ActionIDs: []int{7, 9}}

	id, ok := RunSingle(st, plan, snap, rec.submit)
	if !ok || id != 7 {
		t.Fatalf("RunSingle = (%d,%v), want (7,true)", id, ok)
	}
	id, ok = RunSingle(st, plan, snap, rec.submit)
	if !ok || id != 9 {
		t.Fatalf("second RunSingle = (%d,%v), want (9,true)", id, ok)
	}
	if _, ok = RunSingle(st, plan, snap, rec.submit); ok {
		t.Error("third RunSingle resolved something from an exhausted plan")
	}
}

func TestObserveTurnAdvanceResetsPlan(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	rec := &recorder{}
	RunBatch(st, intent.Plan{ActionIDs: []int{7}}, snap, rec.submit)

	next := execSnap()
	next.Turn = 5
	st.Observe(next)
	if len(st.Steps()) != 0 {
		t.Errorf("steps survived a turn advance: %v", st.Steps())
	}
}

func TestObserveDriftResetsPlan(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	rec := &recorder{}
	RunBatch(st, intent.Plan{ActionIDs: []int{7}}, snap, rec.submit)

	// Same turn, but both heroes took a beating: material drift.
	shaken := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	shaken.Self.HeroHP = 8
	shaken.Enemy.HeroHP = 12
	st.Observe(shaken)
	if len(st.Steps()) != 0 {
		t.Errorf("steps survived drift: %v", st.Steps())
	}
}

func TestObserveMinorChangeKeepsPlan(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	st := NewState()
	rec := &recorder{}
	RunBatch(st, intent.Plan{ActionIDs: []int{7}}, snap, rec.submit)

	minor := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
	)
	minor.Enemy.HeroHP = 16 // our own poke echoing back
	st.Observe(minor)
	if len(st.Steps()) != 1 {
		t.Errorf("plan discarded on a routine change")
	}
}

func TestDrifted(t *testing.T) {
	base := Summary{Turn: 4, UnitCount: 6, TotalHP: 60, HandSize: 3}
	tests := []struct {
		name string
		cur  Summary
		want bool
	}{
		{"identical", base, false},
		{"small hp dip", Summary{Turn: 4, UnitCount: 6, TotalHP: 55, HandSize: 3}, false},
		{"board wipe", Summary{Turn: 4, UnitCount: 2, TotalHP: 60, HandSize: 3}, true},
		{"burst damage", Summary{Turn: 4, UnitCount: 6, TotalHP: 45, HandSize: 3}, true},
		{"hand dump", Summary{Turn: 4, UnitCount: 6, TotalHP: 60, HandSize: 7}, true},
		{"turn jump", Summary{Turn: 8, UnitCount: 6, TotalHP: 60, HandSize: 3}, true},
	}
	for _, tc := range tests {
		if got := Drifted(base, tc.cur); got != tc.want {
			t.Errorf("%s: Drifted = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSafeFallbackPriority(t *testing.T) {
	attack := model.Action{ID: 1, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}}
	play := model.Action{ID: 2, PlayCard: &model.PlayCardAction{CardID: 100, Cell: 3}}
	power := model.Action{ID: 3, HeroPower: true}
	move := model.Action{ID: 4, MoveUnit: &model.MoveUnitAction{UnitID: 10, ToCell: 13}}
	end := model.Action{ID: 5, EndTurn: true}

	tests := []struct {
		name string
		pool []model.Action
		want int
	}{
		{"attack first", []model.Action{end, move, play, attack}, 1},
		{"play before power", []model.Action{end, power, play}, 2},
		{"power before move", []model.Action{end, move, power}, 3},
		{"move before end", []model.Action{end, move}, 4},
		{"end alone", []model.Action{end}, 5},
	}
	for _, tc := range tests {
		snap := execSnap(tc.pool...)
		id, ok := SafeFallback(snap)
		if !ok || id != tc.want {
			t.Errorf("%s: SafeFallback = (%d,%v), want (%d,true)", tc.name, id, ok, tc.want)
		}
	}

	if _, ok := SafeFallback(execSnap()); ok {
		t.Error("SafeFallback found an action in an empty pool")
	}
}

func TestSafeFallbackPrefersEnablingMove(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 2, PlayCard: &model.PlayCardAction{CardID: 100, Cell: 3}},
		model.Action{ID: 4, MoveUnit: &model.MoveUnitAction{UnitID: 10, ToCell: 13}},
		model.Action{ID: 5, EndTurn: true},
	)
	snap.TacticalPreview = []model.PreviewRow{
		{UnitID: 10, ToCell: 13, Attacks: []model.PreviewAttack{{TargetUnitID: 20}}},
	}
	id, ok := SafeFallback(snap)
	if !ok || id != 4 {
		t.Errorf("SafeFallback = (%d,%v), want the enabling move (4,true)", id, ok)
	}
}

func TestPlanFromFlatSteps(t *testing.T) {
	snap := execSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
		model.Action{ID: 5, PlayCard: &model.PlayCardAction{CardID: 100, Cell: 3}},
		model.Action{ID: 9, EndTurn: true},
	)
	plan := PlanFromFlatSteps([]FlatStep{
		{Type: "attack", UnitID: 10, TargetUnitID: ref(20)},
		{Type: "play", CardID: 100},
		{Type: "attack", UnitID: 10, TargetUnitID: ref(20)}, // duplicate, already used
		{Type: "move", UnitID: 99, Cell: 1},                 // unresolvable, dropped
		{Type: "end_turn"},
	}, snap)

	want := []int{7, 5, 9}
	if len(plan.ActionIDs) != 3 {
		t.Fatalf("ActionIDs = %v, want %v", plan.ActionIDs, want)
	}
	for i, id := range want {
		if plan.ActionIDs[i] != id {
			t.Errorf("ActionIDs = %v, want %v", plan.ActionIDs, want)
			break
		}
	}
	if !plan.OK {
		t.Error("plan not OK")
	}
}
