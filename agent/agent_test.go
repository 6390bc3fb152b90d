package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ldevreaux/gambit/board"
	"github.com/ldevreaux/gambit/fastpath"
	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/ipc"
	"github.com/ldevreaux/gambit/model"
	"github.com/ldevreaux/gambit/record"
)

// testHarness wires an agent to one end of an in-memory pipe and collects
// every action ID the agent submits on the other end.
type testHarness struct {
	agent     *Agent
	submitted chan int
	done      chan struct{}
}

func newHarness(t *testing.T, source IntentSource) *testHarness {
	t.Helper()
	server, client := net.Pipe()

	fast, err := fastpath.NewEngine(fastpath.DefaultProfile())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	h := &testHarness{
		agent:     New(ipc.NewConnection(server, nil), fast, intent.NewResolver(nil), source, nil),
		submitted: make(chan int, 16),
		done:      make(chan struct{}),
	}
	h.agent.SourceTimeout = time.Second

	go func() {
		defer close(h.done)
		for {
			env, err := ipc.ReadEnvelope(client)
			if err != nil {
				return
			}
			if env.Type != ipc.TypeSubmitAction {
				continue
			}
			var cmd ipc.SubmitActionCommand
			if err := json.Unmarshal(env.Data, &cmd); err != nil {
				continue
			}
			h.submitted <- cmd.ActionID
		}
	}()
	t.Cleanup(func() {
		server.Close()
		client.Close()
		<-h.done
	})
	return h
}

func (h *testHarness) snapshot(t *testing.T, snap *model.Snapshot) *ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(ipc.TypeSnapshot, snap)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	resp, err := h.agent.HandleSnapshot(env)
	if err != nil {
		t.Fatalf("HandleSnapshot: %v", err)
	}
	return resp
}

func (h *testHarness) waitSubmission(t *testing.T) int {
	t.Helper()
	select {
	case id := <-h.submitted:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no action submitted")
		return 0
	}
}

func noProposals(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error) {
	return nil, errors.New("unavailable")
}

func agentSnap(actions ...model.Action) *model.Snapshot {
	return &model.Snapshot{
		Turn:       2,
		IsMyTurn:   true,
		BoardWidth: 5,
		Self:       model.SelfSide{HeroHP: 20, HeroCell: 2, Mana: 3},
		Enemy:      model.EnemySide{HeroHP: 18, HeroCell: 22},
		SelfUnits: []model.Unit{
			{UnitID: 10, Name: "Skeleton", HP: 3, Atk: 2, Cell: 7, CanAttack: true},
		},
		EnemyUnits: []model.Unit{
			{UnitID: 20, Name: "Ash", HP: 5, Atk: 4, Cell: 17},
			{UnitID: 21, Name: "Gravekeeper", HP: 9, Atk: 2, Cell: 18},
		},
		LegalActions: actions,
	}
}

func TestHandleHello(t *testing.T) {
	h := newHarness(t, SourceFunc(noProposals))
	env, err := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{Player: "gravelord", BoardWidth: 5, BoardHeight: 5})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := h.agent.HandleHello(env)
	if err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("response = %+v, want ack", resp)
	}
	if h.agent.Player != "gravelord" {
		t.Errorf("Player = %q, want gravelord", h.agent.Player)
	}
}

func TestFastPathShortCircuits(t *testing.T) {
	h := newHarness(t, SourceFunc(func(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error) {
		t.Error("intent source consulted on an obvious turn")
		return nil, nil
	}))

	resp := h.snapshot(t, agentSnap(model.Action{ID: 1, EndTurn: true}))
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("response = %+v, want ack", resp)
	}
	if id := h.waitSubmission(t); id != 1 {
		t.Errorf("submitted %d, want 1", id)
	}
}

func TestResolvedPath(t *testing.T) {
	h := newHarness(t, SourceFunc(func(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error) {
		return []intent.Proposal{
			{Verb: "KILL", Subject: "Skeleton", Target: "Gravekeeper", Priority: 1},
		}, nil
	}))

	// Two attack options keep every fast-path check quiet (nothing lethal,
	// not a sole attack), so the turn goes through the intent source.
	h.snapshot(t, agentSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
		model.Action{ID: 8, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(21)}},
		model.Action{ID: 9, EndTurn: true},
	))
	if id := h.waitSubmission(t); id != 8 {
		t.Errorf("submitted %d, want the named target's attack 8", id)
	}
}

func TestFallbackOnSourceFailure(t *testing.T) {
	h := newHarness(t, SourceFunc(noProposals))

	h.snapshot(t, agentSnap(
		model.Action{ID: 7, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(20)}},
		model.Action{ID: 8, UnitAttack: &model.UnitAttackAction{AttackerUnitID: 10, TargetUnitID: ref(21)}},
		model.Action{ID: 9, EndTurn: true},
	))
	// Safe fallback takes the first attack.
	if id := h.waitSubmission(t); id != 7 {
		t.Errorf("submitted %d, want fallback attack 7", id)
	}
}

func TestNotMyTurnSubmitsNothing(t *testing.T) {
	h := newHarness(t, SourceFunc(func(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error) {
		t.Error("intent source consulted off-turn")
		return nil, nil
	}))

	snap := agentSnap(model.Action{ID: 9, EndTurn: true})
	snap.IsMyTurn = false
	resp := h.snapshot(t, snap)
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Fatalf("response = %+v, want ack", resp)
	}
	select {
	case id := <-h.submitted:
		t.Errorf("submitted %d on the opponent's turn", id)
	case <-time.After(100 * time.Millisecond):
	}
}

func ref(id int) *int { return &id }
