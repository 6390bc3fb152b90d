// Package agent owns the per-turn decision pipeline for a single player
// session: perceive the snapshot, try the fast path, consult the intent
// source under a timeout, resolve intents into legal action IDs, submit
// them, and record what happened. One snapshot is fully processed before
// the next is accepted — the pipeline is synchronous per turn.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ldevreaux/gambit/board"
	"github.com/ldevreaux/gambit/exec"
	"github.com/ldevreaux/gambit/fastpath"
	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/ipc"
	"github.com/ldevreaux/gambit/model"
	"github.com/ldevreaux/gambit/record"
)

const defaultSourceTimeout = 8 * time.Second

// Agent owns the decision-making for a single player session.
type Agent struct {
	Conn     *ipc.Connection
	Player   string
	Fast     *fastpath.Engine
	Resolver *intent.Resolver
	Source   IntentSource
	Records  *record.Store // optional; nil disables persistence
	State    *exec.State

	SourceTimeout time.Duration

	boardWidth  int
	boardHeight int
}

func New(conn *ipc.Connection, fast *fastpath.Engine, resolver *intent.Resolver, source IntentSource, records *record.Store) *Agent {
	return &Agent{
		Conn:          conn,
		Fast:          fast,
		Resolver:      resolver,
		Source:        source,
		Records:       records,
		State:         exec.NewState(),
		SourceTimeout: defaultSourceTimeout,
	}
}

// HandleHello completes the handshake so the client knows the sidecar is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Player = hello.Player
	a.Conn.Player = hello.Player
	a.boardWidth = hello.BoardWidth
	a.boardHeight = hello.BoardHeight
	a.State.Reset()
	slog.Info("player identified", "player", a.Player, "deck", hello.Deck,
		"board", fmt.Sprintf("%dx%d", hello.BoardWidth, hello.BoardHeight))

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleSnapshot runs the full pipeline for one snapshot and acks. Every
// failure path still advances the turn: fast path, then resolved intents,
// then the safe fallback.
func (a *Agent) HandleSnapshot(env ipc.Envelope) (*ipc.Envelope, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.BoardWidth == 0 {
		snap.BoardWidth = a.boardWidth
	}
	if snap.BoardHeight == 0 {
		snap.BoardHeight = a.boardHeight
	}

	a.State.Observe(&snap)

	if snap.IsMyTurn {
		a.decide(&snap)
	}

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a *Agent) decide(snap *model.Snapshot) {
	analysis := board.Analyze(snap)
	slog.Info("snapshot received",
		"player", a.Player,
		"turn", snap.Turn,
		"mana", snap.Self.Mana,
		"units", len(snap.SelfUnits),
		"enemies", len(snap.EnemyUnits),
		"hand", len(snap.Self.Hand),
		"legal", len(snap.LegalActions),
	)

	// Obvious plays bypass the whole pipeline.
	if decision, ok := a.Fast.Evaluate(analysis); ok {
		if err := a.submit(decision.ActionID); err != nil {
			slog.Error("fast-path submit failed", "action", decision.ActionID, "error", err)
			return
		}
		a.logDecision(record.Decision{
			Turn: snap.Turn, Method: record.MethodFast,
			ActionID: decision.ActionID, Confidence: decision.Confidence,
			Reason: decision.Reason,
		})
		return
	}

	plan, ok := a.consultSource(analysis)
	if !ok || (len(plan.ActionIDs) == 0 && len(plan.Chains) == 0) {
		a.fallback(snap, analysis)
		return
	}

	res := exec.RunBatch(a.State, plan, snap, a.submit)
	if len(res.Submitted) == 0 && len(res.Chained) == 0 {
		a.fallback(snap, analysis)
		return
	}

	first := append(res.Submitted, res.Chained...)[0]
	a.logDecision(record.Decision{
		Turn: snap.Turn, Method: record.MethodResolved,
		ActionID: first, Confidence: 0.7,
		Reason:  fmt.Sprintf("resolved %d actions, %d errors", len(plan.ActionIDs), len(plan.Errors)),
		Context: strings.Join(plan.Explain, "; "),
	})
}

// consultSource awaits the external intent source under the timeout and
// resolves whatever comes back. Any failure is recoverable: ok=false tells
// the caller to fall back rather than stall the turn.
func (a *Agent) consultSource(analysis *board.Analysis) (intent.Plan, bool) {
	timeout := a.SourceTimeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var feedback []record.Decision
	if a.Records != nil {
		if recent, err := a.Records.Recent(5); err == nil {
			feedback = recent
		}
	}

	proposals, err := a.Source.Propose(ctx, analysis.Report, feedback)
	if err != nil {
		slog.Warn("intent source failed, falling back", "error", err)
		return intent.Plan{}, false
	}

	intents, verbErrs := intent.FromProposals(proposals)
	for _, e := range verbErrs {
		slog.Warn("proposal rejected", "index", e.Index, "code", e.Code, "message", e.Message)
	}
	if len(intents) == 0 {
		return intent.Plan{}, false
	}

	plan := a.Resolver.Resolve(intents, analysis)
	for _, e := range plan.Errors {
		slog.Warn("intent unresolved", "index", e.Index, "code", e.Code, "message", e.Message)
	}
	return plan, true
}

// fallback keeps the turn moving when resolution produced nothing.
func (a *Agent) fallback(snap *model.Snapshot, analysis *board.Analysis) {
	id, ok := exec.SafeFallback(snap)
	if !ok {
		slog.Warn("no legal action at all", "turn", snap.Turn)
		return
	}
	if err := a.submit(id); err != nil {
		slog.Error("fallback submit failed", "action", id, "error", err)
		return
	}
	a.logDecision(record.Decision{
		Turn: snap.Turn, Method: record.MethodFallback,
		ActionID: id, Confidence: 0.3, Reason: "safe_fallback",
	})
}

func (a *Agent) submit(actionID int) error {
	slog.Debug("submitting action", "player", a.Player, "action", actionID)
	return a.Conn.Send(ipc.TypeSubmitAction, ipc.SubmitActionCommand{ActionID: actionID})
}

func (a *Agent) logDecision(d record.Decision) {
	if a.Records == nil {
		return
	}
	if _, err := a.Records.Log(d); err != nil {
		slog.Warn("decision record write failed", "error", err)
	}
}
