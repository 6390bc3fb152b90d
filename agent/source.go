package agent

import (
	"context"

	"github.com/ldevreaux/gambit/board"
	"github.com/ldevreaux/gambit/intent"
	"github.com/ldevreaux/gambit/record"
)

// IntentSource is the boundary to the external strategist — a language
// model, a rule engine, anything that reads a battle report and proposes
// intents. It is a black box to this side: a timeout, an error or a
// non-conforming reply all mean "no intents, use the fallback", never a
// crash.
type IntentSource interface {
	Propose(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error)
}

// SourceFunc adapts a plain function to IntentSource.
type SourceFunc func(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error)

func (f SourceFunc) Propose(ctx context.Context, report board.Report, feedback []record.Decision) ([]intent.Proposal, error) {
	return f(ctx, report, feedback)
}
