// Package intent maps high-level strategic intents onto the snapshot's
// legal action list. Intents arrive as verb/subject/target triples from an
// external source (a language model or a rule engine); resolution commits
// real action IDs, never fabricated ones, and reports every failure as a
// structured per-intent error instead of aborting the batch.
package intent

import (
	"fmt"
	"strings"
)

// Verb is the closed set of intent verbs. Unknown verbs are rejected at
// construction time by ParseVerb, so the resolver never sees one it cannot
// dispatch.
type Verb int

const (
	VerbKill Verb = iota + 1
	VerbAttack
	VerbPoke
	VerbPosition
	VerbScreen
	VerbProtect
	VerbDeploy
	VerbHold
	VerbEndTurn
)

var verbNames = map[Verb]string{
	VerbKill:     "KILL",
	VerbAttack:   "ATTACK",
	VerbPoke:     "POKE",
	VerbPosition: "POSITION",
	VerbScreen:   "SCREEN",
	VerbProtect:  "PROTECT",
	VerbDeploy:   "DEPLOY",
	VerbHold:     "HOLD",
	VerbEndTurn:  "END_TURN",
}

func (v Verb) String() string {
	if n, ok := verbNames[v]; ok {
		return n
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

// ParseVerb turns a free-text verb into a Verb, or errors for anything
// outside the closed set.
func ParseVerb(s string) (Verb, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for v, n := range verbNames {
		if n == upper {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verb %q", s)
}

// Intent is one high-level statement of desired behavior. Priority 1 is
// most urgent; ties resolve in input order. Reason is audit-only.
type Intent struct {
	Verb     Verb
	Subject  string // decorated unit name or "Hand(CardName)"
	Target   string // decorated name, zone label, or hero marker
	Priority int
	Reason   string
}

// New validates the verb and clamps priority into 1–5.
func New(verb, subject, target string, priority int, reason string) (Intent, error) {
	v, err := ParseVerb(verb)
	if err != nil {
		return Intent{}, err
	}
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}
	return Intent{Verb: v, Subject: subject, Target: target, Priority: priority, Reason: reason}, nil
}

// ErrorCode classifies why one intent failed to resolve.
type ErrorCode string

const (
	ErrUnitNotFound ErrorCode = "UNIT_NOT_FOUND"
	ErrNoAttack     ErrorCode = "NO_ATTACK"
	ErrNoMove       ErrorCode = "NO_MOVE"
	ErrNoMana       ErrorCode = "NO_MANA"
	ErrUnknownVerb  ErrorCode = "UNKNOWN_VERB"
)

// Error is a per-intent resolution failure. Sibling intents continue.
type Error struct {
	Index   int
	Code    ErrorCode
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("intent %d: %s: %s", e.Index, e.Code, e.Message)
}

// ChainHint defers an attack until after its enabling move is confirmed.
type ChainHint struct {
	AttackerUnitID        int
	PreferredTargetUnitID int
}

// Plan is the resolver output: deduplicated, capped, ordered action IDs,
// chain hints for the execution engine, an explain trail and the per-intent
// error list. OK is true when at least one ID committed, or — non-strict —
// when there was nothing to do and nothing failed.
type Plan struct {
	ActionIDs []int
	Chains    []ChainHint
	Explain   []string
	Errors    []Error
	OK        bool
	ManaLeft  int
}

// Proposal is the raw JSON shape accepted from the intent source. It is the
// single external adapter: whatever shape a source speaks gets converted to
// Proposals, then validated into Intents here.
type Proposal struct {
	Verb     string `json:"verb"`
	Subject  string `json:"subject"`
	Target   string `json:"target,omitempty"`
	Priority int    `json:"priority"`
	Reason   string `json:"reason,omitempty"`
}

// FromProposals validates proposals into intents. Invalid verbs become
// UNKNOWN_VERB errors at their original index; valid siblings survive.
func FromProposals(proposals []Proposal) ([]Intent, []Error) {
	var intents []Intent
	var errs []Error
	for i, p := range proposals {
		it, err := New(p.Verb, p.Subject, p.Target, p.Priority, p.Reason)
		if err != nil {
			errs = append(errs, Error{Index: i, Code: ErrUnknownVerb, Message: err.Error()})
			continue
		}
		intents = append(intents, it)
	}
	return intents, errs
}

// ParseHandSubject extracts the card name from a "Hand(CardName)" subject.
func ParseHandSubject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "hand(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	name := strings.TrimSpace(s[len("hand(") : len(s)-1])
	return name, name != ""
}
