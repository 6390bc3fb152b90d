// Package record persists per-decision provenance: what the board looked
// like, which path chose the action (fast or resolved), and — attached
// later — how it turned out. Downstream analytics read these rows; this
// package only owns the write interface.
package record

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	decision_id  TEXT PRIMARY KEY,
	turn         INTEGER NOT NULL,
	method       TEXT NOT NULL,
	action_id    INTEGER NOT NULL,
	confidence   REAL NOT NULL,
	reason       TEXT,
	context      TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	decision_id  TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	detail       TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (decision_id) REFERENCES decisions(decision_id)
);
`

// timeLayout keeps all nine fractional digits so created_at strings sort
// lexicographically in chronological order (RFC3339Nano trims trailing
// zeros, which breaks ORDER BY for rows within the same second).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Method distinguishes which path produced the action.
const (
	MethodFast     = "fast"
	MethodResolved = "resolved"
	MethodFallback = "fallback"
)

// Decision is one row in the decisions table.
type Decision struct {
	DecisionID string
	Turn       int
	Method     string
	ActionID   int
	Confidence float64
	Reason     string
	Context    string // rendered battle report or explain trail
	CreatedAt  time.Time
}

// Store wraps the SQLite decision log.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Log writes a decision and returns its generated ID.
func (s *Store) Log(d Decision) (string, error) {
	if d.DecisionID == "" {
		d.DecisionID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO decisions (decision_id, turn, method, action_id, confidence, reason, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DecisionID, d.Turn, d.Method, d.ActionID, d.Confidence,
		nullIfEmpty(d.Reason), nullIfEmpty(d.Context),
		d.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("log decision: %w", err)
	}
	return d.DecisionID, nil
}

// AttachOutcome appends an execution outcome to an earlier decision.
func (s *Store) AttachOutcome(decisionID, outcome, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO outcomes (decision_id, outcome, detail, created_at) VALUES (?, ?, ?, ?)`,
		decisionID, outcome, nullIfEmpty(detail), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("attach outcome: %w", err)
	}
	return nil
}

// Recent returns the n most recent decisions, newest first. Used to give
// the intent source short-horizon feedback about its own past calls.
func (s *Store) Recent(n int) ([]Decision, error) {
	rows, err := s.db.Query(
		`SELECT decision_id, turn, method, action_id, confidence,
		        COALESCE(reason, ''), COALESCE(context, ''), created_at
		 FROM decisions ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		var created string
		if err := rows.Scan(&d.DecisionID, &d.Turn, &d.Method, &d.ActionID,
			&d.Confidence, &d.Reason, &d.Context, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
