package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/stride/internal/compiler"
	"github.com/roach88/stride/internal/ir"
)

// Run is one recorded compile.
type Run struct {
	ID              string           `json:"id"`
	JourneyID       string           `json:"journey_id"`
	IRHash          string           `json:"ir_hash"`
	IRVersion       string           `json:"ir_version"`
	CompilerVersion string           `json:"compiler_version"`
	Summary         compiler.Summary `json:"summary"`
	CreatedAt       time.Time        `json:"created_at"`
}

// RecordRun inserts one compile-run record. Idempotent on
// (journey_id, ir_hash): recompiling an unchanged journey does not grow
// the ledger, so the history reflects IR changes, not invocation counts.
func (l *Ledger) RecordRun(ctx context.Context, doc *ir.IR, sum *compiler.Summary) error {
	hash, err := ir.Hash(doc)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	byCategory, err := json.Marshal(sum.BlockedByCategory)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO compile_runs
		(id, journey_id, ir_hash, ir_version, compiler_version,
		 matched, blocked, learned_hits, blocked_by_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(journey_id, ir_hash) DO NOTHING
	`,
		uuid.Must(uuid.NewV7()).String(),
		doc.JourneyID,
		hash,
		doc.IRVersion,
		ir.CompilerVersion,
		sum.Matched,
		sum.Blocked,
		sum.LearnedHits,
		string(byCategory),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Runs returns a journey's recorded compiles, newest first. journeyID ""
// returns every journey's runs.
func (l *Ledger) Runs(ctx context.Context, journeyID string) ([]Run, error) {
	query := `
		SELECT id, journey_id, ir_hash, ir_version, compiler_version,
		       matched, blocked, learned_hits, blocked_by_category, created_at
		FROM compile_runs
	`
	var args []any
	if journeyID != "" {
		query += " WHERE journey_id = ?"
		args = append(args, journeyID)
	}
	// Deterministic order: creation time descending, id as tiebreaker.
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var byCategory, createdAt string
		if err := rows.Scan(&r.ID, &r.JourneyID, &r.IRHash, &r.IRVersion, &r.CompilerVersion,
			&r.Summary.Matched, &r.Summary.Blocked, &r.Summary.LearnedHits, &byCategory, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if byCategory != "" && byCategory != "{}" && byCategory != "null" {
			if err := json.Unmarshal([]byte(byCategory), &r.Summary.BlockedByCategory); err != nil {
				return nil, fmt.Errorf("parse run %s: %w", r.ID, err)
			}
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse run %s: %w", r.ID, err)
		}
		r.CreatedAt = t
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
