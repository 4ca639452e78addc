package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/compiler"
	"github.com/roach88/stride/internal/ir"
)

func sampleDoc(journeyID string) *ir.IR {
	return &ir.IR{
		IRVersion: ir.IRVersion,
		JourneyID: journeyID,
		Title:     "Sample",
		Groups: []ir.Group{{
			CriterionID: "ac-1",
			Actions: []ir.Action{
				{Kind: ir.KindClick, Target: "Save", Role: "button", Source: "Click the 'Save' button"},
			},
		}},
	}
}

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "stride.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

func TestRecordRun_RoundTrip(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	sum := &compiler.Summary{
		Matched: 3,
		Blocked: 1,
		BlockedByCategory: map[string]int{
			"assertion": 1,
		},
		LearnedHits: 1,
	}
	require.NoError(t, l.RecordRun(ctx, sampleDoc("checkout-basic"), sum))

	runs, err := l.Runs(ctx, "checkout-basic")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, "checkout-basic", r.JourneyID)
	assert.Equal(t, ir.MustHash(sampleDoc("checkout-basic")), r.IRHash)
	assert.Equal(t, ir.CompilerVersion, r.CompilerVersion)
	assert.Equal(t, 3, r.Summary.Matched)
	assert.Equal(t, 1, r.Summary.Blocked)
	assert.Equal(t, 1, r.Summary.BlockedByCategory["assertion"])
	assert.False(t, r.CreatedAt.IsZero())
}

func TestRecordRun_IdempotentOnUnchangedIR(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()
	sum := &compiler.Summary{Matched: 1}

	require.NoError(t, l.RecordRun(ctx, sampleDoc("checkout-basic"), sum))
	require.NoError(t, l.RecordRun(ctx, sampleDoc("checkout-basic"), sum))

	runs, err := l.Runs(ctx, "checkout-basic")
	require.NoError(t, err)
	assert.Len(t, runs, 1, "recompiling unchanged IR must not grow the ledger")

	// A changed document is a new row.
	changed := sampleDoc("checkout-basic")
	changed.Groups[0].Actions[0].Target = "Submit"
	require.NoError(t, l.RecordRun(ctx, changed, sum))

	runs, err = l.Runs(ctx, "checkout-basic")
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRuns_FilterByJourney(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()
	sum := &compiler.Summary{Matched: 1}

	require.NoError(t, l.RecordRun(ctx, sampleDoc("checkout-basic"), sum))
	require.NoError(t, l.RecordRun(ctx, sampleDoc("signup-basic"), sum))

	runs, err := l.Runs(ctx, "checkout-basic")
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	all, err := l.Runs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
