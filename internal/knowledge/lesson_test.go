package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/testutil"
)

var testStart = time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

func testStore(t *testing.T) (*Store, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock(testStart)
	s, err := Open(t.TempDir(), DefaultConfig(), WithClock(clock))
	require.NoError(t, err)
	return s, clock
}

func TestRecordLesson_RoundTrip(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	lesson, err := s.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonSelector,
		Description: "The Save button needs its accessible name, not its test id",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.ID)
	assert.Equal(t, StateNew, lesson.State)
	assert.Equal(t, 1, lesson.Occurrences)
	assert.Equal(t, 1.0, lesson.SuccessRate)
	assert.Equal(t, initialConfidence, lesson.Confidence)
	assert.Equal(t, testStart, lesson.FirstSeen)

	got, err := s.QueryLessonsByCategory(LessonSelector)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lesson.ID, got[0].ID)
	assert.Equal(t, lesson.Description, got[0].Description)
}

func TestRecordLesson_InvalidInput(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	_, err := s.RecordLesson(ctx, LessonInput{Category: "bogus", Description: "x"})
	assert.Error(t, err)

	_, err = s.RecordLesson(ctx, LessonInput{Category: LessonSelector})
	assert.Error(t, err)
}

func TestRecordLesson_ExactRepeatReinforces(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	in := LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonTiming,
		Description: "Wait on the order confirmation toast, not a sleep",
	}
	first, err := s.RecordLesson(ctx, in)
	require.NoError(t, err)

	second, err := s.RecordLesson(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "an exact repeat must not create a new lesson")
	assert.Equal(t, 2, second.Occurrences)
	assert.Equal(t, StateActive, second.State)

	all, err := s.QueryLessonsByCategory(LessonTiming)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordLesson_RateLimitSurvivesReopen(t *testing.T) {
	clock := testutil.NewFakeClock(testStart)
	dir := t.TempDir()
	cfg := DefaultConfig()
	ctx := context.Background()

	s, err := Open(dir, cfg, WithClock(clock))
	require.NoError(t, err)

	descriptions := []string{"first fix", "second fix", "third fix"}
	for _, d := range descriptions {
		_, err := s.RecordLesson(ctx, LessonInput{
			JourneyID:   "checkout-basic",
			Category:    LessonQuirk,
			Description: d,
		})
		require.NoError(t, err)
	}

	// Reopening must not reset the counter: it is derived from the
	// durable history log, not process memory.
	s2, err := Open(dir, cfg, WithClock(clock))
	require.NoError(t, err)

	_, err = s2.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonQuirk,
		Description: "fourth fix",
	})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	// A different journey still has its own allowance.
	_, err = s2.RecordLesson(ctx, LessonInput{
		JourneyID:   "signup-basic",
		Category:    LessonQuirk,
		Description: "unrelated fix",
	})
	assert.NoError(t, err)

	// The day rollover restores the allowance.
	clock.Advance(24 * time.Hour)
	_, err = s2.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonQuirk,
		Description: "next-day fix",
	})
	assert.NoError(t, err)
}

func TestRateLimit_EmitsHistoryEvent(t *testing.T) {
	s, clock := testStore(t)
	ctx := context.Background()

	for i, d := range []string{"a", "b", "c", "d"} {
		_, err := s.RecordLesson(ctx, LessonInput{
			JourneyID:   "checkout-basic",
			Category:    LessonData,
			Description: "fix " + d,
		})
		if i < 3 {
			require.NoError(t, err)
		} else {
			require.True(t, IsRateLimited(err))
		}
	}

	events, err := s.History(clock.Now())
	require.NoError(t, err)
	kinds := make(map[string]int)
	for _, ev := range events {
		kinds[ev.Kind]++
	}
	assert.Equal(t, 3, kinds[EventLessonRecorded])
	assert.Equal(t, 1, kinds[EventRateLimited])
}

func TestMarkLessonApplied_StateMachine(t *testing.T) {
	s, clock := testStore(t)
	ctx := context.Background()

	lesson, err := s.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonSelector,
		Description: "Prefer role locators",
	})
	require.NoError(t, err)
	require.Equal(t, StateNew, lesson.State)

	applied, err := s.MarkLessonApplied(ctx, lesson.ID, "signup-basic", true)
	require.NoError(t, err)
	assert.Equal(t, StateActive, applied.State)
	assert.Equal(t, 2, applied.Occurrences)
	assert.Equal(t, clock.Now(), applied.LastSuccess)

	// A failure leaves the state alone but drags confidence down.
	before := applied.Confidence
	failed, err := s.MarkLessonApplied(ctx, lesson.ID, "signup-basic", false)
	require.NoError(t, err)
	assert.Equal(t, StateActive, failed.State)
	assert.Less(t, failed.Confidence, before)
	assert.GreaterOrEqual(t, failed.Confidence, 0.0)
	assert.LessOrEqual(t, failed.Confidence, 1.0)
}

func TestMarkLessonApplied_ReactivatesStale(t *testing.T) {
	s, clock := testStore(t)
	ctx := context.Background()
	cfg := DefaultConfig()

	lesson, err := s.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonNavigation,
		Description: "Route through the dashboard shortcut",
	})
	require.NoError(t, err)

	clock.Advance(2*cfg.DecayHorizon + time.Hour)
	stale, err := s.QueryLessonsByCategory(LessonNavigation)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, StateStale, stale[0].State)

	applied, err := s.MarkLessonApplied(ctx, lesson.ID, "checkout-basic", true)
	require.NoError(t, err)
	assert.Equal(t, StateActive, applied.State)
}

func TestArchiveLesson_Sticky(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	lesson, err := s.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonAuth,
		Description: "Log in through the session fixture",
	})
	require.NoError(t, err)

	require.NoError(t, s.ArchiveLesson(ctx, lesson.ID))

	_, err = s.MarkLessonApplied(ctx, lesson.ID, "checkout-basic", true)
	assert.Error(t, err, "archived lessons are curation-only")

	got, err := s.QueryLessonsByCategory(LessonAuth)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, StateArchived, got[0].State, "archive is sticky through decay computation")
}

func TestSweep_PersistsDecay(t *testing.T) {
	s, clock := testStore(t)
	ctx := context.Background()
	cfg := DefaultConfig()

	lesson, err := s.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonAssertion,
		Description: "Assert the total, not the row count",
	})
	require.NoError(t, err)
	confidence := lesson.Confidence

	clock.Advance(cfg.DecayHorizon + time.Hour)
	require.NoError(t, s.Sweep(ctx))

	lessons, err := s.loadLessons()
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, StateDecaying, lessons[0].State, "sweep persists the stored state")
	assert.InDelta(t, confidence*cfg.DecayFactor, lessons[0].Confidence, 1e-9)
}
