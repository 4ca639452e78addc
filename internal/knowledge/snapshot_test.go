package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/ir"
)

func patternComponent(name, pattern string) ComponentInput {
	return ComponentInput{
		JourneyID:      "checkout-basic",
		Name:           name,
		Category:       LessonSelector,
		Snippet:        "await page." + name + "();",
		Provenance:     ProvenanceMined,
		StepPattern:    pattern,
		Kind:           ir.KindClick,
		TargetTemplate: "$1",
	}
}

func TestSnapshot_LearnedRulesOrderAndExclusion(t *testing.T) {
	s, clock := testStore(t)
	ctx := context.Background()
	cfg := DefaultConfig()

	_, err := s.RecordComponent(ctx, patternComponent("lowConfidence", `^poke (?:the )?(.+?)$`))
	require.NoError(t, err)

	high, err := s.RecordComponent(ctx, patternComponent("highConfidence", `^prod (?:the )?(.+?)$`))
	require.NoError(t, err)
	// Reinforce so the second component outranks the first.
	for i := 0; i < 3; i++ {
		_, err = s.MarkComponentApplied(ctx, high.ID, "checkout-basic", true)
		require.NoError(t, err)
	}

	archived, err := s.RecordComponent(ctx, patternComponent("archivedHelper", `^nudge (?:the )?(.+?)$`))
	require.NoError(t, err)
	require.NoError(t, s.ArchiveComponent(ctx, archived.ID))

	snap, err := s.Snapshot()
	require.NoError(t, err)

	rules := snap.LearnedRules(nil)
	require.Len(t, rules, 2, "archived components contribute no rules")
	assert.Equal(t, "highConfidence", rules[0].Name)
	assert.Equal(t, "lowConfidence", rules[1].Name)

	// Stale components are excluded too.
	clock.Advance(2*cfg.DecayHorizon + time.Hour)
	snap, err = s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.LearnedRules(nil))
}

func TestSnapshot_EffectiveStatesComputed(t *testing.T) {
	s, clock := testStore(t)
	ctx := context.Background()
	cfg := DefaultConfig()

	_, err := s.RecordLesson(ctx, LessonInput{
		JourneyID:   "checkout-basic",
		Category:    LessonSelector,
		Description: "aging lesson",
	})
	require.NoError(t, err)

	clock.Advance(cfg.DecayHorizon + time.Hour)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Lessons, 1)
	assert.Equal(t, StateDecaying, snap.Lessons[0].State)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	s, _ := testStore(t)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Lessons)
	assert.Empty(t, snap.Components)
	assert.Empty(t, snap.LearnedRules(nil))
}

func TestSnapshot_SkipsUnusableStoredPattern(t *testing.T) {
	snap := &Snapshot{Components: []Component{
		{
			ID:          "bad",
			Name:        "badPattern",
			Category:    LessonSelector,
			StepPattern: `unanchored`,
			Kind:        ir.KindClick,
			State:       StateActive,
			Confidence:  0.9,
		},
		{
			ID:          "good",
			Name:        "goodPattern",
			Category:    LessonSelector,
			StepPattern: `^wiggle (.+?)$`,
			Kind:        ir.KindClick,
			State:       StateActive,
			Confidence:  0.5,
		},
	}}

	rules := snap.LearnedRules(nil)
	require.Len(t, rules, 1)
	assert.Equal(t, "goodPattern", rules[0].Name)
}
