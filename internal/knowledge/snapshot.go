package knowledge

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/roach88/stride/internal/pattern"
)

// Snapshot is an immutable point-in-time view of the store, taken
// lock-free. Compiles read the snapshot, never the live store, so a
// compile is a pure function of journey plus snapshot.
type Snapshot struct {
	Lessons    []Lesson
	Components []Component
}

// Snapshot reads both record files without taking the lock. Atomic
// renames guarantee each file is internally consistent; the two files
// may straddle a concurrent write, which is acceptable staleness.
// Effective states are computed at read time.
func (s *Store) Snapshot() (*Snapshot, error) {
	lessons, lerr := s.loadLessons()
	if lerr != nil && !IsCorruptStore(lerr) {
		return nil, fmt.Errorf("snapshot: %w", lerr)
	}
	components, cerr := s.loadComponents()
	if cerr != nil && !IsCorruptStore(cerr) {
		return nil, fmt.Errorf("snapshot: %w", cerr)
	}

	now := s.clock.Now()
	for i := range lessons {
		lessons[i].State = EffectiveState(lessons[i].State, lessons[i].LastSuccess, lessons[i].FirstSeen, now, s.cfg.DecayHorizon)
	}
	for i := range components {
		components[i].State = EffectiveState(components[i].State, components[i].LastSuccess, components[i].FirstSeen, now, s.cfg.DecayHorizon)
	}
	return &Snapshot{Lessons: lessons, Components: components}, nil
}

// LearnedRules compiles the snapshot's pattern-bearing components into
// secondary matcher rules. Stale and archived components are excluded;
// the order is confidence descending, then id ascending, so a snapshot
// always yields the same rule sequence. Components whose stored pattern
// no longer compiles are skipped with a warning, never a failed compile.
func (sn *Snapshot) LearnedRules(logger *zap.Logger) []pattern.Rule {
	if logger == nil {
		logger = zap.NewNop()
	}

	eligible := make([]Component, 0, len(sn.Components))
	for _, c := range sn.Components {
		if c.StepPattern == "" {
			continue
		}
		if c.State == StateStale || c.State == StateArchived {
			continue
		}
		eligible = append(eligible, c)
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Confidence != eligible[j].Confidence {
			return eligible[i].Confidence > eligible[j].Confidence
		}
		return eligible[i].ID < eligible[j].ID
	})

	rules := make([]pattern.Rule, 0, len(eligible))
	for _, c := range eligible {
		r, err := pattern.CompileLearned(c.Name, c.StepPattern, c.Kind, c.TargetTemplate, c.ValueTemplate)
		if err != nil {
			logger.Warn("skipping unusable learned rule",
				zap.String("component_id", c.ID),
				zap.Error(err))
			continue
		}
		rules = append(rules, r)
	}
	return rules
}
