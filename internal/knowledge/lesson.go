package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LessonInput describes a recorded fix.
type LessonInput struct {
	JourneyID   string
	Category    string
	Description string
}

// RecordLesson creates a lesson from a recorded fix, or reinforces an
// existing lesson with the same category and description. Subject to the
// per-journey daily rate limit; a RateLimitError is a surfaced skip.
func (s *Store) RecordLesson(ctx context.Context, in LessonInput) (*Lesson, error) {
	if !ValidLessonCategories[in.Category] {
		return nil, fmt.Errorf("record lesson: invalid category %q", in.Category)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("record lesson: description is required")
	}

	var out *Lesson
	err := s.withLock(ctx, func() error {
		now := s.clock.Now()

		lessons, lerr := s.loadLessonsLocked()
		if lerr != nil && !IsCorruptStore(lerr) {
			return lerr
		}

		// An exact repeat of a known lesson is reinforcement, not a new
		// extraction; it bypasses the rate limit.
		for i := range lessons {
			l := &lessons[i]
			if l.Category == in.Category && l.Description == in.Description {
				s.reinforceLesson(l, true, now)
				if err := s.writeLessons(lessons); err != nil {
					return err
				}
				out = copyLesson(l)
				return s.appendHistoryLocked(HistoryEvent{
					Timestamp:      now,
					Kind:           EventLessonApplied,
					JourneyID:      in.JourneyID,
					ExtractionType: ExtractionLesson,
					RecordID:       l.ID,
				})
			}
		}

		if err := s.checkRateLimit(in.JourneyID, now); err != nil {
			return err
		}

		lesson := Lesson{
			ID:                uuid.Must(uuid.NewV7()).String(),
			Category:          in.Category,
			Description:       in.Description,
			Occurrences:       1,
			SuccessRate:       1,
			Confidence:        initialConfidence,
			ConfidenceHistory: []float64{1},
			State:             StateNew,
			FirstSeen:         now,
		}
		lessons = append(lessons, lesson)
		if err := s.writeLessons(lessons); err != nil {
			return err
		}
		out = &lesson

		return s.appendHistoryLocked(HistoryEvent{
			Timestamp:      now,
			Kind:           EventLessonRecorded,
			JourneyID:      in.JourneyID,
			ExtractionType: ExtractionLesson,
			RecordID:       lesson.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkLessonApplied records one reapplication outcome: statistics and
// confidence are recomputed, and a successful outcome moves the lesson
// back to active (reactivating stale lessons).
func (s *Store) MarkLessonApplied(ctx context.Context, id, journeyID string, success bool) (*Lesson, error) {
	var out *Lesson
	err := s.withLock(ctx, func() error {
		now := s.clock.Now()

		lessons, lerr := s.loadLessonsLocked()
		if lerr != nil && !IsCorruptStore(lerr) {
			return lerr
		}

		for i := range lessons {
			l := &lessons[i]
			if l.ID != id {
				continue
			}
			if l.State == StateArchived {
				return fmt.Errorf("lesson %s is archived", id)
			}
			s.reinforceLesson(l, success, now)
			if err := s.writeLessons(lessons); err != nil {
				return err
			}
			out = copyLesson(l)
			return s.appendHistoryLocked(HistoryEvent{
				Timestamp:      now,
				Kind:           EventLessonApplied,
				JourneyID:      journeyID,
				ExtractionType: ExtractionLesson,
				RecordID:       id,
			})
		}
		return fmt.Errorf("lesson %s not found", id)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// reinforceLesson applies one outcome in place.
func (s *Store) reinforceLesson(l *Lesson, success bool, now time.Time) {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	l.Occurrences, l.SuccessRate = reinforceStats(l.Occurrences, l.SuccessRate, success)
	l.ConfidenceHistory = pushWindow(l.ConfidenceHistory, outcome, s.cfg.WindowSize)
	l.Confidence = recompute(l.SuccessRate, l.ConfidenceHistory)
	l.LastApplied = now
	if success {
		l.LastSuccess = now
	}
	l.State = applyTransition(l.State, success)
}

// QueryLessonsByCategory returns the lessons of one category, lock-free,
// with State replaced by the effective state at read time so a record
// beyond its horizon is flagged stale, never silently served as fresh.
func (s *Store) QueryLessonsByCategory(category string) ([]Lesson, error) {
	if !ValidLessonCategories[category] {
		return nil, fmt.Errorf("query lessons: invalid category %q", category)
	}
	lessons, err := s.loadLessons()
	if err != nil && !IsCorruptStore(err) {
		return nil, err
	}
	now := s.clock.Now()
	var out []Lesson
	for _, l := range lessons {
		if l.Category != category {
			continue
		}
		l.State = EffectiveState(l.State, l.LastSuccess, l.FirstSeen, now, s.cfg.DecayHorizon)
		out = append(out, l)
	}
	return out, nil
}

// ArchiveLesson retires a lesson via explicit curation. Records are never
// hard-deleted.
func (s *Store) ArchiveLesson(ctx context.Context, id string) error {
	return s.withLock(ctx, func() error {
		lessons, lerr := s.loadLessonsLocked()
		if lerr != nil && !IsCorruptStore(lerr) {
			return lerr
		}
		for i := range lessons {
			if lessons[i].ID == id {
				lessons[i].State = StateArchived
				return s.writeLessons(lessons)
			}
		}
		return fmt.Errorf("lesson %s not found", id)
	})
}

// Sweep persists decay transitions for every lesson and component: one
// horizon without reinforcement moves active to decaying, a second moves
// decaying to stale, and confidence is scaled down per crossing.
func (s *Store) Sweep(ctx context.Context) error {
	return s.withLock(ctx, func() error {
		now := s.clock.Now()

		lessons, lerr := s.loadLessonsLocked()
		if lerr != nil && !IsCorruptStore(lerr) {
			return lerr
		}
		changed := false
		for i := range lessons {
			l := &lessons[i]
			next := EffectiveState(l.State, l.LastSuccess, l.FirstSeen, now, s.cfg.DecayHorizon)
			if next != l.State {
				l.State = next
				l.Confidence = clamp01(l.Confidence * s.cfg.DecayFactor)
				changed = true
			}
		}
		if changed {
			if err := s.writeLessons(lessons); err != nil {
				return err
			}
		}

		components, cerr := s.loadComponentsLocked()
		if cerr != nil && !IsCorruptStore(cerr) {
			return cerr
		}
		changed = false
		for i := range components {
			c := &components[i]
			next := EffectiveState(c.State, c.LastSuccess, c.FirstSeen, now, s.cfg.DecayHorizon)
			if next != c.State {
				c.State = next
				c.Confidence = clamp01(c.Confidence * s.cfg.DecayFactor)
				changed = true
			}
		}
		if changed {
			return s.writeComponents(components)
		}
		return nil
	})
}

func copyLesson(l *Lesson) *Lesson {
	out := *l
	out.ConfidenceHistory = append([]float64(nil), l.ConfidenceHistory...)
	return &out
}
