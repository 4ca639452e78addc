package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/stride/internal/ir"
)

// ComponentInput describes a candidate reusable snippet.
type ComponentInput struct {
	JourneyID  string
	Name       string
	Category   string
	Snippet    string
	Provenance string

	// Optional learned-rule fields, see Component.
	StepPattern    string
	Kind           ir.Kind
	TargetTemplate string
	ValueTemplate  string
}

func (in ComponentInput) validate() error {
	if !ValidComponentCategories[in.Category] {
		return fmt.Errorf("invalid category %q", in.Category)
	}
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if in.Snippet == "" {
		return fmt.Errorf("snippet is required")
	}
	if !ValidProvenances[in.Provenance] {
		return fmt.Errorf("invalid provenance %q", in.Provenance)
	}
	if in.StepPattern != "" {
		if _, err := regexp.Compile(in.StepPattern); err != nil {
			return fmt.Errorf("step pattern: %w", err)
		}
		if !ir.ValidKinds[in.Kind] {
			return fmt.Errorf("step pattern requires a valid kind, got %q", in.Kind)
		}
	}
	return nil
}

// RecordComponent stores a candidate snippet. A candidate whose snippet's
// token-set similarity to an existing component of the same category
// meets the configured threshold is suppressed as a near-duplicate: the
// existing component is reinforced and a DuplicateError names it.
func (s *Store) RecordComponent(ctx context.Context, in ComponentInput) (*Component, error) {
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("record component: %w", err)
	}

	var out *Component
	err := s.withLock(ctx, func() error {
		now := s.clock.Now()

		components, cerr := s.loadComponentsLocked()
		if cerr != nil && !IsCorruptStore(cerr) {
			return cerr
		}

		for i := range components {
			c := &components[i]
			if c.Category != in.Category || c.State == StateArchived {
				continue
			}
			sim := TokenSimilarity(c.Snippet, in.Snippet)
			if sim < s.cfg.SimilarityThreshold {
				continue
			}
			s.reinforceComponent(c, true, now)
			if err := s.writeComponents(components); err != nil {
				return err
			}
			if err := s.appendHistoryLocked(HistoryEvent{
				Timestamp:      now,
				Kind:           EventComponentApplied,
				JourneyID:      in.JourneyID,
				ExtractionType: ExtractionComponent,
				RecordID:       c.ID,
			}); err != nil {
				return err
			}
			s.logger.Info("near-duplicate component suppressed",
				zap.String("existing_id", c.ID),
				zap.Float64("similarity", sim))
			return &DuplicateError{ExistingID: c.ID, Similarity: sim}
		}

		if err := s.checkRateLimit(in.JourneyID, now); err != nil {
			return err
		}

		component := Component{
			ID:                uuid.Must(uuid.NewV7()).String(),
			Name:              in.Name,
			Category:          in.Category,
			Snippet:           in.Snippet,
			Provenance:        in.Provenance,
			StepPattern:       in.StepPattern,
			Kind:              in.Kind,
			TargetTemplate:    in.TargetTemplate,
			ValueTemplate:     in.ValueTemplate,
			Occurrences:       1,
			SuccessRate:       1,
			Confidence:        initialConfidence,
			ConfidenceHistory: []float64{1},
			State:             StateNew,
			FirstSeen:         now,
		}
		components = append(components, component)
		if err := s.writeComponents(components); err != nil {
			return err
		}
		out = &component

		return s.appendHistoryLocked(HistoryEvent{
			Timestamp:      now,
			Kind:           EventComponentRecorded,
			JourneyID:      in.JourneyID,
			ExtractionType: ExtractionComponent,
			RecordID:       component.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkComponentApplied records one reuse outcome for a component, with
// the same lifecycle semantics as MarkLessonApplied.
func (s *Store) MarkComponentApplied(ctx context.Context, id, journeyID string, success bool) (*Component, error) {
	var out *Component
	err := s.withLock(ctx, func() error {
		now := s.clock.Now()

		components, cerr := s.loadComponentsLocked()
		if cerr != nil && !IsCorruptStore(cerr) {
			return cerr
		}

		for i := range components {
			c := &components[i]
			if c.ID != id {
				continue
			}
			if c.State == StateArchived {
				return fmt.Errorf("component %s is archived", id)
			}
			s.reinforceComponent(c, success, now)
			if err := s.writeComponents(components); err != nil {
				return err
			}
			out = copyComponent(c)
			return s.appendHistoryLocked(HistoryEvent{
				Timestamp:      now,
				Kind:           EventComponentApplied,
				JourneyID:      journeyID,
				ExtractionType: ExtractionComponent,
				RecordID:       id,
			})
		}
		return fmt.Errorf("component %s not found", id)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) reinforceComponent(c *Component, success bool, now time.Time) {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	c.Occurrences, c.SuccessRate = reinforceStats(c.Occurrences, c.SuccessRate, success)
	c.ConfidenceHistory = pushWindow(c.ConfidenceHistory, outcome, s.cfg.WindowSize)
	c.Confidence = recompute(c.SuccessRate, c.ConfidenceHistory)
	c.LastApplied = now
	if success {
		c.LastSuccess = now
	}
	c.State = applyTransition(c.State, success)
}

// QueryComponentsByCategory returns the components of one category,
// lock-free, with effective states computed at read time.
func (s *Store) QueryComponentsByCategory(category string) ([]Component, error) {
	if !ValidComponentCategories[category] {
		return nil, fmt.Errorf("query components: invalid category %q", category)
	}
	components, err := s.loadComponents()
	if err != nil && !IsCorruptStore(err) {
		return nil, err
	}
	now := s.clock.Now()
	var out []Component
	for _, c := range components {
		if c.Category != category {
			continue
		}
		c.State = EffectiveState(c.State, c.LastSuccess, c.FirstSeen, now, s.cfg.DecayHorizon)
		out = append(out, c)
	}
	return out, nil
}

// ArchiveComponent retires a component via explicit curation.
func (s *Store) ArchiveComponent(ctx context.Context, id string) error {
	return s.withLock(ctx, func() error {
		components, cerr := s.loadComponentsLocked()
		if cerr != nil && !IsCorruptStore(cerr) {
			return cerr
		}
		for i := range components {
			if components[i].ID == id {
				components[i].State = StateArchived
				return s.writeComponents(components)
			}
		}
		return fmt.Errorf("component %s not found", id)
	})
}

func copyComponent(c *Component) *Component {
	out := *c
	out.ConfidenceHistory = append([]float64(nil), c.ConfidenceHistory...)
	return &out
}
