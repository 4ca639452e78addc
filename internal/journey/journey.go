// Package journey defines the compiler's input document and its loaders.
// Journeys are authored upstream and are immutable compiler input; the
// loaders here accept CUE and YAML forms and enforce the status gate.
package journey

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Journey statuses. Only clarified journeys compile; anything else is
// still being authored and would bake ambiguity into generated tests.
const (
	StatusDraft     = "draft"
	StatusClarified = "clarified"
	StatusRetired   = "retired"
)

// Journey is one scenario specification: metadata plus ordered free-text
// steps. Field order mirrors the document header.
type Journey struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Status string `json:"status" yaml:"status"`
	Tier   string `json:"tier,omitempty" yaml:"tier,omitempty"`
	Actor  string `json:"actor,omitempty" yaml:"actor,omitempty"`

	// Criteria are the acceptance criteria in document order.
	Criteria []Criterion `json:"criteria,omitempty" yaml:"criteria,omitempty"`

	// Steps are journey-level procedural steps, compiled after the
	// criteria into their own IR group.
	Steps []string `json:"steps,omitempty" yaml:"steps,omitempty"`

	// Data holds optional fixture hints (field -> example value).
	Data map[string]string `json:"data,omitempty" yaml:"data,omitempty"`

	// AsyncSignals lists optional async completion hints (toast names,
	// websocket events) the generator may wait on.
	AsyncSignals []string `json:"async_signals,omitempty" yaml:"async_signals,omitempty"`
}

// Criterion is one acceptance criterion with its ordered steps.
type Criterion struct {
	ID    string   `json:"id" yaml:"id"`
	Title string   `json:"title,omitempty" yaml:"title,omitempty"`
	Steps []string `json:"steps" yaml:"steps"`
}

// Validate checks the metadata header, including the status gate.
func (j *Journey) Validate() error {
	if j.ID == "" {
		return &ParseError{Field: "id", Message: "journey id is required"}
	}
	if j.Title == "" {
		return &ParseError{JourneyID: j.ID, Field: "title", Message: "title is required"}
	}
	if j.Status != StatusClarified {
		return &ParseError{
			JourneyID: j.ID,
			Field:     "status",
			Message:   fmt.Sprintf("status %q is not compilable; only %q journeys are accepted", j.Status, StatusClarified),
		}
	}
	if len(j.Criteria) == 0 && len(j.Steps) == 0 {
		return &ParseError{JourneyID: j.ID, Field: "criteria", Message: "journey has no criteria and no steps"}
	}
	seen := make(map[string]bool, len(j.Criteria))
	for _, c := range j.Criteria {
		if c.ID == "" {
			return &ParseError{JourneyID: j.ID, Field: "criteria", Message: "criterion id is required"}
		}
		if seen[c.ID] {
			return &ParseError{JourneyID: j.ID, Field: "criteria", Message: fmt.Sprintf("duplicate criterion id %q", c.ID)}
		}
		seen[c.ID] = true
		if len(c.Steps) == 0 {
			return &ParseError{JourneyID: j.ID, Field: "criteria", Message: fmt.Sprintf("criterion %q has no steps", c.ID)}
		}
	}
	return nil
}

// ParseError reports malformed journey metadata. It is fatal to the
// offending journey only; batch compiles carry on with the rest.
type ParseError struct {
	JourneyID string
	Field     string
	Message   string
	Pos       token.Pos
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.JourneyID != "" {
		return fmt.Sprintf("journey %s: %s: %s", e.JourneyID, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
