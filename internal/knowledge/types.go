package knowledge

import (
	"time"

	"github.com/roach88/stride/internal/ir"
)

// CurrentSchemaVersion is the record-file schema version. A file carrying
// any other version is quarantined on load.
const CurrentSchemaVersion = 1

// State is a record's lifecycle position. Reactivation is not a distinct
// stored state: a stale record that is successfully reapplied goes back
// to active.
type State string

const (
	StateNew      State = "new"
	StateActive   State = "active"
	StateDecaying State = "decaying"
	StateStale    State = "stale"
	StateArchived State = "archived"
)

// Lesson categories.
const (
	LessonSelector   = "selector"
	LessonTiming     = "timing"
	LessonQuirk      = "quirk"
	LessonAuth       = "auth"
	LessonData       = "data"
	LessonAssertion  = "assertion"
	LessonNavigation = "navigation"
)

// ValidLessonCategories defines the lesson taxonomy.
var ValidLessonCategories = map[string]bool{
	LessonSelector:   true,
	LessonTiming:     true,
	LessonQuirk:      true,
	LessonAuth:       true,
	LessonData:       true,
	LessonAssertion:  true,
	LessonNavigation: true,
}

// ValidComponentCategories defines the component taxonomy. It is
// disjoint-but-related to the lesson taxonomy: "timing" has no component
// analogue (there is no reusable snippet for "this page is slow").
var ValidComponentCategories = map[string]bool{
	LessonSelector:   true,
	LessonQuirk:      true,
	LessonAuth:       true,
	LessonData:       true,
	LessonAssertion:  true,
	LessonNavigation: true,
}

// componentCategoryBridge maps lesson categories to component categories.
// Cross-taxonomy aggregation must go through this table; assuming the key
// sets are identical breaks the moment either taxonomy moves.
var componentCategoryBridge = map[string]string{
	LessonSelector:   LessonSelector,
	LessonQuirk:      LessonQuirk,
	LessonAuth:       LessonAuth,
	LessonData:       LessonData,
	LessonAssertion:  LessonAssertion,
	LessonNavigation: LessonNavigation,
	// LessonTiming intentionally unmapped.
}

// ComponentCategoryFor resolves a lesson category to its component
// analogue. ok is false for categories with no analogue (timing).
func ComponentCategoryFor(lessonCategory string) (string, bool) {
	c, ok := componentCategoryBridge[lessonCategory]
	return c, ok
}

// Component provenance values.
const (
	ProvenanceStaticAnalysis = "static-analysis"
	ProvenanceMined          = "mined"
	ProvenanceManual         = "manual"
)

// ValidProvenances defines allowed component provenance values.
var ValidProvenances = map[string]bool{
	ProvenanceStaticAnalysis: true,
	ProvenanceMined:          true,
	ProvenanceManual:         true,
}

// Lesson is a recorded heuristic tied to a category. Lessons are never
// hard-deleted; curation archives them.
type Lesson struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`

	Occurrences int     `json:"occurrences"`
	SuccessRate float64 `json:"success_rate"`
	Confidence  float64 `json:"confidence"`
	// ConfidenceHistory is the bounded rolling window of reapplication
	// outcomes (1 success, 0 failure), most recent last.
	ConfidenceHistory []float64 `json:"confidence_history,omitempty"`

	State       State     `json:"state"`
	FirstSeen   time.Time `json:"first_seen"`
	LastApplied time.Time `json:"last_applied,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// Component is a reusable code snippet sharing the Lesson lifecycle
// shape. A component with a StepPattern doubles as a learned matcher
// rule consulted after the builtin corpus.
type Component struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	// Snippet is the canonical code snippet.
	Snippet    string `json:"snippet"`
	Provenance string `json:"provenance"`

	// StepPattern, when set, is an anchored regexp over normalized step
	// text; Kind plus the templates ("$1", "$2" capture references)
	// describe the action a match builds.
	StepPattern    string  `json:"step_pattern,omitempty"`
	Kind           ir.Kind `json:"kind,omitempty"`
	TargetTemplate string  `json:"target_template,omitempty"`
	ValueTemplate  string  `json:"value_template,omitempty"`

	Occurrences       int       `json:"occurrences"`
	SuccessRate       float64   `json:"success_rate"`
	Confidence        float64   `json:"confidence"`
	ConfidenceHistory []float64 `json:"confidence_history,omitempty"`

	State       State     `json:"state"`
	FirstSeen   time.Time `json:"first_seen"`
	LastApplied time.Time `json:"last_applied,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// History event kinds.
const (
	EventLessonRecorded    = "lesson_recorded"
	EventComponentRecorded = "component_recorded"
	EventLessonApplied     = "lesson_applied"
	EventComponentApplied  = "component_applied"
	EventRateLimited       = "rate_limited"
)

// Extraction types recorded on history events.
const (
	ExtractionLesson    = "lesson"
	ExtractionComponent = "component"
)

// HistoryEvent is one append-only audit line. One line-delimited file per
// calendar day; the daily files are the sole source of truth for
// rate-limit counters.
type HistoryEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	Kind           string    `json:"kind"`
	JourneyID      string    `json:"journey_id,omitempty"`
	ExtractionType string    `json:"extraction_type,omitempty"`
	RecordID       string    `json:"record_id,omitempty"`
}

// lessonsFile is the on-disk shape of lessons.json.
type lessonsFile struct {
	SchemaVersion int      `json:"schema_version"`
	Lessons       []Lesson `json:"lessons"`
}

// componentsFile is the on-disk shape of components.json.
type componentsFile struct {
	SchemaVersion int         `json:"schema_version"`
	Components    []Component `json:"components"`
}
