package ir

import "fmt"

// Kind discriminates the Action union.
type Kind string

// Action kinds. Blocked is a first-class outcome, not an error.
const (
	KindClick         Kind = "click"
	KindFill          Kind = "fill"
	KindSelect        Kind = "select"
	KindNavigate      Kind = "navigate"
	KindAssertVisible Kind = "assertVisible"
	KindAssertToast   Kind = "assertToast"
	KindBlocked       Kind = "blocked"
)

// ValidKinds defines the allowed action kinds.
var ValidKinds = map[Kind]bool{
	KindClick:         true,
	KindFill:          true,
	KindSelect:        true,
	KindNavigate:      true,
	KindAssertVisible: true,
	KindAssertToast:   true,
	KindBlocked:       true,
}

// Action is one element of the IR: a typed browser operation or a blocked
// diagnostic. Which fields are meaningful depends on Kind:
//
//	click:         Target, Role
//	fill:          Target, Value
//	select:        Target, Value
//	navigate:      URL
//	assertVisible: Target
//	assertToast:   ToastType, Message
//	blocked:       Blocked
//
// Source always carries the original (pre-normalization) step text, so
// every action traces back to exactly one source step.
type Action struct {
	Kind      Kind        `json:"kind"`
	Target    string      `json:"target,omitempty"`
	Value     string      `json:"value,omitempty"`
	Role      string      `json:"role,omitempty"`
	URL       string      `json:"url,omitempty"`
	ToastType string      `json:"toast_type,omitempty"`
	Message   string      `json:"message,omitempty"`
	Source    string      `json:"source"`
	Blocked   *Diagnostic `json:"blocked,omitempty"`
}

// Diagnostic explains why a step could not be mapped to an action.
// It is rendered verbatim into generated output so a reviewer sees
// exactly where and why automation stopped.
//
// Legacy records may carry only Summary; Category and Suggestion are
// then empty and renderers fall back to a single-line comment.
type Diagnostic struct {
	Summary    string `json:"summary"`
	Category   string `json:"category,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// IsBlocked reports whether the action is a blocked diagnostic.
func (a Action) IsBlocked() bool {
	return a.Kind == KindBlocked
}

// Validate checks structural invariants of a single action.
func (a Action) Validate() error {
	if !ValidKinds[a.Kind] {
		return fmt.Errorf("invalid action kind %q", a.Kind)
	}
	if a.Source == "" {
		return fmt.Errorf("action %q has no source step", a.Kind)
	}
	if a.Kind == KindBlocked && a.Blocked == nil {
		return fmt.Errorf("blocked action for %q has no diagnostic", a.Source)
	}
	if a.Kind != KindBlocked && a.Blocked != nil {
		return fmt.Errorf("action %q for %q carries a diagnostic", a.Kind, a.Source)
	}
	return nil
}
