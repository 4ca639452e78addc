// Package pattern implements the step matcher: an ordered list of
// (pattern, builder) pairs evaluated top to bottom, first match wins.
// A step matching no rule yields a blocked diagnostic whose reason comes
// from the same keyword taxonomy the rules are built on, so blocked
// reasons and pattern coverage cannot drift apart.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/stride/internal/ir"
)

// Builder turns regexp captures into a typed action. The source argument
// is the original, pre-normalization step text and must land in
// Action.Source unchanged.
type Builder func(captures []string, source string) (ir.Action, error)

// Rule is one (pattern, builder) pair. Patterns are anchored at both
// string ends and captures are non-greedy; partial matches are bugs.
type Rule struct {
	// Name identifies the rule in diagnostics and ordering fixtures.
	Name string

	re    *regexp.Regexp
	build Builder
}

// NewRule compiles a rule. The expression must be anchored (^...$);
// unanchored expressions are rejected because an unanchored capture can
// silently swallow a more specific rule's text.
func NewRule(name, expr string, build Builder) (Rule, error) {
	if !strings.HasPrefix(expr, "^") || !strings.HasSuffix(expr, "$") {
		return Rule{}, fmt.Errorf("rule %s: pattern must be anchored at both ends: %q", name, expr)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", name, err)
	}
	return Rule{Name: name, re: re, build: build}, nil
}

// MustRule is like NewRule but panics on error. Used for the builtin
// corpus, which is validated by its own regression tests.
func MustRule(name, expr string, build Builder) Rule {
	r, err := NewRule(name, expr, build)
	if err != nil {
		panic(err)
	}
	return r
}

// Try attempts to match a normalized step. On match it builds the action;
// ok is false when the rule does not apply.
func (r Rule) Try(normalized, source string) (action ir.Action, ok bool, err error) {
	m := r.re.FindStringSubmatch(normalized)
	if m == nil {
		return ir.Action{}, false, nil
	}
	a, err := r.build(m, source)
	if err != nil {
		return ir.Action{}, false, fmt.Errorf("rule %s: %w", r.Name, err)
	}
	return a, true, nil
}

func lower(s string) string { return strings.ToLower(s) }

// unquote strips one layer of matched quotes from a capture.
// Captures like `'Save'` and `Save` both yield `Save`.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
