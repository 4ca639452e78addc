package pattern

import (
	"fmt"

	"github.com/roach88/stride/internal/glossary"
	"github.com/roach88/stride/internal/ir"
)

// Matcher resolves step text to actions. Builtin rules are authoritative;
// learned rules from the pattern store are consulted only after every
// builtin has been tried, so learned patterns augment but never override.
type Matcher struct {
	builtins []Rule
	learned  []Rule
}

// NewMatcher builds a matcher over the builtin corpus.
func NewMatcher() *Matcher {
	return &Matcher{builtins: Builtins}
}

// NewMatcherWithLearned builds a matcher with store-derived secondary
// rules. Callers must pass learned rules in a deterministic order
// (confidence descending, id ascending) for reproducible compiles.
func NewMatcherWithLearned(learned []Rule) *Matcher {
	return &Matcher{builtins: Builtins, learned: learned}
}

// Result is one matched step.
type Result struct {
	Action ir.Action
	// Rule names the matching rule; empty for blocked steps.
	Rule string
	// Learned is true when a store rule, not a builtin, matched.
	Learned bool
}

// Match normalizes a step and resolves it. A step matching nothing yields
// a blocked action carrying a categorized diagnostic; Match never fails a
// compile for an unrecognized step. A rule whose builder errors is
// skipped, and if the step ends up blocked the diagnostic names the
// failed rule instead of a generic fix hint.
func (m *Matcher) Match(step string) Result {
	normalized := glossary.Normalize(step)

	var failedRule string
	var failedErr error
	try := func(rules []Rule, learned bool) (Result, bool) {
		for _, r := range rules {
			a, ok, err := r.Try(normalized, step)
			if err != nil {
				if failedErr == nil {
					failedRule, failedErr = r.Name, err
				}
				continue
			}
			if ok {
				return Result{Action: a, Rule: r.Name, Learned: learned}, true
			}
		}
		return Result{}, false
	}

	if res, ok := try(m.builtins, false); ok {
		return res
	}
	if res, ok := try(m.learned, true); ok {
		return res
	}

	diag := Categorize(normalized)
	if failedErr != nil {
		diag.Suggestion = fmt.Sprintf("rule %s matched but failed: %v", failedRule, failedErr)
	}
	return Result{Action: ir.Action{
		Kind:    ir.KindBlocked,
		Source:  step,
		Blocked: &diag,
	}}
}

// CompileLearned compiles a store component's step pattern into a rule.
// The target and value templates use regexp expansion syntax ("$1", "$2")
// over the pattern's captures. Only non-blocked kinds are allowed.
func CompileLearned(name, expr string, kind ir.Kind, targetTpl, valueTpl string) (Rule, error) {
	if !ir.ValidKinds[kind] || kind == ir.KindBlocked {
		return Rule{}, fmt.Errorf("learned rule %s: invalid kind %q", name, kind)
	}
	build := func(m []string, source string) (ir.Action, error) {
		a := ir.Action{Kind: kind, Source: source}
		target := unquote(expand(m, targetTpl))
		value := unquote(expand(m, valueTpl))
		switch kind {
		case ir.KindNavigate:
			a.URL = target
		case ir.KindAssertToast:
			a.Message = value
			a.ToastType = target
		default:
			a.Target = target
			a.Value = value
		}
		return a, nil
	}
	return NewRule(name, expr, build)
}

// expand substitutes $1..$9 references with captures. Out-of-range
// references expand to empty, mirroring regexp.Regexp.Expand.
func expand(captures []string, tpl string) string {
	if tpl == "" {
		return ""
	}
	out := make([]byte, 0, len(tpl))
	for i := 0; i < len(tpl); i++ {
		if tpl[i] == '$' && i+1 < len(tpl) && tpl[i+1] >= '1' && tpl[i+1] <= '9' {
			idx := int(tpl[i+1] - '0')
			if idx < len(captures) {
				out = append(out, captures[idx]...)
			}
			i++
			continue
		}
		out = append(out, tpl[i])
	}
	return string(out)
}

// CheckCoverage runs every step of a corpus through the builtin corpus
// and reports the steps that no longer match. Glossary edits must keep
// this empty for the regression corpus: an unchecked synonym removal
// silently raises the blocked rate, and this is the mechanical guard.
func CheckCoverage(corpus []string) []string {
	m := NewMatcher()
	var missed []string
	for _, step := range corpus {
		if m.Match(step).Action.IsBlocked() {
			missed = append(missed, step)
		}
	}
	return missed
}
