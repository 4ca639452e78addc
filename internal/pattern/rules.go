package pattern

import "github.com/roach88/stride/internal/ir"

// Builtins is the authoritative, ordered rule corpus. Evaluation is top
// to bottom, first match wins.
//
// Ordering invariants (protected by the regression fixture in
// rules_test.go):
//   - a rule anchored on a trailing role keyword ("... button",
//     "... link") precedes the general catch-all for the same verb,
//     which would otherwise swallow it;
//   - a rule requiring a preceding preposition ("from the X dropdown")
//     precedes any rule for the same verb lacking that requirement.
//
// A bare "select 'USA'" deliberately has no rule: without a dropdown
// qualifier the target is a guess, and this compiler refuses to guess.
var Builtins = []Rule{
	MustRule("click-button",
		`^click (?:on )?(?:the )?(.+?) button$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindClick, Target: unquote(m[1]), Role: "button", Source: source}, nil
		}),
	MustRule("click-link",
		`^click (?:on )?(?:the )?(.+?) link$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindClick, Target: unquote(m[1]), Role: "link", Source: source}, nil
		}),
	// "Select the Submit button" is a click disambiguated by the trailing
	// role keyword, not by synonym substitution.
	MustRule("select-button",
		`^select (?:the )?(.+?) button$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindClick, Target: unquote(m[1]), Role: "button", Source: source}, nil
		}),
	MustRule("click-general",
		`^click (?:on )?(?:the )?(.+?)$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindClick, Target: unquote(m[1]), Source: source}, nil
		}),
	MustRule("select-from-dropdown",
		`^select (.+?) (?:from|in) (?:the )?(.+?) dropdown$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindSelect, Target: unquote(m[2]), Value: unquote(m[1]), Source: source}, nil
		}),
	MustRule("fill-with",
		`^fill (?:in )?(?:the )?(.+?) (?:field )?with (.+?)$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindFill, Target: unquote(m[1]), Value: unquote(m[2]), Source: source}, nil
		}),
	MustRule("fill-into",
		`^fill (.+?) into (?:the )?(.+?) field$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindFill, Target: unquote(m[2]), Value: unquote(m[1]), Source: source}, nil
		}),
	MustRule("navigate",
		`^navigate (?:to )?(?:the )?(.+?)(?: page)?$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindNavigate, URL: unquote(m[1]), Source: source}, nil
		}),
	MustRule("toast-typed",
		`^an? (success|error|warning|info) toast appears with (.+?)$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindAssertToast, ToastType: lower(m[1]), Message: unquote(m[2]), Source: source}, nil
		}),
	MustRule("toast-plain",
		`^a toast appears with (.+?)$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindAssertToast, Message: unquote(m[1]), Source: source}, nil
		}),
	// Visibility assertions require a quoted label or an explicit
	// "... is visible" / "... page" form. "see the dashboard shows
	// correct totals" stays blocked: the expected value is unstated.
	MustRule("see-quoted",
		`^see (?:the )?['"](.+?)['"]$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindAssertVisible, Target: m[1], Source: source}, nil
		}),
	MustRule("see-page",
		`^see (?:the )?(.+?) page$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindAssertVisible, Target: unquote(m[1]), Source: source}, nil
		}),
	MustRule("is-visible",
		`^(?:the )?(.+?) (?:is|should be) visible$`,
		func(m []string, source string) (ir.Action, error) {
			return ir.Action{Kind: ir.KindAssertVisible, Target: unquote(m[1]), Source: source}, nil
		}),
}
