package pattern

import (
	"strings"

	"github.com/roach88/stride/internal/ir"
)

// Blocked-reason categories. These are the lesson-category names; the
// categorizer and the rule corpus share one keyword taxonomy so blocked
// reasons and pattern coverage cannot drift apart.
const (
	CategorySelector   = "selector"
	CategoryTiming     = "timing"
	CategoryQuirk      = "quirk"
	CategoryAuth       = "auth"
	CategoryData       = "data"
	CategoryAssertion  = "assertion"
	CategoryNavigation = "navigation"
)

// keywordCategories maps canonical (post-glossary) keywords to the
// blocked-reason category they indicate. First hit in this order wins,
// so auth phrasing is recognized before the generic click bucket.
var keywordCategories = []struct {
	keywords []string
	category string
}{
	{[]string{"log in", "login", "log out", "sign in", "sign up", "sign out", "authenticate"}, CategoryAuth},
	{[]string{"wait", "eventually", "after a while", "spinner", "loading"}, CategoryTiming},
	{[]string{"see", "toast", "appears", "shows", "displays", "contains", "should"}, CategoryAssertion},
	{[]string{"fill", "field", "value"}, CategoryData},
	{[]string{"navigate", "page", "url", "redirect"}, CategoryNavigation},
	{[]string{"click", "select", "button", "link", "dropdown", "checkbox", "toggle"}, CategorySelector},
}

// categorySuggestions give the reviewer a concrete next move per category.
var categorySuggestions = map[string]string{
	CategoryAuth:       "Route authentication through a shared fixture instead of raw steps",
	CategoryTiming:     "Replace the wait with an assertion on the awaited element",
	CategoryAssertion:  "Add an explicit expected value or locator",
	CategoryData:       "Quote the value and name the target field",
	CategoryNavigation: "Name the destination path or page explicitly",
	CategorySelector:   "Add a role keyword or a quoted label",
	CategoryQuirk:      "Rephrase the step using a recognized phrasing",
}

// blockedSummary is the fixed diagnostic summary for unmatched steps.
const blockedSummary = "Could not map step"

// Categorize produces the blocked diagnostic for a step no rule matched.
// The normalized form is inspected (the taxonomy is written against
// canonical vocabulary); the diagnostic itself quotes nothing from the
// normalized text, so the reviewer always sees original phrasing via
// Action.Source.
func Categorize(normalized string) ir.Diagnostic {
	lowered := strings.ToLower(normalized)
	for _, kc := range keywordCategories {
		for _, kw := range kc.keywords {
			if strings.Contains(lowered, kw) {
				return ir.Diagnostic{
					Summary:    blockedSummary,
					Category:   kc.category,
					Suggestion: categorySuggestions[kc.category],
				}
			}
		}
	}
	return ir.Diagnostic{
		Summary:    blockedSummary,
		Category:   CategoryQuirk,
		Suggestion: categorySuggestions[CategoryQuirk],
	}
}
