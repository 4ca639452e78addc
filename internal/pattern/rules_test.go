package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/ir"
)

func TestMatch_StepMapping(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name string
		step string
		want ir.Action
		rule string
	}{
		{
			name: "click quoted button",
			step: "Click on the 'Save' button",
			want: ir.Action{Kind: ir.KindClick, Target: "Save", Role: "button"},
			rule: "click-button",
		},
		{
			name: "press synonym with btn",
			step: "Press the Submit btn",
			want: ir.Action{Kind: ir.KindClick, Target: "Submit", Role: "button"},
			rule: "click-button",
		},
		{
			name: "click link",
			step: "Click the 'Forgot password' link",
			want: ir.Action{Kind: ir.KindClick, Target: "Forgot password", Role: "link"},
			rule: "click-link",
		},
		{
			name: "select button is a click",
			step: "Select the 'Submit' button",
			want: ir.Action{Kind: ir.KindClick, Target: "Submit", Role: "button"},
			rule: "select-button",
		},
		{
			name: "click without role",
			step: "Click the cart icon",
			want: ir.Action{Kind: ir.KindClick, Target: "cart icon"},
			rule: "click-general",
		},
		{
			name: "select from dropdown",
			step: "Select 'USA' from the 'Country' dropdown",
			want: ir.Action{Kind: ir.KindSelect, Target: "Country", Value: "USA"},
			rule: "select-from-dropdown",
		},
		{
			name: "choose from drop-down synonyms",
			step: "Choose 'Premium' from the 'Plan' drop-down",
			want: ir.Action{Kind: ir.KindSelect, Target: "Plan", Value: "Premium"},
			rule: "select-from-dropdown",
		},
		{
			name: "enter into field",
			step: "Enter 'john@example.com' into the email field",
			want: ir.Action{Kind: ir.KindFill, Target: "email", Value: "john@example.com"},
			rule: "fill-into",
		},
		{
			name: "fill with value",
			step: "Fill the search field with 'blue shoes'",
			want: ir.Action{Kind: ir.KindFill, Target: "search", Value: "blue shoes"},
			rule: "fill-with",
		},
		{
			name: "navigate to page",
			step: "Navigate to the login page",
			want: ir.Action{Kind: ir.KindNavigate, URL: "login"},
			rule: "navigate",
		},
		{
			name: "go synonym",
			step: "Go to the dashboard",
			want: ir.Action{Kind: ir.KindNavigate, URL: "dashboard"},
			rule: "navigate",
		},
		{
			name: "typed toast via synonyms",
			step: "A success notification pops up with 'Profile updated'",
			want: ir.Action{Kind: ir.KindAssertToast, ToastType: "success", Message: "Profile updated"},
			rule: "toast-typed",
		},
		{
			name: "plain toast",
			step: "A toast appears with 'Saved'",
			want: ir.Action{Kind: ir.KindAssertToast, Message: "Saved"},
			rule: "toast-plain",
		},
		{
			name: "see quoted text",
			step: "See the 'Welcome back'",
			want: ir.Action{Kind: ir.KindAssertVisible, Target: "Welcome back"},
			rule: "see-quoted",
		},
		{
			name: "see page",
			step: "Verify the checkout page",
			want: ir.Action{Kind: ir.KindAssertVisible, Target: "checkout"},
			rule: "see-page",
		},
		{
			name: "is visible",
			step: "The cart icon should be visible",
			want: ir.Action{Kind: ir.KindAssertVisible, Target: "cart icon"},
			rule: "is-visible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.step)
			require.False(t, res.Action.IsBlocked(), "step %q should match", tt.step)
			assert.Equal(t, tt.rule, res.Rule)
			assert.Equal(t, tt.want.Kind, res.Action.Kind)
			assert.Equal(t, tt.want.Target, res.Action.Target)
			assert.Equal(t, tt.want.Value, res.Action.Value)
			assert.Equal(t, tt.want.Role, res.Action.Role)
			assert.Equal(t, tt.want.URL, res.Action.URL)
			assert.Equal(t, tt.want.ToastType, res.Action.ToastType)
			assert.Equal(t, tt.want.Message, res.Action.Message)
			assert.Equal(t, tt.step, res.Action.Source, "source must carry original phrasing")
		})
	}
}

func TestMatch_BlockedSteps(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name     string
		step     string
		category string
	}{
		{"vague assertion", "Verify the dashboard shows correct totals", CategoryAssertion},
		{"bare select is a guess", "Select 'USA'", CategorySelector},
		{"explicit wait", "Wait for the spinner to disappear", CategoryTiming},
		{"auth phrasing", "Log in as an administrator", CategoryAuth},
		{"unrecognized interaction", "Drag the slider to 50%", CategoryQuirk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.step)
			require.True(t, res.Action.IsBlocked(), "step %q should be blocked", tt.step)
			assert.Equal(t, ir.KindBlocked, res.Action.Kind)
			assert.Equal(t, tt.category, res.Action.Blocked.Category)
			assert.NotEmpty(t, res.Action.Blocked.Suggestion)
			assert.Equal(t, tt.step, res.Action.Source)
		})
	}
}

// TestRuleOrdering_Regression pins the ordering invariants of the builtin
// corpus. A reordering that lets a catch-all swallow a role-specific rule
// changes generated locators silently; this fixture makes it loud.
func TestRuleOrdering_Regression(t *testing.T) {
	m := NewMatcher()

	// Trailing role keyword beats the general click catch-all.
	res := m.Match("Click the 'Save' button")
	assert.Equal(t, "click-button", res.Rule)
	assert.Equal(t, "button", res.Action.Role)

	// "select ... button" resolves before any select rule could.
	res = m.Match("Select the Continue button")
	assert.Equal(t, "select-button", res.Rule)
	assert.Equal(t, ir.KindClick, res.Action.Kind)

	// The dropdown rule requires its preposition; with it present the
	// value and target land in the right fields.
	res = m.Match("Select 'Large' in the 'Size' dropdown")
	assert.Equal(t, "select-from-dropdown", res.Rule)
	assert.Equal(t, "Size", res.Action.Target)
	assert.Equal(t, "Large", res.Action.Value)

	// Typed toast wins over the plain toast rule.
	res = m.Match("An error toast appears with 'Card declined'")
	assert.Equal(t, "toast-typed", res.Rule)
	assert.Equal(t, "error", res.Action.ToastType)
}

// coverageCorpus is the phrasing set the builtin corpus must keep
// matching. Glossary or rule edits that orphan one of these fail here
// before they silently raise the blocked rate.
var coverageCorpus = []string{
	"Click on the 'Save' button",
	"Press the Submit btn",
	"Tap the 'Menu' button",
	"Hit the 'Retry' button",
	"Click the 'Forgot password' link",
	"Select the 'Submit' button",
	"Click the cart icon",
	"Select 'USA' from the 'Country' dropdown",
	"Choose 'Premium' from the 'Plan' drop-down",
	"Pick 'Blue' from the 'Color' picker",
	"Enter 'john@example.com' into the email field",
	"Type 'secret' into the password field",
	"Input 'ACME' into the company field",
	"Fill the search field with 'blue shoes'",
	"Navigate to the login page",
	"Go to the dashboard",
	"Visit the settings screen",
	"A success notification pops up with 'Profile updated'",
	"An error toast appears with 'Card declined'",
	"A toast appears with 'Saved'",
	"See the 'Welcome back'",
	"Observe the 'Order confirmed'",
	"View the 'Order summary'",
	"Verify the checkout page",
	"View the checkout screen",
	"The cart icon should be visible",
}

func TestCheckCoverage_CorpusStaysMatched(t *testing.T) {
	missed := CheckCoverage(coverageCorpus)
	assert.Empty(t, missed, "corpus steps no longer matched by any builtin rule")
}

func TestNewRule_RejectsUnanchored(t *testing.T) {
	build := func(m []string, source string) (ir.Action, error) {
		return ir.Action{Kind: ir.KindClick, Source: source}, nil
	}

	_, err := NewRule("bad-prefix", `click (.+?)$`, build)
	assert.Error(t, err)

	_, err = NewRule("bad-suffix", `^click (.+?)`, build)
	assert.Error(t, err)

	_, err = NewRule("ok", `^click (.+?)$`, build)
	assert.NoError(t, err)
}
