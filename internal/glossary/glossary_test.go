package glossary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_SynonymRewrites(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"press to click", "Press the Save button", "click the Save button"},
		{"tap to click", "Tap the menu icon", "click the menu icon"},
		{"enter to fill", "Enter the email", "fill the email"},
		{"type to fill", "Type the password", "fill the password"},
		{"choose to select", "Choose a plan", "select a plan"},
		{"go to navigate", "Go to the dashboard", "navigate to the dashboard"},
		{"verify to see", "Verify the result", "see the result"},
		{"view to see", "View the order summary", "see the order summary"},
		{"notification to toast", "A notification appears", "A toast appears"},
		{"pops up to appears", "A toast pops up", "A toast appears"},
		{"btn to button", "Click the Save btn", "Click the Save button"},
		{"multiword drop-down", "the Country drop-down", "the Country dropdown"},
		{"multiword select box", "the Country select box", "the Country dropdown"},
		{"text box to field", "the search text box", "the search field"},
		{"screen to page", "the login screen", "the login page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_QuotedSpansUntouched(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"single quotes",
			"Press the 'Press here' button",
			"click the 'Press here' button",
		},
		{
			"double quotes",
			`Verify the "Enter your name" label`,
			`see the "Enter your name" label`,
		},
		{
			"synonym only inside quotes",
			"Click 'Go to checkout'",
			"Click 'Go to checkout'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	steps := []string{
		"Press the Save btn",
		"Choose 'USA' from the Country drop-down",
		"A success notification pops up with 'Saved'",
	}
	for _, s := range steps {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
	}
}

func TestNormalize_NoPartialWordRewrites(t *testing.T) {
	// "hit" is a click synonym; "white" must not become "wclicke".
	assert.Equal(t, "the white panel", Normalize("the white panel"))
	// "go" must not rewrite inside "category".
	assert.Equal(t, "the category list", Normalize("the category list"))
}

// TestSynonymGroupsDisjoint guards the table against a synonym joining
// two canonical groups. Duplicate keys would make the rewrite order for
// that word depend on map iteration, so the same step could normalize
// differently across processes.
func TestSynonymGroupsDisjoint(t *testing.T) {
	seen := map[string]string{}
	for canonical, syns := range synonyms {
		for _, s := range syns {
			if prev, ok := seen[s]; ok {
				t.Errorf("synonym %q is in both %q and %q", s, prev, canonical)
			}
			seen[s] = canonical
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	// Compiling the table fresh must yield the same rewrite result as the
	// package-level table, regardless of map iteration during build.
	for i := 0; i < 50; i++ {
		fresh := compileTable()
		segment := "View the order summary on the checkout screen"
		got := segment
		for _, r := range fresh {
			got = r.re.ReplaceAllString(got, r.canonical)
		}
		assert.Equal(t, Normalize(segment), got)
		assert.Equal(t, "see the order summary on the checkout page", got)
	}
}

func TestCanonical(t *testing.T) {
	assert.True(t, Canonical("click"))
	assert.True(t, Canonical("Dropdown"))
	assert.False(t, Canonical("press"))
	assert.False(t, Canonical("unknown"))
}

func TestSynonyms_ReturnsCopy(t *testing.T) {
	syns := Synonyms("click")
	assert.Contains(t, syns, "press")

	syns[0] = "mutated"
	assert.NotContains(t, Synonyms("click"), "mutated")

	assert.Nil(t, Synonyms("nope"))
}
