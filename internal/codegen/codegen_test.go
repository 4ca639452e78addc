package codegen

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/ir"
)

func checkoutIR() *ir.IR {
	return &ir.IR{
		IRVersion: ir.IRVersion,
		JourneyID: "checkout-basic",
		Title:     "Basic checkout",
		Actor:     "shopper",
		Groups: []ir.Group{
			{
				CriterionID: "ac-1",
				Title:       "adds an item",
				Actions: []ir.Action{
					{Kind: ir.KindClick, Target: "Add to cart", Role: "button", Source: "Click the 'Add to cart' button"},
					{Kind: ir.KindAssertToast, ToastType: "success", Message: "Added", Source: "A success toast appears with 'Added'"},
				},
			},
			{
				CriterionID: ir.ProcedureGroupID,
				Actions: []ir.Action{
					{Kind: ir.KindNavigate, URL: "checkout", Source: "Go to the checkout page"},
					{
						Kind:   ir.KindBlocked,
						Source: "Verify the totals look right",
						Blocked: &ir.Diagnostic{
							Summary:    "Could not map step",
							Category:   "assertion",
							Suggestion: "Add an explicit expected value or locator",
						},
					},
				},
			},
		},
		Imports: []string{"fixtures"},
	}
}

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRender_TestFile(t *testing.T) {
	r := &Renderer{Target: TargetTestFile}
	src, err := r.Render(checkoutIR())
	require.NoError(t, err)
	golden(t).Assert(t, "checkout_spec", []byte(src))
}

func TestRender_SupportModule(t *testing.T) {
	doc := checkoutIR()
	doc.Imports = nil
	r := &Renderer{Target: TargetSupportModule}
	src, err := r.Render(doc)
	require.NoError(t, err)
	golden(t).Assert(t, "checkout_support", []byte(src))
}

func TestRender_Deterministic(t *testing.T) {
	r := &Renderer{Target: TargetTestFile}
	a, err := r.Render(checkoutIR())
	require.NoError(t, err)
	b, err := r.Render(checkoutIR())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_LegacyBlockedComment(t *testing.T) {
	r := &Renderer{Target: TargetTestFile, LegacyBlockedComments: true}
	src, err := r.Render(checkoutIR())
	require.NoError(t, err)
	assert.Contains(t, src, "// BLOCKED [assertion]: Could not map step (step: Verify the totals look right)")
	assert.NotContains(t, src, "/*")
	assert.Contains(t, src, "throw new Error('BLOCKED: Could not map step: Verify the totals look right');")
}

// A diagnostic carrying only a summary, as older stores recorded them,
// must fall back to the single-line comment even without the renderer
// flag.
func TestRender_SummaryOnlyDiagnosticFallsBackToSingleLine(t *testing.T) {
	doc := checkoutIR()
	doc.Groups[1].Actions[1].Blocked = &ir.Diagnostic{Summary: "Could not map step"}

	r := &Renderer{Target: TargetTestFile}
	src, err := r.Render(doc)
	require.NoError(t, err)
	assert.Contains(t, src, "// BLOCKED: Could not map step (step: Verify the totals look right)")
	assert.NotContains(t, src, "/*")
	assert.NotContains(t, src, "category:")
	assert.Contains(t, src, "throw new Error('BLOCKED: Could not map step: Verify the totals look right');")
}

func TestRender_BlockedAlwaysThrows(t *testing.T) {
	r := &Renderer{Target: TargetTestFile}
	src, err := r.Render(checkoutIR())
	require.NoError(t, err)
	assert.Contains(t, src, "throw new Error('BLOCKED: Could not map step: Verify the totals look right');")
}

func TestRender_UnknownTarget(t *testing.T) {
	r := &Renderer{Target: Target("pdf")}
	_, err := r.Render(checkoutIR())
	assert.Error(t, err)
}

func TestRender_InvalidIRRejected(t *testing.T) {
	doc := checkoutIR()
	doc.Groups[0].Actions[0].Source = ""
	r := &Renderer{Target: TargetTestFile}
	_, err := r.Render(doc)
	assert.Error(t, err)
}

func TestActionStatement_Escaping(t *testing.T) {
	a := ir.Action{Kind: ir.KindFill, Target: "note", Value: "John's \"special\" order", Source: "x"}
	stmt, err := actionStatement(a)
	require.NoError(t, err)
	assert.Equal(t, `await page.getByLabel('note').fill('John\'s "special" order');`, stmt)
	assert.False(t, strings.Contains(stmt, "'John's"), "quotes must never break the literal")
}

func TestActionStatement_PerKind(t *testing.T) {
	tests := []struct {
		name string
		in   ir.Action
		want string
	}{
		{
			"click with role",
			ir.Action{Kind: ir.KindClick, Target: "Save", Role: "button", Source: "s"},
			`await page.getByRole('button', { name: 'Save' }).click();`,
		},
		{
			"click without role",
			ir.Action{Kind: ir.KindClick, Target: "cart icon", Source: "s"},
			`await page.getByText('cart icon').click();`,
		},
		{
			"select",
			ir.Action{Kind: ir.KindSelect, Target: "Country", Value: "USA", Source: "s"},
			`await page.getByLabel('Country').selectOption('USA');`,
		},
		{
			"navigate page name becomes path",
			ir.Action{Kind: ir.KindNavigate, URL: "Billing Settings", Source: "s"},
			`await page.goto('/billing-settings');`,
		},
		{
			"navigate absolute path passes through",
			ir.Action{Kind: ir.KindNavigate, URL: "/admin", Source: "s"},
			`await page.goto('/admin');`,
		},
		{
			"assert visible",
			ir.Action{Kind: ir.KindAssertVisible, Target: "Welcome back", Source: "s"},
			`await expect(page.getByText('Welcome back')).toBeVisible();`,
		},
		{
			"plain toast",
			ir.Action{Kind: ir.KindAssertToast, Message: "Saved", Source: "s"},
			`await expect(page.getByRole('alert')).toContainText('Saved');`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := actionStatement(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt)
		})
	}
}

func TestFilename(t *testing.T) {
	r := &Renderer{Target: TargetTestFile}
	assert.Equal(t, "checkout-basic.spec.ts", r.Filename("checkout-basic"))
	assert.Equal(t, "jrn-104.spec.ts", r.Filename("JRN_104"))

	r.Target = TargetSupportModule
	assert.Equal(t, "checkout-basic.support.ts", r.Filename("checkout-basic"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "addsAnItem", identifier("adds an item"))
	assert.Equal(t, "step", identifier("!!!"))
	assert.Equal(t, "step2faLogin", identifier("2fa login"))
}
