package codegen

import (
	"fmt"
	"strings"

	"github.com/roach88/stride/internal/ir"
)

// renderAction emits the statement lines for one action at the given
// indent. Blocked actions render per the renderer's blocked style.
func (r *Renderer) renderAction(b *strings.Builder, a ir.Action, indent string) error {
	if a.IsBlocked() {
		r.renderBlocked(b, a, indent)
		return nil
	}

	stmt, err := actionStatement(a)
	if err != nil {
		return err
	}
	b.WriteString(indent)
	b.WriteString(stmt)
	b.WriteString("\n")
	return nil
}

// actionStatement maps one non-blocked action to a Playwright statement.
func actionStatement(a ir.Action) (string, error) {
	switch a.Kind {
	case ir.KindClick:
		if a.Role != "" {
			return fmt.Sprintf("await page.getByRole(%s, { name: %s }).click();", quote(a.Role), quote(a.Target)), nil
		}
		return fmt.Sprintf("await page.getByText(%s).click();", quote(a.Target)), nil

	case ir.KindFill:
		return fmt.Sprintf("await page.getByLabel(%s).fill(%s);", quote(a.Target), quote(a.Value)), nil

	case ir.KindSelect:
		return fmt.Sprintf("await page.getByLabel(%s).selectOption(%s);", quote(a.Target), quote(a.Value)), nil

	case ir.KindNavigate:
		return fmt.Sprintf("await page.goto(%s);", quote(routeFor(a.URL))), nil

	case ir.KindAssertVisible:
		return fmt.Sprintf("await expect(page.getByText(%s)).toBeVisible();", quote(a.Target)), nil

	case ir.KindAssertToast:
		if a.ToastType != "" {
			return fmt.Sprintf("await expect(page.getByRole('alert').filter({ hasText: %s })).toHaveClass(/%s/);",
				quote(a.Message), escapeString(a.ToastType)), nil
		}
		return fmt.Sprintf("await expect(page.getByRole('alert')).toContainText(%s);", quote(a.Message)), nil

	default:
		return "", fmt.Errorf("render: unsupported action kind %q", a.Kind)
	}
}

// routeFor turns a navigation target into a path. Absolute URLs and
// explicit paths pass through; page names become kebab paths so
// "Billing Settings" navigates to "/billing-settings".
func routeFor(target string) string {
	if strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") {
		return target
	}
	return "/" + kebab(target)
}

// renderBlocked emits a blocked step: a comment carrying the diagnostic
// and a throw so the generated test fails loudly instead of silently
// skipping the step. A legacy diagnostic carrying only a summary renders
// the single-line form even without the renderer flag; a mostly empty
// comment block would bury the reason.
func (r *Renderer) renderBlocked(b *strings.Builder, a ir.Action, indent string) {
	d := a.Blocked
	if r.LegacyBlockedComments || (d.Category == "" && d.Suggestion == "") {
		tag := ""
		if d.Category != "" {
			tag = fmt.Sprintf(" [%s]", d.Category)
		}
		fmt.Fprintf(b, "%s// BLOCKED%s: %s (step: %s)\n", indent, tag, d.Summary, a.Source)
	} else {
		fmt.Fprintf(b, "%s/*\n", indent)
		fmt.Fprintf(b, "%s * BLOCKED: %s\n", indent, d.Summary)
		fmt.Fprintf(b, "%s * step:     %s\n", indent, a.Source)
		fmt.Fprintf(b, "%s * category: %s\n", indent, d.Category)
		if d.Suggestion != "" {
			fmt.Fprintf(b, "%s * fix:      %s\n", indent, d.Suggestion)
		}
		fmt.Fprintf(b, "%s */\n", indent)
	}
	fmt.Fprintf(b, "%sthrow new Error(%s);\n", indent, quote("BLOCKED: "+d.Summary+": "+a.Source))
}
