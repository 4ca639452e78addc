// Package codegen renders compiled IR into Playwright TypeScript. Render
// is deterministic: identical IR yields byte-identical source.
package codegen

import (
	"fmt"
	"strings"

	"github.com/roach88/stride/internal/ir"
)

// Target selects the output shape.
type Target string

const (
	// TargetTestFile renders a runnable spec file: one test.describe per
	// journey, one test per criterion group.
	TargetTestFile Target = "test-file"
	// TargetSupportModule renders an importable module: one exported
	// async function per group.
	TargetSupportModule Target = "support-module"
)

// ValidTargets defines the accepted render targets.
var ValidTargets = map[Target]bool{
	TargetTestFile:      true,
	TargetSupportModule: true,
}

// Renderer renders IR documents to source text.
type Renderer struct {
	Target Target
	// LegacyBlockedComments selects the old single-line blocked comment
	// form kept for diffing against previously generated files.
	LegacyBlockedComments bool
}

// Filename returns the deterministic output file name for a journey.
func (r *Renderer) Filename(journeyID string) string {
	if r.Target == TargetSupportModule {
		return kebab(journeyID) + ".support.ts"
	}
	return kebab(journeyID) + ".spec.ts"
}

// Render renders the document for the configured target.
func (r *Renderer) Render(doc *ir.IR) (string, error) {
	if !ValidTargets[r.Target] {
		return "", fmt.Errorf("render: unknown target %q", r.Target)
	}
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	switch r.Target {
	case TargetSupportModule:
		return r.renderSupportModule(doc)
	default:
		return r.renderTestFile(doc)
	}
}

// renderTestFile emits the spec-file shape.
func (r *Renderer) renderTestFile(doc *ir.IR) (string, error) {
	var b strings.Builder
	b.WriteString("import { test, expect } from '@playwright/test';\n")
	r.renderSupportImports(&b, doc)
	b.WriteString("\n")

	fmt.Fprintf(&b, "test.describe(%s, () => {\n", quote(doc.Title))
	for i, g := range doc.Groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  test(%s, async ({ page }) => {\n", quote(groupTitle(g)))
		for _, a := range g.Actions {
			if err := r.renderAction(&b, a, "    "); err != nil {
				return "", err
			}
		}
		b.WriteString("  });\n")
	}
	b.WriteString("});\n")
	return b.String(), nil
}

// renderSupportModule emits one exported async function per group so
// other spec files can compose journey fragments.
func (r *Renderer) renderSupportModule(doc *ir.IR) (string, error) {
	var b strings.Builder
	b.WriteString("import { expect, type Page } from '@playwright/test';\n")
	r.renderSupportImports(&b, doc)
	b.WriteString("\n")

	for i, g := range doc.Groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "// %s\n", groupTitle(g))
		fmt.Fprintf(&b, "export async function %s(page: Page): Promise<void> {\n", identifier(groupTitle(g)))
		for _, a := range g.Actions {
			if err := r.renderAction(&b, a, "  "); err != nil {
				return "", err
			}
		}
		b.WriteString("}\n")
	}
	return b.String(), nil
}

// renderSupportImports emits the import lines the IR's imports list asks
// for, in IR order.
func (r *Renderer) renderSupportImports(b *strings.Builder, doc *ir.IR) {
	for _, imp := range doc.Imports {
		fmt.Fprintf(b, "import { %s } from './support/%s';\n", identifier(imp), kebab(imp))
	}
}

// groupTitle names a group for test titles and function names, falling
// back to the criterion id when the source had no title.
func groupTitle(g ir.Group) string {
	if g.Title != "" {
		return g.Title
	}
	return g.CriterionID
}
