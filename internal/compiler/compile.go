// Package compiler turns a clarified journey plus a knowledge snapshot
// into the intermediate representation. Compile is a pure function: the
// same journey and the same snapshot always produce the same IR, and no
// store state is mutated.
package compiler

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/roach88/stride/internal/ir"
	"github.com/roach88/stride/internal/journey"
	"github.com/roach88/stride/internal/knowledge"
	"github.com/roach88/stride/internal/pattern"
)

// Summary aggregates the per-step outcomes of one compile.
type Summary struct {
	Matched int `json:"matched"`
	Blocked int `json:"blocked"`
	// BlockedByCategory counts blocked steps per diagnostic category.
	BlockedByCategory map[string]int `json:"blocked_by_category,omitempty"`
	// LearnedHits counts steps resolved by store-derived rules rather
	// than builtins.
	LearnedHits int `json:"learned_hits"`
}

// Compiler binds a matcher built once from a snapshot. Zero-value use is
// not supported; construct via New.
type Compiler struct {
	matcher *pattern.Matcher
	logger  *zap.Logger
}

// New builds a compiler over a snapshot. A nil snapshot compiles with the
// builtin corpus only.
func New(snap *knowledge.Snapshot, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snap == nil {
		return &Compiler{matcher: pattern.NewMatcher(), logger: logger}
	}
	return &Compiler{
		matcher: pattern.NewMatcherWithLearned(snap.LearnedRules(logger)),
		logger:  logger,
	}
}

// Compile resolves every step of a validated journey into IR actions.
// Unrecognized steps become blocked actions with categorized diagnostics;
// they never fail the compile. The returned summary counts outcomes.
func (c *Compiler) Compile(j *journey.Journey) (*ir.IR, *Summary, error) {
	if err := j.Validate(); err != nil {
		return nil, nil, err
	}

	doc := &ir.IR{
		IRVersion: ir.IRVersion,
		JourneyID: j.ID,
		Title:     j.Title,
		Actor:     j.Actor,
		Imports:   fixtureImports(j),
		Fixtures:  fixtureNames(j),
	}

	sum := &Summary{}
	for _, crit := range j.Criteria {
		g := ir.Group{CriterionID: crit.ID, Title: crit.Title}
		for _, step := range crit.Steps {
			g.Actions = append(g.Actions, c.compileStep(j.ID, step, sum))
		}
		doc.Groups = append(doc.Groups, g)
	}
	if len(j.Steps) > 0 {
		g := ir.Group{CriterionID: ir.ProcedureGroupID}
		for _, step := range j.Steps {
			g.Actions = append(g.Actions, c.compileStep(j.ID, step, sum))
		}
		doc.Groups = append(doc.Groups, g)
	}

	if err := doc.Validate(); err != nil {
		return nil, nil, fmt.Errorf("compile %s: %w", j.ID, err)
	}
	return doc, sum, nil
}

// compileStep resolves one step and folds its outcome into the summary.
func (c *Compiler) compileStep(journeyID, step string, sum *Summary) ir.Action {
	res := c.matcher.Match(step)
	if res.Action.IsBlocked() {
		sum.Blocked++
		if sum.BlockedByCategory == nil {
			sum.BlockedByCategory = make(map[string]int)
		}
		sum.BlockedByCategory[res.Action.Blocked.Category]++
		c.logger.Debug("step blocked",
			zap.String("journey_id", journeyID),
			zap.String("step", step),
			zap.String("category", res.Action.Blocked.Category))
		return res.Action
	}
	sum.Matched++
	if res.Learned {
		sum.LearnedHits++
	}
	return res.Action
}

// fixtureNames lists the journey's data fixture fields, sorted so the IR
// is byte-stable regardless of map iteration order.
func fixtureNames(j *journey.Journey) []string {
	if len(j.Data) == 0 {
		return nil
	}
	names := make([]string, 0, len(j.Data))
	for k := range j.Data {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// fixtureImports derives the support imports the generated file needs.
// Async signal hints pull in the wait helpers.
func fixtureImports(j *journey.Journey) []string {
	var imports []string
	if len(j.Data) > 0 {
		imports = append(imports, "fixtures")
	}
	if len(j.AsyncSignals) > 0 {
		imports = append(imports, "signals")
	}
	return imports
}
