package ir

import "fmt"

// Group holds the actions compiled from one acceptance criterion, or from
// the journey's procedural steps (CriterionID "procedure"). Order follows
// document order of the source journey.
type Group struct {
	CriterionID string   `json:"criterion_id"`
	Title       string   `json:"title,omitempty"`
	Actions     []Action `json:"actions"`
}

// ProcedureGroupID is the CriterionID used for the group built from a
// journey's procedural steps.
const ProcedureGroupID = "procedure"

// IR is the complete intermediate representation for one journey.
type IR struct {
	IRVersion string   `json:"ir_version"`
	JourneyID string   `json:"journey_id"`
	Title     string   `json:"title"`
	Actor     string   `json:"actor,omitempty"`
	Groups    []Group  `json:"groups"`
	Imports   []string `json:"imports,omitempty"`
	Fixtures  []string `json:"fixtures,omitempty"`
}

// Actions returns every action in document order, flattened across groups.
func (d *IR) Actions() []Action {
	var out []Action
	for _, g := range d.Groups {
		out = append(out, g.Actions...)
	}
	return out
}

// BlockedCount returns the number of blocked actions.
func (d *IR) BlockedCount() int {
	n := 0
	for _, a := range d.Actions() {
		if a.IsBlocked() {
			n++
		}
	}
	return n
}

// Validate checks structural invariants of the whole document.
func (d *IR) Validate() error {
	if d.JourneyID == "" {
		return fmt.Errorf("ir has no journey id")
	}
	if d.IRVersion == "" {
		return fmt.Errorf("ir has no version")
	}
	for _, g := range d.Groups {
		if g.CriterionID == "" {
			return fmt.Errorf("journey %s: group has no criterion id", d.JourneyID)
		}
		for _, a := range g.Actions {
			if err := a.Validate(); err != nil {
				return fmt.Errorf("journey %s, criterion %s: %w", d.JourneyID, g.CriterionID, err)
			}
		}
	}
	return nil
}

// canonicalMap converts the IR to plain maps/slices for canonical JSON.
// Omitted-when-empty fields stay omitted so the canonical form matches
// what a round trip through encoding/json would see.
func (d *IR) canonicalMap() map[string]any {
	groups := make([]any, len(d.Groups))
	for i, g := range d.Groups {
		actions := make([]any, len(g.Actions))
		for j, a := range g.Actions {
			m := map[string]any{
				"kind":   string(a.Kind),
				"source": a.Source,
			}
			if a.Target != "" {
				m["target"] = a.Target
			}
			if a.Value != "" {
				m["value"] = a.Value
			}
			if a.Role != "" {
				m["role"] = a.Role
			}
			if a.URL != "" {
				m["url"] = a.URL
			}
			if a.ToastType != "" {
				m["toast_type"] = a.ToastType
			}
			if a.Message != "" {
				m["message"] = a.Message
			}
			if a.Blocked != nil {
				b := map[string]any{"summary": a.Blocked.Summary}
				if a.Blocked.Category != "" {
					b["category"] = a.Blocked.Category
				}
				if a.Blocked.Suggestion != "" {
					b["suggestion"] = a.Blocked.Suggestion
				}
				m["blocked"] = b
			}
			actions[j] = m
		}
		gm := map[string]any{
			"criterion_id": g.CriterionID,
			"actions":      actions,
		}
		if g.Title != "" {
			gm["title"] = g.Title
		}
		groups[i] = gm
	}

	out := map[string]any{
		"ir_version": d.IRVersion,
		"journey_id": d.JourneyID,
		"title":      d.Title,
		"groups":     groups,
	}
	if d.Actor != "" {
		out["actor"] = d.Actor
	}
	if len(d.Imports) > 0 {
		imports := make([]any, len(d.Imports))
		for i, imp := range d.Imports {
			imports[i] = imp
		}
		out["imports"] = imports
	}
	if len(d.Fixtures) > 0 {
		fixtures := make([]any, len(d.Fixtures))
		for i, f := range d.Fixtures {
			fixtures[i] = f
		}
		out["fixtures"] = fixtures
	}
	return out
}
