// Package glossary canonicalizes verb/noun synonyms in step text before
// pattern matching. Normalization is pure, idempotent and case-insensitive;
// quoted values and everything outside the synonym table pass through
// untouched.
//
// Table contract: a synonym may only join a canonical group when it cannot
// plausibly carry a different meaning in this domain. Removing an entry is
// a breaking change to pattern coverage; CheckCoverage exists so a removal
// cannot land without a compensating pattern or an explicit regression.
package glossary

import (
	"regexp"
	"sort"
	"strings"
)

// synonyms maps each canonical term to the phrasings it absorbs.
// Keys are the vocabulary the pattern corpus is written against.
//
// "open" is deliberately absent from "navigate": it also means expanding
// a panel or accordion, which is a click. "view" belongs to "see" only:
// as a noun it would also mean "page", and no word may sit in two groups
// (rewrite order between duplicate keys would depend on map iteration).
var synonyms = map[string][]string{
	"click":    {"press", "tap", "hit"},
	"fill":     {"enter", "type", "input"},
	"select":   {"choose", "pick"},
	"navigate": {"go", "visit", "browse"},
	"see":      {"observe", "view", "verify"},
	"toast":    {"notification", "snackbar"},
	"appears":  {"pops up", "shows up", "is shown", "is displayed"},
	"button":   {"btn"},
	"dropdown": {"drop-down", "select box", "combo box", "picker"},
	"field":    {"input box", "text box", "textbox"},
	"page":     {"screen"},
}

// replacement is one compiled synonym rewrite.
type replacement struct {
	re        *regexp.Regexp
	canonical string
}

var replacements = compileTable()

// compileTable builds word-boundary rewrites, longest synonym first so a
// multi-word synonym ("select box") wins over a shorter one ("box" is not
// in the table, but ordering keeps this safe if it ever is).
func compileTable() []replacement {
	type entry struct {
		synonym   string
		canonical string
	}
	var entries []entry
	for canonical, syns := range synonyms {
		for _, s := range syns {
			entries = append(entries, entry{synonym: s, canonical: canonical})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].synonym) != len(entries[j].synonym) {
			return len(entries[i].synonym) > len(entries[j].synonym)
		}
		return entries[i].synonym < entries[j].synonym
	})

	out := make([]replacement, len(entries))
	for i, e := range entries {
		out[i] = replacement{
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(e.synonym) + `\b`),
			canonical: e.canonical,
		}
	}
	return out
}

// quotedSegment matches single- or double-quoted spans. Quoted text is
// user data (labels, values) and is never rewritten.
var quotedSegment = regexp.MustCompile(`'[^']*'|"[^"]*"`)

// Normalize rewrites synonyms in a step to their canonical terms.
// Quoted spans and the case of unrelated text are preserved.
// Normalize(Normalize(s)) == Normalize(s) because canonical terms are
// never themselves synonyms of another group.
func Normalize(step string) string {
	var b strings.Builder
	last := 0
	for _, loc := range quotedSegment.FindAllStringIndex(step, -1) {
		b.WriteString(rewrite(step[last:loc[0]]))
		b.WriteString(step[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(rewrite(step[last:]))
	return b.String()
}

// rewrite applies the synonym table to an unquoted segment.
func rewrite(segment string) string {
	for _, r := range replacements {
		segment = r.re.ReplaceAllString(segment, r.canonical)
	}
	return segment
}

// Canonical reports whether term is a canonical glossary term.
func Canonical(term string) bool {
	_, ok := synonyms[strings.ToLower(term)]
	return ok
}

// Synonyms returns the synonym group for a canonical term, or nil.
// The returned slice is a copy.
func Synonyms(canonical string) []string {
	syns, ok := synonyms[strings.ToLower(canonical)]
	if !ok {
		return nil
	}
	out := make([]string, len(syns))
	copy(out, syns)
	return out
}
