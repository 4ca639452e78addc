package codegen

import (
	"strings"
	"unicode"
)

// escapeString escapes a value for a single-quoted TypeScript string
// literal. Values are always escaped, never interpolated raw, so quotes
// and backslashes in step text cannot break out of the literal.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// quote wraps a value as a single-quoted literal.
func quote(s string) string {
	return "'" + escapeString(s) + "'"
}

// identifier derives a lower-camel TypeScript identifier from free text,
// for exported support functions. Empty input yields "step".
func identifier(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return "step"
	}
	var b strings.Builder
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		b.WriteString(w)
	}
	id := b.String()
	if unicode.IsDigit(rune(id[0])) {
		id = "step" + strings.ToUpper(id[:1]) + id[1:]
	}
	return id
}

// kebab derives a filename stem from a journey id.
func kebab(id string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return '-'
		}
	}, id)
	mapped = strings.Trim(mapped, "-")
	for strings.Contains(mapped, "--") {
		mapped = strings.ReplaceAll(mapped, "--", "-")
	}
	if mapped == "" {
		return "journey"
	}
	return mapped
}
