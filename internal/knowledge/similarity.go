package knowledge

import "strings"

// tokenSet splits text into a lowercased set of word tokens. Punctuation
// common in code snippets is treated as separator so "page.click('Save')"
// and "page.click('save')" tokenize identically.
func tokenSet(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '.', ',', ';', ':', '(', ')', '{', '}', '[', ']',
			'\'', '"', '`', '=', '<', '>', '!', '?', '/', '\\':
			return true
		}
		return false
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// TokenSimilarity computes the token-set (Jaccard) similarity of two
// texts: |A ∩ B| / |A ∪ B|, in [0,1]. Two empty texts are identical.
func TokenSimilarity(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	intersection := 0
	for t := range sa {
		if sb[t] {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
