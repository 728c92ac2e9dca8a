package search

import (
	"strings"
	"unicode"
)

// Tokenize splits a query into terms on non-alphanumeric boundaries. Terms
// keep their original order; duplicates are dropped so a repeated word does
// not double-count as two distinct terms.
func Tokenize(query string, caseSensitive bool) []string {
	if !caseSensitive {
		query = strings.ToLower(query)
	}

	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
