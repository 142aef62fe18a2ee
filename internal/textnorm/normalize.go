// Package textnorm canonicalizes free text for comparison keys.
//
// Normalized strings are only used for matching (header terms, column names,
// catalog SKUs and model names). They are never shown to users.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, trims it and collapses every whitespace run to a
// single space. Input is first composed to NFC so that "ç" typed as a base
// letter plus combining cedilla compares equal to the precomposed rune.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ContainsAny reports whether the normalized text contains any of the terms.
// Terms are expected to be normalized already.
func ContainsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Alternatives splits a "a|b|c" pattern into its normalized, non-empty alternatives.
func Alternatives(pattern string) []string {
	parts := strings.Split(pattern, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}
