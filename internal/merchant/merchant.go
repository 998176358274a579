// Package merchant normalizes raw merchant strings for matching and
// override lookups.
package merchant

import (
	"regexp"
	"strings"
)

var (
	storeNumberRe = regexp.MustCompile(`#\d+`)
	digitsRe      = regexp.MustCompile(`\d+`)
	punctRe       = regexp.MustCompile(`[^a-z\s]`)
)

// Normalize lowercases a merchant name and strips store numbers, digits,
// punctuation, and redundant whitespace, e.g. "Trader Joe's #122" ->
// "trader joes". Normalizing an already-normalized string is a no-op.
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = storeNumberRe.ReplaceAllString(s, "")
	s = digitsRe.ReplaceAllString(s, "")
	s = punctRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits a normalized merchant string into its words.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
