// Package names canonicalizes free-text entity names so that lookups are
// insensitive to case, spacing, and a leading article.
package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const article = "the "

// Normalize lowercases name, collapses whitespace runs to a single space,
// trims it, and strips any leading "the ". It never fails.
func Normalize(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	lowered := cases.Lower(language.Und).String(collapsed)
	for strings.HasPrefix(lowered, article) {
		lowered = strings.TrimSpace(lowered[len(article):])
	}
	return lowered
}

// Equal reports whether a and b name the same entity.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Display title-cases a label for scene text, e.g. "north east" -> "North East".
func Display(label string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(label), " "))
}
