package domain

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey returns the lookup key for an item name.
// Both the store side and the query side must go through it.
func NormalizeKey(name string) string {
	// cases.Caser keeps state and is not safe for concurrent use, so build one per call.
	return cases.Lower(language.Und).String(norm.NFC.String(name))
}
