package preprocess

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// unsafeChars matches everything outside word characters, whitespace,
	// and the Hebrew Unicode block U+0590-U+05FF.
	unsafeChars    = regexp.MustCompile(`[^\w\s\x{0590}-\x{05FF}]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// NormalizeColumnName maps an arbitrary column identifier to a safe one:
// only word characters, underscores, and Hebrew letters survive; whitespace
// runs collapse to a single underscore; repeated underscores collapse;
// leading and trailing underscores are trimmed; an empty result becomes
// "column". The function is pure and idempotent.
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "column"
	}
	return name
}

// NormalizeColumnNames normalizes every identifier and disambiguates
// collisions with _2, _3, ... suffixes so the result is unique.
func NormalizeColumnNames(names []string) []string {
	seen := make(map[string]int, len(names))
	result := make([]string, len(names))
	for i, name := range names {
		normalized := NormalizeColumnName(name)
		seen[normalized]++
		if n := seen[normalized]; n > 1 {
			candidate := fmt.Sprintf("%s_%d", normalized, n)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s_%d", normalized, n)
			}
			seen[candidate]++
			normalized = candidate
		}
		result[i] = normalized
	}
	return result
}
