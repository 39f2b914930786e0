// Package layout positions right-to-left text on fixed A4 pages. It owns
// the visual shaping of logical strings (Unicode bidi reordering), greedy
// word wrapping measured on shaped widths, and the vertical cursor with its
// pagination rules.
package layout

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// ContainsRTL reports whether s contains characters from a right-to-left
// script. Hebrew (U+0590-U+05FF, presentation forms U+FB1D-U+FB4F) and
// Arabic (U+0600-U+06FF) are checked.
func ContainsRTL(s string) bool {
	for _, r := range s {
		if isRTLRune(r) {
			return true
		}
	}
	return false
}

func isRTLRune(r rune) bool {
	return (r >= 0x0590 && r <= 0x05FF) ||
		(r >= 0xFB1D && r <= 0xFB4F) ||
		(r >= 0x0600 && r <= 0x06FF)
}

// Shape returns the visual-order form of a logical string, applying the
// Unicode bidirectional algorithm. Hebrew has no contextual glyph forms, so
// reordering the runs is the entire shaping step; digits and embedded Latin
// keep their left-to-right order inside the reordered line. Strings with no
// RTL content are returned unchanged.
func Shape(s string) string {
	if s == "" || !ContainsRTL(s) {
		return s
	}

	var p bidi.Paragraph
	p.SetString(s, bidi.DefaultDirection(bidi.RightToLeft))
	ordering, err := p.Order()
	if err != nil {
		// Degenerate input: present the whole string reversed, which is
		// correct for pure-RTL text and still readable otherwise.
		return reverseRunes(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = reverseRunes(text)
		}
		b.WriteString(text)
	}
	return b.String()
}

// reverseRunes reverses a string rune-wise.
func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
