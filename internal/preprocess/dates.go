package preprocess

import (
	"regexp"
	"strings"
	"time"

	"duach/internal/table"
)

// datePatterns are the shapes a date-like value can take: day/month/year or
// year-first, separated by slash, dash, or dot, with 2-4 digit years.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
	regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{2,4}`),
	regexp.MustCompile(`\d{4}\.\d{1,2}\.\d{1,2}`),
}

// dateLayouts are tried in order. Day-first layouts come first so that
// ambiguous values like 03/04/2020 resolve as 3 April, matching the
// region's convention. Year-first layouts are unambiguous.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2/1/2006 15:04",
	"2006-1-2 15:04",
	"2006-01-02T15:04:05",
}

// looksLikeDate reports whether a value matches any date-like pattern.
func looksLikeDate(val string) bool {
	for _, p := range datePatterns {
		if p.MatchString(val) {
			return true
		}
	}
	return false
}

// ParseDate parses a single value day-first. Returns the zero time and
// false when no layout matches.
func ParseDate(val string) (time.Time, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sampleLimit is the number of values inspected when deciding whether a
// column might hold dates.
const sampleLimit = 10

// LooksLikeDates samples up to sampleLimit non-null values and reports
// whether more than detectThreshold of them match a date-like pattern.
func LooksLikeDates(cells []table.Cell, detectThreshold float64) bool {
	sampled := 0
	matched := 0
	for _, cell := range cells {
		if cell.Null || cell.Text == "" {
			continue
		}
		if looksLikeDate(strings.TrimSpace(cell.Text)) {
			matched++
		}
		sampled++
		if sampled >= sampleLimit {
			break
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(matched)/float64(sampled) > detectThreshold
}

// CoerceDates attempts a whole-column datetime conversion with per-value
// error tolerance. It returns the converted cells and true when at least
// acceptThreshold of the originally non-null values parsed; otherwise nil
// and false, and the caller keeps the column as text. Unparseable entries
// become null within an accepted conversion.
func CoerceDates(cells []table.Cell, acceptThreshold float64) ([]table.Cell, bool) {
	converted := make([]table.Cell, len(cells))
	nonNull := 0
	succeeded := 0

	for i, cell := range cells {
		if cell.Null {
			converted[i] = table.Cell{Null: true}
			continue
		}
		nonNull++
		if t, ok := ParseDate(cell.Text); ok {
			converted[i] = table.TimeCell(t)
			succeeded++
		} else {
			converted[i] = table.Cell{Null: true}
		}
	}

	if nonNull == 0 {
		return nil, false
	}
	if float64(succeeded)/float64(nonNull) < acceptThreshold {
		return nil, false
	}
	return converted, true
}
