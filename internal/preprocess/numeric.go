package preprocess

import (
	"regexp"
	"strconv"
	"strings"

	"duach/internal/table"
)

var (
	// firstNumber extracts the leading signed decimal from percentage values.
	firstNumber = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	// nonNumericChars strips currency symbols and any other decoration,
	// keeping digits, separators, and signs.
	nonNumericChars = regexp.MustCompile(`[^\d.,+-]`)
	// hasDigit guards against inputs that reduce to separators only.
	hasDigit = regexp.MustCompile(`\d`)
	// numericIndicator is the promising-sample check used before attempting
	// a whole-column conversion.
	numericIndicator = regexp.MustCompile(`[\d₪$€£¥%,.\-+()]`)
)

// CleanNumericValue converts one messy cell value into a float. It handles
// currency symbols (₪ $ € £ ¥), percentage suffixes, parenthesized
// negatives, thousands separators in both comma and dot conventions, and
// explicit plus signs. The second return value reports success; failure is
// a value, never a panic.
func CleanNumericValue(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, false
	}

	if strings.Contains(val, "%") {
		if m := firstNumber.FindString(val); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f / 100, true
			}
		}
		return 0, false
	}

	isNegative := strings.Contains(val, "(") && strings.Contains(val, ")")

	cleaned := nonNumericChars.ReplaceAllString(val, "")
	if cleaned == "" || !hasDigit.MatchString(cleaned) {
		return 0, false
	}

	cleaned = resolveSeparators(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "+")

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if isNegative {
		f = -f
	}
	return f, true
}

// resolveSeparators disambiguates decimal points from thousands separators.
// With both present, the earlier-occurring one is the thousands separator.
// With commas only, a single trailing 3-digit group means thousands, a
// trailing 1-2 digit group means decimal, and multiple commas are all
// thousands separators. With multiple dots, all but the last are thousands
// separators and the last is the decimal point.
func resolveSeparators(s string) string {
	commaIdx := strings.Index(s, ",")
	dotIdx := strings.Index(s, ".")

	switch {
	case commaIdx >= 0 && dotIdx >= 0:
		if commaIdx < dotIdx {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case commaIdx >= 0:
		parts := strings.Split(s, ",")
		switch {
		case len(parts) == 2 && len(parts[1]) == 3:
			s = strings.ReplaceAll(s, ",", "")
		case len(parts) == 2 && len(parts[1]) <= 2:
			s = strings.ReplaceAll(s, ",", ".")
		default:
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	if strings.Count(s, ".") > 1 {
		parts := strings.Split(s, ".")
		s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}
	return s
}

// CoerceNumeric attempts a whole-column numeric conversion. It returns the
// converted cells and true when at least threshold of the originally
// non-null values converted; otherwise it returns nil and false and the
// caller keeps the column untouched. Cells that are already numeric pass
// through unchanged; unparseable cells become null within an accepted
// conversion.
func CoerceNumeric(cells []table.Cell, threshold float64) ([]table.Cell, bool) {
	converted := make([]table.Cell, len(cells))
	nonNull := 0
	succeeded := 0

	for i, cell := range cells {
		if cell.Null {
			converted[i] = table.Cell{Null: true}
			continue
		}
		nonNull++
		if cell.Text == "" {
			// Already a native numeric value.
			converted[i] = cell
			succeeded++
			continue
		}
		if f, ok := CleanNumericValue(cell.Text); ok {
			converted[i] = table.NumberCell(f)
			succeeded++
		} else {
			converted[i] = table.Cell{Null: true}
		}
	}

	if nonNull == 0 {
		return nil, false
	}
	if float64(succeeded)/float64(nonNull) < threshold {
		return nil, false
	}
	return converted, true
}

// LooksNumeric reports whether enough of the sampled values contain numeric
// indicator characters to make a conversion attempt worthwhile. Sampling
// stops after maxSample non-null values.
func LooksNumeric(cells []table.Cell, maxSample int) bool {
	sampled := 0
	promising := 0
	for _, cell := range cells {
		if cell.Null {
			continue
		}
		if cell.Text == "" {
			// Native numeric cells are trivially promising.
			promising++
		} else if numericIndicator.MatchString(cell.Text) {
			promising++
		}
		sampled++
		if sampled >= maxSample {
			break
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(promising)/float64(sampled) > 0.4
}
