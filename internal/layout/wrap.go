package layout

import "strings"

// WrapText splits text into lines whose shaped rendered width stays within
// maxWidth, measured by the measure callback. Wrapping operates on logical
// word boundaries; words are shaped only for measurement and placement,
// never mutated before wrapping. A single word wider than maxWidth is
// placed on its own line rather than split.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(Shape(candidate)) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
