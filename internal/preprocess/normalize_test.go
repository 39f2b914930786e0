package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "salary", "salary"},
		{"surrounding whitespace", "  salary  ", "salary"},
		{"inner whitespace run", "net   salary", "net_salary"},
		{"punctuation replaced", "salary (gross)!", "salary_gross"},
		{"hebrew preserved", "משכורת", "משכורת"},
		{"hebrew with currency symbol", "משכורת_₪", "משכורת"},
		{"mixed scripts", "שם employee", "שם_employee"},
		{"repeated underscores collapse", "a__b___c", "a_b_c"},
		{"leading trailing underscores", "__name__", "name"},
		{"empty becomes placeholder", "", "column"},
		{"symbols only becomes placeholder", "$%^", "column"},
		{"digits kept", "col 123", "col_123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeColumnName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestNormalizeColumnNameIdempotent(t *testing.T) {
	inputs := []string{"salary (net)", "  שם מלא  ", "a__b", "", "₪₪₪", "תאריך.לידה"}
	for _, input := range inputs {
		once := NormalizeColumnName(input)
		twice := NormalizeColumnName(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", input)
	}
}

func TestNormalizeColumnNames_Collisions(t *testing.T) {
	got := NormalizeColumnNames([]string{"total!", "total?", "total", "other"})
	assert.Equal(t, []string{"total", "total_2", "total_3", "other"}, got)

	seen := map[string]bool{}
	for _, name := range got {
		assert.False(t, seen[name], "names must be unique")
		seen[name] = true
	}
}

func TestNormalizeColumnNames_PlaceholderCollisions(t *testing.T) {
	got := NormalizeColumnNames([]string{"", "$", "%"})
	assert.Equal(t, []string{"column", "column_2", "column_3"}, got)
}
