// Package table defines the tabular data model shared by the preprocessing,
// analysis, and report layers. A RawTable is what the file reader produces;
// a CleanedTable is what the preprocessing pipeline hands to everything else.
package table

import (
	"math"
	"time"
)

// ColumnKind is the inferred semantic type of a column, set once by the
// coercion stage and read thereafter.
type ColumnKind int

const (
	KindUnknown ColumnKind = iota
	KindNumeric
	KindDatetime
	KindCategorical
)

// String returns the kind name used in logs and reports.
func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	case KindCategorical:
		return "categorical-text"
	default:
		return "unknown"
	}
}

// Cell is a single untyped table value. Exactly one of the value fields is
// meaningful, selected by the column's kind; Null marks a missing value
// regardless of kind.
type Cell struct {
	Null   bool
	Text   string
	Number float64
	Time   time.Time
}

// TextCell returns a text cell, treating the empty string as null.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{Null: true}
	}
	return Cell{Text: s}
}

// NumberCell returns a numeric cell. NaN is stored as null.
func NumberCell(f float64) Cell {
	if math.IsNaN(f) {
		return Cell{Null: true}
	}
	return Cell{Number: f}
}

// TimeCell returns a datetime cell. The zero time is stored as null.
func TimeCell(t time.Time) Cell {
	if t.IsZero() {
		return Cell{Null: true}
	}
	return Cell{Time: t}
}

// RawTable holds rows and columns exactly as read from the source file.
// Column identifiers may contain whitespace, punctuation, and mixed scripts.
// A RawTable is never mutated; the pipeline only reads it.
type RawTable struct {
	Columns []string
	Rows    [][]Cell
}

// RowCount returns the number of data rows.
func (t *RawTable) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *RawTable) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Empty reports whether the table has no rows or no columns.
func (t *RawTable) Empty() bool {
	return t.RowCount() == 0 || t.ColumnCount() == 0
}

// ColumnValues extracts one column of the raw table as a cell slice.
// Short rows yield null cells for the missing positions.
func (t *RawTable) ColumnValues(idx int) []Cell {
	cells := make([]Cell, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			cells = append(cells, row[idx])
		} else {
			cells = append(cells, Cell{Null: true})
		}
	}
	return cells
}

// Column is one typed column of a CleanedTable.
type Column struct {
	Name  string
	Kind  ColumnKind
	Cells []Cell
}

// NonNullCount returns the number of cells carrying a value.
func (c *Column) NonNullCount() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Null {
			n++
		}
	}
	return n
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	return len(c.Cells) - c.NonNullCount()
}

// Numbers returns the non-null numeric values of a numeric column.
func (c *Column) Numbers() []float64 {
	vals := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null {
			vals = append(vals, cell.Number)
		}
	}
	return vals
}

// Texts returns the non-null text values of a text column.
func (c *Column) Texts() []string {
	vals := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null {
			vals = append(vals, cell.Text)
		}
	}
	return vals
}

// CleanedTable is the normalized, typed table the report pipeline consumes.
// Column names are unique, non-empty identifiers; empty rows and columns have
// been dropped. It is owned by a single report generation and discarded after.
type CleanedTable struct {
	Columns []Column
}

// RowCount returns the number of data rows.
func (t *CleanedTable) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnCount returns the number of columns.
func (t *CleanedTable) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Empty reports whether the table has no rows or no columns.
func (t *CleanedTable) Empty() bool {
	return t.RowCount() == 0 || t.ColumnCount() == 0
}

// ColumnsOfKind returns the columns with the given inferred kind.
func (t *CleanedTable) ColumnsOfKind(kind ColumnKind) []*Column {
	var cols []*Column
	for i := range t.Columns {
		if t.Columns[i].Kind == kind {
			cols = append(cols, &t.Columns[i])
		}
	}
	return cols
}

// Column returns the column with the given normalized name, or nil.
func (t *CleanedTable) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// TotalNulls returns the number of missing cells across the whole table.
func (t *CleanedTable) TotalNulls() int {
	total := 0
	for i := range t.Columns {
		total += t.Columns[i].NullCount()
	}
	return total
}
