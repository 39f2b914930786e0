// Package preprocess turns raw, messy tabular input into a typed
// CleanedTable. Column identifiers are normalized, numeric and datetime
// columns are inferred under success-rate acceptance thresholds, and empty
// rows and columns are dropped. Every conversion is contained: a bad cell
// becomes a null, a bad column reverts to its original content, and nothing
// in this package aborts a report.
package preprocess

import (
	"context"
	"log/slog"
	"strings"

	"duach/internal/config"
	"duach/internal/table"
)

// nullMarkers are textual stand-ins for missing values.
var nullMarkers = map[string]bool{
	"nan": true, "NaN": true, "None": true, "null": true, "NULL": true, "": true,
}

// Preprocessor applies the normalization pipeline to raw tables.
type Preprocessor struct {
	logger *slog.Logger
	cfg    config.ReportConfig
}

// NewPreprocessor creates a Preprocessor with the given thresholds.
func NewPreprocessor(logger *slog.Logger, cfg config.ReportConfig) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{logger: logger, cfg: cfg}
}

// Preprocess converts a RawTable into a CleanedTable. The raw table is only
// read, never mutated. The returned table has unique normalized column
// names, inferred column kinds, and no fully-empty rows or columns.
func (p *Preprocessor) Preprocess(ctx context.Context, raw *table.RawTable) *table.CleanedTable {
	if raw == nil || raw.Empty() {
		p.logger.WarnContext(ctx, "empty or nil table provided to preprocess")
		return &table.CleanedTable{}
	}

	p.logger.InfoContext(ctx, "starting preprocessing",
		slog.Int("rows", raw.RowCount()),
		slog.Int("columns", raw.ColumnCount()))

	names := NormalizeColumnNames(raw.Columns)
	for i, orig := range raw.Columns {
		if orig != names[i] {
			p.logger.DebugContext(ctx, "renamed column",
				slog.String("from", orig), slog.String("to", names[i]))
		}
	}

	cleaned := &table.CleanedTable{Columns: make([]table.Column, 0, len(names))}
	for i, name := range names {
		cells := markNulls(raw.ColumnValues(i))
		cleaned.Columns = append(cleaned.Columns, p.coerceColumn(ctx, name, cells))
	}

	dropEmpty(ctx, p.logger, cleaned)

	p.logger.InfoContext(ctx, "preprocessing complete",
		slog.Int("rows", cleaned.RowCount()),
		slog.Int("columns", cleaned.ColumnCount()))
	return cleaned
}

// coerceColumn infers the kind of one column and converts its cells.
// Date detection runs before numeric coercion so that slash- and
// dot-separated dates are not mistaken for thousands-separated numbers.
// Any panic inside the conversion degrades to "leave the column as text"
// rather than aborting the pipeline.
func (p *Preprocessor) coerceColumn(ctx context.Context, name string, cells []table.Cell) (col table.Column) {
	col = table.Column{Name: name, Kind: table.KindCategorical, Cells: cells}
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "column coercion panicked, keeping column unchanged",
				slog.String("column", name), slog.Any("panic", r))
			col = table.Column{Name: name, Kind: table.KindCategorical, Cells: cells}
		}
	}()

	if col.NonNullCount() == 0 {
		col.Kind = table.KindUnknown
		return col
	}

	if allNativeNumbers(cells) {
		col.Kind = table.KindNumeric
		return col
	}

	if LooksLikeDates(cells, p.cfg.DateDetectThreshold) {
		if converted, ok := CoerceDates(cells, p.cfg.DateAcceptThreshold); ok {
			p.logger.InfoContext(ctx, "converted column to datetime",
				slog.String("column", name))
			col.Kind = table.KindDatetime
			col.Cells = converted
			return col
		}
		p.logger.DebugContext(ctx, "date conversion rate too low, keeping column",
			slog.String("column", name))
	}

	if LooksNumeric(cells, 20) {
		if converted, ok := CoerceNumeric(cells, p.cfg.NumericThreshold); ok {
			p.logger.InfoContext(ctx, "converted column to numeric",
				slog.String("column", name))
			col.Kind = table.KindNumeric
			col.Cells = converted
			return col
		}
		p.logger.DebugContext(ctx, "numeric conversion rate too low, keeping column",
			slog.String("column", name))
	}

	return col
}

// markNulls replaces textual null markers with proper null cells.
func markNulls(cells []table.Cell) []table.Cell {
	out := make([]table.Cell, len(cells))
	for i, cell := range cells {
		if !cell.Null && cell.Text != "" && nullMarkers[strings.TrimSpace(cell.Text)] {
			out[i] = table.Cell{Null: true}
		} else {
			out[i] = cell
		}
	}
	return out
}

// allNativeNumbers reports whether every non-null cell already carries a
// native numeric value.
func allNativeNumbers(cells []table.Cell) bool {
	any := false
	for _, cell := range cells {
		if cell.Null {
			continue
		}
		if cell.Text != "" {
			return false
		}
		any = true
	}
	return any
}

// dropEmpty removes fully-null columns, then fully-null rows.
func dropEmpty(ctx context.Context, logger *slog.Logger, t *table.CleanedTable) {
	kept := t.Columns[:0]
	for _, col := range t.Columns {
		if col.NonNullCount() > 0 {
			kept = append(kept, col)
		} else {
			logger.DebugContext(ctx, "dropped empty column", slog.String("column", col.Name))
		}
	}
	t.Columns = kept
	if len(t.Columns) == 0 {
		return
	}

	rows := len(t.Columns[0].Cells)
	keep := make([]bool, rows)
	keptRows := 0
	for r := 0; r < rows; r++ {
		for i := range t.Columns {
			if r < len(t.Columns[i].Cells) && !t.Columns[i].Cells[r].Null {
				keep[r] = true
				break
			}
		}
		if keep[r] {
			keptRows++
		}
	}
	if keptRows == rows {
		return
	}

	logger.DebugContext(ctx, "dropping empty rows",
		slog.Int("before", rows), slog.Int("after", keptRows))
	for i := range t.Columns {
		cells := make([]table.Cell, 0, keptRows)
		for r := 0; r < rows; r++ {
			if keep[r] && r < len(t.Columns[i].Cells) {
				cells = append(cells, t.Columns[i].Cells[r])
			}
		}
		t.Columns[i].Cells = cells
	}
}
