// Package report drives the guaranteed-section pipeline and assembles the
// final document. Every section in the fixed sequence is emitted with at
// least one non-empty content line: primary content when the analysis
// yields something, deterministic fallback wording otherwise. A failure in
// one section never prevents the following sections from running.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"duach/internal/analysis"
	"duach/internal/config"
	"duach/internal/i18n"
	"duach/internal/table"
)

// Outcome records how a section's content was produced. It is diagnostic
// only; the rendered document never distinguishes outcomes beyond the
// wording itself.
type Outcome int

const (
	// OutcomePrimary means real analysis content was emitted.
	OutcomePrimary Outcome = iota
	// OutcomeFallbackEmpty means the analysis yielded nothing and the
	// section's "no data" wording was substituted.
	OutcomeFallbackEmpty
	// OutcomeFallbackError means content generation failed and the error
	// wording was substituted.
	OutcomeFallbackError
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomePrimary:
		return "primary"
	case OutcomeFallbackEmpty:
		return "fallback-empty"
	default:
		return "fallback-error"
	}
}

// Line is one rendered content line of a section.
type Line struct {
	Text string
	Size float64
	Bold bool
}

func line(text string) Line      { return Line{Text: text, Size: 12} }
func smallLine(text string) Line { return Line{Text: text, Size: 10} }
func boldLine(text string) Line  { return Line{Text: text, Size: 12, Bold: true} }

// Section is a named content block. Invariant: Lines is never empty once
// the section leaves the orchestrator.
type Section struct {
	Key     string
	Title   string
	Lines   []Line
	Outcome Outcome
}

// sectionDef binds a section key to its primary builder and its "no data"
// fallback key. The error fallback key is shared.
type sectionDef struct {
	key       string
	noDataKey string
	build     func(o *Orchestrator, t *table.CleanedTable, res *analysis.Result) []Line
}

// sectionSequence is the fixed, ordered pipeline of guaranteed sections.
var sectionSequence = []sectionDef{
	{"data_preview", "section_no_data", (*Orchestrator).buildPreview},
	{"missing_values", "section_no_data", (*Orchestrator).buildMissing},
	{"categorical_distributions", "no_categorical_data", (*Orchestrator).buildCategorical},
	{"numeric_distributions", "no_numeric_data", (*Orchestrator).buildNumeric},
	{"statistical_summary", "section_no_data", (*Orchestrator).buildSummary},
	{"outliers_analysis", "section_no_data", (*Orchestrator).buildOutliers},
	{"recommendations", "section_no_data", (*Orchestrator).buildRecommendations},
}

// SectionKeys returns the ordered title keys of the guaranteed sections.
func SectionKeys() []string {
	keys := make([]string, len(sectionSequence))
	for i, def := range sectionSequence {
		keys[i] = def.key
	}
	return keys
}

// Orchestrator runs the guaranteed-section pipeline over a cleaned table
// and its analysis results.
type Orchestrator struct {
	logger *slog.Logger
	tr     *i18n.Translator
	cfg    config.ReportConfig
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(logger *slog.Logger, tr *i18n.Translator, cfg config.ReportConfig) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{logger: logger, tr: tr, cfg: cfg}
}

// BuildSections produces exactly one Section per defined stage, in order.
// Section failures are isolated: a panic or empty result in one builder
// substitutes that section's fallback wording and the pipeline continues.
func (o *Orchestrator) BuildSections(ctx context.Context, t *table.CleanedTable, res *analysis.Result) []Section {
	if t == nil {
		t = &table.CleanedTable{}
	}
	if res == nil {
		res = &analysis.Result{}
	}

	sections := make([]Section, 0, len(sectionSequence))
	for _, def := range sectionSequence {
		lines, failed := o.buildSafely(def, t, res)
		outcome := OutcomePrimary
		switch {
		case failed:
			outcome = OutcomeFallbackError
			lines = []Line{line(o.tr.T("section_error"))}
		case len(lines) == 0:
			outcome = OutcomeFallbackEmpty
			lines = []Line{line(o.tr.T(def.noDataKey))}
		}

		o.logger.InfoContext(ctx, "section built",
			slog.String("section", def.key),
			slog.String("outcome", outcome.String()),
			slog.Int("lines", len(lines)))

		sections = append(sections, Section{
			Key:     def.key,
			Title:   o.tr.T(def.key),
			Lines:   lines,
			Outcome: outcome,
		})
	}
	return sections
}

// buildSafely invokes one builder with panic isolation.
func (o *Orchestrator) buildSafely(def sectionDef, t *table.CleanedTable, res *analysis.Result) (lines []Line, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("section builder panicked",
				slog.String("section", def.key), slog.Any("panic", r))
			lines = nil
			failed = true
		}
	}()
	return def.build(o, t, res), false
}

func (o *Orchestrator) buildPreview(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() {
		return nil
	}
	lines := []Line{
		line(fmt.Sprintf("%s: %d %s, %d %s", o.tr.T("data_shape"),
			t.RowCount(), o.tr.T("rows"), t.ColumnCount(), o.tr.T("columns"))),
		boldLine(o.tr.T("column_types")),
	}
	for i := range t.Columns {
		lines = append(lines, smallLine(fmt.Sprintf("%s: %s",
			t.Columns[i].Name, t.Columns[i].Kind.String())))
	}
	lines = append(lines, boldLine(o.tr.T("data_preview_description")))
	for r := 0; r < t.RowCount() && r < o.cfg.PreviewRows; r++ {
		lines = append(lines, smallLine(o.previewRow(t, r)))
	}
	return lines
}

// previewRow renders one row as "value | value | ...", truncated so a
// single preview line cannot dominate the page.
func (o *Orchestrator) previewRow(t *table.CleanedTable, r int) string {
	parts := make([]string, 0, len(t.Columns))
	for i := range t.Columns {
		parts = append(parts, formatCell(&t.Columns[i], r))
	}
	row := strings.Join(parts, " | ")
	if r := []rune(row); len(r) > 120 {
		row = string(r[:120]) + "..."
	}
	return row
}

func formatCell(col *table.Column, r int) string {
	if r >= len(col.Cells) || col.Cells[r].Null {
		return "-"
	}
	cell := col.Cells[r]
	switch col.Kind {
	case table.KindNumeric:
		return fmt.Sprintf("%g", cell.Number)
	case table.KindDatetime:
		return cell.Time.Format("02/01/2006")
	default:
		return cell.Text
	}
}

func (o *Orchestrator) buildMissing(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() {
		return nil
	}
	if len(res.Missing) == 0 {
		return []Line{line(o.tr.T("no_missing_values"))}
	}
	lines := []Line{boldLine(o.tr.T("missing_values_found"))}
	for _, m := range res.Missing {
		lines = append(lines, smallLine(fmt.Sprintf("%s: %d (%.1f%% %s)",
			m.Name, m.Count, m.Percent, o.tr.T("missing_percentage"))))
	}
	lines = append(lines, line(fmt.Sprintf("%s: %d",
		o.tr.T("total_missing"), res.Basic.TotalNulls)))
	return lines
}

func (o *Orchestrator) buildCategorical(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() || len(res.Categorical) == 0 {
		return nil
	}
	lines := []Line{line(o.tr.T("categorical_description"))}
	for _, c := range res.Categorical {
		lines = append(lines, boldLine(fmt.Sprintf("%s: %s (%d %s)",
			o.tr.T("column"), c.Name, c.Unique, o.tr.T("unique_values"))))
		lines = append(lines, smallLine(o.tr.T("top_values")+":"))
		for _, v := range c.Top {
			lines = append(lines, smallLine(fmt.Sprintf("  %s: %d", v.Value, v.Count)))
		}
		if c.Other > 0 {
			lines = append(lines, smallLine(fmt.Sprintf("  %s: %d", o.tr.T("other_values"), c.Other)))
		}
	}
	return lines
}

func (o *Orchestrator) buildNumeric(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() || len(res.Numeric) == 0 {
		return nil
	}
	lines := []Line{line(o.tr.T("numeric_description"))}
	for _, n := range res.Numeric {
		lines = append(lines, boldLine(fmt.Sprintf("%s: %s", o.tr.T("column"), n.Name)))
		lines = append(lines,
			smallLine(fmt.Sprintf("  %s: %.2f | %s: %.2f | %s: %.2f",
				o.tr.T("mean"), n.Mean, o.tr.T("median"), n.Median, o.tr.T("std"), n.Std)),
			smallLine(fmt.Sprintf("  %s: %.2f | %s: %.2f | %s: %.2f | %s: %.2f",
				o.tr.T("min"), n.Min, o.tr.T("q25"), n.Q25, o.tr.T("q75"), n.Q75, o.tr.T("max"), n.Max)),
		)
	}
	return lines
}

func (o *Orchestrator) buildSummary(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() {
		return nil
	}
	lines := []Line{
		line(o.tr.T("stats_summary_description")),
		boldLine(o.tr.T("data_types_summary")),
		smallLine(fmt.Sprintf("%s: %d | %s: %d | %s: %d",
			o.tr.T("numeric_columns"), res.Basic.NumericCols,
			o.tr.T("categorical_columns"), res.Basic.CategoricalCols,
			o.tr.T("datetime_columns"), res.Basic.DatetimeCols)),
	}
	for _, n := range res.Numeric {
		lines = append(lines, smallLine(fmt.Sprintf("%s: %s=%.2f, %s=%.2f, %s=%.2f, %s=%.2f",
			n.Name, o.tr.T("mean"), n.Mean, o.tr.T("std"), n.Std,
			o.tr.T("min"), n.Min, o.tr.T("max"), n.Max)))
	}
	if len(res.Trends) > 0 {
		lines = append(lines, boldLine(o.tr.T("column_trends")))
		for _, td := range res.Trends {
			lines = append(lines, smallLine(fmt.Sprintf("%s: %s", td.Name, o.tr.T(td.Key))))
		}
	}
	if len(res.Correlations) > 0 {
		lines = append(lines, boldLine(o.tr.T("strong_correlations")))
		for _, c := range res.Correlations {
			lines = append(lines, smallLine(fmt.Sprintf("%s / %s: %.3f",
				c.ColumnA, c.ColumnB, c.R)))
		}
	} else if res.Basic.NumericCols >= 2 {
		lines = append(lines, line(o.tr.T("no_strong_correlations")))
	}
	return lines
}

func (o *Orchestrator) buildOutliers(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() {
		return nil
	}
	if res.Basic.NumericCols == 0 {
		return []Line{line(o.tr.T("no_numeric_data"))}
	}
	if len(res.Outliers) == 0 {
		return []Line{line(o.tr.T("no_outliers_found"))}
	}
	lines := []Line{
		line(o.tr.T("outliers_description")),
		boldLine(o.tr.T("outliers_found")),
	}
	for _, out := range res.Outliers {
		lines = append(lines, smallLine(fmt.Sprintf("%s: %d (%.1f%%), %s: [%.2f, %.2f]",
			out.Name, out.Count, out.Percent, o.tr.T("outlier_range"), out.Low, out.High)))
	}
	return lines
}

func (o *Orchestrator) buildRecommendations(t *table.CleanedTable, res *analysis.Result) []Line {
	if t.Empty() || len(res.Recommendations) == 0 {
		return nil
	}
	lines := []Line{boldLine(o.tr.T("data_quality_recs"))}
	for i, rec := range res.Recommendations {
		lines = append(lines, line(fmt.Sprintf("%d. %s", i+1,
			o.tr.Tf(rec.Key, rec.Args...))))
	}
	return lines
}
