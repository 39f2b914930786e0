package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duach/internal/analysis"
	"duach/internal/config"
	"duach/internal/i18n"
	"duach/internal/table"
)

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := config.Default()
	return NewOrchestrator(nil, i18n.New("he", "Asia/Jerusalem"), cfg.Report)
}

func sampleTable() *table.CleanedTable {
	return &table.CleanedTable{Columns: []table.Column{
		{
			Name: "משכורת",
			Kind: table.KindNumeric,
			Cells: []table.Cell{
				table.NumberCell(8500), table.NumberCell(1200),
				{Null: true}, table.NumberCell(10500),
			},
		},
		{
			Name: "עיר",
			Kind: table.KindCategorical,
			Cells: []table.Cell{
				table.TextCell("תל אביב"), table.TextCell("חיפה"),
				table.TextCell("תל אביב"), table.TextCell("ירושלים"),
			},
		},
		{
			Name: "תאריך",
			Kind: table.KindDatetime,
			Cells: []table.Cell{
				table.TimeCell(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)),
				table.TimeCell(time.Date(2019, 8, 22, 0, 0, 0, 0, time.UTC)),
				{Null: true}, {Null: true},
			},
		},
	}}
}

func analyzeSample(t *testing.T, tbl *table.CleanedTable) *analysis.Result {
	t.Helper()
	return analysis.NewAnalyzer(nil, config.Default().Report).Analyze(context.Background(), tbl)
}

func TestBuildSections_AlwaysSevenNonEmptySections(t *testing.T) {
	o := testOrchestrator(t)

	tables := map[string]*table.CleanedTable{
		"populated": sampleTable(),
		"empty":     {},
		"nil":       nil,
	}
	for name, tbl := range tables {
		t.Run(name, func(t *testing.T) {
			var res *analysis.Result
			if tbl != nil {
				res = analyzeSample(t, tbl)
			}
			sections := o.BuildSections(context.Background(), tbl, res)

			require.Len(t, sections, len(sectionSequence))
			for i, s := range sections {
				assert.Equal(t, sectionSequence[i].key, s.Key, "order is fixed")
				assert.NotEmpty(t, s.Title)
				require.NotEmpty(t, s.Lines, "section %s must never be title-only", s.Key)
				for _, l := range s.Lines {
					assert.NotEmpty(t, l.Text)
				}
			}
		})
	}
}

func TestBuildSections_PopulatedTableUsesPrimaryContent(t *testing.T) {
	o := testOrchestrator(t)
	tbl := sampleTable()
	sections := o.BuildSections(context.Background(), tbl, analyzeSample(t, tbl))

	for _, s := range sections {
		assert.Equal(t, OutcomePrimary, s.Outcome, "section %s", s.Key)
	}
}

func TestBuildSections_EmptyTableUsesNoDataFallbacks(t *testing.T) {
	o := testOrchestrator(t)
	sections := o.BuildSections(context.Background(), &table.CleanedTable{}, nil)

	tr := i18n.New("he", "Asia/Jerusalem")
	for _, s := range sections {
		assert.Equal(t, OutcomeFallbackEmpty, s.Outcome, "section %s", s.Key)
		assert.NotEqual(t, tr.T("section_error"), s.Lines[0].Text,
			"no-data wording must differ from error wording")
	}

	byKey := map[string]Section{}
	for _, s := range sections {
		byKey[s.Key] = s
	}
	assert.Equal(t, tr.T("no_categorical_data"), byKey["categorical_distributions"].Lines[0].Text)
	assert.Equal(t, tr.T("no_numeric_data"), byKey["numeric_distributions"].Lines[0].Text)
	assert.Equal(t, tr.T("section_no_data"), byKey["data_preview"].Lines[0].Text)
}

func TestBuildSections_PanicIsolatedToOneSection(t *testing.T) {
	o := testOrchestrator(t)
	def := sectionDef{
		key:       "data_preview",
		noDataKey: "section_no_data",
		build: func(o *Orchestrator, t *table.CleanedTable, res *analysis.Result) []Line {
			panic("builder exploded")
		},
	}

	lines, failed := o.buildSafely(def, sampleTable(), &analysis.Result{})
	assert.True(t, failed)
	assert.Nil(t, lines)
}

func TestBuildMissing_NoMissingIsPositivePrimary(t *testing.T) {
	o := testOrchestrator(t)
	tbl := &table.CleanedTable{Columns: []table.Column{
		{Name: "v", Kind: table.KindNumeric, Cells: []table.Cell{
			table.NumberCell(1), table.NumberCell(2),
		}},
	}}
	res := analyzeSample(t, tbl)

	lines := o.buildMissing(tbl, res)
	require.Len(t, lines, 1)
	assert.Equal(t, o.tr.T("no_missing_values"), lines[0].Text,
		"a complete dataset is a finding, not a fallback")
}

func TestBuildOutliers_DistinguishesNoNumericFromNoOutliers(t *testing.T) {
	o := testOrchestrator(t)

	textOnly := &table.CleanedTable{Columns: []table.Column{
		{Name: "c", Kind: table.KindCategorical, Cells: []table.Cell{table.TextCell("x")}},
	}}
	lines := o.buildOutliers(textOnly, analyzeSample(t, textOnly))
	require.Len(t, lines, 1)
	assert.Equal(t, o.tr.T("no_numeric_data"), lines[0].Text)

	tame := &table.CleanedTable{Columns: []table.Column{
		{Name: "v", Kind: table.KindNumeric, Cells: []table.Cell{
			table.NumberCell(1), table.NumberCell(2), table.NumberCell(3), table.NumberCell(4),
		}},
	}}
	lines = o.buildOutliers(tame, analyzeSample(t, tame))
	require.Len(t, lines, 1)
	assert.Equal(t, o.tr.T("no_outliers_found"), lines[0].Text)
}

func TestBuildSummary_IncludesTrends(t *testing.T) {
	o := testOrchestrator(t)
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]table.Cell, 4)
	for i := range dates {
		dates[i] = table.TimeCell(base.AddDate(0, 0, i))
	}
	tbl := &table.CleanedTable{Columns: []table.Column{
		{Name: "תאריך", Kind: table.KindDatetime, Cells: dates},
		{Name: "מכירות", Kind: table.KindNumeric, Cells: []table.Cell{
			table.NumberCell(100), table.NumberCell(200),
			table.NumberCell(300), table.NumberCell(400),
		}},
	}}

	lines := o.buildSummary(tbl, analyzeSample(t, tbl))
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	assert.Contains(t, texts, o.tr.T("column_trends"))
	assert.Contains(t, texts, "מכירות: "+o.tr.T("trend_rising"))
}

func TestBuildPreview_RespectsRowLimit(t *testing.T) {
	o := testOrchestrator(t)
	cells := make([]table.Cell, 50)
	for i := range cells {
		cells[i] = table.NumberCell(float64(i))
	}
	tbl := &table.CleanedTable{Columns: []table.Column{
		{Name: "v", Kind: table.KindNumeric, Cells: cells},
	}}

	lines := o.buildPreview(tbl, analyzeSample(t, tbl))
	// Shape line, types header, one type line, preview header, then rows.
	assert.Len(t, lines, 4+o.cfg.PreviewRows)
}

func TestPreviewRow_MidLengthHebrewIntact(t *testing.T) {
	o := testOrchestrator(t)
	// 80 Hebrew runes: under the rune cap, but twice as many bytes.
	hebrew := make([]rune, 80)
	for i := range hebrew {
		hebrew[i] = 'א'
	}
	tbl := &table.CleanedTable{Columns: []table.Column{
		{Name: "c", Kind: table.KindCategorical, Cells: []table.Cell{table.TextCell(string(hebrew))}},
	}}

	row := o.previewRow(tbl, 0)
	assert.Equal(t, string(hebrew), row, "rows under the rune cap are never cut")
	assert.NotContains(t, row, "...")

	sections := o.BuildSections(context.Background(), tbl, analyzeSample(t, tbl))
	assert.Equal(t, OutcomePrimary, sections[0].Outcome,
		"a valid Hebrew preview row must render as primary content")
}

func TestPreviewRow_Truncated(t *testing.T) {
	o := testOrchestrator(t)
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'א'
	}
	tbl := &table.CleanedTable{Columns: []table.Column{
		{Name: "c", Kind: table.KindCategorical, Cells: []table.Cell{table.TextCell(string(long))}},
	}}

	row := o.previewRow(tbl, 0)
	assert.LessOrEqual(t, len([]rune(row)), 123, "rows are capped plus ellipsis")
	assert.Contains(t, row, "...")
}

func TestFormatCell(t *testing.T) {
	num := table.Column{Kind: table.KindNumeric, Cells: []table.Cell{table.NumberCell(8500)}}
	assert.Equal(t, "8500", formatCell(&num, 0))

	dt := table.Column{Kind: table.KindDatetime, Cells: []table.Cell{
		table.TimeCell(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)),
	}}
	assert.Equal(t, "15/01/2020", formatCell(&dt, 0))

	txt := table.Column{Kind: table.KindCategorical, Cells: []table.Cell{table.TextCell("חיפה")}}
	assert.Equal(t, "חיפה", formatCell(&txt, 0))

	assert.Equal(t, "-", formatCell(&txt, 5), "out-of-range reads as missing")
	null := table.Column{Kind: table.KindNumeric, Cells: []table.Cell{{Null: true}}}
	assert.Equal(t, "-", formatCell(&null, 0))
}

func TestSectionKeys(t *testing.T) {
	assert.Equal(t, []string{
		"data_preview", "missing_values", "categorical_distributions",
		"numeric_distributions", "statistical_summary", "outliers_analysis",
		"recommendations",
	}, SectionKeys())
}
