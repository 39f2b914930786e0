// Package analysis computes the deterministic statistics behind the report
// sections: missing-value counts, per-column summaries, IQR outliers,
// Pearson correlations, and rule-based recommendations. All functions are
// pure over a CleanedTable and never panic on degenerate input.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"duach/internal/config"
	"duach/internal/table"
)

// BasicInfo describes the table as a whole.
type BasicInfo struct {
	Rows            int
	Columns         int
	TotalNulls      int
	DuplicateRows   int
	NumericCols     int
	CategoricalCols int
	DatetimeCols    int
}

// ColumnMissing reports missing values for one column.
type ColumnMissing struct {
	Name    string
	Count   int
	Percent float64
}

// NumericSummary holds the descriptive statistics of a numeric column.
type NumericSummary struct {
	Name   string
	Count  int
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
	Q25    float64
	Q75    float64
}

// ValueCount is one categorical value with its frequency.
type ValueCount struct {
	Value string
	Count int
}

// CategoricalSummary holds the distribution of a categorical column.
type CategoricalSummary struct {
	Name   string
	Unique int
	Top    []ValueCount
	Other  int
}

// OutlierInfo reports IQR-method outliers for one numeric column. Values
// outside [Q1-1.5*IQR, Q3+1.5*IQR] are flagged.
type OutlierInfo struct {
	Name    string
	Count   int
	Percent float64
	Low     float64
	High    float64
}

// Correlation is a Pearson correlation between two numeric columns.
type Correlation struct {
	ColumnA string
	ColumnB string
	R       float64
}

// Trend is the direction of a numeric column when its values are ordered by
// the table's first datetime column. Key is a text key resolved through i18n.
type Trend struct {
	Name  string
	Key   string
	Slope float64
}

// Recommendation is a keyed, formattable advice line. The report layer
// translates the key through i18n.
type Recommendation struct {
	Key  string
	Args []interface{}
}

// Result aggregates everything the report sections need.
type Result struct {
	Basic           BasicInfo
	Missing         []ColumnMissing
	Numeric         []NumericSummary
	Categorical     []CategoricalSummary
	Outliers        []OutlierInfo
	Correlations    []Correlation
	Trends          []Trend
	Recommendations []Recommendation
}

// strongCorrelation is the |r| threshold above which a pair is reported.
const strongCorrelation = 0.7

// Analyzer computes a Result from a CleanedTable.
type Analyzer struct {
	logger *slog.Logger
	cfg    config.ReportConfig
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(logger *slog.Logger, cfg config.ReportConfig) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, cfg: cfg}
}

// Analyze runs every computation over the table. Degenerate tables yield a
// Result with empty slices, never an error.
func (a *Analyzer) Analyze(ctx context.Context, t *table.CleanedTable) *Result {
	res := &Result{}
	if t == nil {
		t = &table.CleanedTable{}
	}

	res.Basic = a.basicInfo(t)
	res.Missing = a.missingValues(t)
	res.Numeric = a.numericSummaries(t)
	res.Categorical = a.categoricalSummaries(t)
	res.Outliers = a.outliers(t)
	res.Correlations = a.correlations(t)
	res.Trends = a.trends(t)
	res.Recommendations = a.recommend(t, res)

	a.logger.InfoContext(ctx, "analysis complete",
		slog.Int("rows", res.Basic.Rows),
		slog.Int("numeric_columns", res.Basic.NumericCols),
		slog.Int("outlier_columns", len(res.Outliers)),
		slog.Int("strong_correlations", len(res.Correlations)))
	return res
}

func (a *Analyzer) basicInfo(t *table.CleanedTable) BasicInfo {
	info := BasicInfo{
		Rows:       t.RowCount(),
		Columns:    t.ColumnCount(),
		TotalNulls: t.TotalNulls(),
	}
	for i := range t.Columns {
		switch t.Columns[i].Kind {
		case table.KindNumeric:
			info.NumericCols++
		case table.KindDatetime:
			info.DatetimeCols++
		default:
			info.CategoricalCols++
		}
	}
	info.DuplicateRows = duplicateRows(t)
	return info
}

// duplicateRows counts rows identical to an earlier row across all columns.
func duplicateRows(t *table.CleanedTable) int {
	rows := t.RowCount()
	if rows == 0 {
		return 0
	}
	seen := make(map[string]bool, rows)
	dupes := 0
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.Reset()
		for i := range t.Columns {
			cell := t.Columns[i].Cells[r]
			switch {
			case cell.Null:
				b.WriteString("\x00")
			case t.Columns[i].Kind == table.KindNumeric:
				fmt.Fprintf(&b, "%g", cell.Number)
			case t.Columns[i].Kind == table.KindDatetime:
				b.WriteString(cell.Time.Format("2006-01-02T15:04:05"))
			default:
				b.WriteString(cell.Text)
			}
			b.WriteString("\x1f")
		}
		key := b.String()
		if seen[key] {
			dupes++
		}
		seen[key] = true
	}
	return dupes
}

func (a *Analyzer) missingValues(t *table.CleanedTable) []ColumnMissing {
	var missing []ColumnMissing
	rows := t.RowCount()
	for i := range t.Columns {
		count := t.Columns[i].NullCount()
		if count == 0 {
			continue
		}
		pct := 0.0
		if rows > 0 {
			pct = float64(count) / float64(rows) * 100
		}
		missing = append(missing, ColumnMissing{
			Name:    t.Columns[i].Name,
			Count:   count,
			Percent: pct,
		})
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Count > missing[j].Count })
	return missing
}

func (a *Analyzer) numericSummaries(t *table.CleanedTable) []NumericSummary {
	var summaries []NumericSummary
	for _, col := range t.ColumnsOfKind(table.KindNumeric) {
		vals := col.Numbers()
		if len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		summaries = append(summaries, NumericSummary{
			Name:   col.Name,
			Count:  len(vals),
			Mean:   mean(vals),
			Median: quantile(sorted, 0.5),
			Std:    stddev(vals),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Q25:    quantile(sorted, 0.25),
			Q75:    quantile(sorted, 0.75),
		})
	}
	return summaries
}

func (a *Analyzer) categoricalSummaries(t *table.CleanedTable) []CategoricalSummary {
	var summaries []CategoricalSummary
	for _, col := range t.ColumnsOfKind(table.KindCategorical) {
		texts := col.Texts()
		if len(texts) == 0 {
			continue
		}
		counts := make(map[string]int, len(texts))
		for _, v := range texts {
			counts[v]++
		}
		pairs := make([]ValueCount, 0, len(counts))
		for v, c := range counts {
			pairs = append(pairs, ValueCount{Value: v, Count: c})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].Count != pairs[j].Count {
				return pairs[i].Count > pairs[j].Count
			}
			return pairs[i].Value < pairs[j].Value
		})
		top := pairs
		other := 0
		if len(pairs) > a.cfg.TopValues {
			top = pairs[:a.cfg.TopValues]
			for _, p := range pairs[a.cfg.TopValues:] {
				other += p.Count
			}
		}
		summaries = append(summaries, CategoricalSummary{
			Name:   col.Name,
			Unique: len(counts),
			Top:    top,
			Other:  other,
		})
	}
	return summaries
}

func (a *Analyzer) outliers(t *table.CleanedTable) []OutlierInfo {
	var infos []OutlierInfo
	for _, col := range t.ColumnsOfKind(table.KindNumeric) {
		vals := col.Numbers()
		if len(vals) < 4 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		low := q1 - 1.5*iqr
		high := q3 + 1.5*iqr
		count := 0
		for _, v := range vals {
			if v < low || v > high {
				count++
			}
		}
		if count == 0 {
			continue
		}
		infos = append(infos, OutlierInfo{
			Name:    col.Name,
			Count:   count,
			Percent: float64(count) / float64(len(vals)) * 100,
			Low:     low,
			High:    high,
		})
	}
	return infos
}

func (a *Analyzer) correlations(t *table.CleanedTable) []Correlation {
	numeric := t.ColumnsOfKind(table.KindNumeric)
	var corrs []Correlation
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r, ok := pearson(numeric[i], numeric[j])
			if ok && math.Abs(r) >= strongCorrelation {
				corrs = append(corrs, Correlation{
					ColumnA: numeric[i].Name,
					ColumnB: numeric[j].Name,
					R:       r,
				})
			}
		}
	}
	sort.Slice(corrs, func(i, j int) bool {
		return math.Abs(corrs[i].R) > math.Abs(corrs[j].R)
	})
	return corrs
}

// trends fits a least-squares line to each numeric column after ordering its
// values by the table's first datetime column, and classifies the direction.
// At least three rows with both a date and a value are required.
func (a *Analyzer) trends(t *table.CleanedTable) []Trend {
	dateCols := t.ColumnsOfKind(table.KindDatetime)
	if len(dateCols) == 0 {
		return nil
	}
	dates := dateCols[0]

	var trends []Trend
	for _, col := range t.ColumnsOfKind(table.KindNumeric) {
		n := len(col.Cells)
		if len(dates.Cells) < n {
			n = len(dates.Cells)
		}
		type point struct {
			at  time.Time
			val float64
		}
		var pts []point
		for i := 0; i < n; i++ {
			if dates.Cells[i].Null || col.Cells[i].Null {
				continue
			}
			pts = append(pts, point{at: dates.Cells[i].Time, val: col.Cells[i].Number})
		}
		if len(pts) < 3 {
			continue
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].at.Before(pts[j].at) })

		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i] = float64(i)
			ys[i] = p.val
		}
		slope := leastSquaresSlope(xs, ys)
		trends = append(trends, Trend{
			Name:  col.Name,
			Key:   trendKey(slope, mean(ys)),
			Slope: slope,
		})
	}
	return trends
}

// trendKey classifies a per-step slope relative to the series mean. Slopes
// within 1% of the mean magnitude per step count as stable.
func trendKey(slope, m float64) string {
	scale := math.Abs(m)
	if scale < 1 {
		scale = 1
	}
	switch {
	case slope > 0.01*scale:
		return "trend_rising"
	case slope < -0.01*scale:
		return "trend_falling"
	default:
		return "trend_stable"
	}
}

// leastSquaresSlope fits y = a + b*x and returns b.
func leastSquaresSlope(xs, ys []float64) float64 {
	mx, my := mean(xs), mean(ys)
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}
	return sxy / sxx
}

// recommend derives keyed advice from the computed results, mirroring the
// rule set of the original report generator.
func (a *Analyzer) recommend(t *table.CleanedTable, res *Result) []Recommendation {
	var recs []Recommendation

	cells := res.Basic.Rows * res.Basic.Columns
	if cells > 0 {
		nullPct := float64(res.Basic.TotalNulls) / float64(cells) * 100
		switch {
		case nullPct > 20:
			recs = append(recs, Recommendation{Key: "high_missing_data", Args: []interface{}{nullPct}})
		case nullPct > 5:
			recs = append(recs, Recommendation{Key: "medium_missing_data", Args: []interface{}{nullPct}})
		default:
			recs = append(recs, Recommendation{Key: "low_missing_data", Args: []interface{}{nullPct}})
		}
	}

	if res.Basic.DuplicateRows > 0 {
		recs = append(recs, Recommendation{Key: "duplicate_rows_rec", Args: []interface{}{res.Basic.DuplicateRows}})
	}

	var heavyOutliers []string
	for _, o := range res.Outliers {
		if o.Percent > 5 {
			heavyOutliers = append(heavyOutliers, o.Name)
		}
	}
	if len(heavyOutliers) > 0 {
		recs = append(recs, Recommendation{Key: "high_outliers_rec",
			Args: []interface{}{strings.Join(heavyOutliers, ", ")}})
	}

	if len(res.Correlations) > 0 {
		recs = append(recs, Recommendation{Key: "high_correlations"})
	}

	if res.Basic.Rows > 0 && res.Basic.Rows < 30 {
		recs = append(recs, Recommendation{Key: "small_dataset", Args: []interface{}{res.Basic.Rows}})
	}

	recs = append(recs,
		Recommendation{Key: "check_data_quality"},
		Recommendation{Key: "backup_original"},
		Recommendation{Key: "use_visualizations"},
	)
	return recs
}

// mean returns the arithmetic mean.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev returns the sample standard deviation.
func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// quantile returns the q-quantile of a sorted slice using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// pearson computes the correlation over rows where both columns have
// values. It returns false when fewer than three shared rows exist or a
// column is constant.
func pearson(a, b *table.Column) (float64, bool) {
	n := len(a.Cells)
	if len(b.Cells) < n {
		n = len(b.Cells)
	}
	var xs, ys []float64
	for i := 0; i < n; i++ {
		if a.Cells[i].Null || b.Cells[i].Null {
			continue
		}
		xs = append(xs, a.Cells[i].Number)
		ys = append(ys, b.Cells[i].Number)
	}
	if len(xs) < 3 {
		return 0, false
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}
