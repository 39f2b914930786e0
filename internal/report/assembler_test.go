package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duach/internal/config"
	apperrors "duach/internal/errors"
	"duach/internal/fonts"
	"duach/internal/i18n"
	"duach/internal/table"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	cfg := config.Default()
	// An empty assets directory and a disabled download keep resolution
	// deterministic; on hosts without system fonts the engine degrades and
	// the document is still produced.
	cfg.Fonts.AssetsDir = t.TempDir()
	cfg.Fonts.DisableDownload = true
	cfg.Paths.TempDir = t.TempDir()
	tr := i18n.New("he", "Asia/Jerusalem")
	return NewGenerator(nil, cfg, tr, fonts.NewResolver(nil, cfg.Fonts))
}

func TestGenerate_WritesDocument(t *testing.T) {
	g := testGenerator(t)
	out := filepath.Join(t.TempDir(), "sample_report.pdf")

	path, err := g.Generate(context.Background(), sampleTable(), nil, nil, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, len(data) > 1000, "a full report is not a stub file")
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGenerate_EmptyTableStillProducesReport(t *testing.T) {
	g := testGenerator(t)
	out := filepath.Join(t.TempDir(), "empty_report.pdf")

	_, err := g.Generate(context.Background(), &table.CleanedTable{}, nil, nil, out)
	require.NoError(t, err, "an empty dataset yields a report full of fallback wording")
	assert.FileExists(t, out)
}

func TestGenerate_NilTableStillProducesReport(t *testing.T) {
	g := testGenerator(t)
	out := filepath.Join(t.TempDir(), "nil_report.pdf")

	_, err := g.Generate(context.Background(), nil, nil, nil, out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestGenerate_MissingChartSkipped(t *testing.T) {
	g := testGenerator(t)
	out := filepath.Join(t.TempDir(), "charts_report.pdf")
	charts := []string{filepath.Join(t.TempDir(), "no_such_chart.png")}

	_, err := g.Generate(context.Background(), sampleTable(), nil, charts, out)
	require.NoError(t, err, "a missing chart file never fails the document")
	assert.FileExists(t, out)
}

func TestGenerate_CreatesOutputDirectory(t *testing.T) {
	g := testGenerator(t)
	out := filepath.Join(t.TempDir(), "nested", "dir", "report.pdf")

	_, err := g.Generate(context.Background(), sampleTable(), nil, nil, out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestGenerate_UnwritableTargetIsFatal(t *testing.T) {
	g := testGenerator(t)
	// A directory at the target path makes the final write fail.
	out := t.TempDir()

	_, err := g.Generate(context.Background(), sampleTable(), nil, nil, out)
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err), "only the final write failure surfaces as fatal")
	assert.FileExists(t, out+".partial", "the rendered document is salvaged beside the target")
}

func TestGenerate_RemovesReportTempDir(t *testing.T) {
	g := testGenerator(t)
	out := filepath.Join(t.TempDir(), "report.pdf")

	_, err := g.Generate(context.Background(), sampleTable(), nil, nil, out)
	require.NoError(t, err)

	entries, err := os.ReadDir(g.cfg.Paths.TempDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "duach-",
			"the per-report scratch directory is removed after a clean run")
	}
}

func TestCaptionFor(t *testing.T) {
	g := testGenerator(t)
	tests := []struct {
		file string
		key  string
	}{
		{"correlation_heatmap.png", "correlation_chart"},
		{"missing_values.png", "missing_chart"},
		{"histograms.png", "histogram_chart"},
		{"age_distribution.png", "histogram_chart"},
		{"categorical_bars.png", "bar_chart"},
		{"outliers_boxplot.png", "outliers_chart"},
		{"mystery.png", "charts_visualizations"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, g.tr.T(tt.key), g.captionFor("/charts/"+tt.file))
		})
	}
}
