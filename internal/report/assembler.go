package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"duach/internal/analysis"
	"duach/internal/config"
	apperrors "duach/internal/errors"
	"duach/internal/fonts"
	"duach/internal/i18n"
	"duach/internal/infrastructure"
	"duach/internal/layout"
	"duach/internal/table"
)

// chartHeight is the rendered height of an embedded chart in millimeters.
const chartHeight = 100.0

// captionKeys maps chart filename substrings to caption text keys, most
// specific first.
var captionKeys = []struct {
	substr string
	key    string
}{
	{"correlation", "correlation_chart"},
	{"heatmap", "correlation_chart"},
	{"missing", "missing_chart"},
	{"hist", "histogram_chart"},
	{"distribution", "histogram_chart"},
	{"bar", "bar_chart"},
	{"categor", "bar_chart"},
	{"pie", "bar_chart"},
	{"outlier", "outliers_chart"},
	{"box", "outliers_chart"},
}

// Generator is the top-level document assembler. It is constructed once per
// process and is safe for concurrent Generate calls: all mutable layout
// state lives in per-call values.
type Generator struct {
	logger   *slog.Logger
	cfg      *config.Config
	tr       *i18n.Translator
	resolver *fonts.Resolver
	analyzer *analysis.Analyzer
}

// NewGenerator creates a Generator with an explicit font resolver handle.
func NewGenerator(logger *slog.Logger, cfg *config.Config, tr *i18n.Translator, resolver *fonts.Resolver) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		logger:   logger,
		cfg:      cfg,
		tr:       tr,
		resolver: resolver,
		analyzer: analysis.NewAnalyzer(logger, cfg.Report),
	}
}

// Generate builds one complete document from a cleaned table, optional
// precomputed analysis results (nil means compute here), and zero or more
// pre-rendered chart images. It returns the output path on success. Only a
// final-output write failure is returned as an error; everything else is
// contained and logged.
func (g *Generator) Generate(ctx context.Context, cleaned *table.CleanedTable, res *analysis.Result, chartFiles []string, outputPath string) (string, error) {
	reportID := uuid.NewString()
	ctx = infrastructure.WithReportID(ctx, reportID)
	logger := g.logger.With(slog.String("report_id", reportID))

	logger.InfoContext(ctx, "starting report generation",
		slog.String("output", outputPath),
		slog.Int("charts", len(chartFiles)))

	tempDir := g.reportTempDir(ctx, logger, reportID)
	defer g.cleanupTempDir(ctx, logger, tempDir)

	if res == nil {
		res = g.analyzer.Analyze(ctx, cleaned)
	}

	asset := g.resolver.Resolve(ctx)
	engine := layout.NewEngine(logger, asset)

	orchestrator := NewOrchestrator(logger, g.tr, g.cfg.Report)
	sections := orchestrator.BuildSections(ctx, cleaned, res)

	g.writeTitlePage(engine)
	g.writeTableOfContents(engine, sections)
	for _, section := range sections {
		g.writeSection(engine, section)
	}
	g.writeCharts(ctx, logger, engine, chartFiles)

	if err := g.finalize(ctx, logger, engine, outputPath, tempDir); err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "report generated",
		slog.String("output", outputPath),
		slog.Int("pages", engine.Page()),
		slog.Bool("degraded_fonts", engine.Degraded()))
	return outputPath, nil
}

// writeTitlePage lays out the fixed-position cover page.
func (g *Generator) writeTitlePage(engine *layout.Engine) {
	engine.AddPage()
	engine.CenteredTextAt(80, g.tr.T("report_title"), 24, true)
	engine.CenteredTextAt(100, g.tr.T("report_subtitle"), 16, false)
	engine.CenteredTextAt(120, g.tr.T("report_company"), 14, true)
	date := fmt.Sprintf("%s: %s", g.tr.T("report_date"), g.tr.FormatDateTime(g.tr.Now()))
	engine.CenteredTextAt(140, date, 12, false)
	engine.HorizontalRule(160)
	engine.Advance(160 - layout.Margin)
}

// writeTableOfContents emits the static numbered list of section titles.
func (g *Generator) writeTableOfContents(engine *layout.Engine, sections []Section) {
	engine.SectionHeader(g.tr.T("table_of_contents"), 1)
	for i, section := range sections {
		engine.Text(fmt.Sprintf("%d. %s", i+1, section.Title), 12, true)
	}
	engine.Text(fmt.Sprintf("%d. %s", len(sections)+1, g.tr.T("charts_visualizations")), 12, true)
}

// writeSection renders one guaranteed section.
func (g *Generator) writeSection(engine *layout.Engine, section Section) {
	engine.SectionHeader(section.Title, 1)
	for _, l := range section.Lines {
		size := l.Size
		if size == 0 {
			size = 12
		}
		engine.Text(l.Text, size, l.Bold)
	}
}

// writeCharts embeds the pre-rendered chart images with captions. A missing
// or unreadable chart is skipped with a log note; it never fails the
// document.
func (g *Generator) writeCharts(ctx context.Context, logger *slog.Logger, engine *layout.Engine, chartFiles []string) {
	engine.SectionHeader(g.tr.T("charts_visualizations"), 1)

	embedded := 0
	for i, path := range chartFiles {
		if _, err := os.Stat(path); err != nil {
			logger.WarnContext(ctx, "chart file not found, skipping",
				slog.String("path", path), slog.Any("error", err))
			continue
		}
		engine.Image(path, chartHeight)
		caption := fmt.Sprintf("%s: %s", g.tr.Tf("chart_caption", i+1), g.captionFor(path))
		engine.Text(caption, 10, false)
		embedded++
	}
	if embedded == 0 {
		engine.Text(g.tr.T("no_charts_available"), 12, false)
	}
}

// captionFor looks up a human-readable caption by filename substring.
func (g *Generator) captionFor(path string) string {
	name := strings.ToLower(filepath.Base(path))
	for _, c := range captionKeys {
		if strings.Contains(name, c.substr) {
			return g.tr.T(c.key)
		}
	}
	return g.tr.T("charts_visualizations")
}

// reportTempDir creates the scratch directory for one generation under the
// configured temp root. Failure to create it is tolerated; salvage falls
// back to writing next to the target only.
func (g *Generator) reportTempDir(ctx context.Context, logger *slog.Logger, reportID string) string {
	dir := filepath.Join(g.cfg.Paths.TempDir, "duach-"+reportID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.WarnContext(ctx, "could not create report temp directory",
			slog.String("dir", dir), slog.Any("error", err))
		return ""
	}
	return dir
}

// cleanupTempDir removes the per-report scratch directory. A directory still
// holding salvaged artifacts is kept and noted instead; cleanup failures are
// logged, never surfaced.
func (g *Generator) cleanupTempDir(ctx context.Context, logger *slog.Logger, dir string) {
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	if len(entries) > 0 {
		logger.WarnContext(ctx, "keeping report temp directory with salvaged artifacts",
			slog.String("dir", dir))
		return
	}
	if err := os.Remove(dir); err != nil {
		logger.WarnContext(ctx, "could not remove report temp directory",
			slog.String("dir", dir), slog.Any("error", err))
	}
}

// finalize writes the document to its output path. On failure it attempts
// one best-effort partial write so the built report is recoverable, then
// surfaces the fatal error.
func (g *Generator) finalize(ctx context.Context, logger *slog.Logger, engine *layout.Engine, outputPath, tempDir string) error {
	var buf bytes.Buffer
	if err := engine.Output(&buf); err != nil {
		if buf.Len() > 0 {
			g.writePartial(ctx, logger, buf.Bytes(), outputPath, tempDir)
		}
		return apperrors.Fatal("failed to render document", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			g.writePartial(ctx, logger, buf.Bytes(), outputPath, tempDir)
			return apperrors.Fatal("failed to create output directory", err)
		}
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		g.writePartial(ctx, logger, buf.Bytes(), outputPath, tempDir)
		return apperrors.Fatal("failed to write report file", err)
	}
	return nil
}

// writePartial makes one salvage attempt: next to the target first, then in
// the report's scratch directory. Its own failure is only logged.
func (g *Generator) writePartial(ctx context.Context, logger *slog.Logger, data []byte, outputPath, tempDir string) {
	candidates := []string{outputPath + ".partial"}
	if tempDir != "" {
		candidates = append(candidates, filepath.Join(tempDir, filepath.Base(outputPath)+".partial"))
	}
	for _, candidate := range candidates {
		if err := os.WriteFile(candidate, data, 0o644); err == nil {
			logger.WarnContext(ctx, "saved partial report after write failure",
				slog.String("path", candidate))
			return
		}
	}
	logger.ErrorContext(ctx, "could not save partial report")
}
