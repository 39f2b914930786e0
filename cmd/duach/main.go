// Command duach reads messy CSV/Excel tables, normalizes them, and renders
// a right-to-left PDF analysis report per input file. Multiple inputs are
// processed concurrently; each report's construction is fully isolated.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"duach/internal/config"
	"duach/internal/fonts"
	"duach/internal/i18n"
	"duach/internal/infrastructure"
	"duach/internal/preprocess"
	"duach/internal/report"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	outDir := flag.String("out", "", "output directory for reports (defaults to config paths.output_dir)")
	chartsDir := flag.String("charts", "", "directory of pre-rendered chart PNGs to embed (defaults to config paths.charts_dir)")
	lang := flag.String("lang", "", "report language: he or en (defaults to config)")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: duach [flags] <table.csv|table.xlsx> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}
	if *chartsDir != "" {
		cfg.Paths.ChartsDir = *chartsDir
	}
	if *lang != "" {
		cfg.Report.Language = *lang
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	tr := i18n.New(cfg.Report.Language, cfg.Report.Timezone)
	resolver := fonts.NewResolver(logger, cfg.Fonts)
	generator := report.NewGenerator(logger, cfg, tr, resolver)
	pre := preprocess.NewPreprocessor(logger, cfg.Report)

	charts := listCharts(logger, cfg.Paths.ChartsDir)

	g, ctx := errgroup.WithContext(context.Background())
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			raw, err := preprocess.ReadTableAuto(logger, input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}
			cleaned := pre.Preprocess(ctx, raw)

			outPath := filepath.Join(cfg.Paths.OutputDir, reportName(input))
			if _, err := generator.Generate(ctx, cleaned, nil, charts, outPath); err != nil {
				return fmt.Errorf("failed to generate report for %s: %w", input, err)
			}
			logger.Info("report written",
				slog.String("input", input), slog.String("output", outPath))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Report generation failed", "error", err)
		os.Exit(1)
	}
}

// reportName derives the output file name from the input file name.
func reportName(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_report.pdf"
}

// listCharts collects the PNG files in the charts directory. A missing
// directory simply yields no charts.
func listCharts(logger *slog.Logger, dir string) []string {
	if dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil || len(matches) == 0 {
		logger.Debug("no chart images found", slog.String("dir", dir))
		return nil
	}
	return matches
}
