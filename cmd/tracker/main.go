// Package main provides the tracker command: it weights every survey wave
// against the census reference and writes the tracking outputs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pollweight/internal/config"
	"pollweight/internal/exporter"
	"pollweight/internal/formatter"
	"pollweight/internal/logger"
	"pollweight/internal/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// 1. Define Command-Line Flags
	// ---------------------------
	configPath := flag.String("config", "", "Path to YAML configuration file")
	inputDir := flag.String("input", "", "Directory holding encuestas_<YYYY>-<MM>.csv files (overrides config)")
	referenceFile := flag.String("reference", "", "Census reference CSV (overrides config)")
	outputDir := flag.String("output", "", "Output directory (overrides config)")
	target := flag.String("target", "", "Candidate whose vote intention is tracked (overrides config)")
	workers := flag.Int("workers", 0, "Waves processed in parallel (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	applyFlags(cfg, *inputDir, *referenceFile, *outputDir, *target, *workers, *logLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	// Initialize Logger
	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	log.Info("🚀 Starting tracker", "version", version)
	log.Info(fmt.Sprintf("📍 Input: %s", cfg.Tracking.InputDir))
	log.Info(fmt.Sprintf("📊 Reference: %s", cfg.Weighting.ReferenceFile))
	log.Info(fmt.Sprintf("🎯 Output: %s", cfg.Output.Dir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, log)

	stop()
	os.Exit(code)
}

func applyFlags(cfg *config.Config, input, reference, output, target string, workers int, level string) {
	if input != "" {
		cfg.Tracking.InputDir = input
	}

	if reference != "" {
		cfg.Weighting.ReferenceFile = reference
	}

	if output != "" {
		cfg.Output.Dir = output
	}

	if target != "" {
		cfg.Tracking.TargetCandidate = target
	}

	if workers > 0 {
		cfg.Advanced.Workers = workers
	}

	if level != "" {
		cfg.Logging.Level = level
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	runner, err := pipeline.NewRunner(cfg, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Setup failed: %v", err))
		return 2
	}

	// 2. Discovery
	// ------------
	log.Info("Phase 1: Discovery...")

	waves, err := runner.Discover()
	if err != nil {
		log.Error(fmt.Sprintf("❌ Discovery failed: %v", err))
		return 1
	}

	log.Info(fmt.Sprintf("✅ Found %d waves", len(waves)))

	// 3. Processing (Normalization & Weighting)
	// -----------------------------------------
	log.Info("Phase 2: Processing (Normalization & Weighting)...")

	result, err := runner.Run(ctx, waves)
	if err != nil && !errors.Is(err, pipeline.ErrAllWavesFailed) {
		log.Error(fmt.Sprintf("❌ Run failed: %v", err))
		return 1
	}

	if result == nil {
		return 1
	}

	// 4. Aggregation & Export
	// -----------------------
	log.Info("Phase 3: Aggregation & Export...")

	tables, err := runner.Tables(result)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Aggregation failed: %v", err))
		return 1
	}

	if _, err := exporter.New(cfg.Output, log, version).Export(result, tables); err != nil {
		log.Error(fmt.Sprintf("❌ Export failed: %v", err))
		return 1
	}

	if cfg.Output.Console {
		headers, records := exporter.WaveSummary(result)
		fmt.Println()
		fmt.Print(formatter.TextTable(headers, records))

		for _, t := range tables {
			if t.Name == "tracking" {
				fmt.Println()
				fmt.Print(formatter.TextTable(t.Headers(), t.Records()))
			}
		}
	}

	failed := result.Failed()
	for _, w := range failed {
		log.Error(fmt.Sprintf("❌ Wave %s failed: %v", w.Wave.Label, w.Err))
	}

	if len(failed) > 0 {
		log.Warn(fmt.Sprintf("⚠️  %d of %d waves failed", len(failed), len(result.Waves)),
			"run", result.ID)

		return 1
	}

	log.Info("🎉 Tracking completed", "run", result.ID, "duration", result.Duration)

	return 0
}
