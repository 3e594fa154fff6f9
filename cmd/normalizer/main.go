// Package main provides the normalizer command-line tool: it cleans and
// weights a single survey wave and writes its weights file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pollweight/internal/config"
	"pollweight/internal/exporter"
	"pollweight/internal/formatter"
	"pollweight/internal/ingest"
	"pollweight/internal/logger"
	"pollweight/internal/models"
	"pollweight/internal/pipeline"
)

func main() {
	inputPath := flag.String("input", "", "Path to a wave file (e.g., encuestas_2023-05.csv)")
	configPath := flag.String("config", "", "Path to YAML configuration file")
	referenceFile := flag.String("reference", "", "Census reference CSV (overrides config)")
	outputDir := flag.String("output", "", "Output directory (overrides config)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: normalizer -input <encuestas_YYYY-MM.csv> [-config config.yaml] [-reference censo.csv] [-output dir]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v\n", err)
	}

	if *referenceFile != "" {
		cfg.Weighting.ReferenceFile = *referenceFile
	}

	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	wave, ok := ingest.ParseWaveName(*inputPath)
	if !ok {
		base := filepath.Base(*inputPath)
		wave = models.Wave{Label: strings.TrimSuffix(base, filepath.Ext(base)), Path: *inputPath}
		fmt.Printf("⚠️  %s does not follow encuestas_YYYY-MM.csv, using label %q\n", base, wave.Label)
	}

	fmt.Printf("📂 Reading: %s\n", *inputPath)

	lg := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	runner, err := pipeline.NewRunner(cfg, lg)
	if err != nil {
		log.Fatalf("❌ Setup failed: %v\n", err)
	}

	dist, err := runner.LoadReference()
	if err != nil {
		log.Fatalf("❌ Reference error: %v\n", err)
	}

	result := runner.ProcessWave(context.Background(), wave, dist)
	if result.Err != nil {
		log.Fatalf("❌ Wave failed: %v\n", result.Err)
	}

	stats := result.Batch.Stats
	fmt.Printf("📊 Rows: %d, active: %d, excluded: %d, imputed ages: %d (median %.1f)\n",
		stats.TotalRows, stats.ActiveRows, stats.ExcludedRows(), stats.ImputedAges, stats.MedianAge)

	fmt.Println()
	fmt.Print(formatter.TextTable(exporter.CellHeaders, exporter.CellRecords(result.Weights)))
	fmt.Println()

	paths, err := exporter.New(cfg.Output, lg, "").WriteWave(result.Batch, result.Weights)
	if err != nil {
		log.Fatalf("❌ Error writing weights: %v\n", err)
	}

	for _, p := range paths {
		fmt.Printf("✅ Saved to: %s\n", p)
	}
}
