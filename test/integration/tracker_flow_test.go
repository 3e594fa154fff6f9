package integration

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"pollweight/internal/config"
	"pollweight/internal/exporter"
	"pollweight/internal/logger"
	"pollweight/internal/models"
	"pollweight/internal/pipeline"
	"pollweight/internal/reference"
	"pollweight/pkg/metadata"
)

func newRunner(t *testing.T, cfg *config.Config) *pipeline.Runner {
	t.Helper()

	runner, err := pipeline.NewRunner(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	return runner
}

func TestTrackerFlow_Fixtures(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tracking.InputDir = filepath.Join("..", "fixtures", "waves")
	cfg.Weighting.ReferenceFile = filepath.Join("..", "fixtures", "reference.csv")
	cfg.Output.Dir = t.TempDir()

	runner := newRunner(t, cfg)

	waves, err := runner.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	run, err := runner.Run(context.Background(), waves)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(run.Waves) != 2 {
		t.Fatalf("Expected 2 waves, got %d", len(run.Waves))
	}

	// January: 8 women and 2 men against a 50/50 reference
	january := run.Waves[0]
	if january.Err != nil {
		t.Fatalf("Expected 2024-01 to succeed, got %v", january.Err)
	}

	female := models.Cell{Province: "NEUQUEN", Sex: "F", AgeGroup: "30-44"}
	male := models.Cell{Province: "NEUQUEN", Sex: "M", AgeGroup: "30-44"}

	if w, _ := january.Weights.WeightOf(female); math.Abs(w-0.625) > 1e-12 {
		t.Errorf("Expected female weight 0.625, got %v", w)
	}

	if w, _ := january.Weights.WeightOf(male); math.Abs(w-2.5) > 1e-12 {
		t.Errorf("Expected male weight 2.5, got %v", w)
	}

	// February samples a 16-29 man the reference does not cover
	february := run.Waves[1]
	if !errors.Is(february.Err, reference.ErrUnmappedCell) {
		t.Errorf("Expected unmapped cell error for 2024-02, got %v", february.Err)
	}

	tables, err := runner.Tables(run)
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}

	for _, tbl := range tables {
		if tbl.Name != "intention_by_wave" {
			continue
		}

		v, ok := tbl.Value("mean", "2024-01")
		if !ok || math.Abs(v-0.5) > 1e-12 {
			t.Errorf("Expected weighted intention 0.5, got %v (ok=%v)", v, ok)
		}
	}

	manifest, err := exporter.New(cfg.Output, logger.Discard(), "test").Export(run, tables)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, p := range manifest.Files {
		if filepath.Base(p) == "encuestas_2024-02_weights.csv" {
			t.Errorf("Failed wave must not produce a weights file")
		}
	}
}

func TestTrackerFlow_SampleData(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join("..", "..", "data", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	cfg.Output.Dir = t.TempDir()

	runner := newRunner(t, cfg)

	waves, err := runner.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	run, err := runner.Run(context.Background(), waves)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, w := range run.Waves {
		if w.Err != nil {
			t.Fatalf("Wave %s failed: %v", w.Wave.Label, w.Err)
		}

		active := w.Batch.Active()
		n := float64(len(active))

		sums := make(map[models.Cell]float64)
		for _, r := range active {
			sums[r.Cell()] += r.Weight
		}

		for cell, sum := range sums {
			share, err := run.Reference.ShareOf(cell)
			if err != nil {
				t.Fatalf("ShareOf(%s) failed: %v", cell, err)
			}

			if math.Abs(sum/n-share) > 1e-9 {
				t.Errorf("Wave %s cell %s: weighted share %v, reference %v", w.Wave.Label, cell, sum/n, share)
			}
		}

		if w.Batch.Stats.ExcludedRows() == 0 {
			t.Errorf("Wave %s: expected excluded rows in sample data", w.Wave.Label)
		}
	}

	tables, err := runner.Tables(run)
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}

	if _, err := exporter.New(cfg.Output, logger.Discard(), "test").Export(run, tables); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(cfg.Output.Dir, exporter.ReportFile))
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}

	meta, err := metadata.Verify(string(content))
	if err != nil {
		t.Fatalf("Report verification failed: %v", err)
	}

	if err := metadata.VerifyReference(meta, cfg.Weighting.ReferenceFile); err != nil {
		t.Errorf("Reference verification failed: %v", err)
	}
}
