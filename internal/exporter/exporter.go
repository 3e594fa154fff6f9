package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"pollweight/internal/aggregate"
	"pollweight/internal/config"
	"pollweight/internal/logger"
	"pollweight/internal/normalizer"
	"pollweight/internal/pipeline"
	"pollweight/internal/weighting"
)

// Output file layout under the output directory.
const (
	WeightsDir    = "weights"
	AggregatesDir = "aggregates"
	WorkbookFile  = "tracking.xlsx"
	ReportFile    = "report.md"
)

// Manifest lists the files written by an export.
type Manifest struct {
	Files []string
}

func (m *Manifest) add(path string) {
	m.Files = append(m.Files, path)
}

// Exporter writes run artifacts according to the output configuration.
type Exporter struct {
	cfg     config.OutputConfig
	log     *logger.Logger
	version string
}

// New creates an exporter. version is recorded in the report provenance.
func New(cfg config.OutputConfig, log *logger.Logger, version string) *Exporter {
	return &Exporter{cfg: cfg, log: log, version: version}
}

// WeightsPath returns the weights file of a wave label.
func (e *Exporter) WeightsPath(label string) string {
	return filepath.Join(e.cfg.Dir, WeightsDir, fmt.Sprintf("encuestas_%s_weights.csv", label))
}

// CellsPath returns the cell summary file of a wave label.
func (e *Exporter) CellsPath(label string) string {
	return filepath.Join(e.cfg.Dir, WeightsDir, fmt.Sprintf("encuestas_%s_cells.csv", label))
}

// WriteWave writes the weights and cell summary of one weighted wave.
func (e *Exporter) WriteWave(batch *normalizer.Batch, weights *weighting.Result) ([]string, error) {
	label := batch.Wave.Label

	weightsPath := e.WeightsPath(label)
	if err := writeCSV(weightsPath, WeightHeaders, WeightRecords(batch.Records)); err != nil {
		return nil, fmt.Errorf("weights %s: %w", label, err)
	}

	cellsPath := e.CellsPath(label)
	if err := writeCSV(cellsPath, CellHeaders, CellRecords(weights)); err != nil {
		return nil, fmt.Errorf("cells %s: %w", label, err)
	}

	e.log.Debug("Wave files written", "wave", label, "weights", weightsPath, "cells", cellsPath)

	return []string{weightsPath, cellsPath}, nil
}

// WriteTables writes each table to aggregates/<name>.csv.
func (e *Exporter) WriteTables(tables []*aggregate.Table) ([]string, error) {
	paths := make([]string, 0, len(tables))

	for _, t := range tables {
		path := filepath.Join(e.cfg.Dir, AggregatesDir, t.Name+".csv")
		if err := writeCSV(path, t.Headers(), t.Records()); err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Export writes every enabled artifact of run. Failed waves produce no
// weights file; they appear in the report with their error.
func (e *Exporter) Export(run *pipeline.Run, tables []*aggregate.Table) (*Manifest, error) {
	if err := os.MkdirAll(e.cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &Manifest{}

	if e.cfg.Weights {
		for _, w := range run.Waves {
			if !w.OK() {
				continue
			}

			paths, err := e.WriteWave(w.Batch, w.Weights)
			if err != nil {
				return manifest, err
			}

			for _, p := range paths {
				manifest.add(p)
			}
		}
	}

	if e.cfg.Aggregates {
		paths, err := e.WriteTables(tables)
		if err != nil {
			return manifest, err
		}

		for _, p := range paths {
			manifest.add(p)
		}
	}

	if e.cfg.Workbook {
		path := filepath.Join(e.cfg.Dir, WorkbookFile)
		if err := WriteWorkbook(path, tables); err != nil {
			return manifest, err
		}

		manifest.add(path)
	}

	if e.cfg.Report {
		path := filepath.Join(e.cfg.Dir, ReportFile)

		report := BuildReport(run, tables, e.version)
		if err := os.WriteFile(path, []byte(report), 0644); err != nil {
			return manifest, fmt.Errorf("failed to write report: %w", err)
		}

		manifest.add(path)
	}

	e.log.Info("💾 Outputs written", "dir", e.cfg.Dir, "files", len(manifest.Files))

	return manifest, nil
}
