package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"pollweight/internal/aggregate"
	"pollweight/internal/formatter"
	"pollweight/internal/pipeline"
	"pollweight/pkg/metadata"
)

// reportTables are the aggregate tables included in the report, in order.
var reportTables = []string{"intention_by_wave", "image_by_wave", "tracking"}

// WaveSummary returns one row per wave with its cleaning and weighting figures.
func WaveSummary(run *pipeline.Run) ([]string, [][]string) {
	headers := []string{"wave", "rows", "active", "excluded", "imputed_ages", "median_age", "cells", "coverage", "effective_n", "status"}

	records := make([][]string, 0, len(run.Waves))

	for _, w := range run.Waves {
		if !w.OK() {
			records = append(records, []string{w.Wave.Label, "", "", "", "", "", "", "", "", "failed: " + w.Err.Error()})
			continue
		}

		s := w.Batch.Stats
		records = append(records, []string{
			w.Wave.Label,
			strconv.Itoa(s.TotalRows),
			strconv.Itoa(s.ActiveRows),
			strconv.Itoa(s.ExcludedRows()),
			strconv.Itoa(s.ImputedAges),
			strconv.FormatFloat(s.MedianAge, 'f', 1, 64),
			strconv.Itoa(len(w.Weights.Cells)),
			strconv.FormatFloat(w.Weights.Coverage, 'f', 4, 64),
			strconv.FormatFloat(w.Weights.EffectiveSampleSize, 'f', 1, 64),
			"ok",
		})
	}

	return headers, records
}

// BuildReport renders the markdown report of run and signs it with its
// provenance.
func BuildReport(run *pipeline.Run, tables []*aggregate.Table, version string) string {
	var sb strings.Builder

	sb.WriteString("# Tracking report\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", run.ID)
	fmt.Fprintf(&sb, "- Started: %s\n", run.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "- Reference: `%s` (%d cells)\n", run.Reference.File(), run.Reference.Len())
	fmt.Fprintf(&sb, "- Waves: %d weighted, %d failed\n\n", len(run.Waves)-len(run.Failed()), len(run.Failed()))

	sb.WriteString("## Waves\n\n")

	headers, records := WaveSummary(run)
	sb.WriteString(formatter.MarkdownTable(headers, records))
	sb.WriteString("\n")

	for _, w := range run.Waves {
		if !w.OK() || len(w.Weights.Missing) == 0 {
			continue
		}

		missing := make([]string, len(w.Weights.Missing))
		for i, c := range w.Weights.Missing {
			missing[i] = c.String()
		}

		fmt.Fprintf(&sb, "\nWave %s has no respondent in %d reference cells: %s\n",
			w.Wave.Label, len(missing), strings.Join(missing, ", "))
	}

	byName := make(map[string]*aggregate.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	for _, name := range reportTables {
		t, ok := byName[name]
		if !ok {
			continue
		}

		fmt.Fprintf(&sb, "\n## %s\n\n", name)
		sb.WriteString(formatter.MarkdownTable(t.Headers(), t.Records()))
		sb.WriteString("\n")
	}

	return metadata.Sign(sb.String(), &metadata.Metadata{
		RunID:         run.ID,
		Version:       version,
		ReferenceFile: run.Reference.File(),
		ReferenceHash: run.Reference.Hash(),
	})
}
