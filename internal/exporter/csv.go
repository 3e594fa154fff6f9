package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"pollweight/internal/aggregate"
	"pollweight/internal/models"
	"pollweight/internal/weighting"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// WeightHeaders are the columns of a weights file.
var WeightHeaders = []string{
	"row", "date", "survey_id", "province", "sex", "age", "age_imputed",
	"age_group", "cell", "excluded", "reason", "weight",
}

// CellHeaders are the columns of a cell summary file.
var CellHeaders = []string{"cell", "province", "sex", "age_group", "count", "observed_share", "reference_share", "weight"}

// writeCSV writes headers and records to path, creating parent directories.
func writeCSV(path string, headers []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(bom); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	return file.Close()
}

// WeightRecords renders every record of a wave, excluded ones included with
// their reason and an empty weight.
func WeightRecords(records []*models.Respondent) [][]string {
	out := make([][]string, 0, len(records))

	for _, r := range records {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format(aggregate.DateLayout)
		}

		age := ""
		if r.Age != 0 {
			age = strconv.Itoa(r.Age)
		}

		cell := ""
		if r.Cell().Complete() {
			cell = r.Cell().Key()
		}

		weight := ""
		if !r.Excluded {
			weight = formatFloat(r.Weight)
		}

		out = append(out, []string{
			strconv.Itoa(r.Row),
			date,
			r.SurveyID,
			r.Province,
			r.Sex,
			age,
			strconv.FormatBool(r.AgeImputed),
			r.AgeGroup,
			cell,
			strconv.FormatBool(r.Excluded),
			r.ExcludeReason,
			weight,
		})
	}

	return out
}

// CellRecords renders the weighting summary of a wave.
func CellRecords(result *weighting.Result) [][]string {
	out := make([][]string, 0, len(result.Cells))

	for _, cw := range result.Cells {
		out = append(out, []string{
			cw.Cell.Key(),
			cw.Cell.Province,
			cw.Cell.Sex,
			cw.Cell.AgeGroup,
			strconv.Itoa(cw.Count),
			formatFloat(cw.ObservedShare),
			formatFloat(cw.ReferenceShare),
			formatFloat(cw.Weight),
		})
	}

	return out
}

// formatFloat keeps full precision so files can be re-read exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
