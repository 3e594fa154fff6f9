package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"pollweight/internal/aggregate"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name spreadsheet tools accept.
const maxSheetName = 31

// WriteWorkbook writes one sheet per table to path. Numeric cells are
// written as numbers; groups without data leave their values blank.
func WriteWorkbook(path string, tables []*aggregate.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool)

	for _, t := range tables {
		name := sheetName(t.Name, used)

		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, t); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}

		f.SetActiveSheet(0)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, t *aggregate.Table) error {
	headers := make([]any, 0, len(t.Headers()))
	for _, h := range t.Headers() {
		headers = append(headers, h)
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, row := range t.Rows {
		values := make([]any, 0, len(row.Key)+1+len(row.Values))
		for _, k := range row.Key {
			values = append(values, k)
		}

		values = append(values, row.N)

		for _, v := range row.Values {
			if row.HasData {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}

// sheetName makes name valid and unique as a sheet name.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}

		return r
	}, name)

	if clean == "" {
		clean = "table"
	}

	if len(clean) > maxSheetName {
		clean = clean[:maxSheetName]
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		candidate = clean[:min(len(clean), maxSheetName-len(suffix))] + suffix
	}

	used[strings.ToLower(candidate)] = true

	return candidate
}
