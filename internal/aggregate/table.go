// Package aggregate computes weighted statistics over cleaned, weighted respondents.
package aggregate

import (
	"strconv"
	"strings"
)

// Dimension is a grouping variable.
type Dimension string

// Supported dimensions.
const (
	DimWave     Dimension = "wave"
	DimDate     Dimension = "date"
	DimSex      Dimension = "sex"
	DimAgeGroup Dimension = "age_group"
	DimProvince Dimension = "province"
)

// DateLayout is the key format of the date dimension.
const DateLayout = "2006-01-02"

// Row is one group of a table. Values are meaningful only when HasData is set.
type Row struct {
	Key     []string
	Values  []float64
	N       int
	HasData bool
}

// Table is the result of an aggregation, rows sorted by key.
type Table struct {
	Name    string
	KeyCols []string
	Columns []string
	Rows    []Row
}

// Headers returns the key columns followed by n and the value columns.
func (t *Table) Headers() []string {
	headers := append([]string(nil), t.KeyCols...)
	headers = append(headers, "n")

	return append(headers, t.Columns...)
}

// Records renders rows as strings. Groups without data leave values empty.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows))

	for _, row := range t.Rows {
		record := append([]string(nil), row.Key...)
		record = append(record, strconv.Itoa(row.N))

		for _, v := range row.Values {
			if row.HasData {
				record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
			} else {
				record = append(record, "")
			}
		}

		records = append(records, record)
	}

	return records
}

// Find returns the row with the given key.
func (t *Table) Find(key ...string) (Row, bool) {
	want := strings.Join(key, keySep)

	for _, row := range t.Rows {
		if strings.Join(row.Key, keySep) == want {
			return row, true
		}
	}

	return Row{}, false
}

// Value returns column col of the row with key, and whether it has data.
func (t *Table) Value(col string, key ...string) (float64, bool) {
	row, ok := t.Find(key...)
	if !ok || !row.HasData {
		return 0, false
	}

	for i, c := range t.Columns {
		if c == col {
			return row.Values[i], true
		}
	}

	return 0, false
}

const keySep = "\x1f"

func dimNames(dims []Dimension) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}

	return names
}
