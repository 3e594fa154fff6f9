package reference

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"pollweight/internal/models"
	"pollweight/internal/normalizer"
	"pollweight/pkg/metadata"
	"pollweight/pkg/utils"
)

// Reference columns.
const (
	ColumnProvince   = "province"
	ColumnSex        = "sex"
	ColumnAgeGroup   = "age_group"
	ColumnPopulation = "population"
)

// headerAliases maps folded header spellings to column names.
var headerAliases = map[string]string{
	"province":   ColumnProvince,
	"provincia":  ColumnProvince,
	"estrato":    ColumnProvince,
	"stratum":    ColumnProvince,
	"sex":        ColumnSex,
	"sexo":       ColumnSex,
	"age group":  ColumnAgeGroup,
	"edad rango": ColumnAgeGroup,
	"grupo edad": ColumnAgeGroup,
	"rango edad": ColumnAgeGroup,
	"population": ColumnPopulation,
	"poblacion":  ColumnPopulation,
	"share":      ColumnPopulation,
	"count":      ColumnPopulation,
}

var requiredColumns = []string{ColumnProvince, ColumnSex, ColumnAgeGroup, ColumnPopulation}

// Loader parses reference files using the same domains as the survey rows.
type Loader struct {
	provinces *normalizer.Domain
	sexes     *normalizer.Domain
	groups    map[string]string
}

// NewLoader creates a loader. Age group labels are matched after folding.
func NewLoader(provinces, sexes *normalizer.Domain, groups models.AgeGroups) *Loader {
	folded := make(map[string]string, len(groups))
	for _, g := range groups {
		folded[normalizer.Fold(g.Label)] = g.Label
	}

	return &Loader{provinces: provinces, sexes: sexes, groups: folded}
}

// Load reads and validates the reference file at path.
func (l *Loader) Load(path string) (*Distribution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}

	dist, err := l.Parse(path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	dist.hash = metadata.HashBytes(data)

	return dist, nil
}

// Parse reads a reference table from r. name identifies the source in errors.
func (l *Loader) Parse(name string, r io.Reader) (*Distribution, error) {
	reader, err := utils.NewCSVReader(r)
	if err != nil {
		return nil, &ReferenceFormatError{File: name, Reason: err.Error()}
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ReferenceFormatError{File: name, Reason: "empty file"}
		}

		return nil, &ReferenceFormatError{File: name, Line: 1, Reason: err.Error()}
	}

	columns, err := mapHeader(header)
	if err != nil {
		return nil, &ReferenceFormatError{File: name, Line: 1, Reason: err.Error()}
	}

	dist := &Distribution{
		shares: make(map[string]float64),
		counts: make(map[string]float64),
		file:   name,
	}

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, &ReferenceFormatError{File: name, Line: utils.ErrorLine(readErr), Reason: readErr.Error()}
		}

		line, _ := reader.FieldPos(0)

		if utils.IsBlankRecord(record) {
			continue
		}

		cell, value, rowErr := l.parseRow(record, columns)
		if rowErr != nil {
			return nil, &ReferenceFormatError{File: name, Line: line, Reason: rowErr.Error()}
		}

		key := cell.Key()
		if _, dup := dist.counts[key]; dup {
			return nil, &ReferenceFormatError{File: name, Line: line, Reason: fmt.Sprintf("duplicate cell %s", cell)}
		}

		dist.counts[key] = value
		dist.total += value
	}

	if dist.total <= 0 || math.IsInf(dist.total, 0) {
		return nil, &ReferenceIntegrityError{File: name, Total: dist.total}
	}

	for key, value := range dist.counts {
		dist.shares[key] = value / dist.total
	}

	return dist, nil
}

func (l *Loader) parseRow(record []string, columns map[string]int) (models.Cell, float64, error) {
	get := func(column string) string {
		i := columns[column]
		if i >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	for _, column := range requiredColumns {
		if get(column) == "" {
			return models.Cell{}, 0, fmt.Errorf("missing %s", column)
		}
	}

	province, err := l.provinces.Normalize(get(ColumnProvince))
	if err != nil {
		return models.Cell{}, 0, err
	}

	sex, err := l.sexes.Normalize(get(ColumnSex))
	if err != nil {
		return models.Cell{}, 0, err
	}

	group, ok := l.groups[normalizer.Fold(get(ColumnAgeGroup))]
	if !ok {
		return models.Cell{}, 0, fmt.Errorf("unknown age group %q", get(ColumnAgeGroup))
	}

	value, err := normalizer.ParseFloat(strings.ReplaceAll(get(ColumnPopulation), " ", ""))
	if err != nil {
		return models.Cell{}, 0, fmt.Errorf("invalid population %q", get(ColumnPopulation))
	}

	if value < 0 {
		return models.Cell{}, 0, fmt.Errorf("negative population %g", value)
	}

	return models.Cell{Province: province, Sex: sex, AgeGroup: group}, value, nil
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))

	for i, h := range header {
		name, ok := headerAliases[normalizer.Fold(h)]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", h)
		}

		if _, dup := columns[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}

		columns[name] = i
	}

	for _, column := range requiredColumns {
		if _, ok := columns[column]; !ok {
			return nil, fmt.Errorf("missing column %s", column)
		}
	}

	return columns, nil
}
