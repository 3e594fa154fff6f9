package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"pollweight/internal/models"
	"pollweight/internal/sanitizer"
)

// ErrNoAgeGroup is returned when a valid age falls in no configured band.
var ErrNoAgeGroup = errors.New("age not covered by any age group")

// Batch is the cleaned record set of one wave.
type Batch struct {
	Wave    models.Wave
	Records []*models.Respondent
	Stats   models.WaveStats
}

// Active returns the records that take part in weighting.
func (b *Batch) Active() []*models.Respondent {
	return models.Active(b.Records)
}

// Processor cleans one wave: it drops duplicates and incomplete rows,
// normalizes categorical fields, sanitizes ages and derives analysis fields.
// It holds no per-wave state and may be shared between goroutines.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	sanitizer   *sanitizer.Sanitizer
	groups      models.AgeGroups
}

// NewProcessor creates a new processor instance.
func NewProcessor(transformer *Transformer, s *sanitizer.Sanitizer, groups models.AgeGroups) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: transformer,
		sanitizer:   s,
		groups:      groups,
	}
}

// Process cleans the rows of wave. Normalization and imputation failures are
// fatal for the wave; incomplete, duplicate and out-of-range rows are kept in
// the batch marked as excluded.
func (p *Processor) Process(wave models.Wave, rows []models.RawRow) (*Batch, error) {
	records := make([]*models.Respondent, len(rows))
	for i, row := range rows {
		records[i] = &models.Respondent{
			Row:         row.Line,
			Wave:        wave.Label,
			SurveyID:    strings.TrimSpace(row.SurveyID),
			RawProvince: row.Province,
			RawSex:      row.Sex,
			RawAge:      row.Age,
		}
	}

	// 1. Duplicates on (survey, province, sex, age)
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		key := dedupKey(row)
		if seen[key] {
			records[i].Exclude(models.ExcludeDuplicate)
			continue
		}

		seen[key] = true
	}

	// 2. Critical fields
	for i, row := range rows {
		if records[i].Excluded {
			continue
		}

		if err := p.validator.Validate(row); err != nil {
			records[i].Exclude(models.ExcludeMissingField)
		}
	}

	// 3. Categorical fields
	for _, r := range records {
		if r.Excluded {
			continue
		}

		if err := p.transformer.NormalizeCategories(r); err != nil {
			return nil, fmt.Errorf("wave %s: %w", wave.Label, err)
		}
	}

	// 4. Ages, imputed from this wave only
	median, err := p.sanitizeAges(wave, records)
	if err != nil {
		return nil, err
	}

	// 5. Derived fields
	for i, r := range records {
		if r.Excluded {
			continue
		}

		if err := p.transformer.Derive(r, rows[i]); err != nil {
			return nil, fmt.Errorf("wave %s: %w", wave.Label, err)
		}
	}

	return &Batch{Wave: wave, Records: records, Stats: stats(records, median)}, nil
}

func (p *Processor) sanitizeAges(wave models.Wave, records []*models.Respondent) (float64, error) {
	var (
		active []*models.Respondent
		raw    []string
	)

	for _, r := range records {
		if !r.Excluded {
			active = append(active, r)
			raw = append(raw, r.RawAge)
		}
	}

	result, err := p.sanitizer.SanitizeAges(wave.Label, raw)
	if err != nil {
		return 0, err
	}

	for i, r := range active {
		r.Age = result.Ages[i]
		r.AgeImputed = result.Imputed[i]

		if !result.Valid[i] {
			r.Exclude(models.ExcludeAgeRange)
			continue
		}

		group, ok := p.groups.Assign(r.Age)
		if !ok {
			return 0, fmt.Errorf("wave %s line %d: %w: %d", wave.Label, r.Row, ErrNoAgeGroup, r.Age)
		}

		r.AgeGroup = group
	}

	return result.Median, nil
}

func dedupKey(row models.RawRow) string {
	return strings.Join([]string{
		strings.TrimSpace(row.SurveyID),
		strings.TrimSpace(row.Province),
		strings.TrimSpace(row.Sex),
		strings.TrimSpace(row.Age),
	}, "\x1f")
}

func stats(records []*models.Respondent, median float64) models.WaveStats {
	s := models.WaveStats{
		TotalRows: len(records),
		Excluded:  make(map[string]int),
		MedianAge: median,
	}

	for _, r := range records {
		if r.Excluded {
			s.Excluded[r.ExcludeReason]++
			continue
		}

		s.ActiveRows++

		if r.AgeImputed {
			s.ImputedAges++
		}
	}

	return s
}
