package normalizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pollweight/internal/models"
)

// Transformer maps raw row fields to canonical values.
type Transformer struct {
	provinces *Domain
	sexes     *Domain
	target    string
}

// NewTransformer creates a transformer. target is the candidate whose vote
// intention is tracked.
func NewTransformer(provinces, sexes *Domain, target string) *Transformer {
	t := &Transformer{
		provinces: provinces,
		sexes:     sexes,
	}
	t.target = t.TitleVote(target)

	return t
}

// Target returns the canonical target candidate.
func (t *Transformer) Target() string {
	return t.target
}

// NormalizeCategories resolves the province and sex of r in place.
func (t *Transformer) NormalizeCategories(r *models.Respondent) error {
	province, err := t.provinces.Normalize(r.RawProvince)
	if err != nil {
		return withLine(err, r.Row)
	}

	sex, err := t.sexes.Normalize(r.RawSex)
	if err != nil {
		return withLine(err, r.Row)
	}

	r.Province = province
	r.Sex = sex

	return nil
}

// Derive fills the parsed and derived analysis fields of r from row.
func (t *Transformer) Derive(r *models.Respondent, row models.RawRow) error {
	date, err := ParseDate(row.Date)
	if err != nil {
		return fmt.Errorf("line %d: %w", row.Line, err)
	}

	image, err := ParseFloat(row.Image)
	if err != nil {
		return fmt.Errorf("line %d: %w", row.Line, err)
	}

	r.Date = date
	r.Image = &image
	r.ImageNormalized = clip(image, 0, 100) / 100
	r.Vote = t.TitleVote(row.Vote)
	r.PriorVote = t.TitleVote(row.PriorVote)
	r.Education = strings.Join(strings.Fields(row.Education), " ")

	if size, sizeErr := ParseInt(row.HouseholdSize); sizeErr == nil {
		r.HouseholdSize = &size
	}

	r.Intention = 0
	if r.Vote == t.target {
		r.Intention = 1
	}

	return nil
}

// TitleVote harmonizes a vote string: "  candidato a" becomes "Candidato A".
// A Caser is stateful, so one is built per call.
func (t *Transformer) TitleVote(vote string) string {
	return cases.Title(language.Spanish).String(strings.Join(strings.Fields(vote), " "))
}

func withLine(err error, line int) error {
	if ne, ok := err.(*NormalizationError); ok {
		copied := *ne
		copied.Line = line

		return &copied
	}

	return err
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
