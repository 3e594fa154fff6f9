package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"pollweight/internal/models"
)

// Row validation errors.
var (
	ErrMissingDate      = errors.New("missing or invalid date")
	ErrMissingImage     = errors.New("missing or invalid candidate image")
	ErrMissingVote      = errors.New("missing vote")
	ErrMissingPriorVote = errors.New("missing prior vote")
)

// Validator checks the fields a row needs to take part in the analysis.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns the first missing critical field of the row.
func (v *Validator) Validate(row models.RawRow) error {
	if _, err := ParseDate(row.Date); err != nil {
		return fmt.Errorf("%w at line %d", ErrMissingDate, row.Line)
	}

	if _, err := ParseFloat(row.Image); err != nil {
		return fmt.Errorf("%w at line %d", ErrMissingImage, row.Line)
	}

	if strings.TrimSpace(row.Vote) == "" {
		return fmt.Errorf("%w at line %d", ErrMissingVote, row.Line)
	}

	if strings.TrimSpace(row.PriorVote) == "" {
		return fmt.Errorf("%w at line %d", ErrMissingPriorVote, row.Line)
	}

	return nil
}
