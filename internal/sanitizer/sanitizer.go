// Package sanitizer turns raw age values into validated integer ages.
package sanitizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Default valid age range.
const (
	DefaultMinAge = 16
	DefaultMaxAge = 95
)

// Sanitizer errors.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidRange     = errors.New("min age cannot exceed max age")
)

// missingTokens are spellings of an absent value in survey extracts.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"ns":   true,
	"nc":   true,
}

// InsufficientDataError is returned when a batch has no parsed value to impute from.
type InsufficientDataError struct {
	Wave string
	Rows int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("cannot impute ages for wave %q: no parsable age among %d rows", e.Wave, e.Rows)
}

// Is makes errors.Is(err, ErrInsufficientData) hold.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// AgeResult holds the sanitized ages of one batch, index-aligned with the input.
type AgeResult struct {
	Ages    []int
	Valid   []bool
	Imputed []bool
	Median  float64
}

// Excluded returns the number of values outside the valid range.
func (r AgeResult) Excluded() int {
	n := 0

	for _, ok := range r.Valid {
		if !ok {
			n++
		}
	}

	return n
}

// ImputedCount returns the number of imputed values.
func (r AgeResult) ImputedCount() int {
	n := 0

	for _, ok := range r.Imputed {
		if ok {
			n++
		}
	}

	return n
}

// Sanitizer imputes and range-checks ages.
type Sanitizer struct {
	MinAge int
	MaxAge int
}

// New creates a sanitizer for the closed range [minAge, maxAge].
func New(minAge, maxAge int) (*Sanitizer, error) {
	if minAge > maxAge {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, minAge, maxAge)
	}

	return &Sanitizer{MinAge: minAge, MaxAge: maxAge}, nil
}

// ParseAge parses a raw age. Missing or unparsable values return false.
func ParseAge(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if missingTokens[s] {
		return 0, false
	}

	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// SanitizeAges processes the ages of one wave. Missing values take the median
// of every parsed value, out-of-range ones included. Every value is then
// rounded to the nearest integer and values outside the range are flagged
// invalid.
func (s *Sanitizer) SanitizeAges(wave string, raw []string) (AgeResult, error) {
	if len(raw) == 0 {
		return AgeResult{}, &InsufficientDataError{Wave: wave}
	}

	parsed := make([]float64, len(raw))
	present := make([]bool, len(raw))

	var values []float64

	for i, v := range raw {
		age, ok := ParseAge(v)
		if !ok {
			continue
		}

		parsed[i] = age
		present[i] = true
		values = append(values, age)
	}

	result := AgeResult{
		Ages:    make([]int, len(raw)),
		Valid:   make([]bool, len(raw)),
		Imputed: make([]bool, len(raw)),
	}

	needsImputation := false

	for _, ok := range present {
		if !ok {
			needsImputation = true
			break
		}
	}

	if len(values) == 0 && needsImputation {
		return AgeResult{}, &InsufficientDataError{Wave: wave, Rows: len(raw)}
	}

	if len(values) > 0 {
		result.Median = Median(values)
	}

	for i := range raw {
		value := parsed[i]
		if !present[i] {
			value = result.Median
			result.Imputed[i] = true
		}

		age := roundAge(value)
		result.Ages[i] = age
		result.Valid[i] = s.inRange(age)
	}

	return result, nil
}

// roundAge rounds half away from zero. Magnitudes beyond int32 are clamped
// so the conversion does not depend on the platform; they are out of range
// either way.
func roundAge(v float64) int {
	r := math.Round(v)

	switch {
	case r > math.MaxInt32:
		return math.MaxInt32
	case r < math.MinInt32:
		return math.MinInt32
	default:
		return int(r)
	}
}

func (s *Sanitizer) inRange(age int) bool {
	return age >= s.MinAge && age <= s.MaxAge
}

// Median returns the median of values; even counts average the two middle values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}

	return sorted[mid]
}
