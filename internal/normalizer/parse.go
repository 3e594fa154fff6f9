package normalizer

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse errors.
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidNumber = errors.New("invalid number")
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses the survey date formats seen in extracts.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidDate
}

// ParseFloat parses a decimal number accepting a comma separator.
// NaN and infinities are rejected as missing values.
func ParseFloat(raw string) (float64, error) {
	s := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	if s == "" {
		return 0, ErrInvalidNumber
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}

	return v, nil
}

// ParseInt parses an integer count; decimals are rejected.
func ParseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidNumber
	}

	return v, nil
}
