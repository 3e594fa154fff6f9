package models

import (
	"errors"
	"fmt"
)

// Age group errors.
var (
	ErrNoAgeGroups      = errors.New("at least one age group is required")
	ErrAgeGroupBounds   = errors.New("age group min cannot exceed max")
	ErrAgeGroupOverlap  = errors.New("age groups overlap")
	ErrAgeGroupLabel    = errors.New("age group label is required")
	ErrDuplicateAgeBand = errors.New("duplicate age group label")
)

// AgeGroup is a closed age band [Min, Max].
type AgeGroup struct {
	Label string `yaml:"label"`
	Min   int    `yaml:"min"`
	Max   int    `yaml:"max"`
}

// AgeGroups is an ordered list of non-overlapping bands.
type AgeGroups []AgeGroup

// DefaultAgeGroups returns the methodological bands used for weighting.
func DefaultAgeGroups() AgeGroups {
	return AgeGroups{
		{Label: "16-29", Min: 16, Max: 29},
		{Label: "30-44", Min: 30, Max: 44},
		{Label: "45-59", Min: 45, Max: 59},
		{Label: "60+", Min: 60, Max: 95},
	}
}

// Validate checks labels and bounds.
func (g AgeGroups) Validate() error {
	if len(g) == 0 {
		return ErrNoAgeGroups
	}

	seen := make(map[string]bool, len(g))

	for i, band := range g {
		if band.Label == "" {
			return fmt.Errorf("%w: age_groups[%d]", ErrAgeGroupLabel, i)
		}

		if seen[band.Label] {
			return fmt.Errorf("%w: %s", ErrDuplicateAgeBand, band.Label)
		}

		seen[band.Label] = true

		if band.Min > band.Max {
			return fmt.Errorf("%w: %s", ErrAgeGroupBounds, band.Label)
		}

		for _, other := range g[:i] {
			if band.Min <= other.Max && other.Min <= band.Max {
				return fmt.Errorf("%w: %s and %s", ErrAgeGroupOverlap, other.Label, band.Label)
			}
		}
	}

	return nil
}

// Assign returns the label of the band containing age.
func (g AgeGroups) Assign(age int) (string, bool) {
	for _, band := range g {
		if age >= band.Min && age <= band.Max {
			return band.Label, true
		}
	}

	return "", false
}

// Labels returns the band labels in order.
func (g AgeGroups) Labels() []string {
	labels := make([]string, 0, len(g))
	for _, band := range g {
		labels = append(labels, band.Label)
	}

	return labels
}
