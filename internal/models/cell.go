package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCellKey is returned when a cell key does not have three parts.
var ErrInvalidCellKey = errors.New("invalid cell key")

const cellKeySep = "|"

// Cell is the demographic cell used as join key between sample and reference.
type Cell struct {
	Province string `json:"province"`
	Sex      string `json:"sex"`
	AgeGroup string `json:"ageGroup"`
}

// Key returns the stable string form PROVINCE|SEX|AGE_GROUP.
func (c Cell) Key() string {
	return c.Province + cellKeySep + c.Sex + cellKeySep + c.AgeGroup
}

// String implements fmt.Stringer.
func (c Cell) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Province, c.Sex, c.AgeGroup)
}

// Complete reports whether all three dimensions are set.
func (c Cell) Complete() bool {
	return c.Province != "" && c.Sex != "" && c.AgeGroup != ""
}

// ParseCellKey parses a key produced by Cell.Key.
func ParseCellKey(key string) (Cell, error) {
	parts := strings.Split(key, cellKeySep)
	if len(parts) != 3 {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidCellKey, key)
	}

	return Cell{Province: parts[0], Sex: parts[1], AgeGroup: parts[2]}, nil
}
