package reference

import (
	"errors"
	"fmt"

	"pollweight/internal/models"
)

// Reference errors.
var (
	ErrReferenceFormat    = errors.New("malformed reference file")
	ErrReferenceIntegrity = errors.New("reference totals are not positive")
	ErrUnmappedCell       = errors.New("cell missing from reference")
)

// ReferenceFormatError reports a malformed reference row or header.
type ReferenceFormatError struct {
	File   string
	Reason string
	Line   int
}

func (e *ReferenceFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("reference %s line %d: %s", e.File, e.Line, e.Reason)
	}

	return fmt.Sprintf("reference %s: %s", e.File, e.Reason)
}

// Is makes errors.Is(err, ErrReferenceFormat) hold.
func (e *ReferenceFormatError) Is(target error) bool {
	return target == ErrReferenceFormat
}

// ReferenceIntegrityError reports a reference whose population total is not positive.
type ReferenceIntegrityError struct {
	File  string
	Total float64
}

func (e *ReferenceIntegrityError) Error() string {
	return fmt.Sprintf("reference %s: population total must be positive, got %g", e.File, e.Total)
}

// Is makes errors.Is(err, ErrReferenceIntegrity) hold.
func (e *ReferenceIntegrityError) Is(target error) bool {
	return target == ErrReferenceIntegrity
}

// UnmappedCellError reports a demographic cell absent from the reference.
// It is a configuration gap in the reference file, never a zero weight.
type UnmappedCellError struct {
	Cell  models.Cell
	File  string
	Count int
}

func (e *UnmappedCellError) Error() string {
	msg := fmt.Sprintf("cell %s is not present in reference %s", e.Cell, e.File)
	if e.Count > 0 {
		msg += fmt.Sprintf(" (%d sampled respondents)", e.Count)
	}

	return msg
}

// Is makes errors.Is(err, ErrUnmappedCell) hold.
func (e *UnmappedCellError) Is(target error) bool {
	return target == ErrUnmappedCell
}
