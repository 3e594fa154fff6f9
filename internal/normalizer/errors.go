package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// Normalization errors.
var (
	ErrNormalization     = errors.New("normalization failed")
	ErrAmbiguousSpelling = errors.New("spelling maps to more than one category")
	ErrEmptyDomain       = errors.New("domain has no categories")
	ErrUnknownCategory   = errors.New("alias targets unknown category")
)

// NormalizationError identifies a raw value that could not be resolved to exactly one category.
type NormalizationError struct {
	Field      string
	Raw        string
	Candidates []string
	Line       int
}

func (e *NormalizationError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "cannot normalize %s value %q", e.Field, e.Raw)

	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}

	if len(e.Candidates) > 0 {
		fmt.Fprintf(&sb, ": ambiguous between %s", strings.Join(e.Candidates, ", "))
	} else {
		sb.WriteString(": no matching category")
	}

	return sb.String()
}

// Is makes errors.Is(err, ErrNormalization) hold.
func (e *NormalizationError) Is(target error) bool {
	return target == ErrNormalization
}
