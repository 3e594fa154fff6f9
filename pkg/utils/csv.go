// Package utils provides common utility functions.
package utils

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// ErrEmptyInput is returned when a CSV source has no content.
var ErrEmptyInput = errors.New("empty input")

const utf8BOM = "\ufeff"

// NewCSVReader returns a csv.Reader for r. The delimiter is sniffed from the
// header line (comma or semicolon) and a leading UTF-8 BOM is dropped.
func NewCSVReader(r io.Reader) (*csv.Reader, error) {
	br := bufio.NewReader(r)

	peek, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}

	if len(peek) == 0 {
		return nil, ErrEmptyInput
	}

	if strings.HasPrefix(string(peek), utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}

		peek = peek[len(utf8BOM):]
	}

	reader := csv.NewReader(br)
	reader.Comma = SniffDelimiter(string(peek))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return reader, nil
}

// SniffDelimiter picks ';' when the first line has more semicolons than commas.
func SniffDelimiter(sample string) rune {
	first, _, _ := strings.Cut(sample, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}

	return ','
}

// IsBlankRecord reports whether every field is empty after trimming.
func IsBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}

	return true
}

// ErrorLine returns the line of a csv.ParseError, or 0.
func ErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}

	return 0
}
