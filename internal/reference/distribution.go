// Package reference loads the population distribution used for weighting.
package reference

import (
	"sort"

	"pollweight/internal/models"
)

// Distribution is an immutable lookup of population share per demographic cell.
// It is shared read-only by every wave of a run.
type Distribution struct {
	shares map[string]float64
	counts map[string]float64
	file   string
	hash   string
	total  float64
}

// ShareOf returns the population share of cell. Absent cells return an
// *UnmappedCellError; there is no default share.
func (d *Distribution) ShareOf(cell models.Cell) (float64, error) {
	share, ok := d.shares[cell.Key()]
	if !ok {
		return 0, &UnmappedCellError{Cell: cell, File: d.file}
	}

	return share, nil
}

// CountOf returns the population value of cell as read from the file.
func (d *Distribution) CountOf(cell models.Cell) (float64, bool) {
	v, ok := d.counts[cell.Key()]

	return v, ok
}

// Has reports whether cell is present.
func (d *Distribution) Has(cell models.Cell) bool {
	_, ok := d.shares[cell.Key()]

	return ok
}

// Cells returns every cell in key order.
func (d *Distribution) Cells() []models.Cell {
	keys := make([]string, 0, len(d.shares))
	for k := range d.shares {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	cells := make([]models.Cell, 0, len(keys))

	for _, k := range keys {
		c, err := models.ParseCellKey(k)
		if err == nil {
			cells = append(cells, c)
		}
	}

	return cells
}

// Len returns the number of cells.
func (d *Distribution) Len() int {
	return len(d.shares)
}

// Total returns the population total as read from the file.
func (d *Distribution) Total() float64 {
	return d.total
}

// File returns the path the distribution was loaded from.
func (d *Distribution) File() string {
	return d.file
}

// Hash returns the SHA-256 of the reference file contents.
func (d *Distribution) Hash() string {
	return d.hash
}
