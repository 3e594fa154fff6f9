// Package weighting computes post-stratification weights against a reference distribution.
package weighting

import (
	"errors"
	"fmt"
	"sort"

	"pollweight/internal/models"
	"pollweight/internal/reference"
)

// ErrNoRecords is returned when a wave has no respondent left to weight.
var ErrNoRecords = errors.New("no records to weight")

// ShareSource is the read-only reference lookup used for weighting.
type ShareSource interface {
	ShareOf(cell models.Cell) (float64, error)
	Cells() []models.Cell
}

// CellWeight describes the weighting of one demographic cell.
type CellWeight struct {
	Cell           models.Cell `json:"cell"`
	Count          int         `json:"count"`
	ObservedShare  float64     `json:"observedShare"`
	ReferenceShare float64     `json:"referenceShare"`
	Weight         float64     `json:"weight"`
}

// Result is the outcome of weighting one wave.
type Result struct {
	Cells []CellWeight `json:"cells"`
	// Missing lists reference cells with no sampled respondent.
	Missing []models.Cell `json:"missing"`
	// Coverage is the reference share represented in the sample.
	Coverage float64 `json:"coverage"`
	// EffectiveSampleSize is Kish's (sum w)^2 / sum w^2.
	EffectiveSampleSize float64 `json:"effectiveSampleSize"`
	SampleSize          int     `json:"sampleSize"`
}

// WeightOf returns the weight of cell, if it was sampled.
func (r *Result) WeightOf(cell models.Cell) (float64, bool) {
	for _, cw := range r.Cells {
		if cw.Cell == cell {
			return cw.Weight, true
		}
	}

	return 0, false
}

// Calculate assigns each active record the ratio of its cell's reference share
// to its cell's observed share. A sampled cell missing from the reference
// fails the whole wave with *reference.UnmappedCellError; weights are never
// smoothed, capped or defaulted.
func Calculate(records []*models.Respondent, ref ShareSource) (*Result, error) {
	active := models.Active(records)
	if len(active) == 0 {
		return nil, ErrNoRecords
	}

	groups := make(map[models.Cell][]*models.Respondent)
	for _, r := range active {
		groups[r.Cell()] = append(groups[r.Cell()], r)
	}

	cells := make([]models.Cell, 0, len(groups))
	for c := range groups {
		cells = append(cells, c)
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].Key() < cells[j].Key() })

	n := float64(len(active))
	result := &Result{SampleSize: len(active)}

	// Resolve every share before touching a record so a failing wave leaves
	// weights unassigned.
	shares := make([]float64, len(cells))

	for i, c := range cells {
		share, err := ref.ShareOf(c)
		if err != nil {
			var ue *reference.UnmappedCellError
			if errors.As(err, &ue) {
				ue.Count = len(groups[c])
			}

			return nil, fmt.Errorf("weighting: %w", err)
		}

		shares[i] = share
	}

	sampled := make(map[models.Cell]bool, len(cells))

	for i, c := range cells {
		members := groups[c]
		observed := float64(len(members)) / n
		weight := shares[i] / observed

		for _, r := range members {
			r.Weight = weight
		}

		sampled[c] = true
		result.Coverage += shares[i]
		result.Cells = append(result.Cells, CellWeight{
			Cell:           c,
			Count:          len(members),
			ObservedShare:  observed,
			ReferenceShare: shares[i],
			Weight:         weight,
		})
	}

	for _, c := range ref.Cells() {
		if !sampled[c] {
			result.Missing = append(result.Missing, c)
		}
	}

	result.EffectiveSampleSize = EffectiveSampleSize(active)

	return result, nil
}

// EffectiveSampleSize returns Kish's effective sample size of the records.
func EffectiveSampleSize(records []*models.Respondent) float64 {
	var sum, sumSq float64

	for _, r := range records {
		sum += r.Weight
		sumSq += r.Weight * r.Weight
	}

	if sumSq == 0 {
		return 0
	}

	return sum * sum / sumSq
}

// CellShares returns, per cell, the sum of weights divided by the sample size.
// For a weighted wave it reproduces the reference shares of sampled cells.
func CellShares(records []*models.Respondent) map[models.Cell]float64 {
	active := models.Active(records)
	shares := make(map[models.Cell]float64)

	if len(active) == 0 {
		return shares
	}

	n := float64(len(active))
	for _, r := range active {
		shares[r.Cell()] += r.Weight / n
	}

	return shares
}
