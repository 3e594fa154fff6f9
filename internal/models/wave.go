package models

import "time"

// Wave is one periodic survey extract.
type Wave struct {
	Period time.Time `json:"period"`
	Label  string    `json:"label"`
	Path   string    `json:"path"`
}

// WaveStats summarizes the cleaning of a wave.
type WaveStats struct {
	Excluded    map[string]int `json:"excluded"`
	TotalRows   int            `json:"totalRows"`
	ActiveRows  int            `json:"activeRows"`
	ImputedAges int            `json:"imputedAges"`
	MedianAge   float64        `json:"medianAge"`
}

// ExcludedRows returns the total number of excluded rows.
func (s WaveStats) ExcludedRows() int {
	total := 0
	for _, n := range s.Excluded {
		total += n
	}

	return total
}
