package aggregate

import (
	"errors"
	"fmt"

	"pollweight/internal/models"
	"pollweight/internal/sanitizer"
)

// Window functions.
const (
	WindowMean   = "mean"
	WindowMedian = "median"
	WindowSum    = "sum"
)

// Tracked series.
const (
	SeriesIntention = "intention"
	SeriesImage     = "image"
)

// Tracking errors.
var (
	ErrInvalidWindow         = errors.New("window must be a positive integer")
	ErrUnsupportedWindowFunc = errors.New("unsupported window function")
	ErrUnknownSeries         = errors.New("unknown tracked series")
)

// Rolling applies a trailing window of size window over values. The first
// positions use the values available so far.
func Rolling(values []float64, window int, fn string) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}

	switch fn {
	case WindowMean, WindowMedian, WindowSum:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedWindowFunc, fn)
	}

	out := make([]float64, len(values))

	for i := range values {
		start := max(i-window+1, 0)
		span := values[start : i+1]

		switch fn {
		case WindowMean:
			out[i] = sum(span) / float64(len(span))
		case WindowMedian:
			out[i] = sanitizer.Median(span)
		case WindowSum:
			out[i] = sum(span)
		}
	}

	return out, nil
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}

	return total
}

// TrackingOptions configures the smoothed series.
type TrackingOptions struct {
	Series   string
	Function string
	Window   int
}

// Tracking builds the daily weighted series of vote intention and normalized
// image, and smooths the selected series with a rolling window.
func (a *Aggregator) Tracking(records []*models.Respondent, opts TrackingOptions) (*Table, error) {
	series := opts.Series
	if series == "" {
		series = SeriesIntention
	}

	if series != SeriesIntention && series != SeriesImage {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, series)
	}

	// Daily series is computed on observed dates only.
	plain := NewAggregator(nil)

	groups, err := plain.groupBy(records, []Dimension{DimDate})
	if err != nil {
		return nil, err
	}

	table := &Table{
		Name:    "tracking",
		KeyCols: []string{string(DimDate)},
		Columns: []string{"intention", "image", "smoothed"},
	}

	var target []float64

	for _, g := range groups {
		intention, wsum, _ := weightedMean(g.members, Intention)
		image, _, _ := weightedMean(g.members, ImageNormalized)

		if wsum == 0 {
			continue
		}

		table.Rows = append(table.Rows, Row{
			Key:     g.key,
			N:       len(g.members),
			Values:  []float64{intention, image, 0},
			HasData: true,
		})

		if series == SeriesImage {
			target = append(target, image)
		} else {
			target = append(target, intention)
		}
	}

	smoothed, err := Rolling(target, opts.Window, opts.Function)
	if err != nil {
		return nil, err
	}

	for i := range table.Rows {
		table.Rows[i].Values[2] = smoothed[i]
	}

	return table, nil
}
