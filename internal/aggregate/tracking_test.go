package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolling(t *testing.T) {
	values := []float64{1, 3, 2, 10}

	tests := []struct {
		fn   string
		want []float64
	}{
		{WindowMean, []float64{1, 2, 2, 5}},
		{WindowMedian, []float64{1, 2, 2, 3}},
		{WindowSum, []float64{1, 4, 6, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got, err := Rolling(values, 3, tt.fn)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestRolling_Errors(t *testing.T) {
	_, err := Rolling([]float64{1}, 0, WindowMean)
	require.ErrorIs(t, err, ErrInvalidWindow)

	_, err = Rolling([]float64{1}, 2, "max")
	require.ErrorIs(t, err, ErrUnsupportedWindowFunc)
}

func TestTracking(t *testing.T) {
	table, err := NewAggregator(nil).Tracking(sample(), TrackingOptions{Window: 2, Function: WindowMean})
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)

	// 2023-05-01: weight on A is 2 of 3.5
	day1, ok := table.Value("intention", "2023-05-01")
	require.True(t, ok)
	assert.InDelta(t, 2/3.5, day1, 1e-9)

	day2, ok := table.Value("intention", "2023-05-02")
	require.True(t, ok)
	assert.InDelta(t, 1.0, day2, 1e-9)

	smoothed, ok := table.Value("smoothed", "2023-05-02")
	require.True(t, ok)
	assert.InDelta(t, (day1+day2)/2, smoothed, 1e-9)

	image, ok := table.Value("image", "2023-05-02")
	require.True(t, ok)
	assert.InDelta(t, 0.6, image, 1e-9)
}

func TestTracking_ImageSeries(t *testing.T) {
	table, err := NewAggregator(nil).Tracking(sample(), TrackingOptions{Series: SeriesImage, Window: 1, Function: WindowSum})
	require.NoError(t, err)

	image, _ := table.Value("image", "2023-05-01")
	smoothed, _ := table.Value("smoothed", "2023-05-01")
	assert.InDelta(t, image, smoothed, 1e-12)
}

func TestTracking_Errors(t *testing.T) {
	_, err := NewAggregator(nil).Tracking(sample(), TrackingOptions{Series: "turnout", Window: 1, Function: WindowMean})
	require.ErrorIs(t, err, ErrUnknownSeries)

	_, err = NewAggregator(nil).Tracking(sample(), TrackingOptions{Window: -1, Function: WindowMean})
	require.ErrorIs(t, err, ErrInvalidWindow)
}
