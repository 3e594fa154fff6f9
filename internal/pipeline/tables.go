package pipeline

import (
	"fmt"

	"pollweight/internal/aggregate"
)

// Tables computes the standard aggregate tables over the weighted waves.
func (r *Runner) Tables(run *Run) ([]*aggregate.Table, error) {
	records := run.Records()

	agg := aggregate.NewAggregator(map[aggregate.Dimension][]string{
		aggregate.DimWave:     run.Labels(),
		aggregate.DimSex:      r.sexes.Codes(),
		aggregate.DimAgeGroup: r.cfg.Weighting.AgeGroups.Labels(),
	})

	type build func() (*aggregate.Table, error)

	builds := []build{
		func() (*aggregate.Table, error) { return agg.Indicators(records) },
		func() (*aggregate.Table, error) {
			return agg.Tracking(records, aggregate.TrackingOptions{
				Series:   r.cfg.Tracking.Series,
				Function: r.cfg.Tracking.Function,
				Window:   r.cfg.Tracking.Window,
			})
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedMean("intention_by_wave", records, aggregate.Intention, aggregate.DimWave)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedMean("image_by_wave", records, aggregate.ImageNormalized, aggregate.DimWave)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedMean("intention_by_wave_sex", records, aggregate.Intention, aggregate.DimWave, aggregate.DimSex)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedMean("intention_by_wave_age_group", records, aggregate.Intention, aggregate.DimWave, aggregate.DimAgeGroup)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedMean("intention_by_province", records, aggregate.Intention, aggregate.DimProvince)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedProportion("vote_by_wave", records, aggregate.Vote, aggregate.DimWave)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedProportion("prior_vote_by_wave", records, aggregate.PriorVote, aggregate.DimWave)
		},
		func() (*aggregate.Table, error) {
			return agg.WeightedProportion("education_by_wave", records, aggregate.Education, aggregate.DimWave)
		},
	}

	tables := make([]*aggregate.Table, 0, len(builds))

	for _, b := range builds {
		t, err := b()
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}

		tables = append(tables, t)
	}

	return tables, nil
}
