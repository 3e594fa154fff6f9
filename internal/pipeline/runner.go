// Package pipeline orchestrates a tracking run: the reference is loaded once,
// then every wave is read, cleaned and weighted independently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pollweight/internal/config"
	"pollweight/internal/ingest"
	"pollweight/internal/logger"
	"pollweight/internal/models"
	"pollweight/internal/normalizer"
	"pollweight/internal/reference"
	"pollweight/internal/sanitizer"
	"pollweight/internal/weighting"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrAllWavesFailed is returned when no wave could be weighted.
var ErrAllWavesFailed = errors.New("all waves failed")

// WaveResult is the outcome of one wave. Batch and Weights are nil when Err is set.
type WaveResult struct {
	Wave    models.Wave
	Batch   *normalizer.Batch
	Weights *weighting.Result
	Err     error
}

// OK reports whether the wave was weighted.
func (w WaveResult) OK() bool {
	return w.Err == nil
}

// Run is the outcome of a tracking run, waves ordered by period.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Reference *reference.Distribution
	Waves     []WaveResult
}

// Records returns every record of the weighted waves, excluded ones included.
func (r *Run) Records() []*models.Respondent {
	var records []*models.Respondent

	for _, w := range r.Waves {
		if w.OK() {
			records = append(records, w.Batch.Records...)
		}
	}

	return records
}

// Failed returns the waves that could not be weighted.
func (r *Run) Failed() []WaveResult {
	var failed []WaveResult

	for _, w := range r.Waves {
		if !w.OK() {
			failed = append(failed, w)
		}
	}

	return failed
}

// Labels returns the labels of the weighted waves.
func (r *Run) Labels() []string {
	var labels []string

	for _, w := range r.Waves {
		if w.OK() {
			labels = append(labels, w.Wave.Label)
		}
	}

	return labels
}

// Runner holds the shared, read-only components of a run.
type Runner struct {
	cfg       *config.Config
	log       *logger.Logger
	provinces *normalizer.Domain
	sexes     *normalizer.Domain
	loader    *reference.Loader
	processor *normalizer.Processor
}

// NewRunner builds the normalizer domains, sanitizer and processor from cfg.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	provinces, err := normalizer.Provinces().WithAliases(cfg.Weighting.Aliases.Province)
	if err != nil {
		return nil, fmt.Errorf("province aliases: %w", err)
	}

	sexes, err := normalizer.Sexes().WithAliases(cfg.Weighting.Aliases.Sex)
	if err != nil {
		return nil, fmt.Errorf("sex aliases: %w", err)
	}

	s, err := sanitizer.New(cfg.Weighting.MinAge, cfg.Weighting.MaxAge)
	if err != nil {
		return nil, err
	}

	groups := cfg.Weighting.AgeGroups
	if err := groups.Validate(); err != nil {
		return nil, err
	}

	transformer := normalizer.NewTransformer(provinces, sexes, cfg.Tracking.TargetCandidate)

	return &Runner{
		cfg:       cfg,
		log:       log,
		provinces: provinces,
		sexes:     sexes,
		loader:    reference.NewLoader(provinces, sexes, groups),
		processor: normalizer.NewProcessor(transformer, s, groups),
	}, nil
}

// Provinces returns the province domain in use.
func (r *Runner) Provinces() *normalizer.Domain {
	return r.provinces
}

// Sexes returns the sex domain in use.
func (r *Runner) Sexes() *normalizer.Domain {
	return r.sexes
}

// LoadReference loads the configured reference distribution.
func (r *Runner) LoadReference() (*reference.Distribution, error) {
	dist, err := r.loader.Load(r.cfg.Weighting.ReferenceFile)
	if err != nil {
		return nil, err
	}

	r.log.Info("📊 Reference loaded",
		"file", dist.File(), "cells", dist.Len(), "total", dist.Total(), "hash", dist.Hash())

	for _, c := range dist.Cells() {
		if share, _ := dist.ShareOf(c); share == 0 {
			r.log.Warn("⚠️ Reference cell has zero population; its respondents will get weight 0", "cell", c.String())
		}
	}

	return dist, nil
}

// Discover lists the waves of the configured input directory.
func (r *Runner) Discover() ([]models.Wave, error) {
	return ingest.Discover(r.cfg.Tracking.InputDir)
}

// Run loads the reference and processes waves concurrently. A failing wave is
// recorded in its result and does not stop the others.
func (r *Runner) Run(ctx context.Context, waves []models.Wave) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	log := r.log.With("run", run.ID)
	log.Info("🚀 Starting run", "waves", len(waves), "workers", r.cfg.Advanced.Workers)

	dist, err := r.LoadReference()
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}

	run.Reference = dist

	results := make([]WaveResult, len(waves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Advanced.Workers))

	for i, wave := range waves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = WaveResult{Wave: wave, Err: err}
				return err
			}

			results[i] = r.ProcessWave(gctx, wave, dist)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Wave.Period.Before(results[j].Wave.Period)
	})

	run.Waves = results
	run.Duration = time.Since(run.StartedAt)

	failed := len(run.Failed())
	log.Info("✅ Run finished", "waves", len(waves), "failed", failed, "duration", run.Duration)

	if len(waves) > 0 && failed == len(waves) {
		return run, ErrAllWavesFailed
	}

	return run, nil
}

// ProcessWave reads, cleans and weights one wave against dist.
func (r *Runner) ProcessWave(ctx context.Context, wave models.Wave, dist weighting.ShareSource) WaveResult {
	log := r.log.With("wave", wave.Label)
	result := WaveResult{Wave: wave}

	rows, err := ingest.ReadWave(wave)
	if err != nil {
		result.Err = err
		log.Error("❌ Failed to read wave", "error", err)

		return result
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	batch, weights, err := r.WeighRows(wave, rows, dist)
	if err != nil {
		result.Err = err
		log.Error("❌ Wave failed", "error", err)

		return result
	}

	result.Batch = batch
	result.Weights = weights

	log.Info("⚖️ Wave weighted",
		"rows", batch.Stats.TotalRows,
		"active", batch.Stats.ActiveRows,
		"excluded", batch.Stats.ExcludedRows(),
		"imputed_ages", batch.Stats.ImputedAges,
		"cells", len(weights.Cells),
		"coverage", weights.Coverage,
		"effective_n", weights.EffectiveSampleSize)

	for reason, n := range batch.Stats.Excluded {
		log.Debug("Rows excluded", "reason", reason, "count", n)
	}

	return result
}

// WeighRows cleans already parsed rows and weights them.
func (r *Runner) WeighRows(wave models.Wave, rows []models.RawRow, dist weighting.ShareSource) (*normalizer.Batch, *weighting.Result, error) {
	batch, err := r.processor.Process(wave, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("wave %s: %w", wave.Label, err)
	}

	weights, err := weighting.Calculate(batch.Records, dist)
	if err != nil {
		return nil, nil, fmt.Errorf("wave %s: %w", wave.Label, err)
	}

	return batch, weights, nil
}
