// Package ingest discovers survey wave extracts and parses their rows.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"pollweight/internal/models"
)

// ErrNoWaves is returned when a directory holds no wave extract.
var ErrNoWaves = errors.New("no survey waves found")

// wavePattern matches encuestas_<YYYY>-<MM>.csv.
var wavePattern = regexp.MustCompile(`^encuestas_(\d{4})-(\d{2})\.csv$`)

// ParseWaveName returns the wave for a file name, or false if it does not match.
func ParseWaveName(path string) (models.Wave, bool) {
	m := wavePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return models.Wave{}, false
	}

	period, err := time.Parse("2006-01", m[1]+"-"+m[2])
	if err != nil {
		return models.Wave{}, false
	}

	return models.Wave{Label: m[1] + "-" + m[2], Path: path, Period: period}, true
}

// Discover lists the wave extracts of dir ordered by period.
func Discover(dir string) ([]models.Wave, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var waves []models.Wave

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if w, ok := ParseWaveName(filepath.Join(dir, e.Name())); ok {
			waves = append(waves, w)
		}
	}

	if len(waves) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoWaves, dir)
	}

	sort.Slice(waves, func(i, j int) bool {
		return waves[i].Period.Before(waves[j].Period)
	})

	return waves, nil
}
