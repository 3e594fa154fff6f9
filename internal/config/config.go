// Package config provides configuration management for the tracking pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"pollweight/internal/models"
)

// EnvPrefix is the prefix of environment overrides, e.g. POLLWEIGHT_TRACKING_INPUT_DIR.
const EnvPrefix = "POLLWEIGHT"

// Configuration validation errors.
var (
	ErrMissingInputDir        = errors.New("tracking.input_dir is required")
	ErrMissingReferenceFile   = errors.New("weighting.reference_file is required")
	ErrMissingTargetCandidate = errors.New("tracking.target_candidate is required")
	ErrInvalidWindow          = errors.New("tracking.window must be at least 1")
	ErrInvalidWindowFunction  = errors.New("tracking.function must be one of: mean, median, sum")
	ErrInvalidSeries          = errors.New("tracking.series must be one of: intention, image")
	ErrInvalidAgeRange        = errors.New("weighting.min_age cannot exceed weighting.max_age")
	ErrAgeGroupOutOfRange     = errors.New("weighting.age_groups must lie within min_age and max_age")
	ErrMissingOutputDir       = errors.New("output.dir is required")
	ErrInvalidWorkers         = errors.New("advanced.workers must be at least 1")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat       = errors.New("logging.format must be one of: text, json")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Tracking  TrackingConfig  `yaml:"tracking" envconfig:"TRACKING"`
	Weighting WeightingConfig `yaml:"weighting" envconfig:"WEIGHTING"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Advanced  AdvancedConfig  `yaml:"advanced" envconfig:"ADVANCED"`
}

// TrackingConfig selects the inputs and the smoothed series.
type TrackingConfig struct {
	InputDir        string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	TargetCandidate string `yaml:"target_candidate" envconfig:"TARGET_CANDIDATE"`
	Series          string `yaml:"series" envconfig:"SERIES"`
	Function        string `yaml:"function" envconfig:"FUNCTION"`
	Window          int    `yaml:"window" envconfig:"WINDOW"`
}

// WeightingConfig defines the reference file and the cell scheme.
type WeightingConfig struct {
	ReferenceFile string           `yaml:"reference_file" envconfig:"REFERENCE_FILE"`
	AgeGroups     models.AgeGroups `yaml:"age_groups" ignored:"true"`
	Aliases       AliasConfig      `yaml:"aliases" ignored:"true"`
	MinAge        int              `yaml:"min_age" envconfig:"MIN_AGE"`
	MaxAge        int              `yaml:"max_age" envconfig:"MAX_AGE"`
}

// AliasConfig adds spellings to the built-in domains, keyed by canonical code.
type AliasConfig struct {
	Province map[string][]string `yaml:"province"`
	Sex      map[string][]string `yaml:"sex"`
}

// OutputConfig defines which artifacts are written.
type OutputConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR"`
	Weights    bool   `yaml:"weights" envconfig:"WEIGHTS"`
	Aggregates bool   `yaml:"aggregates" envconfig:"AGGREGATES"`
	Workbook   bool   `yaml:"workbook" envconfig:"WORKBOOK"`
	Report     bool   `yaml:"report" envconfig:"REPORT"`
	Console    bool   `yaml:"console" envconfig:"CONSOLE"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	Workers int `yaml:"workers" envconfig:"WORKERS"`
}

// DefaultConfig returns the configuration used when a field is not set.
func DefaultConfig() *Config {
	return &Config{
		Tracking: TrackingConfig{
			InputDir:        "data",
			TargetCandidate: "Candidato A",
			Series:          "intention",
			Function:        "mean",
			Window:          3,
		},
		Weighting: WeightingConfig{
			ReferenceFile: "data/censo2022.csv",
			AgeGroups:     models.DefaultAgeGroups(),
			MinAge:        16,
			MaxAge:        95,
		},
		Output: OutputConfig{
			Dir:        "output",
			Weights:    true,
			Aggregates: true,
			Workbook:   true,
			Report:     true,
			Console:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Advanced: AdvancedConfig{
			Workers: 4,
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults, then
// applies environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolvePaths makes relative paths of a config file relative to its directory.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Tracking.InputDir, &c.Weighting.ReferenceFile, &c.Output.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Tracking.InputDir == "" {
		return ErrMissingInputDir
	}

	if c.Tracking.TargetCandidate == "" {
		return ErrMissingTargetCandidate
	}

	if c.Tracking.Window < 1 {
		return ErrInvalidWindow
	}

	validFunctions := map[string]bool{"mean": true, "median": true, "sum": true}
	if !validFunctions[c.Tracking.Function] {
		return ErrInvalidWindowFunction
	}

	if c.Tracking.Series != "intention" && c.Tracking.Series != "image" {
		return ErrInvalidSeries
	}

	if c.Weighting.ReferenceFile == "" {
		return ErrMissingReferenceFile
	}

	if c.Weighting.MinAge > c.Weighting.MaxAge {
		return ErrInvalidAgeRange
	}

	if err := c.Weighting.AgeGroups.Validate(); err != nil {
		return fmt.Errorf("weighting.age_groups: %w", err)
	}

	for _, g := range c.Weighting.AgeGroups {
		if g.Min < c.Weighting.MinAge || g.Max > c.Weighting.MaxAge {
			return fmt.Errorf("%w: %s", ErrAgeGroupOutOfRange, g.Label)
		}
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if c.Advanced.Workers < 1 {
		return ErrInvalidWorkers
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Reference: %s, Output: %s, Workers: %d}",
		c.Tracking.InputDir,
		c.Weighting.ReferenceFile,
		c.Output.Dir,
		c.Advanced.Workers,
	)
}
