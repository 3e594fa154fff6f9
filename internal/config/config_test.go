package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a complete configuration.
const validConfigYAML = `
tracking:
  input_dir: "/srv/encuestas"
  target_candidate: "Candidato B"
  series: "image"
  function: "median"
  window: 5
weighting:
  reference_file: "censo.csv"
  min_age: 18
  max_age: 90
  age_groups:
    - {label: "18-34", min: 18, max: 34}
    - {label: "35-54", min: 35, max: 54}
    - {label: "55+", min: 55, max: 90}
  aliases:
    province:
      CORDOBA: ["docta"]
    sex:
      F: ["mujer"]
output:
  dir: "out"
  workbook: false
logging:
  level: "debug"
  format: "json"
advanced:
  workers: 2
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Tracking.TargetCandidate != "Candidato B" {
		t.Errorf("Expected target 'Candidato B', got '%s'", cfg.Tracking.TargetCandidate)
	}

	if cfg.Tracking.Window != 5 || cfg.Tracking.Function != "median" || cfg.Tracking.Series != "image" {
		t.Errorf("Unexpected tracking config: %+v", cfg.Tracking)
	}

	if len(cfg.Weighting.AgeGroups) != 3 || cfg.Weighting.AgeGroups[2].Label != "55+" {
		t.Errorf("Expected 3 custom age groups, got %+v", cfg.Weighting.AgeGroups)
	}

	if got := cfg.Weighting.Aliases.Province["CORDOBA"]; len(got) != 1 || got[0] != "docta" {
		t.Errorf("Expected province alias 'docta', got %v", got)
	}

	if cfg.Tracking.InputDir != "/srv/encuestas" {
		t.Errorf("Absolute input dir changed: %s", cfg.Tracking.InputDir)
	}

	wantRef := filepath.Join(filepath.Dir(configPath), "censo.csv")
	if cfg.Weighting.ReferenceFile != wantRef {
		t.Errorf("Expected reference %s, got %s", wantRef, cfg.Weighting.ReferenceFile)
	}

	// Unset booleans keep their defaults; explicit false wins
	if !cfg.Output.Weights || cfg.Output.Workbook {
		t.Errorf("Unexpected output flags: %+v", cfg.Output)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Tracking.Window != 3 || cfg.Weighting.MinAge != 16 || cfg.Weighting.MaxAge != 95 {
		t.Errorf("Unexpected defaults: %s", cfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	t.Setenv("POLLWEIGHT_TRACKING_WINDOW", "7")
	t.Setenv("POLLWEIGHT_WEIGHTING_REFERENCE_FILE", "/etc/censo.csv")
	t.Setenv("POLLWEIGHT_ADVANCED_WORKERS", "8")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Tracking.Window != 7 {
		t.Errorf("Expected window 7 from env, got %d", cfg.Tracking.Window)
	}

	if cfg.Weighting.ReferenceFile != "/etc/censo.csv" {
		t.Errorf("Expected reference from env, got %s", cfg.Weighting.ReferenceFile)
	}

	if cfg.Advanced.Workers != 8 {
		t.Errorf("Expected 8 workers from env, got %d", cfg.Advanced.Workers)
	}

	if cfg.Tracking.Function != "median" {
		t.Errorf("Unset env must keep file value, got %s", cfg.Tracking.Function)
	}
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("POLLWEIGHT_TRACKING_WINDOW", "three")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("Expected error for non-numeric window")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"missing input dir", func(c *Config) { c.Tracking.InputDir = "" }, ErrMissingInputDir},
		{"missing target", func(c *Config) { c.Tracking.TargetCandidate = "" }, ErrMissingTargetCandidate},
		{"zero window", func(c *Config) { c.Tracking.Window = 0 }, ErrInvalidWindow},
		{"bad function", func(c *Config) { c.Tracking.Function = "max" }, ErrInvalidWindowFunction},
		{"bad series", func(c *Config) { c.Tracking.Series = "turnout" }, ErrInvalidSeries},
		{"missing reference", func(c *Config) { c.Weighting.ReferenceFile = "" }, ErrMissingReferenceFile},
		{"age range", func(c *Config) { c.Weighting.MinAge = 99 }, ErrInvalidAgeRange},
		{"group out of range", func(c *Config) { c.Weighting.MinAge = 18 }, ErrAgeGroupOutOfRange},
		{"missing output", func(c *Config) { c.Output.Dir = "" }, ErrMissingOutputDir},
		{"workers", func(c *Config) { c.Advanced.Workers = 0 }, ErrInvalidWorkers},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Default(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfig_SaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := DefaultConfig()
	cfg.Tracking.Window = 9

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of saved file failed: %v", err)
	}

	if loaded.Tracking.Window != 9 || len(loaded.Weighting.AgeGroups) != 4 {
		t.Errorf("Round trip lost values: %+v", loaded)
	}
}
