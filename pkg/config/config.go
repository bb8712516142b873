// Package config loads the governor's configuration file: load, set
// defaults, validate — the same three-step shape the teacher repo uses
// for its own YAML configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/resgov/resgov/pkg/errors"
	"github.com/resgov/resgov/pkg/model"
)

// GovernorConfig is the top-level configuration file structure.
type GovernorConfig struct {
	Mode               model.Mode      `yaml:"mode"`
	Algorithm          model.Algorithm `yaml:"algorithm"`
	TimeSliceHintMS    int             `yaml:"time_slice_hint_ms"`
	MemThresholdMB     float64         `yaml:"mem_threshold_mb"`
	RoundInterval      time.Duration   `yaml:"round_interval,omitempty"`
	SystemNamePatterns []string        `yaml:"system_name_patterns,omitempty"`
	LogFile            string          `yaml:"log_file,omitempty"`
	LogLevel           string          `yaml:"log_level,omitempty"`
	MetricsAddr        string          `yaml:"metrics_addr,omitempty"`
}

// Default returns the config's documented defaults: Productivity mode,
// Hybrid algorithm, a 5ms time-slice hint and a 200MB memory threshold.
func Default() GovernorConfig {
	return GovernorConfig{
		Mode:            model.ModeProductivity,
		Algorithm:       model.AlgorithmHybrid,
		TimeSliceHintMS: 5,
		MemThresholdMB:  200,
		RoundInterval:   time.Second,
		LogLevel:        "info",
	}
}

// LoadFromFile reads, defaults and validates a GovernorConfig from a YAML file.
func LoadFromFile(path string) (GovernorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GovernorConfig{}, errors.NewIOError("failed to read configuration file", err).WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GovernorConfig{}, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("path", path)
	}

	ApplyDefaults(&cfg)

	if err := Validate(cfg); err != nil {
		return GovernorConfig{}, errors.NewValidationError("invalid configuration", err).WithContext("path", path)
	}
	return cfg, nil
}

// ApplyDefaults fills in zero-valued fields and clamps out-of-range knobs
// up to their documented floor, per the "invalid configuration is
// clamped, not rejected" rule.
func ApplyDefaults(cfg *GovernorConfig) {
	if cfg.Mode == "" {
		cfg.Mode = model.ModeProductivity
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = model.AlgorithmHybrid
	}
	if cfg.RoundInterval == 0 {
		cfg.RoundInterval = time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.TimeSliceHintMS = model.ClampTimeSliceMS(cfg.TimeSliceHintMS)
	cfg.MemThresholdMB = model.ClampMemThresholdMB(cfg.MemThresholdMB)
}

// Validate checks the structural parts of the configuration that cannot be
// fixed by clamping — an unknown Mode or Algorithm name is a real error,
// unlike an out-of-range numeric knob.
func Validate(cfg GovernorConfig) error {
	if !cfg.Mode.IsValid() {
		return errors.NewValidationError("invalid mode: "+string(cfg.Mode), nil)
	}
	if !cfg.Algorithm.IsValid() {
		return errors.NewValidationError("invalid algorithm: "+string(cfg.Algorithm), nil)
	}
	return nil
}
