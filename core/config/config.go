// Package config loads the YAML run configuration for the simulation
// command.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/praxis/core/fault"
)

// Config describes one simulation run.
type Config struct {
	States       int       `yaml:"states"`
	Observations int       `yaml:"observations"`
	Horizon      int       `yaml:"horizon"`
	Gamma        float64   `yaml:"gamma"`
	Timesteps    int       `yaml:"timesteps"`
	Seed         int64     `yaml:"seed"`
	SamplingMode string    `yaml:"sampling_mode"`
	Preferences  []float64 `yaml:"preferences"`
}

// Default returns the reference three-state four-outcome scenario.
func Default() *Config {
	return &Config{
		States:       3,
		Observations: 4,
		Horizon:      1,
		Gamma:        16,
		Timesteps:    10,
		Seed:         42,
		SamplingMode: "marginal_action",
		Preferences:  []float64{-2, 0, 0, 2},
	}
}

// Load reads a YAML file over the defaults: fields absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the inference core would refuse.
func (c *Config) Validate() error {
	const op = "config.Validate"

	if c.States < 2 {
		return fault.Configf(op, "states must be >= 2, got %d", c.States)
	}
	if c.Observations < 2 {
		return fault.Configf(op, "observations must be >= 2, got %d", c.Observations)
	}
	if c.Horizon < 1 {
		return fault.Configf(op, "horizon must be >= 1, got %d", c.Horizon)
	}
	if c.Gamma < 0 {
		return fault.Configf(op, "gamma must be non-negative, got %g", c.Gamma)
	}
	if c.Timesteps < 1 {
		return fault.Configf(op, "timesteps must be >= 1, got %d", c.Timesteps)
	}
	switch c.SamplingMode {
	case "marginal_action", "full_policy":
	default:
		return fault.Configf(op, "unrecognized sampling mode %q", c.SamplingMode)
	}
	if len(c.Preferences) != c.Observations {
		return fault.Configf(op, "preference length %d does not match %d observations", len(c.Preferences), c.Observations)
	}
	return nil
}
