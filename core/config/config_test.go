package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/praxis/core/fault"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timesteps: 25\nseed: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Timesteps)
	assert.Equal(t, int64(7), cfg.Seed)
	// Untouched fields keep defaults.
	assert.Equal(t, 3, cfg.States)
	assert.Equal(t, 16.0, cfg.Gamma)
	assert.Equal(t, "marginal_action", cfg.SamplingMode)
}

func TestLoadFullFile(t *testing.T) {
	body := `states: 4
observations: 4
horizon: 2
gamma: 8
timesteps: 5
seed: 99
sampling_mode: full_policy
preferences: [0, 0, 1, 2]
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.States)
	assert.Equal(t, 2, cfg.Horizon)
	assert.Equal(t, "full_policy", cfg.SamplingMode)
	assert.Equal(t, []float64{0, 0, 1, 2}, cfg.Preferences)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few states", func(c *Config) { c.States = 1 }},
		{"zero horizon", func(c *Config) { c.Horizon = 0 }},
		{"negative gamma", func(c *Config) { c.Gamma = -1 }},
		{"zero timesteps", func(c *Config) { c.Timesteps = 0 }},
		{"bad mode", func(c *Config) { c.SamplingMode = "greedy" }},
		{"preference mismatch", func(c *Config) { c.Preferences = []float64{1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, fault.IsConfig(err))
		})
	}
}
