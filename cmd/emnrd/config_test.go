package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwsl/emnr/emnr"
)

func TestDefaultConfigProducesValidEngineConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.EngineConfig().Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emnrd.yaml")
	body := []byte("engine:\n  fft_size: 1024\n  overlap: 2\n  block_size: 512\n  sample_rate: 16000\n  gain_method: 3\n  noise_method: 1\n  run: true\nprometheus:\n  enabled: true\n  listen: \":9999\"\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Engine.FFTSize)
	assert.Equal(t, 2, cfg.Engine.Overlap)
	assert.Equal(t, int(emnr.GainTwoStage), cfg.Engine.GainMethod)
	assert.True(t, cfg.Prometheus.Enabled)
	assert.Equal(t, ":9999", cfg.Prometheus.Listen)

	econfig := cfg.EngineConfig()
	require.NoError(t, econfig.Validate())
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
