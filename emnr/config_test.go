package emnr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfigValid(t *testing.T) {
	cfg := DefaultEngineConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPowerOfTwoFFTSize(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.FFTSize = 2000
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOverlapNotDividingFFTSize(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.FFTSize = 2048
	cfg.Overlap = 3
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveBlockSize(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.BlockSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvalidGainMethod(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.GainMethod = GainMethod(99)
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvalidNoiseMethod(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.NoiseMethod = NoiseMethod(-1)
	assert.Error(t, cfg.Validate())
}
