package emnr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTestConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.FFTSize = 256
	cfg.Overlap = 4
	cfg.BlockSize = 64
	cfg.SampleRate = 8000
	return cfg
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := smallTestConfig()
	cfg.FFTSize = 100
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestEnginePushPullZerosStayZero(t *testing.T) {
	cfg := smallTestConfig()
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	in := make([]float64, cfg.BlockSize)
	out := make([]float64, cfg.BlockSize)
	for i := 0; i < 20; i++ {
		e.Push(0, in)
		e.Pull(out)
		for k, v := range out {
			assert.False(t, v != v, "output[%d] must not be NaN on silence", k)
			assert.Equal(t, 0.0, v, "output[%d] must stay zero on silence", k)
		}
	}
}

func TestEngineBypassIsExactPassthrough(t *testing.T) {
	cfg := smallTestConfig()
	cfg.Run = false
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	in := make([]float64, cfg.BlockSize)
	for i := range in {
		in[i] = math.Sin(float64(i))
	}
	out := make([]float64, cfg.BlockSize)

	// With the engine bypassed, every Pull returns the block the preceding
	// Push supplied, unchanged, and so never leaves the driven signal's
	// range.
	for i := 0; i < 10; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	assert.Equal(t, in, out, "bypass must return the pushed block unchanged")
	for k, v := range out {
		assert.GreaterOrEqual(t, v, -1.0, "bypass must not amplify the signal at %d", k)
		assert.LessOrEqual(t, v, 1.0, "bypass must not amplify the signal at %d", k)
	}
}

func TestEngineIgnoresPushAtWrongPosition(t *testing.T) {
	cfg := smallTestConfig()
	cfg.Position = 2
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	in := make([]float64, cfg.BlockSize)
	for i := range in {
		in[i] = 1.0
	}
	out := make([]float64, cfg.BlockSize)
	for i := 0; i < 5; i++ {
		e.Push(0, in) // wrong position: must be a no-op
		e.Pull(out)
	}
	for _, v := range out {
		assert.Equal(t, 0.0, v, "Push at the wrong dispatch position must not advance the engine")
	}
}

func TestEngineSinusoidPlusNoiseStaysFiniteAcrossAllGainMethods(t *testing.T) {
	for _, method := range allGainMethods() {
		cfg := smallTestConfig()
		cfg.GainMethod = method
		e, err := NewEngine(cfg)
		require.NoError(t, err)

		in := make([]float64, cfg.BlockSize)
		out := make([]float64, cfg.BlockSize)
		seed := uint32(42)
		for block := 0; block < 50; block++ {
			for i := range in {
				n := float64(block*cfg.BlockSize+i) / float64(cfg.SampleRate)
				seed = seed*1664525 + 1013904223
				noise := (float64(seed%1000)/500.0 - 1.0) * 0.1
				in[i] = math.Sin(2*math.Pi*440*n) + noise
			}
			e.Push(0, in)
			e.Pull(out)
		}
		for k, v := range out {
			assert.False(t, v != v, "method %d produced NaN at %d", method, k)
		}
	}
}

func TestEngineFlushIsIdempotentAndSafe(t *testing.T) {
	cfg := smallTestConfig()
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	in := make([]float64, cfg.BlockSize)
	for i := range in {
		in[i] = 0.3
	}
	out := make([]float64, cfg.BlockSize)
	for i := 0; i < 5; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	e.Flush()
	e.Flush()
	for i := 0; i < 5; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	for _, v := range out {
		assert.False(t, v != v)
	}
}

func TestEngineGainMethodHotSwapIsSafe(t *testing.T) {
	cfg := smallTestConfig()
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	in := make([]float64, cfg.BlockSize)
	out := make([]float64, cfg.BlockSize)
	for i := range in {
		in[i] = 0.4
	}
	for i := 0; i < 5; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	e.SetGainMethod(GainTwoStage)
	for i := 0; i < 5; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	for _, v := range out {
		assert.False(t, v != v, "hot-swapping the gain method must not produce NaN")
	}
}

func TestEngineRunToggleStopsProcessing(t *testing.T) {
	cfg := smallTestConfig()
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	in := make([]float64, cfg.BlockSize)
	for i := range in {
		in[i] = 0.5
	}
	out := make([]float64, cfg.BlockSize)

	for i := 0; i < 5; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	e.SetRun(false)
	for i := 0; i < 5; i++ {
		e.Push(0, in)
		e.Pull(out)
	}
	for _, v := range out {
		assert.False(t, v != v)
		assert.Equal(t, 0.5, v, "a stopped engine passes its input through unchanged")
	}
}
