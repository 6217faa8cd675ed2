package emnr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allEstimators(m, hop, rate int) map[string]NoiseEstimator {
	return map[string]NoiseEstimator{
		"minimum-statistics": newNoiseEstimator(NoiseMinimumStatistics, m, hop, rate),
		"spp":                newNoiseEstimator(NoiseSPP, m, hop, rate),
		"mcra":               newNoiseEstimator(NoiseMCRA, m, hop, rate),
	}
}

func TestNoiseEstimatorsTrackConstantPower(t *testing.T) {
	const m, hop, rate = 1025, 512, 48000
	for name, est := range allEstimators(m, hop, rate) {
		t.Run(name, func(t *testing.T) {
			lambdaY := make([]float64, m)
			for k := range lambdaY {
				lambdaY[k] = 2.0
			}
			lambdaD := make([]float64, m)
			for i := 0; i < 4000; i++ {
				est.Update(lambdaY, lambdaD)
			}
			for k := range lambdaD {
				assert.InDelta(t, 2.0, lambdaD[k], 0.75,
					"noise estimate should converge toward the stationary input power")
			}
		})
	}
}

func TestNoiseEstimatorsProduceFiniteOutput(t *testing.T) {
	const m, hop, rate = 129, 256, 8000
	for name, est := range allEstimators(m, hop, rate) {
		t.Run(name, func(t *testing.T) {
			lambdaY := make([]float64, m)
			lambdaD := make([]float64, m)
			seed := uint32(12345)
			for i := 0; i < 200; i++ {
				for k := range lambdaY {
					seed = seed*1664525 + 1013904223
					lambdaY[k] = float64(seed%1000) / 100.0
				}
				est.Update(lambdaY, lambdaD)
			}
			for k, v := range lambdaD {
				assert.False(t, v != v, "lambdaD[%d] must not be NaN", k)
				assert.GreaterOrEqual(t, v, 0.0, "noise power estimates are non-negative")
			}
		})
	}
}

func TestInterpMClampsAtEndpoints(t *testing.T) {
	assert.Equal(t, mVals[0], interpM(dVals[0]-10))
	assert.Equal(t, mVals[len(mVals)-1], interpM(dVals[len(dVals)-1]+100))
}

func TestExpDecayFromRefIsInUnitInterval(t *testing.T) {
	a := expDecayFromRef(512, 48000, 0.7)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, 1.0)
}
