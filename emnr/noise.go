package emnr

import "math"

// NoiseEstimator is the common contract the three noise-power trackers
// implement (spec.md §9): consume the per-frame periodogram lambdaY and
// publish an updated noise-power estimate into lambdaD. Both slices have
// length M and are owned by the Engine; the estimator only ever reads
// lambdaY and writes lambdaD.
type NoiseEstimator interface {
	// Update computes lambdaD from lambdaY for one frame.
	Update(lambdaY, lambdaD []float64)
}

// newNoiseEstimator builds the estimator selected by method for a spectrum
// of size m, hop samples per frame and the given sample rate.
func newNoiseEstimator(method NoiseMethod, m, hop, rate int) NoiseEstimator {
	switch method {
	case NoiseSPP:
		return newSPPState(m, hop, rate)
	case NoiseMCRA:
		return newMCRAState(m, hop, rate)
	default:
		return newMinStatState(m, hop, rate)
	}
}

// expDecayFromRef converts a "value decays to target over durationSamples-worth-
// of-seconds" time constant into the per-frame smoothing coefficient
// alpha = exp(-incr/rate/tau), the idiom calc_emnr uses throughout to
// derive every smoothing constant in this package from a fixed reference
// time constant (tau = -128/8000/ln(target)).
func expDecayFromRef(hop, rate int, target float64) float64 {
	tau := -128.0 / 8000.0 / math.Log(target)
	return math.Exp(-float64(hop) / float64(rate) / tau)
}
