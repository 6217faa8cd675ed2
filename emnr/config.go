package emnr

import "fmt"

// GainMethod selects one of the four per-bin gain estimators.
type GainMethod int

const (
	GainAmplitudeMMSE GainMethod = 0 // Ephraim-Malah 1984, Gaussian amplitude
	GainLogMMSE       GainMethod = 1 // Ephraim-Malah 1985, log amplitude
	GainGammaTable    GainMethod = 2 // tabulated gamma-speech MMSE (default)
	GainTwoStage      GainMethod = 3 // two-stage MMSE with learned hard threshold
)

// NoiseMethod selects one of the three noise-power estimators.
type NoiseMethod int

const (
	NoiseMinimumStatistics NoiseMethod = 0
	NoiseSPP               NoiseMethod = 1
	NoiseMCRA              NoiseMethod = 2
)

// EngineConfig is the immutable-after-creation configuration of an Engine.
// Mutating any field after NewEngine has no effect; use the Engine's setter
// methods (guarded, per §5, by the caller holding the host's per-channel
// lock and calling them only between Push calls) instead.
type EngineConfig struct {
	// FFTSize is N, the transform size. Must be a power of two.
	FFTSize int
	// Overlap is L = N/hop. Typically 2 or 4.
	Overlap int
	// BlockSize is B, the number of samples per Push/Pull call.
	BlockSize int
	// SampleRate is R in Hz.
	SampleRate int
	// Window selects the analysis/synthesis window. Only WindowHannRoot
	// is currently defined.
	Window WindowType
	// OutputGain is g_o, the overall output gain scalar.
	OutputGain float64
	// GainMethod selects the per-bin gain estimator.
	GainMethod GainMethod
	// NoiseMethod selects the noise-power estimator.
	NoiseMethod NoiseMethod
	// PostFilterEnabled enables the adaptive post-filter (ae_run).
	PostFilterEnabled bool
	// Position gates Push: the engine only runs when the host's dispatch
	// position (passed to Push) equals Position. The host's dispatch
	// loop itself is out of scope; Position is carried through as a plain
	// int comparison.
	Position int
	// Run starts the engine enabled or bypassed (pass-through).
	Run bool

	// Tables supplies precomputed lookup tables (GG, GGS, zeta-hat). A
	// nil Tables falls back to DefaultTables(), matching the "absent
	// sidecar file" contract of spec.md §6.
	Tables *TableStore

	// CompatAsymmetricZetaBug reproduces the original emnr.c's getZeta
	// bounds check, which compares a dB value against dim_zeta on one
	// branch instead of the bin index it meant to compare (spec.md §9,
	// Open Question). Default false: the corrected symmetric check runs.
	CompatAsymmetricZetaBug bool
}

// DefaultEngineConfig returns the scenario configuration spec.md §8 uses for
// its concrete examples: R=48000, N=2048, L=4, B=1024, wintype=0, g_o=1.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FFTSize:     2048,
		Overlap:     4,
		BlockSize:   1024,
		SampleRate:  48000,
		Window:      WindowHannRoot,
		OutputGain:  1.0,
		GainMethod:  GainGammaTable,
		NoiseMethod: NoiseMinimumStatistics,
		Run:         true,
	}
}

// Validate checks the structural invariants NewEngine depends on.
func (c EngineConfig) Validate() error {
	if c.FFTSize <= 0 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("emnr: fft size %d is not a power of two", c.FFTSize)
	}
	if c.Overlap <= 0 || c.FFTSize%c.Overlap != 0 {
		return fmt.Errorf("emnr: overlap %d does not evenly divide fft size %d", c.Overlap, c.FFTSize)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("emnr: block size must be positive, got %d", c.BlockSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("emnr: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.GainMethod < GainAmplitudeMMSE || c.GainMethod > GainTwoStage {
		return fmt.Errorf("emnr: invalid gain method %d", c.GainMethod)
	}
	if c.NoiseMethod < NoiseMinimumStatistics || c.NoiseMethod > NoiseMCRA {
		return fmt.Errorf("emnr: invalid noise method %d", c.NoiseMethod)
	}
	return nil
}
