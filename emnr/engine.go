// Package emnr implements a real-time, single-channel spectral noise
// reduction engine for an SDR receive path: short-time analysis/synthesis
// with overlap-add, a choice of noise-power trackers and MMSE-family gain
// estimators, and an optional adaptive post filter, modelled on WDSP's
// emnr.c.
package emnr

import "fmt"

// Engine is a single-channel spectral noise reduction engine. It is NOT
// safe for concurrent use: a caller must serialize Push/Pull/Flush and any
// parameter setters against each other (spec.md §5 — the host's
// per-channel lock is out of scope for this package).
type Engine struct {
	cfg EngineConfig

	framer   *Framer
	spectral *SpectralCore
	noise    NoiseEstimator
	gain     *GainState
	post     *PostFilterState

	run               bool
	position          int
	postFilterEnabled bool
	outputGain        float64

	frame      []float64
	synthFrame []float64
	spectrum   []complex128
	mask       []float64
	lambdaY    []float64
	lambdaD    []float64

	normalize float64 // 1/(N*L), the overlap-add/FFT round-trip correction
}

// NewEngine builds an Engine from cfg. cfg is copied; mutating the
// original afterwards has no effect.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	window, err := buildWindow(cfg.Window, cfg.FFTSize)
	if err != nil {
		return nil, err
	}

	tables := cfg.Tables
	if tables == nil {
		tables = DefaultTables()
	}

	spectral := NewSpectralCore(cfg.FFTSize)
	hop := cfg.FFTSize / cfg.Overlap

	e := &Engine{
		cfg:               cfg,
		framer:            NewFramer(cfg.FFTSize, cfg.Overlap, cfg.BlockSize, window),
		spectral:          spectral,
		noise:             newNoiseEstimator(cfg.NoiseMethod, spectral.M(), hop, cfg.SampleRate),
		gain:              NewGainState(spectral.M(), hop, cfg.SampleRate, cfg.GainMethod, tables, cfg.CompatAsymmetricZetaBug),
		post:              NewPostFilterState(spectral.M()),
		run:               cfg.Run,
		position:          cfg.Position,
		postFilterEnabled: cfg.PostFilterEnabled,
		outputGain:        cfg.OutputGain,
		frame:             make([]float64, cfg.FFTSize),
		synthFrame:        make([]float64, cfg.FFTSize),
		spectrum:          make([]complex128, spectral.M()),
		mask:              make([]float64, spectral.M()),
		lambdaY:           make([]float64, spectral.M()),
		lambdaD:           make([]float64, spectral.M()),
		normalize:         1.0 / float64(cfg.FFTSize*cfg.Overlap),
	}
	return e, nil
}

// Push feeds one host block (length cfg.BlockSize) of real input samples
// into the engine, running every complete analysis frame produced as a
// result. at is the host's current dispatch position; Push is a no-op
// unless at equals the configured Position (spec.md §4.8, §5).
func (e *Engine) Push(at int, in []float64) {
	if at != e.position {
		return
	}
	if len(in) != e.cfg.BlockSize {
		panic(fmt.Sprintf("emnr: Push expects a block of %d samples, got %d", e.cfg.BlockSize, len(in)))
	}
	e.framer.Push(in)
	if !e.run {
		// Passthrough still consumes every frame the ring buffer has
		// accumulated so indices stay in lockstep with the run=true path
		// once re-enabled, then overwrites the block the next Pull drains
		// with the input, so that Pull returns it unchanged.
		for e.framer.FrameReady() {
			e.framer.NextFrame(e.frame)
			e.framer.StoreSynthesis(e.frame)
		}
		f := e.framer
		for i, v := range in {
			f.outaccum[(f.oaoutidx+i)%len(f.outaccum)] = v
		}
		return
	}
	for e.framer.FrameReady() {
		e.processFrame()
	}
}

// processFrame runs one complete analysis -> noise/gain -> synthesis cycle.
func (e *Engine) processFrame() {
	e.framer.NextFrame(e.frame)
	e.spectral.Forward(e.spectrum, e.frame)

	for k := range e.lambdaY {
		re := real(e.spectrum[k])
		im := imag(e.spectrum[k])
		e.lambdaY[k] = re*re + im*im
	}

	e.noise.Update(e.lambdaY, e.lambdaD)
	e.gain.Update(e.mask, e.lambdaY, e.lambdaD)

	if e.postFilterEnabled {
		e.post.Apply(e.mask, e.lambdaY, e.cfg.GainMethod == GainTwoStage)
	}

	g := e.outputGain * e.normalize
	for k := range e.spectrum {
		e.spectrum[k] *= complex(e.mask[k]*g, 0)
	}
	e.spectral.Inverse(e.synthFrame, e.spectrum)
	e.framer.StoreSynthesis(e.synthFrame)
}

// Pull drains one host block (length cfg.BlockSize) of processed output
// samples.
func (e *Engine) Pull(dst []float64) {
	if len(dst) != e.cfg.BlockSize {
		panic(fmt.Sprintf("emnr: Pull expects a block of %d samples, got %d", e.cfg.BlockSize, len(dst)))
	}
	e.framer.Pull(dst)
}

// Flush resets all ring buffers and per-bin filter/estimator state to a
// fresh-engine baseline, per spec.md §8.
func (e *Engine) Flush() {
	e.framer.Flush()
	e.noise = newNoiseEstimator(e.cfg.NoiseMethod, e.spectral.M(), e.cfg.FFTSize/e.cfg.Overlap, e.cfg.SampleRate)
	tables := e.cfg.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	e.gain = NewGainState(e.spectral.M(), e.cfg.FFTSize/e.cfg.Overlap, e.cfg.SampleRate, e.cfg.GainMethod, tables, e.cfg.CompatAsymmetricZetaBug)
}

// SetRun enables or bypasses the engine. When disabled, Push copies input
// straight to the output accumulator (spec.md §4.8).
func (e *Engine) SetRun(run bool) { e.run = run }

// SetPosition changes the dispatch position Push gates on.
func (e *Engine) SetPosition(pos int) { e.position = pos }

// SetOutputGain changes g_o, the overall output gain scalar.
func (e *Engine) SetOutputGain(gain float64) { e.outputGain = gain }

// SetPostFilterEnabled enables or disables the adaptive post filter
// (ae_run in the original).
func (e *Engine) SetPostFilterEnabled(enabled bool) { e.postFilterEnabled = enabled }

// SetGainMethod hot-swaps the per-bin gain estimator. A fresh GainState is
// built so the newly selected method does not inherit decision-directed
// memory from the previous one (spec.md §8, gain-method hot-swap
// transient-safety scenario).
func (e *Engine) SetGainMethod(method GainMethod) {
	e.cfg.GainMethod = method
	tables := e.cfg.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	e.gain = NewGainState(e.spectral.M(), e.cfg.FFTSize/e.cfg.Overlap, e.cfg.SampleRate, method, tables, e.cfg.CompatAsymmetricZetaBug)
}

// SetNoiseMethod hot-swaps the noise-power estimator, resetting its state.
func (e *Engine) SetNoiseMethod(method NoiseMethod) {
	e.cfg.NoiseMethod = method
	e.noise = newNoiseEstimator(method, e.spectral.M(), e.cfg.FFTSize/e.cfg.Overlap, e.cfg.SampleRate)
}

// SetZetaThresh updates the two-stage gain method's own hard-threshold
// cutoff (a->g.zeta_thresh in the original), per spec.md §4.8. Distinct
// from the post filter's own zeta threshold; see SetPostFilterZetaThresh.
func (e *Engine) SetZetaThresh(v float64) { e.gain.zetaThresh = v }

// SetPostFilterZetaThresh updates the post filter's own kernel-width
// trigger (a->ae.zetaThresh in the original), independent of the gain
// method's zeta threshold.
func (e *Engine) SetPostFilterZetaThresh(v float64) { e.post.SetZetaThresh(v) }

// SetPsi updates the post filter's kernel-width exponent.
func (e *Engine) SetPsi(v float64) { e.post.SetPsi(v) }

// SetT2 updates t2, the post filter's learned-gain scale-down threshold.
func (e *Engine) SetT2(v float64) { e.post.SetT2(v) }

// SetTables replaces the lookup tables GainGammaTable/GainTwoStage consult,
// without resetting decision-directed memory.
func (e *Engine) SetTables(t *TableStore) {
	e.cfg.Tables = t
	e.gain.tables = t
}
