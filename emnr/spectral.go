package emnr

import "gonum.org/v1/gonum/dsp/fourier"

// SpectralCore wraps a single real-to-complex forward / complex-to-real
// inverse FFT pair of fixed size N, producing a one-sided spectrum of
// M = N/2+1 bins. It replaces the original's FFTW plan pair with
// gonum.org/v1/gonum/dsp/fourier, the FFT the rest of this pack reaches for
// (audio_extensions/ft8.Monitor, audio_extensions/morse.SpectrumAnalyzer).
//
// The original assumes FFTW's r2c/c2r convention: the forward transform is
// unnormalised and a full forward+inverse round trip multiplies the signal
// by N (which calc_emnr's gain = ogain/fsize/ovrlp then divides back out).
// gonum's fourier.FFT does not document which convention Sequence uses
// relative to Coefficients, so SpectralCore calibrates once at construction
// time against a unit impulse and folds the measured scale into every
// subsequent Inverse call, guaranteeing the FFTW-compatible round-trip
// factor of N that the rest of the engine (the gain formula, the Framer
// round-trip invariant) is written against.
type SpectralCore struct {
	n int
	m int

	fft *fourier.FFT

	// inverseScale corrects gonum's Sequence output so that a forward+
	// inverse round trip multiplies the input by exactly n, matching the
	// unnormalised FFTW convention the rest of the engine assumes.
	inverseScale float64

	timeBuf []float64
	specBuf []complex128
}

// NewSpectralCore builds forward/inverse plans of size n. n must be a
// power of two (enforced by the caller, EngineConfig.Validate).
func NewSpectralCore(n int) *SpectralCore {
	c := &SpectralCore{
		n:       n,
		m:       n/2 + 1,
		fft:     fourier.NewFFT(n),
		timeBuf: make([]float64, n),
		specBuf: make([]complex128, n/2+1),
	}
	c.calibrate()
	return c
}

func (c *SpectralCore) calibrate() {
	impulse := make([]float64, c.n)
	impulse[0] = 1
	coeffs := c.fft.Coefficients(nil, impulse)
	seq := c.fft.Sequence(nil, coeffs)
	measured := seq[0]
	if measured == 0 {
		// Defensive: should not happen for a real FFT implementation, but
		// never divide by zero on a code path that only runs once at
		// construction.
		c.inverseScale = 1
		return
	}
	c.inverseScale = float64(c.n) / measured
}

// M returns the one-sided spectrum length N/2+1.
func (c *SpectralCore) M() int { return c.m }

// N returns the transform size.
func (c *SpectralCore) N() int { return c.n }

// Forward computes the one-sided spectrum of a windowed time-domain frame
// of length N. dst must have length M; frame must have length N.
func (c *SpectralCore) Forward(dst []complex128, frame []float64) {
	out := c.fft.Coefficients(dst[:0], frame)
	copy(dst, out)
}

// Inverse reconstructs an N-sample time-domain frame from the one-sided
// spectrum, applying the FFTW-equivalent round-trip scale so that
// Inverse(Forward(x)) == n*x elementwise (mask == 1 throughout).
func (c *SpectralCore) Inverse(dst []float64, spectrum []complex128) {
	out := c.fft.Sequence(dst[:0], spectrum)
	for i := range out {
		out[i] *= c.inverseScale
	}
	copy(dst, out)
}
