package emnr

import "math"

// GainState holds the per-bin decision-directed memory and scalar
// parameters shared by all four gain estimators (spec.md §3 GainState).
type GainState struct {
	m int

	prevMask  []float64
	prevGamma []float64

	alpha   float64 // decision-directed smoothing
	q       float64 // a-priori speech-absence probability
	method  GainMethod

	tables *TableStore

	zetaThresh              float64
	compatAsymmetricZetaBug bool
}

// NewGainState builds gain estimator state for a spectrum of size m, with
// hop samples per frame at the given sample rate.
func NewGainState(m, hop, rate int, method GainMethod, tables *TableStore, compatBug bool) *GainState {
	tau := -128.0 / 8000.0 / math.Log(0.985)
	g := &GainState{
		m:                       m,
		prevMask:                make([]float64, m),
		prevGamma:               make([]float64, m),
		alpha:                   math.Exp(-float64(hop) / float64(rate) / tau),
		q:                       defaultQ,
		method:                  method,
		tables:                  tables,
		zetaThresh:              -2.0,
		compatAsymmetricZetaBug: compatBug,
	}
	for k := 0; k < m; k++ {
		g.prevMask[k] = 1.0
		g.prevGamma[k] = 1.0
	}
	return g
}

// aPrioriSNR computes the decision-directed a-priori SNR estimate xi-hat
// for one bin from the a-posteriori SNR gamma, per spec.md §4.6's "common
// preamble".
func (g *GainState) aPrioriSNR(k int, gamma float64) float64 {
	return g.alpha*g.prevMask[k]*g.prevMask[k]*g.prevGamma[k] +
		(1.0-g.alpha)*math.Max(gamma-1.0, epsFloor)
}

// emGaussianAmplitude evaluates the Ephraim-Malah 1984 Gaussian-amplitude
// MMSE gain (spec.md §4.6 method 0), including the speech-presence
// weighting applied with q = defaultQ.
func emGaussianAmplitude(gamma, xiHat, lambdaY, lambdaD, q float64) float64 {
	v := (xiHat / (1.0 + xiHat)) * gamma
	mask := gf1p5 * math.Sqrt(v) / gamma * math.Exp(-0.5*v) *
		((1.0+v)*besselI0(0.5*v) + v*besselI1(0.5*v))
	v2 := math.Min(v, 700.0)
	eta := mask * mask * lambdaY / lambdaD
	eps := eta / (1.0 - q)
	witchHat := (1.0 - q) / q * math.Exp(v2) / (1.0 + eps)
	mask *= witchHat / (1.0 + witchHat)
	return mask
}

// Update computes the mask vector for one frame from the periodogram
// lambdaY and noise power lambdaD, dispatching to the selected gain
// method (spec.md §4.6).
func (g *GainState) Update(mask, lambdaY, lambdaD []float64) {
	switch g.method {
	case GainAmplitudeMMSE:
		g.updateAmplitudeMMSE(mask, lambdaY, lambdaD)
	case GainLogMMSE:
		g.updateLogMMSE(mask, lambdaY, lambdaD)
	case GainGammaTable:
		g.updateGammaTable(mask, lambdaY, lambdaD)
	case GainTwoStage:
		g.updateTwoStage(mask, lambdaY, lambdaD)
	default:
		// Invalid selector: silently keep the previous mask values
		// unchanged for this frame (spec.md §7).
	}
}

func (g *GainState) updateAmplitudeMMSE(mask, lambdaY, lambdaD []float64) {
	for k := 0; k < g.m; k++ {
		gamma := math.Min(lambdaY[k]/lambdaD[k], gammaMax)
		xiHat := math.Max(g.aPrioriSNR(k, gamma), xiMin)
		m := clampGain(emGaussianAmplitude(gamma, xiHat, lambdaY[k], lambdaD[k], g.q))
		mask[k] = m
		g.prevGamma[k] = gamma
		g.prevMask[k] = m
	}
}

func (g *GainState) updateLogMMSE(mask, lambdaY, lambdaD []float64) {
	for k := 0; k < g.m; k++ {
		gamma := math.Min(lambdaY[k]/lambdaD[k], gammaMax)
		xiHat := g.aPrioriSNR(k, gamma) // no xi_min floor for this method
		ehr := xiHat / (1.0 + xiHat)
		v := ehr * gamma
		m := clampGain(ehr * math.Exp(math.Min(700.0, 0.5*e1(v))))
		mask[k] = m
		g.prevGamma[k] = gamma
		g.prevMask[k] = m
	}
}

func (g *GainState) updateGammaTable(mask, lambdaY, lambdaD []float64) {
	for k := 0; k < g.m; k++ {
		gamma := math.Min(lambdaY[k]/lambdaD[k], gammaMax)
		xiHat := g.aPrioriSNR(k, gamma)
		epsP := xiHat / (1.0 - g.q)
		m := clampGain(lookupTable(g.tables.GG, gamma, xiHat) * lookupTable(g.tables.GGS, gamma, epsP))
		mask[k] = m
		g.prevGamma[k] = gamma
		g.prevMask[k] = m
	}
}

func (g *GainState) updateTwoStage(mask, lambdaY, lambdaD []float64) {
	for k := 0; k < g.m; k++ {
		gamma := math.Min(lambdaY[k]/lambdaD[k], gammaMax)
		xiHat := math.Max(g.aPrioriSNR(k, gamma), xiMin)

		// First pass: G1.
		g1 := clampGain(emGaussianAmplitude(gamma, xiHat, lambdaY[k], lambdaD[k], g.q))
		g.prevMask[k] = g1
		g.prevGamma[k] = gamma

		// Second pass: recompute xi from G1^2*gamma, producing G2.
		xiTS := math.Max(g1*g1*gamma, xiMin)
		g2 := clampGain(emGaussianAmplitude(gamma, xiTS, lambdaY[k], lambdaD[k], g.q))

		// Learned hard-threshold override, if the (gamma, xi) cell is
		// valid in the zeta-hat grid.
		if zeta, ok := g.lookupZeta(gamma, xiTS); ok {
			if zeta > g.zetaThresh {
				g2 = 1.0
			} else {
				g2 = 0.0
			}
		}
		mask[k] = g2
	}
}

// lookupTable implements getKey from emnr.c: bilinear interpolation of a
// 241x241 table in the log-quantised (gamma, xi) index space (spec.md
// §4.6 method 2, §9).
func lookupTable(table []float64, gamma, xi float64) float64 {
	const dMin = 0.001
	const dMax = 1000.0

	var nGamma1, nGamma2 int
	var tg float64
	switch {
	case gamma <= dMin:
		nGamma1, nGamma2 = 0, 0
	case gamma >= dMax:
		nGamma1, nGamma2 = 240, 240
		tg = 60.0
	default:
		tg = 10.0 * math.Log10(gamma/dMin)
		nGamma1 = int(4.0 * tg)
		nGamma2 = nGamma1 + 1
	}

	var nXi1, nXi2 int
	var tx float64
	switch {
	case xi <= dMin:
		nXi1, nXi2 = 0, 0
	case xi >= dMax:
		nXi1, nXi2 = 240, 240
		tx = 60.0
	default:
		tx = 10.0 * math.Log10(xi/dMin)
		nXi1 = int(4.0 * tx)
		nXi2 = nXi1 + 1
	}

	dg := (tg - 0.25*float64(nGamma1)) / 0.25
	dx := (tx - 0.25*float64(nXi1)) / 0.25

	return (1.0-dg)*(1.0-dx)*table[ggGridDim*nXi1+nGamma1] +
		(1.0-dg)*dx*table[ggGridDim*nXi2+nGamma1] +
		dg*(1.0-dx)*table[ggGridDim*nXi1+nGamma2] +
		dg*dx*table[ggGridDim*nXi2+nGamma2]
}

// lookupZeta implements getZeta from emnr.c: looks up the learned hard-
// threshold map at (gamma, xi), reporting whether the cell is in range and
// marked valid (spec.md §4.6 method 3, §7, §9).
func (g *GainState) lookupZeta(gamma, xi float64) (zeta float64, ok bool) {
	t := g.tables
	gammaDB := 10.0 * math.Log10(gamma)
	xiDB := 10.0 * math.Log10(xi)
	gammaPerCell := (t.ZetaGammaMax - t.ZetaGammaMin) / float64(t.ZetaRows)
	xiPerCell := (t.ZetaXiMax - t.ZetaXiMin) / float64(t.ZetaCols)
	iGamma := int(math.Floor((gammaDB - t.ZetaGammaMin) / gammaPerCell))
	iXi := int(math.Floor((xiDB - t.ZetaXiMin) / xiPerCell))

	outOfRange := iGamma < 0 || iGamma >= t.ZetaRows || iXi < 0
	if g.compatAsymmetricZetaBug {
		// Reproduces the original's bug: compares the dB value against
		// dim_zeta on this branch instead of the index (spec.md §9).
		outOfRange = outOfRange || xiDB >= float64(t.ZetaCols)
	} else {
		outOfRange = outOfRange || iXi >= t.ZetaCols
	}
	if outOfRange {
		return 0, false
	}
	index := iGamma*t.ZetaCols + iXi
	if t.ZetaValid[index] <= 0 {
		return 0, false
	}
	return t.ZetaHat[index], true
}
