package emnr

import "math"

// dVals/mVals are the 18-point log-x/linear-y interpolation table for
// M(D) used to bias-correct the minimum-statistics tracker (spec.md §4.3,
// original emnr.c calc_emnr's Dvals/Mvals).
var dVals = [18]float64{1, 2, 5, 8, 10, 15, 20, 30, 40, 60, 80, 120, 140, 160, 180, 220, 260, 300}
var mVals = [18]float64{0.000, 0.260, 0.480, 0.580, 0.610, 0.668, 0.705, 0.762, 0.800, 0.841, 0.865, 0.890, 0.900, 0.910, 0.920, 0.930, 0.935, 0.940}

// interpM performs log-x, linear-y interpolation of (dVals, mVals) at x,
// clamping at the table's endpoints (spec.md §4.3).
func interpM(x float64) float64 {
	if x <= dVals[0] {
		return mVals[0]
	}
	if x >= dVals[len(dVals)-1] {
		return mVals[len(mVals)-1]
	}
	idx := 1
	for x > dVals[idx] {
		idx++
	}
	xlLow := math.Log10(dVals[idx-1])
	xlHigh := math.Log10(dVals[idx])
	frac := (math.Log10(x) - xlLow) / (xlHigh - xlLow)
	return mVals[idx-1] + frac*(mVals[idx]-mVals[idx-1])
}

// minStatState implements estimator 0, Martin's minimum-statistics noise
// tracker with sub-window history and bias correction (spec.md §3, §4.3).
type minStatState struct {
	m   int
	hop int
	rate int

	alphaCsmooth    float64
	alphaMax        float64
	alphaCmin       float64
	alphaMinMaxVal  float64
	snrq            float64
	betaMax         float64
	invQeqMax       float64
	av              float64
	u, v, d         int
	mOfD, mOfV      float64
	invQbarPoints   [4]float64
	nsmax           [4]float64

	p           []float64
	alphaOptHat []float64
	alphaHat    []float64
	sigma2N     []float64
	pbar        []float64
	p2bar       []float64
	qeq         []float64
	bmin        []float64
	bminSub     []float64
	kMod        []bool
	actmin      []float64
	actminSub   []float64
	lminFlag    []bool
	pminU       []float64
	actminbuff  [][]float64

	alphaC  float64
	subwc   int
	ambIdx  int
}

func newMinStatState(m, hop, rate int) *minStatState {
	s := &minStatState{m: m, hop: hop, rate: rate}

	s.alphaCsmooth = expDecayFromRef(hop, rate, 0.7)
	s.alphaMax = expDecayFromRef(hop, rate, 0.96)
	s.alphaCmin = expDecayFromRef(hop, rate, 0.7)
	s.alphaMinMaxVal = expDecayFromRef(hop, rate, 0.3)
	s.snrq = -float64(hop) / (0.064 * float64(rate))
	s.betaMax = expDecayFromRef(hop, rate, 0.8)
	s.invQeqMax = invQeqMax
	s.av = avBias

	dtime := 8.0 * 12.0 * 128.0 / 8000.0
	u := 8
	v := int(0.5 + dtime*float64(rate)/(float64(u)*float64(hop)))
	if v < 4 {
		v = 4
	}
	u = int(0.5 + dtime*float64(rate)/(float64(v)*float64(hop)))
	if u < 1 {
		u = 1
	}
	s.u, s.v = u, v
	s.d = u * v
	s.mOfD = interpM(float64(s.d))
	s.mOfV = interpM(float64(s.v))

	s.invQbarPoints = [4]float64{0.03, 0.05, 0.06, 1.0e300}
	refSeconds := 12.0 * 128.0 / 8000.0
	for i, db := range []float64{8.0, 4.0, 2.0, 1.2} {
		scaledDB := 10.0 * math.Log10(db) / refSeconds
		s.nsmax[i] = math.Pow(10.0, scaledDB/10.0*float64(s.v)*float64(hop)/float64(rate))
	}

	s.p = make([]float64, m)
	s.alphaOptHat = make([]float64, m)
	s.alphaHat = make([]float64, m)
	s.sigma2N = make([]float64, m)
	s.pbar = make([]float64, m)
	s.p2bar = make([]float64, m)
	s.qeq = make([]float64, m)
	s.bmin = make([]float64, m)
	s.bminSub = make([]float64, m)
	s.kMod = make([]bool, m)
	s.actmin = make([]float64, m)
	s.actminSub = make([]float64, m)
	s.lminFlag = make([]bool, m)
	s.pminU = make([]float64, m)
	s.actminbuff = make([][]float64, s.u)
	for i := range s.actminbuff {
		s.actminbuff[i] = make([]float64, m)
	}

	s.alphaC = 1.0
	s.subwc = s.v
	s.ambIdx = 0
	for k := 0; k < m; k++ {
		s.p[k] = 0.5
		s.sigma2N[k] = 0.5
		s.pbar[k] = 0.5
		s.pminU[k] = 0.5
		s.p2bar[k] = 0.25
		s.actmin[k] = 1.0e300
		s.actminSub[k] = 1.0e300
		for u := range s.actminbuff {
			s.actminbuff[u][k] = 1.0e300
		}
	}
	return s
}

// Update implements LambdaD from emnr.c, spec.md §4.3 steps 1-10.
func (s *minStatState) Update(lambdaY, lambdaD []float64) {
	m := s.m

	var sumPrevP, sumLambdaY, sumPrevSigma2N float64
	for k := 0; k < m; k++ {
		sumPrevP += s.p[k]
		sumLambdaY += lambdaY[k]
		sumPrevSigma2N += s.sigma2N[k]
	}

	for k := 0; k < m; k++ {
		f0 := s.p[k]/s.sigma2N[k] - 1.0
		s.alphaOptHat[k] = 1.0 / (1.0 + f0*f0)
	}
	snr := sumPrevP / sumPrevSigma2N
	alphaMin := math.Min(s.alphaMinMaxVal, math.Pow(snr, s.snrq))
	for k := 0; k < m; k++ {
		if s.alphaOptHat[k] < alphaMin {
			s.alphaOptHat[k] = alphaMin
		}
	}

	f1 := sumPrevP/sumLambdaY - 1.0
	alphaCtilda := 1.0 / (1.0 + f1*f1)
	s.alphaC = s.alphaCsmooth*s.alphaC + (1.0-s.alphaCsmooth)*math.Max(alphaCtilda, s.alphaCmin)
	f2 := s.alphaMax * s.alphaC
	for k := 0; k < m; k++ {
		s.alphaHat[k] = f2 * s.alphaOptHat[k]
	}
	for k := 0; k < m; k++ {
		s.p[k] = s.alphaHat[k]*s.p[k] + (1.0-s.alphaHat[k])*lambdaY[k]
	}

	var invQbar float64
	for k := 0; k < m; k++ {
		beta := math.Min(s.betaMax, s.alphaHat[k]*s.alphaHat[k])
		s.pbar[k] = beta*s.pbar[k] + (1.0-beta)*s.p[k]
		s.p2bar[k] = beta*s.p2bar[k] + (1.0-beta)*s.p[k]*s.p[k]
		varHat := s.p2bar[k] - s.pbar[k]*s.pbar[k]
		invQeq := varHat / (2.0 * s.sigma2N[k] * s.sigma2N[k])
		if invQeq > s.invQeqMax {
			invQeq = s.invQeqMax
		}
		s.qeq[k] = 1.0 / invQeq
		invQbar += invQeq
	}
	invQbar /= float64(m)
	bc := 1.0 + s.av*math.Sqrt(invQbar)

	for k := 0; k < m; k++ {
		qeqTilda := (s.qeq[k] - 2.0*s.mOfD) / (1.0 - s.mOfD)
		qeqTildaSub := (s.qeq[k] - 2.0*s.mOfV) / (1.0 - s.mOfV)
		s.bmin[k] = 1.0 + 2.0*(float64(s.d)-1.0)/qeqTilda
		s.bminSub[k] = 1.0 + 2.0*(float64(s.v)-1.0)/qeqTildaSub
	}

	for k := range s.kMod {
		s.kMod[k] = false
	}
	for k := 0; k < m; k++ {
		f3 := s.p[k] * s.bmin[k] * bc
		if f3 < s.actmin[k] {
			s.actmin[k] = f3
			s.actminSub[k] = s.p[k] * s.bminSub[k] * bc
			s.kMod[k] = true
		}
	}

	if s.subwc == s.v {
		var noiseSlopeMax float64
		switch {
		case invQbar < s.invQbarPoints[0]:
			noiseSlopeMax = s.nsmax[0]
		case invQbar < s.invQbarPoints[1]:
			noiseSlopeMax = s.nsmax[1]
		case invQbar < s.invQbarPoints[2]:
			noiseSlopeMax = s.nsmax[2]
		default:
			noiseSlopeMax = s.nsmax[3]
		}

		for k := 0; k < m; k++ {
			if s.kMod[k] {
				s.lminFlag[k] = false
			}
			s.actminbuff[s.ambIdx][k] = s.actmin[k]
			min := 1.0e300
			for u := 0; u < s.u; u++ {
				if s.actminbuff[u][k] < min {
					min = s.actminbuff[u][k]
				}
			}
			s.pminU[k] = min
			if s.lminFlag[k] && s.actminSub[k] < noiseSlopeMax*s.pminU[k] && s.actminSub[k] > s.pminU[k] {
				s.pminU[k] = s.actminSub[k]
				for u := 0; u < s.u; u++ {
					s.actminbuff[u][k] = s.actminSub[k]
				}
			}
			s.lminFlag[k] = false
			s.actmin[k] = 1.0e300
			s.actminSub[k] = 1.0e300
		}
		s.ambIdx++
		if s.ambIdx == s.u {
			s.ambIdx = 0
		}
		s.subwc = 1
	} else {
		if s.subwc > 1 {
			for k := 0; k < m; k++ {
				if s.kMod[k] {
					s.lminFlag[k] = true
					s.sigma2N[k] = math.Min(s.actminSub[k], s.pminU[k])
					s.pminU[k] = s.sigma2N[k]
				}
			}
		}
		s.subwc++
	}

	copy(lambdaD, s.sigma2N)
}
