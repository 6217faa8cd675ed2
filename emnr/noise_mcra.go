package emnr

import "math"

// mcraState implements estimator 2, Cohen's minima-controlled recursive-
// averaging noise tracker (spec.md §3, §4.5).
type mcraState struct {
	m int

	eta    float64
	gamma  float64
	beta   float64
	alphaD float64
	alphaP float64

	deltaLF, deltaMF     float64
	delta0, delta1, delta2 float64

	p    []float64
	pmin []float64
	pp   []float64 // p (speech presence probability, per-bin)
	d    []float64
}

// mcraDecay mirrors LambdaDl's own reference time constant
// (tau = -256/(20100*ln(target))), distinct from the -128/8000 reference
// the other two estimators and the gain estimator share.
func mcraDecay(hop, rate int, target float64) float64 {
	tau := -256.0 / (20100.0 * math.Log(target))
	return math.Exp(-float64(hop) / (float64(rate) * tau))
}

func newMCRAState(m, hop, rate int) *mcraState {
	s := &mcraState{
		m:      m,
		eta:    mcraDecay(hop, rate, 0.7),
		gamma:  mcraDecay(hop, rate, 0.998),
		beta:   mcraDecay(hop, rate, 0.8),
		alphaD: mcraDecay(hop, rate, 0.85),
		alphaP: mcraDecay(hop, rate, 0.2),

		p:    make([]float64, m),
		pmin: make([]float64, m),
		pp:   make([]float64, m),
		d:    make([]float64, m),
	}
	s.deltaLF = 1000.0 / (float64(rate) / 2) * float64(m)
	s.deltaMF = 3000.0 / (float64(rate) / 2) * float64(m)
	s.delta0, s.delta1, s.delta2 = 2.0, 2.0, 5.0
	return s
}

// Update implements LambdaDl from emnr.c, spec.md §4.5.
func (s *mcraState) Update(lambdaY, lambdaD []float64) {
	c := (1.0 - s.gamma) / (1.0 - s.beta)
	for k := 0; k < s.m; k++ {
		pOld := s.p[k]
		s.p[k] = s.eta*pOld + (1.0-s.eta)*lambdaY[k]
		if s.pmin[k] < s.p[k] {
			s.pmin[k] = s.gamma*s.pmin[k] + c*(s.p[k]-s.beta*pOld)
		} else {
			s.pmin[k] = s.p[k]
		}
		sr := s.p[k] / s.pmin[k]

		var delta float64
		switch {
		case float64(k) <= s.deltaLF:
			delta = s.delta0
		case float64(k) <= s.deltaMF:
			delta = s.delta1
		default:
			delta = s.delta2
		}

		var ind float64
		if sr > delta {
			ind = 1.0
		}
		s.pp[k] = s.alphaP*s.pp[k] + (1.0-s.alphaP)*ind
		alphaS := s.alphaD + (1.0-s.alphaD)*s.pp[k]
		s.d[k] = alphaS*s.d[k] + (1.0-alphaS)*lambdaY[k]
	}
	copy(lambdaD, s.d)
}
