package emnr

import "math"

// sppState implements estimator 1, the speech-presence-probability based
// noise tracker of Gerkmann & Hendriks (spec.md §3, §4.4).
type sppState struct {
	m int

	alphaPow  float64
	alphaPbar float64
	epsH1     float64
	epsH1r    float64

	sigma2N []float64
	pH1y    []float64
	pbar    []float64
	en2y    []float64
}

func newSPPState(m, hop, rate int) *sppState {
	s := &sppState{
		m:         m,
		alphaPow:  expDecayFromRef(hop, rate, 0.8),
		alphaPbar: expDecayFromRef(hop, rate, 0.9),
		epsH1:     math.Pow(10.0, 15.0/10.0),
		sigma2N:   make([]float64, m),
		pH1y:      make([]float64, m),
		pbar:      make([]float64, m),
		en2y:      make([]float64, m),
	}
	s.epsH1r = s.epsH1 / (1.0 + s.epsH1)
	for k := 0; k < m; k++ {
		s.sigma2N[k] = 0.5
		s.pbar[k] = 0.5
	}
	return s
}

// Update implements LambdaDs from emnr.c, spec.md §4.4.
func (s *sppState) Update(lambdaY, lambdaD []float64) {
	for k := 0; k < s.m; k++ {
		s.pH1y[k] = 1.0 / (1.0 + (1.0+s.epsH1)*math.Exp(-s.epsH1r*lambdaY[k]/s.sigma2N[k]))
		s.pbar[k] = s.alphaPbar*s.pbar[k] + (1.0-s.alphaPbar)*s.pH1y[k]
		if s.pbar[k] > 0.99 {
			s.pH1y[k] = math.Min(s.pH1y[k], 0.99)
		}
		s.en2y[k] = (1.0-s.pH1y[k])*lambdaY[k] + s.pH1y[k]*s.sigma2N[k]
		s.sigma2N[k] = s.alphaPow*s.sigma2N[k] + (1.0-s.alphaPow)*s.en2y[k]
	}
	copy(lambdaD, s.sigma2N)
}
