package emnr

// PostFilterState implements the adaptive post filter (emnr.c's aepf):
// a single global energy-ratio ζ drives one kernel half-width shared by
// every bin, smoothing the mask with a symmetric moving average whose
// radius shrinks at the spectrum's edges so the window stays centred on
// each bin (spec.md §3, §4.7).
type PostFilterState struct {
	zetaThresh float64 // ζ_thresh, default 0.75
	psi        float64 // ψ, default 20
	t2         float64 // t₂, default 0.20

	nmask []float64 // scratch
}

// NewPostFilterState builds post-filter state for a spectrum of size m,
// with the defaults spec.md §3 documents.
func NewPostFilterState(m int) *PostFilterState {
	return &PostFilterState{
		zetaThresh: 0.75,
		psi:        20.0,
		t2:         0.20,
		nmask:      make([]float64, m),
	}
}

// Apply smooths mask in place using lambdaY as the per-bin signal-plus-
// noise power, per spec.md §4.7 (emnr.c's aepf). learnedGainActive selects
// whether the final 0.05 scale-down applies (only relevant when the
// upstream gain method is GainTwoStage).
func (p *PostFilterState) Apply(mask, lambdaY []float64, learnedGainActive bool) {
	m := len(mask)

	var sumPre, sumPost float64
	for k := 0; k < m; k++ {
		sumPre += lambdaY[k]
		sumPost += mask[k] * mask[k] * lambdaY[k]
	}
	zeta := sumPost / sumPre

	zetaT := zeta
	if zeta >= p.zetaThresh {
		zetaT = 1.0
	}

	var n int
	if zetaT == 1.0 {
		n = 0
	} else {
		width := 1 + 2*int(0.5+p.psi*(1.0-zetaT/p.zetaThresh))
		n = width / 2
	}

	for k := 0; k < m; k++ {
		r := n
		if k < r {
			r = k
		}
		if m-1-k < r {
			r = m - 1 - k
		}
		var sum float64
		for j := k - r; j <= k+r; j++ {
			sum += mask[j]
		}
		p.nmask[k] = sum / float64(2*r+1)
	}
	copy(mask, p.nmask)

	if learnedGainActive && zetaT < p.t2 {
		for k := range mask {
			mask[k] *= 0.05
		}
	}
}

// SetZetaThresh updates ζ_thresh, the post filter's own kernel-width
// trigger (emnr.c's a->ae.zetaThresh; SetRXAEMNRaeZetaThresh), distinct
// from GainState's training zeta threshold.
func (p *PostFilterState) SetZetaThresh(v float64) { p.zetaThresh = v }

// SetPsi updates ψ, the kernel-width growth rate (SetRXAEMNRaePsi).
func (p *PostFilterState) SetPsi(v float64) { p.psi = v }

// SetT2 updates t₂, the learned-gain scale-down cutoff
// (SetRXAEMNRtrainT2).
func (p *PostFilterState) SetT2(v float64) { p.t2 = v }
