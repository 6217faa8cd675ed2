package emnr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostFilterSmoothsFlatMask(t *testing.T) {
	const m = 65
	p := NewPostFilterState(m)

	mask := make([]float64, m)
	lambdaY := make([]float64, m)
	for k := range mask {
		mask[k] = 0.5
		lambdaY[k] = 2.0
	}

	p.Apply(mask, lambdaY, false)
	for k, v := range mask {
		assert.InDelta(t, 0.5, v, 1e-9, "a flat mask is unchanged by smoothing at bin %d", k)
	}
}

func TestPostFilterPassesThroughWhenZetaAboveThreshold(t *testing.T) {
	const m = 65
	p := NewPostFilterState(m)

	mask := make([]float64, m)
	lambdaY := make([]float64, m)
	for k := range mask {
		mask[k] = 1.0 // G[k]==1 everywhere drives zeta to 1 >= zetaThresh
		lambdaY[k] = 2.0
	}

	p.Apply(mask, lambdaY, false)
	for k, v := range mask {
		assert.Equal(t, 1.0, v, "zeta>=zetaThresh collapses the kernel to width 0 at bin %d", k)
	}
}

func TestPostFilterEdgeWindowShrinksSymmetrically(t *testing.T) {
	const m = 33
	p := NewPostFilterState(m)
	p.SetZetaThresh(1000.0) // force zeta (about 347 here) < zetaThresh so the kernel grows
	p.SetPsi(20.0)

	mask := make([]float64, m)
	lambdaY := make([]float64, m)
	for k := range mask {
		mask[k] = float64(k)
		lambdaY[k] = 1.0
	}

	// Derive the same global zeta/n the implementation computes, to know
	// the expected radius independently of Apply's internals.
	var sumPre, sumPost float64
	for k := range mask {
		sumPre += lambdaY[k]
		sumPost += mask[k] * mask[k] * lambdaY[k]
	}
	zeta := sumPost / sumPre
	zetaT := zeta
	if zeta >= p.zetaThresh {
		zetaT = 1.0
	}
	width := 1 + 2*int(0.5+p.psi*(1.0-zetaT/p.zetaThresh))
	n := width / 2

	expected := make([]float64, m)
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
			sum += float64(j)
		}
		expected[k] = sum / float64(2*r+1)
	}

	p.Apply(mask, lambdaY, false)
	for k := range mask {
		assert.InDelta(t, expected[k], mask[k], 1e-9, "bin %d", k)
	}
	// The very first and last bins only ever see themselves: radius 0.
	assert.InDelta(t, 0.0, mask[0], 1e-9)
	assert.InDelta(t, float64(m-1), mask[m-1], 1e-9)
}

func TestPostFilterScalesDownBelowThresholdWithLearnedGain(t *testing.T) {
	const m = 65
	p := NewPostFilterState(m)
	p.SetZetaThresh(10.0) // any sub-10 ratio counts as "below threshold"
	p.SetT2(1.0)          // any zetaT < 1 triggers the scale-down

	mask := make([]float64, m)
	lambdaY := make([]float64, m)
	for k := range mask {
		mask[k] = 0.5 // zeta = 0.25, comfortably below both zetaThresh and t2
		lambdaY[k] = 1.0
	}

	p.Apply(mask, lambdaY, true)
	for k, v := range mask {
		assert.InDelta(t, 0.025, v, 1e-9, "mask[%d] should be scaled down by 0.05 below t2", k)
	}
}

func TestPostFilterLeavesMaskAloneWhenLearnedGainInactive(t *testing.T) {
	const m = 65
	p := NewPostFilterState(m)
	p.SetZetaThresh(10.0)
	p.SetT2(1.0)

	mask := make([]float64, m)
	lambdaY := make([]float64, m)
	for k := range mask {
		mask[k] = 1.0
		lambdaY[k] = 1.0
	}

	p.Apply(mask, lambdaY, false)
	for k, v := range mask {
		assert.InDelta(t, 1.0, v, 1e-9, "mask[%d] should not be scaled down without the learned gain path", k)
	}
}
