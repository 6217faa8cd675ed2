package emnr

import (
	"fmt"
	"math"
)

// WindowType selects the analysis/synthesis window shape. Only the
// Hann-root variant is currently defined.
type WindowType int

const (
	// WindowHannRoot is the square root of the raised cosine
	// 0.54 - 0.46*cos(2*pi*i/fsize) (a Hamming-shaped root), coherent-gain
	// normalised so the
	// window sums to fsize after scaling.
	WindowHannRoot WindowType = 0
)

// ErrUnsupportedWindow is returned by NewEngine for any WindowType other
// than WindowHannRoot. The original emnr.c silently leaves an all-zero
// window (and therefore silently zeroes the output) for unrecognised
// wintype values; this port treats that as a create-time configuration
// error instead (see SPEC_FULL.md, SUPPLEMENTED FEATURES).
var ErrUnsupportedWindow = fmt.Errorf("emnr: unsupported window type")

// buildWindow constructs the analysis/synthesis window of length fsize,
// normalised so that the coherent gain of the window is unity.
func buildWindow(wintype WindowType, fsize int) ([]float64, error) {
	if wintype != WindowHannRoot {
		return nil, ErrUnsupportedWindow
	}
	window := make([]float64, fsize)
	arg := 2.0 * math.Pi / float64(fsize)
	sum := 0.0
	for i := 0; i < fsize; i++ {
		window[i] = math.Sqrt(0.54 - 0.46*math.Cos(float64(i)*arg))
		sum += window[i]
	}
	invCoherentGain := float64(fsize) / sum
	for i := range window {
		window[i] *= invCoherentGain
	}
	return window, nil
}
