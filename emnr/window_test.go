package emnr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWindowHannRoot(t *testing.T) {
	window, err := buildWindow(WindowHannRoot, 2048)
	require.NoError(t, err)
	require.Len(t, window, 2048)

	var sum float64
	for _, v := range window {
		sum += v
	}
	assert.InDelta(t, 2048.0, sum, 1e-6, "window is normalised to unity coherent gain")
}

func TestBuildWindowUnsupportedType(t *testing.T) {
	_, err := buildWindow(WindowType(99), 2048)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedWindow))
}
