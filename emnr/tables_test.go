package emnr

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTablesShape(t *testing.T) {
	tbl := DefaultTables()
	assert.Len(t, tbl.GG, ggGridDim*ggGridDim)
	assert.Len(t, tbl.GGS, ggGridDim*ggGridDim)
	assert.Len(t, tbl.ZetaHat, zetaGridDim*zetaGridDim)
	for _, v := range tbl.ZetaValid {
		assert.Equal(t, int32(1), v, "the default zeta grid marks every cell valid")
	}
	for _, v := range tbl.ZetaHat {
		assert.Equal(t, 1.0, v, "the default zeta grid always keeps the speech")
	}
}

func TestDefaultTablesGainBounded(t *testing.T) {
	tbl := DefaultTables()
	for _, v := range tbl.GG {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.False(t, v != v, "table must not contain NaN")
	}
}

func TestWriteZetaHatRoundTrip(t *testing.T) {
	tbl := DefaultTables()
	tbl.ZetaHat[5] = 0.25
	tbl.ZetaValid[5] = 0

	var buf bytes.Buffer
	require.NoError(t, WriteZetaHat(&buf, tbl))

	loaded, err := loadZetaHat(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl.ZetaRows, loaded.ZetaRows)
	assert.Equal(t, tbl.ZetaCols, loaded.ZetaCols)
	assert.Equal(t, tbl.ZetaGammaMin, loaded.ZetaGammaMin)
	assert.Equal(t, tbl.ZetaGammaMax, loaded.ZetaGammaMax)
	assert.Equal(t, tbl.ZetaHat, loaded.ZetaHat)
	assert.Equal(t, tbl.ZetaValid, loaded.ZetaValid)
}

func TestLoadTablesFallsBackOnShortRead(t *testing.T) {
	// A reader with too little data to satisfy either sidecar format
	// should fall back to DefaultTables without surfacing an error.
	bogus := bytes.NewReader([]byte{1, 2, 3})
	tbl := LoadTables(bogus, bogus)
	require.NotNil(t, tbl)
	assert.Len(t, tbl.GG, ggGridDim*ggGridDim)
}

func TestCellToLinearInvertsGetKeyQuantisation(t *testing.T) {
	// Round-tripping cellToLinear through the same 10*log10(x/1e-3)*4
	// quantisation getKey uses should land back on the cell index.
	for n := 0; n < ggGridDim; n += 17 {
		x := cellToLinear(n)
		assert.Greater(t, x, 0.0)
		assert.InDelta(t, float64(n), 4.0*10.0*math.Log10(x/1.0e-3), 1e-9, "cell %d", n)
	}
}
