package emnr

import (
	"encoding/binary"
	"io"
	"math"
)

// Grid dimensions that must match for interoperability with pre-trained
// tables (spec.md §6).
const (
	ggGridDim   = 241
	zetaGridDim = 60
)

// TableStore holds the two precomputed 241x241 gain-surface lookup tables
// (GG, GGS) and the 60x60 learned keep/reject map (zeta-hat) used by
// GainTwoStage. It is immutable after load/build.
type TableStore struct {
	// GG and GGS are row-major 241x241 tables indexed as
	// T[241*n_xi + n_gamma], per spec.md §4.6 method 2.
	GG  []float64
	GGS []float64

	// ZetaRows, ZetaCols describe the zeta-hat grid (spec.md requires
	// 60x60 for interoperability, but the loader preserves whatever a
	// sidecar file declares).
	ZetaRows, ZetaCols                     int
	ZetaGammaMin, ZetaGammaMax             float64
	ZetaXiMin, ZetaXiMax                   float64
	ZetaHat                                []float64
	ZetaValid                              []int32
}

// DefaultTables builds the compiled-in fallback tables used when no sidecar
// file is present or readable (spec.md §6, §7). The original ships tables
// trained offline against (gamma, xi) pairs; in the absence of that
// training data this builds the GG/GGS surfaces analytically from the same
// closed-form gain formulas the other gain methods already implement
// (method 0's Gaussian-amplitude MMSE formula without the speech-presence
// weighting, evaluated at (gamma, xi) for GG and at (gamma, xi/(1-q)) for
// GGS), which is the same function family method 2's
// table is a tabulation of. The zeta-hat grid defaults to "every cell
// valid, keep the speech" (zeta==1 everywhere), matching scenario 4 of
// spec.md §8 exactly.
func DefaultTables() *TableStore {
	t := &TableStore{
		GG:           make([]float64, ggGridDim*ggGridDim),
		GGS:          make([]float64, ggGridDim*ggGridDim),
		ZetaRows:     zetaGridDim,
		ZetaCols:     zetaGridDim,
		ZetaGammaMin: -30,
		ZetaGammaMax: 30,
		ZetaXiMin:    -30,
		ZetaXiMax:    30,
		ZetaHat:      make([]float64, zetaGridDim*zetaGridDim),
		ZetaValid:    make([]int32, zetaGridDim*zetaGridDim),
	}
	for nxi := 0; nxi < ggGridDim; nxi++ {
		xi := cellToLinear(nxi)
		for ngamma := 0; ngamma < ggGridDim; ngamma++ {
			gamma := cellToLinear(ngamma)
			idx := ggGridDim*nxi + ngamma
			t.GG[idx] = gaussianAmplitudeGain(gamma, xi)
			t.GGS[idx] = gaussianAmplitudeGain(gamma, xi/(1-defaultQ))
		}
	}
	for i := range t.ZetaHat {
		t.ZetaHat[i] = 1.0
		t.ZetaValid[i] = 1
	}
	return t
}

// cellToLinear inverts the index quantisation in getKey/getZeta
// (10*log10(x/1e-3)*4) back to a linear value, used only to seed the
// default GG/GGS surfaces analytically.
func cellToLinear(n int) float64 {
	db := float64(n) / 4.0
	return 1.0e-3 * math.Pow(10, db/10.0)
}

// gaussianAmplitudeGain evaluates the Ephraim-Malah 1984 Gaussian-amplitude
// gain formula at a given (gamma, xi) pair, independent of any per-bin
// state and without the speech-presence weighting. DefaultTables uses it;
// GainAmplitudeMMSE evaluates the weighted form in emGaussianAmplitude.
func gaussianAmplitudeGain(gamma, xi float64) float64 {
	if gamma <= 0 {
		return 0
	}
	v := (xi / (1 + xi)) * gamma
	g := gf1p5 * math.Sqrt(v) / gamma * math.Exp(-0.5*v) *
		((1+v)*besselI0(0.5*v) + v*besselI1(0.5*v))
	if math.IsNaN(g) {
		return 0.01
	}
	return g
}

// zetaHatFileHeader is the binary layout of the optional "zetaHat.bin"
// sidecar: rows, cols int32; gmin, gmax, ximin, ximax float64; then
// rows*cols float64 zetaHat values; then rows*cols int32 validity flags.
// All little-endian, matching spec.md §6.
func loadZetaHat(r io.Reader) (*TableStore, error) {
	var rows, cols int32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return nil, err
	}
	t := &TableStore{ZetaRows: int(rows), ZetaCols: int(cols)}
	for _, dst := range []*float64{&t.ZetaGammaMin, &t.ZetaGammaMax, &t.ZetaXiMin, &t.ZetaXiMax} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, err
		}
	}
	n := int(rows) * int(cols)
	t.ZetaHat = make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, &t.ZetaHat); err != nil {
		return nil, err
	}
	t.ZetaValid = make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, &t.ZetaValid); err != nil {
		return nil, err
	}
	return t, nil
}

// loadGainSurfaces reads the two contiguous 241x241 little-endian double
// arrays (GG then GGS) from the optional "calculus" sidecar.
func loadGainSurfaces(r io.Reader) (gg, ggs []float64, err error) {
	gg = make([]float64, ggGridDim*ggGridDim)
	if err = binary.Read(r, binary.LittleEndian, &gg); err != nil {
		return nil, nil, err
	}
	ggs = make([]float64, ggGridDim*ggGridDim)
	if err = binary.Read(r, binary.LittleEndian, &ggs); err != nil {
		return nil, nil, err
	}
	return gg, ggs, nil
}

// LoadTables builds a TableStore from sidecar readers. Either reader may be
// nil, or return an error/short read; per spec.md §7 this is not a
// user-visible error, it silently falls back to the compiled-in default for
// whichever piece failed to load.
func LoadTables(gainSurfaces, zetaHat io.Reader) *TableStore {
	def := DefaultTables()
	if gainSurfaces != nil {
		if gg, ggs, err := loadGainSurfaces(gainSurfaces); err == nil {
			def.GG, def.GGS = gg, ggs
		}
	}
	if zetaHat != nil {
		if z, err := loadZetaHat(zetaHat); err == nil {
			def.ZetaRows, def.ZetaCols = z.ZetaRows, z.ZetaCols
			def.ZetaGammaMin, def.ZetaGammaMax = z.ZetaGammaMin, z.ZetaGammaMax
			def.ZetaXiMin, def.ZetaXiMax = z.ZetaXiMin, z.ZetaXiMax
			def.ZetaHat, def.ZetaValid = z.ZetaHat, z.ZetaValid
		}
	}
	return def
}

// WriteZetaHat serialises t's zeta-hat grid in the sidecar format
// LoadTables reads, mirroring the original's CwriteZetaHat export tool
// (spec.md SUPPLEMENTED FEATURES).
func WriteZetaHat(w io.Writer, t *TableStore) error {
	for _, v := range []int32{int32(t.ZetaRows), int32(t.ZetaCols)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, v := range []float64{t.ZetaGammaMin, t.ZetaGammaMax, t.ZetaXiMin, t.ZetaXiMax} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, t.ZetaHat); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, t.ZetaValid)
}
