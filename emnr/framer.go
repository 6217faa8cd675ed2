package emnr

// Framer owns the ring-buffered overlap-add input/output accumulators and
// the L save buffers used to reassemble the synthesised signal, per
// spec.md §3 FrameBuffers and §4.1.
type Framer struct {
	fsize int // N
	hop   int // N/L
	ovrlp int // L
	bsize int // B

	inaccum []float64
	iainidx int
	iaoutidx int
	nsamps   int

	outaccum    []float64
	oainidx     int
	oaoutidx    int
	initOainidx int

	save    [][]float64
	saveidx int

	window []float64
}

// NewFramer allocates a Framer's buffers. The input accumulator holds
// max(N, B+N-hop) samples: the N-hop samples left unread after the last
// frame plus the B samples of the next push. The output accumulator and its
// initial write index follow calc_emnr's rules.
func NewFramer(fsize, ovrlp, bsize int, window []float64) *Framer {
	hop := fsize / ovrlp
	f := &Framer{
		fsize: fsize,
		hop:   hop,
		ovrlp: ovrlp,
		bsize: bsize,
		window: window,
	}

	iasize := fsize
	if bsize+fsize-hop > iasize {
		iasize = bsize + fsize - hop
	}
	f.inaccum = make([]float64, iasize)

	var oasize int
	if fsize > bsize {
		if bsize > hop {
			oasize = bsize
		} else {
			oasize = hop
		}
		f.oainidx = mod(fsize-bsize-hop, oasize)
	} else {
		oasize = bsize
		f.oainidx = fsize - hop
	}
	f.outaccum = make([]float64, oasize)
	f.initOainidx = f.oainidx

	f.save = make([][]float64, ovrlp)
	for i := range f.save {
		f.save[i] = make([]float64, fsize)
	}
	return f
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Push accumulates one host block (length bsize, I samples only) into the
// input ring buffer.
func (f *Framer) Push(in []float64) {
	for _, v := range in {
		f.inaccum[f.iainidx] = v
		f.iainidx = (f.iainidx + 1) % len(f.inaccum)
	}
	f.nsamps += f.bsize
}

// FrameReady reports whether a full analysis frame is available.
func (f *Framer) FrameReady() bool {
	return f.nsamps >= f.fsize
}

// NextFrame windows the next N samples starting at iaoutidx into dst
// (length fsize) and advances iaoutidx/nsamps by hop. Call only when
// FrameReady is true.
func (f *Framer) NextFrame(dst []float64) {
	j := f.iaoutidx
	for i := 0; i < f.fsize; i++ {
		dst[i] = f.window[i] * f.inaccum[j]
		j = (j + 1) % len(f.inaccum)
	}
	f.iaoutidx = (f.iaoutidx + f.hop) % len(f.inaccum)
	f.nsamps -= f.hop
}

// StoreSynthesis windows a synthesised N-sample frame and overlap-adds it
// into the output accumulator, per spec.md §4.1 steps 4-5.
func (f *Framer) StoreSynthesis(frame []float64) {
	save := f.save[f.saveidx]
	for i := 0; i < f.fsize; i++ {
		save[i] = f.window[i] * frame[i]
	}
	oasize := len(f.outaccum)
	for i := f.ovrlp; i > 0; i-- {
		sbuff := (f.saveidx + i) % f.ovrlp
		sbegin := f.hop * (f.ovrlp - i)
		k := f.oainidx
		for j := sbegin; j < f.hop+sbegin; j++ {
			if i == f.ovrlp {
				f.outaccum[k] = f.save[sbuff][j]
			} else {
				f.outaccum[k] += f.save[sbuff][j]
			}
			k = (k + 1) % oasize
		}
	}
	f.saveidx = (f.saveidx + 1) % f.ovrlp
	f.oainidx = (f.oainidx + f.hop) % oasize
}

// Pull drains bsize samples (I only, Q is the caller's responsibility) from
// the output accumulator into dst.
func (f *Framer) Pull(dst []float64) {
	for i := range dst {
		dst[i] = f.outaccum[f.oaoutidx]
		f.oaoutidx = (f.oaoutidx + 1) % len(f.outaccum)
	}
}

// Flush zeroes all accumulators/save buffers and restores the index seeds,
// per spec.md §8 ("flush restores iainidx=iaoutidx=oaoutidx=0,
// oainidx=init_oainidx, saveidx=0, nsamps=0").
func (f *Framer) Flush() {
	for i := range f.inaccum {
		f.inaccum[i] = 0
	}
	for _, s := range f.save {
		for i := range s {
			s[i] = 0
		}
	}
	for i := range f.outaccum {
		f.outaccum[i] = 0
	}
	f.nsamps = 0
	f.iainidx = 0
	f.iaoutidx = 0
	f.oainidx = f.initOainidx
	f.oaoutidx = 0
	f.saveidx = 0
}
