package wav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 1.0, -1.0, 0.25}
	data := Write(samples, 8000)

	out, rate, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	require.Len(t, out, len(samples))
	for i, v := range samples {
		assert.InDelta(t, v, out[i], 1.0/32768.0)
	}
}

func TestReadRejectsNonWAV(t *testing.T) {
	_, _, err := Read([]byte("not a wav file"))
	assert.Error(t, err)
}

func TestReadStereoMixesDown(t *testing.T) {
	left := []float64{1.0, 1.0}
	right := []float64{-1.0, -1.0}
	interleaved := make([]float64, 0, 4)
	for i := range left {
		interleaved = append(interleaved, left[i], right[i])
	}

	data := writeStereoForTest(interleaved, 44100)
	out, rate, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, 44100, rate)
	for _, v := range out {
		assert.InDelta(t, 0.0, v, 1.0/32768.0, "averaging +1/-1 channels should cancel to ~0")
	}
}

// writeStereoForTest builds a minimal 2-channel 16-bit PCM WAV file; Write
// only emits mono, so stereo fixtures are built directly for this test.
func writeStereoForTest(interleaved []float64, rate int) []byte {
	mono := Write(interleaved, rate)
	// Patch the fmt chunk's channel count (offset 22) from 1 to 2 and its
	// block align (offset 32) from 2 to 4. The byte rate is left as Write
	// emitted it (Read ignores it), and the data chunk already holds the
	// interleaved samples.
	out := make([]byte, len(mono))
	copy(out, mono)
	out[22] = 2
	out[32] = 4 // block align = channels(2) * bytesPerSample(2)
	return out
}
