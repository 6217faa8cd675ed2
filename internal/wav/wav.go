// Package wav reads and writes mono 16-bit PCM WAV files, used by emnrd to
// run the engine against recorded IQ/audio captures.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Header holds metadata extracted from a WAV file.
type Header struct {
	SampleRate    int
	NumChannels   int
	BitsPerSample int
}

// Read parses a 16-bit PCM WAV file from raw bytes. Samples are normalised
// to [-1.0, 1.0]; stereo input is mixed down to mono by averaging channels.
func Read(data []byte) ([]float64, int, error) {
	if len(data) < 12 {
		return nil, 0, errors.New("wav: file too short")
	}
	if string(data[0:4]) != "RIFF" {
		return nil, 0, errors.New("wav: missing RIFF header")
	}
	if string(data[8:12]) != "WAVE" {
		return nil, 0, errors.New("wav: missing WAVE identifier")
	}

	var header *Header
	var pcmData []byte

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		chunkStart := pos + 8

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 || chunkStart+16 > len(data) {
				return nil, 0, errors.New("wav: fmt chunk truncated")
			}
			audioFormat := binary.LittleEndian.Uint16(data[chunkStart : chunkStart+2])
			if audioFormat != 1 {
				return nil, 0, fmt.Errorf("wav: unsupported audio format %d (only PCM/1 supported)", audioFormat)
			}
			header = &Header{
				NumChannels:   int(binary.LittleEndian.Uint16(data[chunkStart+2 : chunkStart+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(data[chunkStart+4 : chunkStart+8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(data[chunkStart+14 : chunkStart+16])),
			}
			if header.BitsPerSample != 16 {
				return nil, 0, fmt.Errorf("wav: unsupported bits per sample %d (only 16 supported)", header.BitsPerSample)
			}
		case "data":
			end := chunkStart + chunkSize
			if end > len(data) {
				end = len(data)
			}
			pcmData = data[chunkStart:end]
		}

		pos = chunkStart + chunkSize
		if chunkSize%2 != 0 {
			pos++
		}
	}

	if header == nil {
		return nil, 0, errors.New("wav: no fmt chunk found")
	}
	if pcmData == nil {
		return nil, 0, errors.New("wav: no data chunk found")
	}

	numSamples := len(pcmData) / 2
	raw := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		s := int16(binary.LittleEndian.Uint16(pcmData[i*2 : i*2+2]))
		raw[i] = float64(s) / 32768.0
	}

	if header.NumChannels == 2 {
		monoLen := numSamples / 2
		mono := make([]float64, monoLen)
		for i := 0; i < monoLen; i++ {
			mono[i] = (raw[i*2] + raw[i*2+1]) / 2.0
		}
		return mono, header.SampleRate, nil
	}
	return raw, header.SampleRate, nil
}

// Write encodes mono float64 samples (in [-1.0, 1.0]) as a 16-bit PCM WAV
// file.
func Write(samples []float64, sampleRate int) []byte {
	numSamples := len(samples)
	dataSize := numSamples * 2
	fileSize := 36 + dataSize

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		var i16 int16
		if s >= 0 {
			i16 = int16(math.Round(s * 32767))
		} else {
			i16 = int16(math.Round(s * 32768))
		}
		binary.Write(buf, binary.LittleEndian, i16)
	}

	return buf.Bytes()
}
