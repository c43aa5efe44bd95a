package dx7fm

import (
	"encoding/binary"
	"math"
)

// RenderSeconds renders seconds of mono audio from e at sampleRate, for
// the offline renderer and tests — a non-realtime convenience wrapper
// around RenderBlock, in the shape of the teacher's RenderSamples.
func RenderSeconds(e *Engine, sampleRate int, seconds float64) []float32 {
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames)
	e.RenderBlock(out)
	return out
}

// EncodeWAVFloat32LE wraps mono or interleaved float32 samples in a
// canonical 44-byte WAV header (IEEE float format code 3), exactly the
// teacher's offline.go encoder.
func EncodeWAVFloat32LE(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// FindLoopPoint scans mono samples for the nearest rising zero crossing
// at or after start, for the offline renderer's loop-point tool
// (spec.md §1: "the zero-crossing loop finder used only by the offline
// renderer"). Returns -1 if none is found before the end of samples.
func FindLoopPoint(samples []float32, start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i+1 < len(samples); i++ {
		if samples[i] <= 0 && samples[i+1] > 0 {
			return i + 1
		}
	}
	return -1
}
