// Package audio is the peripheral binding between an Engine and a real
// output device. It is the only package in this module that imports
// ebiten's audio backend; the core engine never imports it, so it can
// be embedded in a host with no audio device at all (the offline WAV
// renderer, tests).
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// MonoRenderer is the minimal surface the audio host needs from an
// Engine: fill a buffer with mono samples in [-1,+1].
type MonoRenderer interface {
	RenderBlock(out []float32)
}

// EngineSource adapts a MonoRenderer to ebiten's stereo stream by
// duplicating every mono sample to both channels.
type EngineSource struct {
	engine MonoRenderer
	mono   []float32
}

func NewEngineSource(engine MonoRenderer) *EngineSource {
	return &EngineSource{engine: engine}
}

// Process fills dst with interleaved stereo float32 samples.
func (s *EngineSource) Process(dst []float32) {
	frames := len(dst) / 2
	if cap(s.mono) < frames {
		s.mono = make([]float32, frames)
	}
	s.mono = s.mono[:frames]
	s.engine.RenderBlock(s.mono)
	for i, v := range s.mono {
		dst[2*i] = v
		dst[2*i+1] = v
	}
}

type StreamReader struct {
	mu     sync.Mutex
	source *EngineSource
	buf    []float32
}

func NewStreamReader(source *EngineSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Host owns the shared ebiten audio context and one playing stream.
type Host struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewHost opens a playback stream against engine at sampleRate.
func NewHost(sampleRate int, engine MonoRenderer) (*Host, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(NewEngineSource(engine))
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Host{player: pl, reader: reader}, nil
}

func (h *Host) Play()           { h.player.Play() }
func (h *Host) Pause()          { h.player.Pause() }
func (h *Host) IsPlaying() bool { return h.player.IsPlaying() }

// Position returns the current playback position (what the listener actually hears).
func (h *Host) Position() time.Duration {
	return h.player.Position()
}

func (h *Host) Stop() error {
	h.player.Pause()
	h.player.Close()
	return h.reader.Close()
}
