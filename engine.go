// Package dx7fm implements a real-time six-operator FM synthesis
// engine in the style of classic hardware FM synthesizers: a fixed
// voice pool, a 32-algorithm router, four-stage envelopes, and a
// running-status MIDI parser feeding it.
package dx7fm

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sixop/dx7fm/internal/controllers"
	"github.com/sixop/dx7fm/internal/midi"
	"github.com/sixop/dx7fm/internal/patch"
	"github.com/sixop/dx7fm/internal/voice"
)

// Stats mirrors spec.md §6's stats() surface.
type Stats struct {
	ActiveVoices         uint32
	NotesPlayed          uint64
	VoiceSteals          uint64
	MIDIErrors           uint64
	ProgramChanges       uint64
	ChannelPressureEvents uint64
}

// Engine is the single entry point a host binds against: one voice
// pool, one controllers block, one MIDI parser, and the active patch.
// A coarse mutex guards the voice pool and patch swaps (mirroring the
// teacher's Player.mu around engine state); the Controllers block uses
// its own atomic fields so the audio thread never blocks on a
// controller read (spec.md §5).
type Engine struct {
	mu sync.Mutex

	sampleRate float64
	channel    int // 1-based, per spec.md §6

	pool        voice.Pool
	controllers *controllers.Block
	parser      *midi.Parser
	patch       patch.Patch

	running    atomic.Bool
	progChange atomic.Uint64
	chanPress  atomic.Uint64
}

// New allocates an engine for the given patch, sample rate, and
// 1-based MIDI channel (spec.md §6's `init`). The pool and controllers
// are allocated once, here; there is no per-note or per-sample
// allocation afterward.
func New(p patch.Patch, sampleRate float64, channel int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, errors.New("dx7fm: sample rate must be positive")
	}
	if channel < 1 || channel > 16 {
		return nil, errors.New("dx7fm: channel must be in 1..16")
	}
	e := &Engine{
		sampleRate:  sampleRate,
		channel:     channel,
		controllers: controllers.NewBlock(),
		parser:      midi.NewParser(),
		patch:       p.Clamp(),
	}
	e.running.Store(true)
	return e, nil
}

// LoadPatch swaps the active patch. Voices already sounding keep the
// patch snapshot they were triggered with (internal/voice.Voice caches
// it at NoteOn); only new notes use the new patch.
func (e *Engine) LoadPatch(p patch.Patch) {
	e.mu.Lock()
	e.patch = p.Clamp()
	e.mu.Unlock()
}

// Start enables the render path.
func (e *Engine) Start() { e.running.Store(true) }

// Stop disables the render path; RenderBlock continues to produce
// silence rather than stopping being callable.
func (e *Engine) Stop() { e.running.Store(false) }

// Shutdown stops rendering and force-releases every voice; the pool
// and controllers stay allocated. Cooperative per spec.md §5: ingress
// callbacks arriving afterward observe a stopped engine and no-op.
func (e *Engine) Shutdown() {
	e.running.Store(false)
	e.mu.Lock()
	e.pool.AllSoundOff()
	e.mu.Unlock()
}

// FeedMIDI feeds raw wire bytes into the running-status parser and
// applies whatever events complete, one byte at a time. Thread-safe;
// callable from any platform MIDI callback (spec.md §6's `feed_midi`).
func (e *Engine) FeedMIDI(data []byte) {
	for _, b := range data {
		ev, ok := e.parser.Feed(b)
		if !ok {
			continue
		}
		e.applyEvent(ev)
	}
}

func (e *Engine) applyEvent(ev midi.Event) {
	if !e.running.Load() {
		return
	}
	switch ev.Type {
	case midi.EventNoteOn:
		if ev.Channel+1 != e.channel {
			return
		}
		e.mu.Lock()
		e.pool.NoteOn(e.patch, ev.Data1, ev.Channel, float64(ev.Data2)/127.0, e.sampleRate)
		e.mu.Unlock()

	case midi.EventNoteOff:
		if ev.Channel+1 != e.channel {
			return
		}
		e.mu.Lock()
		e.pool.NoteOff(ev.Data1, ev.Channel, e.controllers.SustainPedal())
		e.mu.Unlock()

	case midi.EventControlChange:
		if ev.Channel+1 != e.channel {
			return
		}
		e.applyControlChange(ev.Data1, ev.Data2)

	case midi.EventPitchBend:
		if ev.Channel+1 != e.channel {
			return
		}
		e.controllers.SetPitchBendSemitones(float64(ev.Bend) / 8192.0 * 2.0)

	case midi.EventProgramChange:
		if ev.Channel+1 != e.channel {
			return
		}
		e.progChange.Add(1)

	case midi.EventChannelPressure:
		if ev.Channel+1 != e.channel {
			return
		}
		e.chanPress.Add(1)

	case midi.EventSysEx:
		if decoded, err := patch.DecodeSysEx(ev.SysEx); err == nil {
			e.LoadPatch(decoded)
		}
	}
}

func (e *Engine) applyControlChange(cc, value int) {
	e.controllers.SetRawCC(cc, value)
	switch cc {
	case 1:
		e.controllers.SetModWheel(float64(value) / 127.0)
	case 2:
		e.controllers.SetBreath(float64(value) / 127.0)
	case 4:
		e.controllers.SetFoot(float64(value) / 127.0)
	case 7:
		e.controllers.SetVolume(float64(value) / 127.0)
	case 10:
		e.controllers.SetPan(float64(value)/63.5 - 1.0)
	case 11:
		e.controllers.SetExpression(float64(value) / 127.0)
	case 64:
		held := value >= 64
		wasHeld := e.controllers.SustainPedal()
		e.controllers.SetSustainPedal(held)
		if wasHeld && !held {
			e.mu.Lock()
			e.pool.SustainRelease()
			e.mu.Unlock()
		}
	case 65:
		e.controllers.SetPortamento(value >= 64)
	case 120, 123:
		e.mu.Lock()
		e.pool.AllSoundOff()
		e.mu.Unlock()
	case 121:
		e.controllers.Reset()
	}
}

// RenderBlock fills out with mono samples in [-1,+1], scaled 0.5x and
// soft-clipped, per spec.md §6. It never fails: when the engine is
// stopped or starved of voices it simply produces silence.
func (e *Engine) RenderBlock(out []float32) {
	if !e.running.Load() {
		for i := range out {
			out[i] = 0
		}
		return
	}

	lfoSpeedMul := voice.SpeedMultiplier(e.controllers.ModWheel(), e.controllers.ModWheel() != 0)
	bend := e.controllers.PitchBendSemitones()
	volume := e.controllers.Volume() * e.controllers.Expression()

	e.mu.Lock()
	p := e.patch
	for i := range out {
		lfoHz := voice.FrequencyHz(p.LFOSpeed, lfoSpeedMul)
		s := e.pool.Render(e.sampleRate, lfoHz, bend)
		out[i] = softClip(float32(s * 0.5 * volume))
	}
	e.mu.Unlock()
}

func softClip(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Stats reports the engine's current activity counters (spec.md §6's
// `stats`).
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	vs := e.pool.Stats()
	e.mu.Unlock()
	return Stats{
		ActiveVoices:          vs.ActiveCount,
		NotesPlayed:           vs.NotesPlayed,
		VoiceSteals:           vs.VoiceSteals,
		MIDIErrors:            e.parser.Errors(),
		ProgramChanges:        e.progChange.Load(),
		ChannelPressureEvents: e.chanPress.Load(),
	}
}
