// Package controllers holds the live, continuously-updated performance
// controller state (pitch bend, mod wheel, sustain, raw CC vector) that
// spec.md §3 and §5 describe as shared between the MIDI ingress
// goroutine and the audio render path without a lock, using the
// teacher repo's atomic-field pattern (internal/fm/engine.go's
// masterGain) generalized to every controller value.
package controllers

import (
	"math"
	"sync/atomic"
)

// Block is the full set of live performance controllers for one engine.
// Every field is updated from the MIDI thread and read from the audio
// thread; both sides go through the atomic accessors below, never the
// raw fields directly.
type Block struct {
	pitchBend  atomic.Uint64 // semitones, signed float64 bits
	modWheel   atomic.Uint64 // 0..1
	breath     atomic.Uint64 // 0..1
	foot       atomic.Uint64 // 0..1
	volume     atomic.Uint64 // 0..1
	expression atomic.Uint64 // 0..1
	pan        atomic.Uint64 // -1..1

	sustainPedal atomic.Bool
	portamento   atomic.Bool

	raw [128]atomic.Uint32 // last raw CC value 0..127, per controller number
}

// NewBlock returns a Block with spec.md §3's documented defaults:
// volume and expression at unity, everything else at rest.
func NewBlock() *Block {
	b := &Block{}
	b.volume.Store(math.Float64bits(1.0))
	b.expression.Store(math.Float64bits(1.0))
	return b
}

func loadF64(a *atomic.Uint64) float64  { return math.Float64frombits(a.Load()) }
func storeF64(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }

// PitchBendSemitones returns the current pitch-bend offset.
func (b *Block) PitchBendSemitones() float64 { return loadF64(&b.pitchBend) }

// SetPitchBendSemitones sets the current pitch-bend offset.
func (b *Block) SetPitchBendSemitones(v float64) { storeF64(&b.pitchBend, v) }

// ModWheel returns the mod wheel position in [0,1].
func (b *Block) ModWheel() float64 { return loadF64(&b.modWheel) }

// SetModWheel sets the mod wheel position.
func (b *Block) SetModWheel(v float64) { storeF64(&b.modWheel, v) }

// Breath returns the breath controller position in [0,1].
func (b *Block) Breath() float64 { return loadF64(&b.breath) }

// SetBreath sets the breath controller position.
func (b *Block) SetBreath(v float64) { storeF64(&b.breath, v) }

// Foot returns the foot controller position in [0,1].
func (b *Block) Foot() float64 { return loadF64(&b.foot) }

// SetFoot sets the foot controller position.
func (b *Block) SetFoot(v float64) { storeF64(&b.foot, v) }

// Volume returns channel volume in [0,1].
func (b *Block) Volume() float64 { return loadF64(&b.volume) }

// SetVolume sets channel volume.
func (b *Block) SetVolume(v float64) { storeF64(&b.volume, v) }

// Expression returns expression in [0,1].
func (b *Block) Expression() float64 { return loadF64(&b.expression) }

// SetExpression sets expression.
func (b *Block) SetExpression(v float64) { storeF64(&b.expression, v) }

// Pan returns stereo pan in [-1,1].
func (b *Block) Pan() float64 { return loadF64(&b.pan) }

// SetPan sets stereo pan.
func (b *Block) SetPan(v float64) { storeF64(&b.pan, v) }

// SustainPedal reports whether the sustain pedal (CC64) is currently held.
func (b *Block) SustainPedal() bool { return b.sustainPedal.Load() }

// SetSustainPedal sets the sustain pedal state.
func (b *Block) SetSustainPedal(held bool) { b.sustainPedal.Store(held) }

// Portamento reports whether portamento (CC65) is enabled.
func (b *Block) Portamento() bool { return b.portamento.Load() }

// SetPortamento sets the portamento switch.
func (b *Block) SetPortamento(on bool) { b.portamento.Store(on) }

// RawCC returns the last raw 0..127 value received for controller
// number n, or 0 if out of range or never set.
func (b *Block) RawCC(n int) int {
	if n < 0 || n >= len(b.raw) {
		return 0
	}
	return int(b.raw[n].Load())
}

// SetRawCC records the last raw value for controller number n and
// returns false if n is out of MIDI's 0..127 range.
func (b *Block) SetRawCC(n, value int) bool {
	if n < 0 || n >= len(b.raw) {
		return false
	}
	b.raw[n].Store(uint32(value))
	return true
}

// Reset restores every controller to spec.md §4.5's reset-controllers
// (CC121) defaults, mirroring §3's init defaults verbatim: volume and
// expression return to 1.0, pitch bend/mod wheel/breath/foot/pan
// return to rest, and sustain/portamento release. The raw CC vector is
// left untouched — it's a diagnostic mirror of the last value seen per
// controller number, not part of the synthesis-facing controller
// state CC121 resets.
func (b *Block) Reset() {
	b.pitchBend.Store(0)
	b.modWheel.Store(0)
	b.breath.Store(0)
	b.foot.Store(0)
	storeF64(&b.volume, 1.0)
	storeF64(&b.expression, 1.0)
	b.pan.Store(0)
	b.sustainPedal.Store(false)
	b.portamento.Store(false)
}
