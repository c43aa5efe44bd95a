package voice

import "github.com/sixop/dx7fm/internal/patch"

// PoolSize is the fixed number of simultaneously sounding voices
// (spec.md §3).
const PoolSize = 16

// Stats mirrors the counters spec.md §6 requires the engine to expose.
type Stats struct {
	ActiveCount uint32
	NotesPlayed uint64
	VoiceSteals uint64
}

// Pool is the fixed-size voice allocator. It is not safe for concurrent
// use on its own; the caller (the engine's render loop) is expected to
// hold whatever lock guards patch/controller changes.
type Pool struct {
	voices [PoolSize]Voice
	clock  uint64

	notesPlayed uint64
	voiceSteals uint64
}

// NoteOn allocates a voice for (channel, midiNote): the first free slot,
// or if none is free, the oldest currently-sounding voice (spec.md
// §4.4's oldest-voice-steal policy).
func (p *Pool) NoteOn(pt patch.Patch, midiNote, channel int, velocity, sampleRate float64) {
	p.clock++
	p.notesPlayed++

	idx := p.findFree()
	if idx < 0 {
		idx = p.findOldest()
		p.voiceSteals++
	}
	p.voices[idx].NoteOn(pt, midiNote, channel, velocity, sampleRate, p.clock)
}

// NoteOff releases every active, matching voice on the given channel
// and note (spec.md §4.4: multiple voices can share a note only via
// re-triggering, so this may affect more than one slot across overlap).
func (p *Pool) NoteOff(midiNote, channel int, sustainActive bool) {
	for i := range p.voices {
		v := &p.voices[i]
		if v.Active && v.MIDINote == midiNote && v.Channel == channel {
			v.NoteOff(sustainActive)
		}
	}
}

// SustainRelease releases every voice that deferred its note-off while
// the sustain pedal was held, regardless of channel.
func (p *Pool) SustainRelease() {
	for i := range p.voices {
		p.voices[i].SustainRelease()
	}
}

// AllSoundOff force-kills every voice (CC 120/123).
func (p *Pool) AllSoundOff() {
	for i := range p.voices {
		v := &p.voices[i]
		v.Kill()
		v.Active = false
	}
}

// Render sums one sample from every active voice.
func (p *Pool) Render(sampleRate, lfoFreqHz, pitchBendSemitones float64) float64 {
	var sum float64
	for i := range p.voices {
		v := &p.voices[i]
		if !v.Active {
			continue
		}
		s, _ := v.Step(sampleRate, lfoFreqHz, pitchBendSemitones)
		sum += s
	}
	return sum
}

// Stats reports the pool's current activity counters.
func (p *Pool) Stats() Stats {
	var active uint32
	for i := range p.voices {
		if p.voices[i].Active {
			active++
		}
	}
	return Stats{
		ActiveCount: active,
		NotesPlayed: p.notesPlayed,
		VoiceSteals: p.voiceSteals,
	}
}

func (p *Pool) findFree() int {
	for i := range p.voices {
		if !p.voices[i].Active {
			return i
		}
	}
	return -1
}

func (p *Pool) findOldest() int {
	oldest := 0
	for i := 1; i < PoolSize; i++ {
		if p.voices[i].NoteOnTime < p.voices[oldest].NoteOnTime {
			oldest = i
		}
	}
	return oldest
}
