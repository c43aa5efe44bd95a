package voice

import (
	"math"

	"github.com/sixop/dx7fm/internal/patch"
)

// Voice is one of the pool's fixed slots: six operators wired by an
// algorithm, a shared LFO, and the bookkeeping needed to steal or
// release it (spec.md §3's VoiceState).
type Voice struct {
	Active      bool
	MIDINote    int
	Channel     int
	Velocity    float64
	NoteOnTime  uint64
	SustainHeld bool

	Operators [6]Operator
	LFOState  LFO

	patch     patch.Patch
	algorithm Algorithm
}

// NoteOn claims the voice for a new note: resets every operator,
// recomputes operator frequencies from the patch's per-operator ratio
// and detune, and starts the envelopes.
func (v *Voice) NoteOn(p patch.Patch, midiNote, channel int, velocity float64, sampleRate float64, startTime uint64) {
	v.Active = true
	v.MIDINote = midiNote
	v.Channel = channel
	v.Velocity = velocity
	v.NoteOnTime = startTime
	v.SustainHeld = false
	v.patch = p
	v.algorithm = AlgorithmAt(p.Algorithm)
	v.LFOState.Reset()

	baseFreq := noteToFreq(midiNote + p.Transpose)
	for i := range v.Operators {
		op := &v.Operators[i]
		params := p.Operators[i]
		op.Freq = operatorFrequency(baseFreq, params.FreqRatio, params.Detune)
		op.NoteOn(params, midiNote, sampleRate)
	}
}

// NoteOff begins the release stage of every operator, unless the
// sustain pedal is currently held (spec.md §4.5's deferred release).
func (v *Voice) NoteOff(sustainActive bool) {
	if sustainActive {
		v.SustainHeld = true
		return
	}
	v.release()
}

// SustainRelease is called when the sustain pedal is lifted; any voice
// that had its note-off deferred now actually releases.
func (v *Voice) SustainRelease() {
	if v.SustainHeld {
		v.SustainHeld = false
		v.release()
	}
}

func (v *Voice) release() {
	for i := range v.Operators {
		v.Operators[i].Release()
	}
}

// Kill force-releases the voice regardless of sustain, for all-sound-off
// (CC 120/123) handling.
func (v *Voice) Kill() {
	v.SustainHeld = false
	v.release()
}

// Step renders one sample from the voice, given the current LFO and
// pitch-bend modulation inputs, and reports whether the voice is still
// audible afterward (spec.md §4.4's deactivation check).
func (v *Voice) Step(sampleRate, lfoFreqHz, pitchBendSemitones float64) (sample float64, stillActive bool) {
	if !v.Active {
		return 0, false
	}

	lfoValue := v.LFOState.Advance(lfoFreqHz, sampleRate, v.patch.LFOWave)
	bendMul := math.Pow(2, pitchBendSemitones/12.0)

	var sine, level [6]float64
	for i := range v.Operators {
		op := &v.Operators[i]
		p := v.patch.Operators[i]
		s, l := op.Step(p, sampleRate, v.Velocity, lfoValue, float64(v.patch.LFOPMD), float64(v.patch.LFOAMD), float64(v.patch.LFOPitchModSens), bendMul)
		sine[i] = s
		level[i] = l
	}

	sample = v.algorithm.Mix(sine, level, v.patch.Feedback)

	if v.allOperatorsQuiet() {
		v.Active = false
		return sample, false
	}
	return sample, true
}

func (v *Voice) allOperatorsQuiet() bool {
	const silenceThreshold = 0.001
	for i := range v.Operators {
		op := &v.Operators[i]
		if op.Env.ActiveStage() != StageRelease {
			return false
		}
		if op.Env.Level() >= silenceThreshold {
			return false
		}
	}
	return true
}

func noteToFreq(midiNote int) float64 {
	return 440.0 * math.Pow(2, (float64(midiNote)-69.0)/12.0)
}

// operatorFrequency implements spec.md §4.4's literal
// freq = base_hz * freq_ratio * 2^((detune/7)*0.01) exactly.
func operatorFrequency(baseFreq, ratio float64, detune int) float64 {
	freq := baseFreq * ratio
	if detune != 0 {
		freq *= math.Pow(2, (float64(detune)/7.0)*0.01)
	}
	return freq
}
