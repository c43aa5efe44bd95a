package voice

import "math"

// LFO waveform selectors for the patch's lfo_wave field (spec.md §3).
const (
	LFOWaveSine = iota
	LFOWaveTriangle
	LFOWaveSawUp
	LFOWaveSawDown
	LFOWaveSquare
	LFOWaveSampleHold
)

// LFO is the single low-frequency oscillator shared by one voice's six
// operators (spec.md §4.6). Sine is the only wave the core spec
// requires; this implementation also carries the other five, adapted
// from the teacher repo's multi-waveform internal/lfo package rather
// than left inert.
type LFO struct {
	Phase    float64
	held     float64
	haveHeld bool
}

// Advance steps the LFO by one sample at the given frequency (Hz) and
// returns its current output in [-1, 1] for the requested waveform.
func (l *LFO) Advance(freqHz, sampleRate float64, wave int) float64 {
	out := l.sample(wave)
	if sampleRate <= 0 {
		return out
	}
	oldPhase := l.Phase
	l.Phase += freqHz / sampleRate
	l.Phase -= math.Floor(l.Phase)
	if wave == LFOWaveSampleHold && l.Phase < oldPhase {
		l.held = math.Sin(oldPhase*12345.6789) // deterministic pseudo-random per cycle
		l.haveHeld = true
	}
	return out
}

func (l *LFO) sample(wave int) float64 {
	switch wave {
	case LFOWaveTriangle:
		if l.Phase < 0.5 {
			return 4*l.Phase - 1
		}
		return 3 - 4*l.Phase
	case LFOWaveSawUp:
		return 2*l.Phase - 1
	case LFOWaveSawDown:
		return 1 - 2*l.Phase
	case LFOWaveSquare:
		if l.Phase < 0.5 {
			return 1
		}
		return -1
	case LFOWaveSampleHold:
		if !l.haveHeld {
			return 0
		}
		return l.held
	default: // LFOWaveSine
		return math.Sin(2 * math.Pi * l.Phase)
	}
}

// Reset zeros the LFO's phase and held sample-and-hold value; called
// at note-on.
func (l *LFO) Reset() {
	l.Phase = 0
	l.held = 0
	l.haveHeld = false
}

// SpeedMultiplier implements spec.md §4.6's mod-wheel-driven rate
// scaling: full range (0.1x .. 3x) once the controller is in use,
// unity otherwise.
func SpeedMultiplier(modWheel float64, controllersActive bool) float64 {
	if !controllersActive {
		return 1
	}
	return 0.1 + modWheel*2.9
}

// FrequencyHz implements spec.md §4.6's lfo_speed-to-Hz mapping.
func FrequencyHz(lfoSpeed int, speedMultiplier float64) float64 {
	return (float64(lfoSpeed) / 99.0) * 6.0 * speedMultiplier
}
