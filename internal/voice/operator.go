package voice

import (
	"math"

	"github.com/sixop/dx7fm/internal/patch"
)

// Operator is the per-voice, per-operator runtime state: a phase
// accumulator driving a sine generator, its envelope, and the two
// constants (level scale, rate scale factor baked into Envelope)
// fixed at note-on by keyboard scaling. See spec.md §3's OperatorState.
type Operator struct {
	Phase      float64
	Freq       float64
	Output     float64
	Env        Envelope
	LevelScale float64
}

// NoteOn resets phase, computes the keyboard level-scale constant from
// the operator's break-point curve, and starts the envelope.
func (o *Operator) NoteOn(p patch.OperatorParams, midiNote int, sampleRate float64) {
	o.Phase = 0
	o.Output = 0
	o.LevelScale = keyboardLevelScale(midiNote, p)
	o.Env.NoteOn(p.EnvRates, p.EnvLevels, midiNote, p.KeyRateScaling, sampleRate)
}

// Release moves the operator's envelope into its Release stage.
func (o *Operator) Release() { o.Env.Release() }

// Step advances the operator by one sample per spec.md §4.2's six
// numbered steps, returning the raw (pre-level) sine sample and the
// operator's total instantaneous level, for the algorithm router to
// combine.
func (o *Operator) Step(p patch.OperatorParams, sampleRate, velocity, lfoValue, lfoPMD, lfoAMD, lfoPitchModSens, bendMul float64) (sine, total float64) {
	envLevel := o.Env.Advance()

	velFactor := 1 - (1-velocity)*(float64(p.KeyVelSens)/7.0)
	total = (float64(p.OutputLevel) / 99.0) * envLevel * velFactor * o.LevelScale * (1 + lfoValue*lfoAMD/99.0*0.5)

	sine = math.Sin(2 * math.Pi * o.Phase)

	freqWithLFO := o.Freq * bendMul * math.Pow(2, lfoValue*lfoPMD/99.0*lfoPitchModSens/7.0*0.1)
	o.Phase += freqWithLFO / sampleRate
	o.Phase -= math.Floor(o.Phase)

	o.Output = sine * total
	return sine, total
}

// keyboardLevelScale implements spec.md §4.2's piecewise break-point
// curve, clamped to [0,2].
func keyboardLevelScale(note int, p patch.OperatorParams) float64 {
	if note < p.BreakPoint {
		d := float64(p.BreakPoint-note) / 127.0
		return clampFloat(curveValue(p.LeftCurve, d, float64(p.LeftDepth)/99.0), 0, 2)
	}
	if note > p.BreakPoint {
		d := float64(note-p.BreakPoint) / 127.0
		return clampFloat(curveValue(p.RightCurve, d, float64(p.RightDepth)/99.0), 0, 2)
	}
	return 1
}

func curveValue(curve int, d, depth float64) float64 {
	switch curve {
	case 0:
		return 1 - d*depth
	case 1:
		return 1 - depth*(1-math.Exp(-3*d))
	case 2:
		return 1 + depth*(1-math.Exp(-3*d))
	default: // 3
		return 1 + d*depth
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
