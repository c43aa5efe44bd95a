// Package voice implements the per-operator envelope and phase state,
// the 32-entry algorithm router, and the fixed-size voice pool that
// spec.md §4 describes as the synthesis core.
package voice

import "math"

// Stage identifies which of the four envelope segments is active.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay1
	StageDecay2
	StageRelease
)

// minRateScaleDenom floors the key-rate-scaling denominator in
// beginStage just above zero so a low note at full scaling depth
// slows down rather than flipping the stage's direction.
const minRateScaleDenom = 0.1

// rateTable[n] is the nominal full-scale stage time, in seconds, for
// rate value n. It decreases monotonically from ~30s at rate 0 to
// ~0.0004s at rate 99, per spec.md §4.1.
var rateTable [100]float64

func init() {
	const (
		tMin = 0.0004
		tMax = 30.0
	)
	for i := range rateTable {
		frac := float64(i) / float64(len(rateTable)-1)
		rateTable[i] = tMax * math.Pow(tMin/tMax, frac)
	}
}

// RateTableValue exposes rateTable[n] for tests and diagnostics.
func RateTableValue(n int) float64 {
	return rateTable[clampInt(n, 0, 99)]
}

// Envelope is the four-stage piecewise-linear amplitude envelope of a
// single operator within a single voice.
type Envelope struct {
	rates  [4]int
	levels [4]int

	rateScale      float64
	keyRateScaling int
	sampleRate     float64

	stage          Stage
	level          float64
	rate           float64
	target         float64
	samplesInStage uint64
}

// NoteOn resets the envelope to Attack, level 0, and caches the
// per-voice key-rate-scaling factor used by every subsequent stage.
func (e *Envelope) NoteOn(rates, levels [4]int, midiNote, keyRateScaling int, sampleRate float64) {
	e.rates = rates
	e.levels = levels
	e.keyRateScaling = keyRateScaling
	e.sampleRate = sampleRate
	e.rateScale = (float64(midiNote-60) / 12.0) * (float64(keyRateScaling) / 7.0)
	e.level = 0
	e.beginStage(StageAttack)
}

// Release moves the envelope into the Release stage from whatever
// level it currently holds. A no-op if already releasing.
func (e *Envelope) Release() {
	if e.stage == StageRelease {
		return
	}
	e.beginStage(StageRelease)
}

// Level returns the current instantaneous envelope output, in [0,1].
func (e *Envelope) Level() float64 { return e.level }

// ActiveStage returns the active stage.
func (e *Envelope) ActiveStage() Stage { return e.stage }

// Advance steps the envelope by one sample and returns the new level.
func (e *Envelope) Advance() float64 {
	switch e.stage {
	case StageDecay2, StageRelease:
		// Sustain and release drift toward their target at a fixed
		// rate but never trigger a stage change on their own; they
		// stop moving once they reach it instead of overshooting.
		e.level = clamp01(e.level + e.rate)
		if (e.rate > 0 && e.level >= e.target) || (e.rate < 0 && e.level <= e.target) {
			e.level = e.target
			e.rate = 0
		}
		e.samplesInStage++
		return e.level
	}

	e.level = clamp01(e.level + e.rate)
	e.samplesInStage++

	switch e.stage {
	case StageAttack:
		if e.level >= e.target || e.rates[StageAttack] == 99 {
			e.beginStage(StageDecay1)
		}
	case StageDecay1:
		if e.level <= e.target || e.rates[StageDecay1] == 99 {
			e.beginStage(StageDecay2)
		}
	}
	return e.level
}

func (e *Envelope) beginStage(stage Stage) {
	e.stage = stage
	e.samplesInStage = 0
	target := float64(e.levels[stage]) / 99.0
	e.target = target
	// diff is measured in envelope-level units (0..99), like e.levels.
	diff := (target - e.level) * 99.0

	if diff == 0 {
		if stage == StageRelease {
			e.rate = -0.1
		} else {
			e.rate = 0
		}
		return
	}

	rateIdx := clampInt(e.rates[stage], 0, 99)
	time := rateTable[rateIdx] * math.Max(0.1, math.Abs(diff)/99.0)
	// Key-rate scaling shortens stage time for notes above middle C and
	// lengthens it below, scaled by the operator's key_rate_scaling
	// depth: time / (1 + rate_scale*key_rate_scaling/7) per spec.md
	// §4.1. That denominator can reach zero or go negative for low
	// notes at full key_rate_scaling depth (e.g. note 30, depth 7 gives
	// 1 + (-2.5)*1 = -1.5), which would invert the intended direction
	// instead of merely dividing by a small number; minRateScaleDenom
	// floors it just above zero so the direction always holds. See
	// DESIGN.md for this deviation.
	denom := 1 + e.rateScale*(float64(e.keyRateScaling)/7.0)
	if denom < minRateScaleDenom {
		denom = minRateScaleDenom
	}
	time /= denom
	if time <= 0 || e.sampleRate <= 0 {
		e.level = target
		e.rate = 0
		return
	}
	e.rate = diff / (99.0 * time * e.sampleRate)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
