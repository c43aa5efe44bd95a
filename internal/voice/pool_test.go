package voice

import (
	"testing"

	"github.com/sixop/dx7fm/internal/patch"
)

func TestPoolStealsOldestVoiceWhenFull(t *testing.T) {
	var pool Pool
	p := patch.Default()
	p.Operators[0].EnvRates = [4]int{0, 0, 0, 0} // slow attack, stays active
	p.Operators[0].EnvLevels = [4]int{99, 99, 99, 0}

	for n := 0; n < PoolSize; n++ {
		pool.NoteOn(p, 40+n, 0, 1.0, 48000)
	}
	if stats := pool.Stats(); stats.ActiveCount != PoolSize {
		t.Fatalf("expected %d active voices, got %d", PoolSize, stats.ActiveCount)
	}

	pool.NoteOn(p, 100, 0, 1.0, 48000)
	stats := pool.Stats()
	if stats.VoiceSteals != 1 {
		t.Fatalf("expected one voice steal, got %d", stats.VoiceSteals)
	}
	if pool.voices[0].MIDINote != 100 {
		t.Fatalf("expected the oldest voice (slot 0, note 40) to be stolen for note 100, got note %d", pool.voices[0].MIDINote)
	}
}

func TestPoolNoteOffIsNoOpForInactiveNote(t *testing.T) {
	var pool Pool
	pool.NoteOff(72, 0, false) // nothing active; must not panic or change counters
	if stats := pool.Stats(); stats.ActiveCount != 0 {
		t.Fatalf("expected no active voices, got %d", stats.ActiveCount)
	}
}

func TestPoolAllSoundOffClearsEverything(t *testing.T) {
	var pool Pool
	p := patch.Default()
	pool.NoteOn(p, 60, 0, 1.0, 48000)
	pool.NoteOn(p, 64, 0, 1.0, 48000)
	pool.AllSoundOff()
	if stats := pool.Stats(); stats.ActiveCount != 0 {
		t.Fatalf("expected active_count 0 after all-sound-off, got %d", stats.ActiveCount)
	}
}
