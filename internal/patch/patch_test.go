package patch

import "testing"

func TestDefaultIsSingleCarrierOnAlgorithm25(t *testing.T) {
	p := Default()
	if p.Algorithm != 25 {
		t.Errorf("expected algorithm 25, got %d", p.Algorithm)
	}
	if p.Operators[0].OutputLevel == 0 {
		t.Error("operator 0 should be audible in the default patch")
	}
	for i := 1; i < 6; i++ {
		if p.Operators[i].OutputLevel != 0 {
			t.Errorf("operator %d should be silent in the default patch", i)
		}
	}
}

func TestClampBringsOutOfRangeFieldsIntoBounds(t *testing.T) {
	p := Default()
	p.Algorithm = 500
	p.Feedback = -3
	p.Operators[0].FreqRatio = 99
	p.Operators[0].Detune = 40

	out := p.Clamp()
	if out.Algorithm != 32 {
		t.Errorf("expected algorithm clamped to 32, got %d", out.Algorithm)
	}
	if out.Feedback != 0 {
		t.Errorf("expected feedback clamped to 0, got %d", out.Feedback)
	}
	if out.Operators[0].FreqRatio != 31.99 {
		t.Errorf("expected freq ratio clamped to 31.99, got %f", out.Operators[0].FreqRatio)
	}
	if out.Operators[0].Detune != 7 {
		t.Errorf("expected detune clamped to 7, got %d", out.Operators[0].Detune)
	}
}
