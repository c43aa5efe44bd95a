package patch

import (
	"strings"
	"testing"
)

const sampleText = `
# a minimal patch file
NAME = LEAD ONE
ALGORITHM = 7
FEEDBACK = 3
LFO_SPEED = 40
LFO_WAVE = 1

[OP1]
FREQ_RATIO = 1.0
OUTPUT_LEVEL = 99
ENV_ATTACK = 99
ENV_DECAY1 = 80
ENV_DECAY2 = 60
ENV_RELEASE = 50
ENV_LEVEL1 = 99
ENV_LEVEL2 = 90
ENV_LEVEL3 = 70
ENV_LEVEL4 = 0

[OP2]
FREQ_RATIO = 2.5
OUTPUT_LEVEL = 40
`

func TestLoadTextParsesGlobalsAndOperatorSections(t *testing.T) {
	p, err := LoadText(strings.NewReader(sampleText))
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if p.Name != "LEAD ONE" {
		t.Errorf("name: want %q got %q", "LEAD ONE", p.Name)
	}
	if p.Algorithm != 7 {
		t.Errorf("algorithm: want 7 got %d", p.Algorithm)
	}
	if p.Feedback != 3 {
		t.Errorf("feedback: want 3 got %d", p.Feedback)
	}
	if p.Operators[0].OutputLevel != 99 {
		t.Errorf("op1 output level: want 99 got %d", p.Operators[0].OutputLevel)
	}
	if p.Operators[1].FreqRatio != 2.5 {
		t.Errorf("op2 freq ratio: want 2.5 got %f", p.Operators[1].FreqRatio)
	}
}

func TestLoadTextRejectsUnknownSection(t *testing.T) {
	_, err := LoadText(strings.NewReader("[OP9]\nFREQ_RATIO = 1\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown section")
	}
}

func TestLoadTextRejectsMalformedLine(t *testing.T) {
	_, err := LoadText(strings.NewReader("NOT_A_KEY_VALUE_LINE\n"))
	if err == nil {
		t.Fatal("expected an error for a line with no '='")
	}
}
