package patch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadText parses the plain-text `KEY = VALUE` patch format described in
// spec.md §6: global keys at top level, six `[OP1]`..`[OP6]` sections,
// `#` starts a comment. Scanning is line-oriented (bufio.Scanner, one
// line at a time, comments stripped before parsing), following the
// teacher repo's comment-skipping MML scanner idiom rewritten for this
// flat grammar.
func LoadText(r io.Reader) (Patch, error) {
	p := Default()
	scanner := bufio.NewScanner(r)
	section := 0 // 0 = global, 1..6 = OPn
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.ToUpper(strings.TrimSpace(line[1 : len(line)-1]))
			n, ok := opSectionNumber(name)
			if !ok {
				return Patch{}, fmt.Errorf("patch loader: line %d: unknown section %q", lineNo, name)
			}
			section = n
			continue
		}
		key, value, ok := splitKeyValue(line)
		if !ok {
			return Patch{}, fmt.Errorf("patch loader: line %d: expected KEY = VALUE", lineNo)
		}
		if err := applyField(&p, section, key, value); err != nil {
			return Patch{}, fmt.Errorf("patch loader: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Patch{}, err
	}
	return p.Clamp(), nil
}

func opSectionNumber(name string) (int, bool) {
	for n := 1; n <= 6; n++ {
		if name == fmt.Sprintf("OP%d", n) {
			return n, true
		}
	}
	return 0, false
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToUpper(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	return key, value, key != "" && value != ""
}

func applyField(p *Patch, section int, key, value string) error {
	if section == 0 {
		return applyGlobalField(p, key, value)
	}
	return applyOperatorField(&p.Operators[section-1], key, value)
}

func applyGlobalField(p *Patch, key, value string) error {
	switch key {
	case "NAME":
		p.Name = value
		return nil
	case "ALGORITHM":
		return setInt(&p.Algorithm, value)
	case "FEEDBACK":
		return setInt(&p.Feedback, value)
	case "LFO_SPEED":
		return setInt(&p.LFOSpeed, value)
	case "LFO_DELAY":
		return setInt(&p.LFODelay, value)
	case "LFO_PMD":
		return setInt(&p.LFOPMD, value)
	case "LFO_AMD":
		return setInt(&p.LFOAMD, value)
	case "LFO_SYNC":
		return setBool(&p.LFOSync, value)
	case "LFO_WAVE":
		return setInt(&p.LFOWave, value)
	case "LFO_PITCH_MOD_SENS":
		return setInt(&p.LFOPitchModSens, value)
	case "TRANSPOSE":
		return setInt(&p.Transpose, value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
}

func applyOperatorField(op *OperatorParams, key, value string) error {
	switch key {
	case "FREQ_RATIO":
		return setFloat(&op.FreqRatio, value)
	case "DETUNE":
		return setInt(&op.Detune, value)
	case "OUTPUT_LEVEL":
		return setInt(&op.OutputLevel, value)
	case "KEY_VEL_SENS":
		return setInt(&op.KeyVelSens, value)
	case "ENV_ATTACK":
		return setInt(&op.EnvRates[0], value)
	case "ENV_DECAY1":
		return setInt(&op.EnvRates[1], value)
	case "ENV_DECAY2":
		return setInt(&op.EnvRates[2], value)
	case "ENV_RELEASE":
		return setInt(&op.EnvRates[3], value)
	case "ENV_LEVEL1":
		return setInt(&op.EnvLevels[0], value)
	case "ENV_LEVEL2":
		return setInt(&op.EnvLevels[1], value)
	case "ENV_LEVEL3":
		return setInt(&op.EnvLevels[2], value)
	case "ENV_LEVEL4":
		return setInt(&op.EnvLevels[3], value)
	case "KEY_LEVEL_SCALE_BREAK_POINT":
		return setInt(&op.BreakPoint, value)
	case "KEY_LEVEL_SCALE_LEFT_DEPTH":
		return setInt(&op.LeftDepth, value)
	case "KEY_LEVEL_SCALE_RIGHT_DEPTH":
		return setInt(&op.RightDepth, value)
	case "KEY_LEVEL_SCALE_LEFT_CURVE":
		return setInt(&op.LeftCurve, value)
	case "KEY_LEVEL_SCALE_RIGHT_CURVE":
		return setInt(&op.RightCurve, value)
	case "KEY_RATE_SCALING":
		return setInt(&op.KeyRateScaling, value)
	case "OSC_SYNC":
		return setBool(&op.OscSync, value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", value)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("expected number, got %q", value)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, value string) error {
	switch strings.ToLower(value) {
	case "1", "true", "on", "yes":
		*dst = true
	case "0", "false", "off", "no":
		*dst = false
	default:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected boolean, got %q", value)
		}
		*dst = n != 0
	}
	return nil
}
