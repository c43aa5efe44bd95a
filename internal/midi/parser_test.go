package midi

import "testing"

func feedAll(p *Parser, bytes ...byte) []Event {
	var events []Event
	for _, b := range bytes {
		if ev, ok := p.Feed(b); ok {
			events = append(events, ev)
		}
	}
	return events
}

func TestNoteOnNoteOff(t *testing.T) {
	p := NewParser()
	events := feedAll(p, 0x90, 60, 100, 0x80, 60, 0)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventNoteOn || events[0].Data1 != 60 || events[0].Data2 != 100 {
		t.Errorf("unexpected note-on event: %+v", events[0])
	}
	if events[1].Type != EventNoteOff || events[1].Data1 != 60 {
		t.Errorf("unexpected note-off event: %+v", events[1])
	}
}

func TestNoteOnVelocityZeroIsNoteOff(t *testing.T) {
	p := NewParser()
	events := feedAll(p, 0x91, 64, 0)
	if len(events) != 1 || events[0].Type != EventNoteOff {
		t.Fatalf("expected a rewritten note-off, got %+v", events)
	}
	if events[0].Channel != 1 {
		t.Errorf("expected channel 1, got %d", events[0].Channel)
	}
}

func TestRunningStatusRepeatsWithoutNewStatusByte(t *testing.T) {
	p := NewParser()
	// One status byte, then three note pairs relying on running status.
	events := feedAll(p, 0x90, 60, 100, 64, 100, 67, 100)
	if len(events) != 3 {
		t.Fatalf("expected 3 note-ons via running status, got %d", len(events))
	}
	for i, want := range []int{60, 64, 67} {
		if events[i].Data1 != want {
			t.Errorf("event %d: want note %d, got %d", i, want, events[i].Data1)
		}
	}
}

func TestControlChangeAndPitchBend(t *testing.T) {
	p := NewParser()
	events := feedAll(p, 0xB0, 1, 90, 0xE0, 0, 64)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventControlChange || events[0].Data1 != 1 || events[0].Data2 != 90 {
		t.Errorf("unexpected CC event: %+v", events[0])
	}
	if events[1].Type != EventPitchBend {
		t.Errorf("expected pitch bend event, got %+v", events[1])
	}
}

func TestPitchBendCenterIsZero(t *testing.T) {
	p := NewParser()
	events := feedAll(p, 0xE0, 0, 64) // MSB 64, LSB 0 => raw 8192 => center
	if len(events) != 1 || events[0].Bend != 0 {
		t.Fatalf("expected centered bend (0), got %+v", events)
	}
}

func TestSysExAccumulation(t *testing.T) {
	p := NewParser()
	frame := []byte{0xF0, 0x43, 0x00, 0x00, 0x01, 0x1B, 0xF7}
	var got Event
	var ok bool
	for _, b := range frame {
		got, ok = p.Feed(b)
	}
	if !ok || got.Type != EventSysEx {
		t.Fatalf("expected a completed SysEx event, got ok=%v %+v", ok, got)
	}
	if len(got.SysEx) != len(frame) {
		t.Fatalf("expected %d captured bytes, got %d", len(frame), len(got.SysEx))
	}
}

func TestOrphanDataByteCountsAsError(t *testing.T) {
	p := NewParser()
	feedAll(p, 64, 100) // data bytes with no preceding status
	if p.Errors() == 0 {
		t.Fatal("expected orphan data bytes to be counted as midi errors")
	}
}

func TestRealtimeBytesDoNotInterruptRunningStatus(t *testing.T) {
	p := NewParser()
	events := feedAll(p, 0x90, 60, 100, 0xF8, 64, 100)
	if len(events) != 2 {
		t.Fatalf("expected 2 note-ons despite an interleaved realtime byte, got %d", len(events))
	}
}
