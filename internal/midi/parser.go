// Package midi implements a byte-at-a-time running-status MIDI parser
// for live input, grounded on the same callback-driven ingress idiom as
// the retrieved winlinvip and zurustar audio-MIDI readers: feed raw
// bytes as they arrive from a wire and get back complete, decoded
// events with no blocking and no internal buffering beyond one SysEx
// frame at a time.
package midi

import "sync/atomic"

// EventType identifies the decoded channel or system event kind.
type EventType int

const (
	EventNone EventType = iota
	EventNoteOn
	EventNoteOff
	EventControlChange
	EventProgramChange
	EventChannelPressure
	EventPitchBend
	EventSysEx
)

// Event is one fully decoded MIDI message.
type Event struct {
	Type     EventType
	Channel  int // 0..15
	Data1    int // note / controller / program / pressure MSB-ish byte
	Data2    int // velocity / CC value (unused for program change, channel pressure)
	Bend     int // -8192..8191, only valid when Type == EventPitchBend
	SysEx    []byte
}

const (
	statusNoteOff         = 0x80
	statusNoteOn          = 0x90
	statusPolyPressure    = 0xA0
	statusControlChange   = 0xB0
	statusProgramChange   = 0xC0
	statusChannelPressure = 0xD0
	statusPitchBend       = 0xE0
	statusSysExStart      = 0xF0
	statusSysExEnd        = 0xF7
)

// Parser is a single MIDI input stream's running-status decoder. It
// holds no goroutines or channels of its own; the caller drives it by
// calling Feed for every incoming byte and handling the Events it
// returns.
type Parser struct {
	runningStatus byte
	data          [2]byte
	dataCount     int
	dataNeeded    int

	inSysEx bool
	sysex   []byte

	errors atomic.Uint64
}

// maxSysExLen bounds a single accumulated SysEx frame; a stream that
// never sends F7 would otherwise grow sysex without bound.
const maxSysExLen = 4096

// NewParser returns a ready-to-use Parser with no running status set.
func NewParser() *Parser { return &Parser{} }

// Errors returns the number of transient MIDI errors observed so far:
// orphan data bytes with no running status, unrecognized status bytes,
// and SysEx frames that overflowed maxSysExLen (spec.md §7).
func (p *Parser) Errors() uint64 { return p.errors.Load() }

// Feed processes one incoming byte and returns the event it completed,
// if any. Most calls return (Event{}, false); a full channel message or
// SysEx frame returns (Event, true).
func (p *Parser) Feed(b byte) (Event, bool) {
	switch {
	case b == statusSysExStart:
		p.inSysEx = true
		p.sysex = append(p.sysex[:0], b)
		return Event{}, false

	case b == statusSysExEnd:
		if !p.inSysEx {
			return Event{}, false
		}
		p.inSysEx = false
		p.sysex = append(p.sysex, b)
		ev := Event{Type: EventSysEx, SysEx: append([]byte(nil), p.sysex...)}
		return ev, true

	case p.inSysEx:
		if len(p.sysex) >= maxSysExLen {
			p.errors.Add(1)
			p.inSysEx = false
			p.sysex = p.sysex[:0]
			return Event{}, false
		}
		p.sysex = append(p.sysex, b)
		return Event{}, false

	case b >= 0xF8:
		// Realtime bytes (clock, start/stop/continue, active sense) carry
		// no data and never interrupt running status.
		return Event{}, false

	case b&0x80 != 0:
		if dataBytesFor(b) == 0 {
			// System common bytes (0xF1..0xF6) other than SysEx start/end
			// are not modeled; treat as an unrecognized status.
			p.errors.Add(1)
			p.runningStatus = 0
			p.dataNeeded = 0
			return Event{}, false
		}
		p.runningStatus = b
		p.dataCount = 0
		p.dataNeeded = dataBytesFor(b)
		return Event{}, false

	default:
		if p.runningStatus == 0 || p.dataNeeded == 0 {
			p.errors.Add(1)
			return Event{}, false
		}
		p.data[p.dataCount] = b
		p.dataCount++
		if p.dataCount < p.dataNeeded {
			return Event{}, false
		}
		p.dataCount = 0
		return p.completeMessage()
	}
}

func dataBytesFor(status byte) int {
	switch status & 0xF0 {
	case statusProgramChange, statusChannelPressure:
		return 1
	case statusNoteOff, statusNoteOn, statusPolyPressure, statusControlChange, statusPitchBend:
		return 2
	default:
		return 0
	}
}

func (p *Parser) completeMessage() (Event, bool) {
	channel := int(p.runningStatus & 0x0F)
	switch p.runningStatus & 0xF0 {
	case statusNoteOn:
		if p.data[1] == 0 {
			// Note-on with velocity 0 is a note-off, per the MIDI spec
			// (spec.md §4.5).
			return Event{Type: EventNoteOff, Channel: channel, Data1: int(p.data[0]), Data2: 0}, true
		}
		return Event{Type: EventNoteOn, Channel: channel, Data1: int(p.data[0]), Data2: int(p.data[1])}, true
	case statusNoteOff:
		return Event{Type: EventNoteOff, Channel: channel, Data1: int(p.data[0]), Data2: int(p.data[1])}, true
	case statusControlChange:
		return Event{Type: EventControlChange, Channel: channel, Data1: int(p.data[0]), Data2: int(p.data[1])}, true
	case statusProgramChange:
		return Event{Type: EventProgramChange, Channel: channel, Data1: int(p.data[0])}, true
	case statusChannelPressure:
		return Event{Type: EventChannelPressure, Channel: channel, Data1: int(p.data[0])}, true
	case statusPitchBend:
		raw := int(p.data[0]) | int(p.data[1])<<7
		return Event{Type: EventPitchBend, Channel: channel, Bend: raw - 8192}, true
	default:
		return Event{}, false
	}
}
