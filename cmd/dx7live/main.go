// Command dx7live is an interactive demo host: it opens a real audio
// output device via internal/audio and drives the engine with a short
// synthesized MIDI performance built through gitlab.com/gomidi/midi/v2's
// message constructors, so the wire bytes internal/midi consumes are
// exercised against an independent MIDI library rather than only the
// engine's own encoder. Peripheral per spec.md §1; the core engine
// never imports gomidi or ebiten.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gitlab.com/gomidi/midi/v2"

	dx7fm "github.com/sixop/dx7fm"
	"github.com/sixop/dx7fm/internal/audio"
	"github.com/sixop/dx7fm/internal/patch"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		channel    = flag.Int("channel", 1, "MIDI channel (1-based)")
		patchPath  = flag.String("patch", "", "path to a KEY=VALUE patch text file")
	)
	flag.Parse()

	p := patch.Default()
	if *patchPath != "" {
		f, err := os.Open(*patchPath)
		if err != nil {
			log.Fatal(err)
		}
		loaded, err := patch.LoadText(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
		p = loaded
	}

	engine, err := dx7fm.New(p, float64(*sampleRate), *channel)
	if err != nil {
		log.Fatal(err)
	}
	engine.Start()

	host, err := audio.NewHost(*sampleRate, engine)
	if err != nil {
		log.Fatal(err)
	}
	host.Play()

	ch := uint8(*channel - 1)
	notes := []uint8{60, 64, 67, 72}
	for _, n := range notes {
		feed(engine, midi.NoteOn(ch, n, 100))
		time.Sleep(400 * time.Millisecond)
		feed(engine, midi.NoteOff(ch, n))
	}

	feed(engine, midi.ControlChange(ch, 1, 90))
	feed(engine, midi.Pitchbend(ch, 2000))
	feed(engine, midi.NoteOn(ch, 67, 110))
	time.Sleep(800 * time.Millisecond)
	feed(engine, midi.NoteOff(ch, 67))

	time.Sleep(500 * time.Millisecond)
	if err := host.Stop(); err != nil {
		fmt.Println("stop:", err)
	}
	engine.Shutdown()
}

func feed(e *dx7fm.Engine, msg midi.Message) {
	e.FeedMIDI(msg.Bytes())
}
