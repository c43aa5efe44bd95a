// Command dx7render offline-renders a patch to a WAV file, feeding it a
// single note-on/note-off pair and writing the result plus a detected
// loop point. Peripheral to the core per spec.md §1; reimplemented
// around the Engine rather than shared with any realtime host.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	dx7fm "github.com/sixop/dx7fm"
	"github.com/sixop/dx7fm/internal/patch"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		patchPath  = flag.String("patch", "", "path to a KEY=VALUE patch text file")
		channel    = flag.Int("channel", 1, "MIDI channel (1-based)")
		note       = flag.Int("note", 60, "MIDI note number")
		velocity   = flag.Int("velocity", 100, "MIDI velocity (1-127)")
		sustain    = flag.Float64("sustain", 1.0, "seconds to hold the note before release")
		release    = flag.Float64("release", 2.0, "seconds to render after release")
		out        = flag.String("out", "out.wav", "output WAV path")
	)
	flag.Parse()

	p, err := loadPatch(*patchPath)
	if err != nil {
		log.Fatal(err)
	}

	engine, err := dx7fm.New(p, float64(*sampleRate), *channel)
	if err != nil {
		log.Fatal(err)
	}
	engine.Start()

	engine.FeedMIDI([]byte{byte(0x90 | (*channel - 1)), byte(*note), byte(*velocity)})
	sustained := dx7fm.RenderSeconds(engine, *sampleRate, *sustain)

	engine.FeedMIDI([]byte{byte(0x80 | (*channel - 1)), byte(*note), 0})
	released := dx7fm.RenderSeconds(engine, *sampleRate, *release)

	samples := append(sustained, released...)
	loopPoint := dx7fm.FindLoopPoint(samples, len(sustained)/2)
	if loopPoint >= 0 {
		fmt.Printf("loop point found at sample %d (%.4fs)\n", loopPoint, float64(loopPoint)/float64(*sampleRate))
	} else {
		fmt.Println("no loop point found")
	}

	wav := dx7fm.EncodeWAVFloat32LE(samples, *sampleRate, 1)
	if err := os.WriteFile(*out, wav, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%d frames)\n", *out, len(samples))
}

func loadPatch(path string) (patch.Patch, error) {
	if path == "" {
		return patch.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return patch.Patch{}, err
	}
	defer f.Close()
	return patch.LoadText(f)
}
