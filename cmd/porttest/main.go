package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/term"

	"drawing-player/drawing"
	"drawing-player/midi"
	"drawing-player/player"
	"drawing-player/sound"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "scale":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		playScale(port)
	case "sweep":
		sweep()
	case "poll":
		poll()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI output port tests")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List MIDI output ports")
	fmt.Println("  scale [port]  - Play a scale through each timbre")
	fmt.Println("  sweep         - Sweep a test drawing and print the tones it makes")
	fmt.Println("  poll          - Watch for output ports coming and going")
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []string, 1)
	go func() { ch <- midi.OutPorts() }()

	select {
	case names := <-ch:
		if len(names) == 0 {
			fmt.Println("  (none)")
		}
		for i, name := range names {
			fmt.Printf("  %d: %s\n", i, name)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func playScale(port string) {
	if port == "" {
		names := midi.OutPorts()
		if len(names) == 0 {
			fmt.Println("No output ports")
			return
		}
		port = names[0]
	}

	out, err := midi.Open(port)
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	defer out.Close()

	fmt.Printf("Playing on %s\n", port)
	engine := sound.NewEngine(out)
	for note := 60; note <= 72; note++ {
		t, _ := sound.TimbreFor(note)
		fmt.Printf("  note %d (%s)\n", note, t.Name)
		engine.Play(0, note, 100)
		time.Sleep(200 * time.Millisecond)
		engine.Stop(0, note)
	}
}

// sweep runs a fixed drawing through the player on a manual clock and prints
// every tone event, so the scheduler can be checked without a synth.
func sweep() {
	rec := &sound.Recorder{}
	d := drawing.New(200, 120, sound.NewEngine(rec))
	d.AddShape(0, 0, 50, 24)
	d.AddShape(40, 36, 60, 12)
	d.AddShape(120, 60, 30, 30).SetInstrument(1)

	clock := &player.ManualClock{}
	m := player.NewManager(clock, player.DefaultSettings())
	if err := m.BeginGlobalPlayback(d); err != nil {
		fmt.Printf("Begin failed: %v\n", err)
		return
	}

	seen := 0
	for m.Status().Global {
		clock.Advance()
		events := rec.Events()
		for _, e := range events[seen:] {
			state := "off"
			if e.On {
				state = fmt.Sprintf("on  vol=%.2f %s", e.Volume, e.Timbre)
			}
			fmt.Printf("col %3d  ch=%d note=%d %s\n", d.PlayheadColumn(), e.Channel, e.Note, state)
		}
		seen = len(events)
	}

	on, off := rec.Counts()
	fmt.Printf("\n%d on, %d off\n", on, off)
}

func poll() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Piped output gets a bounded run
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	out := midi.NewOutput(nil)
	w := midi.NewPortWatcher("", out)
	go w.Run(ctx)

	fmt.Println("Watching output ports (ctrl+c to stop)...")
	for evt := range w.Events() {
		fmt.Printf("%s: %s\n", evt.Type, evt.Name)
	}
}
