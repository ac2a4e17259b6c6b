package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"drawing-player/config"
	"drawing-player/drawing"
	"drawing-player/player"
	"drawing-player/sound"
)

func TestSweepPlaysDrawingOnce(t *testing.T) {
	rec := &sound.Recorder{}
	d := drawing.New(50, 60, sound.NewEngine(rec))
	d.AddShape(10, 0, 10, 10)
	m := player.NewManager(player.TickerClock{}, player.Settings{Interval: time.Millisecond, Step: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	if err := sweep(ctx, m, d, &out); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(out.String(), "done") {
		t.Errorf("expected sweep to finish, got:\n%s", out.String())
	}
	if on, off := rec.Counts(); on != 1 || off != 1 {
		t.Errorf("expected one start and one stop, got %d/%d", on, off)
	}
}

func TestOpenBackendNone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sound.Backend = config.BackendNone
	out, ports, closeFn, err := openBackend(cfg)
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer closeFn()
	if _, ok := out.(sound.Discard); !ok || ports != nil {
		t.Errorf("expected discard output without ports, got %T %v", out, ports)
	}
}

func TestOpenBackendMIDIStartsDisconnected(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sound.Backend = config.BackendMIDI
	_, ports, closeFn, err := openBackend(cfg)
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer closeFn()
	if ports == nil || ports.Connected() != "" {
		t.Error("expected an unbound port watcher")
	}
}
