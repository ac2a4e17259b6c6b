package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"drawing-player/config"
	"drawing-player/debug"
	"drawing-player/drawing"
	"drawing-player/midi"
	"drawing-player/player"
	"drawing-player/sound"
	"drawing-player/sound/otoplayer"
	"drawing-player/theme"
	"drawing-player/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/drawing-player/config.yaml)")
	headless := flag.Bool("headless", false, "play the drawing once without the UI")
	flag.Parse()

	if err := run(*configPath, *headless); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, headless bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.UI.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	th, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}

	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, ports, closeOut, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	engine := sound.NewEngine(out)
	d := drawing.New(cfg.Canvas.Width, cfg.Canvas.Height, engine)
	for _, s := range cfg.Shapes {
		shape := d.AddShape(s.X, s.Y, s.Width, s.Height)
		shape.SetInstrument(cfg.InstrumentFor(s))
	}
	debug.Log("config", "canvas %dx%d, %d shapes, backend=%s", d.Width(), d.Height(), d.Len(), cfg.Sound.Backend)

	manager := player.NewManager(player.TickerClock{}, player.Settings{
		Interval: interval,
		Step:     cfg.Playback.Step,
	})
	defer manager.CancelAll()

	g, ctx := errgroup.WithContext(ctx)
	if ports != nil {
		g.Go(func() error {
			ports.Run(ctx)
			return nil
		})
	}

	if headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		g.Go(func() error {
			defer stop()
			return sweep(ctx, manager, d, os.Stdout)
		})
		return g.Wait()
	}

	fmt.Println("drawing-player")
	if ports != nil {
		fmt.Println("Connect a MIDI synth any time - it'll be picked up automatically")
	}

	m := tui.NewModel(manager, d, engine, ports, th, cfg.Canvas.CellWidth, cfg.Canvas.CellHeight)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openBackend picks the sound output named in the config. ports is non-nil
// for the midi backend only.
func openBackend(cfg *config.Config) (out sound.Output, ports *midi.PortWatcher, closeFn func(), err error) {
	switch cfg.Sound.Backend {
	case config.BackendMIDI:
		o := midi.NewOutput(nil)
		w := midi.NewPortWatcher(cfg.Sound.PortName, o)
		return o, w, func() {}, nil

	case config.BackendOto:
		o, err := otoplayer.New(cfg.Sound.SampleRate)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("audio output: %w", err)
		}
		return o, nil, func() { o.Close() }, nil
	}
	return sound.Discard{}, nil, func() {}, nil
}

// sweep plays the drawing once and prints the playhead as it moves
func sweep(ctx context.Context, manager *player.Manager, d *drawing.Drawing, w io.Writer) error {
	if err := manager.BeginGlobalPlayback(d); err != nil {
		return err
	}
	fmt.Fprintf(w, "playing %d shapes across %d columns\n", d.Len(), d.Width())

	last := -1
	for {
		select {
		case <-ctx.Done():
			manager.CancelAll()
			return nil
		case <-manager.UpdateChan:
		case <-time.After(manager.Settings().Interval * 4):
		}

		st := manager.Status()
		if !st.Global {
			fmt.Fprintln(w, "done")
			return nil
		}
		if st.Column != last {
			var playing []drawing.ShapeID
			manager.Do(func() { playing = d.Playing() })
			fmt.Fprintf(w, "col %4d  playing %v\n", st.Column, playing)
			last = st.Column
		}
	}
}
