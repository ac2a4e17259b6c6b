package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"drawing-player/drawing"
	"drawing-player/midi"
	"drawing-player/player"
	"drawing-player/sound"
	"drawing-player/theme"
)

type fixture struct {
	clock   *player.ManualClock
	rec     *sound.Recorder
	drawing *drawing.Drawing
	model   Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: &player.ManualClock{}, rec: &sound.Recorder{}}
	engine := sound.NewEngine(f.rec)
	f.drawing = drawing.New(100, 60, engine)
	f.drawing.AddShape(0, 0, 20, 10)
	f.drawing.AddShape(40, 24, 20, 10)
	manager := player.NewManager(f.clock, player.Settings{Interval: time.Millisecond, Step: 10})
	f.model = NewModel(manager, f.drawing, engine, nil, theme.New(nil), 10, 12)
	return f
}

func (f *fixture) press(t *testing.T, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		next, _ := f.model.Update(k)
		f.model = next.(Model)
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectsFirstShape(t *testing.T) {
	f := newFixture(t)
	if f.model.Selected() != 1 {
		t.Fatalf("expected shape 1 selected, got %d", f.model.Selected())
	}
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	if f.model.Selected() != 2 {
		t.Errorf("expected shape 2 after tab, got %d", f.model.Selected())
	}
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	if f.model.Selected() != 1 {
		t.Errorf("expected wrap to shape 1, got %d", f.model.Selected())
	}
}

func TestPlayKeyStartsGlobalPlayback(t *testing.T) {
	f := newFixture(t)
	f.press(t, runeKey("p"))
	if !f.model.Manager.Status().Global {
		t.Fatal("expected global playback")
	}
	f.clock.Advance()
	if !f.drawing.Shape(1).IsPlaying() {
		t.Error("shape 1 should play at column 0")
	}
	if !strings.Contains(f.model.View(), "PLAY") {
		t.Error("header should show PLAY")
	}

	f.press(t, runeKey("x"))
	if f.model.Manager.Status().Global || f.drawing.Shape(1).IsPlaying() {
		t.Error("x should cancel playback")
	}
}

func TestSoloBlocksPlay(t *testing.T) {
	f := newFixture(t)
	f.press(t, runeKey("s"), runeKey("p"))
	if f.model.Manager.Status().Global {
		t.Fatal("global playback must be rejected while a solo runs")
	}
	if !strings.Contains(f.model.Message(), "busy") {
		t.Errorf("expected busy message, got %q", f.model.Message())
	}
	if on, _ := f.rec.Counts(); on != 0 {
		t.Error("nothing should have played yet")
	}
}

func TestArrowsMoveSelectedShape(t *testing.T) {
	f := newFixture(t)
	f.press(t, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown})
	s := f.drawing.Shape(1)
	if s.X() != 10 || s.Y() != 12 {
		t.Errorf("expected shape at (10,12), got (%d,%d)", s.X(), s.Y())
	}
}

func TestAddAndDelete(t *testing.T) {
	f := newFixture(t)
	f.press(t, runeKey("l"), runeKey("l"), runeKey("j"), runeKey("a"))
	if f.drawing.Len() != 3 {
		t.Fatalf("expected 3 shapes, got %d", f.drawing.Len())
	}
	added := f.drawing.Shape(f.model.Selected())
	if added == nil || added.X() != 20 || added.Y() != 12 {
		t.Fatalf("expected new shape at cursor (20,12), got %+v", added)
	}

	f.press(t, runeKey("d"))
	if f.drawing.Len() != 2 || f.drawing.Contains(added.ID()) {
		t.Error("expected the new shape to be deleted")
	}
	if f.model.Selected() != 1 {
		t.Errorf("expected selection to move to shape 1, got %d", f.model.Selected())
	}
}

func TestInstrumentKey(t *testing.T) {
	f := newFixture(t)
	f.press(t, runeKey("i"), runeKey("i"))
	if got := f.drawing.Shape(1).Instrument(); got != 2 {
		t.Errorf("expected instrument 2, got %d", got)
	}
}

func TestPortEvents(t *testing.T) {
	f := newFixture(t)
	next, _ := f.model.Update(PortEventMsg{Type: midi.PortConnected, Name: "Synth"})
	f.model = next.(Model)
	if f.model.port != "Synth" {
		t.Errorf("expected port Synth, got %q", f.model.port)
	}
	next, _ = f.model.Update(PortEventMsg{Type: midi.PortDisconnected, Name: "Synth"})
	f.model = next.(Model)
	if f.model.port != "" {
		t.Errorf("expected no port, got %q", f.model.port)
	}
}

func TestQuit(t *testing.T) {
	f := newFixture(t)
	f.press(t, runeKey("s"))
	next, cmd := f.model.Update(runeKey("q"))
	f.model = next.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if f.model.Manager.Status().Solos != 0 {
		t.Error("quit should cancel playback")
	}
	if f.model.View() != "" {
		t.Error("view should be empty after quit")
	}
}
