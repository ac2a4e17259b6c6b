package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"drawing-player/drawing"
	"drawing-player/theme"
)

func plainLines(s string) []string {
	return strings.Split(ansi.Strip(s), "\n")
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(theme.New(nil), 10, 12)
	c.CursorX, c.CursorY = 0, 24

	f := Frame{
		Width:        100,
		Height:       24,
		Playhead:     60,
		ShowPlayhead: true,
		Shapes: []ShapeView{
			{ID: 1, X: 20, Y: 0, Width: 20, Height: 10, Playing: true},
		},
	}

	got := plainLines(c.Render(f))
	want := []string{
		"··███·│····",
		"······│····",
		"+·····│····",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d:\n%s", len(want), len(got), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCanvasSoloLineAndSelection(t *testing.T) {
	c := NewCanvas(theme.New(nil), 10, 12)
	c.Selected = 2
	c.CursorX = 90

	f := Frame{
		Width:  50,
		Height: 0,
		Shapes: []ShapeView{
			{ID: 1, X: 0, Width: 30, Playing: true, Solo: true, PlayLine: 10},
			{ID: 2, X: 40, Width: 10},
		},
	}

	got := plainLines(c.Render(f))
	if len(got) != 1 {
		t.Fatalf("expected one row, got %d", len(got))
	}
	if got[0] != "█┃██▓▓" {
		t.Errorf("unexpected row %q", got[0])
	}
}

func TestSnapshot(t *testing.T) {
	d := drawing.New(100, 60, nil)
	a := d.AddShape(0, 0, 10, 10)
	b := d.AddShape(20, 12, 10, 10)
	a.Start()
	b.SetPlayLine(5)
	d.SetPlayheadColumn(30)

	f := Snapshot(d, true, []drawing.ShapeID{b.ID()})
	if f.Playhead != 30 || !f.ShowPlayhead || len(f.Shapes) != 2 {
		t.Fatalf("unexpected frame %+v", f)
	}

	av, ok := f.Find(a.ID())
	if !ok || !av.Playing || av.Solo {
		t.Errorf("unexpected view for a: %+v", av)
	}
	bv, ok := f.Find(b.ID())
	if !ok || bv.Playing || !bv.Solo || bv.PlayLine != 5 || bv.Note != b.Note() {
		t.Errorf("unexpected view for b: %+v", bv)
	}
	if _, ok := f.Find(99); ok {
		t.Error("unexpected shape 99")
	}
}

func TestRenderKeyLine(t *testing.T) {
	got := RenderKeyLine([]KeySection{
		{Title: "play", Keys: []KeyBinding{{"p", "play"}, {"s", "solo"}}},
		{Keys: []KeyBinding{{"q", "quit"}}},
	})
	if got != "p:play  s:solo  q:quit" {
		t.Errorf("unexpected key line %q", got)
	}
}
