package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"drawing-player/drawing"
	"drawing-player/theme"
)

// ShapeView is what the canvas needs to know about one shape
type ShapeView struct {
	ID         drawing.ShapeID
	X, Y       int
	Width      int
	Height     int
	Instrument int
	Note       int
	Playing    bool
	Solo       bool
	PlayLine   int
}

// Frame is a point-in-time copy of a drawing, safe to render without locks
type Frame struct {
	Width, Height int
	Playhead      int
	ShowPlayhead  bool
	Shapes        []ShapeView
}

// Snapshot copies the drawing into a Frame. The caller must hold whatever
// lock guards d (the player manager's Do).
func Snapshot(d *drawing.Drawing, showPlayhead bool, solos []drawing.ShapeID) Frame {
	solo := make(map[drawing.ShapeID]bool, len(solos))
	for _, id := range solos {
		solo[id] = true
	}

	f := Frame{
		Width:        d.Width(),
		Height:       d.Height(),
		Playhead:     d.PlayheadColumn(),
		ShowPlayhead: showPlayhead,
	}
	for _, s := range d.Shapes() {
		f.Shapes = append(f.Shapes, ShapeView{
			ID:         s.ID(),
			X:          s.X(),
			Y:          s.Y(),
			Width:      s.Width(),
			Height:     s.Height(),
			Instrument: s.Instrument(),
			Note:       s.Note(),
			Playing:    s.IsPlaying(),
			Solo:       solo[s.ID()],
			PlayLine:   s.PlayLine(),
		})
	}
	return f
}

// Find returns the view for id
func (f Frame) Find(id drawing.ShapeID) (ShapeView, bool) {
	for _, s := range f.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return ShapeView{}, false
}

// Canvas renders a Frame as a grid of terminal cells. Each cell covers
// CellWidth x CellHeight canvas units.
type Canvas struct {
	Theme      *theme.Theme
	CellWidth  int
	CellHeight int

	Selected drawing.ShapeID
	CursorX  int // canvas units
	CursorY  int
}

func NewCanvas(th *theme.Theme, cellWidth, cellHeight int) *Canvas {
	return &Canvas{
		Theme:      th,
		CellWidth:  max(1, cellWidth),
		CellHeight: max(1, cellHeight),
	}
}

// Cols returns how many cells wide the frame renders
func (c *Canvas) Cols(f Frame) int { return f.Width/c.CellWidth + 1 }

// Rows returns how many cells tall the frame renders
func (c *Canvas) Rows(f Frame) int { return f.Height/c.CellHeight + 1 }

// CellAt converts a cell position into canvas units
func (c *Canvas) CellAt(col, row int) (x, y int) {
	return col * c.CellWidth, row * c.CellHeight
}

type cell struct {
	r     rune
	color lipgloss.Color
}

// Render draws the frame
func (c *Canvas) Render(f Frame) string {
	cols, rows := c.Cols(f), c.Rows(f)
	sym := c.Theme.Symbols

	grid := make([][]cell, rows)
	for row := range grid {
		grid[row] = make([]cell, cols)
		for col := range grid[row] {
			grid[row][col] = cell{sym.Empty, c.Theme.Muted()}
		}
	}

	// Paint back to front so the first shape, which wins hit tests, ends on top
	for i := len(f.Shapes) - 1; i >= 0; i-- {
		s := f.Shapes[i]
		c0, c1 := s.X/c.CellWidth, (s.X+s.Width)/c.CellWidth
		r0, r1 := s.Y/c.CellHeight, (s.Y+s.Height)/c.CellHeight

		fill := cell{sym.Shape, c.Theme.Instrument(s.Instrument)}
		switch {
		case s.Playing:
			fill = cell{sym.Playing, c.Theme.Playing()}
		case s.ID == c.Selected:
			fill = cell{sym.Selected, c.Theme.Cursor()}
		}

		soloCol := -1
		if s.Solo {
			soloCol = (s.X + s.PlayLine) / c.CellWidth
		}

		for row := max(0, r0); row <= min(rows-1, r1); row++ {
			for col := max(0, c0); col <= min(cols-1, c1); col++ {
				if col == soloCol {
					grid[row][col] = cell{sym.SoloLine, c.Theme.Accent()}
					continue
				}
				grid[row][col] = fill
			}
		}
	}

	if f.ShowPlayhead {
		col := f.Playhead / c.CellWidth
		if col >= 0 && col < cols {
			for row := range grid {
				if grid[row][col].r == sym.Empty {
					grid[row][col] = cell{sym.Playhead, c.Theme.Playhead()}
				}
			}
		}
	}

	cc, cr := c.CursorX/c.CellWidth, c.CursorY/c.CellHeight
	if cr >= 0 && cr < rows && cc >= 0 && cc < cols && grid[cr][cc].r == sym.Empty {
		grid[cr][cc] = cell{sym.Cursor, c.Theme.Cursor()}
	}

	lines := make([]string, rows)
	for row := range grid {
		lines[row] = renderRun(grid[row])
	}
	return strings.Join(lines, "\n")
}

// renderRun styles consecutive cells of the same colour together
func renderRun(cells []cell) string {
	var out strings.Builder
	start := 0
	for i := 1; i <= len(cells); i++ {
		if i < len(cells) && cells[i].color == cells[start].color {
			continue
		}
		var run strings.Builder
		for _, c := range cells[start:i] {
			run.WriteRune(c.r)
		}
		out.WriteString(lipgloss.NewStyle().Foreground(cells[start].color).Render(run.String()))
		start = i
	}
	return out.String()
}
