package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"drawing-player/drawing"
	"drawing-player/midi"
	"drawing-player/player"
	"drawing-player/sound"
	"drawing-player/theme"
	"drawing-player/widgets"
)

// Size of shapes added with the "a" key, in canvas units
const (
	newShapeWidth  = 60
	newShapeHeight = 24
)

var keys = []widgets.KeySection{
	{Title: "play", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play"},
		{Key: "s", Desc: "solo"},
		{Key: "x", Desc: "stop all"},
	}},
	{Title: "edit", Keys: []widgets.KeyBinding{
		{Key: "tab", Desc: "select"},
		{Key: "arrows", Desc: "move"},
		{Key: "hjkl", Desc: "cursor"},
		{Key: "a", Desc: "add"},
		{Key: "d", Desc: "delete"},
		{Key: "i", Desc: "instrument"},
	}},
	{Keys: []widgets.KeyBinding{{Key: "q", Desc: "quit"}}},
}

type Model struct {
	Manager *player.Manager
	Drawing *drawing.Drawing
	Engine  *sound.Engine
	Ports   *midi.PortWatcher // nil unless the midi backend is in use
	Theme   *theme.Theme

	canvas   *widgets.Canvas
	selected drawing.ShapeID
	cursorX  int
	cursorY  int
	message  string
	port     string
	quitting bool
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

func NewModel(manager *player.Manager, d *drawing.Drawing, engine *sound.Engine, ports *midi.PortWatcher, th *theme.Theme, cellWidth, cellHeight int) Model {
	m := Model{
		Manager: manager,
		Drawing: d,
		Engine:  engine,
		Ports:   ports,
		Theme:   th,
		canvas:  widgets.NewCanvas(th, cellWidth, cellHeight),
	}
	manager.Do(func() {
		if shapes := d.Shapes(); len(shapes) > 0 {
			m.selected = shapes[0].ID()
		}
	})
	return m
}

func ListenForUpdates(manager *player.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPorts(ports *midi.PortWatcher) tea.Cmd {
	if ports == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-ports.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForPorts(m.Ports),
	)
}

// Selected returns the selected shape id (0 if none)
func (m Model) Selected() drawing.ShapeID { return m.selected }

// Message returns the last status or error line
func (m Model) Message() string { return m.message }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y-headerLines)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case PortEventMsg:
		event := midi.PortEvent(msg)
		if event.Type == midi.PortConnected {
			m.port = event.Name
		} else if m.port == event.Name {
			m.port = ""
		}
		m.message = fmt.Sprintf("%s: %s", event.Type, event.Name)
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	cw, ch := m.canvas.CellWidth, m.canvas.CellHeight

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.CancelAll()
		return m, tea.Quit

	case "p":
		if err := m.Manager.BeginGlobalPlayback(m.Drawing); err != nil {
			m.message = describe(err)
		}

	case "s":
		if m.selected == 0 {
			m.message = "no shape selected"
			break
		}
		if err := m.Manager.BeginSoloPlayback(m.Drawing, m.selected); err != nil {
			m.message = describe(err)
		}

	case "x":
		m.Manager.CancelAll()

	case "tab":
		m.selectNext(1)

	case "shift+tab":
		m.selectNext(-1)

	case "up":
		m.moveSelected(0, -ch)
	case "down":
		m.moveSelected(0, ch)
	case "left":
		m.moveSelected(-cw, 0)
	case "right":
		m.moveSelected(cw, 0)

	case "h":
		m.moveCursor(-cw, 0)
	case "l":
		m.moveCursor(cw, 0)
	case "k":
		m.moveCursor(0, -ch)
	case "j":
		m.moveCursor(0, ch)

	case "a":
		m.Manager.Do(func() {
			s := m.Drawing.AddShape(m.cursorX, m.cursorY, newShapeWidth, newShapeHeight)
			m.selected = s.ID()
		})

	case "d":
		if m.selected == 0 {
			break
		}
		m.Manager.RemoveShape(m.Drawing, m.selected)
		m.selected = 0
		m.selectNext(1)

	case "i":
		m.Manager.Do(func() {
			if s := m.Drawing.Shape(m.selected); s != nil {
				s.SetInstrument((s.Instrument() + 1) % sound.NumChannels)
			}
		})
	}

	return m, nil
}

func describe(err error) string {
	var owned *player.OwnershipError
	switch {
	case errors.As(err, &owned):
		return fmt.Sprintf("shape %d is busy", owned.Shape)
	case errors.Is(err, player.ErrUnknownShape):
		return "shape is gone"
	}
	return err.Error()
}

// selectNext cycles the selection through the drawing's shapes
func (m *Model) selectNext(dir int) {
	m.Manager.Do(func() {
		shapes := m.Drawing.Shapes()
		if len(shapes) == 0 {
			m.selected = 0
			return
		}
		idx := -1
		for i, s := range shapes {
			if s.ID() == m.selected {
				idx = i
				break
			}
		}
		if idx < 0 {
			if dir < 0 {
				idx = 0
			} else {
				idx = len(shapes) - 1
			}
		}
		n := len(shapes)
		m.selected = shapes[((idx+dir)%n+n)%n].ID()
	})
}

func (m *Model) moveSelected(dx, dy int) {
	m.Manager.Do(func() {
		if s := m.Drawing.Shape(m.selected); s != nil {
			s.Move(dx, dy)
		}
	})
}

func (m *Model) moveCursor(dx, dy int) {
	m.cursorX = min(max(0, m.cursorX+dx), m.Drawing.Width())
	m.cursorY = min(max(0, m.cursorY+dy), m.Drawing.Height())
}

// click selects the shape under a canvas cell or moves the cursor there
func (m *Model) click(col, row int) {
	if col < 0 || row < 0 {
		return
	}
	x, y := m.canvas.CellAt(col, row)
	m.cursorX = min(x, m.Drawing.Width())
	m.cursorY = min(y, m.Drawing.Height())
	m.Manager.Do(func() {
		if s := m.Drawing.ShapeAt(x, y); s != nil {
			m.selected = s.ID()
		}
	})
}

// header and blank line above the canvas
const headerLines = 3

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Manager.Status()
	var frame widgets.Frame
	m.Manager.Do(func() {
		frame = widgets.Snapshot(m.Drawing, st.Global, st.SoloShapes)
	})
	mapped, capacity, _ := m.Engine.ChannelStats()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "STOP"
	if st.Global {
		playState = fmt.Sprintf("PLAY %4d", st.Column)
	}
	port := ""
	if m.Ports != nil {
		port = "  port:-"
		if m.port != "" {
			port = "  port:" + m.port
		}
	}
	header := headerStyle.Render(fmt.Sprintf("drawing-player  %s  solos:%d  shapes:%d  ch:%d/%d%s",
		playState, st.Solos, len(frame.Shapes), mapped, capacity, port))

	m.canvas.Selected = m.selected
	m.canvas.CursorX, m.canvas.CursorY = m.cursorX, m.cursorY
	canvas := m.canvas.Render(frame)

	info := dimStyle.Render("no selection")
	if s, ok := frame.Find(m.selected); ok {
		info = dimStyle.Render(fmt.Sprintf("shape %d  x:%d y:%d  %dx%d  note:%d  inst:%d",
			s.ID, s.X, s.Y, s.Width, s.Height, s.Note, s.Instrument))
	}

	sym := m.Theme.Symbols
	legend := strings.Join([]string{
		widgets.RenderLegendItem(m.Theme.Playing(), sym.Playing, "playing", "under a playhead"),
		widgets.RenderLegendItem(m.Theme.Playhead(), sym.Playhead, "playhead", "drawing playback"),
		widgets.RenderLegendItem(m.Theme.Accent(), sym.SoloLine, "solo", "shape playback"),
	}, "\n")

	help := dimStyle.Render(widgets.RenderKeyLine(keys))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(canvas)
	out.WriteString("\n\n")
	out.WriteString(info)
	out.WriteString("\n")
	out.WriteString(legend)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.message != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.message))
	}

	return out.String()
}
