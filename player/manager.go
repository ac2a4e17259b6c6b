package player

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"drawing-player/debug"
	"drawing-player/drawing"
)

// Settings control the tick cadence and playhead step
type Settings struct {
	Interval time.Duration
	Step     int
}

// DefaultSettings is 50ms ticks, 10 columns per tick
func DefaultSettings() Settings {
	return Settings{
		Interval: 50 * time.Millisecond,
		Step:     DefaultStep,
	}
}

// Status is a snapshot of what the manager is driving
type Status struct {
	Global     bool              // a global session is running
	Column     int               // global playhead column
	Solos      int               // running solo sessions
	SoloShapes []drawing.ShapeID // shapes under solo playback
}

// Manager is the trigger layer: it starts and cancels playback sessions.
//
// All tick bodies and all calls into the manager run under one mutex, so
// ticks are strictly sequential no matter which goroutine the Clock fires on.
type Manager struct {
	mu       sync.Mutex
	clock    Clock
	settings Settings

	nextOwner drawing.Owner
	global    *DrawingPlayer
	solos     map[drawing.Owner]*ShapePlayer

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager. A nil clock uses TickerClock.
func NewManager(clock Clock, settings Settings) *Manager {
	if clock == nil {
		clock = TickerClock{}
	}
	if settings.Interval <= 0 {
		settings.Interval = DefaultSettings().Interval
	}
	if settings.Step <= 0 {
		settings.Step = DefaultStep
	}
	return &Manager{
		clock:      clock,
		settings:   settings,
		solos:      make(map[drawing.Owner]*ShapePlayer),
		UpdateChan: make(chan struct{}, 1),
	}
}

func (m *Manager) newOwner() drawing.Owner {
	m.nextOwner++
	return m.nextOwner
}

// BeginGlobalPlayback sweeps a playhead across d from column 0.
//
// A running global session is cancelled first. Fails with ErrAlreadyOwned if
// any shape in d is under solo playback; nothing is changed in that case.
func (m *Manager) BeginGlobalPlayback(d *drawing.Drawing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var allowed []drawing.Owner
	if m.global != nil {
		allowed = append(allowed, m.global.id)
	}
	if cerr := conflict(d, allowed...); cerr != nil {
		debug.Log("owner", "global rejected: %v", cerr)
		return fmt.Errorf("begin global playback: %w", cerr)
	}

	if m.global != nil {
		m.stopGlobalLocked()
	}

	p := newDrawingPlayer(m.newOwner(), d, m.settings.Step)
	p.claimAll()
	d.SetPlayheadColumn(0)
	m.global = p
	p.cancel = m.clock.Every(m.settings.Interval, m.guard(func() {
		p.Tick()
		if p.Done() && m.global == p {
			m.global = nil
		}
	}))

	debug.Log("owner", "global session %d started over %d shapes", p.id, d.Len())
	return nil
}

// BeginSoloPlayback plays one shape on its own playhead.
//
// Restarting a shape that is already soloing cancels the old session.
// Fails with ErrAlreadyOwned if the shape is under global playback.
func (m *Manager) BeginSoloPlayback(d *drawing.Drawing, id drawing.ShapeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := d.Shape(id)
	if s == nil {
		return fmt.Errorf("begin solo playback: shape %d: %w", id, ErrUnknownShape)
	}

	if owner := s.Owner(); owner != drawing.NoOwner {
		prev, ok := m.solos[owner]
		if !ok {
			err := &OwnershipError{Shape: id, Owner: owner}
			debug.Log("owner", "solo rejected: %v", err)
			return fmt.Errorf("begin solo playback: %w", err)
		}
		prev.terminate()
		delete(m.solos, owner)
	}

	p := newShapePlayer(m.newOwner(), d, id, m.settings.Step)
	s.Claim(p.id)
	s.SetPlayLine(0)
	m.solos[p.id] = p
	p.cancel = m.clock.Every(m.settings.Interval, m.guard(func() {
		p.Tick()
		if p.Done() {
			delete(m.solos, p.id)
		}
	}))

	debug.Log("owner", "solo session %d started on shape %d", p.id, id)
	return nil
}

// CancelAll ends every session, stopping all playing shapes and resetting playheads
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.global != nil {
		m.stopGlobalLocked()
	}
	for owner, p := range m.solos {
		p.terminate()
		delete(m.solos, owner)
	}
	debug.Log("owner", "all sessions cancelled")
	m.notifyUpdate()
}

func (m *Manager) stopGlobalLocked() {
	m.global.terminate()
	m.global.drawing.SetPlayheadColumn(0)
	m.global = nil
}

// RemoveShape deletes a shape, ending any solo session on it first
func (m *Manager) RemoveShape(d *drawing.Drawing, id drawing.ShapeID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := d.Shape(id); s != nil {
		if p, ok := m.solos[s.Owner()]; ok {
			p.terminate()
			delete(m.solos, p.id)
		}
	}
	return d.RemoveShape(id)
}

// Do runs fn under the manager lock. Use it for edits and reads of drawings
// that may be under playback.
func (m *Manager) Do(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// Status returns a snapshot of the running sessions
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{Solos: len(m.solos)}
	for _, p := range m.solos {
		st.SoloShapes = append(st.SoloShapes, p.shape)
	}
	sort.Slice(st.SoloShapes, func(i, j int) bool { return st.SoloShapes[i] < st.SoloShapes[j] })
	if m.global != nil {
		st.Global = true
		st.Column = m.global.drawing.PlayheadColumn()
	}
	return st
}

// Settings returns the tick settings
func (m *Manager) Settings() Settings { return m.settings }

// guard wraps a tick body with the manager lock and a UI notification
func (m *Manager) guard(tick func()) func() {
	return func() {
		m.mu.Lock()
		tick()
		m.mu.Unlock()
		m.notifyUpdate()
	}
}

// notifyUpdate signals the UI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
