package player

import (
	"drawing-player/debug"
	"drawing-player/drawing"
)

// ShapePlayer plays a single shape on its own playhead (solo mode)
type ShapePlayer struct {
	id      drawing.Owner
	drawing *drawing.Drawing
	shape   drawing.ShapeID
	step    int
	column  int

	cancel func()
	done   bool
}

func newShapePlayer(id drawing.Owner, d *drawing.Drawing, shape drawing.ShapeID, step int) *ShapePlayer {
	if step <= 0 {
		step = DefaultStep
	}
	return &ShapePlayer{
		id:      id,
		drawing: d,
		shape:   shape,
		step:    step,
	}
}

// ID returns the owner id this player claims its shape with
func (p *ShapePlayer) ID() drawing.Owner { return p.id }

// Shape returns the id of the shape being played
func (p *ShapePlayer) Shape() drawing.ShapeID { return p.shape }

// Column returns the offset the next tick will play
func (p *ShapePlayer) Column() int { return p.column }

// Done reports whether the solo session has ended
func (p *ShapePlayer) Done() bool { return p.done }

// Tick plays the current offset and advances. Past the shape's width the
// shape is stopped, its playhead reset and the tick source cancelled.
func (p *ShapePlayer) Tick() {
	if p.done {
		return
	}
	s := p.drawing.Shape(p.shape)
	if s == nil {
		debug.Log("solo", "shape=%d removed, ending", p.shape)
		p.terminate()
		return
	}

	s.SetPlayLine(p.column)
	s.Start()

	p.column += p.step
	if p.column > s.Width() {
		debug.Log("solo", "shape=%d done at offset=%d", p.shape, p.column)
		p.terminate()
	}
}

// terminate is idempotent
func (p *ShapePlayer) terminate() {
	if p.done {
		return
	}
	p.done = true
	if p.cancel != nil {
		p.cancel()
	}
	if s := p.drawing.Shape(p.shape); s != nil {
		s.Stop()
		s.SetPlayLine(0)
		s.Release(p.id)
	}
}
