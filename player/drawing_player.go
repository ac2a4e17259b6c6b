package player

import (
	"drawing-player/debug"
	"drawing-player/drawing"
)

// DefaultStep is how far the playhead moves per tick
const DefaultStep = 10

// DrawingPlayer sweeps one playhead across a whole drawing.
//
// Every tick the set of shapes under the playhead is recomputed from scratch
// and diffed against the previous tick by ShapeID. Shapes entering the set are
// started before shapes leaving it are stopped. Once the playhead passes the
// canvas width the session ends: the tick source is cancelled and anything
// still playing is stopped.
type DrawingPlayer struct {
	id      drawing.Owner
	drawing *drawing.Drawing
	step    int
	column  int

	previous []drawing.ShapeID // members at the last tick, in drawing order
	owned    map[drawing.ShapeID]struct{}

	cancel func()
	done   bool
	ticks  int
}

func newDrawingPlayer(id drawing.Owner, d *drawing.Drawing, step int) *DrawingPlayer {
	if step <= 0 {
		step = DefaultStep
	}
	return &DrawingPlayer{
		id:      id,
		drawing: d,
		step:    step,
		owned:   make(map[drawing.ShapeID]struct{}),
	}
}

// conflict returns the first shape held by an owner not in allowed
func conflict(d *drawing.Drawing, allowed ...drawing.Owner) *OwnershipError {
	for _, s := range d.Shapes() {
		owner := s.Owner()
		if owner == drawing.NoOwner {
			continue
		}
		ok := false
		for _, a := range allowed {
			if owner == a {
				ok = true
				break
			}
		}
		if !ok {
			return &OwnershipError{Shape: s.ID(), Owner: owner}
		}
	}
	return nil
}

// claimAll takes every shape in the drawing. Callers check conflict first.
func (p *DrawingPlayer) claimAll() {
	for _, s := range p.drawing.Shapes() {
		p.claim(s)
	}
}

func (p *DrawingPlayer) claim(s *drawing.Shape) bool {
	if !s.Claim(p.id) {
		return false
	}
	p.owned[s.ID()] = struct{}{}
	return true
}

// ID returns the owner id this player claims shapes with
func (p *DrawingPlayer) ID() drawing.Owner { return p.id }

// Column returns the column the next tick will play
func (p *DrawingPlayer) Column() int { return p.column }

// Done reports whether the session has ended
func (p *DrawingPlayer) Done() bool { return p.done }

// Ticks returns how many ticks changed state
func (p *DrawingPlayer) Ticks() int { return p.ticks }

// Tick advances the session by one step. No-op after termination.
func (p *DrawingPlayer) Tick() {
	if p.done {
		return
	}
	p.ticks++

	var current []drawing.ShapeID
	members := make(map[drawing.ShapeID]*drawing.Shape)
	for _, s := range p.drawing.ShapesAtColumn(p.column) {
		// Shapes added mid-session are picked up here unless a solo holds them
		if !p.claim(s) {
			continue
		}
		members[s.ID()] = s
		current = append(current, s.ID())
	}

	was := make(map[drawing.ShapeID]struct{}, len(p.previous))
	for _, id := range p.previous {
		was[id] = struct{}{}
	}

	// Enter before exit
	for _, id := range current {
		if _, ok := was[id]; !ok {
			debug.Log("tick", "col=%d enter shape=%d", p.column, id)
			members[id].Start()
		}
	}
	for _, id := range p.previous {
		if _, ok := members[id]; ok {
			continue
		}
		if s := p.drawing.Shape(id); s != nil {
			debug.Log("tick", "col=%d exit shape=%d", p.column, id)
			s.Stop()
		}
	}

	p.drawing.SetPlayheadColumn(p.column)
	debug.LogEvery(20, "tick", "global col=%d members=%d", p.column, len(current))

	p.column += p.step
	p.previous = current

	if p.column > p.drawing.Width() {
		debug.Log("tick", "global session done at col=%d", p.column)
		p.terminate()
	}
}

// terminate ends the session once: cancels the tick source, stops every
// member still playing and releases ownership.
func (p *DrawingPlayer) terminate() {
	if p.done {
		return
	}
	p.done = true
	if p.cancel != nil {
		p.cancel()
	}

	for _, id := range p.previous {
		if s := p.drawing.Shape(id); s != nil {
			s.Stop()
		}
	}
	p.previous = nil

	for id := range p.owned {
		if s := p.drawing.Shape(id); s != nil {
			s.Release(p.id)
		}
	}
	p.owned = make(map[drawing.ShapeID]struct{})
}
