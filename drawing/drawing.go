package drawing

// Drawing owns the shapes on a canvas and the global playhead column
type Drawing struct {
	width  int
	height int

	shapes []*Shape // dense, in insertion order
	nextID ShapeID

	playLine int
	sound    SoundProducer
}

// New creates an empty drawing. sound may be nil for a silent drawing.
func New(width, height int, sound SoundProducer) *Drawing {
	return &Drawing{
		width:  width,
		height: height,
		sound:  sound,
	}
}

// Width is the canvas width, used as the global playback bound
func (d *Drawing) Width() int { return d.width }

// Height is the canvas height
func (d *Drawing) Height() int { return d.height }

// PlayheadColumn returns the column of the global playhead
func (d *Drawing) PlayheadColumn() int { return d.playLine }

// SetPlayheadColumn moves the global playhead marker. Rendering only.
func (d *Drawing) SetPlayheadColumn(column int) { d.playLine = column }

// AddShape adds a shape with top-left (x, y) and the given size
func (d *Drawing) AddShape(x, y, width, height int) *Shape {
	d.nextID++
	s := &Shape{
		id:     d.nextID,
		x:      x,
		y:      y,
		width:  max(0, width),
		height: max(0, height),
		sound:  d.sound,
	}
	d.shapes = append(d.shapes, s)
	return s
}

// RemoveShape deletes a shape, silencing it first. Returns false if not found.
func (d *Drawing) RemoveShape(id ShapeID) bool {
	for i, s := range d.shapes {
		if s.id == id {
			s.Stop()
			d.shapes = append(d.shapes[:i], d.shapes[i+1:]...)
			return true
		}
	}
	return false
}

// Shape looks up a shape by id (nil if absent)
func (d *Drawing) Shape(id ShapeID) *Shape {
	for _, s := range d.shapes {
		if s.id == id {
			return s
		}
	}
	return nil
}

// Contains reports whether a shape with the given id is in the drawing
func (d *Drawing) Contains(id ShapeID) bool {
	return d.Shape(id) != nil
}

// Shapes returns a snapshot of all shapes in insertion order
func (d *Drawing) Shapes() []*Shape {
	out := make([]*Shape, len(d.shapes))
	copy(out, d.shapes)
	return out
}

// Len returns the number of shapes
func (d *Drawing) Len() int { return len(d.shapes) }

// ShapeAt returns the first shape containing (x, y), or nil
func (d *Drawing) ShapeAt(x, y int) *Shape {
	for _, s := range d.shapes {
		if s.Contains(x, y) {
			return s
		}
	}
	return nil
}

// ShapesAtColumn returns all shapes whose horizontal extent includes column x
func (d *Drawing) ShapesAtColumn(x int) []*Shape {
	var out []*Shape
	for _, s := range d.shapes {
		if s.ContainsX(x) {
			out = append(out, s)
		}
	}
	return out
}

// Playing returns the ids of shapes currently in the Playing state
func (d *Drawing) Playing() []ShapeID {
	var ids []ShapeID
	for _, s := range d.shapes {
		if s.playing {
			ids = append(ids, s.id)
		}
	}
	return ids
}
