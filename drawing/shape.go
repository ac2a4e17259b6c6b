package drawing

// ShapeID identifies a shape for the lifetime of its drawing. IDs are never reused.
type ShapeID uint64

// Owner identifies the scheduler currently driving a shape (NoOwner = free)
type Owner uint64

const NoOwner Owner = 0

// SoundProducer voices shapes
type SoundProducer interface {
	Play(instrument, note, velocity int)
	Stop(instrument, note int)
}

// Velocity bounds for area mapping. Anything below 60 is too quiet to hear.
const (
	minVelocity = 60
	maxVelocity = 127
)

// Shape is a rectangle on the canvas that sounds while under a playhead
type Shape struct {
	id     ShapeID
	x, y   int
	width  int
	height int

	instrument int
	sound      SoundProducer

	// Playback state
	playing  bool
	playLine int // offset of the solo playhead, 0 = hidden
	owner    Owner
}

// ID returns the shape's stable identifier
func (s *Shape) ID() ShapeID { return s.id }

func (s *Shape) X() int      { return s.x }
func (s *Shape) Y() int      { return s.y }
func (s *Shape) Width() int  { return s.width }
func (s *Shape) Height() int { return s.height }

// Instrument returns the instrument id used when the shape sounds
func (s *Shape) Instrument() int { return s.instrument }

// SetInstrument changes the instrument. A playing shape is re-voiced.
func (s *Shape) SetInstrument(instrument int) {
	if instrument == s.instrument {
		return
	}
	if s.playing {
		s.stopSound()
		s.instrument = instrument
		s.playSound()
		return
	}
	s.instrument = instrument
}

// IsPlaying reports whether the shape is in the Playing state
func (s *Shape) IsPlaying() bool { return s.playing }

// PlayLine returns the solo playhead offset relative to the shape's left edge
func (s *Shape) PlayLine() int { return s.playLine }

// SetPlayLine moves the solo playhead offset
func (s *Shape) SetPlayLine(offset int) { s.playLine = offset }

// Owner returns the scheduler that currently drives this shape
func (s *Shape) Owner() Owner { return s.owner }

// Claim makes o the owner. It fails if another owner already holds the shape.
func (s *Shape) Claim(o Owner) bool {
	if s.owner != NoOwner && s.owner != o {
		return false
	}
	s.owner = o
	return true
}

// Release frees the shape if o owns it
func (s *Shape) Release(o Owner) {
	if s.owner == o {
		s.owner = NoOwner
	}
}

// ContainsX reports whether column x lies within [x, x+width]
func (s *Shape) ContainsX(x int) bool {
	return s.x <= x && x <= s.x+s.width
}

// ContainsY reports whether row y lies within [y, y+height]
func (s *Shape) ContainsY(y int) bool {
	return s.y <= y && y <= s.y+s.height
}

// Contains reports whether the point (x, y) is inside the shape
func (s *Shape) Contains(x, y int) bool {
	return s.ContainsX(x) && s.ContainsY(y)
}

// SetBounds moves the bottom-right corner to (x, y). Negative extents collapse to zero.
func (s *Shape) SetBounds(x, y int) {
	s.width = max(0, x-s.x)
	s.height = max(0, y-s.y)
}

// Move shifts the shape. If the note changes while playing, the old note is
// stopped and the new one played.
func (s *Shape) Move(dx, dy int) {
	noteChanges := CoordToNote(s.y) != CoordToNote(s.y+dy)

	if noteChanges && s.playing {
		s.stopSound()
	}

	s.x += dx
	s.y += dy

	if noteChanges && s.playing {
		s.playSound()
	}
}

// Note returns the MIDI-style note for the shape's vertical position
func (s *Shape) Note() int { return CoordToNote(s.y) }

// Velocity returns the velocity for the shape's area
func (s *Shape) Velocity() int { return AreaToVelocity(s.width * s.height) }

// Start is the enter transition: Idle -> Playing. No-op when already playing.
func (s *Shape) Start() {
	if s.playing {
		return
	}
	s.playing = true
	s.playSound()
}

// Stop is the exit transition: Playing -> Idle. No-op when idle.
func (s *Shape) Stop() {
	if !s.playing {
		return
	}
	s.playing = false
	s.stopSound()
}

func (s *Shape) playSound() {
	if s.sound == nil {
		return
	}
	s.sound.Play(s.instrument, s.Note(), s.Velocity())
}

func (s *Shape) stopSound() {
	if s.sound == nil {
		return
	}
	s.sound.Stop(s.instrument, s.Note())
}

// CoordToNote maps a y coordinate to a note, one semitone per 12 units
func CoordToNote(y int) int {
	return 70 - y/12
}

// AreaToVelocity maps a shape area to a velocity in [60, 127]
func AreaToVelocity(area int) int {
	return max(minVelocity, min(maxVelocity, area/30))
}
