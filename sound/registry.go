package sound

import (
	"sort"

	"drawing-player/debug"
)

// NumChannels is the number of MIDI-style channels opened up front
const NumChannels = 16

// Channel is one logical output slot, mapped to a single instrument
type Channel struct {
	Number     int
	Instrument int
	mapped     bool
	notes      map[int]struct{} // notes currently sounding
}

// InUse reports whether any tone is sounding on this channel
func (c *Channel) InUse() bool { return len(c.notes) > 0 }

// Mapped reports whether an instrument has been assigned
func (c *Channel) Mapped() bool { return c.mapped }

// Notes returns the sounding notes in ascending order
func (c *Channel) Notes() []int {
	out := make([]int, 0, len(c.notes))
	for n := range c.notes {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (c *Channel) noteOn(note int)  { c.notes[note] = struct{}{} }
func (c *Channel) noteOff(note int) { delete(c.notes, note) }

// Registry hands out channels per instrument.
//
// Requests past NumChannels grow the pool instead of failing. That keeps every
// instrument audible but the pool never shrinks within a session, so callers
// feeding it unbounded instrument ids will leak channels.
type Registry struct {
	channels     []*Channel
	byInstrument map[int]*Channel
}

// NewRegistry creates a registry with NumChannels open channels
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset drops every mapping and reopens NumChannels channels
func (r *Registry) Reset() {
	r.channels = make([]*Channel, 0, NumChannels)
	r.byInstrument = make(map[int]*Channel)
	for i := 0; i < NumChannels; i++ {
		r.channels = append(r.channels, newChannel(i))
	}
}

func newChannel(n int) *Channel {
	return &Channel{Number: n, notes: make(map[int]struct{})}
}

// ChannelFor returns the channel mapped to instrument, mapping the next
// unused slot if there is none yet.
func (r *Registry) ChannelFor(instrument int) *Channel {
	if ch, ok := r.byInstrument[instrument]; ok {
		return ch
	}
	ch := r.slot(len(r.byInstrument))
	ch.Instrument = instrument
	ch.mapped = true
	r.byInstrument[instrument] = ch
	debug.Log("channel", "instrument=%d -> channel=%d (mapped=%d)", instrument, ch.Number, len(r.byInstrument))
	return ch
}

// Lookup returns the channel mapped to instrument without allocating
func (r *Registry) Lookup(instrument int) (*Channel, bool) {
	ch, ok := r.byInstrument[instrument]
	return ch, ok
}

// slot returns channel index, growing the pool as needed
func (r *Registry) slot(index int) *Channel {
	for len(r.channels) <= index {
		debug.Log("channel", "growing pool past %d: channel=%d", NumChannels, len(r.channels))
		r.channels = append(r.channels, newChannel(len(r.channels)))
	}
	return r.channels[index]
}

// Mapped returns the number of instruments with a channel
func (r *Registry) Mapped() int { return len(r.byInstrument) }

// Capacity returns the number of channels in the pool
func (r *Registry) Capacity() int { return len(r.channels) }

// Overflowed reports whether the pool has grown past NumChannels
func (r *Registry) Overflowed() bool { return len(r.channels) > NumChannels }

// InUse returns how many channels have at least one sounding tone
func (r *Registry) InUse() int {
	n := 0
	for _, ch := range r.channels {
		if ch.InUse() {
			n++
		}
	}
	return n
}
