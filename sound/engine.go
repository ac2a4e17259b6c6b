package sound

import (
	"sort"
	"sync"

	"drawing-player/debug"
)

// Velocity range that is actually audible; volume = clamp(v) / 100
const (
	MinVelocity = 60
	MaxVelocity = 100
)

// Output is a tone generator backend (oto, MIDI, recorder...)
type Output interface {
	NoteOn(channel, note int, volume float64, timbre Timbre) error
	NoteOff(channel, note int) error
}

// ToneKey identifies an active tone
type ToneKey struct {
	Instrument int
	Note       int
}

// Tone is a sounding (instrument, note) pair
type Tone struct {
	ToneKey
	Channel int
	Volume  float64
	Timbre  Timbre
}

// Engine plays and stops tones, at most one per (instrument, note)
type Engine struct {
	mu       sync.Mutex
	registry *Registry
	out      Output
	active   map[ToneKey]Tone
}

// NewEngine creates an engine writing to out. A nil out discards.
func NewEngine(out Output) *Engine {
	if out == nil {
		out = Discard{}
	}
	return &Engine{
		registry: NewRegistry(),
		out:      out,
		active:   make(map[ToneKey]Tone),
	}
}

// Volume clamps velocity to [MinVelocity, MaxVelocity] and normalizes it
func Volume(velocity int) float64 {
	return float64(max(MinVelocity, min(MaxVelocity, velocity))) / 100.0
}

// Play starts a tone, replacing any tone already sounding for the same key
func (e *Engine) Play(instrument, note, velocity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := ToneKey{Instrument: instrument, Note: note}
	e.stopLocked(key)

	timbre, ok := TimbreFor(note)
	if !ok {
		debug.Log("sound", "no timbre for note=%d, using %s", note, timbre.Name)
	}

	ch := e.registry.ChannelFor(instrument)
	tone := Tone{
		ToneKey: key,
		Channel: ch.Number,
		Volume:  Volume(velocity),
		Timbre:  timbre,
	}
	e.active[key] = tone
	ch.noteOn(note)

	if err := e.out.NoteOn(tone.Channel, note, tone.Volume, timbre); err != nil {
		debug.Log("sound", "note on failed: inst=%d note=%d ch=%d: %v", instrument, note, tone.Channel, err)
		return
	}
	debug.Log("sound", "play inst=%d note=%d vol=%.2f timbre=%s ch=%d", instrument, note, tone.Volume, timbre.Name, tone.Channel)
}

// Stop silences the tone for (instrument, note). Stopping a silent key is a no-op.
func (e *Engine) Stop(instrument, note int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(ToneKey{Instrument: instrument, Note: note})
}

func (e *Engine) stopLocked(key ToneKey) {
	tone, ok := e.active[key]
	if !ok {
		return
	}
	delete(e.active, key)
	if ch, ok := e.registry.Lookup(key.Instrument); ok {
		ch.noteOff(key.Note)
	}
	if err := e.out.NoteOff(tone.Channel, key.Note); err != nil {
		debug.Log("sound", "note off failed: inst=%d note=%d ch=%d: %v", key.Instrument, key.Note, tone.Channel, err)
		return
	}
	debug.Log("sound", "stop inst=%d note=%d ch=%d", key.Instrument, key.Note, tone.Channel)
}

// StopAll silences every active tone
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.active {
		e.stopLocked(key)
	}
}

// IsActive reports whether a tone is sounding for (instrument, note)
func (e *Engine) IsActive(instrument, note int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.active[ToneKey{Instrument: instrument, Note: note}]
	return ok
}

// ActiveCount returns the number of sounding tones
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Tones returns the sounding tones ordered by instrument, then note
func (e *Engine) Tones() []Tone {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Tone, 0, len(e.active))
	for _, t := range e.active {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Instrument != out[j].Instrument {
			return out[i].Instrument < out[j].Instrument
		}
		return out[i].Note < out[j].Note
	})
	return out
}

// ChannelStats returns (mapped instruments, pool capacity, channels in use)
func (e *Engine) ChannelStats() (mapped, capacity, inUse int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Mapped(), e.registry.Capacity(), e.registry.InUse()
}

// Overflowed reports whether the channel pool grew past NumChannels
func (e *Engine) Overflowed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Overflowed()
}
