package sound

import (
	"errors"
	"sync"
)

// Discard drops every tone
type Discard struct{}

func (Discard) NoteOn(channel, note int, volume float64, timbre Timbre) error { return nil }
func (Discard) NoteOff(channel, note int) error                                { return nil }

// Event is a NoteOn/NoteOff captured by a Recorder
type Event struct {
	On      bool
	Channel int
	Note    int
	Volume  float64
	Timbre  string
}

// Recorder keeps every event it receives. Used by tests and the headless sweep.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) NoteOn(channel, note int, volume float64, timbre Timbre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{On: true, Channel: channel, Note: note, Volume: volume, Timbre: timbre.Name})
	return nil
}

func (r *Recorder) NoteOff(channel, note int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Channel: channel, Note: note})
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Counts returns the number of NoteOn and NoteOff events
func (r *Recorder) Counts() (on, off int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.On {
			on++
		} else {
			off++
		}
	}
	return on, off
}

// Tee fans out to several outputs. Every output is tried; errors are joined.
type Tee []Output

func (t Tee) NoteOn(channel, note int, volume float64, timbre Timbre) error {
	var errs []error
	for _, o := range t {
		if err := o.NoteOn(channel, note, volume, timbre); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t Tee) NoteOff(channel, note int) error {
	var errs []error
	for _, o := range t {
		if err := o.NoteOff(channel, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
