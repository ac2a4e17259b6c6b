package midi

import (
	"errors"
	"fmt"
	"sync"

	"drawing-player/debug"
	"drawing-player/sound"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrNoPort is returned while no output port is connected
var ErrNoPort = errors.New("midi: no output port")

// Sender writes one message to an output port
type Sender func(gomidi.Message) error

// Output is a sound.Output that drives an external synth over MIDI
type Output struct {
	mu       sync.Mutex
	send     Sender
	portName string
	programs [16]int // last program sent per channel, -1 = none
	used     [16]bool
}

// NewOutput creates an output writing through send (nil = disconnected)
func NewOutput(send Sender) *Output {
	o := &Output{}
	o.SetSender("", send)
	return o
}

// Open finds portName among the output ports and connects to it
func Open(portName string) (*Output, error) {
	send, err := openSender(portName)
	if err != nil {
		return nil, err
	}
	o := &Output{}
	o.SetSender(portName, send)
	return o, nil
}

func openSender(portName string) (Sender, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", portName, err)
			}
			return send, nil
		}
	}
	return nil, fmt.Errorf("output port %q not found", portName)
}

// SetSender swaps the underlying port. Program state is reset so the next
// note on each channel resends its program.
func (o *Output) SetSender(portName string, send Sender) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.send = send
	o.portName = portName
	for i := range o.programs {
		o.programs[i] = -1
		o.used[i] = false
	}
}

// PortName returns the connected port ("" if none or injected)
func (o *Output) PortName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.portName
}

// Connected reports whether a sender is attached
func (o *Output) Connected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.send != nil
}

// foldChannel maps registry channels onto the 16 MIDI channels
func foldChannel(channel int) uint8 {
	if channel < 0 || channel > 15 {
		folded := ((channel % 16) + 16) % 16
		debug.Log("midi", "channel %d folded onto %d", channel, folded)
		return uint8(folded)
	}
	return uint8(channel)
}

func velocityFor(volume float64) uint8 {
	v := int(volume * 127)
	return uint8(max(1, min(127, v)))
}

// NoteOn sends a program change if the channel's timbre changed, then the note
func (o *Output) NoteOn(channel, note int, volume float64, timbre sound.Timbre) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("midi: note %d out of range", note)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return ErrNoPort
	}

	ch := foldChannel(channel)
	if o.programs[ch] != int(timbre.Program) {
		if err := o.send(gomidi.ProgramChange(ch, timbre.Program)); err != nil {
			return fmt.Errorf("program change ch=%d: %w", ch, err)
		}
		o.programs[ch] = int(timbre.Program)
	}
	o.used[ch] = true

	if err := o.send(gomidi.NoteOn(ch, uint8(note), velocityFor(volume))); err != nil {
		return fmt.Errorf("note on ch=%d note=%d: %w", ch, note, err)
	}
	return nil
}

// NoteOff releases a note
func (o *Output) NoteOff(channel, note int) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("midi: note %d out of range", note)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return ErrNoPort
	}

	ch := foldChannel(channel)
	if err := o.send(gomidi.NoteOff(ch, uint8(note))); err != nil {
		return fmt.Errorf("note off ch=%d note=%d: %w", ch, note, err)
	}
	return nil
}

// Close sends All Notes Off on every channel that was used
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return nil
	}
	var errs []error
	for ch, used := range o.used {
		if !used {
			continue
		}
		if err := o.send(gomidi.ControlChange(uint8(ch), 123, 0)); err != nil {
			errs = append(errs, err)
		}
		o.used[ch] = false
	}
	return errors.Join(errs...)
}
