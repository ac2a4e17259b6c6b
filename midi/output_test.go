package midi

import (
	"errors"
	"testing"

	"drawing-player/sound"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type capture struct {
	msgs []gomidi.Message
}

func (c *capture) send(msg gomidi.Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestNoteOnSendsProgramOnce(t *testing.T) {
	c := &capture{}
	out := NewOutput(c.send)

	if err := out.NoteOn(2, 60, 0.8, sound.Basso); err != nil {
		t.Fatalf("NoteOn: %v", err)
	}
	if err := out.NoteOn(2, 64, 0.8, sound.Basso); err != nil {
		t.Fatalf("NoteOn: %v", err)
	}

	if len(c.msgs) != 3 {
		t.Fatalf("expected program + 2 notes, got %d messages", len(c.msgs))
	}

	var ch, prog uint8
	if !c.msgs[0].GetProgramChange(&ch, &prog) {
		t.Fatalf("expected program change first, got %s", c.msgs[0])
	}
	if ch != 2 || prog != sound.Basso.Program {
		t.Errorf("expected ch=2 program=%d, got ch=%d program=%d", sound.Basso.Program, ch, prog)
	}

	var key, vel uint8
	if !c.msgs[1].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected note on, got %s", c.msgs[1])
	}
	if key != 60 || vel != 101 {
		t.Errorf("expected key=60 vel=101, got key=%d vel=%d", key, vel)
	}
}

func TestTimbreChangeResendsProgram(t *testing.T) {
	c := &capture{}
	out := NewOutput(c.send)
	out.NoteOn(0, 60, 1, sound.Ping)
	out.NoteOn(0, 61, 1, sound.Basso)

	var ch, prog uint8
	if !c.msgs[2].GetProgramChange(&ch, &prog) || prog != sound.Basso.Program {
		t.Errorf("expected second program change, got %s", c.msgs[2])
	}
}

func TestChannelFolding(t *testing.T) {
	c := &capture{}
	out := NewOutput(c.send)
	out.NoteOn(18, 60, 1, sound.Ping)

	var ch, key, vel uint8
	if !c.msgs[1].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected note on, got %s", c.msgs[1])
	}
	if ch != 2 {
		t.Errorf("expected channel 18 folded to 2, got %d", ch)
	}
}

func TestNoteRangeRejected(t *testing.T) {
	c := &capture{}
	out := NewOutput(c.send)
	if err := out.NoteOn(0, 128, 1, sound.Ping); err == nil {
		t.Error("expected out of range error")
	}
	if err := out.NoteOff(0, -1); err == nil {
		t.Error("expected out of range error")
	}
	if len(c.msgs) != 0 {
		t.Errorf("nothing should be sent, got %d", len(c.msgs))
	}
}

func TestDisconnectedOutput(t *testing.T) {
	out := NewOutput(nil)
	if err := out.NoteOn(0, 60, 1, sound.Ping); !errors.Is(err, ErrNoPort) {
		t.Errorf("expected ErrNoPort, got %v", err)
	}
	if out.Connected() {
		t.Error("expected disconnected")
	}
}

func TestNoteOffAndClose(t *testing.T) {
	c := &capture{}
	out := NewOutput(c.send)
	out.NoteOn(3, 60, 1, sound.Tink)
	out.NoteOff(3, 60)

	var ch, key, vel uint8
	if !c.msgs[2].GetNoteOff(&ch, &key, &vel) || ch != 3 || key != 60 {
		t.Errorf("expected note off ch=3 key=60, got %s", c.msgs[2])
	}

	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var cc, val uint8
	last := c.msgs[len(c.msgs)-1]
	if !last.GetControlChange(&ch, &cc, &val) || ch != 3 || cc != 123 {
		t.Errorf("expected all notes off on ch 3, got %s", last)
	}
}

func TestWatcherBindsAndUnbinds(t *testing.T) {
	c := &capture{}
	out := NewOutput(nil)
	w := NewPortWatcher("", out)

	ports := []string{"Midi Through Port-0", "FluidSynth"}
	w.listPorts = func() []string { return ports }
	w.open = func(name string) (Sender, error) { return c.send, nil }

	w.scan()
	if w.Connected() != "FluidSynth" {
		t.Fatalf("expected FluidSynth, got %q", w.Connected())
	}
	if out.PortName() != "FluidSynth" || !out.Connected() {
		t.Error("output should be bound to the port")
	}
	if evt := <-w.Events(); evt.Type != PortConnected || evt.Name != "FluidSynth" {
		t.Errorf("unexpected event %+v", evt)
	}

	ports = []string{"Midi Through Port-0"}
	w.scan()
	if w.Connected() != "" || out.Connected() {
		t.Error("expected output to be unbound")
	}
	if evt := <-w.Events(); evt.Type != PortDisconnected {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestWatcherWantsNamedPort(t *testing.T) {
	out := NewOutput(nil)
	w := NewPortWatcher("Synth B", out)
	w.listPorts = func() []string { return []string{"Synth A", "Synth B"} }
	w.open = func(name string) (Sender, error) {
		if name != "Synth B" {
			return nil, errors.New("wrong port")
		}
		return func(gomidi.Message) error { return nil }, nil
	}

	w.scan()
	if w.Connected() != "Synth B" {
		t.Errorf("expected Synth B, got %q", w.Connected())
	}
}
