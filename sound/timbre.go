package sound

import "math"

// Waveform selects the oscillator shape for a timbre
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveTriangle
	WaveSaw
)

// Timbre is one of the small set of representative sounds a note maps onto
type Timbre struct {
	Name    string
	Program uint8 // General MIDI program for MIDI outputs
	Wave    Waveform
}

var (
	Ping  = Timbre{Name: "Ping", Program: 9, Wave: WaveSine}      // glockenspiel
	Basso = Timbre{Name: "Basso", Program: 33, Wave: WaveSquare}  // fingered bass
	Tink  = Timbre{Name: "Tink", Program: 13, Wave: WaveTriangle} // xylophone
	Pop   = Timbre{Name: "Pop", Program: 115, Wave: WaveSaw}      // woodblock
)

// DefaultTimbre is used when a note has no mapped timbre
var DefaultTimbre = Ping

// 12 notes onto 4 timbres, cyclic
var noteTimbres = [12]Timbre{
	Ping, Basso, Tink, Pop,
	Ping, Basso, Tink, Pop,
	Ping, Basso, Tink, Pop,
}

// TimbreFor returns the timbre for note mod 12. ok is false when the note has
// no mapping (negative notes) and the default was substituted.
func TimbreFor(note int) (t Timbre, ok bool) {
	idx := note % 12
	if idx < 0 {
		return DefaultTimbre, false
	}
	return noteTimbres[idx], true
}

// NoteFrequency returns the equal-tempered frequency of a MIDI note (A4 = 69 = 440Hz)
func NoteFrequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}
