package sound

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"
)

// Envelope lengths in seconds
const (
	attackTime  = 0.005
	releaseTime = 0.02
)

// Voice is a sustained oscillator for one tone. It renders mono float32 LE
// samples through Read until Release is called and the release fade ends.
type Voice struct {
	wave       Waveform
	freq       float64
	volume     float64
	sampleRate int

	phase    float64
	pos      int
	released atomic.Bool
	fadePos  int
}

// NewVoice creates a voice for note at volume (0..1)
func NewVoice(t Timbre, note int, volume float64, sampleRate int) *Voice {
	return &Voice{
		wave:       t.Wave,
		freq:       NoteFrequency(note),
		volume:     volume,
		sampleRate: sampleRate,
	}
}

// Release starts the fade out. Safe to call from any goroutine.
func (v *Voice) Release() { v.released.Store(true) }

// Done reports whether the release fade has finished
func (v *Voice) Done() bool {
	return v.released.Load() && v.fadePos >= v.fadeLen()
}

func (v *Voice) fadeLen() int { return int(releaseTime * float64(v.sampleRate)) }

// Sample returns the next sample in [-1, 1] and false once the voice is finished
func (v *Voice) Sample() (float64, bool) {
	if v.Done() {
		return 0, false
	}

	env := 1.0
	if attack := int(attackTime * float64(v.sampleRate)); v.pos < attack {
		env = float64(v.pos) / float64(attack)
	}
	if v.released.Load() {
		env *= 1 - float64(v.fadePos)/float64(v.fadeLen())
		v.fadePos++
	}

	s := oscillate(v.wave, v.phase) * env * v.volume
	v.phase += v.freq / float64(v.sampleRate)
	v.phase -= math.Floor(v.phase)
	v.pos++
	return s, true
}

// Read fills p with float32 LE samples. It returns io.EOF once released and faded.
func (v *Voice) Read(p []byte) (int, error) {
	n := 0
	for ; n+4 <= len(p); n += 4 {
		s, ok := v.Sample()
		if !ok {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(float32(s)))
	}
	return n, nil
}

func oscillate(w Waveform, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return 4*math.Abs(phase-0.5) - 1
	case WaveSaw:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
