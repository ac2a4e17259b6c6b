package otoplayer

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"drawing-player/debug"
	"drawing-player/sound"
)

type voiceKey struct {
	channel int
	note    int
}

type activeVoice struct {
	voice  *sound.Voice
	player *oto.Player
}

// Output renders tones through an oto context, one player per sounding note
type Output struct {
	ctx        *oto.Context
	sampleRate int

	mu     sync.Mutex
	voices map[voiceKey]activeVoice
}

// New opens the audio device. It blocks until the device is ready.
func New(sampleRate int) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Output{
		ctx:        ctx,
		sampleRate: sampleRate,
		voices:     make(map[voiceKey]activeVoice),
	}, nil
}

// NoteOn starts a voice for (channel, note), replacing any voice already there
func (o *Output) NoteOn(channel, note int, volume float64, timbre sound.Timbre) error {
	if err := o.ctx.Err(); err != nil {
		return fmt.Errorf("oto context: %w", err)
	}

	key := voiceKey{channel, note}
	v := sound.NewVoice(timbre, note, volume, o.sampleRate)
	p := o.ctx.NewPlayer(v)

	o.mu.Lock()
	prev, hadPrev := o.voices[key]
	o.voices[key] = activeVoice{voice: v, player: p}
	o.mu.Unlock()

	if hadPrev {
		o.release(prev)
	}
	p.Play()
	return nil
}

// NoteOff fades the voice for (channel, note) out
func (o *Output) NoteOff(channel, note int) error {
	key := voiceKey{channel, note}

	o.mu.Lock()
	av, ok := o.voices[key]
	delete(o.voices, key)
	o.mu.Unlock()

	if ok {
		o.release(av)
	}
	return nil
}

// release lets the voice fade and closes its player once drained
func (o *Output) release(av activeVoice) {
	av.voice.Release()
	go func() {
		for av.player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		if err := av.player.Close(); err != nil {
			debug.Log("oto", "cannot close player: %v", err)
		}
	}()
}

// Close stops every voice
func (o *Output) Close() error {
	o.mu.Lock()
	voices := o.voices
	o.voices = make(map[voiceKey]activeVoice)
	o.mu.Unlock()

	for _, av := range voices {
		if err := av.player.Close(); err != nil {
			return fmt.Errorf("cannot close oto player: %w", err)
		}
	}
	return nil
}
