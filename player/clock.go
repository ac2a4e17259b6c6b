package player

import (
	"sync"
	"time"
)

// Clock delivers recurring ticks. The returned cancel stops further ticks and
// is safe to call more than once, including from inside tick.
type Clock interface {
	Every(interval time.Duration, tick func()) (cancel func())
}

// TickerClock fires ticks from a time.Ticker goroutine
type TickerClock struct{}

func (TickerClock) Every(interval time.Duration, tick func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}

// ManualClock fires ticks only when Advance is called. Tests and the
// headless sweep use it to step playback deterministically.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

type manualTicker struct {
	tick      func()
	cancelled bool
}

func (c *ManualClock) Every(_ time.Duration, tick func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{tick: tick}
	c.tickers = append(c.tickers, t)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.cancelled = true
	}
}

// Advance fires one tick on every live ticker, in registration order
func (c *ManualClock) Advance() {
	c.mu.Lock()
	live := c.tickers[:0]
	for _, t := range c.tickers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	c.tickers = live
	snapshot := make([]*manualTicker, len(live))
	copy(snapshot, live)
	c.mu.Unlock()

	for _, t := range snapshot {
		c.mu.Lock()
		cancelled := t.cancelled
		c.mu.Unlock()
		if !cancelled {
			t.tick()
		}
	}
}

// AdvanceN calls Advance n times
func (c *ManualClock) AdvanceN(n int) {
	for i := 0; i < n; i++ {
		c.Advance()
	}
}

// Active returns the number of tickers that have not been cancelled
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.cancelled {
			n++
		}
	}
	return n
}
