package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"drawing-player/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Virtual/system ports that are never picked automatically
var excludedPorts = []string{"midi through", "through port", "dummy"}

// PortWatcher keeps an Output attached to a MIDI output port across hot-plug
type PortWatcher struct {
	portName string // wanted port, "" = first usable one
	output   *Output

	mu        sync.RWMutex
	connected string
	events    chan PortEvent
	pollRate  time.Duration

	listPorts func() []string
	open      func(name string) (Sender, error)
}

// NewPortWatcher creates a watcher that binds out to portName
func NewPortWatcher(portName string, out *Output) *PortWatcher {
	return &PortWatcher{
		portName:  portName,
		output:    out,
		events:    make(chan PortEvent, 16),
		pollRate:  time.Second,
		listPorts: OutPorts,
		open:      openSender,
	}
}

// OutPorts lists the names of all MIDI output ports
func OutPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// Events returns a channel of connect/disconnect events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Connected returns the name of the bound port ("" if none)
func (w *PortWatcher) Connected() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Run polls for port changes until ctx is done (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-ctx.Done():
			if err := w.output.Close(); err != nil {
				debug.Log("ports", "close output: %v", err)
			}
			close(w.events)
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *PortWatcher) scan() {
	// Port enumeration can hang on some drivers
	ch := make(chan []string, 1)
	go func() {
		ch <- w.listPorts()
	}()

	var ports []string
	select {
	case ports = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("ports", "port scan timed out")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.connected != "" {
		for _, p := range ports {
			if p == w.connected {
				return
			}
		}
		debug.Log("ports", "port disappeared: %s", w.connected)
		w.output.SetSender("", nil)
		w.emit(PortEvent{Type: PortDisconnected, Name: w.connected})
		w.connected = ""
	}

	name, ok := w.pick(ports)
	if !ok {
		return
	}
	send, err := w.open(name)
	if err != nil {
		debug.Log("ports", "connect %s failed: %v", name, err)
		return
	}
	w.output.SetSender(name, send)
	w.connected = name
	debug.Log("ports", "connected: %s", name)
	w.emit(PortEvent{Type: PortConnected, Name: name})
}

func (w *PortWatcher) pick(ports []string) (string, bool) {
	for _, p := range ports {
		if w.portName != "" {
			if p == w.portName {
				return p, true
			}
			continue
		}
		if !isExcluded(p) {
			return p, true
		}
	}
	return "", false
}

func (w *PortWatcher) emit(evt PortEvent) {
	select {
	case w.events <- evt:
	default:
		debug.Log("ports", "event dropped: %s %s", evt.Type, evt.Name)
	}
}

func isExcluded(name string) bool {
	name = strings.ToLower(name)
	for _, pat := range excludedPorts {
		if strings.Contains(name, pat) {
			return true
		}
	}
	return false
}
