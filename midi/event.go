package midi

// PortEvent is emitted when the watched output port appears or disappears
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

func (t PortEventType) String() string {
	switch t {
	case PortConnected:
		return "connected"
	case PortDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
