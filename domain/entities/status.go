package entities

// Status represents the connection status of a live client.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected, StatusConnecting, StatusConnected:
		return string(s)
	default:
		return "unknown"
	}
}
