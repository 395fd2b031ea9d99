package entities

import "time"

// CloseInfo describes a connection closure delivered to event
// subscribers.
type CloseInfo struct {
	Code   int
	Reason string
}

// GoAwayInfo is the event payload for a server termination warning.
type GoAwayInfo struct {
	TimeLeft time.Duration
	Reason   string
}

// ResumptionUpdate is the event payload for a session resumption
// update.
type ResumptionUpdate struct {
	Handle    string
	Resumable bool
}

// LogEntry is a client activity record mirrored on the event bus for
// consumers that surface a message log.
type LogEntry struct {
	Time    time.Time
	Kind    string
	Message string
}
