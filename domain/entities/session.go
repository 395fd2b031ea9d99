package entities

// SessionConfig carries the session-level configuration sent in the
// setup frame when a live connection is opened.
type SessionConfig struct {
	// SystemInstruction is an optional system prompt for the session.
	SystemInstruction string

	// ResponseModalities lists the output modalities requested from the
	// server, e.g. "TEXT" or "AUDIO".
	ResponseModalities []string

	// VoiceName selects a prebuilt voice for audio output. Empty means
	// the server default.
	VoiceName string

	// Tools declares function tools the model may call during the
	// session.
	Tools []*Tool
}

// ConnectParams is the target of a connect call. It is retained by the
// client so an automatic reconnect can replay the same request.
type ConnectParams struct {
	Model  string
	Config SessionConfig
}

// SessionInfo is a point-in-time snapshot of the client's session
// state. Readers get a copy, never a live reference.
type SessionInfo struct {
	// Handle is the current resumption handle, empty when none.
	Handle string

	// Resumable reports whether the server has acknowledged the handle
	// as resumable.
	Resumable bool

	// Status is the connection status at snapshot time.
	Status Status

	// Attempts is the current reconnect attempt counter.
	Attempts int
}
