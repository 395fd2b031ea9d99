package livewire

import "errors"

var (
	// ErrAlreadyConnecting is returned by Connect while another
	// connect attempt is in flight.
	ErrAlreadyConnecting = errors.New("livewire: already connecting")

	// ErrAlreadyConnected is returned by Connect while a session is
	// established.
	ErrAlreadyConnected = errors.New("livewire: already connected")

	// ErrNotConnected is returned by operations that need an
	// established session.
	ErrNotConnected = errors.New("livewire: not connected")

	// ErrNoSession is returned by ForceReconnect when no connection
	// parameters have been retained.
	ErrNoSession = errors.New("livewire: no previous connection to replay")

	// ErrDestroyed is returned once Destroy has been called.
	ErrDestroyed = errors.New("livewire: client destroyed")

	// ErrConnectAborted is returned when a disconnect superseded an
	// in-flight connect attempt.
	ErrConnectAborted = errors.New("livewire: connect aborted")
)
