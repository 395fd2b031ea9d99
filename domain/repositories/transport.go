package repositories

import (
	"context"

	"github.com/palomar-io/livewire/domain/entities"
)

// SessionCallbacks are invoked by the transport for session lifecycle
// and inbound traffic. OnMessage is called serially in arrival order.
type SessionCallbacks struct {
	OnOpen    func()
	OnMessage func(msg *entities.ServerMessage)
	OnError   func(err error)
	OnClose   func(code int, reason string)
}

// LiveSession is an established live connection. It is owned
// exclusively by the client state machine; no other component may call
// send or close on it.
type LiveSession interface {
	// SendContent submits content turns. A nil turns slice with
	// turnComplete false is a keepalive.
	SendContent(turns []*entities.Content, turnComplete bool) error

	// SendRealtimeInput streams media chunks.
	SendRealtimeInput(chunks []entities.Blob) error

	// SendToolResponse returns function call results to the server.
	SendToolResponse(responses []*entities.FunctionResponse) error

	// Close closes the underlying connection. Safe to call more than
	// once.
	Close() error
}

// Transport opens live sessions against the remote endpoint. A
// non-empty handle is attached to the setup frame so the server may
// resume prior context.
type Transport interface {
	Open(ctx context.Context, params entities.ConnectParams, handle string, cb SessionCallbacks) (LiveSession, error)
}
