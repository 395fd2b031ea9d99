package livewire

import (
	"sync"

	"github.com/palomar-io/livewire/domain/entities"
)

// registry holds typed handlers for one event kind. Handlers run
// synchronously in subscription order.
type registry[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

func (r *registry[T]) subscribe(fn func(T)) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscription[T]{id: id, fn: fn})
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *registry[T]) emit(v T) {
	r.mu.RLock()
	subs := make([]subscription[T], len(r.subs))
	copy(subs, r.subs)
	r.mu.RUnlock()
	for _, s := range subs {
		s.fn(v)
	}
}

func (r *registry[T]) reset() {
	r.mu.Lock()
	r.subs = nil
	r.mu.Unlock()
}

// Bus delivers typed client events to external consumers. It is a
// plain aggregation of named callback registries; subscribing returns
// an unsubscribe func.
type Bus struct {
	open               registry[struct{}]
	closed             registry[entities.CloseInfo]
	errs               registry[error]
	audio              registry[[]byte]
	content            registry[[]*entities.Part]
	interrupted        registry[struct{}]
	turnComplete       registry[struct{}]
	generationComplete registry[struct{}]
	toolCall           registry[*entities.ToolCall]
	toolCancel         registry[*entities.ToolCallCancellation]
	setupComplete      registry[struct{}]
	resumption         registry[entities.ResumptionUpdate]
	goAway             registry[entities.GoAwayInfo]
	log                registry[entities.LogEntry]
}

func newBus() *Bus { return &Bus{} }

// OnOpen fires when a connection is established.
func (b *Bus) OnOpen(fn func()) func() {
	return b.open.subscribe(func(struct{}) { fn() })
}

// OnClose fires when the connection closes, with the closure code and
// reason.
func (b *Bus) OnClose(fn func(entities.CloseInfo)) func() {
	return b.closed.subscribe(fn)
}

// OnError fires for transport errors that do not map to a closure.
func (b *Bus) OnError(fn func(error)) func() {
	return b.errs.subscribe(fn)
}

// OnAudio fires once per inbound audio part, with the decoded bytes.
func (b *Bus) OnAudio(fn func([]byte)) func() {
	return b.audio.subscribe(fn)
}

// OnContent fires with the non-audio parts of a content message.
func (b *Bus) OnContent(fn func([]*entities.Part)) func() {
	return b.content.subscribe(fn)
}

// OnInterrupted fires when generation was interrupted server-side.
func (b *Bus) OnInterrupted(fn func()) func() {
	return b.interrupted.subscribe(func(struct{}) { fn() })
}

// OnTurnComplete fires when the model finishes a turn.
func (b *Bus) OnTurnComplete(fn func()) func() {
	return b.turnComplete.subscribe(func(struct{}) { fn() })
}

// OnGenerationComplete fires when the model finishes generating.
func (b *Bus) OnGenerationComplete(fn func()) func() {
	return b.generationComplete.subscribe(func(struct{}) { fn() })
}

// OnToolCall fires when the server requests function calls.
func (b *Bus) OnToolCall(fn func(*entities.ToolCall)) func() {
	return b.toolCall.subscribe(fn)
}

// OnToolCallCancellation fires when the server cancels function calls.
func (b *Bus) OnToolCallCancellation(fn func(*entities.ToolCallCancellation)) func() {
	return b.toolCancel.subscribe(fn)
}

// OnSetupComplete fires once the server acknowledges session setup.
func (b *Bus) OnSetupComplete(fn func()) func() {
	return b.setupComplete.subscribe(func(struct{}) { fn() })
}

// OnSessionResumptionUpdate fires for every resumption update.
func (b *Bus) OnSessionResumptionUpdate(fn func(entities.ResumptionUpdate)) func() {
	return b.resumption.subscribe(fn)
}

// OnGoAway fires when the server warns of imminent termination.
func (b *Bus) OnGoAway(fn func(entities.GoAwayInfo)) func() {
	return b.goAway.subscribe(fn)
}

// OnLog fires for client activity records.
func (b *Bus) OnLog(fn func(entities.LogEntry)) func() {
	return b.log.subscribe(fn)
}

// reset drops every subscription.
func (b *Bus) reset() {
	b.open.reset()
	b.closed.reset()
	b.errs.reset()
	b.audio.reset()
	b.content.reset()
	b.interrupted.reset()
	b.turnComplete.reset()
	b.generationComplete.reset()
	b.toolCall.reset()
	b.toolCancel.reset()
	b.setupComplete.reset()
	b.resumption.reset()
	b.goAway.reset()
	b.log.reset()
}
