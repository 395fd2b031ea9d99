package store

import (
	"go.uber.org/zap"

	"github.com/palomar-io/livewire/domain/repositories"
)

// FallbackStore chains a durable store with an in-memory one. Every
// write lands in memory first, so a failing durable backend (quota,
// permissions) degrades durability but never loses the live value or
// surfaces an error to the caller.
type FallbackStore struct {
	durable repositories.HandleStore
	memory  *MemoryStore
	logger  *zap.Logger
}

// NewFallbackStore wraps durable with an in-memory fallback.
func NewFallbackStore(durable repositories.HandleStore, logger *zap.Logger) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{
		durable: durable,
		memory:  NewMemoryStore(),
		logger:  logger,
	}
}

// Get prefers a value written this process, then the durable backend.
func (s *FallbackStore) Get() (string, bool) {
	if s.memory.Written() {
		return s.memory.Get()
	}
	return s.durable.Get()
}

// Set writes to memory, then best-effort to the durable backend. A
// durable failure is logged and swallowed.
func (s *FallbackStore) Set(handle string) error {
	_ = s.memory.Set(handle)
	if err := s.durable.Set(handle); err != nil {
		s.logger.Warn("durable handle write failed, value kept in memory", zap.Error(err))
	}
	return nil
}
