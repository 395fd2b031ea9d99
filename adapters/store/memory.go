package store

import "sync"

// MemoryStore keeps the handle in process memory. It never fails, so
// it serves as the terminal fallback of a store chain.
type MemoryStore struct {
	mu      sync.RWMutex
	handle  string
	written bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored handle.
func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle, s.handle != ""
}

// Set stores the handle; empty clears it.
func (s *MemoryStore) Set(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = handle
	s.written = true
	return nil
}

// Written reports whether Set has been called in this process, i.e.
// the in-memory value is authoritative over any durable backend.
func (s *MemoryStore) Written() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.written
}
