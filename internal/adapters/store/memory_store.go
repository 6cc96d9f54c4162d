package store

import (
	"context"
	"sync"
	"time"

	"github.com/rankpulse/provider-cache/internal/core"
)

// MemoryStore is an in-memory implementation of the EntryStore port. It
// exists for tests and for running the dashboard with persistence disabled;
// entries do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*core.CacheEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*core.CacheEntry),
	}
}

// Get retrieves the entry for a fingerprint, expired or not.
func (s *MemoryStore) Get(ctx context.Context, fingerprint string) (*core.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[fingerprint]
	if !ok {
		return nil, core.ErrNotFound
	}

	return copyEntry(entry), nil
}

// Upsert writes the entry, replacing any existing row for its fingerprint.
func (s *MemoryStore) Upsert(ctx context.Context, entry *core.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Fingerprint] = copyEntry(entry)
	return nil
}

// copyEntry clones an entry including its payload bytes, so neither the
// caller nor the store can mutate the other's copy through the slice.
func copyEntry(entry *core.CacheEntry) *core.CacheEntry {
	cp := *entry
	if entry.Payload != nil {
		cp.Payload = append([]byte(nil), entry.Payload...)
	}
	return &cp
}

// Delete removes the row and reports whether one existed.
func (s *MemoryStore) Delete(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[fingerprint]
	delete(s.entries, fingerprint)
	return ok, nil
}

// DeleteExpired removes every row whose expiry passed before the cutoff.
func (s *MemoryStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for fingerprint, entry := range s.entries {
		if entry.ExpiresAt.Before(cutoff) {
			delete(s.entries, fingerprint)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports how many entries are currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
