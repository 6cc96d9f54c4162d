package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by EntryStore.Get when no row exists for the
	// fingerprint.
	ErrNotFound = errors.New("cache entry not found")
	// ErrStorageUnavailable wraps any storage transport, auth or timeout
	// failure. The Cache façade recovers from it locally; it must never
	// reach a caller from Lookup or Store.
	ErrStorageUnavailable = errors.New("cache storage unavailable")
)

// EntryStore persists cache entries, one row per fingerprint. It is the
// source of truth, not an L1: implementations keep no cache of their own,
// and every call is one storage round trip.
//
// Upsert must be atomic per row; concurrent writers for the same
// fingerprint resolve to last-writer-wins.
type EntryStore interface {
	// Get retrieves the entry for a fingerprint, expired or not.
	// Returns ErrNotFound when no row exists.
	Get(ctx context.Context, fingerprint string) (*CacheEntry, error)

	// Upsert writes the entry, replacing any existing row for its
	// fingerprint.
	Upsert(ctx context.Context, entry *CacheEntry) error

	// Delete removes the row and reports whether one existed.
	Delete(ctx context.Context, fingerprint string) (bool, error)

	// DeleteExpired removes every row with expires_at before the cutoff
	// and returns how many were deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
