package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rankpulse/provider-cache/internal/core"
)

func TestMemoryStoreGetMiss(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStoreUpsertAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entry := &core.CacheEntry{
		Fingerprint: "fp",
		Payload:     []byte("payload"),
		Status:      core.StatusComplete,
		WrittenAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
	require.NoError(t, s.Upsert(ctx, entry))

	got, err := s.Get(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, entry, got)

	// Returned entries are copies down to the payload bytes; element
	// writes must not leak back into the store.
	got.Payload[0] = 'X'
	again, err := s.Get(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), again.Payload)
}

func TestMemoryStoreDoesNotAliasCallerPayload(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	payload := []byte("payload")
	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "fp",
		Payload:     payload,
		Status:      core.StatusComplete,
		WrittenAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}))

	// Mutating the caller's slice after the write must not reach the
	// stored row.
	payload[0] = 'X'

	got, err := s.Get(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got.Payload)
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := &core.CacheEntry{Fingerprint: "fp", Payload: []byte("first"), Status: core.StatusComplete, WrittenAt: now, ExpiresAt: now.Add(time.Hour)}
	second := &core.CacheEntry{Fingerprint: "fp", Payload: []byte("second"), Status: core.StatusComplete, WrittenAt: now.Add(time.Minute), ExpiresAt: now.Add(2 * time.Hour)}

	require.NoError(t, s.Upsert(ctx, first))
	require.NoError(t, s.Upsert(ctx, second))
	require.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got.Payload)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	existed, err := s.Delete(ctx, "fp")
	require.NoError(t, err)
	require.False(t, existed)

	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{Fingerprint: "fp", Status: core.StatusComplete, WrittenAt: now, ExpiresAt: now.Add(time.Hour)}))

	existed, err = s.Delete(ctx, "fp")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, 0, s.Len())
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := &core.CacheEntry{Fingerprint: "old", Status: core.StatusComplete, WrittenAt: now.Add(-3 * time.Hour), ExpiresAt: now.Add(-2 * time.Hour)}
	active := &core.CacheEntry{Fingerprint: "new", Status: core.StatusComplete, WrittenAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.Upsert(ctx, expired))
	require.NoError(t, s.Upsert(ctx, active))

	deleted, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = s.Get(ctx, "old")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Get(ctx, "new")
	require.NoError(t, err)
}

func TestTableNameValidation(t *testing.T) {
	name, err := tableName("backlinks")
	require.NoError(t, err)
	require.Equal(t, "cache_backlinks", name)

	for _, bad := range []string{"", "Backlinks", "back-links", "1abc", "a;drop"} {
		_, err := tableName(bad)
		require.Error(t, err, "resource %q", bad)
	}
}
