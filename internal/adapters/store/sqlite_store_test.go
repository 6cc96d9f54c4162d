package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewSQLiteStore(dbPath, "backlinks", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreGetMiss(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entry := &core.CacheEntry{
		Fingerprint: "fp",
		Payload:     []byte(`{"referring_domains":412}`),
		Status:      core.StatusComplete,
		WrittenAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	require.NoError(t, s.Upsert(ctx, entry))

	got, err := s.Get(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, entry.Fingerprint, got.Fingerprint)
	require.Equal(t, entry.Payload, got.Payload)
	require.Equal(t, entry.Status, got.Status)
	require.True(t, entry.WrittenAt.Equal(got.WrittenAt))
	require.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))
}

func TestSQLiteStoreUpsertOverwrites(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "fp", Payload: []byte("first"), Status: core.StatusComplete,
		WrittenAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "fp", Payload: []byte("second"), Status: core.StatusComplete,
		WrittenAt: now.Add(time.Minute), ExpiresAt: now.Add(2 * time.Hour),
	}))

	got, err := s.Get(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got.Payload)

	// Exactly one row per fingerprint.
	deleted, err := s.DeleteExpired(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func TestSQLiteStoreDelete(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	existed, err := s.Delete(ctx, "fp")
	require.NoError(t, err)
	require.False(t, existed)

	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "fp", Status: core.StatusComplete,
		WrittenAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	existed, err = s.Delete(ctx, "fp")
	require.NoError(t, err)
	require.True(t, existed)

	_, err = s.Get(ctx, "fp")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStoreDeleteExpired(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "old", Status: core.StatusComplete,
		WrittenAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour),
	}))
	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "recent", Status: core.StatusComplete,
		WrittenAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, s.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "active", Status: core.StatusComplete,
		WrittenAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	// Cutoff in the past spares recently-expired rows for stale reads.
	deleted, err := s.DeleteExpired(ctx, now.Add(-12*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = s.Get(ctx, "old")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Get(ctx, "recent")
	require.NoError(t, err)
	_, err = s.Get(ctx, "active")
	require.NoError(t, err)
}

func TestSQLiteStoreTablesPerResource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	logger := zap.NewNop()

	backlinks, err := NewSQLiteStore(dbPath, "backlinks", logger)
	require.NoError(t, err)
	defer backlinks.Close()

	comparison, err := NewSQLiteStore(dbPath, "comparison", logger)
	require.NoError(t, err)
	defer comparison.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, backlinks.Upsert(ctx, &core.CacheEntry{
		Fingerprint: "fp", Payload: []byte("links"), Status: core.StatusComplete,
		WrittenAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	// Same fingerprint, different resource type: no bleed-through.
	_, err = comparison.Get(ctx, "fp")
	require.ErrorIs(t, err, core.ErrNotFound)
}
