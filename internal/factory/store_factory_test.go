package factory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/adapters/store"
	"github.com/rankpulse/provider-cache/internal/config"
)

func testConfig(t *testing.T, storeType string) *config.Config {
	t.Helper()
	v := config.NewEmptyViper()
	v.Set("store.type", storeType)
	v.Set("store.sqlite_path", filepath.Join(t.TempDir(), "cache.db"))
	return config.NewFromViper(v)
}

func TestCreateEntryStoreMemory(t *testing.T) {
	f := NewStoreFactory(testConfig(t, "memory"), zap.NewNop())

	s, err := f.CreateEntryStore("backlinks")
	require.NoError(t, err)
	require.IsType(t, &store.MemoryStore{}, s)
}

func TestCreateEntryStoreSQLite(t *testing.T) {
	f := NewStoreFactory(testConfig(t, "sqlite"), zap.NewNop())

	s, err := f.CreateEntryStore("backlinks")
	require.NoError(t, err)
	require.IsType(t, &store.SQLiteStore{}, s)
}

func TestCreateEntryStoreUnsupported(t *testing.T) {
	f := NewStoreFactory(testConfig(t, "redis"), zap.NewNop())

	_, err := f.CreateEntryStore("backlinks")
	require.Error(t, err)
}

func TestCreateStoresAndCaches(t *testing.T) {
	f := NewStoreFactory(testConfig(t, "memory"), zap.NewNop())

	stores, err := f.CreateStores()
	require.NoError(t, err)
	require.Len(t, stores, 4, "one store per configured resource")

	caches := f.CreateCaches(stores)
	require.Len(t, caches, 4)
	require.NotNil(t, caches.For("backlinks"))
	require.Equal(t, "backlinks", caches.For("backlinks").Resource())
	require.Nil(t, caches.For("unknown"))
}
