package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/adapters/store"
	"github.com/rankpulse/provider-cache/internal/config"
	"github.com/rankpulse/provider-cache/internal/core"
	"github.com/rankpulse/provider-cache/internal/logging"
)

// StoreFactory creates entry stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEntryStore creates the entry store backing one resource type,
// based on the configured store type.
func (f *StoreFactory) CreateEntryStore(resource string) (core.EntryStore, error) {
	storeType := f.cfg.GetString("store.type")

	switch storeType {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("store.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(sqlitePath, resource, f.logger)
	case "mysql":
		mysqlDSN := f.cfg.GetString("store.mysql_dsn")
		return store.NewMySQLStore(mysqlDSN, resource, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}

// StoreSet holds one entry store per configured resource type. The same
// instances back both the cache façades and the janitor.
type StoreSet map[string]core.EntryStore

// CreateStores builds an entry store for every configured resource type.
func (f *StoreFactory) CreateStores() (StoreSet, error) {
	stores := make(StoreSet)
	for _, resource := range f.cfg.ResourceNames() {
		entryStore, err := f.CreateEntryStore(resource)
		if err != nil {
			return nil, fmt.Errorf("failed to create store for resource %q: %w", resource, err)
		}
		stores[resource] = entryStore
	}
	return stores, nil
}

// CacheSet holds one cache façade per configured resource type.
type CacheSet map[string]*core.Cache

// For returns the cache for a resource type, or nil when the resource is
// not configured.
func (s CacheSet) For(resource string) *core.Cache {
	return s[resource]
}

// CreateCaches builds a façade over every store in the set, each with its
// own resource-named logger.
func (f *StoreFactory) CreateCaches(stores StoreSet) CacheSet {
	caches := make(CacheSet)
	for resource, entryStore := range stores {
		caches[resource] = core.NewCache(resource, entryStore, logging.ForResource(f.logger, resource))
	}
	return caches
}
