package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/config"
	"github.com/rankpulse/provider-cache/internal/factory"
	"github.com/rankpulse/provider-cache/internal/janitor"
	"github.com/rankpulse/provider-cache/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register store factory
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}

	// Register entry stores, one per configured resource type
	if err := container.Provide(func(f *factory.StoreFactory) (factory.StoreSet, error) {
		return f.CreateStores()
	}); err != nil {
		return nil, err
	}

	// Register cache façades over the same stores
	if err := container.Provide(func(f *factory.StoreFactory, stores factory.StoreSet) factory.CacheSet {
		return f.CreateCaches(stores)
	}); err != nil {
		return nil, err
	}

	// Register the janitor with every store registered for sweeping
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger, stores factory.StoreSet) (*janitor.Janitor, error) {
		retention, err := cfg.GetDuration("janitor.stale_retention")
		if err != nil {
			return nil, err
		}

		j := janitor.New(logger,
			janitor.WithSchedule(cfg.GetString("janitor.schedule")),
			janitor.WithStaleRetention(retention),
		)
		for resource, store := range stores {
			j.Register(resource, store)
		}
		return j, nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
