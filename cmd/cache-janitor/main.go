package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/config"
	"github.com/rankpulse/provider-cache/internal/di"
	"github.com/rankpulse/provider-cache/internal/factory"
	"github.com/rankpulse/provider-cache/internal/janitor"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	stores factory.StoreSet,
	sweeper *janitor.Janitor,
) error {
	defer logger.Sync()

	if !cfg.GetBool("janitor.enabled") {
		logger.Info("janitor disabled by configuration, nothing to do")
		return nil
	}

	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start janitor", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	sweeper.Stop()

	// Close any stores holding database handles
	for resource, store := range stores {
		if closer, ok := store.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close store",
					zap.String("resource", resource),
					zap.Error(err))
			}
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
