package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rankpulse/provider-cache/internal/config"
	"github.com/rankpulse/provider-cache/internal/core"
	"github.com/rankpulse/provider-cache/internal/factory"
	"github.com/rankpulse/provider-cache/internal/janitor"
	"github.com/rankpulse/provider-cache/internal/keys"
	"github.com/rankpulse/provider-cache/internal/logging"
)

var (
	// Operation flags
	op       = flag.String("op", "lookup", "Operation (lookup, store, invalidate, sweep)")
	resource = flag.String("resource", "performance", "Cached resource type")

	// Fingerprint flags
	subject    = flag.String("subject", "", "Owning account identifier (required except for sweep)")
	domain     = flag.String("domain", "", "Primary domain (required except for sweep)")
	competitor = flag.String("competitor", "", "Secondary (competitor) domain")
	handles    = flag.String("handles", "", "Comma-separated social handles, e.g. ig=acmehq,fb=acme")

	// Lookup flags
	mode = flag.String("mode", "normal", "Lookup mode (normal, force, stale)")

	// Store flags
	payloadFile = flag.String("payload", "-", "Payload file for store (use stdin if '-')")
	ttlOverride = flag.String("ttl", "", "TTL override, e.g. 24h (defaults to the resource's configured TTL)")
	markFailed  = flag.Bool("failed", false, "Record a negative (failed-fetch) entry instead of a payload")

	// Store backend flags
	storeType  = flag.String("store-type", "sqlite", "Store backend (memory, sqlite, mysql)")
	sqlitePath = flag.String("sqlite-path", "./provider_cache.db", "Path to the SQLite database")
	mysqlDSN   = flag.String("mysql-dsn", "", "MySQL DSN")

	// Misc flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.NewFromFile(*configFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	storeFactory := factory.NewStoreFactory(cfg, logger)
	ctx := context.Background()

	if *op == "sweep" {
		runSweep(ctx, cfg, logger, storeFactory)
		return
	}

	handleMap, err := parseHandles(*handles)
	if err != nil {
		logger.Fatal("Invalid handles flag", zap.Error(err))
	}

	fingerprint, err := keys.BuildFingerprint(*subject, *domain, *competitor, handleMap)
	if err != nil {
		logger.Fatal("Failed to build fingerprint", zap.Error(err))
	}
	logger.Debug("Built fingerprint", zap.String("fingerprint", fingerprint.String()))

	entryStore, err := storeFactory.CreateEntryStore(*resource)
	if err != nil {
		logger.Fatal("Failed to create entry store", zap.Error(err))
	}
	cache := core.NewCache(*resource, entryStore, logger)

	switch *op {
	case "lookup":
		runLookup(ctx, cache, fingerprint.String())
	case "store":
		runStore(ctx, cfg, logger, cache, fingerprint.String())
	case "invalidate":
		if cache.Invalidate(ctx, fingerprint.String()) {
			fmt.Println("invalidated")
		} else {
			fmt.Println("no entry")
		}
	default:
		logger.Fatal("Unknown operation", zap.String("op", *op))
	}
}

func runLookup(ctx context.Context, cache *core.Cache, fingerprint string) {
	result := cache.Lookup(ctx, fingerprint, parseMode(*mode))

	switch {
	case result.Fresh():
		fmt.Printf("fresh (status=%s)\n", result.Status)
		os.Stdout.Write(result.Payload)
	case result.Stale():
		fmt.Printf("stale (age=%s)\n", result.Age.Round(time.Second))
		os.Stdout.Write(result.Payload)
	default:
		fmt.Println("miss")
	}
}

func runStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, cache *core.Cache, fingerprint string) {
	ttl, err := resolveTTL(cfg)
	if err != nil {
		logger.Fatal("Failed to resolve TTL", zap.Error(err))
	}

	var ok bool
	if *markFailed {
		ok = cache.StoreFailure(ctx, fingerprint, ttl)
	} else {
		payload, err := readPayload(*payloadFile)
		if err != nil {
			logger.Fatal("Failed to read payload", zap.Error(err))
		}
		ok = cache.Store(ctx, fingerprint, payload, ttl)
	}

	if !ok {
		logger.Fatal("Store was not accepted")
	}
	fmt.Printf("stored (ttl=%s)\n", ttl)
}

func runSweep(ctx context.Context, cfg *config.Config, logger *zap.Logger, storeFactory *factory.StoreFactory) {
	stores, err := storeFactory.CreateStores()
	if err != nil {
		logger.Fatal("Failed to create entry stores", zap.Error(err))
	}

	retention, err := cfg.GetDuration("janitor.stale_retention")
	if err != nil {
		logger.Fatal("Invalid stale retention", zap.Error(err))
	}

	sweeper := janitor.New(logger, janitor.WithStaleRetention(retention))
	for name, entryStore := range stores {
		sweeper.Register(name, entryStore)
	}

	deleted := sweeper.Sweep(ctx)
	fmt.Printf("deleted %d expired rows\n", deleted)
}

func resolveTTL(cfg *config.Config) (time.Duration, error) {
	if *ttlOverride != "" {
		return time.ParseDuration(*ttlOverride)
	}
	return cfg.ResourceTTL(*resource)
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func parseMode(s string) core.LookupMode {
	switch s {
	case "force":
		return core.ModeForceRefresh
	case "stale":
		return core.ModeAllowStale
	default:
		return core.ModeNormal
	}
}

func parseHandles(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}

	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" {
			return nil, fmt.Errorf("malformed handle %q, expected name=value", pair)
		}
		result[name] = value
	}
	return result, nil
}

// createConfigFromFlags builds a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("store.type", *storeType)
	v.Set("store.sqlite_path", *sqlitePath)
	if *mysqlDSN != "" {
		v.Set("store.mysql_dsn", *mysqlDSN)
	}
	if *verbose {
		v.Set("logging.level", "debug")
	} else {
		v.Set("logging.level", "info")
	}
	if *jsonLog {
		v.Set("logging.format", "json")
	} else {
		v.Set("logging.format", "console")
	}

	return config.NewFromViper(v)
}
