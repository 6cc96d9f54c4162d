package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	require.Equal(t, "sqlite", cfg.GetString("store.type"))
	require.Equal(t, "@hourly", cfg.GetString("janitor.schedule"))
	require.True(t, cfg.GetBool("janitor.enabled"))

	retention, err := cfg.GetDuration("janitor.stale_retention")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, retention)
}

func TestResourceTTLs(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	require.ElementsMatch(t,
		[]string{"performance", "searchconsole", "backlinks", "comparison"},
		cfg.ResourceNames())

	want := map[string]time.Duration{
		"performance":   time.Hour,
		"searchconsole": 12 * time.Hour,
		"backlinks":     24 * time.Hour,
		"comparison":    7 * 24 * time.Hour,
	}
	for resource, ttl := range want {
		got, err := cfg.ResourceTTL(resource)
		require.NoError(t, err, resource)
		require.Equal(t, ttl, got, resource)
	}

	_, err := cfg.ResourceTTL("unknown")
	require.Error(t, err)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"store:\n  type: memory\njanitor:\n  schedule: \"@daily\"\n",
	), 0o644))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.GetViper().ConfigFileUsed())

	// File values win; untouched keys keep their defaults.
	require.Equal(t, "memory", cfg.GetString("store.type"))
	require.Equal(t, "@daily", cfg.GetString("janitor.schedule"))
	require.Equal(t, "json", cfg.GetString("logging.format"))
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestResourceTTLOverride(t *testing.T) {
	v := NewEmptyViper()
	v.Set("resources.backlinks.ttl", "2h")
	cfg := NewFromViper(v)

	ttl, err := cfg.ResourceTTL("backlinks")
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, ttl)
}
