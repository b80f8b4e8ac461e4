// File: lakefield/mergeconf/builder_test.go
package mergeconf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilderDefaults tests WithDefaults as the lowest-precedence layer
func TestBuilderDefaults(t *testing.T) {
	t.Run("TreeDefaults", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithDefaults(Tree{"host": "localhost", "port": int64(8080)}).
			WithProviders(Tree{"port": int64(9090)}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, Tree{"host": "localhost", "port": int64(9090)}, cfg.Tree())
	})

	t.Run("StructDefaults", func(t *testing.T) {
		type serverDefaults struct {
			Host    string `toml:"host"`
			Port    int    `toml:"port"`
			Workers int    `toml:"workers"`
		}

		cfg, err := NewBuilder().
			WithDefaults(serverDefaults{Host: "localhost", Port: 8080, Workers: 4}).
			WithProviders(Tree{"port": int64(9090)}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.tree["host"])
		assert.Equal(t, int64(9090), cfg.tree["port"])
		assert.Equal(t, int64(4), cfg.tree["workers"])
	})

	t.Run("InvalidDefaults", func(t *testing.T) {
		_, err := NewBuilder().WithDefaults(42).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "defaults")
	})
}

// TestBuilderValidators tests validation hooks on the final config
func TestBuilderValidators(t *testing.T) {
	t.Run("Passing", func(t *testing.T) {
		ran := false
		cfg, err := NewBuilder().
			WithProviders(Tree{"key": "value"}).
			WithValidator(func(c *Config) error {
				ran = true
				return c.Validate("key")
			}).
			Build()
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, "value", cfg.tree["key"])
	})

	t.Run("Failing", func(t *testing.T) {
		boom := errors.New("port out of range")
		_, err := NewBuilder().
			WithProviders(Tree{"port": int64(99999)}).
			WithValidator(func(*Config) error { return boom }).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("FailureBlocksCacheWrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.cache.toml")
		_, err := NewBuilder().
			WithProviders(Tree{CacheEnabledKey: true}).
			WithCacheFile(path).
			WithValidator(func(*Config) error { return errors.New("nope") }).
			Build()
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})
}

// TestBuilderCacheFileMode tests permission plumbing through the builder
func TestBuilderCacheFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.cache.toml")
	_, err := NewBuilder().
		WithProviders(Tree{CacheEnabledKey: true}).
		WithCacheFile(path).
		WithCacheFileMode(0o600).
		Build()
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// TestBuilderCacheWriteFailureIsSuppressed tests best-effort cache persistence
func TestBuilderCacheWriteFailureIsSuppressed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var buf bytes.Buffer
	logger := log.New(&buf)

	cfg, err := NewBuilder().
		WithProviders(Tree{CacheEnabledKey: true, "key": "value"}).
		WithCacheFile(filepath.Join(blocker, "config.cache.toml")).
		WithLogger(logger).
		Build()
	require.NoError(t, err, "an unwritable cache must not fail the build")
	assert.Equal(t, "value", cfg.tree["key"])
	assert.Contains(t, buf.String(), "config cache write failed")
}

// TestBuilderLogging tests that pipeline stages report through the logger
func TestBuilderLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	_, err := NewBuilder().
		WithProviders(Tree{"key": "value"}).
		WithProcessors(func(t Tree) Tree { return t }).
		WithLogger(logger).
		Build()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "merged provider fragment")
	assert.Contains(t, out, "applied processor")
}

// TestBuilderProviderErrors tests failure propagation through Build
func TestBuilderProviderErrors(t *testing.T) {
	boom := errors.New("fetch failed")

	t.Run("ProviderFailure", func(t *testing.T) {
		_, err := NewBuilder().
			WithProviders(ProviderFunc("remote", func() (any, error) { return nil, boom })).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "remote")
	})

	t.Run("ProcessorFailure", func(t *testing.T) {
		_, err := NewBuilder().
			WithProviders(Tree{"key": "value"}).
			WithProcessors(ProcessorFunc("expand", func(Tree) (Tree, error) { return nil, boom })).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "expand")
	})

	t.Run("InvalidFragment", func(t *testing.T) {
		_, err := NewBuilder().
			WithProviders(func() (any, error) { return "not a tree", nil }).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProviderInvalidConfig)
	})
}

// TestBuilderWithRegistry tests name resolution through a custom registry
func TestBuilderWithRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterProvider("base", func() Provider {
		return Static("base", Tree{"source": "registry"})
	})
	registry.RegisterProcessor("stamp", func() Processor {
		return ProcessorFunc("stamp", func(t Tree) (Tree, error) {
			t["stamped"] = true
			return t, nil
		})
	})

	cfg, err := NewBuilder().
		WithRegistry(registry).
		WithProviders("base").
		WithProcessors("stamp").
		Build()
	require.NoError(t, err)
	assert.Equal(t, Tree{"source": "registry", "stamped": true}, cfg.Tree())
}

// TestMustBuild tests the panicking variant
func TestMustBuild(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().WithProviders("never-registered").MustBuild()
	})

	assert.NotPanics(t, func() {
		cfg := NewBuilder().WithProviders(Tree{"key": "value"}).MustBuild()
		assert.Equal(t, "value", cfg.tree["key"])
	})
}

// TestBuildAndScan tests the build-then-decode shortcut
func TestBuildAndScan(t *testing.T) {
	type serverConfig struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	}

	var target serverConfig
	cfg, err := NewBuilder().
		WithProviders(Tree{"host": "localhost", "port": int64(8080)}).
		BuildAndScan(&target)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, serverConfig{Host: "localhost", Port: 8080}, target)
}
