// File: lakefield/mergeconf/source_test.go
package mergeconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestStaticProvider tests the fixed-fragment provider
func TestStaticProvider(t *testing.T) {
	p := Static("base", Tree{"key": "value"})
	assert.Equal(t, "base", p.Name())

	result, err := p.Provide()
	require.NoError(t, err)
	assert.Equal(t, Tree{"key": "value"}, result)
}

// TestFileProvider tests format handling in the file provider
func TestFileProvider(t *testing.T) {
	t.Run("TOML", func(t *testing.T) {
		path := writeConfigFile(t, "app.toml", `
host = "localhost"
port = 8080

[server]
workers = 4
`)
		cfg, err := New(File(path))
		require.NoError(t, err)
		assert.Equal(t, Tree{
			"host":   "localhost",
			"port":   int64(8080),
			"server": Tree{"workers": int64(4)},
		}, cfg.Tree())
	})

	t.Run("JSON", func(t *testing.T) {
		path := writeConfigFile(t, "app.json", `{"host": "localhost", "port": 8080, "ratio": 0.5}`)
		cfg, err := New(File(path))
		require.NoError(t, err)
		assert.Equal(t, Tree{
			"host":  "localhost",
			"port":  int64(8080),
			"ratio": 0.5,
		}, cfg.Tree())
	})

	t.Run("YAML", func(t *testing.T) {
		path := writeConfigFile(t, "app.yaml", `
host: localhost
server:
  port: 8080
  tags:
    - a
    - b
`)
		cfg, err := New(File(path))
		require.NoError(t, err)
		assert.Equal(t, Tree{
			"host": "localhost",
			"server": Tree{
				"port": int64(8080),
				"tags": []any{"a", "b"},
			},
		}, cfg.Tree())
	})

	t.Run("ContentSniffing", func(t *testing.T) {
		path := writeConfigFile(t, "noext", `{"sniffed": true}`)
		cfg, err := New(File(path))
		require.NoError(t, err)
		assert.Equal(t, true, cfg.tree["sniffed"])
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := New(File(filepath.Join(t.TempDir(), "absent.toml")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent.toml")
	})

	t.Run("MalformedFile", func(t *testing.T) {
		path := writeConfigFile(t, "bad.toml", "key = = broken")
		_, err := New(File(path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TOML")
	})

	t.Run("ProviderName", func(t *testing.T) {
		assert.Equal(t, "file:/etc/app.toml", File("/etc/app.toml").Name())
	})
}

// TestOptionalFileProvider tests graceful handling of absent files
func TestOptionalFileProvider(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		cfg, err := New(OptionalFile(filepath.Join(t.TempDir(), "absent.toml")))
		require.NoError(t, err)
		assert.Equal(t, Tree{}, cfg.Tree())
	})

	t.Run("Present", func(t *testing.T) {
		path := writeConfigFile(t, "app.toml", `key = "value"`)
		cfg, err := New(OptionalFile(path))
		require.NoError(t, err)
		assert.Equal(t, "value", cfg.tree["key"])
	})

	t.Run("MalformedStillFails", func(t *testing.T) {
		path := writeConfigFile(t, "bad.toml", "key = = broken")
		_, err := New(OptionalFile(path))
		require.Error(t, err)
	})
}

// TestEnvProvider tests environment collection into nested fragments
func TestEnvProvider(t *testing.T) {
	t.Setenv("MCTEST_SERVER_HOST", "envhost")
	t.Setenv("MCTEST_SERVER_PORT", "9090")
	t.Setenv("MCTEST_DEBUG", "true")
	t.Setenv("OTHER_SERVER_HOST", "ignored")

	cfg, err := New(Env("MCTEST_"))
	require.NoError(t, err)

	assert.Equal(t, Tree{
		"server": Tree{
			"host": "envhost",
			"port": "9090",
		},
		"debug": "true",
	}, cfg.Tree())
}

// TestEnvProviderOverridesFile tests the usual file-then-env layering
func TestEnvProviderOverridesFile(t *testing.T) {
	t.Setenv("MCLAYER_SERVER_PORT", "9090")

	path := writeConfigFile(t, "app.toml", `
[server]
host = "filehost"
port = 8080
`)

	cfg, err := New(File(path), Env("MCLAYER_"))
	require.NoError(t, err)

	assert.Equal(t, "filehost", mustGet(t, cfg, "server.host"))
	assert.Equal(t, "9090", mustGet(t, cfg, "server.port"))
}

func mustGet(t *testing.T, cfg *Config, path string) any {
	t.Helper()
	v, found := cfg.Get(path)
	require.True(t, found, "path %s missing", path)
	return v
}

// TestDetectFileFormat tests extension-based format detection
func TestDetectFileFormat(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"config.toml", "toml"},
		{"config.tml", "toml"},
		{"config.json", "json"},
		{"config.yaml", "yaml"},
		{"config.yml", "yaml"},
		{"config.TOML", "toml"},
		{"config.txt", ""},
		{"config", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectFileFormat(tt.path))
		})
	}
}
