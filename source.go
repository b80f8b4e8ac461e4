// FILE: lakefield/mergeconf/source.go
package mergeconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Static returns a provider that always produces the given fragment.
func Static(name string, t Tree) Provider {
	return ProviderFunc(name, func() (any, error) {
		return t, nil
	})
}

// File returns a provider that reads one configuration file. The format
// comes from the extension, with content sniffing as fallback; TOML, JSON,
// and YAML are understood. A missing file is an error; use OptionalFile for
// files that may legitimately be absent.
func File(path string) Provider {
	return ProviderFunc("file:"+path, func() (any, error) {
		return readFile(path, false)
	})
}

// OptionalFile is File for paths that may not exist; a missing file
// contributes an empty fragment.
func OptionalFile(path string) Provider {
	return ProviderFunc("file?:"+path, func() (any, error) {
		return readFile(path, true)
	})
}

// readFile reads and parses a configuration file into a fragment.
func readFile(path string, optional bool) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Tree{}, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}

	fragment := make(Tree)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &fragment); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&fragment); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &fragment); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unable to determine config format for file '%s'", path)
	}

	return fragment, nil
}

// Env returns a provider that collects environment variables beginning with
// prefix into a nested fragment: with prefix "APP_", APP_SERVER_PORT=9090
// becomes {"server": {"port": "9090"}}. Values stay strings; typed reads
// convert on access.
func Env(prefix string) Provider {
	return ProviderFunc("env:"+prefix, func() (any, error) {
		names := make([]string, 0)
		values := make(map[string]string)
		for _, kv := range os.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(name, prefix) || name == prefix {
				continue
			}
			names = append(names, name)
			values[name] = value
		}
		// Iteration over os.Environ is not ordered; sort so the fragment
		// is the same on every run.
		sort.Strings(names)

		fragment := make(Tree)
		for _, name := range names {
			path := strings.ToLower(strings.TrimPrefix(name, prefix))
			setNestedValue(fragment, strings.ReplaceAll(path, "_", "."), values[name])
		}
		return fragment, nil
	})
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try YAML (superset of JSON, so check after JSON)
	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	// Try TOML last
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}
