// File: lakefield/mergeconf/cache.go
package mergeconf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Reserved keys the cache consults on the merged tree. They are read, never
// stripped, so callers still see them in the final configuration.
const (
	// CacheEnabledKey must hold a truthy value for the merged tree to be
	// written to disk.
	CacheEnabledKey = "cache-enabled"

	// CacheFileModeKey overrides the permission bits of the written cache
	// file. Numeric, e.g. 0o600; strings parse with base auto-detection so
	// "0600" reads as octal.
	CacheFileModeKey = "cache-file-mode"
)

// DefaultCacheFileMode applies when neither CacheFileModeKey nor Cache.Mode
// specify permissions.
const DefaultCacheFileMode os.FileMode = 0o644

// generatorName labels cache files with the library that wrote them.
const generatorName = "mergeconf"

// Cache persists merged configuration trees between runs. The zero value
// (no path) never loads or stores anything.
type Cache struct {
	// Path of the cache file. Empty disables the cache.
	Path string

	// Mode for written cache files; DefaultCacheFileMode when zero. A
	// numeric CacheFileModeKey entry in the tree takes precedence.
	Mode os.FileMode

	// Log receives debug lines. Nil is fine.
	Log *log.Logger
}

// Load reads the cached tree. A missing path or file is a miss, not an
// error; a file that exists but cannot be decoded is an error, since a
// corrupt cache points at an environment problem the caller must see.
func (c *Cache) Load() (Tree, bool, error) {
	if c.Path == "" {
		return nil, false, nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to read '%s': %w", ErrCacheLoad, c.Path, err)
	}

	tree := make(Tree)
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse '%s': %w", ErrCacheLoad, c.Path, err)
	}

	c.logger().Debug("loaded cached config", "path", c.Path)
	return copyTree(tree), true, nil
}

// Save writes the tree to the cache file when caching applies: a path is
// set and the tree carries a truthy CacheEnabledKey. The write is atomic,
// temp file in the target directory then rename, so concurrent readers only
// ever see complete files. Save reports failures; whether they matter is
// the caller's call, and a build treats them as best-effort.
func (c *Cache) Save(t Tree) error {
	if c.Path == "" || !truthy(t[CacheEnabledKey]) {
		return nil
	}

	data, err := encodeCacheRecord(t)
	if err != nil {
		return err
	}

	if err := atomicWriteFile(c.Path, data, c.fileMode(t)); err != nil {
		return err
	}

	c.logger().Debug("wrote config cache", "path", c.Path)
	return nil
}

func (c *Cache) logger() *log.Logger {
	if c.Log != nil {
		return c.Log
	}
	return discardLogger
}

// fileMode picks the permission bits for the written file: the tree's
// CacheFileModeKey, then the Mode field, then DefaultCacheFileMode.
func (c *Cache) fileMode(t Tree) os.FileMode {
	if mode, ok := numericMode(t[CacheFileModeKey]); ok {
		return mode
	}
	if c.Mode != 0 {
		return c.Mode
	}
	return DefaultCacheFileMode
}

// numericMode converts a tree value into permission bits.
func numericMode(v any) (os.FileMode, bool) {
	switch x := v.(type) {
	case int64:
		if x > 0 && x <= 0o7777 {
			return os.FileMode(x), true
		}
	case int:
		if x > 0 && x <= 0o7777 {
			return os.FileMode(x), true
		}
	case float64:
		if n := int64(x); float64(n) == x && n > 0 && n <= 0o7777 {
			return os.FileMode(n), true
		}
	case string:
		if n, err := strconv.ParseInt(x, 0, 32); err == nil && n > 0 && n <= 0o7777 {
			return os.FileMode(n), true
		}
	}
	return 0, false
}

// encodeCacheRecord renders the provenance header and the TOML body. The
// header lines are comments, so a round trip decodes to exactly the stored
// tree.
func encodeCacheRecord(t Tree) ([]byte, error) {
	id, err := gonanoid.New(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cache record id: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated by %s (run %s) at %s.\n", generatorName, id, time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "# Delete this file to recompute configuration from providers.\n\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(t); err != nil {
		return nil, fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}

	return buf.Bytes(), nil
}

// atomicWriteFile writes data to path through a temp file in the same
// directory, renaming it into place so readers never observe a partial
// write.
func atomicWriteFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, mode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	removed = true

	return nil
}
