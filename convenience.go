// File: lakefield/mergeconf/convenience.go
package mergeconf

import (
	"errors"
	"fmt"
)

// Quick aggregates providers with a cache file in one call. It is the
// recommended entry point for applications that just want "merge these
// sources, cache the result".
func Quick(cachePath string, providers ...any) (*Config, error) {
	return NewBuilder().
		WithProviders(providers...).
		WithCacheFile(cachePath).
		Build()
}

// MustQuick is like Quick but panics on error.
func MustQuick(cachePath string, providers ...any) *Config {
	cfg, err := Quick(cachePath, providers...)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Validate checks that each required dot path resolves to a non-nil value.
func (c *Config) Validate(required ...string) error {
	var missing []error

	for _, path := range required {
		v, ok := c.Get(path)
		if !ok || v == nil {
			missing = append(missing, fmt.Errorf("%w: %s", ErrKeyNotFound, path))
		}
	}

	return errors.Join(missing...)
}
