// File: lakefield/mergeconf/errors.go
package mergeconf

import "errors"

// Sentinel errors for the failure categories a build can surface. Wrapped
// errors carry detail; match with errors.Is.
var (
	// ErrInvalidProvider means a provider descriptor could not be resolved
	// into anything invocable.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidProcessor means a processor descriptor could not be
	// resolved into anything invocable.
	ErrInvalidProcessor = errors.New("invalid processor")

	// ErrProviderInvalidConfig means a provider produced, or yielded, a
	// value that is not a configuration tree.
	ErrProviderInvalidConfig = errors.New("provider returned invalid config")

	// ErrCacheLoad means the cache file exists but cannot be read back as
	// a tree. Unlike write failures this is fatal: a corrupt cache is an
	// environment problem, not a miss.
	ErrCacheLoad = errors.New("cache file unreadable")

	// ErrKeyNotFound means a dot-separated path does not resolve to a
	// value in the merged tree.
	ErrKeyNotFound = errors.New("key not found")
)
