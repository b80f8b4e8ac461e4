// File: lakefield/mergeconf/mergeconf.go
package mergeconf

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// discardLogger backs every component that was not given a real logger.
var discardLogger = log.New(io.Discard)

// Config holds one fully aggregated configuration tree. It is produced by
// Build (or New/Quick), either from a cache hit or from a full provider and
// processor run, and never changes afterwards.
type Config struct {
	tree      Tree
	fromCache bool
}

// New aggregates the given provider descriptors with no cache file.
// Descriptors are anything ResolveProvider accepts: providers, functions,
// literal trees, or registered names.
func New(providers ...any) (*Config, error) {
	return NewBuilder().WithProviders(providers...).Build()
}

// Tree returns the merged configuration. The returned map is the Config's
// own; callers that want to modify it should Clone first.
func (c *Config) Tree() Tree {
	return c.tree
}

// FromCache reports whether the tree was loaded from the cache file rather
// than computed by a provider run.
func (c *Config) FromCache() bool {
	return c.fromCache
}

// Get retrieves the value at a dot-separated path (e.g. "server.port").
func (c *Config) Get(path string) (any, bool) {
	return lookupPath(c.tree, path)
}

// Clone returns a deep copy of the merged tree.
func (c *Config) Clone() Tree {
	return copyTree(c.tree)
}

// Dump writes the merged tree to w in TOML format.
func (c *Config) Dump(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	return encoder.Encode(c.tree)
}
