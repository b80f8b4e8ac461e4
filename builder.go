// File: lakefield/mergeconf/builder.go
package mergeconf

import (
	"fmt"
	"os"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/mapstructure"
)

// ValidatorFunc checks a built Config; returning an error fails the build.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for assembling a Config: provider and
// processor descriptors, cache placement, logging, and validation.
type Builder struct {
	registry       *Registry
	providerDescs  []any
	processorDescs []any
	defaults       Tree
	cachePath      string
	cacheMode      os.FileMode
	logger         *log.Logger
	validators     []ValidatorFunc
	err            error
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{
		registry:   NewRegistry(),
		logger:     discardLogger,
		validators: make([]ValidatorFunc, 0),
	}
}

// WithRegistry sets the registry used to resolve named descriptors.
func (b *Builder) WithRegistry(r *Registry) *Builder {
	if r != nil {
		b.registry = r
	}
	return b
}

// WithProviders appends provider descriptors. Earlier providers merge
// first, so later ones take precedence on colliding keys.
func (b *Builder) WithProviders(descs ...any) *Builder {
	b.providerDescs = append(b.providerDescs, descs...)
	return b
}

// WithProcessors appends processor descriptors, applied in order once all
// providers have merged.
func (b *Builder) WithProcessors(descs ...any) *Builder {
	b.processorDescs = append(b.processorDescs, descs...)
	return b
}

// WithDefaults sets the lowest-precedence fragment: a Tree, or a struct
// whose fields (by toml tag) become one. An unusable value is reported
// from Build; the first such error wins.
func (b *Builder) WithDefaults(defaults any) *Builder {
	if defaults == nil {
		return b
	}
	d, err := defaultsTree(defaults)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	b.defaults = d
	return b
}

// WithCacheFile enables the on-disk cache at path.
func (b *Builder) WithCacheFile(path string) *Builder {
	b.cachePath = path
	return b
}

// WithCacheFileMode overrides the permission bits of the written cache
// file. A CacheFileModeKey entry in the merged tree still wins.
func (b *Builder) WithCacheFileMode(mode os.FileMode) *Builder {
	b.cacheMode = mode
	return b
}

// WithLogger routes build and cache diagnostics to l.
func (b *Builder) WithLogger(l *log.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithValidator adds a validation function run at the end of the build,
// before the cache write. Multiple validators run in the order added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build aggregates the configuration. Descriptors are resolved up front, so
// a bad one fails here before anything runs. A cache hit short-circuits the
// pipelines and the loaded tree is final; otherwise providers run in order,
// then processors, then validators, and the result is cached best-effort.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	providers, processors, err := b.resolve()
	if err != nil {
		return nil, err
	}

	cache := &Cache{Path: b.cachePath, Mode: b.cacheMode, Log: b.logger}
	cfg := &Config{}

	tree, hit, err := cache.Load()
	if err != nil {
		return nil, err
	}
	if hit {
		b.logger.Debug("using cached config", "path", b.cachePath)
		cfg.tree = tree
		cfg.fromCache = true
	} else {
		tree, err = loadAll(providers, b.logger)
		if err != nil {
			return nil, err
		}
		tree, err = processAll(processors, tree, b.logger)
		if err != nil {
			return nil, err
		}
		cfg.tree = tree
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	if !cfg.fromCache {
		if err := cache.Save(cfg.tree); err != nil {
			b.logger.Warn("config cache write failed", "path", b.cachePath, "error", err)
		}
	}

	return cfg, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds, decodes the final tree into the provided target
// struct pointer, and returns the Config for path-based access alongside.
func (b *Builder) BuildAndScan(target any) (*Config, error) {
	cfg, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := cfg.Scan("", target); err != nil {
		return nil, fmt.Errorf("failed to scan final config into target: %w", err)
	}

	return cfg, nil
}

// resolve turns every descriptor into an invocable up front, so a bad
// descriptor fails the build before any provider runs or cache is read.
func (b *Builder) resolve() ([]Provider, []Processor, error) {
	descs := b.providerDescs
	if b.defaults != nil {
		descs = append([]any{Static("defaults", b.defaults)}, descs...)
	}

	providers := make([]Provider, 0, len(descs))
	for _, desc := range descs {
		p, err := b.registry.ResolveProvider(desc)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, p)
	}

	processors := make([]Processor, 0, len(b.processorDescs))
	for _, desc := range b.processorDescs {
		p, err := b.registry.ResolveProcessor(desc)
		if err != nil {
			return nil, nil, err
		}
		processors = append(processors, p)
	}

	return providers, processors, nil
}

// defaultsTree renders the WithDefaults argument as a fragment. Structs go
// through mapstructure with toml tags, mirroring Scan in reverse.
func defaultsTree(v any) (Tree, error) {
	if t, ok := asTree(v); ok {
		return t, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("defaults must be a tree or struct, got %T", v)
	}

	out := make(Tree)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "toml",
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(rv.Interface()); err != nil {
		return nil, fmt.Errorf("failed to render defaults: %w", err)
	}

	return out, nil
}
