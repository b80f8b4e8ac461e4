// File: lakefield/mergeconf/registry.go
package mergeconf

import "fmt"

// Registry resolves provider and processor descriptors into invocables.
// Descriptors may be ready-made implementations, plain functions, names
// registered here, or, for providers, literal trees.
type Registry struct {
	providers  map[string]func() Provider
	processors map[string]func() Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers:  make(map[string]func() Provider),
		processors: make(map[string]func() Processor),
	}
}

// RegisterProvider makes a provider constructible by name.
func (r *Registry) RegisterProvider(name string, factory func() Provider) {
	r.providers[name] = factory
}

// RegisterProcessor makes a processor constructible by name.
func (r *Registry) RegisterProcessor(name string, factory func() Processor) {
	r.processors[name] = factory
}

// ResolveProvider turns a descriptor into an invocable Provider. Accepted
// forms: a Provider, a function returning a tree (with or without error, or
// as any), a literal Tree used as a static fragment, or the name of a
// registered provider. Inline functions are identified by their type in
// errors and logs.
func (r *Registry) ResolveProvider(desc any) (Provider, error) {
	switch d := desc.(type) {
	case Provider:
		return d, nil
	case func() (any, error):
		return ProviderFunc(fmt.Sprintf("%T", d), d), nil
	case func() (Tree, error):
		return ProviderFunc(fmt.Sprintf("%T", d), func() (any, error) {
			t, err := d()
			return t, err
		}), nil
	case func() Tree:
		return ProviderFunc(fmt.Sprintf("%T", d), func() (any, error) {
			return d(), nil
		}), nil
	case Tree:
		return Static("static", d), nil
	case string:
		factory, ok := r.providers[d]
		if !ok {
			return nil, fmt.Errorf("%w: no provider registered as %q", ErrInvalidProvider, d)
		}
		return factory(), nil
	}
	return nil, fmt.Errorf("%w: cannot use %T as a provider", ErrInvalidProvider, desc)
}

// ResolveProcessor turns a descriptor into an invocable Processor. Accepted
// forms: a Processor, a tree-to-tree function (with or without error), or
// the name of a registered processor.
func (r *Registry) ResolveProcessor(desc any) (Processor, error) {
	switch d := desc.(type) {
	case Processor:
		return d, nil
	case func(Tree) (Tree, error):
		return ProcessorFunc(fmt.Sprintf("%T", d), d), nil
	case func(Tree) Tree:
		return ProcessorFunc(fmt.Sprintf("%T", d), func(t Tree) (Tree, error) {
			return d(t), nil
		}), nil
	case string:
		factory, ok := r.processors[d]
		if !ok {
			return nil, fmt.Errorf("%w: no processor registered as %q", ErrInvalidProcessor, d)
		}
		return factory(), nil
	}
	return nil, fmt.Errorf("%w: cannot use %T as a processor", ErrInvalidProcessor, desc)
}
