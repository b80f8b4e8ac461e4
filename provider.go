// File: lakefield/mergeconf/provider.go
package mergeconf

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Provider supplies configuration fragments to a build. Providers run
// exactly once per build, in declared order, and not at all on a cache hit.
type Provider interface {
	// Name identifies the provider in errors and log lines.
	Name() string

	// Provide returns the provider's contribution: a Tree, a []Tree or
	// []any of trees, or a TreeSeq for fragments produced on demand.
	Provide() (any, error)
}

// TreeSeq yields a finite series of configuration trees, one call per
// fragment. Implementations return false once the series is exhausted.
// Each yielded tree is merged before the next is pulled, so a provider can
// contribute many fragments without materializing them all first.
type TreeSeq interface {
	Next() (Tree, bool)
}

// SeqFunc adapts a pull function to TreeSeq.
type SeqFunc func() (Tree, bool)

// Next implements TreeSeq.
func (f SeqFunc) Next() (Tree, bool) { return f() }

// SeqOf builds a TreeSeq over a fixed set of fragments.
func SeqOf(trees ...Tree) TreeSeq {
	return &sliceSeq{trees: trees}
}

type sliceSeq struct {
	trees []Tree
	pos   int
}

func (s *sliceSeq) Next() (Tree, bool) {
	if s.pos >= len(s.trees) {
		return nil, false
	}
	t := s.trees[s.pos]
	s.pos++
	return t, true
}

// ProviderFunc adapts a plain function to the Provider interface.
func ProviderFunc(name string, fn func() (any, error)) Provider {
	return &funcProvider{name: name, fn: fn}
}

type funcProvider struct {
	name string
	fn   func() (any, error)
}

func (p *funcProvider) Name() string { return p.name }

func (p *funcProvider) Provide() (any, error) { return p.fn() }

// loadAll invokes each provider in order and folds every fragment it
// produces into the accumulator, one merge per fragment. A fragment that is
// not tree-shaped aborts the load before that fragment touches the
// accumulator.
func loadAll(providers []Provider, logger *log.Logger) (Tree, error) {
	acc := make(Tree)

	for _, p := range providers {
		result, err := p.Provide()
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
		}

		switch fragments := result.(type) {
		case TreeSeq:
			for t, ok := fragments.Next(); ok; t, ok = fragments.Next() {
				mergeInto(acc, t)
			}
		case []Tree:
			for _, t := range fragments {
				mergeInto(acc, t)
			}
		case []any:
			for _, item := range fragments {
				t, ok := asTree(item)
				if !ok {
					return nil, fmt.Errorf("%w: provider %s yielded %T, want a tree", ErrProviderInvalidConfig, p.Name(), item)
				}
				mergeInto(acc, t)
			}
		default:
			t, ok := asTree(result)
			if !ok {
				return nil, fmt.Errorf("%w: provider %s produced %T, want a tree", ErrProviderInvalidConfig, p.Name(), result)
			}
			mergeInto(acc, t)
		}

		logger.Debug("merged provider fragment", "provider", p.Name())
	}

	return acc, nil
}
