// File: lakefield/mergeconf/processor.go
package mergeconf

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Processor transforms the fully merged configuration tree. Each processor
// owns its input and returns the tree the next one receives.
type Processor interface {
	// Name identifies the processor in errors and log lines.
	Name() string

	// Process takes the current tree and returns its replacement.
	Process(t Tree) (Tree, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
func ProcessorFunc(name string, fn func(Tree) (Tree, error)) Processor {
	return &funcProcessor{name: name, fn: fn}
}

type funcProcessor struct {
	name string
	fn   func(Tree) (Tree, error)
}

func (p *funcProcessor) Name() string { return p.name }

func (p *funcProcessor) Process(t Tree) (Tree, error) { return p.fn(t) }

// processAll applies processors left to right. Output shapes are not
// checked; a processor failure aborts the chain.
func processAll(processors []Processor, t Tree, logger *log.Logger) (Tree, error) {
	for _, p := range processors {
		var err error
		t, err = p.Process(t)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", p.Name(), err)
		}
		logger.Debug("applied processor", "processor", p.Name())
	}
	return t, nil
}
