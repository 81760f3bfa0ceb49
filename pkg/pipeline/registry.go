package pipeline

import (
	"fmt"
	"slices"
	"sync"
)

// DefaultName is the pipeline run when none is requested.
const DefaultName = "__default__"

type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
}

func NewRegistry() *Registry {
	return &Registry{pipelines: make(map[string]*Pipeline)}
}

func (r *Registry) Register(name string, p *Pipeline) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("pipeline %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pipelines[name]; exists {
		return fmt.Errorf("pipeline already registered: %s", name)
	}
	r.pipelines[name] = p
	return nil
}

// Get returns the named pipeline. An empty name selects DefaultName.
func (r *Registry) Get(name string) (*Pipeline, error) {
	if name == "" {
		name = DefaultName
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.pipelines[name]
	if !exists {
		return nil, fmt.Errorf("pipeline not found: %s", name)
	}
	return p, nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
