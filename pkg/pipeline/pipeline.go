// Package pipeline wires named nodes into a directed acyclic graph over named
// datasets and runs them in dependency order.
package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrInvalidPipeline = errors.New("invalid pipeline")

type Pipeline struct {
	nodes []Node
}

func New(nodes ...Node) *Pipeline {
	return &Pipeline{nodes: slices.Clone(nodes)}
}

// Add returns a pipeline holding the nodes of p followed by those of others.
func (p *Pipeline) Add(others ...*Pipeline) *Pipeline {
	nodes := slices.Clone(p.nodes)
	for _, other := range others {
		nodes = append(nodes, other.nodes...)
	}
	return &Pipeline{nodes: nodes}
}

func (p *Pipeline) Len() int {
	return len(p.nodes)
}

// Names returns node names in declaration order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		names[i] = n.Name
	}
	return names
}

// Validate rejects unnamed or function-less nodes, duplicate node names,
// datasets produced by more than one node and dependency cycles.
func (p *Pipeline) Validate() error {
	_, err := p.Nodes()
	return err
}

// Nodes returns the nodes in an order where every node runs after the nodes
// producing its inputs. Ties keep declaration order.
func (p *Pipeline) Nodes() ([]Node, error) {
	producers, err := p.producers()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(p.nodes))
	for i, n := range p.nodes {
		index[n.Name] = i
	}

	pending := make([]int, len(p.nodes))
	dependents := make([][]int, len(p.nodes))
	for i, n := range p.nodes {
		for _, in := range n.Inputs {
			producer, ok := producers[in]
			if !ok {
				continue
			}
			j := index[producer]
			if j == i {
				return nil, fmt.Errorf("%w: node %s consumes its own output %s", ErrInvalidPipeline, n.Name, in)
			}
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range p.nodes {
		if pending[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]Node, 0, len(p.nodes))
	for len(ready) > 0 {
		slices.Sort(ready)
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, p.nodes[i])
		for _, d := range dependents[i] {
			pending[d]--
			if pending[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(ordered) != len(p.nodes) {
		var stuck []string
		for i, n := range p.nodes {
			if pending[i] > 0 {
				stuck = append(stuck, n.Name)
			}
		}
		return nil, fmt.Errorf("%w: cycle between nodes %s", ErrInvalidPipeline, strings.Join(stuck, ", "))
	}
	return ordered, nil
}

func (p *Pipeline) producers() (map[string]string, error) {
	names := make(map[string]struct{}, len(p.nodes))
	producers := make(map[string]string)
	for _, n := range p.nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("%w: node without a name", ErrInvalidPipeline)
		}
		if n.Func == nil {
			return nil, fmt.Errorf("%w: node %s has no function", ErrInvalidPipeline, n.Name)
		}
		if _, ok := names[n.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate node name %s", ErrInvalidPipeline, n.Name)
		}
		names[n.Name] = struct{}{}

		for _, out := range n.Outputs {
			if other, ok := producers[out]; ok {
				return nil, fmt.Errorf("%w: dataset %s is produced by both %s and %s", ErrInvalidPipeline, out, other, n.Name)
			}
			producers[out] = n.Name
		}
	}
	return producers, nil
}

// Inputs returns the datasets consumed but not produced by the pipeline.
func (p *Pipeline) Inputs() []string {
	produced := p.allOutputs()
	var free []string
	for _, n := range p.nodes {
		for _, in := range n.Inputs {
			if _, ok := produced[in]; !ok && !slices.Contains(free, in) {
				free = append(free, in)
			}
		}
	}
	slices.Sort(free)
	return free
}

// Outputs returns the datasets produced but not consumed by the pipeline.
func (p *Pipeline) Outputs() []string {
	consumed := make(map[string]struct{})
	for _, n := range p.nodes {
		for _, in := range n.Inputs {
			consumed[in] = struct{}{}
		}
	}
	var outs []string
	for _, n := range p.nodes {
		for _, out := range n.Outputs {
			if _, ok := consumed[out]; !ok {
				outs = append(outs, out)
			}
		}
	}
	slices.Sort(outs)
	return slices.Compact(outs)
}

func (p *Pipeline) allOutputs() map[string]struct{} {
	produced := make(map[string]struct{})
	for _, n := range p.nodes {
		for _, out := range n.Outputs {
			produced[out] = struct{}{}
		}
	}
	return produced
}

// Only returns a pipeline with the named nodes. Unknown names are an error.
func (p *Pipeline) Only(names ...string) (*Pipeline, error) {
	known := p.Names()
	for _, name := range names {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("%w: unknown node %s", ErrInvalidPipeline, name)
		}
	}
	var nodes []Node
	for _, n := range p.nodes {
		if slices.Contains(names, n.Name) {
			nodes = append(nodes, n)
		}
	}
	return &Pipeline{nodes: nodes}, nil
}

// WithTags returns a pipeline with the nodes carrying any of tags.
func (p *Pipeline) WithTags(tags ...string) *Pipeline {
	var nodes []Node
	for _, n := range p.nodes {
		if n.HasTag(tags...) {
			nodes = append(nodes, n)
		}
	}
	return &Pipeline{nodes: nodes}
}
