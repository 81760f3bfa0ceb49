package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
)

// Catalog resolves dataset names to data.
type Catalog interface {
	Load(name string) (any, error)
	Save(name string, data any) error
	Exists(name string) bool
	Has(name string) bool
}

// ProgressFunc is called after every completed node.
type ProgressFunc func(node string, done, total int)

// Runner executes the nodes of a pipeline one after another.
type Runner struct {
	logger   logging.Logger
	progress ProgressFunc
}

func NewRunner(logger logging.Logger) *Runner {
	return &Runner{logger: logger}
}

func (r *Runner) WithProgress(fn ProgressFunc) *Runner {
	return &Runner{logger: r.logger, progress: fn}
}

// Run executes p against catalog and returns the pipeline outputs that are not
// registered in it. The first failing node aborts the run.
func (r *Runner) Run(ctx context.Context, p *Pipeline, catalog Catalog) (map[string]any, error) {
	nodes, err := p.Nodes()
	if err != nil {
		return nil, err
	}

	for _, in := range p.Inputs() {
		if !catalog.Exists(in) {
			return nil, fmt.Errorf("%w: pipeline input %s is not in the catalog", ErrInvalidPipeline, in)
		}
	}

	var unregistered []string
	for _, out := range p.Outputs() {
		if !catalog.Has(out) {
			unregistered = append(unregistered, out)
		}
	}

	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.runNode(ctx, n, catalog); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		r.logger.Info("Completed node", "node", n.Name, "done", i+1, "total", len(nodes))
		if r.progress != nil {
			r.progress(n.Name, i+1, len(nodes))
		}
	}

	results := make(map[string]any, len(unregistered))
	for _, name := range unregistered {
		data, err := catalog.Load(name)
		if err != nil {
			return nil, err
		}
		results[name] = data
	}
	return results, nil
}

func (r *Runner) runNode(ctx context.Context, n Node, catalog Catalog) error {
	start := time.Now()
	r.logger.Info("Running node", "node", n.Name, "inputs", n.Inputs)

	inputs := make([]any, len(n.Inputs))
	for i, name := range n.Inputs {
		data, err := catalog.Load(name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		inputs[i] = data
	}

	outputs, err := n.Func(ctx, inputs)
	if err != nil {
		return err
	}
	if len(outputs) != len(n.Outputs) {
		return fmt.Errorf("returned %d outputs, declared %d", len(outputs), len(n.Outputs))
	}

	for i, name := range n.Outputs {
		if err := catalog.Save(name, outputs[i]); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}

	r.logger.Debug("Node finished", "node", n.Name, "duration", time.Since(start))
	return nil
}
