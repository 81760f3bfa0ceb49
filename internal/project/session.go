package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/catalog"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/config"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/training"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

var ErrInvalidSelection = errors.New("invalid pipeline selection")

// RunOptions select what a Session runs. Nodes and Tags narrow the named
// pipeline; empty values keep every node.
type RunOptions struct {
	Pipeline string
	Nodes    []string
	Tags     []string
	Progress pipeline.ProgressFunc
}

// Session binds the pipeline registry to a configuration.
type Session struct {
	cfg      *config.Config
	registry *pipeline.Registry
	logger   logging.Logger
}

func NewSession(cfg *config.Config, logger logging.Logger) (*Session, error) {
	registry, err := RegisterPipelines(logger)
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, registry: registry, logger: logger}, nil
}

func (s *Session) Registry() *pipeline.Registry {
	return s.registry
}

// Select resolves opts to the pipeline that would run.
func (s *Session) Select(opts RunOptions) (*pipeline.Pipeline, error) {
	p, err := s.registry.Get(opts.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	if len(opts.Nodes) > 0 {
		if p, err = p.Only(opts.Nodes...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}
	}
	if len(opts.Tags) > 0 {
		p = p.WithTags(opts.Tags...)
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("%w: no nodes selected", ErrInvalidSelection)
	}
	return p, nil
}

// Catalog builds a fresh data catalog from the configured catalog file and
// feeds it the split and model parameters.
func (s *Session) Catalog() (*catalog.DataCatalog, error) {
	splitOpts, err := s.cfg.Split.Options()
	if err != nil {
		return nil, err
	}
	if err := s.cfg.Model.Validate(); err != nil {
		return nil, fmt.Errorf("model parameters: %w", err)
	}

	c := catalog.New(s.logger)
	if s.cfg.Catalog.Path != "" {
		if c, err = catalog.LoadFile(s.cfg.Catalog.Path, s.cfg.Catalog.BaseDir, s.logger); err != nil {
			return nil, err
		}
	}
	c.AddFeedDict(map[string]any{
		training.ParamsSplit: splitOpts,
		training.ParamsModel: s.cfg.Model,
	})
	return c, nil
}

// Run executes the selected pipeline and returns its unpersisted outputs.
func (s *Session) Run(ctx context.Context, opts RunOptions) (map[string]any, error) {
	p, err := s.Select(opts)
	if err != nil {
		return nil, err
	}
	c, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	name := opts.Pipeline
	if name == "" {
		name = pipeline.DefaultName
	}
	s.logger.Info("Running pipeline", "pipeline", name, "nodes", p.Len())

	runner := pipeline.NewRunner(s.logger)
	if opts.Progress != nil {
		runner = runner.WithProgress(opts.Progress)
	}
	return runner.Run(ctx, p, c)
}
