package project

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/storage"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

type RunStore interface {
	SaveRun(run *storage.Run) error
	UpdateRun(run *storage.Run) error
	GetRunByID(id uuid.UUID) (*storage.Run, error)
	GetRuns(filter storage.RunFilter) ([]*storage.Run, int, error)
}

// PipelineInfo describes a registered pipeline.
type PipelineInfo struct {
	Name   string
	Nodes  []string
	Inputs []string
}

// RunService executes pipeline runs in the background and records their
// progress in a RunStore.
type RunService struct {
	session *Session
	store   RunStore
	logger  logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunService(session *Session, store RunStore, logger logging.Logger) *RunService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunService{
		session: session,
		store:   store,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SubmitRun validates the selection, records a pending run and starts it.
func (s *RunService) SubmitRun(name string, nodes []string) (*storage.Run, error) {
	if name == "" {
		name = pipeline.DefaultName
	}
	opts := RunOptions{Pipeline: name, Nodes: nodes}
	p, err := s.session.Select(opts)
	if err != nil {
		return nil, err
	}

	run := &storage.Run{
		ID:          uuid.New(),
		Pipeline:    name,
		Nodes:       p.Names(),
		Status:      storage.RunStatusPending,
		Total:       p.Len(),
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.store.SaveRun(run); err != nil {
		return nil, err
	}
	s.logger.Info("Run submitted", "run_id", run.ID.String(), "pipeline", name, "nodes", run.Total)

	s.wg.Add(1)
	go func(run *storage.Run) {
		defer s.wg.Done()
		s.execute(run, opts)
	}(run.Clone())

	return run, nil
}

func (s *RunService) execute(run *storage.Run, opts RunOptions) {
	logger := s.logger.With("run_id", run.ID.String())

	run.Status = storage.RunStatusRunning
	run.StartedAt = ptrTimeNow()
	s.update(logger, run)

	opts.Progress = func(_ string, done, _ int) {
		run.Done = done
		s.update(logger, run)
	}
	outputs, err := s.session.Run(s.ctx, opts)

	run.CompletedAt = ptrTimeNow()
	if err != nil {
		run.Status = storage.RunStatusFailed
		run.Error = err.Error()
		logger.Error("Run failed", "error", err)
	} else {
		run.Status = storage.RunStatusCompleted
		for name := range outputs {
			run.Outputs = append(run.Outputs, name)
		}
		slices.Sort(run.Outputs)
		logger.Info("Run completed", "outputs", len(run.Outputs))
	}
	s.update(logger, run)
}

func (s *RunService) update(logger logging.Logger, run *storage.Run) {
	if err := s.store.UpdateRun(run); err != nil {
		logger.Error("Failed to update run", "error", err)
	}
}

func (s *RunService) GetRun(id uuid.UUID) (*storage.Run, error) {
	return s.store.GetRunByID(id)
}

func (s *RunService) GetRuns(filter storage.RunFilter) ([]*storage.Run, int, error) {
	return s.store.GetRuns(filter)
}

// Pipelines lists registered pipelines by name with nodes in execution order.
func (s *RunService) Pipelines() ([]PipelineInfo, error) {
	registry := s.session.Registry()
	var infos []PipelineInfo
	for _, name := range registry.List() {
		p, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		nodes, err := p.Nodes()
		if err != nil {
			return nil, err
		}
		info := PipelineInfo{Name: name, Inputs: p.Inputs()}
		for _, n := range nodes {
			info.Nodes = append(info.Nodes, n.Name)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Wait blocks until every submitted run has finished.
func (s *RunService) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight runs and waits for them to stop.
func (s *RunService) Close() {
	s.cancel()
	s.wg.Wait()
}

func ptrTimeNow() *time.Time {
	now := time.Now().UTC()
	return &now
}
