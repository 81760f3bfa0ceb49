package storage

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRunStore keeps runs in a map. Stored and returned runs are copies,
// so callers may mutate them freely.
type InMemoryRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*Run
}

func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs: make(map[uuid.UUID]*Run),
	}
}

func (s *InMemoryRunStore) SaveRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *InMemoryRunStore) UpdateRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		return ErrRunNotFound
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *InMemoryRunStore) GetRunByID(id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	return run.Clone(), nil
}

// GetRuns returns a page of runs matching filter, newest first, and the
// number of matching runs. A non-positive limit returns every match.
func (s *InMemoryRunStore) GetRuns(filter RunFilter) ([]*Run, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		matched = append(matched, run)
	}
	slices.SortFunc(matched, func(a, b *Run) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	page := make([]*Run, 0, end-start)
	for _, run := range matched[start:end] {
		page = append(page, run.Clone())
	}
	return page, total, nil
}
