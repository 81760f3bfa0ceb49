package storage

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// ParseRunStatus accepts a status name in any case.
func ParseRunStatus(s string) (RunStatus, bool) {
	for _, status := range []RunStatus{RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed} {
		if strings.EqualFold(string(status), s) {
			return status, true
		}
	}
	return "", false
}

func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// Run is one execution of a registered pipeline.
type Run struct {
	ID       uuid.UUID
	Pipeline string
	Nodes    []string
	Status   RunStatus

	// Progress counts completed nodes out of Total.
	Done  int
	Total int

	// Outputs names the datasets the run returned instead of persisting.
	Outputs []string

	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	Error string
}

// Clone returns a deep copy of r.
func (r *Run) Clone() *Run {
	c := *r
	c.Nodes = slices.Clone(r.Nodes)
	c.Outputs = slices.Clone(r.Outputs)
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

type RunFilter struct {
	Status *RunStatus
	Limit  int
	Offset int
}
