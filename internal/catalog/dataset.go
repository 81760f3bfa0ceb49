// Package catalog maps dataset names used by pipeline nodes to their storage.
package catalog

import (
	"errors"
	"sync"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetExists   = errors.New("dataset already registered")
	ErrEmptyDataset    = errors.New("dataset has no data")
)

// Dataset loads and saves one named piece of data.
type Dataset interface {
	Load() (any, error)
	Save(data any) error
	Exists() bool
	Describe() map[string]any
}

// MemoryDataset keeps its data for the lifetime of the catalog.
type MemoryDataset struct {
	mu   sync.RWMutex
	data any
	set  bool
}

func NewMemoryDataset(data any) *MemoryDataset {
	return &MemoryDataset{data: data, set: data != nil}
}

func (m *MemoryDataset) Load() (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return nil, ErrEmptyDataset
	}
	return m.data, nil
}

func (m *MemoryDataset) Save(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.set = true
	return nil
}

func (m *MemoryDataset) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set
}

func (m *MemoryDataset) Describe() map[string]any {
	return map[string]any{"type": TypeMemory}
}
