package catalog

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
)

// DataCatalog resolves dataset names for the pipeline runner. Names saved
// without a registered dataset get a MemoryDataset.
type DataCatalog struct {
	mu       sync.RWMutex
	datasets map[string]Dataset
	logger   logging.Logger
}

func New(logger logging.Logger) *DataCatalog {
	return &DataCatalog{
		datasets: make(map[string]Dataset),
		logger:   logger,
	}
}

// Add registers ds under name. An existing entry is only replaced when
// replace is set.
func (c *DataCatalog) Add(name string, ds Dataset, replace bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.datasets[name]; exists && !replace {
		return fmt.Errorf("%w: %s", ErrDatasetExists, name)
	}
	c.datasets[name] = ds
	return nil
}

// AddFeedDict registers every value as a memory dataset, replacing existing
// entries. It is used for run parameters such as "params:split".
func (c *DataCatalog) AddFeedDict(feed map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, data := range feed {
		c.datasets[name] = NewMemoryDataset(data)
	}
}

func (c *DataCatalog) Load(name string) (any, error) {
	ds, ok := c.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}

	c.logger.Debug("Loading dataset", "name", name, "dataset", ds.Describe()["type"])
	data, err := ds.Load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return data, nil
}

func (c *DataCatalog) Save(name string, data any) error {
	c.mu.Lock()
	ds, ok := c.datasets[name]
	if !ok {
		ds = NewMemoryDataset(nil)
		c.datasets[name] = ds
	}
	c.mu.Unlock()

	c.logger.Debug("Saving dataset", "name", name, "dataset", ds.Describe()["type"])
	if err := ds.Save(data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is registered and holds data.
func (c *DataCatalog) Exists(name string) bool {
	ds, ok := c.get(name)
	return ok && ds.Exists()
}

// Has reports whether name is registered, with or without data.
func (c *DataCatalog) Has(name string) bool {
	_, ok := c.get(name)
	return ok
}

func (c *DataCatalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.datasets))
	for name := range c.datasets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *DataCatalog) get(name string) (Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.datasets[name]
	return ds, ok
}
