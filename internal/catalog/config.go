package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
)

const (
	TypeMemory = "memory"
	TypeCSV    = "csv"
	TypeModel  = "model"
)

// Entry is one dataset declaration of a catalog file.
type Entry struct {
	Type     string      `yaml:"type"`
	Filepath string      `yaml:"filepath"`
	LoadArgs CSVLoadArgs `yaml:"load_args"`
	SaveArgs CSVSaveArgs `yaml:"save_args"`
}

// ParseEntries decodes a catalog document mapping dataset names to entries.
func ParseEntries(data []byte) (map[string]Entry, error) {
	entries := make(map[string]Entry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return entries, nil
}

// NewDataset builds the dataset described by e. Relative file paths are
// resolved against baseDir.
func NewDataset(e Entry, baseDir string) (Dataset, error) {
	path := resolvePath(baseDir, e.Filepath)
	switch e.Type {
	case TypeMemory, "":
		return NewMemoryDataset(nil), nil
	case TypeCSV:
		if path == "" {
			return nil, fmt.Errorf("csv dataset needs a filepath")
		}
		if _, err := (&CSVDataset{LoadArgs: e.LoadArgs}).loadOptions(); err != nil {
			return nil, err
		}
		return NewCSVDataset(path, e.LoadArgs, e.SaveArgs), nil
	case TypeModel:
		if path == "" {
			return nil, fmt.Errorf("model dataset needs a filepath")
		}
		return NewModelDataset(path), nil
	default:
		return nil, fmt.Errorf("unknown dataset type %q", e.Type)
	}
}

// FromEntries builds a catalog holding one dataset per entry.
func FromEntries(entries map[string]Entry, baseDir string, logger logging.Logger) (*DataCatalog, error) {
	c := New(logger)
	for name, e := range entries {
		ds, err := NewDataset(e, baseDir)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		if err := c.Add(name, ds, false); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile reads a catalog file. When baseDir is empty, relative dataset
// paths are resolved against the directory holding the file.
func LoadFile(path, baseDir string, logger logging.Logger) (*DataCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	entries, err := ParseEntries(data)
	if err != nil {
		return nil, err
	}
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}
	return FromEntries(entries, baseDir, logger)
}
