package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/model"
)

// ModelDataset stores a fitted model pipeline as JSON.
type ModelDataset struct {
	Path string
}

func NewModelDataset(path string) *ModelDataset {
	return &ModelDataset{Path: path}
}

func (d *ModelDataset) Load() (any, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p model.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", d.Path, err)
	}
	return &p, nil
}

func (d *ModelDataset) Save(data any) error {
	p, ok := data.(*model.Pipeline)
	if !ok {
		return fmt.Errorf("model dataset %s cannot save %T", d.Path, data)
	}
	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(d.Path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		f.Close()
		return fmt.Errorf("encode model %s: %w", d.Path, err)
	}
	return f.Close()
}

func (d *ModelDataset) Exists() bool {
	info, err := os.Stat(d.Path)
	return err == nil && info.Mode().IsRegular()
}

func (d *ModelDataset) Describe() map[string]any {
	return map[string]any{"type": TypeModel, "filepath": d.Path}
}
