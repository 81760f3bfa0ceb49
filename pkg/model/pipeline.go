package model

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/recipe"
)

// Pipeline chains a feature recipe and a classifier. Features records the
// column order the classifier was trained on.
type Pipeline struct {
	Recipe     *recipe.Recipe      `json:"recipe"`
	Classifier *LogisticRegression `json:"classifier"`
	Features   []string            `json:"features"`
}

func NewPipeline(r *recipe.Recipe, params Params) *Pipeline {
	return &Pipeline{Recipe: r, Classifier: NewLogisticRegression(params)}
}

// Labels converts a 0/1 target column to floats. Missing values are an error.
func Labels(y series.Series) ([]float64, error) {
	if y.Err != nil {
		return nil, y.Err
	}
	labels := y.Float()
	for i, v := range labels {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("target %q has a missing value in row %d", y.Name, i)
		}
	}
	return labels, nil
}

func (p *Pipeline) Fit(X dataframe.DataFrame, y series.Series) error {
	labels, err := Labels(y)
	if err != nil {
		return err
	}
	features, err := p.Recipe.FitTransform(X, labels)
	if err != nil {
		return err
	}

	p.Features = features.Names()
	m, err := recipe.Matrix(features, p.Features)
	if err != nil {
		return err
	}
	return p.Classifier.Fit(m, labels)
}

func (p *Pipeline) PredictProba(X dataframe.DataFrame) ([]float64, error) {
	features, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	m, err := recipe.Matrix(features, p.Features)
	if err != nil {
		return nil, err
	}
	return p.Classifier.PredictProba(m)
}

func (p *Pipeline) Predict(X dataframe.DataFrame) ([]float64, error) {
	features, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	m, err := recipe.Matrix(features, p.Features)
	if err != nil {
		return nil, err
	}
	return p.Classifier.Predict(m)
}

func (p *Pipeline) transform(X dataframe.DataFrame) (dataframe.DataFrame, error) {
	if p.Features == nil {
		return X, ErrNotFitted
	}
	return p.Recipe.Transform(X)
}

// Score returns the accuracy of the pipeline on X against y.
func (p *Pipeline) Score(X dataframe.DataFrame, y series.Series) (float64, error) {
	cm, err := p.Confusion(X, y)
	if err != nil {
		return 0, err
	}
	return cm.Accuracy(), nil
}

func (p *Pipeline) Confusion(X dataframe.DataFrame, y series.Series) (ConfusionMatrix, error) {
	labels, err := Labels(y)
	if err != nil {
		return ConfusionMatrix{}, err
	}
	pred, err := p.Predict(X)
	if err != nil {
		return ConfusionMatrix{}, err
	}
	return NewConfusionMatrix(labels, pred)
}
