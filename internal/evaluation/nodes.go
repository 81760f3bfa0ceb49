// Package evaluation scores the trained delay model on held out flights.
package evaluation

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/model"
)

// Report summarises model quality on the test set.
type Report struct {
	Rows      int                   `json:"rows"`
	Accuracy  float64               `json:"accuracy"`
	Precision float64               `json:"precision"`
	Recall    float64               `json:"recall"`
	F1        float64               `json:"f1"`
	Confusion model.ConfusionMatrix `json:"confusion"`
}

type Nodes struct {
	logger logging.Logger
}

func NewNodes(logger logging.Logger) *Nodes {
	return &Nodes{logger: logger}
}

// Evaluate scores pipe on X against y.
func Evaluate(pipe *model.Pipeline, X dataframe.DataFrame, y series.Series) (Report, error) {
	if pipe == nil {
		return Report{}, model.ErrNotFitted
	}
	cm, err := pipe.Confusion(X, y)
	if err != nil {
		return Report{}, fmt.Errorf("score model: %w", err)
	}
	precision, recall, f1 := cm.PrecisionRecallF1()
	return Report{
		Rows:      cm.Total(),
		Accuracy:  cm.Accuracy(),
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Confusion: cm,
	}, nil
}

// EvaluateModel logs the accuracy of pipe on the test set.
func (n *Nodes) EvaluateModel(_ context.Context, pipe *model.Pipeline, X dataframe.DataFrame, y series.Series) error {
	report, err := Evaluate(pipe, X, y)
	if err != nil {
		return err
	}

	n.logger.Info(fmt.Sprintf("Model has an accuracy of %.3f on test data.", report.Accuracy),
		"accuracy", report.Accuracy,
	)
	n.logger.Debug("Model test metrics",
		"rows", report.Rows, "precision", report.Precision, "recall", report.Recall, "f1", report.F1)
	return nil
}
