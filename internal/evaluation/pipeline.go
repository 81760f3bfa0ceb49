package evaluation

import (
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/training"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

const (
	Tag               = "evaluation"
	NodeEvaluateModel = "evaluate_model"
)

func NewPipeline(logger logging.Logger) *pipeline.Pipeline {
	n := NewNodes(logger)
	return pipeline.New(
		pipeline.NewNode(
			NodeEvaluateModel,
			pipeline.Sink3(n.EvaluateModel),
			[]string{training.DatasetModel, training.DatasetXTest, training.DatasetYTest},
			nil,
			Tag,
		),
	)
}
