package training

import (
	"github.com/ibis-project/kedro-ibis-tutorial/internal/flights"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

const (
	DatasetXTrain  = "X_train"
	DatasetXTest   = "X_test"
	DatasetYTrain  = "y_train"
	DatasetYTest   = "y_test"
	DatasetModel   = "pipe"
	ParamsSplit    = "params:split"
	ParamsModel    = "params:model"
	Tag            = "training"
	NodeSplitData  = "split_data"
	NodeTrainModel = "train_model"
)

func NewPipeline(logger logging.Logger) *pipeline.Pipeline {
	n := NewNodes(logger)
	return pipeline.New(
		pipeline.NewNode(
			NodeSplitData,
			n.splitNode,
			[]string{flights.DatasetModelInputTable, ParamsSplit},
			[]string{DatasetXTrain, DatasetXTest, DatasetYTrain, DatasetYTest},
			Tag,
		),
		pipeline.NewNode(
			NodeTrainModel,
			pipeline.Func3(n.TrainModel),
			[]string{DatasetXTrain, DatasetYTrain, ParamsModel},
			[]string{DatasetModel},
			Tag,
		),
	)
}
