package flights

import (
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

const (
	DatasetFlights             = "flights"
	DatasetWeather             = "weather"
	DatasetPreprocessedFlights = "preprocessed_flights"
	DatasetModelInputTable     = "model_input_table"
)

const Tag = "data_processing"

func NewPipeline(logger logging.Logger) *pipeline.Pipeline {
	n := NewNodes(logger)
	return pipeline.New(
		pipeline.NewNode(
			"preprocess_flights",
			pipeline.Func1(n.PreprocessFlights),
			[]string{DatasetFlights},
			[]string{DatasetPreprocessedFlights},
			Tag,
		),
		pipeline.NewNode(
			"create_model_input_table",
			pipeline.Func2(n.CreateModelInputTable),
			[]string{DatasetPreprocessedFlights, DatasetWeather},
			[]string{DatasetModelInputTable},
			Tag,
		),
	)
}
