// Package training splits the model input table and fits the delay model.
package training

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/flights"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/model"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/recipe"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/split"
)

// KeyColumns identify a flight: carrier, flight number and date.
var KeyColumns = []string{flights.ColCarrier, flights.ColFlight, flights.ColDate}

const Target = flights.ColArrDelay

// Split holds the outputs of SplitData.
type Split struct {
	XTrain dataframe.DataFrame
	XTest  dataframe.DataFrame
	YTrain series.Series
	YTest  series.Series
}

type Nodes struct {
	logger logging.Logger
}

func NewNodes(logger logging.Logger) *Nodes {
	return &Nodes{logger: logger}
}

// SplitData partitions the table by flight key and separates the target.
func (n *Nodes) SplitData(_ context.Context, table dataframe.DataFrame, opts split.Options) (Split, error) {
	if err := flights.RequireColumns(table, "model input table", Target); err != nil {
		return Split{}, err
	}

	keys, err := split.FrameKeys(table, KeyColumns)
	if err != nil {
		return Split{}, err
	}
	if dup := split.DuplicateKeys(keys); dup > 0 && !opts.StrictKeys {
		n.logger.Warn("Duplicate flight keys share a split", "rows", dup)
	}

	train, test, err := split.Frame(table, KeyColumns, opts)
	if err != nil {
		return Split{}, err
	}

	out := Split{
		XTrain: train.Drop(Target),
		XTest:  test.Drop(Target),
		YTrain: train.Col(Target),
		YTest:  test.Col(Target),
	}
	for _, df := range []dataframe.DataFrame{out.XTrain, out.XTest} {
		if df.Err != nil {
			return Split{}, df.Err
		}
	}

	n.logger.Info("Split model input table",
		"seed", opts.Seed, "fraction", opts.Fraction.String(),
		"train", train.Nrow(), "test", test.Nrow())
	return out, nil
}

func (n *Nodes) splitNode(ctx context.Context, inputs []any) ([]any, error) {
	table, err := pipeline.Arg[dataframe.DataFrame](inputs, 0)
	if err != nil {
		return nil, err
	}
	opts, err := pipeline.Arg[split.Options](inputs, 1)
	if err != nil {
		return nil, err
	}
	s, err := n.SplitData(ctx, table, opts)
	if err != nil {
		return nil, err
	}
	return []any{s.XTrain, s.XTest, s.YTrain, s.YTest}, nil
}

// FeatureRecipe prepares flight features for the classifier.
func FeatureRecipe() *recipe.Recipe {
	return recipe.New(
		&recipe.ExpandDate{Select: recipe.Cols(flights.ColDate), Components: []string{"dow", "month"}},
		&recipe.Drop{Select: recipe.Cols(flights.ColDate)},
		&recipe.TargetEncode{Select: recipe.Cols(flights.ColOrigin, flights.ColDest, flights.ColCarrier)},
		&recipe.DropZeroVariance{Select: recipe.All(), Tolerance: 1e-4},
		&recipe.MutateAt{Column: flights.ColDepTime, Func: recipe.MinuteOfDay},
		&recipe.MutateAt{Column: flights.ColTimeHour, Func: recipe.EpochSeconds},
		&recipe.ScaleStandard{Select: recipe.Numeric()},
	)
}

// TrainModel fits the feature recipe and a logistic regression.
func (n *Nodes) TrainModel(_ context.Context, X dataframe.DataFrame, y series.Series, params model.Params) (*model.Pipeline, error) {
	if X.Nrow() != y.Len() {
		return nil, fmt.Errorf("X_train has %d rows, y_train has %d", X.Nrow(), y.Len())
	}

	pipe := model.NewPipeline(FeatureRecipe(), params)
	if err := pipe.Fit(X, y); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	n.logger.Info("Trained model",
		"rows", X.Nrow(), "features", len(pipe.Features), "iterations", pipe.Classifier.Iterations)
	return pipe, nil
}
