package evaluation

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/catalog"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/training"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/model"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/recipe"
)

func fittedPipe(t *testing.T) (*model.Pipeline, dataframe.DataFrame, series.Series) {
	t.Helper()
	X := dataframe.New(series.New([]float64{-3, -2, -1, 1, 2, 3}, series.Float, "x"))
	y := series.New([]int{0, 0, 0, 1, 1, 1}, series.Int, "arr_delay")

	pipe := model.NewPipeline(recipe.New(&recipe.ScaleStandard{Select: recipe.Numeric()}), model.DefaultParams())
	require.NoError(t, pipe.Fit(X, y))
	return pipe, X, y
}

func TestEvaluate(t *testing.T) {
	pipe, X, y := fittedPipe(t)

	report, err := Evaluate(pipe, X, y)
	require.NoError(t, err)
	require.Equal(t, 6, report.Rows)
	require.InDelta(t, 1.0, report.Accuracy, 1e-12)
	require.InDelta(t, 1.0, report.F1, 1e-12)
	require.Equal(t, 3, report.Confusion.TruePositive)
	require.Equal(t, 3, report.Confusion.TrueNegative)

	flipped := series.New([]int{1, 1, 1, 0, 0, 0}, series.Int, "arr_delay")
	report, err = Evaluate(pipe, X, flipped)
	require.NoError(t, err)
	require.Zero(t, report.Accuracy)
}

func TestEvaluate_Errors(t *testing.T) {
	pipe, X, y := fittedPipe(t)

	_, err := Evaluate(nil, X, y)
	require.ErrorIs(t, err, model.ErrNotFitted)

	unfitted := model.NewPipeline(recipe.New(), model.DefaultParams())
	_, err = Evaluate(unfitted, X, y)
	require.ErrorIs(t, err, model.ErrNotFitted)

	_, err = Evaluate(pipe, X, series.New([]int{0, 1}, series.Int, "arr_delay"))
	require.Error(t, err)
}

func TestEvaluateModel_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "text", Output: &buf})
	require.NoError(t, err)

	pipe, X, y := fittedPipe(t)
	require.NoError(t, NewNodes(logger).EvaluateModel(context.Background(), pipe, X, y))
	require.Contains(t, buf.String(), "Model has an accuracy of 1.000 on test data.")
	require.Contains(t, buf.String(), "accuracy=1")
}

func TestPipeline(t *testing.T) {
	p := NewPipeline(logging.NewNop())
	require.NoError(t, p.Validate())
	require.Equal(t, []string{training.DatasetXTest, training.DatasetModel, training.DatasetYTest}, p.Inputs())
	require.Empty(t, p.Outputs())

	pipe, X, y := fittedPipe(t)
	cat := catalog.New(logging.NewNop())
	cat.AddFeedDict(map[string]any{
		training.DatasetModel: pipe,
		training.DatasetXTest: X,
		training.DatasetYTest: y,
	})
	out, err := pipeline.NewRunner(logging.NewNop()).Run(context.Background(), p, cat)
	require.NoError(t, err)
	require.Empty(t, out)
}
