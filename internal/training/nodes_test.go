package training

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/catalog"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/flights"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/model"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/split"
)

// modelInputTable builds n flights where late flights leave in the evening.
func modelInputTable(n int) dataframe.DataFrame {
	var (
		depTime, origin, dest, carrier, date, timeHour []string
		flight, airTime, distance, arrDelay            []int
	)
	origins := []string{"EWR", "JFK", "LGA"}
	carriers := []string{"UA", "AA", "DL", "B6"}
	for i := 0; i < n; i++ {
		late := i%3 == 0
		hour := 6 + i%5
		if late {
			hour = 18 + i%4
		}
		day := 1 + i%28
		depTime = append(depTime, fmt.Sprintf("%02d:%02d:00", hour, i%60))
		flight = append(flight, 100+i)
		origin = append(origin, origins[i%len(origins)])
		dest = append(dest, "ORD")
		airTime = append(airTime, 100+i%50)
		distance = append(distance, 700+i%90)
		carrier = append(carrier, carriers[i%len(carriers)])
		date = append(date, fmt.Sprintf("2013-%02d-%02d", 1+i%12, day))
		timeHour = append(timeHour, fmt.Sprintf("2013-%02d-%02d %02d:00:00", 1+i%12, day, hour))
		if late {
			arrDelay = append(arrDelay, 1)
		} else {
			arrDelay = append(arrDelay, 0)
		}
	}
	return dataframe.New(
		series.New(depTime, series.String, flights.ColDepTime),
		series.New(flight, series.Int, flights.ColFlight),
		series.New(origin, series.String, flights.ColOrigin),
		series.New(dest, series.String, flights.ColDest),
		series.New(airTime, series.Int, flights.ColAirTime),
		series.New(distance, series.Int, flights.ColDistance),
		series.New(carrier, series.String, flights.ColCarrier),
		series.New(date, series.String, flights.ColDate),
		series.New(arrDelay, series.Int, flights.ColArrDelay),
		series.New(timeHour, series.String, flights.ColTimeHour),
	)
}

func TestSplitData(t *testing.T) {
	table := modelInputTable(400)
	n := NewNodes(logging.NewNop())

	got, err := n.SplitData(context.Background(), table, split.DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, table.Nrow(), got.XTrain.Nrow()+got.XTest.Nrow())
	require.Equal(t, got.XTrain.Nrow(), got.YTrain.Len())
	require.Equal(t, got.XTest.Nrow(), got.YTest.Len())
	require.NotContains(t, got.XTrain.Names(), flights.ColArrDelay)
	require.NotContains(t, got.XTest.Names(), flights.ColArrDelay)
	require.Equal(t, flights.ColArrDelay, got.YTrain.Name)

	share := float64(got.XTrain.Nrow()) / float64(table.Nrow())
	require.InDelta(t, 0.75, share, 0.1)

	again, err := n.SplitData(context.Background(), table, split.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, got.XTrain.Col(flights.ColFlight).Records(), again.XTrain.Col(flights.ColFlight).Records())
}

func TestSplitData_Errors(t *testing.T) {
	n := NewNodes(logging.NewNop())
	table := modelInputTable(10)

	_, err := n.SplitData(context.Background(), table.Drop(flights.ColArrDelay), split.DefaultOptions())
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = n.SplitData(context.Background(), table.Drop(flights.ColCarrier), split.DefaultOptions())
	require.ErrorIs(t, err, core.ErrInvalidInput)

	opts := split.DefaultOptions()
	opts.Fraction = core.Fraction{Numerator: 5, Denominator: 4}
	_, err = n.SplitData(context.Background(), table, opts)
	require.ErrorIs(t, err, core.ErrConfiguration)

	dup := table.RBind(table)
	opts = split.DefaultOptions()
	opts.StrictKeys = true
	_, err = n.SplitData(context.Background(), dup, opts)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSplitData_DuplicatesShareSplit(t *testing.T) {
	table := modelInputTable(50)
	got, err := NewNodes(logging.NewNop()).SplitData(context.Background(), table.RBind(table), split.DefaultOptions())
	require.NoError(t, err)
	require.Zero(t, got.XTrain.Nrow()%2)
	require.Zero(t, got.XTest.Nrow()%2)
}

func TestTrainModel(t *testing.T) {
	table := modelInputTable(300)
	n := NewNodes(logging.NewNop())

	X := table.Drop(flights.ColArrDelay)
	y := table.Col(flights.ColArrDelay)
	pipe, err := n.TrainModel(context.Background(), X, y, model.DefaultParams())
	require.NoError(t, err)
	require.NotEmpty(t, pipe.Features)
	require.NotContains(t, pipe.Features, flights.ColDate)
	require.Contains(t, pipe.Features, flights.ColDepTime)

	acc, err := pipe.Score(X, y)
	require.NoError(t, err)
	require.Greater(t, acc, 0.9)
}

func TestTrainModel_Errors(t *testing.T) {
	table := modelInputTable(20)
	n := NewNodes(logging.NewNop())

	_, err := n.TrainModel(context.Background(), table.Drop(flights.ColArrDelay),
		table.Subset([]int{0, 1}).Col(flights.ColArrDelay), model.DefaultParams())
	require.ErrorContains(t, err, "X_train has 20 rows, y_train has 2")

	_, err = n.TrainModel(context.Background(), table.Drop(flights.ColArrDelay),
		table.Col(flights.ColArrDelay), model.Params{})
	require.Error(t, err)
}

func TestPipeline(t *testing.T) {
	p := NewPipeline(logging.NewNop())
	require.NoError(t, p.Validate())
	require.Equal(t, []string{NodeSplitData, NodeTrainModel}, p.Names())
	require.Equal(t, []string{flights.DatasetModelInputTable, ParamsModel, ParamsSplit}, p.Inputs())

	cat := catalog.New(logging.NewNop())
	cat.AddFeedDict(map[string]any{
		flights.DatasetModelInputTable: modelInputTable(200),
		ParamsSplit:                    split.DefaultOptions(),
		ParamsModel:                    model.DefaultParams(),
	})

	out, err := pipeline.NewRunner(logging.NewNop()).Run(context.Background(), p, cat)
	require.NoError(t, err)
	require.IsType(t, &model.Pipeline{}, out[DatasetModel])

	xTest, err := cat.Load(DatasetXTest)
	require.NoError(t, err)
	require.IsType(t, dataframe.DataFrame{}, xTest)
}
