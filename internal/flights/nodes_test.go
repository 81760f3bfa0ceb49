package flights

import (
	"context"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/catalog"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/pipeline"
)

func TestDepartureTime(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "517", want: "05:17:00", wantOK: true},
		{raw: "1955", want: "19:55:00", wantOK: true},
		{raw: "5", want: "00:05:00", wantOK: true},
		{raw: "0", want: "00:00:00", wantOK: true},
		{raw: " 845 ", want: "08:45:00", wantOK: true},
		{raw: "12345", want: "12:45:00", wantOK: true},
		{raw: "2400"},
		{raw: "1261"},
		{raw: ""},
		{raw: "ab12"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := DepartureTime(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func rawFlights() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"517", "2400", "NaN", "5"}, series.Int, "dep_time"),
		series.New([]string{"11", "abc", "-18", "NaN"}, series.String, "arr_delay"),
		series.New([]string{"227", "150.5", "NaN", "3"}, series.Float, "air_time"),
		series.New([]string{"UA", "UA", "AA", "B6"}, series.String, "carrier"),
	)
}

func TestPreprocessFlights(t *testing.T) {
	n := NewNodes(logging.NewNop())
	in := rawFlights()

	out, err := n.PreprocessFlights(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, []string{"05:17:00", "NaN", "NaN", "00:05:00"}, out.Col("dep_time").Records())
	require.Equal(t, series.String, out.Col("dep_time").Type())

	require.Equal(t, series.Int, out.Col("arr_delay").Type())
	require.Equal(t, []string{"11", "NaN", "-18", "NaN"}, out.Col("arr_delay").Records())

	require.Equal(t, series.Int, out.Col("air_time").Type())
	require.Equal(t, []string{"227", "NaN", "NaN", "3"}, out.Col("air_time").Records())

	require.Equal(t, in.Names(), out.Names())
	require.Equal(t, series.Int, in.Col("dep_time").Type())
}

func TestPreprocessFlights_MissingColumns(t *testing.T) {
	df := dataframe.New(series.New([]string{"517"}, series.String, "dep_time"))
	_, err := NewNodes(logging.NewNop()).PreprocessFlights(context.Background(), df)
	require.ErrorIs(t, err, core.ErrInvalidInput)
	require.ErrorContains(t, err, "arr_delay, air_time")
}

func preprocessedFlights() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"05:17:00", "05:33:00", "05:42:00", "NaN", "06:00:00"}, series.String, "dep_time"),
		series.New([]int{1545, 1714, 1141, 725, 461}, series.Int, "flight"),
		series.New([]string{"EWR", "LGA", "JFK", "EWR", "LGA"}, series.String, "origin"),
		series.New([]string{"IAH", "IAH", "MIA", "BQN", "ATL"}, series.String, "dest"),
		series.New([]int{227, 227, 160, 183, 116}, series.Int, "air_time"),
		series.New([]int{1400, 1416, 1089, 1576, 762}, series.Int, "distance"),
		series.New([]string{"UA", "UA", "AA", "B6", "DL"}, series.String, "carrier"),
		series.New([]string{"11", "45", "33", "-18", "NaN"}, series.Int, "arr_delay"),
		series.New([]string{
			"2013-01-01T05:00:00Z", "2013-01-01T05:00:00Z", "2013-01-01T05:00:00Z",
			"2013-01-01T05:00:00Z", "2013-01-01T05:00:00Z",
		}, series.String, "time_hour"),
		series.New([]string{"N14228", "N24211", "N619AA", "N804JB", "N668DN"}, series.String, "tailnum"),
	)
}

func weather(origins, hours []string) dataframe.DataFrame {
	temps := make([]float64, len(origins))
	for i := range temps {
		temps[i] = 39.02
	}
	return dataframe.New(
		series.New(origins, series.String, "origin"),
		series.New(hours, series.String, "time_hour"),
		series.New(temps, series.Float, "temp"),
	)
}

func TestCreateModelInputTable(t *testing.T) {
	w := weather(
		[]string{"EWR", "LGA", "EWR"},
		[]string{"2013-01-01 05:00:00", "2013-01-01T05:00:00Z", "2013-01-01T06:00:00Z"},
	)

	out, err := NewNodes(logging.NewNop()).CreateModelInputTable(context.Background(), preprocessedFlights(), w)
	require.NoError(t, err)

	require.Equal(t, ModelInputColumns, out.Names())
	require.Equal(t, []string{"1545", "1714"}, out.Col("flight").Records())
	require.Equal(t, []string{"0", "1"}, out.Col("arr_delay").Records())
	require.Equal(t, series.Int, out.Col("arr_delay").Type())
	require.Equal(t, []string{"2013-01-01", "2013-01-01"}, out.Col("date").Records())
	require.False(t, out.Col("dep_time").HasNaN())
}

func TestCreateModelInputTable_KeepsJoinMultiplicity(t *testing.T) {
	w := weather(
		[]string{"EWR", "EWR", "LGA"},
		[]string{"2013-01-01T05:00:00Z", "2013-01-01T05:00:00Z", "2013-01-01T05:00:00Z"},
	)

	out, err := NewNodes(logging.NewNop()).CreateModelInputTable(context.Background(), preprocessedFlights(), w)
	require.NoError(t, err)
	require.Equal(t, []string{"1545", "1545", "1714"}, out.Col("flight").Records())
}

func TestCreateModelInputTable_NoMatches(t *testing.T) {
	w := weather([]string{"JFK"}, []string{"2014-01-01T05:00:00Z"})

	out, err := NewNodes(logging.NewNop()).CreateModelInputTable(context.Background(), preprocessedFlights(), w)
	require.NoError(t, err)
	require.Zero(t, out.Nrow())
	require.Equal(t, ModelInputColumns, out.Names())
}

func TestCreateModelInputTable_MissingColumns(t *testing.T) {
	n := NewNodes(logging.NewNop())

	_, err := n.CreateModelInputTable(context.Background(), preprocessedFlights().Drop("distance"), weather([]string{"EWR"}, []string{"x"}))
	require.ErrorIs(t, err, core.ErrInvalidInput)

	noHour := dataframe.New(series.New([]string{"EWR"}, series.String, "origin"))
	_, err = n.CreateModelInputTable(context.Background(), preprocessedFlights(), noHour)
	require.ErrorIs(t, err, core.ErrInvalidInput)
	require.ErrorContains(t, err, "weather")
}

func TestDropNA(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"a", "NaN", "c"}, series.String, "s"),
		series.New([]string{"1", "2", "NaN"}, series.Int, "i"),
	)
	require.Equal(t, []string{"a"}, DropNA(df).Col("s").Records())
}

func TestPipeline(t *testing.T) {
	p := NewPipeline(logging.NewNop())
	require.Equal(t, []string{"flights", "weather"}, p.Inputs())
	require.Equal(t, []string{"model_input_table"}, p.Outputs())

	raw := preprocessedFlights().Mutate(
		series.New([]string{"517", "533", "542", "NaN", "600"}, series.String, "dep_time"),
	)
	c := catalog.New(logging.NewNop())
	c.AddFeedDict(map[string]any{
		DatasetFlights: raw,
		DatasetWeather: weather([]string{"EWR", "LGA"}, []string{"2013-01-01T05:00:00Z", "2013-01-01T05:00:00Z"}),
	})

	out, err := pipeline.NewRunner(logging.NewNop()).Run(context.Background(), p, c)
	require.NoError(t, err)

	table := out[DatasetModelInputTable].(dataframe.DataFrame)
	require.Equal(t, []string{"05:17:00", "05:33:00"}, table.Col("dep_time").Records())
}
