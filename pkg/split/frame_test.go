package split

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
)

var keyColumns = []string{"carrier", "flight", "date"}

func fixtureFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"AA", "AA", "DL"}, series.String, "carrier"),
		series.New([]int{100, 101, 200}, series.Int, "flight"),
		series.New([]string{"2013-01-01", "2013-01-01", "2013-06-15"}, series.String, "date"),
		series.New([]int{1, 0, 1}, series.Int, "arr_delay"),
	)
}

func TestFrameKeys(t *testing.T) {
	keys, err := FrameKeys(fixtureFrame(), keyColumns)
	require.NoError(t, err)
	require.Equal(t, fixtureKeys, keys)
}

func TestFrameKeys_FloatColumnsRenderWithoutTrailingZeros(t *testing.T) {
	df := fixtureFrame().Mutate(series.New([]float64{100, 101, 200}, series.Float, "flight"))
	keys, err := FrameKeys(df, keyColumns)
	require.NoError(t, err)
	require.Equal(t, fixtureKeys, keys)
}

func TestFrame(t *testing.T) {
	df := fixtureFrame()

	train, test, err := Frame(df, keyColumns, options(222))
	require.NoError(t, err)

	require.Equal(t, df.Names(), train.Names())
	require.Equal(t, df.Names(), test.Names())
	require.Equal(t, 2, train.Nrow())
	require.Equal(t, 1, test.Nrow())
	require.Equal(t, []string{"100", "101"}, train.Col("flight").Records())
	require.Equal(t, []string{"DL"}, test.Col("carrier").Records())

	// input frame is untouched
	require.Equal(t, 3, df.Nrow())
}

func TestFrame_EmptyTestSet(t *testing.T) {
	train, test, err := Frame(fixtureFrame(), keyColumns, options(223))
	require.NoError(t, err)
	require.Equal(t, 3, train.Nrow())
	require.Equal(t, 0, test.Nrow())
	require.Equal(t, 4, test.Ncol())
}

func TestFrame_Errors(t *testing.T) {
	withNullCarrier := dataframe.New(
		series.New([]string{"AA", "NaN"}, series.String, "carrier"),
		series.New([]int{100, 101}, series.Int, "flight"),
		series.New([]string{"2013-01-01", "2013-01-01"}, series.String, "date"),
	)
	empty := fixtureFrame().Subset([]int{})

	tests := []struct {
		name    string
		df      dataframe.DataFrame
		columns []string
		opts    Options
		wantErr error
	}{
		{name: "null key", df: withNullCarrier, columns: keyColumns, opts: options(222), wantErr: core.ErrInvalidInput},
		{name: "missing column", df: fixtureFrame(), columns: []string{"carrier", "tailnum"}, opts: options(222), wantErr: core.ErrInvalidInput},
		{name: "no key columns", df: fixtureFrame(), columns: nil, opts: options(222), wantErr: core.ErrInvalidInput},
		{name: "no rows", df: empty, columns: keyColumns, opts: options(222), wantErr: core.ErrInvalidInput},
		{name: "broken frame", df: dataframe.New(), columns: keyColumns, opts: options(222), wantErr: core.ErrInvalidInput},
		{
			name:    "bad fraction",
			df:      fixtureFrame(),
			columns: keyColumns,
			opts:    Options{Seed: 222, Fraction: core.Fraction{Numerator: 5, Denominator: 4}},
			wantErr: core.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Frame(tt.df, tt.columns, tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
