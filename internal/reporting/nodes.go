// Package reporting answers exploratory questions about the raw flights
// table.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/flights"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/recipe"
)

const (
	ColDistanceKm      = "distance_km"
	ColAverageArrDelay = "average_arr_delay"
	ColLateShare       = "late_share"

	// KilometresPerMile converts flight distances.
	KilometresPerMile = 1.609
)

type Nodes struct {
	logger logging.Logger
}

func NewNodes(logger logging.Logger) *Nodes {
	return &Nodes{logger: logger}
}

// MetricDistance replaces distance in miles with distance_km.
func (n *Nodes) MetricDistance(_ context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := flights.RequireColumns(df, "flights", flights.ColDistance); err != nil {
		return df, err
	}

	miles := df.Col(flights.ColDistance).Float()
	km := make([]float64, len(miles))
	for i, v := range miles {
		km[i] = v * KilometresPerMile
	}

	out := df.Mutate(series.New(km, series.Float, ColDistanceKm)).Drop(flights.ColDistance)
	return out, out.Err
}

// AirlineJuneDelays averages the arrival delay of each carrier over flights
// in June 2013, worst first. Missing delays are ignored.
func (n *Nodes) AirlineJuneDelays(_ context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := flights.RequireColumns(df, "flights", flights.ColCarrier, flights.ColArrDelay, flights.ColTimeHour); err != nil {
		return df, err
	}

	delays := flights.TryIntSeries(df.Col(flights.ColArrDelay))
	carriers := df.Col(flights.ColCarrier)
	hours := df.Col(flights.ColTimeHour)

	keep := make([]bool, df.Nrow())
	for i := range keep {
		e := hours.Elem(i)
		if e.IsNA() || carriers.Elem(i).IsNA() || delays.Elem(i).IsNA() {
			continue
		}
		t, err := recipe.ParseTimestamp(e.String())
		keep[i] = err == nil && t.Year() == 2013 && t.Month() == time.June
	}

	june := df.Mutate(delays).Subset(keep).Select([]string{flights.ColCarrier, flights.ColArrDelay})
	out, err := meanBy(june, flights.ColCarrier, flights.ColArrDelay, ColAverageArrDelay)
	if err != nil {
		return out, err
	}
	out = out.Arrange(dataframe.RevSort(ColAverageArrDelay), dataframe.Sort(flights.ColCarrier))

	n.logger.Info("Computed June delays per airline", "flights", june.Nrow(), "carriers", out.Nrow())
	return out, out.Err
}

// OriginLateShare computes the share of late arrivals per origin airport,
// most punctual first. Missing delays are ignored.
func (n *Nodes) OriginLateShare(_ context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := flights.RequireColumns(df, "flights", flights.ColOrigin, flights.ColArrDelay); err != nil {
		return df, err
	}

	delays := df.Col(flights.ColArrDelay)
	origins := df.Col(flights.ColOrigin)

	rows := make([]int, 0, df.Nrow())
	late := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		v, ok := flights.TryInt(delays.Elem(i))
		if !ok || origins.Elem(i).IsNA() {
			continue
		}
		rows = append(rows, i)
		if v >= flights.LateThreshold {
			late = append(late, 1)
		} else {
			late = append(late, 0)
		}
	}

	scored := df.Subset(rows).Select([]string{flights.ColOrigin})
	if len(rows) > 0 {
		scored = scored.Mutate(series.New(late, series.Int, ColLateShare))
	}
	out, err := meanBy(scored, flights.ColOrigin, ColLateShare, ColLateShare)
	if err != nil {
		return out, err
	}
	out = out.Arrange(dataframe.Sort(ColLateShare), dataframe.Sort(flights.ColOrigin))

	n.logger.Info("Computed late share per origin", "flights", len(rows), "origins", out.Nrow())
	return out, out.Err
}

// meanBy groups df by key and averages value into a column named as. The
// result has columns key and as, in that order.
func meanBy(df dataframe.DataFrame, key, value, as string) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	if df.Nrow() == 0 {
		return dataframe.New(
			series.New([]string{}, series.String, key),
			series.New([]float64{}, series.Float, as),
		), nil
	}

	groups := df.GroupBy(key)
	if groups.Err != nil {
		return df, fmt.Errorf("group by %s: %w", key, groups.Err)
	}
	agg := groups.Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{value})
	out := agg.Rename(as, fmt.Sprintf("%s_%s", value, dataframe.Aggregation_MEAN)).Select([]string{key, as})
	if out.Err != nil {
		return out, fmt.Errorf("average %s by %s: %w", value, key, out.Err)
	}
	return out, nil
}
