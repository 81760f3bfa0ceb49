package flights

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/pkg/recipe"
)

type Nodes struct {
	logger logging.Logger
}

func NewNodes(logger logging.Logger) *Nodes {
	return &Nodes{logger: logger}
}

// PreprocessFlights converts dep_time from "hmm" to a "HH:MM:00" time of day
// and casts arr_delay and air_time to integers. Values that do not convert
// become missing.
func (n *Nodes) PreprocessFlights(_ context.Context, flights dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := RequireColumns(flights, "flights", ColDepTime, ColArrDelay, ColAirTime); err != nil {
		return flights, err
	}

	dep := flights.Col(ColDepTime)
	times := make([]string, dep.Len())
	invalid := 0
	for i := range times {
		e := dep.Elem(i)
		if e.IsNA() {
			times[i] = na
			continue
		}
		t, ok := DepartureTime(text(e))
		if !ok {
			invalid++
			t = na
		}
		times[i] = t
	}

	out := flights.
		Mutate(series.New(times, series.String, ColDepTime)).
		Mutate(TryIntSeries(flights.Col(ColArrDelay))).
		Mutate(TryIntSeries(flights.Col(ColAirTime)))
	if out.Err != nil {
		return out, out.Err
	}

	n.logger.Debug("Preprocessed flights", "rows", out.Nrow(), "invalid_dep_time", invalid)
	return out, nil
}

// DepartureTime left pads raw to four digits with zeros and reads the first
// two as hours and the last two as minutes.
func DepartureTime(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if len(raw) < 4 {
		raw = strings.Repeat("0", 4-len(raw)) + raw
	}

	clock := raw[:2] + ":" + raw[len(raw)-2:] + ":00"
	if _, err := time.Parse(time.TimeOnly, clock); err != nil {
		return "", false
	}
	return clock, true
}

// CreateModelInputTable labels late arrivals, derives the flight date, keeps
// flights with matching weather observations and drops incomplete rows.
func (n *Nodes) CreateModelInputTable(_ context.Context, flights, weather dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := RequireColumns(flights, "flights", ColDepTime, ColFlight, ColOrigin, ColDest, ColAirTime,
		ColDistance, ColCarrier, ColArrDelay, ColTimeHour); err != nil {
		return flights, err
	}
	if err := RequireColumns(weather, "weather", ColOrigin, ColTimeHour); err != nil {
		return weather, err
	}

	delays := flights.Col(ColArrDelay)
	late := make([]string, delays.Len())
	for i := range late {
		v, ok := TryInt(delays.Elem(i))
		switch {
		case !ok:
			late[i] = na
		case v >= LateThreshold:
			late[i] = "1"
		default:
			late[i] = "0"
		}
	}

	hours := flights.Col(ColTimeHour)
	dates := make([]string, hours.Len())
	for i := range dates {
		e := hours.Elem(i)
		t, err := recipe.ParseTimestamp(e.String())
		if e.IsNA() || err != nil {
			dates[i] = na
			continue
		}
		dates[i] = t.Format(time.DateOnly)
	}

	labelled := flights.
		Mutate(series.New(late, series.Int, ColArrDelay)).
		Mutate(series.New(dates, series.String, ColDate))
	if labelled.Err != nil {
		return labelled, labelled.Err
	}

	rows := joinRows(flights, weather)
	joined := labelled.Subset(rows).Select(ModelInputColumns)
	if joined.Err != nil {
		return joined, fmt.Errorf("join weather: %w", joined.Err)
	}

	out := DropNA(joined)
	if out.Err != nil {
		return out, out.Err
	}

	n.logger.Info("Created model input table",
		"flights", flights.Nrow(), "joined", joined.Nrow(), "rows", out.Nrow())
	return out, nil
}

// joinRows returns the flight row indexes of an inner join with weather on
// origin and time_hour. A flight appears once per matching weather row.
func joinRows(flights, weather dataframe.DataFrame) []int {
	counts := make(map[string]int)
	wOrigin, wHour := weather.Col(ColOrigin), weather.Col(ColTimeHour)
	for i := 0; i < weather.Nrow(); i++ {
		if key, ok := joinKey(wOrigin.Elem(i), wHour.Elem(i)); ok {
			counts[key]++
		}
	}

	rows := make([]int, 0, flights.Nrow())
	fOrigin, fHour := flights.Col(ColOrigin), flights.Col(ColTimeHour)
	for i := 0; i < flights.Nrow(); i++ {
		key, ok := joinKey(fOrigin.Elem(i), fHour.Elem(i))
		if !ok {
			continue
		}
		for range counts[key] {
			rows = append(rows, i)
		}
	}
	return rows
}

// joinKey compares timestamps by instant so that differently formatted but
// equal times match. Missing values never match.
func joinKey(origin, hour series.Element) (string, bool) {
	if origin.IsNA() || hour.IsNA() {
		return "", false
	}
	ts := hour.String()
	if t, err := recipe.ParseTimestamp(ts); err == nil {
		ts = strconv.FormatInt(t.Unix(), 10)
	}
	return origin.String() + "\x00" + ts, true
}

// DropNA removes every row holding a missing value in any column.
func DropNA(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Err != nil {
		return df
	}
	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}
	for _, name := range df.Names() {
		for i, missing := range df.Col(name).IsNaN() {
			if missing {
				keep[i] = false
			}
		}
	}
	return df.Subset(keep)
}
