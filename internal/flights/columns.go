// Package flights turns the raw flights and weather tables into the model
// input table.
package flights

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
)

const (
	ColDepTime  = "dep_time"
	ColFlight   = "flight"
	ColOrigin   = "origin"
	ColDest     = "dest"
	ColAirTime  = "air_time"
	ColDistance = "distance"
	ColCarrier  = "carrier"
	ColDate     = "date"
	ColArrDelay = "arr_delay"
	ColTimeHour = "time_hour"
)

// ModelInputColumns are the columns of the model input table, in order.
var ModelInputColumns = []string{
	ColDepTime, ColFlight, ColOrigin, ColDest, ColAirTime,
	ColDistance, ColCarrier, ColDate, ColArrDelay, ColTimeHour,
}

// LateThreshold is the arrival delay in minutes from which a flight counts
// as late.
const LateThreshold = 30

// na is how gota spells a missing value when building a series from strings.
const na = "NaN"

// RequireColumns fails with core.ErrInvalidInput when df lacks any column.
func RequireColumns(df dataframe.DataFrame, table string, columns ...string) error {
	if df.Err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrInvalidInput, table, df.Err)
	}
	names := df.Names()
	var missing []string
	for _, col := range columns {
		if !slices.Contains(names, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing columns %s", core.ErrInvalidInput, table, strings.Join(missing, ", "))
	}
	return nil
}

// text renders an element the way it was written, without float padding.
func text(e series.Element) string {
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	}
	return e.String()
}

// TryInt converts an element to an integer. Missing values and values that
// are not whole numbers report false.
func TryInt(e series.Element) (int, bool) {
	if e.IsNA() {
		return 0, false
	}
	switch e.Type() {
	case series.Int:
		v, err := e.Int()
		return v, err == nil
	case series.Float:
		f := e.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	default:
		s := strings.TrimSpace(e.String())
		if v, err := strconv.Atoi(s); err == nil {
			return v, true
		}
		return 0, false
	}
}

// TryIntSeries is TryInt over a column.
func TryIntSeries(s series.Series) series.Series {
	values := make([]string, s.Len())
	for i := range values {
		if v, ok := TryInt(s.Elem(i)); ok {
			values[i] = strconv.Itoa(v)
		} else {
			values[i] = na
		}
	}
	return series.New(values, series.Int, s.Name)
}
