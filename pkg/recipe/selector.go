package recipe

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	SelectAll     = "all"
	SelectNominal = "nominal"
	SelectNumeric = "numeric"
)

// Selector picks the columns a step applies to, either by name or by kind.
type Selector struct {
	Columns []string `json:"columns,omitempty"`
	Kind    string   `json:"kind,omitempty"`
}

func Cols(names ...string) Selector { return Selector{Columns: names} }
func All() Selector                 { return Selector{Kind: SelectAll} }
func Nominal() Selector             { return Selector{Kind: SelectNominal} }
func Numeric() Selector             { return Selector{Kind: SelectNumeric} }

// Resolve returns the matching column names in frame order. Named columns
// must all exist.
func (s Selector) Resolve(df dataframe.DataFrame) ([]string, error) {
	names := df.Names()
	if len(s.Columns) > 0 {
		for _, col := range s.Columns {
			if !slices.Contains(names, col) {
				return nil, fmt.Errorf("column %q not found", col)
			}
		}
		return slices.Clone(s.Columns), nil
	}

	types := df.Types()
	var out []string
	for i, name := range names {
		switch s.Kind {
		case SelectAll:
			out = append(out, name)
		case SelectNominal:
			if types[i] == series.String {
				out = append(out, name)
			}
		case SelectNumeric:
			if isNumeric(types[i]) {
				out = append(out, name)
			}
		default:
			return nil, fmt.Errorf("unknown selector kind %q", s.Kind)
		}
	}
	return out, nil
}

func isNumeric(t series.Type) bool {
	return t == series.Int || t == series.Float
}

// seriesFloats returns the column as float64 values with NaN for missing entries.
func seriesFloats(s series.Series) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = nan
			continue
		}
		out[i] = e.Float()
	}
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
