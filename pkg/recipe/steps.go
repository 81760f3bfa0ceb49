package recipe

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	KindExpandDate       = "expand_date"
	KindDrop             = "drop"
	KindTargetEncode     = "target_encode"
	KindDropZeroVariance = "drop_zero_variance"
	KindMutateAt         = "mutate_at"
	KindScaleStandard    = "scale_standard"
)

var timestampLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseTimestamp accepts dates, "YYYY-MM-DD HH:MM:SS" and RFC 3339 values.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}

var dateComponents = map[string]func(time.Time) float64{
	// Monday is 0.
	"dow":   func(t time.Time) float64 { return float64((int(t.Weekday()) + 6) % 7) },
	"day":   func(t time.Time) float64 { return float64(t.Day()) },
	"month": func(t time.Time) float64 { return float64(t.Month()) },
	"year":  func(t time.Time) float64 { return float64(t.Year()) },
	"doy":   func(t time.Time) float64 { return float64(t.YearDay()) },
}

// ExpandDate adds one "<column>_<component>" feature per date component.
type ExpandDate struct {
	Select     Selector `json:"select"`
	Components []string `json:"components"`
	Columns    []string `json:"columns,omitempty"`
}

func (s *ExpandDate) Kind() string { return KindExpandDate }

func (s *ExpandDate) Fit(df dataframe.DataFrame, _ []float64) error {
	for _, c := range s.Components {
		if _, ok := dateComponents[c]; !ok {
			return fmt.Errorf("unknown date component %q", c)
		}
	}
	cols, err := s.Select.Resolve(df)
	if err != nil {
		return err
	}
	s.Columns = cols
	return nil
}

func (s *ExpandDate) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, col := range s.Columns {
		src := df.Col(col)
		if src.Err != nil {
			return df, fmt.Errorf("column %q: %w", col, src.Err)
		}

		dates := make([]time.Time, src.Len())
		missing := make([]bool, src.Len())
		for i := range dates {
			e := src.Elem(i)
			if e.IsNA() {
				missing[i] = true
				continue
			}
			t, err := ParseTimestamp(e.String())
			if err != nil {
				return df, fmt.Errorf("column %q row %d: %w", col, i, err)
			}
			dates[i] = t
		}

		for _, c := range s.Components {
			component := dateComponents[c]
			values := make([]float64, len(dates))
			for i, t := range dates {
				if missing[i] {
					values[i] = nan
					continue
				}
				values[i] = component(t)
			}
			df = df.Mutate(series.New(values, series.Float, col+"_"+c))
		}
	}
	return df, nil
}

type Drop struct {
	Select  Selector `json:"select"`
	Columns []string `json:"columns,omitempty"`
}

func (s *Drop) Kind() string { return KindDrop }

func (s *Drop) Fit(df dataframe.DataFrame, _ []float64) error {
	cols, err := s.Select.Resolve(df)
	if err != nil {
		return err
	}
	s.Columns = cols
	return nil
}

func (s *Drop) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if len(s.Columns) == 0 {
		return df, nil
	}
	return df.Drop(s.Columns), nil
}

// TargetEncode replaces each category by the smoothed mean target of the
// training rows in that category. Unseen and missing categories get the
// global mean.
type TargetEncode struct {
	Select    Selector                      `json:"select"`
	Smooth    float64                       `json:"smooth"`
	Columns   []string                      `json:"columns,omitempty"`
	Encodings map[string]map[string]float64 `json:"encodings,omitempty"`
	Global    float64                       `json:"global"`
}

func (s *TargetEncode) Kind() string { return KindTargetEncode }

func (s *TargetEncode) Fit(df dataframe.DataFrame, y []float64) error {
	if len(y) != df.Nrow() || len(y) == 0 {
		return fmt.Errorf("target has %d values for %d rows", len(y), df.Nrow())
	}
	cols, err := s.Select.Resolve(df)
	if err != nil {
		return err
	}

	s.Columns = cols
	s.Global = floats.Sum(y) / float64(len(y))
	s.Encodings = make(map[string]map[string]float64, len(cols))
	for _, col := range cols {
		src := df.Col(col)
		sums := make(map[string]float64)
		counts := make(map[string]float64)
		for i := 0; i < src.Len(); i++ {
			e := src.Elem(i)
			if e.IsNA() {
				continue
			}
			sums[e.String()] += y[i]
			counts[e.String()]++
		}

		enc := make(map[string]float64, len(sums))
		for k, sum := range sums {
			enc[k] = (sum + s.Smooth*s.Global) / (counts[k] + s.Smooth)
		}
		s.Encodings[col] = enc
	}
	return nil
}

func (s *TargetEncode) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, col := range s.Columns {
		src := df.Col(col)
		if src.Err != nil {
			return df, fmt.Errorf("column %q: %w", col, src.Err)
		}
		enc := s.Encodings[col]
		values := make([]float64, src.Len())
		for i := range values {
			values[i] = s.Global
			e := src.Elem(i)
			if e.IsNA() {
				continue
			}
			if v, ok := enc[e.String()]; ok {
				values[i] = v
			}
		}
		df = df.Mutate(series.New(values, series.Float, col))
	}
	return df, nil
}

// DropZeroVariance removes numeric columns whose variance does not exceed
// Tolerance and other columns holding a single distinct value.
type DropZeroVariance struct {
	Select    Selector `json:"select"`
	Tolerance float64  `json:"tolerance"`
	Dropped   []string `json:"dropped,omitempty"`
}

func (s *DropZeroVariance) Kind() string { return KindDropZeroVariance }

func (s *DropZeroVariance) Fit(df dataframe.DataFrame, _ []float64) error {
	cols, err := s.Select.Resolve(df)
	if err != nil {
		return err
	}

	s.Dropped = nil
	for _, col := range cols {
		src := df.Col(col)
		if isNumeric(src.Type()) || src.Type() == series.Bool {
			values := dropNaN(seriesFloats(src))
			if len(values) < 2 || stat.Variance(values, nil) <= s.Tolerance {
				s.Dropped = append(s.Dropped, col)
			}
			continue
		}

		var distinct []string
		for i := 0; i < src.Len() && len(distinct) < 2; i++ {
			e := src.Elem(i)
			if !e.IsNA() && !slices.Contains(distinct, e.String()) {
				distinct = append(distinct, e.String())
			}
		}
		if len(distinct) < 2 {
			s.Dropped = append(s.Dropped, col)
		}
	}
	if len(s.Dropped) == df.Ncol() {
		return fmt.Errorf("every column has zero variance")
	}
	return nil
}

func (s *DropZeroVariance) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if len(s.Dropped) == 0 {
		return df, nil
	}
	return df.Drop(s.Dropped), nil
}

const (
	MinuteOfDay  = "minute_of_day"
	EpochSeconds = "epoch_seconds"
)

var mutations = map[string]func(string) (float64, error){
	MinuteOfDay: func(s string) (float64, error) {
		for _, layout := range []string{time.TimeOnly, "15:04"} {
			if t, err := time.Parse(layout, s); err == nil {
				return float64(t.Hour()*60 + t.Minute()), nil
			}
		}
		return 0, fmt.Errorf("cannot parse %q as a time of day", s)
	},
	EpochSeconds: func(s string) (float64, error) {
		t, err := ParseTimestamp(s)
		if err != nil {
			return 0, err
		}
		return float64(t.Unix()), nil
	},
}

// MutateAt replaces Column with a numeric derivation of its values. A column
// already removed by an earlier step is skipped.
type MutateAt struct {
	Column  string `json:"column"`
	Func    string `json:"func"`
	Skipped bool   `json:"skipped,omitempty"`
}

func (s *MutateAt) Kind() string { return KindMutateAt }

func (s *MutateAt) Fit(df dataframe.DataFrame, _ []float64) error {
	if _, ok := mutations[s.Func]; !ok {
		return fmt.Errorf("unknown mutation %q", s.Func)
	}
	s.Skipped = !slices.Contains(df.Names(), s.Column)
	return nil
}

func (s *MutateAt) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if s.Skipped {
		return df, nil
	}
	fn, ok := mutations[s.Func]
	if !ok {
		return df, fmt.Errorf("unknown mutation %q", s.Func)
	}
	src := df.Col(s.Column)
	if src.Err != nil {
		return df, fmt.Errorf("column %q: %w", s.Column, src.Err)
	}

	values := make([]float64, src.Len())
	for i := range values {
		e := src.Elem(i)
		if e.IsNA() {
			values[i] = nan
			continue
		}
		v, err := fn(e.String())
		if err != nil {
			return df, fmt.Errorf("column %q row %d: %w", s.Column, i, err)
		}
		values[i] = v
	}
	return df.Mutate(series.New(values, series.Float, s.Column)), nil
}

// ScaleStandard centres columns on their training mean and divides by the
// training standard deviation. Constant columns are only centred.
type ScaleStandard struct {
	Select  Selector  `json:"select"`
	Columns []string  `json:"columns,omitempty"`
	Means   []float64 `json:"means,omitempty"`
	Stds    []float64 `json:"stds,omitempty"`
}

func (s *ScaleStandard) Kind() string { return KindScaleStandard }

func (s *ScaleStandard) Fit(df dataframe.DataFrame, _ []float64) error {
	cols, err := s.Select.Resolve(df)
	if err != nil {
		return err
	}

	s.Columns = cols
	s.Means = make([]float64, len(cols))
	s.Stds = make([]float64, len(cols))
	for i, col := range cols {
		values := dropNaN(seriesFloats(df.Col(col)))
		mean, std := 0.0, 1.0
		if len(values) > 0 {
			mean = stat.Mean(values, nil)
		}
		if len(values) > 1 {
			if sd := stat.StdDev(values, nil); sd > 0 && !math.IsNaN(sd) {
				std = sd
			}
		}
		s.Means[i], s.Stds[i] = mean, std
	}
	return nil
}

func (s *ScaleStandard) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for i, col := range s.Columns {
		src := df.Col(col)
		if src.Err != nil {
			return df, fmt.Errorf("column %q: %w", col, src.Err)
		}
		values := seriesFloats(src)
		for j, v := range values {
			values[j] = (v - s.Means[i]) / s.Stds[i]
		}
		df = df.Mutate(series.New(values, series.Float, col))
	}
	return df, nil
}
