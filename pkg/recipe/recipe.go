// Package recipe holds the feature preprocessing steps applied before the
// classifier. A Recipe is fitted on training data once and then transforms
// any frame with the same columns the same way.
package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

var ErrNotFitted = errors.New("recipe is not fitted")

var nan = math.NaN()

// Step is one preprocessing operation. Fit learns whatever state the step
// needs from the training frame and its target; Transform applies it.
type Step interface {
	Kind() string
	Fit(df dataframe.DataFrame, y []float64) error
	Transform(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

type Recipe struct {
	steps  []Step
	fitted bool
}

func New(steps ...Step) *Recipe {
	return &Recipe{steps: steps}
}

func (r *Recipe) Steps() []Step {
	return r.steps
}

func (r *Recipe) Fitted() bool {
	return r.fitted
}

// Fit fits every step on the output of the steps before it.
func (r *Recipe) Fit(df dataframe.DataFrame, y []float64) error {
	_, err := r.FitTransform(df, y)
	return err
}

func (r *Recipe) FitTransform(df dataframe.DataFrame, y []float64) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	if len(y) != df.Nrow() {
		return df, fmt.Errorf("target has %d values for %d rows", len(y), df.Nrow())
	}

	var err error
	for _, step := range r.steps {
		if err := step.Fit(df, y); err != nil {
			return df, fmt.Errorf("fit %s: %w", step.Kind(), err)
		}
		df, err = transform(step, df)
		if err != nil {
			return df, err
		}
	}
	r.fitted = true
	return df, nil
}

func (r *Recipe) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !r.fitted {
		return df, ErrNotFitted
	}
	if df.Err != nil {
		return df, df.Err
	}

	var err error
	for _, step := range r.steps {
		df, err = transform(step, df)
		if err != nil {
			return df, err
		}
	}
	return df, nil
}

func transform(step Step, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	out, err := step.Transform(df)
	if err != nil {
		return out, fmt.Errorf("transform %s: %w", step.Kind(), err)
	}
	if out.Err != nil {
		return out, fmt.Errorf("transform %s: %w", step.Kind(), out.Err)
	}
	return out, nil
}

// Matrix converts the given columns of df to a dense float matrix. Every column
// must be numeric or boolean and free of missing values.
func Matrix(df dataframe.DataFrame, columns []string) (*mat.Dense, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	rows, cols := df.Nrow(), len(columns)
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("cannot build a %dx%d feature matrix", rows, cols)
	}

	data := make([]float64, rows*cols)
	for j, name := range columns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("column %q: %w", name, col.Err)
		}
		if !isNumeric(col.Type()) && col.Type() != series.Bool {
			return nil, fmt.Errorf("column %q has non numeric type %s", name, col.Type())
		}
		for i, v := range seriesFloats(col) {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("column %q has a missing value in row %d", name, i)
			}
			data[i*cols+j] = v
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

type stepJSON struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

type recipeJSON struct {
	Fitted bool       `json:"fitted"`
	Steps  []stepJSON `json:"steps"`
}

var stepKinds = map[string]func() Step{
	KindExpandDate:       func() Step { return &ExpandDate{} },
	KindDrop:             func() Step { return &Drop{} },
	KindTargetEncode:     func() Step { return &TargetEncode{} },
	KindDropZeroVariance: func() Step { return &DropZeroVariance{} },
	KindMutateAt:         func() Step { return &MutateAt{} },
	KindScaleStandard:    func() Step { return &ScaleStandard{} },
}

func (r *Recipe) MarshalJSON() ([]byte, error) {
	out := recipeJSON{Fitted: r.fitted, Steps: make([]stepJSON, len(r.steps))}
	for i, step := range r.steps {
		params, err := json.Marshal(step)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", step.Kind(), err)
		}
		out.Steps[i] = stepJSON{Kind: step.Kind(), Params: params}
	}
	return json.Marshal(out)
}

func (r *Recipe) UnmarshalJSON(data []byte) error {
	var in recipeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	steps := make([]Step, len(in.Steps))
	for i, s := range in.Steps {
		newStep, ok := stepKinds[s.Kind]
		if !ok {
			return fmt.Errorf("unknown recipe step %q", s.Kind)
		}
		step := newStep()
		if err := json.Unmarshal(s.Params, step); err != nil {
			return fmt.Errorf("decode %s: %w", s.Kind, err)
		}
		steps[i] = step
	}
	r.steps = steps
	r.fitted = in.Fitted
	return nil
}
