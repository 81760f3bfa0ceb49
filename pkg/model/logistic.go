// Package model fits and applies the delay classifier.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrNotFitted = errors.New("model is not fitted")

// Params configure training of a LogisticRegression.
type Params struct {
	LearningRate float64 `mapstructure:"learning_rate" json:"learning_rate"`
	Epochs       int     `mapstructure:"epochs" json:"epochs"`
	L2           float64 `mapstructure:"l2" json:"l2"`
	Tolerance    float64 `mapstructure:"tolerance" json:"tolerance"`
	Threshold    float64 `mapstructure:"threshold" json:"threshold"`
}

func DefaultParams() Params {
	return Params{
		LearningRate: 0.1,
		Epochs:       1000,
		L2:           1e-4,
		Tolerance:    1e-6,
		Threshold:    0.5,
	}
}

func (p Params) Validate() error {
	if p.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", p.LearningRate)
	}
	if p.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", p.Epochs)
	}
	if p.L2 < 0 {
		return fmt.Errorf("l2 penalty must not be negative, got %g", p.L2)
	}
	if p.Threshold <= 0 || p.Threshold >= 1 {
		return fmt.Errorf("threshold must lie in (0, 1), got %g", p.Threshold)
	}
	return nil
}

// LogisticRegression is a binary classifier trained with full batch gradient
// descent on the L2 penalised log loss.
type LogisticRegression struct {
	Params  Params    `json:"params"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	// Iterations is the number of epochs run before convergence.
	Iterations int `json:"iterations"`
}

func NewLogisticRegression(params Params) *LogisticRegression {
	return &LogisticRegression{Params: params}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Fit learns weights for X with labels y in {0, 1}.
func (m *LogisticRegression) Fit(X mat.Matrix, y []float64) error {
	if err := m.Params.Validate(); err != nil {
		return err
	}
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return fmt.Errorf("cannot fit on a %dx%d feature matrix", n, d)
	}
	if n != len(y) {
		return fmt.Errorf("feature matrix has %d rows for %d labels", n, len(y))
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d is %g, want 0 or 1", i, label)
		}
	}

	w := mat.NewVecDense(d, nil)
	labels := mat.NewVecDense(n, y)
	residual := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	bias := 0.0
	scale := 1 / float64(n)

	m.Iterations = 0
	for epoch := 0; epoch < m.Params.Epochs; epoch++ {
		residual.MulVec(X, w)
		for i := 0; i < n; i++ {
			residual.SetVec(i, sigmoid(residual.AtVec(i)+bias))
		}
		residual.SubVec(residual, labels)

		grad.MulVec(X.T(), residual)
		grad.ScaleVec(scale, grad)
		grad.AddScaledVec(grad, m.Params.L2, w)
		gradBias := floats.Sum(residual.RawVector().Data) * scale

		w.AddScaledVec(w, -m.Params.LearningRate, grad)
		bias -= m.Params.LearningRate * gradBias
		m.Iterations = epoch + 1

		if math.Max(floats.Norm(grad.RawVector().Data, math.Inf(1)), math.Abs(gradBias)) < m.Params.Tolerance {
			break
		}
	}

	m.Weights = make([]float64, d)
	copy(m.Weights, w.RawVector().Data)
	m.Bias = bias
	return nil
}

// PredictProba returns the probability of the positive class for each row.
func (m *LogisticRegression) PredictProba(X mat.Matrix) ([]float64, error) {
	if m.Weights == nil {
		return nil, ErrNotFitted
	}
	n, d := X.Dims()
	if d != len(m.Weights) {
		return nil, fmt.Errorf("feature matrix has %d columns, model expects %d", d, len(m.Weights))
	}
	if n == 0 {
		return []float64{}, nil
	}

	z := mat.NewVecDense(n, nil)
	z.MulVec(X, mat.NewVecDense(d, m.Weights))
	out := make([]float64, n)
	for i := range out {
		out[i] = sigmoid(z.AtVec(i) + m.Bias)
	}
	return out, nil
}

// Predict returns 1 for rows whose probability reaches the threshold.
func (m *LogisticRegression) Predict(X mat.Matrix) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= m.Params.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}
