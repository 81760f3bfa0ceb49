package model

import "fmt"

// ConfusionMatrix counts binary predictions against labels, 1 being positive.
type ConfusionMatrix struct {
	TruePositive  int `json:"true_positive"`
	FalsePositive int `json:"false_positive"`
	TrueNegative  int `json:"true_negative"`
	FalseNegative int `json:"false_negative"`
}

func NewConfusionMatrix(yTrue, yPred []float64) (ConfusionMatrix, error) {
	var cm ConfusionMatrix
	if len(yTrue) != len(yPred) {
		return cm, fmt.Errorf("got %d labels and %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return cm, fmt.Errorf("no labels to score")
	}
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			cm.TruePositive++
		case yTrue[i] == 0 && yPred[i] == 1:
			cm.FalsePositive++
		case yTrue[i] == 0 && yPred[i] == 0:
			cm.TrueNegative++
		case yTrue[i] == 1 && yPred[i] == 0:
			cm.FalseNegative++
		default:
			return cm, fmt.Errorf("row %d: label %g and prediction %g must be 0 or 1", i, yTrue[i], yPred[i])
		}
	}
	return cm, nil
}

func (cm ConfusionMatrix) Total() int {
	return cm.TruePositive + cm.FalsePositive + cm.TrueNegative + cm.FalseNegative
}

func (cm ConfusionMatrix) Accuracy() float64 {
	if cm.Total() == 0 {
		return 0
	}
	return float64(cm.TruePositive+cm.TrueNegative) / float64(cm.Total())
}

// PrecisionRecallF1 returns zero for ratios whose denominator is zero.
func (cm ConfusionMatrix) PrecisionRecallF1() (precision, recall, f1 float64) {
	if tp := cm.TruePositive + cm.FalsePositive; tp > 0 {
		precision = float64(cm.TruePositive) / float64(tp)
	}
	if p := cm.TruePositive + cm.FalseNegative; p > 0 {
		recall = float64(cm.TruePositive) / float64(p)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

func Accuracy(yTrue, yPred []float64) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return cm.Accuracy(), nil
}
