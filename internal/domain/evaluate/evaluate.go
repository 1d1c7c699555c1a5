// Package evaluate computes held-out classification metrics: accuracy,
// per-class precision/recall/F1 and the confusion matrix. Degenerate
// cases (a class missing from the test split, a class never predicted)
// produce zero metrics plus a warning instead of an error.
package evaluate

import (
	"fmt"
)

// ClassMetrics holds the per-class metric triple plus its support.
type ClassMetrics struct {
	Label     int     `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the immutable evaluation result for one run.
type Report struct {
	Accuracy float64        `json:"accuracy"`
	Classes  []ClassMetrics `json:"classes"`

	// Confusion counts actual (rows) by predicted (columns), both
	// ordered as ConfusionLabels.
	ConfusionLabels []int   `json:"confusion_labels"`
	Confusion       [][]int `json:"confusion"`

	Warnings []string `json:"warnings,omitempty"`
}

// Evaluate builds the report over the given class list. The class list
// comes from the full dataset, so classes absent from the test split
// still appear (with zero metrics and a warning).
func Evaluate(yTrue, yPred, classes []int) (*Report, error) {
	if len(yTrue) == 0 {
		return nil, ErrNoSamples
	}
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d labels vs %d predictions", ErrShapeMismatch, len(yTrue), len(yPred))
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: empty class list", ErrShapeMismatch)
	}

	idx := make(map[int]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}

	confusion := make([][]int, len(classes))
	for i := range confusion {
		confusion[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		ai, ok := idx[yTrue[i]]
		if !ok {
			return nil, fmt.Errorf("%w: label %d not in class list", ErrUnknownClass, yTrue[i])
		}
		pi, ok := idx[yPred[i]]
		if !ok {
			return nil, fmt.Errorf("%w: prediction %d not in class list", ErrUnknownClass, yPred[i])
		}
		confusion[ai][pi]++
	}

	rep := &Report{
		Accuracy:        Accuracy(yTrue, yPred),
		ConfusionLabels: append([]int(nil), classes...),
		Confusion:       confusion,
	}

	for i, label := range classes {
		tp := confusion[i][i]
		actual := 0    // row sum: how many test samples really are this class
		predicted := 0 // column sum: how many times the model said this class
		for j := range classes {
			actual += confusion[i][j]
			predicted += confusion[j][i]
		}

		cm := ClassMetrics{Label: label, Support: actual}
		switch {
		case actual == 0:
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("class %d is absent from the test split; precision, recall and F1 reported as 0", label))
		case predicted == 0:
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("class %d was never predicted; precision reported as 0", label))
		}
		if predicted > 0 {
			cm.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			cm.Recall = float64(tp) / float64(actual)
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		rep.Classes = append(rep.Classes, cm)
	}

	return rep, nil
}

// Accuracy is the share of matching labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}
