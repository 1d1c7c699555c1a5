package probe

import (
	"fmt"
	"math"
)

// scoreTolerance allows for float formatting differences on the wire.
const scoreTolerance = 1e-12

// compareReports checks that two reports describe the same model search:
// same best score, same summary line and an identical score table.
func compareReports(a, b *runReport) error {
	if math.Abs(a.BestCVScore-b.BestCVScore) > scoreTolerance {
		return fmt.Errorf("best CV score differs: %v vs %v", a.BestCVScore, b.BestCVScore)
	}
	if a.Summary != b.Summary {
		return fmt.Errorf("summary differs: %q vs %q", a.Summary, b.Summary)
	}
	if math.Abs(a.Evaluation.Accuracy-b.Evaluation.Accuracy) > scoreTolerance {
		return fmt.Errorf("test accuracy differs: %v vs %v", a.Evaluation.Accuracy, b.Evaluation.Accuracy)
	}
	return compareScoreTables(a.Scores, b.Scores)
}

// compareScoreTables checks the full grid row by row, in order.
func compareScoreTables(a, b []comboScore) error {
	if len(a) != len(b) {
		return fmt.Errorf("score table length differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Params != b[i].Params {
			return fmt.Errorf("row %d params differ: %+v vs %+v", i, a[i].Params, b[i].Params)
		}
		if math.Abs(a[i].MeanCVAccuracy-b[i].MeanCVAccuracy) > scoreTolerance {
			return fmt.Errorf("row %d mean CV accuracy differs: %v vs %v", i, a[i].MeanCVAccuracy, b[i].MeanCVAccuracy)
		}
		if len(a[i].FoldAccuracies) != len(b[i].FoldAccuracies) {
			return fmt.Errorf("row %d fold count differs: %d vs %d", i, len(a[i].FoldAccuracies), len(b[i].FoldAccuracies))
		}
		for j := range a[i].FoldAccuracies {
			if math.Abs(a[i].FoldAccuracies[j]-b[i].FoldAccuracies[j]) > scoreTolerance {
				return fmt.Errorf("row %d fold %d accuracy differs: %v vs %v",
					i, j, a[i].FoldAccuracies[j], b[i].FoldAccuracies[j])
			}
		}
	}
	return nil
}
