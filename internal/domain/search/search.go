// Package search runs exhaustive cross-validated grid search for the
// Random Forest classifier. One call owns the whole model-selection
// pipeline: train/test split, standardization, k-fold evaluation of
// every grid point, best-combination selection and the final refit.
// The held-out test partition is part of the result, so evaluation
// never has to reach back into search internals.
package search

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/mhusam/heartgrid/internal/domain/evaluate"
	"github.com/mhusam/heartgrid/internal/domain/forest"
	"github.com/mhusam/heartgrid/internal/domain/grid"
	"github.com/mhusam/heartgrid/internal/domain/scale"
	"github.com/mhusam/heartgrid/internal/domain/split"
)

// Fold count bounds exposed by the dashboard.
const (
	MinFolds = 2
	MaxFolds = 10
)

// Params configures one search run. It is immutable once constructed.
type Params struct {
	Grid         grid.ParamGrid
	TrainPercent int   // share of rows in the training partition
	Folds        int   // cross-validation fold count
	Seed         int64 // drives the split, the folds and every tree
	Bootstrap    bool
	Criterion    string
	Jobs         int // 1 for serial evaluation, -1 for all cores
}

// ComboScore is one row of the per-combination score table.
type ComboScore struct {
	Params         grid.Combo `json:"params"`
	MeanCVAccuracy float64    `json:"mean_cv_accuracy"`
	FoldAccuracies []float64  `json:"fold_accuracies"`
}

// Result carries everything the evaluation and rendering steps need.
type Result struct {
	Best      *forest.Classifier
	BestCombo grid.Combo
	BestScore float64
	Table     []ComboScore

	// Held-out partition, already standardized with train statistics.
	XTest [][]float64
	YTest []int

	TrainRows int
	TestRows  int
	Folds     int
}

// Run executes the search over x and y with the given parameters.
// Results are deterministic for a fixed seed regardless of Jobs: every
// combination writes into its own slot of a pre-sized table, and all
// randomness is derived from the seed, never from scheduling.
func Run(ctx context.Context, x [][]float64, y []int, p Params) (*Result, error) {
	if err := p.Grid.Validate(); err != nil {
		return nil, err
	}
	if p.Folds < MinFolds || p.Folds > MaxFolds {
		return nil, fmt.Errorf("%w: fold count %d outside %d..%d", ErrBadParams, p.Folds, MinFolds, MaxFolds)
	}

	tt, err := split.TrainTestSplit(len(x), p.TrainPercent, p.Seed)
	if err != nil {
		return nil, err
	}
	if p.Folds > len(tt.Train) {
		return nil, fmt.Errorf("%w: %d folds exceed %d training samples", ErrBadParams, p.Folds, len(tt.Train))
	}

	xTrain := split.Gather(x, tt.Train)
	yTrain := split.GatherLabels(y, tt.Train)
	xTest := split.Gather(x, tt.Test)
	yTest := split.GatherLabels(y, tt.Test)

	// Scaling statistics come from the training partition only.
	scaler := scale.NewStandardScaler()
	if xTrain, err = scaler.FitTransform(xTrain); err != nil {
		return nil, err
	}
	if xTest, err = scaler.Transform(xTest); err != nil {
		return nil, err
	}

	// Fold assignment is fixed before any fitting so every combination
	// sees the exact same rotation.
	trainIdx := make([]int, len(xTrain))
	for i := range trainIdx {
		trainIdx[i] = i
	}
	folds, err := split.KFold(trainIdx, p.Folds, p.Seed)
	if err != nil {
		return nil, err
	}

	combos := p.Grid.Combos()
	table := make([]ComboScore, len(combos))
	errs := make([]error, len(combos))

	workers := p.Jobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(combos) {
		workers = len(combos)
	}
	// Nested parallelism stays bounded: trees fit concurrently only
	// when combinations are evaluated serially.
	forestJobs := 1
	if workers == 1 {
		forestJobs = p.Jobs
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					errs[i] = ctx.Err()
					continue
				}
				table[i], errs[i] = crossValidate(xTrain, yTrain, folds, combos[i], p, forestJobs)
			}
		}()
	}
	for i := range combos {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Highest mean score wins; strict comparison keeps ties on the
	// first combination in enumeration order.
	bestIdx := 0
	for i := 1; i < len(table); i++ {
		if table[i].MeanCVAccuracy > table[bestIdx].MeanCVAccuracy {
			bestIdx = i
		}
	}

	best := newClassifier(combos[bestIdx], p, p.Jobs)
	if err := best.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("refit best combination: %w", err)
	}

	return &Result{
		Best:      best,
		BestCombo: combos[bestIdx],
		BestScore: table[bestIdx].MeanCVAccuracy,
		Table:     table,
		XTest:     xTest,
		YTest:     yTest,
		TrainRows: len(xTrain),
		TestRows:  len(xTest),
		Folds:     p.Folds,
	}, nil
}

// crossValidate scores one combination across every fold rotation.
func crossValidate(x [][]float64, y []int, folds [][]int, combo grid.Combo, p Params, forestJobs int) (ComboScore, error) {
	scores := make([]float64, len(folds))
	for hold := range folds {
		fitIdx := split.Complement(folds, hold)

		clf := newClassifier(combo, p, forestJobs)
		if err := clf.Fit(split.Gather(x, fitIdx), split.GatherLabels(y, fitIdx)); err != nil {
			return ComboScore{}, fmt.Errorf("fold %d of %s: %w", hold, combo, err)
		}

		pred, err := clf.Predict(split.Gather(x, folds[hold]))
		if err != nil {
			return ComboScore{}, fmt.Errorf("fold %d of %s: %w", hold, combo, err)
		}
		scores[hold] = evaluate.Accuracy(split.GatherLabels(y, folds[hold]), pred)
	}

	return ComboScore{
		Params:         combo,
		MeanCVAccuracy: stat.Mean(scores, nil),
		FoldAccuracies: scores,
	}, nil
}

// newClassifier builds a forest for one grid point. Every fit uses the
// same run seed, mirroring a grid search that passes one random_state
// to each candidate estimator.
func newClassifier(combo grid.Combo, p Params, jobs int) *forest.Classifier {
	return forest.New(
		forest.WithNEstimators(combo.NEstimators),
		forest.WithMaxDepth(combo.MaxDepth),
		forest.WithMaxFeatures(combo.MaxFeatures),
		forest.WithCriterion(p.Criterion),
		forest.WithBootstrap(p.Bootstrap),
		forest.WithSeed(p.Seed),
		forest.WithJobs(jobs),
	)
}
