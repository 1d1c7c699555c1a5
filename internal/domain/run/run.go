// Package run defines the per-run request and report types shared by
// the service, the HTTP layer and the report store. A Request is the
// explicit, immutable configuration object for one build action; a
// Report is the immutable outcome.
package run

import (
	"fmt"
	"time"

	"github.com/mhusam/heartgrid/internal/domain/evaluate"
	"github.com/mhusam/heartgrid/internal/domain/grid"
	"github.com/mhusam/heartgrid/internal/domain/search"
	"github.com/mhusam/heartgrid/internal/domain/surface"
)

// Bounds for user-adjustable knobs, mirrored by the dashboard controls.
const (
	MinSplitPercent = 50
	MaxSplitPercent = 90
	MinSeed         = 0
	MaxSeed         = 1000
)

// IntRange is a user-specified inclusive numeric range.
type IntRange struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

// Request is the full configuration of one build action.
type Request struct {
	SplitPercent int      `json:"split_percent"`
	NEstimators  IntRange `json:"n_estimators"`
	MaxDepth     IntRange `json:"max_depth"`
	MaxFeatures  []string `json:"max_features"`
	Criterion    string   `json:"criterion"`
	CVFolds      int      `json:"cv_folds"`
	Seed         int      `json:"seed"`
	Bootstrap    bool     `json:"bootstrap"`
	ParallelJobs int      `json:"parallel_jobs"`
}

// Defaults returns the request the dashboard starts from.
func Defaults() Request {
	return Request{
		SplitPercent: 80,
		NEstimators:  IntRange{Min: 10, Max: 50, Step: 10},
		MaxDepth:     IntRange{Min: 5, Max: 8, Step: 2},
		MaxFeatures:  []string{grid.MaxFeaturesAuto},
		Criterion:    grid.CriterionGini,
		CVFolds:      5,
		Seed:         42,
		Bootstrap:    true,
		ParallelJobs: 1,
	}
}

// Validate rejects configuration errors before any computation starts.
func (r Request) Validate() error {
	if r.SplitPercent < MinSplitPercent || r.SplitPercent > MaxSplitPercent {
		return fmt.Errorf("%w: split_percent %d outside %d..%d", ErrInvalidRequest, r.SplitPercent, MinSplitPercent, MaxSplitPercent)
	}
	if r.CVFolds < search.MinFolds || r.CVFolds > search.MaxFolds {
		return fmt.Errorf("%w: cv_folds %d outside %d..%d", ErrInvalidRequest, r.CVFolds, search.MinFolds, search.MaxFolds)
	}
	if r.Seed < MinSeed || r.Seed > MaxSeed {
		return fmt.Errorf("%w: seed %d outside %d..%d", ErrInvalidRequest, r.Seed, MinSeed, MaxSeed)
	}
	switch r.Criterion {
	case grid.CriterionGini, grid.CriterionEntropy:
	default:
		return fmt.Errorf("%w: criterion %q is not gini or entropy", ErrInvalidRequest, r.Criterion)
	}
	if r.ParallelJobs != 1 && r.ParallelJobs != -1 {
		return fmt.Errorf("%w: parallel_jobs %d must be 1 or -1", ErrInvalidRequest, r.ParallelJobs)
	}
	if len(r.MaxFeatures) == 0 {
		return fmt.Errorf("%w: no candidate values for parameter max_features", ErrInvalidRequest)
	}
	return nil
}

// Grid expands the request's ranges into the hyperparameter grid.
func (r Request) Grid() (grid.ParamGrid, error) {
	return grid.Build(
		grid.Range[int]{Min: r.NEstimators.Min, Max: r.NEstimators.Max, Step: r.NEstimators.Step},
		grid.Range[int]{Min: r.MaxDepth.Min, Max: r.MaxDepth.Max, Step: r.MaxDepth.Step},
		r.MaxFeatures,
	)
}

// Report is the immutable result of one build action.
type Report struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	DurationMS int64     `json:"duration_ms"`

	Request Request `json:"request"`

	TrainRows int `json:"train_rows"`
	TestRows  int `json:"test_rows"`

	BestParams  grid.Combo `json:"best_params"`
	BestCVScore float64    `json:"best_cv_score"`
	Summary     string     `json:"summary"`

	Scores     []search.ComboScore `json:"scores"`
	Evaluation *evaluate.Report    `json:"evaluation"`
	Surface    surface.Surface     `json:"surface"`
}

// Summarize renders the headline line the dashboard shows for a run.
func Summarize(best grid.Combo, score float64) string {
	return fmt.Sprintf("The best parameters are %s with a score of %.2f", best, score)
}

// Summary is the compact listing shape for the run history sidebar.
type Summary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	BestCVScore  float64   `json:"best_cv_score"`
	TestAccuracy float64   `json:"test_accuracy"`
	BestParams   string    `json:"best_params"`
}

// Summarized converts a report to its listing shape.
func (r *Report) Summarized() Summary {
	s := Summary{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		BestCVScore: r.BestCVScore,
		BestParams:  r.BestParams.String(),
	}
	if r.Evaluation != nil {
		s.TestAccuracy = r.Evaluation.Accuracy
	}
	return s
}
