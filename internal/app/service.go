// Package app provides the core service that owns the dataset and runs
// the tuning pipeline for the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mhusam/heartgrid/internal/adapters/repository"
	"github.com/mhusam/heartgrid/internal/domain/dataset"
	"github.com/mhusam/heartgrid/internal/domain/evaluate"
	"github.com/mhusam/heartgrid/internal/domain/run"
	"github.com/mhusam/heartgrid/internal/domain/search"
	"github.com/mhusam/heartgrid/internal/domain/surface"
	"github.com/mhusam/heartgrid/pkg/logger"
	"github.com/mhusam/heartgrid/pkg/metrics"
)

// Service wires the dataset, the pipeline and the report history.
type Service struct {
	mu sync.RWMutex

	// Configuration
	dataPath      string
	targetColumn  string
	categorical   []string
	maxGridPoints int
	historySize   int

	// Components
	data    *dataset.Dataset
	history repository.Store

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath points the service at its dataset CSV.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithTargetColumn names the label column.
func WithTargetColumn(column string) Option {
	return func(s *Service) {
		if column != "" {
			s.targetColumn = column
		}
	}
}

// WithCategoricalColumns lists the columns to one-hot expand.
func WithCategoricalColumns(columns []string) Option {
	return func(s *Service) {
		s.categorical = columns
	}
}

// WithMaxGridPoints caps the grid size accepted per run.
func WithMaxGridPoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGridPoints = n
		}
	}
}

// WithHistorySize bounds the run report history.
func WithHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:      "dataset.csv",
		targetColumn:  "target",
		categorical:   []string{"sex", "cp", "fbs", "restecg", "exang", "slope", "ca", "thal"},
		maxGridPoints: 256,
		historySize:   20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset and initializes the report history. Dataset
// problems are fatal: the service refuses to start without usable data.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "loading dataset",
		logger.String("path", s.dataPath),
		logger.String("target", s.targetColumn),
	)

	data, err := dataset.Load(s.dataPath, s.targetColumn, s.categorical)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	s.data = data
	metrics.UpdateDatasetShape(data.NumRows(), data.NumFeatures())

	s.history = repository.NewMemoryStore(repository.WithCapacity(s.historySize))

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("rows", data.NumRows()),
		logger.Int("features", data.NumFeatures()),
		logger.Int("classes", len(data.Classes())),
	)
	return nil
}

// Stop releases service state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "service stopped")
}

// Run executes one complete build action: validate, expand the grid,
// search, evaluate, pivot the surface and store the report. Each run is
// independent; nothing from earlier runs influences the result.
func (s *Service) Run(ctx context.Context, req run.Request) (*run.Report, error) {
	s.mu.RLock()
	data, history, started := s.data, s.history, s.started
	maxGridPoints := s.maxGridPoints
	s.mu.RUnlock()

	if !started {
		return nil, ErrNotStarted
	}

	if err := req.Validate(); err != nil {
		metrics.RecordErrorByComponent("app", "bad_request")
		return nil, err
	}
	paramGrid, err := req.Grid()
	if err != nil {
		metrics.RecordErrorByComponent("app", "bad_grid")
		return nil, err
	}
	if paramGrid.Size() > maxGridPoints {
		metrics.RecordErrorByComponent("app", "grid_too_large")
		return nil, fmt.Errorf("%w: %d grid points exceed the limit of %d",
			run.ErrInvalidRequest, paramGrid.Size(), maxGridPoints)
	}

	start := time.Now()
	s.logger.Info(ctx, "starting build",
		logger.Int("gridPoints", paramGrid.Size()),
		logger.Int("folds", req.CVFolds),
		logger.Int("seed", req.Seed),
		logger.Bool("bootstrap", req.Bootstrap),
		logger.Int("jobs", req.ParallelJobs),
	)

	searchStart := time.Now()
	res, err := search.Run(ctx, data.X(), data.Y(), search.Params{
		Grid:         paramGrid,
		TrainPercent: req.SplitPercent,
		Folds:        req.CVFolds,
		Seed:         int64(req.Seed),
		Bootstrap:    req.Bootstrap,
		Criterion:    req.Criterion,
		Jobs:         req.ParallelJobs,
	})
	if err != nil {
		metrics.RecordRunError()
		metrics.RecordErrorByComponent("search", "run_failed")
		s.logger.Error(ctx, "grid search failed", logger.Error(err))
		return nil, err
	}
	metrics.RecordSearchDuration(float64(time.Since(searchStart).Milliseconds()))
	metrics.RecordCVEvaluations(paramGrid.Size() * req.CVFolds)

	pred, err := res.Best.Predict(res.XTest)
	if err != nil {
		metrics.RecordRunError()
		return nil, fmt.Errorf("predict held-out split: %w", err)
	}
	eval, err := evaluate.Evaluate(res.YTest, pred, data.Classes())
	if err != nil {
		metrics.RecordRunError()
		metrics.RecordErrorByComponent("evaluate", "report_failed")
		return nil, err
	}
	for _, warning := range eval.Warnings {
		s.logger.Warn(ctx, "degenerate metric", logger.String("warning", warning))
	}

	report := &run.Report{
		ID:          uuid.NewString(),
		CreatedAt:   start.UTC(),
		DurationMS:  time.Since(start).Milliseconds(),
		Request:     req,
		TrainRows:   res.TrainRows,
		TestRows:    res.TestRows,
		BestParams:  res.BestCombo,
		BestCVScore: res.BestScore,
		Summary:     run.Summarize(res.BestCombo, res.BestScore),
		Scores:      res.Table,
		Evaluation:  eval,
		Surface:     surface.Build(res.Table),
	}

	if err := history.Put(ctx, report); err != nil {
		// History is best effort; the caller still gets the report.
		s.logger.Warn(ctx, "failed to store report", logger.Error(err))
	}

	metrics.RecordRun(float64(report.DurationMS), paramGrid.Size())
	metrics.RecordTreesFitted(treesFitted(res, req.CVFolds))
	metrics.UpdateLastScores(report.BestCVScore, eval.Accuracy)

	s.logger.Info(ctx, "build finished",
		logger.String("id", report.ID),
		logger.String("best", report.BestParams.String()),
		logger.Float64("bestCVScore", report.BestCVScore),
		logger.Float64("testAccuracy", eval.Accuracy),
		logger.Duration("took", time.Since(start)),
	)
	return report, nil
}

// treesFitted counts every tree fitted during the run: one ensemble per
// grid point per fold, plus the final refit.
func treesFitted(res *search.Result, folds int) int {
	total := res.Best.NumTrees()
	for _, row := range res.Table {
		total += row.Params.NEstimators * folds
	}
	return total
}

// GetRun returns a stored report by id.
func (s *Service) GetRun(ctx context.Context, id string) (*run.Report, error) {
	s.mu.RLock()
	history, started := s.history, s.started
	s.mu.RUnlock()

	if !started {
		return nil, ErrNotStarted
	}
	return history.Get(ctx, id)
}

// ListRuns returns stored report summaries, newest first.
func (s *Service) ListRuns(ctx context.Context) ([]run.Summary, error) {
	s.mu.RLock()
	history, started := s.history, s.started
	s.mu.RUnlock()

	if !started {
		return nil, ErrNotStarted
	}
	return history.List(ctx), nil
}

// DatasetInfo describes the loaded dataset for the dashboard preview.
type DatasetInfo struct {
	Path         string     `json:"path"`
	TargetColumn string     `json:"target_column"`
	Rows         int        `json:"rows"`
	Features     int        `json:"features"`
	Classes      []int      `json:"classes"`
	Columns      []string   `json:"columns"`
	FeatureNames []string   `json:"feature_names"`
	Head         [][]string `json:"head"`
}

// Dataset returns the preview of the loaded dataset.
func (s *Service) Dataset(_ context.Context) (DatasetInfo, error) {
	s.mu.RLock()
	data, started := s.data, s.started
	s.mu.RUnlock()

	if !started {
		return DatasetInfo{}, ErrNotStarted
	}
	return DatasetInfo{
		Path:         s.dataPath,
		TargetColumn: data.TargetColumn(),
		Rows:         data.NumRows(),
		Features:     data.NumFeatures(),
		Classes:      data.Classes(),
		Columns:      data.RawColumns(),
		FeatureNames: data.FeatureNames(),
		Head:         data.Head(),
	}, nil
}

// Stats is a point-in-time snapshot of the service. The dataset and
// history fields stay zero until Start succeeds.
type Stats struct {
	Started         bool `json:"started"`
	MaxGridPoints   int  `json:"max_grid_points"`
	HistorySize     int  `json:"history_size"`
	DatasetRows     int  `json:"dataset_rows"`
	DatasetFeatures int  `json:"dataset_features"`
	ReportsStored   int  `json:"reports_stored"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:       s.started,
		MaxGridPoints: s.maxGridPoints,
		HistorySize:   s.historySize,
	}
	if s.started {
		stats.DatasetRows = s.data.NumRows()
		stats.DatasetFeatures = s.data.NumFeatures()
		stats.ReportsStored = s.history.Count(context.Background())
	}
	return stats
}
