package probe

import "time"

// Config holds configuration for the service probe.
type Config struct {
	BaseURL string        // Base URL of the service
	Runs    int           // Number of identical seeded runs to compare
	Seed    int           // Seed used for the deterministic runs
	Folds   int           // Cross-validation folds per run
	Timeout time.Duration // HTTP request timeout
	LogFile string        // Log file for probe output
	Verbose bool          // Enable verbose logging
}

// intRange mirrors the wire shape of a grid range.
type intRange struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

// runRequest mirrors the wire shape of POST /runs.
type runRequest struct {
	SplitPercent int      `json:"split_percent"`
	NEstimators  intRange `json:"n_estimators"`
	MaxDepth     intRange `json:"max_depth"`
	MaxFeatures  []string `json:"max_features"`
	Criterion    string   `json:"criterion"`
	CVFolds      int      `json:"cv_folds"`
	Seed         int      `json:"seed"`
	Bootstrap    bool     `json:"bootstrap"`
	ParallelJobs int      `json:"parallel_jobs"`
}

// comboScore mirrors one row of the report's score table.
type comboScore struct {
	Params struct {
		NEstimators int    `json:"n_estimators"`
		MaxDepth    int    `json:"max_depth"`
		MaxFeatures string `json:"max_features"`
	} `json:"params"`
	MeanCVAccuracy float64   `json:"mean_cv_accuracy"`
	FoldAccuracies []float64 `json:"fold_accuracies"`
}

// runReport mirrors the subset of the report the probe verifies.
type runReport struct {
	ID          string       `json:"id"`
	DurationMS  int64        `json:"duration_ms"`
	BestCVScore float64      `json:"best_cv_score"`
	Summary     string       `json:"summary"`
	Scores      []comboScore `json:"scores"`
	Evaluation  struct {
		Accuracy float64 `json:"accuracy"`
	} `json:"evaluation"`
}

// datasetInfo mirrors the wire shape of GET /dataset.
type datasetInfo struct {
	Rows     int   `json:"rows"`
	Features int   `json:"features"`
	Classes  []int `json:"classes"`
}

// errorBody mirrors the error envelope of the API.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds probe statistics.
type Stats struct {
	RunsExecuted int
	RunsFailed   int
	ChecksPassed int
	ChecksFailed int
	RunLatencies []time.Duration
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
