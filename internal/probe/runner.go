// Package probe drives a running service through its tuning API and
// verifies the behavior external clients rely on: seeded runs repeat
// exactly and the parallel mode matches the serial one.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mhusam/heartgrid/pkg/logger"
)

// Run executes the complete service probe.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting service probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("runs", config.Runs),
		logger.Int("seed", config.Seed),
		logger.Int("folds", config.Folds),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Inspect the dataset
	if err := checkDataset(ctx, config); err != nil {
		return fmt.Errorf("dataset check failed: %w", err)
	}

	// Step 3: Verify that repeated seeded runs are identical
	baseline, err := checkRepeatability(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("repeatability check failed: %w", err)
	}

	// Step 4: Verify that the parallel mode matches the serial one
	if err := checkParallelEquivalence(ctx, config, baseline, stats); err != nil {
		return fmt.Errorf("parallel equivalence check failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.ChecksFailed > 0 {
		return fmt.Errorf("%d of %d checks failed", stats.ChecksFailed, stats.ChecksPassed+stats.ChecksFailed)
	}
	logger.Get().Info(ctx, "probe completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// checkDataset fetches the dataset preview and sanity-checks its shape.
func checkDataset(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking dataset")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/dataset")
	if err != nil {
		return fmt.Errorf("failed to fetch dataset: %w", err)
	}

	var info datasetInfo
	if err := decodeJSON(resp, &info); err != nil {
		return err
	}
	if info.Rows == 0 || info.Features == 0 {
		return fmt.Errorf("dataset is empty: %d rows, %d features", info.Rows, info.Features)
	}
	if len(info.Classes) < 2 {
		return fmt.Errorf("dataset has %d classes, need at least 2", len(info.Classes))
	}

	logger.Get().Info(ctx, "dataset looks usable",
		logger.Int("rows", info.Rows),
		logger.Int("features", info.Features),
		logger.Int("classes", len(info.Classes)))
	return nil
}

// probeRequest builds the fixed request the probe submits.
func probeRequest(config *Config, parallelJobs int) runRequest {
	return runRequest{
		SplitPercent: 80,
		NEstimators:  intRange{Min: 10, Max: 30, Step: 10},
		MaxDepth:     intRange{Min: 5, Max: 7, Step: 2},
		MaxFeatures:  []string{"auto", "log2"},
		Criterion:    "gini",
		CVFolds:      config.Folds,
		Seed:         config.Seed,
		Bootstrap:    true,
		ParallelJobs: parallelJobs,
	}
}

// executeRun submits one run and returns its report.
func executeRun(ctx context.Context, config *Config, req runRequest, stats *Stats) (*runReport, error) {
	client := newHTTPClient(config.Timeout)

	start := time.Now()
	resp, err := client.Post(ctx, config.BaseURL+"/runs", req)
	if err != nil {
		stats.RunsFailed++
		return nil, fmt.Errorf("failed to submit run: %w", err)
	}

	var report runReport
	if err := decodeJSON(resp, &report); err != nil {
		stats.RunsFailed++
		return nil, err
	}

	stats.RunsExecuted++
	stats.RunLatencies = append(stats.RunLatencies, time.Since(start))

	if config.Verbose {
		logger.Get().Info(ctx, "run completed",
			logger.String("id", report.ID),
			logger.Float64("bestCVScore", report.BestCVScore),
			logger.Float64("testAccuracy", report.Evaluation.Accuracy),
			logger.Any("durationMS", report.DurationMS))
	}
	return &report, nil
}

// checkRepeatability submits the same seeded request several times and
// verifies every report matches the first one. Returns the baseline.
func checkRepeatability(ctx context.Context, config *Config, stats *Stats) (*runReport, error) {
	logger.Get().Info(ctx, "checking run repeatability", logger.Int("runs", config.Runs))

	req := probeRequest(config, 1)

	baseline, err := executeRun(ctx, config, req, stats)
	if err != nil {
		return nil, err
	}

	for i := 1; i < config.Runs; i++ {
		report, err := executeRun(ctx, config, req, stats)
		if err != nil {
			return nil, err
		}
		if err := compareReports(baseline, report); err != nil {
			stats.ChecksFailed++
			logger.Get().Error(ctx, "seeded run diverged from baseline",
				logger.Int("attempt", i+1),
				logger.Error(err))
			continue
		}
		stats.ChecksPassed++
	}

	logger.Get().Info(ctx, "repeatability check done",
		logger.Int("passed", stats.ChecksPassed),
		logger.Int("failed", stats.ChecksFailed))
	return baseline, nil
}

// checkParallelEquivalence verifies that parallel_jobs -1 produces the
// exact same score table as the serial baseline.
func checkParallelEquivalence(ctx context.Context, config *Config, baseline *runReport, stats *Stats) error {
	logger.Get().Info(ctx, "checking parallel equivalence")

	report, err := executeRun(ctx, config, probeRequest(config, -1), stats)
	if err != nil {
		return err
	}
	if err := compareReports(baseline, report); err != nil {
		stats.ChecksFailed++
		logger.Get().Error(ctx, "parallel run diverged from serial baseline", logger.Error(err))
		return nil
	}
	stats.ChecksPassed++
	logger.Get().Info(ctx, "parallel run matches serial baseline")
	return nil
}

// displayFinalStats prints the final probe statistics.
func displayFinalStats(stats *Stats) {
	var minLatency, maxLatency, total time.Duration
	for i, l := range stats.RunLatencies {
		if i == 0 || l < minLatency {
			minLatency = l
		}
		if l > maxLatency {
			maxLatency = l
		}
		total += l
	}
	var avgLatency time.Duration
	if len(stats.RunLatencies) > 0 {
		avgLatency = total / time.Duration(len(stats.RunLatencies))
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("runsExecuted", stats.RunsExecuted),
		logger.Int("runsFailed", stats.RunsFailed),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.String("minRunLatency", minLatency.String()),
		logger.String("avgRunLatency", avgLatency.String()),
		logger.String("maxRunLatency", maxLatency.String()),
		logger.String("duration", stats.Duration.String()))
}
