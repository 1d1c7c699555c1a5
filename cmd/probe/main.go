package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/mhusam/heartgrid/internal/probe"
)

// Default configuration constants.
const (
	defaultRuns         = 3
	defaultSeed         = 42
	defaultFolds        = 5
	defaultTimeout      = 5 * time.Minute
	defaultProbeTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		runs    = flag.Int("runs", defaultRuns, "Number of identical seeded runs to compare")
		seed    = flag.Int("seed", defaultSeed, "Seed used for the deterministic runs")
		folds   = flag.Int("folds", defaultFolds, "Cross-validation folds per run")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	// Setup logging
	if err := probe.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	// Create probe configuration
	config := &probe.Config{
		BaseURL: *baseURL,
		Runs:    *runs,
		Seed:    *seed,
		Folds:   *folds,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	// Run the probe
	if err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
