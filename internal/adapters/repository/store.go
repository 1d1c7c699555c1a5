// Package repository keeps completed run reports in a bounded in-memory
// history so the dashboard can re-fetch reports it already triggered.
// The store never feeds the pipeline; every build is computed fresh.
package repository

import (
	"context"

	"github.com/mhusam/heartgrid/internal/domain/run"
)

// Store provides access to the run report history.
type Store interface {
	// Put records a finished report, evicting the oldest beyond capacity.
	Put(ctx context.Context, report *run.Report) error

	// Get returns a report by id. Returns ErrNotFound when unknown or
	// already evicted.
	Get(ctx context.Context, id string) (*run.Report, error)

	// List returns summaries of stored reports, newest first.
	List(ctx context.Context) []run.Summary

	// Count returns the number of stored reports.
	Count(ctx context.Context) int
}
