// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mhusam/heartgrid/internal/adapters/repository"
	"github.com/mhusam/heartgrid/internal/app"
	"github.com/mhusam/heartgrid/internal/domain/grid"
	"github.com/mhusam/heartgrid/internal/domain/run"
	"github.com/mhusam/heartgrid/internal/domain/search"
	"github.com/mhusam/heartgrid/internal/domain/split"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Run executes a full tuning pipeline and returns the report.
	Run(ctx context.Context, req run.Request) (*run.Report, error)

	// Read operations expose stored reports and the dataset preview.
	GetRun(ctx context.Context, id string) (*run.Report, error)
	ListRuns(ctx context.Context) ([]run.Summary, error)
	Dataset(ctx context.Context) (app.DatasetInfo, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	runsHandler      *RunsHandler
	datasetHandler   *DatasetHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		runsHandler:      NewRunsHandler(deps),
		datasetHandler:   NewDatasetHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/dataset", MetricsMiddleware(s.datasetHandler.HandleGetDataset, "dataset"))
	mux.HandleFunc("/runs", MetricsMiddleware(s.runsHandler.HandleRuns, "runs"))
	mux.HandleFunc("/runs/", MetricsMiddleware(s.runsHandler.HandleGetRun, "run"))
	mux.HandleFunc("/", s.handleRoot)
}

// handleRoot redirects the bare root to the dashboard.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// configurationErrs describe what the user asked for, not what the
// service failed to do. They cover every stage that can still reject a
// request before fitting: request validation, grid expansion and search
// setup.
var configurationErrs = []error{
	run.ErrInvalidRequest,
	grid.ErrInvalidRange,
	grid.ErrEmptyDimension,
	grid.ErrUnknownValue,
	search.ErrBadParams,
	split.ErrBadRatio,
	split.ErrBadFoldCount,
	split.ErrTooFewRows,
}

func isConfigurationError(err error) bool {
	for _, sentinel := range configurationErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// writeDomainError maps domain sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case isConfigurationError(err):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
