// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mhusam/heartgrid/internal/domain/run"
)

// RunDependencies defines the interface for run operations.
type RunDependencies interface {
	Run(ctx context.Context, req run.Request) (*run.Report, error)
	GetRun(ctx context.Context, id string) (*run.Report, error)
	ListRuns(ctx context.Context) ([]run.Summary, error)
}

// RunsHandler handles run requests.
type RunsHandler struct {
	deps RunDependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunDependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleRuns dispatches POST /runs and GET /runs requests.
func (h *RunsHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePostRun(w, r)
	case http.MethodGet:
		h.handleListRuns(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handlePostRun executes a complete tuning run synchronously and returns
// the full report. Omitted request fields fall back to their defaults.
func (h *RunsHandler) handlePostRun(w http.ResponseWriter, r *http.Request) {
	req := run.Defaults()
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
	}
	report, err := h.deps.Run(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleListRuns returns stored run summaries, newest first.
func (h *RunsHandler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.deps.ListRuns(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleGetRun handles GET /runs/{id} requests.
func (h *RunsHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /runs/
	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	report, err := h.deps.GetRun(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
