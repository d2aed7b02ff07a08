/*
handlers.go - HTTP API handlers for the commission report server

PURPOSE:
  Exposes reconciliation runs and period reports via REST. Handles HTTP
  request/response and JSON serialization, and delegates to the domain
  packages (store for persistence, rank for aggregation, reconcile for
  triggering new runs).

ENDPOINTS:
  Runs:
    GET  /api/runs                       List reconciliation runs
    GET  /api/runs/{id}                  Run metadata
    POST /api/reconcile                  Parse, normalize, persist a new run

  Reports (computed over the latest run touching the period):
    GET  /api/reports/{period}/top       Leaderboard (?n=10)
    GET  /api/reports/{period}/summary   Period summary
    GET  /api/reports/{period}/carriers  Per-carrier statistics

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad n, bad period)
  - 404: No run for the period / unknown run id
  - 500: Internal errors

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/commission-engine/canonical"
	"github.com/warp/commission-engine/rank"
	"github.com/warp/commission-engine/reconcile"
	"github.com/warp/commission-engine/store/sqlite"
)

// periodPattern is the YYYY-MM reporting period shape.
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Runner *reconcile.Runner
}

// NewHandler creates a new handler over a store and runner.
func NewHandler(store *sqlite.Store, runner *reconcile.Runner) *Handler {
	return &Handler{Store: store, Runner: runner}
}

// =============================================================================
// RUN ENDPOINTS
// =============================================================================

// ListRuns returns all reconciliation runs, newest first.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTOs(runs))
}

// GetRun returns one run's metadata.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, canonical.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get run", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(run))
}

// Reconcile triggers a new reconciliation run over the configured sources.
// POST /api/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	run, _, err := h.Runner.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reconciliation failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// TopPerformers returns the period leaderboard.
// GET /api/reports/{period}/top?n=10
func (h *Handler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	period, valid := h.period(w, r)
	if !valid {
		return
	}

	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer", err)
			return
		}
		n = parsed
	}

	records, found := h.loadPeriod(w, r, period)
	if !found {
		return
	}
	entries := rank.New(records).TopPerformers(n, period)
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// Summary returns the period summary.
// GET /api/reports/{period}/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	period, valid := h.period(w, r)
	if !valid {
		return
	}
	records, found := h.loadPeriod(w, r, period)
	if !found {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(rank.New(records).PeriodSummary(period)))
}

// CarrierStatistics returns per-carrier aggregates for the period.
// GET /api/reports/{period}/carriers
func (h *Handler) CarrierStatistics(w http.ResponseWriter, r *http.Request) {
	period, valid := h.period(w, r)
	if !valid {
		return
	}
	records, found := h.loadPeriod(w, r, period)
	if !found {
		return
	}
	writeJSON(w, http.StatusOK, toCarrierStatsDTOs(rank.New(records).CarrierStatistics(period)))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (string, bool) {
	period := chi.URLParam(r, "period")
	if !periodPattern.MatchString(period) {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", nil)
		return "", false
	}
	return period, true
}

func (h *Handler) loadPeriod(w http.ResponseWriter, r *http.Request, period string) ([]canonical.Record, bool) {
	records, err := h.Store.LoadRecordsByPeriod(r.Context(), period)
	if errors.Is(err, canonical.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "No reconciliation run for period", nil)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return nil, false
	}
	return records, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
