package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/api/middleware"
	"github.com/dvloznov/spendsense/internal/insights"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/ledger"
	"github.com/dvloznov/spendsense/internal/signals"
	"github.com/dvloznov/spendsense/internal/whatif"
)

// InsightsService is the subset of insights.Service the HTTP layer uses.
type InsightsService interface {
	Signals(ctx context.Context, userID string) (signals.Bundle, error)
	Persona(ctx context.Context, userID string) (*insights.PersonaReport, error)
	RunScenario(ctx context.Context, userID string, spec whatif.ScenarioSpec) (whatif.Result, error)
	Compare(ctx context.Context, userID string, a, b whatif.ScenarioSpec) (*whatif.ComparisonResult, error)
	ExportScenario(ctx context.Context, userID string, spec whatif.ScenarioSpec) (*insights.Export, error)
}

// ScenarioObserver counts simulated scenarios.
type ScenarioObserver interface {
	ObserveScenario(scenarioType string)
}

type noopObserver struct{}

func (noopObserver) ObserveScenario(string) {}

// InsightsHandler handles the per-user signal, persona and what-if endpoints.
type InsightsHandler struct {
	svc      InsightsService
	observer ScenarioObserver
	log      zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. observer may be nil.
func NewInsightsHandler(svc InsightsService, observer ScenarioObserver, log zerolog.Logger) *InsightsHandler {
	if observer == nil {
		observer = noopObserver{}
	}
	return &InsightsHandler{
		svc:      svc,
		observer: observer,
		log:      log,
	}
}

// GetSignals handles GET /api/users/{userID}/signals
func (h *InsightsHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	bundle, err := h.svc.Signals(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, userID, "Failed to detect signals")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, bundle)
}

// GetPersona handles GET /api/users/{userID}/persona
func (h *InsightsHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	report, err := h.svc.Persona(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, userID, "Failed to assign persona")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}

// RunScenario handles POST /api/users/{userID}/what-if
func (h *InsightsHandler) RunScenario(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var spec whatif.ScenarioSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if spec.Type == "" {
		middleware.WriteError(w, http.StatusBadRequest, "type is required")
		return
	}

	res, err := h.svc.RunScenario(r.Context(), userID, spec)
	if err != nil {
		h.writeServiceError(w, err, userID, "Failed to simulate scenario")
		return
	}
	h.observer.ObserveScenario(string(spec.Type))

	middleware.WriteJSON(w, http.StatusOK, res)
}

// CompareScenarios handles POST /api/users/{userID}/what-if/compare
func (h *InsightsHandler) CompareScenarios(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		ScenarioA *whatif.ScenarioSpec `json:"scenario_a"`
		ScenarioB *whatif.ScenarioSpec `json:"scenario_b"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ScenarioA == nil || req.ScenarioB == nil {
		middleware.WriteError(w, http.StatusBadRequest, "scenario_a and scenario_b are required")
		return
	}

	cmp, err := h.svc.Compare(r.Context(), userID, *req.ScenarioA, *req.ScenarioB)
	if err != nil {
		h.writeServiceError(w, err, userID, "Failed to compare scenarios")
		return
	}
	h.observer.ObserveScenario(string(whatif.ScenarioComparison))

	middleware.WriteJSON(w, http.StatusOK, cmp)
}

// ExportScenario handles POST /api/users/{userID}/what-if/export
func (h *InsightsHandler) ExportScenario(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var spec whatif.ScenarioSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exp, err := h.svc.ExportScenario(r.Context(), userID, spec)
	if err != nil {
		h.writeServiceError(w, err, userID, "Failed to export scenario")
		return
	}
	h.observer.ObserveScenario(string(spec.Type))

	middleware.WriteJSON(w, http.StatusOK, exp)
}

// writeServiceError maps domain errors to HTTP statuses. Unexpected errors
// are logged and reported with fallback as the message.
func (h *InsightsHandler) writeServiceError(w http.ResponseWriter, err error, userID, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("user_id", userID).Msg(fallback)
		middleware.WriteError(w, status, fallback)
		return
	}
	h.log.Debug().Err(err).Str("user_id", userID).Int("status", status).Msg("Request rejected")
	middleware.WriteError(w, status, err.Error())
}

// StatusFor returns the HTTP status for an error returned by the service.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, whatif.ErrNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, whatif.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidSnapshot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{jobID}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
