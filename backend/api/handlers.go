package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/immunization-sim/backend/models"
	"github.com/gilchrisn/immunization-sim/backend/service"
	"github.com/gilchrisn/immunization-sim/backend/utils"
	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
	"github.com/gilchrisn/immunization-sim/pkg/store"
)

// HistoryStore reads stored runs
type HistoryStore interface {
	Get(ctx context.Context, id string) (*store.RunRecord, error)
	List(ctx context.Context, measure string, limit int) ([]*store.RunRecord, error)
}

// Handlers contains HTTP request handlers
type Handlers struct {
	jobService   *service.JobService
	trialService *service.TrialService
	history      HistoryStore
}

// NewHandlers creates new API handlers. history may be nil.
func NewHandlers(jobService *service.JobService, trialService *service.TrialService, history HistoryStore) *Handlers {
	return &Handlers{
		jobService:   jobService,
		trialService: trialService,
		history:      history,
	}
}

// CreateSimulation queues an aggregate simulation job
func (h *Handlers) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req models.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.jobService.Submit(req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to submit simulation")
		status := http.StatusInternalServerError
		if errors.Is(err, epidemic.ErrInvalidConfiguration) {
			status = http.StatusBadRequest
		}
		utils.WriteErrorResponse(w, status, "Failed to submit simulation", err)
		return
	}

	utils.WriteStatusResponse(w, http.StatusAccepted, "Simulation queued", job)
}

// ListSimulations lists all jobs, newest first
func (h *Handlers) ListSimulations(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobService.List()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	utils.WriteSuccessResponse(w, "Simulations retrieved successfully", jobs)
}

// GetSimulation retrieves a job and its results
func (h *Handlers) GetSimulation(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.jobService.Get(jobID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Simulation not found", err)
		return
	}

	utils.WriteSuccessResponse(w, "Simulation retrieved successfully", job)
}

// CancelSimulation cancels a queued or running job
func (h *Handlers) CancelSimulation(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	if err := h.jobService.Cancel(jobID); err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Simulation not found", err)
		return
	}

	job, _ := h.jobService.Get(jobID)
	utils.WriteSuccessResponse(w, "Simulation cancelled", job)
}

// RunTrial runs a single traced trial synchronously
func (h *Handlers) RunTrial(w http.ResponseWriter, r *http.Request) {
	var req models.TrialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.trialService.Run(req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, epidemic.ErrInvalidConfiguration) {
			status = http.StatusBadRequest
		}
		utils.WriteErrorResponse(w, status, "Trial failed", err)
		return
	}

	utils.WriteSuccessResponse(w, "Trial completed", result)
}

// ListHistory lists stored runs, optionally filtered by measure
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		utils.WriteErrorResponse(w, http.StatusNotImplemented, "Result storage is not configured", nil)
		return
	}

	records, err := h.history.List(r.Context(), r.URL.Query().Get("measure"), utils.ExtractLimit(r, 20))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list history")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list history", err)
		return
	}

	utils.WriteSuccessResponse(w, "History retrieved successfully", records)
}

// GetHistoryRun retrieves one stored run
func (h *Handlers) GetHistoryRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		utils.WriteErrorResponse(w, http.StatusNotImplemented, "Result storage is not configured", nil)
		return
	}

	runID := mux.Vars(r)["runId"]
	record, err := h.history.Get(r.Context(), runID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		utils.WriteErrorResponse(w, status, "Run not found", err)
		return
	}

	utils.WriteSuccessResponse(w, "Run retrieved successfully", record)
}

// ListMeasures lists the available importance measures
func (h *Handlers) ListMeasures(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, "Measures retrieved successfully", h.trialService.Measures())
}

// HealthCheck reports service status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, "Service is healthy", models.HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now(),
		ActiveJobs: h.jobService.ActiveCount(),
		Storage:    h.history != nil,
	})
}
