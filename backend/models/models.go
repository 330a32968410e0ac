package models

import (
	"time"

	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

// SimulationRequest describes an aggregate run over one or more measures
type SimulationRequest struct {
	NodeCount       int      `json:"nodeCount"`
	EdgeProbability float64  `json:"edgeProbability"`
	InfectionRate   float64  `json:"infectionRate"`
	Days            int      `json:"days"`
	Trials          int      `json:"trials"`
	Measures        []string `json:"measures,omitempty"` // defaults to every measure
	Seed            *uint64  `json:"seed,omitempty"`
	IncludeCounts   bool     `json:"includeCounts,omitempty"`
}

// TrialRequest describes a single traced trial
type TrialRequest struct {
	NodeCount       int     `json:"nodeCount"`
	EdgeProbability float64 `json:"edgeProbability"`
	InfectionRate   float64 `json:"infectionRate"`
	Days            int     `json:"days"`
	Measure         string  `json:"measure"`
	Seed            *uint64 `json:"seed,omitempty"`
}

// Job represents a simulation job
type Job struct {
	ID          string               `json:"id"`
	Request     SimulationRequest    `json:"request"`
	Status      JobStatus            `json:"status"`
	Progress    JobProgress          `json:"progress"`
	Results     []*montecarlo.Result `json:"results,omitempty"`
	RunIDs      []string             `json:"runIds,omitempty"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	StartedAt   *time.Time           `json:"startedAt,omitempty"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Done reports whether the job has reached a final state.
func (s JobStatus) Done() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type JobProgress struct {
	Percentage     int    `json:"percentage"`
	Message        string `json:"message"`
	CurrentMeasure string `json:"currentMeasure,omitempty"`
}

// MeasureInfo describes an importance measure
type MeasureInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// APIResponse is the envelope for every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse reports service status
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	ActiveJobs int       `json:"activeJobs"`
	Storage    bool      `json:"storage"`
}
