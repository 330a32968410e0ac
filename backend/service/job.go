package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/immunization-sim/backend/config"
	"github.com/gilchrisn/immunization-sim/backend/models"
	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// ResultStore persists finished aggregate runs
type ResultStore interface {
	SaveResult(ctx context.Context, r *montecarlo.Result) (string, error)
}

// JobService handles background simulation jobs
type JobService struct {
	jobs     map[string]*models.Job
	cancels  map[string]context.CancelFunc
	workers  chan struct{}
	registry *centrality.Registry
	store    ResultStore
	cfg      config.JobConfig
	mutex    sync.RWMutex
	stop     chan struct{}
	stopOnce sync.Once
}

// NewJobService creates a new job service. store may be nil.
func NewJobService(cfg config.JobConfig, registry *centrality.Registry, store ResultStore) *JobService {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.TrialWorkers < 1 {
		cfg.TrialWorkers = 1
	}

	service := &JobService{
		jobs:     make(map[string]*models.Job),
		cancels:  make(map[string]context.CancelFunc),
		workers:  make(chan struct{}, cfg.MaxWorkers),
		registry: registry,
		store:    store,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go service.cleanupLoop()
	}

	return service
}

// Close stops the cleanup loop and cancels every unfinished job.
func (s *JobService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, cancel := range s.cancels {
		cancel()
	}
}

// ValidateRequest checks a simulation request before it is queued.
func (s *JobService) ValidateRequest(req models.SimulationRequest) error {
	if req.Trials < 2 {
		return fmt.Errorf("%w: trial count must be at least 2, got %d", epidemic.ErrInvalidConfiguration, req.Trials)
	}
	if s.cfg.MaxTrials > 0 && req.Trials > s.cfg.MaxTrials {
		return fmt.Errorf("%w: trial count %d exceeds limit %d", epidemic.ErrInvalidConfiguration, req.Trials, s.cfg.MaxTrials)
	}
	if err := checkNodeLimit(req.NodeCount, s.cfg.MaxNodes); err != nil {
		return err
	}
	for _, m := range s.measures(req) {
		if err := paramsFor(req, m).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Submit creates and queues a new simulation job
func (s *JobService) Submit(req models.SimulationRequest) (*models.Job, error) {
	if err := s.ValidateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if len(req.Measures) == 0 {
		for _, name := range s.registry.List() {
			req.Measures = append(req.Measures, string(name))
		}
	}
	for _, name := range req.Measures {
		if !s.registry.Known(name) {
			log.Warn().Str("measure", name).Msg("Unknown measure, using random baseline")
		}
	}
	if req.Seed == nil {
		seed := uint64(time.Now().UnixNano())
		req.Seed = &seed
	}

	now := time.Now()
	job := &models.Job{
		ID:      uuid.New().String(),
		Request: req,
		Status:  models.JobStatusQueued,
		Progress: models.JobProgress{
			Percentage: 0,
			Message:    "Queued",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.JobTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	s.mutex.Lock()
	s.jobs[job.ID] = job
	s.cancels[job.ID] = cancel
	queued := s.snapshot(job)
	s.mutex.Unlock()

	log.Info().
		Str("job_id", job.ID).
		Strs("measures", req.Measures).
		Int("trials", req.Trials).
		Msg("Job submitted")

	go s.processJob(ctx, job.ID)

	return queued, nil
}

// Get retrieves a snapshot of a job by ID
func (s *JobService) Get(jobID string) (*models.Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	return s.snapshot(job), nil
}

// List returns snapshots of every job
func (s *JobService) List() []*models.Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, s.snapshot(job))
	}
	return jobs
}

// ActiveCount returns the number of queued or running jobs
func (s *JobService) ActiveCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	active := 0
	for _, job := range s.jobs {
		if !job.Status.Done() {
			active++
		}
	}
	return active
}

// Cancel cancels a queued or running job
func (s *JobService) Cancel(jobID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if !job.Status.Done() {
		job.Status = models.JobStatusCancelled
		job.Progress.Message = "Cancelled"
		now := time.Now()
		job.CompletedAt = &now
		job.UpdatedAt = now

		if cancel, ok := s.cancels[jobID]; ok {
			cancel()
		}

		log.Info().
			Str("job_id", jobID).
			Msg("Job cancelled")
	}

	return nil
}

// processJob processes a job in the background
func (s *JobService) processJob(ctx context.Context, jobID string) {
	defer s.releaseCancel(jobID)

	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		s.failJob(jobID, ctx.Err())
		return
	}

	s.mutex.RLock()
	job, exists := s.jobs[jobID]
	var req models.SimulationRequest
	if exists {
		req = job.Request
	}
	s.mutex.RUnlock()

	if !exists {
		log.Error().Str("job_id", jobID).Msg("Job not found during processing")
		return
	}

	startTime := time.Now()
	if !s.updateJobStatus(jobID, models.JobStatusRunning, 0, "Starting...", "", &startTime) {
		return
	}

	logger := log.With().Str("job_id", jobID).Logger()
	measures := s.measures(req)
	totalTrials := req.Trials * len(measures)
	interval := req.Trials / 100
	if interval < 1 {
		interval = 1
	}

	results := make([]*montecarlo.Result, 0, len(measures))
	var runIDs []string

	for i, m := range measures {
		offset := i * req.Trials
		opts := montecarlo.Options{
			Trials:           req.Trials,
			Workers:          s.cfg.TrialWorkers,
			Seed:             *req.Seed,
			ProgressInterval: interval,
			Progress: func(measure centrality.MeasureName, completed, total int) {
				percentage := (offset + completed) * 100 / totalTrials
				s.updateJobStatus(jobID, models.JobStatusRunning, percentage,
					fmt.Sprintf("%s: %d/%d trials", measure, completed, total), string(measure), nil)
			},
		}

		result, err := montecarlo.NewAggregator(opts, logger).Run(ctx, paramsFor(req, m))
		if err != nil {
			s.failJob(jobID, fmt.Errorf("simulation failed: %w", err))
			return
		}

		if s.store != nil {
			id, err := s.store.SaveResult(ctx, result)
			if err != nil {
				logger.Error().Err(err).Str("measure", string(result.Measure)).Msg("Failed to persist result")
			} else {
				runIDs = append(runIDs, id)
			}
		}

		if !req.IncludeCounts {
			result.Counts = nil
		}
		results = append(results, result)
	}

	s.completeJob(jobID, results, runIDs)
}

func (s *JobService) measures(req models.SimulationRequest) []centrality.Measure {
	names := req.Measures
	if len(names) == 0 {
		for _, name := range s.registry.List() {
			names = append(names, string(name))
		}
	}

	measures := make([]centrality.Measure, len(names))
	for i, name := range names {
		measures[i] = s.registry.Lookup(name)
	}
	return measures
}

// checkNodeLimit bounds the network size; measures allocate O(n²) memory.
func checkNodeLimit(nodeCount, maxNodes int) error {
	if maxNodes > 0 && nodeCount > maxNodes {
		return fmt.Errorf("%w: node count %d exceeds limit %d", epidemic.ErrInvalidConfiguration, nodeCount, maxNodes)
	}
	return nil
}

func paramsFor(req models.SimulationRequest, m centrality.Measure) epidemic.Params {
	return epidemic.Params{
		NodeCount:       req.NodeCount,
		EdgeProbability: req.EdgeProbability,
		InfectionRate:   req.InfectionRate,
		Days:            req.Days,
		Measure:         m,
	}
}

// updateJobStatus updates job progress. It returns false once the job has
// reached a final state, so late progress never resurrects a cancelled job.
func (s *JobService) updateJobStatus(jobID string, status models.JobStatus, percentage int, message, measure string, startTime *time.Time) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status.Done() {
		return false
	}

	job.Status = status
	job.Progress.Percentage = percentage
	job.Progress.Message = message
	job.Progress.CurrentMeasure = measure
	job.UpdatedAt = time.Now()
	if startTime != nil {
		job.StartedAt = startTime
	}

	log.Debug().
		Str("job_id", jobID).
		Str("status", string(status)).
		Int("percentage", percentage).
		Str("message", message).
		Msg("Job status updated")

	return true
}

// completeJob marks a job as completed with results
func (s *JobService) completeJob(jobID string, results []*montecarlo.Result, runIDs []string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status.Done() {
		return
	}

	job.Status = models.JobStatusCompleted
	job.Progress.Percentage = 100
	job.Progress.Message = "Complete"
	job.Progress.CurrentMeasure = ""
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	job.Results = results
	job.RunIDs = runIDs

	log.Info().
		Str("job_id", jobID).
		Int("measures", len(results)).
		Msg("Job completed successfully")
}

// failJob marks a job as failed unless it was already cancelled
func (s *JobService) failJob(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status.Done() {
		return
	}

	job.Status = models.JobStatusFailed
	job.Error = err.Error()
	job.Progress.Message = "Failed"
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	log.Error().
		Str("job_id", jobID).
		Err(err).
		Msg("Job failed")
}

func (s *JobService) releaseCancel(jobID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}
}

// snapshot copies a job so callers can read it without holding the lock.
// Must be called with the mutex held.
func (s *JobService) snapshot(job *models.Job) *models.Job {
	clone := *job
	clone.Request.Measures = append([]string(nil), job.Request.Measures...)
	clone.Results = append([]*montecarlo.Result(nil), job.Results...)
	clone.RunIDs = append([]string(nil), job.RunIDs...)
	return &clone
}

// cleanupLoop periodically cleans up old jobs
func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes finished jobs older than the result TTL
func (s *JobService) cleanup() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	cleaned := 0

	for jobID, job := range s.jobs {
		if job.Status.Done() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Info().
			Int("cleaned_jobs", cleaned).
			Msg("Job cleanup completed")
	}
}
