package service

import (
	"time"

	"github.com/gilchrisn/immunization-sim/backend/models"
	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

// TrialResult is a traced single trial
type TrialResult struct {
	Measure string               `json:"measure"`
	Seed    uint64               `json:"seed"`
	Trace   *epidemic.TrialTrace `json:"trace"`
}

// TrialService runs single traced trials synchronously
type TrialService struct {
	registry *centrality.Registry
	maxNodes int
}

// NewTrialService creates a new trial service. maxNodes of zero disables the
// network size limit.
func NewTrialService(registry *centrality.Registry, maxNodes int) *TrialService {
	return &TrialService{registry: registry, maxNodes: maxNodes}
}

// Run executes one trial and records its daily infected counts. Without a
// seed a time-based one is chosen and returned so the trial can be replayed.
func (s *TrialService) Run(req models.TrialRequest) (*TrialResult, error) {
	if err := checkNodeLimit(req.NodeCount, s.maxNodes); err != nil {
		return nil, err
	}

	measure := s.registry.Lookup(req.Measure)
	params := epidemic.Params{
		NodeCount:       req.NodeCount,
		EdgeProbability: req.EdgeProbability,
		InfectionRate:   req.InfectionRate,
		Days:            req.Days,
		Measure:         measure,
	}

	seed := uint64(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}

	trace, err := epidemic.Trace(montecarlo.TrialRNG(seed, 0), params)
	if err != nil {
		return nil, err
	}

	return &TrialResult{
		Measure: string(measure.Name()),
		Seed:    seed,
		Trace:   trace,
	}, nil
}

// Measures describes every registered measure
func (s *TrialService) Measures() []models.MeasureInfo {
	names := s.registry.List()
	infos := make([]models.MeasureInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, models.MeasureInfo{
			Name:        string(name),
			Description: measureDescriptions[name],
		})
	}
	return infos
}

var measureDescriptions = map[centrality.MeasureName]string{
	centrality.Random:      "No structural ranking; immunizes a uniformly random node",
	centrality.Degree:      "Fraction of other nodes a node is connected to",
	centrality.Closeness:   "Inverse mean distance to reachable nodes",
	centrality.Clustering:  "Density of triangles around a node",
	centrality.Betweenness: "Share of shortest paths passing through a node",
	centrality.Eigenvector: "Principal eigenvector of the adjacency matrix",
}
