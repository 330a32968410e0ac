package epidemic

import (
	"fmt"
	"math/rand/v2"

	"github.com/gilchrisn/immunization-sim/pkg/network"
)

// TrialTrace records what happened during one trial.
type TrialTrace struct {
	NumEdges int   `json:"num_edges" yaml:"num_edges"`
	Immune   int   `json:"immune" yaml:"immune"`
	Seed     int   `json:"seed" yaml:"seed"`
	Daily    []int `json:"daily" yaml:"daily"` // Daily[d] = infected count after d days
	Infected []int `json:"infected" yaml:"infected"`
}

// Final returns the infected count at the end of the trial.
func (t *TrialTrace) Final() int {
	return t.Daily[len(t.Daily)-1]
}

// RunTrial generates a network, immunizes a node, seeds an infection, spreads
// it for params.Days days and returns the final infected count.
func RunTrial(rng *rand.Rand, params Params) (int, error) {
	net, immune, state, err := setupTrial(rng, params)
	if err != nil {
		return 0, err
	}

	for day := 0; day < params.Days; day++ {
		state = Step(rng, net, state, immune, params.InfectionRate)
	}
	return state.Count(), nil
}

// Trace runs a trial like RunTrial and records the infected count after every
// day. Given the same random stream it draws exactly what RunTrial draws.
func Trace(rng *rand.Rand, params Params) (*TrialTrace, error) {
	net, immune, state, err := setupTrial(rng, params)
	if err != nil {
		return nil, err
	}

	trace := &TrialTrace{
		NumEdges: net.NumEdges(),
		Immune:   immune,
		Seed:     state.Infected()[0],
		Daily:    make([]int, 0, params.Days+1),
	}
	trace.Daily = append(trace.Daily, state.Count())

	for day := 0; day < params.Days; day++ {
		state = Step(rng, net, state, immune, params.InfectionRate)
		trace.Daily = append(trace.Daily, state.Count())
	}
	trace.Infected = state.Infected()

	return trace, nil
}

func setupTrial(rng *rand.Rand, params Params) (*network.Network, int, InfectionState, error) {
	if err := params.Validate(); err != nil {
		return nil, NoImmune, nil, err
	}

	net, err := network.Generate(rng, params.NodeCount, params.EdgeProbability)
	if err != nil {
		return nil, NoImmune, nil, fmt.Errorf("failed to generate network: %w", err)
	}

	immune, err := SelectImmune(rng, net, params.Measure)
	if err != nil {
		return nil, NoImmune, nil, err
	}

	state := NewInfectionState(params.NodeCount)
	SeedInfection(rng, state, immune)

	return net, immune, state, nil
}
