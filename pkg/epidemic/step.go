package epidemic

import (
	"math/rand/v2"

	"github.com/gilchrisn/immunization-sim/pkg/network"
)

// Step advances the infection by one day. Each edge leaving a node infected
// in current gets one Bernoulli(infectionRate) draw; successes infect the
// neighbor unless it is immune. Only current is read, so a node infected
// today cannot pass the infection on until tomorrow.
func Step(rng *rand.Rand, net *network.Network, current InfectionState, immune int, infectionRate float64) InfectionState {
	next := current.Clone()
	for node, infected := range current {
		if !infected {
			continue
		}
		for _, neighbor := range net.Neighbors(node) {
			if rng.Float64() < infectionRate && neighbor != immune {
				next[neighbor] = true
			}
		}
	}
	return next
}
