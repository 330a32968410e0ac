package epidemic

import (
	"fmt"
	"math/rand/v2"
)

// SeedInfection infects one node other than immune, chosen uniformly by
// redrawing until the draw misses the immune node. It panics when the state
// has fewer than two nodes, since no draw could ever succeed.
func SeedInfection(rng *rand.Rand, state InfectionState, immune int) int {
	n := len(state)
	if n < 2 {
		panic(fmt.Sprintf("epidemic: cannot seed infection in a network of %d nodes", n))
	}

	node := rng.IntN(n)
	for node == immune {
		node = rng.IntN(n)
	}
	state[node] = true
	return node
}
