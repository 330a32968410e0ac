package network

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidGraphParams is returned for a non-positive node count or an edge
// probability outside [0, 1].
var ErrInvalidGraphParams = errors.New("invalid graph parameters")

// Generate builds a binomial random graph G(n, p). Every unordered pair i < j
// is evaluated exactly once with a single uniform draw.
func Generate(rng *rand.Rand, numNodes int, edgeProbability float64) (*Network, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("%w: node count must be positive, got %d", ErrInvalidGraphParams, numNodes)
	}
	if edgeProbability < 0 || edgeProbability > 1 {
		return nil, fmt.Errorf("%w: edge probability %v outside [0, 1]", ErrInvalidGraphParams, edgeProbability)
	}

	net := New(numNodes)
	for i := 0; i < numNodes; i++ {
		for j := i + 1; j < numNodes; j++ {
			if rng.Float64() < edgeProbability {
				net.g.SetEdge(net.g.NewEdge(net.g.Node(int64(i)), net.g.Node(int64(j))))
				net.adjacency[i] = append(net.adjacency[i], j)
				net.adjacency[j] = append(net.adjacency[j], i)
				net.numEdges++
			}
		}
	}
	return net, nil
}
