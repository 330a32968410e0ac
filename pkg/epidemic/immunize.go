package epidemic

import (
	"fmt"
	"math/rand/v2"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/network"
)

// SelectImmune picks the node to immunize. The random baseline draws
// uniformly over every node without scoring; any other measure ranks the
// nodes and draws uniformly among those tied for the top score.
func SelectImmune(rng *rand.Rand, net *network.Network, measure centrality.Measure) (int, error) {
	if _, ok := measure.(centrality.RandomMeasure); ok {
		return rng.IntN(net.NumNodes()), nil
	}

	scores, err := measure.Scores(net)
	if err != nil {
		return NoImmune, fmt.Errorf("%s centrality: %w", measure.Name(), err)
	}

	top := centrality.Rank(scores)
	if len(top) == 0 {
		return NoImmune, fmt.Errorf("%s centrality produced no scores", measure.Name())
	}
	return top[rng.IntN(len(top))], nil
}
