package centrality

import (
	"gonum.org/v1/gonum/graph/network"

	simnet "github.com/gilchrisn/immunization-sim/pkg/network"
)

// BetweennessMeasure scores a node by the share of shortest paths between
// other node pairs that pass through it, normalized by (n-1)(n-2).
type BetweennessMeasure struct{}

func (BetweennessMeasure) Name() MeasureName { return Betweenness }

func (BetweennessMeasure) Scores(net *simnet.Network) (Scores, error) {
	n := net.NumNodes()
	scores := make(Scores, n)

	// gonum reports only non-zero entries, summed over ordered pairs.
	raw := network.Betweenness(net.Graph())
	scale := 1.0
	if n > 2 {
		scale = 1.0 / float64((n-1)*(n-2))
	}
	for id, b := range raw {
		scores[id] = b * scale
	}
	return scores, nil
}
