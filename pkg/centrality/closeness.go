package centrality

import (
	"math"

	"gonum.org/v1/gonum/graph/path"

	"github.com/gilchrisn/immunization-sim/pkg/network"
)

// ClosenessMeasure scores a node by the inverse of its mean distance to the
// nodes it can reach, scaled by the reachable fraction of the graph
// (Wasserman and Faust) so nodes in small components do not dominate.
type ClosenessMeasure struct{}

func (ClosenessMeasure) Name() MeasureName { return Closeness }

func (ClosenessMeasure) Scores(net *network.Network) (Scores, error) {
	n := net.NumNodes()
	scores := make(Scores, n)
	if n < 2 {
		return scores, nil
	}

	paths := path.DijkstraAllPaths(net.Graph())
	for v := 0; v < n; v++ {
		total := 0.0
		reachable := 1
		for u := 0; u < n; u++ {
			if u == v {
				continue
			}
			d := paths.Weight(int64(u), int64(v))
			if math.IsInf(d, 1) {
				continue
			}
			total += d
			reachable++
		}
		if total > 0 {
			r := float64(reachable - 1)
			scores[v] = r / total * (r / float64(n-1))
		}
	}
	return scores, nil
}
