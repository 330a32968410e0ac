package centrality

import "github.com/gilchrisn/immunization-sim/pkg/network"

// DegreeMeasure scores a node by the fraction of the other nodes it touches.
type DegreeMeasure struct{}

func (DegreeMeasure) Name() MeasureName { return Degree }

func (DegreeMeasure) Scores(net *network.Network) (Scores, error) {
	n := net.NumNodes()
	scores := make(Scores, n)
	if n == 1 {
		scores[0] = 1
		return scores, nil
	}

	s := 1.0 / float64(n-1)
	for v := 0; v < n; v++ {
		scores[v] = float64(net.Degree(v)) * s
	}
	return scores, nil
}
