package centrality

import "github.com/gilchrisn/immunization-sim/pkg/network"

// ClusteringMeasure scores a node by the density of triangles around it:
// 2T(v) / (deg(v) * (deg(v)-1)), zero when deg(v) < 2.
type ClusteringMeasure struct{}

func (ClusteringMeasure) Name() MeasureName { return Clustering }

func (ClusteringMeasure) Scores(net *network.Network) (Scores, error) {
	scores := make(Scores, net.NumNodes())
	for v := range scores {
		neighbors := net.Neighbors(v)
		d := len(neighbors)
		if d < 2 {
			continue
		}

		triangles := 0
		for i := 0; i < d; i++ {
			for j := i + 1; j < d; j++ {
				if net.HasEdge(neighbors[i], neighbors[j]) {
					triangles++
				}
			}
		}
		if triangles > 0 {
			scores[v] = float64(2*triangles) / float64(d*(d-1))
		}
	}
	return scores, nil
}
