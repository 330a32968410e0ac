// Package centrality scores nodes by structural importance and picks the
// top-ranked ones for immunization.
package centrality

import (
	"errors"

	"github.com/gilchrisn/immunization-sim/pkg/network"
)

// ErrNonConvergence is returned when an iterative measure fails to reach a
// fixed point within its iteration budget.
var ErrNonConvergence = errors.New("centrality did not converge")

// MeasureName identifies an importance measure.
type MeasureName string

const (
	Random      MeasureName = "random"
	Degree      MeasureName = "degree"
	Closeness   MeasureName = "closeness"
	Clustering  MeasureName = "clustering"
	Betweenness MeasureName = "betweenness"
	Eigenvector MeasureName = "eigenvector"
)

// DefaultMeasures lists every measure in the order runs report them.
var DefaultMeasures = []MeasureName{Random, Degree, Closeness, Clustering, Betweenness, Eigenvector}

// Scores holds one importance value per node, indexed by node id.
type Scores []float64

// Measure computes an importance score for every node of a network.
type Measure interface {
	// Name returns the measure name
	Name() MeasureName

	// Scores returns one score per node
	Scores(net *network.Network) (Scores, error)
}

// RandomMeasure is the no-immunization baseline. It carries no structural
// information: every node scores zero, and selection treats it as a uniform
// draw over all nodes without ranking.
type RandomMeasure struct{}

func (RandomMeasure) Name() MeasureName { return Random }

func (RandomMeasure) Scores(net *network.Network) (Scores, error) {
	return make(Scores, net.NumNodes()), nil
}

// Rank returns the ids of every node whose score equals the maximum, in
// ascending id order. Ties use exact float64 equality with no tolerance, so
// symmetric graphs (complete, regular, star leaves) tie deterministically.
func Rank(scores Scores) []int {
	if len(scores) == 0 {
		return nil
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}

	var top []int
	for node, s := range scores {
		if s == best {
			top = append(top, node)
		}
	}
	return top
}
