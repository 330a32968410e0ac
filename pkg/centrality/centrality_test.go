package centrality

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gilchrisn/immunization-sim/pkg/network"
)

func allMeasures() []Measure {
	return []Measure{
		DegreeMeasure{},
		ClosenessMeasure{},
		ClusteringMeasure{},
		BetweennessMeasure{},
		NewEigenvectorMeasure(),
	}
}

func TestRank(t *testing.T) {
	a, b := 0.1, 0.2
	tests := []struct {
		name     string
		scores   Scores
		expected []int
	}{
		{"Empty", nil, nil},
		{"Single", Scores{0.3}, []int{0}},
		{"UniqueMax", Scores{0.1, 0.9, 0.2}, []int{1}},
		{"Ties", Scores{0.5, 0.2, 0.5, 0.5}, []int{0, 2, 3}},
		{"AllZero", Scores{0, 0, 0}, []int{0, 1, 2}},
		{"NearTieIsNotTie", Scores{0.3, a + b}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.scores)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Rank(%v) = %v, expected %v", tt.scores, got, tt.expected)
			}
		})
	}
}

func TestCompleteGraphTiesEverywhere(t *testing.T) {
	net := network.Complete(6)
	for _, m := range allMeasures() {
		t.Run(string(m.Name()), func(t *testing.T) {
			scores, err := m.Scores(net)
			if err != nil {
				t.Fatalf("Scores failed: %v", err)
			}
			if len(scores) != 6 {
				t.Fatalf("Expected 6 scores, got %d", len(scores))
			}
			if m.Name() == Degree || m.Name() == Clustering || m.Name() == Betweenness {
				if top := Rank(scores); len(top) != 6 {
					t.Errorf("Expected all 6 nodes tied, got %v (scores %v)", top, scores)
				}
			}
		})
	}
}

func TestStarCenterWins(t *testing.T) {
	net := network.Star(7)
	for _, m := range []Measure{DegreeMeasure{}, ClosenessMeasure{}, BetweennessMeasure{}, NewEigenvectorMeasure()} {
		t.Run(string(m.Name()), func(t *testing.T) {
			scores, err := m.Scores(net)
			if err != nil {
				t.Fatalf("Scores failed: %v", err)
			}
			if top := Rank(scores); !reflect.DeepEqual(top, []int{0}) {
				t.Errorf("Expected only the center, got %v (scores %v)", top, scores)
			}
		})
	}
}

func TestDegreeValues(t *testing.T) {
	net, _ := network.FromEdges(4, [][2]int{{0, 1}, {0, 2}, {1, 2}})
	scores, _ := DegreeMeasure{}.Scores(net)

	expected := Scores{2.0 / 3, 2.0 / 3, 2.0 / 3, 0}
	for i := range expected {
		if math.Abs(scores[i]-expected[i]) > 1e-12 {
			t.Errorf("Node %d: expected %v, got %v", i, expected[i], scores[i])
		}
	}

	single, _ := DegreeMeasure{}.Scores(network.New(1))
	if single[0] != 1 {
		t.Errorf("Single node degree centrality should be 1, got %v", single[0])
	}
}

func TestClosenessValues(t *testing.T) {
	t.Run("Path", func(t *testing.T) {
		scores, _ := ClosenessMeasure{}.Scores(network.Path(3))
		// Ends: distances 1+2, middle: 1+1.
		expected := Scores{2.0 / 3, 1, 2.0 / 3}
		for i := range expected {
			if math.Abs(scores[i]-expected[i]) > 1e-12 {
				t.Errorf("Node %d: expected %v, got %v", i, expected[i], scores[i])
			}
		}
	})

	t.Run("Disconnected", func(t *testing.T) {
		net, _ := network.FromEdges(4, [][2]int{{0, 1}})
		scores, _ := ClosenessMeasure{}.Scores(net)
		// One reachable node at distance 1, scaled by 1/3.
		if math.Abs(scores[0]-1.0/3) > 1e-12 {
			t.Errorf("Expected 1/3, got %v", scores[0])
		}
		if scores[2] != 0 || scores[3] != 0 {
			t.Errorf("Isolated nodes should score 0, got %v", scores)
		}
	})
}

func TestClusteringValues(t *testing.T) {
	// Triangle 0-1-2 with a pendant 3 on node 0.
	net, _ := network.FromEdges(4, [][2]int{{0, 1}, {1, 2}, {0, 2}, {0, 3}})
	scores, _ := ClusteringMeasure{}.Scores(net)

	expected := Scores{1.0 / 3, 1, 1, 0}
	for i := range expected {
		if math.Abs(scores[i]-expected[i]) > 1e-12 {
			t.Errorf("Node %d: expected %v, got %v", i, expected[i], scores[i])
		}
	}
	if top := Rank(scores); !reflect.DeepEqual(top, []int{1, 2}) {
		t.Errorf("Expected nodes 1 and 2 tied, got %v", top)
	}
}

func TestBetweennessValues(t *testing.T) {
	scores, _ := BetweennessMeasure{}.Scores(network.Path(5))
	if top := Rank(scores); !reflect.DeepEqual(top, []int{2}) {
		t.Errorf("Expected the middle of the path, got %v (scores %v)", top, scores)
	}
	if scores[0] != 0 || scores[4] != 0 {
		t.Errorf("Path ends should score 0, got %v", scores)
	}
	if !(scores[1] < scores[2]) || scores[1] != scores[3] {
		t.Errorf("Unexpected interior ordering: %v", scores)
	}
}

func TestEigenvector(t *testing.T) {
	t.Run("NoEdgesConverges", func(t *testing.T) {
		scores, err := NewEigenvectorMeasure().Scores(network.New(4))
		if err != nil {
			t.Fatalf("Expected convergence on an empty edge set: %v", err)
		}
		if top := Rank(scores); len(top) != 4 {
			t.Errorf("Expected all nodes tied, got %v", top)
		}
	})

	t.Run("UnitNorm", func(t *testing.T) {
		net, _ := network.FromEdges(5, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {1, 3}})
		scores, err := NewEigenvectorMeasure().Scores(net)
		if err != nil {
			t.Fatalf("Scores failed: %v", err)
		}
		sum := 0.0
		for _, s := range scores {
			sum += s * s
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Expected unit L2 norm, got %v", sum)
		}
	})

	t.Run("NonConvergence", func(t *testing.T) {
		m := EigenvectorMeasure{MaxIterations: 1, Tolerance: 1e-6}
		_, err := m.Scores(network.Star(5))
		if !errors.Is(err, ErrNonConvergence) {
			t.Errorf("Expected ErrNonConvergence, got %v", err)
		}
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	if got := registry.List(); !reflect.DeepEqual(got, DefaultMeasures) {
		t.Errorf("List() = %v, expected %v", got, DefaultMeasures)
	}

	for _, name := range DefaultMeasures {
		m, ok := registry.Get(name)
		if !ok {
			t.Fatalf("Measure %s not registered", name)
		}
		if m.Name() != name {
			t.Errorf("Measure registered as %s reports %s", name, m.Name())
		}
	}

	if _, ok := registry.Lookup("pagerank").(RandomMeasure); !ok {
		t.Error("Unknown names should fall back to the random baseline")
	}
	if registry.Known("pagerank") {
		t.Error("pagerank should not be known")
	}
	if _, ok := registry.Lookup("closeness").(ClosenessMeasure); !ok {
		t.Error("closeness should resolve to ClosenessMeasure")
	}
}
