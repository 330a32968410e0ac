// Package network holds the undirected contact graph a trial spreads over.
package network

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	// ErrNodeOutOfRange is returned when an edge endpoint is not in [0, n).
	ErrNodeOutOfRange = errors.New("node out of range")
	// ErrSelfLoop is returned when an edge would join a node to itself.
	ErrSelfLoop = errors.New("self loop not allowed")
)

// Network is an undirected simple graph on the contiguous node ids [0, n).
// The gonum graph backs the centrality algorithms; adjacency keeps neighbor
// lists in insertion order so stepping consumes randomness deterministically.
type Network struct {
	g         *simple.UndirectedGraph
	adjacency [][]int
	numEdges  int
}

// New creates a network with numNodes isolated nodes.
func New(numNodes int) *Network {
	g := simple.NewUndirectedGraph()
	for i := 0; i < numNodes; i++ {
		g.AddNode(simple.Node(i))
	}
	return &Network{
		g:         g,
		adjacency: make([][]int, numNodes),
	}
}

// AddEdge joins u and v. Adding an existing edge is a no-op.
func (n *Network) AddEdge(u, v int) error {
	if u < 0 || u >= len(n.adjacency) || v < 0 || v >= len(n.adjacency) {
		return fmt.Errorf("%w: u=%d, v=%d, numNodes=%d", ErrNodeOutOfRange, u, v, len(n.adjacency))
	}
	if u == v {
		return fmt.Errorf("%w: node %d", ErrSelfLoop, u)
	}
	if n.g.HasEdgeBetween(int64(u), int64(v)) {
		return nil
	}

	n.g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	n.adjacency[u] = append(n.adjacency[u], v)
	n.adjacency[v] = append(n.adjacency[v], u)
	n.numEdges++
	return nil
}

// NumNodes returns the number of nodes.
func (n *Network) NumNodes() int { return len(n.adjacency) }

// NumEdges returns the number of undirected edges.
func (n *Network) NumEdges() int { return n.numEdges }

// Degree returns the number of neighbors of v.
func (n *Network) Degree(v int) int { return len(n.adjacency[v]) }

// Neighbors returns the neighbors of v. The slice must not be modified.
func (n *Network) Neighbors(v int) []int { return n.adjacency[v] }

// HasEdge reports whether u and v are adjacent.
func (n *Network) HasEdge(u, v int) bool {
	return n.g.HasEdgeBetween(int64(u), int64(v))
}

// Graph exposes the gonum view of the network.
func (n *Network) Graph() graph.Undirected { return n.g }

// Edges returns every edge once as a {low, high} pair.
func (n *Network) Edges() [][2]int {
	edges := make([][2]int, 0, n.numEdges)
	for u, neighbors := range n.adjacency {
		for _, v := range neighbors {
			if u < v {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	return edges
}

// Validate checks that the gonum graph and the adjacency lists agree and that
// the graph is simple and symmetric.
func (n *Network) Validate() error {
	if got := n.g.Nodes().Len(); got != len(n.adjacency) {
		return fmt.Errorf("graph has %d nodes, adjacency has %d", got, len(n.adjacency))
	}

	seen := 0
	for u, neighbors := range n.adjacency {
		unique := make(map[int]bool, len(neighbors))
		for _, v := range neighbors {
			if v == u {
				return fmt.Errorf("%w: node %d", ErrSelfLoop, u)
			}
			if unique[v] {
				return fmt.Errorf("duplicate edge %d-%d", u, v)
			}
			unique[v] = true
			if !n.g.HasEdgeBetween(int64(v), int64(u)) {
				return fmt.Errorf("edge %d-%d missing from graph", u, v)
			}
			seen++
		}
	}

	if seen != 2*n.numEdges {
		return fmt.Errorf("adjacency holds %d endpoints for %d edges", seen, n.numEdges)
	}
	if got := n.g.Edges().Len(); got != n.numEdges {
		return fmt.Errorf("graph has %d edges, expected %d", got, n.numEdges)
	}
	return nil
}

// FromEdges builds a network with numNodes nodes and the given edges.
func FromEdges(numNodes int, edges [][2]int) (*Network, error) {
	net := New(numNodes)
	for _, e := range edges {
		if err := net.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Complete returns the complete graph on numNodes nodes.
func Complete(numNodes int) *Network {
	net := New(numNodes)
	for i := 0; i < numNodes; i++ {
		for j := i + 1; j < numNodes; j++ {
			net.AddEdge(i, j)
		}
	}
	return net
}

// Star returns a star with node 0 at the center.
func Star(numNodes int) *Network {
	net := New(numNodes)
	for i := 1; i < numNodes; i++ {
		net.AddEdge(0, i)
	}
	return net
}

// Path returns the path 0-1-...-(numNodes-1).
func Path(numNodes int) *Network {
	net := New(numNodes)
	for i := 0; i+1 < numNodes; i++ {
		net.AddEdge(i, i+1)
	}
	return net
}
