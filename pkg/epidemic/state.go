package epidemic

// InfectionState marks which nodes are infected, indexed by node id.
type InfectionState []bool

// NewInfectionState returns a state with every node healthy.
func NewInfectionState(numNodes int) InfectionState {
	return make(InfectionState, numNodes)
}

// Count returns the number of infected nodes.
func (s InfectionState) Count() int {
	count := 0
	for _, infected := range s {
		if infected {
			count++
		}
	}
	return count
}

// Clone returns an independent copy of the state.
func (s InfectionState) Clone() InfectionState {
	clone := make(InfectionState, len(s))
	copy(clone, s)
	return clone
}

// Infected returns the ids of infected nodes in ascending order.
func (s InfectionState) Infected() []int {
	var nodes []int
	for node, infected := range s {
		if infected {
			nodes = append(nodes, node)
		}
	}
	return nodes
}
