package centrality

// Registry manages available importance measures
type Registry struct {
	measures map[MeasureName]Measure
}

// NewRegistry creates a registry holding every built-in measure with its
// default settings.
func NewRegistry() *Registry {
	registry := &Registry{
		measures: make(map[MeasureName]Measure),
	}

	registry.Register(RandomMeasure{})
	registry.Register(DegreeMeasure{})
	registry.Register(ClosenessMeasure{})
	registry.Register(ClusteringMeasure{})
	registry.Register(BetweennessMeasure{})
	registry.Register(NewEigenvectorMeasure())

	return registry
}

// Register adds a measure, replacing any measure with the same name.
func (r *Registry) Register(m Measure) {
	r.measures[m.Name()] = m
}

// Get retrieves a measure by name
func (r *Registry) Get(name MeasureName) (Measure, bool) {
	m, exists := r.measures[name]
	return m, exists
}

// Lookup resolves a measure by name. Names outside the registry resolve to
// the random baseline.
func (r *Registry) Lookup(name string) Measure {
	if m, exists := r.measures[MeasureName(name)]; exists {
		return m
	}
	return RandomMeasure{}
}

// Known reports whether name is a registered measure.
func (r *Registry) Known(name string) bool {
	_, exists := r.measures[MeasureName(name)]
	return exists
}

// List returns registered measure names, built-ins first in report order.
func (r *Registry) List() []MeasureName {
	names := make([]MeasureName, 0, len(r.measures))
	listed := make(map[MeasureName]bool, len(r.measures))
	for _, name := range DefaultMeasures {
		if _, exists := r.measures[name]; exists {
			names = append(names, name)
			listed[name] = true
		}
	}
	for name := range r.measures {
		if !listed[name] {
			names = append(names, name)
		}
	}
	return names
}
