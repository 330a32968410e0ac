// Package epidemic runs single immunization trials: build a random contact
// network, immunize its most important node, seed one infection and let it
// spread for a fixed number of days.
package epidemic

import (
	"errors"
	"fmt"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
)

// ErrInvalidConfiguration is returned when trial parameters are out of range.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// NoImmune marks an immune node that has not been selected yet.
const NoImmune = -1

// Params configures one trial
type Params struct {
	NodeCount       int
	EdgeProbability float64
	InfectionRate   float64
	Days            int
	Measure         centrality.Measure
}

// Validate checks parameter ranges. A node count below two is rejected here
// because seeding needs at least one node that is not immune.
func (p Params) Validate() error {
	if p.NodeCount < 2 {
		return fmt.Errorf("%w: node count must be at least 2, got %d", ErrInvalidConfiguration, p.NodeCount)
	}
	if p.EdgeProbability < 0 || p.EdgeProbability > 1 {
		return fmt.Errorf("%w: edge probability %v outside [0, 1]", ErrInvalidConfiguration, p.EdgeProbability)
	}
	if p.InfectionRate < 0 || p.InfectionRate > 1 {
		return fmt.Errorf("%w: infection rate %v outside [0, 1]", ErrInvalidConfiguration, p.InfectionRate)
	}
	if p.Days < 0 {
		return fmt.Errorf("%w: days must be non-negative, got %d", ErrInvalidConfiguration, p.Days)
	}
	if p.Measure == nil {
		return fmt.Errorf("%w: importance measure is required", ErrInvalidConfiguration)
	}
	return nil
}
