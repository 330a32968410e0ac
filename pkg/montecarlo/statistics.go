package montecarlo

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientSampleSize is returned when fewer than two results are
// summarized, since the sample standard deviation is undefined.
var ErrInsufficientSampleSize = errors.New("insufficient sample size")

// Statistics summarizes the infected counts of an aggregate run
type Statistics struct {
	Count     int     `json:"count" yaml:"count"`
	Mean      float64 `json:"mean" yaml:"mean"`
	Median    float64 `json:"median" yaml:"median"`
	Mode      int     `json:"mode" yaml:"mode"`
	StdDev    float64 `json:"stddev" yaml:"stddev"`
	Min       int     `json:"min" yaml:"min"`
	Max       int     `json:"max" yaml:"max"`
	Histogram []int   `json:"histogram" yaml:"histogram"` // Histogram[k] = trials ending with k infected
}

// Summarize computes descriptive statistics over infected counts. The median
// averages the two middle values for an even count. The mode is the most
// frequent value; ties go to the value seen first in counts. StdDev is the
// sample standard deviation (n-1 denominator).
func Summarize(counts []int) (Statistics, error) {
	if len(counts) < 2 {
		return Statistics{}, fmt.Errorf("%w: need at least 2 results, got %d", ErrInsufficientSampleSize, len(counts))
	}

	xs := make([]float64, len(counts))
	for i, c := range counts {
		if c < 0 {
			return Statistics{}, fmt.Errorf("negative infected count %d at trial %d", c, i)
		}
		xs[i] = float64(c)
	}
	mean, std := stat.MeanStdDev(xs, nil)

	slices.Sort(xs)
	n := len(xs)
	median := xs[n/2]
	if n%2 == 0 {
		median = (xs[n/2-1] + xs[n/2]) / 2
	}

	minCount, maxCount := int(xs[0]), int(xs[n-1])

	// Unit-width bins centered on each integer count.
	dividers := make([]float64, maxCount+2)
	for k := range dividers {
		dividers[k] = float64(k) - 0.5
	}
	binned := stat.Histogram(nil, dividers, xs, nil)
	histogram := make([]int, len(binned))
	for k, v := range binned {
		histogram[k] = int(v)
	}

	return Statistics{
		Count:     n,
		Mean:      mean,
		Median:    median,
		Mode:      firstMode(counts, histogram),
		StdDev:    std,
		Min:       minCount,
		Max:       maxCount,
		Histogram: histogram,
	}, nil
}

func firstMode(counts []int, histogram []int) int {
	best := 0
	for _, c := range histogram {
		if c > best {
			best = c
		}
	}
	for _, c := range counts {
		if histogram[c] == best {
			return c
		}
	}
	return counts[0]
}

// String formats the summary the way run reports print it.
func (s Statistics) String() string {
	return fmt.Sprintf("avg=%v, med=%v, mode=%d, stdev=%v", s.Mean, s.Median, s.Mode, s.StdDev)
}
