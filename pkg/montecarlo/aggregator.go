// Package montecarlo repeats immunization trials and summarizes the infected
// counts they produce.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
)

// ProgressFunc is called as trials complete. Calls are serialized.
type ProgressFunc func(measure centrality.MeasureName, completed, total int)

// Options configures an aggregate run
type Options struct {
	Trials           int
	Workers          int
	Seed             uint64
	ProgressInterval int // report every N completed trials, 0 disables
	Progress         ProgressFunc
}

// Result holds the outcome of an aggregate run for one measure
type Result struct {
	Measure         centrality.MeasureName `json:"measure" yaml:"measure"`
	NodeCount       int                    `json:"node_count" yaml:"node_count"`
	EdgeProbability float64                `json:"edge_probability" yaml:"edge_probability"`
	InfectionRate   float64                `json:"infection_rate" yaml:"infection_rate"`
	Days            int                    `json:"days" yaml:"days"`
	Trials          int                    `json:"trials" yaml:"trials"`
	Seed            uint64                 `json:"seed" yaml:"seed"`
	Counts          []int                  `json:"counts,omitempty" yaml:"counts,omitempty"`
	Statistics      Statistics             `json:"statistics" yaml:"statistics"`
	RuntimeMS       int64                  `json:"runtime_ms" yaml:"runtime_ms"`
}

// TrialError reports which trial of which measure failed.
type TrialError struct {
	Measure centrality.MeasureName
	Trial   int
	Err     error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("%s trial %d: %v", e.Measure, e.Trial, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }

// Aggregator runs many independent trials
type Aggregator struct {
	opts   Options
	logger zerolog.Logger
}

// NewAggregator creates an aggregator. Workers below one default to one.
func NewAggregator(opts Options, logger zerolog.Logger) *Aggregator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Aggregator{opts: opts, logger: logger}
}

// TrialRNG returns the random stream for one trial. Streams depend only on
// the seed and the trial index, so a run is reproducible for any worker
// count, and trial i of every measure starts from the same network.
func TrialRNG(seed uint64, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(trial)))
}

// Run executes opts.Trials trials with params and summarizes the results.
// The first failing trial aborts the run; no trial is retried or skipped.
func (a *Aggregator) Run(ctx context.Context, params epidemic.Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if a.opts.Trials < 2 {
		return nil, fmt.Errorf("%w: trial count must be at least 2, got %d", epidemic.ErrInvalidConfiguration, a.opts.Trials)
	}

	start := time.Now()
	measure := params.Measure.Name()
	total := a.opts.Trials

	a.logger.Info().
		Str("measure", string(measure)).
		Int("trials", total).
		Int("workers", a.opts.Workers).
		Int("nodes", params.NodeCount).
		Float64("edge_probability", params.EdgeProbability).
		Float64("infection_rate", params.InfectionRate).
		Int("days", params.Days).
		Msg("Starting aggregate run")

	counts := make([]int, total)
	var completed atomic.Int64
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	trials := make(chan int)

	g.Go(func() error {
		defer close(trials)
		for i := 0; i < total; i++ {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case trials <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < a.opts.Workers; w++ {
		g.Go(func() error {
			for i := range trials {
				count, err := epidemic.RunTrial(TrialRNG(a.opts.Seed, i), params)
				if err != nil {
					return &TrialError{Measure: measure, Trial: i, Err: err}
				}
				counts[i] = count

				// Counting under the lock keeps reports in increasing order.
				progressMu.Lock()
				done := int(completed.Add(1))
				if a.opts.ProgressInterval > 0 && (done%a.opts.ProgressInterval == 0 || done == total) {
					a.reportProgress(measure, done, total)
				}
				progressMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error().
			Err(err).
			Str("measure", string(measure)).
			Int64("completed", completed.Load()).
			Msg("Aggregate run aborted")
		return nil, err
	}

	stats, err := Summarize(counts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", measure, err)
	}

	result := &Result{
		Measure:         measure,
		NodeCount:       params.NodeCount,
		EdgeProbability: params.EdgeProbability,
		InfectionRate:   params.InfectionRate,
		Days:            params.Days,
		Trials:          total,
		Seed:            a.opts.Seed,
		Counts:          counts,
		Statistics:      stats,
		RuntimeMS:       time.Since(start).Milliseconds(),
	}

	a.logger.Info().
		Str("measure", string(measure)).
		Float64("mean", stats.Mean).
		Float64("median", stats.Median).
		Int("mode", stats.Mode).
		Float64("stddev", stats.StdDev).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("Aggregate run completed")

	return result, nil
}

// RunAll runs every measure in order with the same base parameters and
// returns one result per measure.
func (a *Aggregator) RunAll(ctx context.Context, base epidemic.Params, measures []centrality.Measure) ([]*Result, error) {
	results := make([]*Result, 0, len(measures))
	for _, m := range measures {
		params := base
		params.Measure = m

		result, err := a.Run(ctx, params)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (a *Aggregator) reportProgress(measure centrality.MeasureName, done, total int) {
	a.logger.Info().
		Str("measure", string(measure)).
		Int("completed", done).
		Int("total", total).
		Msg("Progress")

	if a.opts.Progress != nil {
		a.opts.Progress(measure, done, total)
	}
}
