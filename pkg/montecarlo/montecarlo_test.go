package montecarlo

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
)

func TestSummarize(t *testing.T) {
	t.Run("ConstantResults", func(t *testing.T) {
		stats, err := Summarize([]int{3, 3})
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if stats.Mean != 3 || stats.Median != 3 || stats.Mode != 3 || stats.StdDev != 0 {
			t.Errorf("Expected 3/3/3/0, got %+v", stats)
		}
	})

	t.Run("EvenCountMedian", func(t *testing.T) {
		stats, _ := Summarize([]int{4, 1, 3, 2})
		if stats.Median != 2.5 {
			t.Errorf("Expected median 2.5, got %v", stats.Median)
		}
		if stats.Mean != 2.5 {
			t.Errorf("Expected mean 2.5, got %v", stats.Mean)
		}
		if math.Abs(stats.StdDev-math.Sqrt(5.0/3)) > 1e-12 {
			t.Errorf("Expected sample stddev %v, got %v", math.Sqrt(5.0/3), stats.StdDev)
		}
	})

	t.Run("OddCountMedian", func(t *testing.T) {
		stats, _ := Summarize([]int{9, 1, 5})
		if stats.Median != 5 {
			t.Errorf("Expected median 5, got %v", stats.Median)
		}
	})

	t.Run("ModeTieGoesToFirstSeen", func(t *testing.T) {
		stats, _ := Summarize([]int{2, 1, 1, 2, 7})
		if stats.Mode != 2 {
			t.Errorf("Expected mode 2, got %d", stats.Mode)
		}
	})

	t.Run("Histogram", func(t *testing.T) {
		stats, _ := Summarize([]int{0, 2, 2, 5})
		expected := []int{1, 0, 2, 0, 0, 1}
		if !reflect.DeepEqual(stats.Histogram, expected) {
			t.Errorf("Expected histogram %v, got %v", expected, stats.Histogram)
		}
		if stats.Min != 0 || stats.Max != 5 {
			t.Errorf("Expected range [0, 5], got [%d, %d]", stats.Min, stats.Max)
		}
	})

	t.Run("InsufficientSampleSize", func(t *testing.T) {
		for _, counts := range [][]int{nil, {4}} {
			if _, err := Summarize(counts); !errors.Is(err, ErrInsufficientSampleSize) {
				t.Errorf("Summarize(%v): expected ErrInsufficientSampleSize, got %v", counts, err)
			}
		}
	})

	t.Run("String", func(t *testing.T) {
		stats, _ := Summarize([]int{3, 3})
		if got := stats.String(); got != "avg=3, med=3, mode=3, stdev=0" {
			t.Errorf("Unexpected summary line %q", got)
		}
	})
}

func completeGraphParams() epidemic.Params {
	return epidemic.Params{
		NodeCount:       5,
		EdgeProbability: 1,
		InfectionRate:   1,
		Days:            2,
		Measure:         centrality.DegreeMeasure{},
	}
}

func TestAggregatorRun(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("DeterministicScenario", func(t *testing.T) {
		agg := NewAggregator(Options{Trials: 50, Workers: 4, Seed: 1}, logger)
		result, err := agg.Run(context.Background(), completeGraphParams())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(result.Counts) != 50 {
			t.Fatalf("Expected 50 counts, got %d", len(result.Counts))
		}
		for i, c := range result.Counts {
			if c != 4 {
				t.Fatalf("Trial %d: expected 4, got %d", i, c)
			}
		}
		s := result.Statistics
		if s.Mean != 4 || s.Median != 4 || s.Mode != 4 || s.StdDev != 0 {
			t.Errorf("Expected 4/4/4/0, got %+v", s)
		}
		if result.Measure != centrality.Degree {
			t.Errorf("Expected measure degree, got %s", result.Measure)
		}
	})

	t.Run("ReproducibleAcrossWorkerCounts", func(t *testing.T) {
		params := epidemic.Params{
			NodeCount:       10,
			EdgeProbability: 0.5,
			InfectionRate:   0.3,
			Days:            3,
			Measure:         centrality.ClosenessMeasure{},
		}
		serial, err := NewAggregator(Options{Trials: 300, Workers: 1, Seed: 99}, logger).Run(context.Background(), params)
		if err != nil {
			t.Fatalf("Serial run failed: %v", err)
		}
		parallel, err := NewAggregator(Options{Trials: 300, Workers: 8, Seed: 99}, logger).Run(context.Background(), params)
		if err != nil {
			t.Fatalf("Parallel run failed: %v", err)
		}
		if !reflect.DeepEqual(serial.Counts, parallel.Counts) {
			t.Error("Counts differ between worker counts for the same seed")
		}
		for _, c := range serial.Counts {
			if c < 1 || c > params.NodeCount-1 {
				t.Fatalf("Infected count %d outside [1, %d]", c, params.NodeCount-1)
			}
		}
	})

	t.Run("Progress", func(t *testing.T) {
		var mu sync.Mutex
		var reports []int
		opts := Options{
			Trials:           100,
			Workers:          3,
			Seed:             5,
			ProgressInterval: 25,
			Progress: func(measure centrality.MeasureName, completed, total int) {
				mu.Lock()
				defer mu.Unlock()
				if total != 100 || measure != centrality.Degree {
					t.Errorf("Unexpected progress call: %s %d/%d", measure, completed, total)
				}
				reports = append(reports, completed)
			},
		}
		if _, err := NewAggregator(opts, logger).Run(context.Background(), completeGraphParams()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(reports) != 4 {
			t.Errorf("Expected 4 progress reports, got %v", reports)
		}
	})

	t.Run("ProgressIncreases", func(t *testing.T) {
		var reports []int
		opts := Options{
			Trials:           300,
			Workers:          8,
			Seed:             9,
			ProgressInterval: 1,
			Progress: func(measure centrality.MeasureName, completed, total int) {
				reports = append(reports, completed)
			},
		}
		if _, err := NewAggregator(opts, logger).Run(context.Background(), completeGraphParams()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(reports) != 300 {
			t.Fatalf("Expected 300 progress reports, got %d", len(reports))
		}
		for i, done := range reports {
			if done != i+1 {
				t.Fatalf("Report %d: expected %d completed, got %d", i, i+1, done)
			}
		}
	})

	t.Run("NonConvergenceAbortsRun", func(t *testing.T) {
		params := epidemic.Params{
			NodeCount:       10,
			EdgeProbability: 1,
			InfectionRate:   0.1,
			Days:            3,
			Measure:         centrality.EigenvectorMeasure{MaxIterations: 1, Tolerance: 1e-6},
		}
		_, err := NewAggregator(Options{Trials: 20, Workers: 2, Seed: 3}, logger).Run(context.Background(), params)
		if !errors.Is(err, centrality.ErrNonConvergence) {
			t.Fatalf("Expected ErrNonConvergence, got %v", err)
		}
		var trialErr *TrialError
		if !errors.As(err, &trialErr) {
			t.Fatalf("Expected a TrialError, got %T", err)
		}
		if trialErr.Measure != centrality.Eigenvector {
			t.Errorf("Expected eigenvector measure in error, got %s", trialErr.Measure)
		}
	})

	t.Run("RejectsTooFewTrials", func(t *testing.T) {
		_, err := NewAggregator(Options{Trials: 1, Seed: 1}, logger).Run(context.Background(), completeGraphParams())
		if !errors.Is(err, epidemic.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("RejectsInvalidParams", func(t *testing.T) {
		params := completeGraphParams()
		params.InfectionRate = 1.5
		_, err := NewAggregator(Options{Trials: 10, Seed: 1}, logger).Run(context.Background(), params)
		if !errors.Is(err, epidemic.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewAggregator(Options{Trials: 1000, Workers: 2, Seed: 1}, logger).Run(ctx, completeGraphParams())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestAggregatorRunAll(t *testing.T) {
	registry := centrality.NewRegistry()
	var measures []centrality.Measure
	for _, name := range registry.List() {
		m, _ := registry.Get(name)
		measures = append(measures, m)
	}

	agg := NewAggregator(Options{Trials: 20, Workers: 2, Seed: 11}, zerolog.Nop())
	results, err := agg.RunAll(context.Background(), completeGraphParams(), measures)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(results) != len(centrality.DefaultMeasures) {
		t.Fatalf("Expected %d results, got %d", len(centrality.DefaultMeasures), len(results))
	}
	for i, r := range results {
		if r.Measure != centrality.DefaultMeasures[i] {
			t.Errorf("Result %d: expected %s, got %s", i, centrality.DefaultMeasures[i], r.Measure)
		}
		// On a complete graph every policy immunizes one node and infects the rest.
		if r.Statistics.Mean != 4 {
			t.Errorf("%s: expected mean 4, got %v", r.Measure, r.Statistics.Mean)
		}
	}
}

func TestConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.NodeCount() != 10 || cfg.Days() != 3 || cfg.Trials() != 100000 {
		t.Errorf("Unexpected defaults: nodes=%d days=%d trials=%d", cfg.NodeCount(), cfg.Days(), cfg.Trials())
	}
	if cfg.EdgeProbability() != 0.5 || cfg.InfectionRate() != 0.1 {
		t.Errorf("Unexpected probabilities: ep=%v ip=%v", cfg.EdgeProbability(), cfg.InfectionRate())
	}
	if got := cfg.Measures(); len(got) != 6 || got[0] != "random" || got[5] != "eigenvector" {
		t.Errorf("Unexpected default measures: %v", got)
	}
	if cfg.NumWorkers() <= 0 {
		t.Errorf("NumWorkers should be positive, got %d", cfg.NumWorkers())
	}

	cfg.Set("algorithm.eigenvector_max_iterations", 7)
	m, ok := cfg.Registry().Get(centrality.Eigenvector)
	if !ok {
		t.Fatal("Eigenvector measure missing from registry")
	}
	if ev := m.(centrality.EigenvectorMeasure); ev.MaxIterations != 7 {
		t.Errorf("Expected 7 iterations, got %d", ev.MaxIterations)
	}

	cfg.Set("logging.enable_progress", false)
	cfg.Set("algorithm.random_seed", 42)
	opts := cfg.Options()
	if opts.ProgressInterval != 0 {
		t.Errorf("Progress should be disabled, got interval %d", opts.ProgressInterval)
	}
	if opts.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", opts.Seed)
	}

	params := cfg.Params(centrality.DegreeMeasure{})
	if err := params.Validate(); err != nil {
		t.Errorf("Default params invalid: %v", err)
	}
}
