package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
	"github.com/gilchrisn/immunization-sim/pkg/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an aggregate experiment for one or more measures",
		Long: `Run repeats the immunization trial --trials times for every measure and
reports the mean, median, mode and sample standard deviation of the final
infected counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySimulationFlags(cmd, cfg)

			logger := cfg.CreateLogger()
			registry := cfg.Registry()

			var measures []centrality.Measure
			for _, name := range cfg.Measures() {
				if !registry.Known(name) {
					logger.Warn().Str("measure", name).Msg("Unknown measure, using random baseline")
				}
				measures = append(measures, registry.Lookup(name))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			agg := montecarlo.NewAggregator(cfg.Options(), logger)
			results, err := agg.RunAll(ctx, cfg.Params(nil), measures)
			if err != nil {
				return err
			}

			if path := cfg.DBPath(); path != "" {
				s, err := store.Open(path)
				if err != nil {
					return err
				}
				defer s.Close()

				for _, r := range results {
					id, err := s.SaveResult(ctx, r)
					if err != nil {
						return fmt.Errorf("failed to save %s result: %w", r.Measure, err)
					}
					logger.Info().Str("run_id", id).Str("measure", string(r.Measure)).Msg("Result stored")
				}
			}

			if keep, _ := cmd.Flags().GetBool("counts"); !keep {
				for _, r := range results {
					r.Counts = nil
				}
			}

			return writeOutput(cmd, results, func(w io.Writer) {
				printResults(w, cfg, results)
			})
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Int("trials", 0, "Trials per measure")
	cmd.Flags().StringSlice("measures", nil, "Measures to test (default: all)")
	cmd.Flags().Int("workers", 0, "Parallel trial workers (default: number of CPUs)")
	cmd.Flags().String("db", "", "SQLite database to store results in")
	cmd.Flags().Bool("counts", false, "Include per-trial counts in json/yaml output")

	return cmd
}

// addSimulationFlags registers the per-trial parameters shared by run and trial.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("nodes", 0, "Nodes per network")
	cmd.Flags().Float64("edge-probability", 0, "Probability that each node pair is connected")
	cmd.Flags().Float64("infection-rate", 0, "Per-edge daily transmission probability")
	cmd.Flags().Int("days", 0, "Days the infection spreads")
	cmd.Flags().Int64("seed", 0, "Random seed (default: time based)")
}

// applySimulationFlags copies explicitly set flags over the config.
func applySimulationFlags(cmd *cobra.Command, cfg *montecarlo.Config) {
	flags := cmd.Flags()
	overrides := []struct {
		flag string
		key  string
	}{
		{"nodes", "simulation.node_count"},
		{"edge-probability", "simulation.edge_probability"},
		{"infection-rate", "simulation.infection_rate"},
		{"days", "simulation.days"},
		{"trials", "simulation.trials"},
		{"measures", "simulation.measures"},
		{"seed", "algorithm.random_seed"},
		{"workers", "performance.num_workers"},
		{"db", "storage.db_path"},
	}

	for _, o := range overrides {
		f := flags.Lookup(o.flag)
		if f == nil || !f.Changed {
			continue
		}
		switch o.flag {
		case "nodes", "days", "trials", "workers":
			v, _ := flags.GetInt(o.flag)
			cfg.Set(o.key, v)
		case "edge-probability", "infection-rate":
			v, _ := flags.GetFloat64(o.flag)
			cfg.Set(o.key, v)
		case "seed":
			v, _ := flags.GetInt64(o.flag)
			cfg.Set(o.key, v)
		case "measures":
			v, _ := flags.GetStringSlice(o.flag)
			cfg.Set(o.key, v)
		default:
			v, _ := flags.GetString(o.flag)
			cfg.Set(o.key, v)
		}
	}
}

func printResults(w io.Writer, cfg *montecarlo.Config, results []*montecarlo.Result) {
	fmt.Fprintf(w, "Networks = %d, Days = %d, Nodes = %d, EP = %v, IP = %v\n",
		cfg.Trials(), cfg.Days(), cfg.NodeCount(), cfg.EdgeProbability(), cfg.InfectionRate())
	for _, r := range results {
		fmt.Fprintf(w, "%s: %s\n", r.Measure, r.Statistics)
	}
}
