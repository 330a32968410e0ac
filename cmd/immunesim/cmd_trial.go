package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

func newTrialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trial [measure]",
		Short: "Run and trace a single trial",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySimulationFlags(cmd, cfg)

			name := "degree"
			if len(args) == 1 {
				name = args[0]
			}
			measure := cfg.Registry().Lookup(name)
			seed := uint64(cfg.RandomSeed())

			trace, err := epidemic.Trace(montecarlo.TrialRNG(seed, 0), cfg.Params(measure))
			if err != nil {
				return err
			}

			out := struct {
				Measure string               `json:"measure" yaml:"measure"`
				Seed    uint64               `json:"seed" yaml:"seed"`
				Trace   *epidemic.TrialTrace `json:"trace" yaml:"trace"`
			}{string(measure.Name()), seed, trace}

			return writeOutput(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "measure=%s seed=%d edges=%d immune=%d seed_node=%d\n",
					measure.Name(), seed, trace.NumEdges, trace.Immune, trace.Seed)
				for day, count := range trace.Daily {
					fmt.Fprintf(w, "day %d: %d infected\n", day, count)
				}
				fmt.Fprintf(w, "infected nodes: %v\n", trace.Infected)
			})
		},
	}

	addSimulationFlags(cmd)
	return cmd
}
