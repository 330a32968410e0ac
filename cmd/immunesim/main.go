package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/immunization-sim/pkg/montecarlo"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "immunesim",
		Short: "Monte Carlo immunization experiments on random networks",
		Long: `immunesim estimates how far an infection spreads through small binomial
random networks when the single most important node, under a chosen
centrality measure, is immunized before the outbreak.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newTrialCmd(),
		newMeasuresCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd, map[string]string{"version": version}, func(w io.Writer) {
				fmt.Fprintf(w, "immunesim version %s\n", version)
			})
		},
	}
}

// loadConfig builds the simulation config from defaults, the optional
// config file, IMMUNESIM_* environment variables and global flags.
func loadConfig(cmd *cobra.Command) (*montecarlo.Config, error) {
	cfg := montecarlo.NewConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Set("logging.level", level)
	}

	return cfg, nil
}

// writeOutput renders v as json or yaml, or calls text for the text format.
func writeOutput(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		text(out)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
