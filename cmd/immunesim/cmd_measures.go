package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
)

func newMeasuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measures",
		Short: "List importance measures",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := centrality.NewRegistry().List()
			return writeOutput(cmd, names, func(w io.Writer) {
				for _, name := range names {
					fmt.Fprintln(w, name)
				}
			})
		},
	}
}
