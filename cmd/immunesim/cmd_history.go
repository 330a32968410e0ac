package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/immunization-sim/pkg/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored aggregate runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("db")
			if path == "" {
				path = cfg.DBPath()
			}
			if path == "" {
				return fmt.Errorf("no database configured: use --db or storage.db_path")
			}

			s, err := store.Open(path)
			if err != nil {
				return err
			}
			defer s.Close()

			measure, _ := cmd.Flags().GetString("measure")
			limit, _ := cmd.Flags().GetInt("limit")
			records, err := s.List(cmd.Context(), measure, limit)
			if err != nil {
				return err
			}

			return writeOutput(cmd, records, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tMEASURE\tNODES\tEP\tIP\tDAYS\tTRIALS\tSUMMARY")
				for _, rec := range records {
					r := rec.Result
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%v\t%d\t%d\t%s\n",
						rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04"), r.Measure,
						r.NodeCount, r.EdgeProbability, r.InfectionRate, r.Days, r.Trials, r.Statistics)
				}
				tw.Flush()
			})
		},
	}

	cmd.Flags().String("db", "", "SQLite database (default: storage.db_path)")
	cmd.Flags().String("measure", "", "Only show runs for this measure")
	cmd.Flags().Int("limit", 20, "Maximum runs to show (0 for all)")
	return cmd
}
