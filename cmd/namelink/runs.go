package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func requireDatabase() error {
	if settings.Database.Driver == "" {
		return fmt.Errorf("no database configured: set database.driver and database.dsn or NAMELINK_DB_DRIVER and NAMELINK_DB_DSN")
	}
	return nil
}

func createRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded resolution runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(); err != nil {
				return err
			}
			tracker, conn, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			runs, err := tracker.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tQUERIES\tMATCHED\tAMBIGUOUS\tQUERY SOURCE")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Queries, r.Matched, r.Ambiguous, r.QuerySource)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.AddCommand(createRunsShowCmd())
	return cmd
}

func createRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the tier and method breakdown of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(); err != nil {
				return err
			}
			tracker, conn, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			run, err := tracker.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stats, err := tracker.GetRunStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Run %s\n", run.ID)
			fmt.Printf("  started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("  sources:   %s -> %s\n", run.QuerySource, run.ReferenceSource)
			fmt.Printf("  queries:   %d\n", run.Queries)
			fmt.Printf("  avg total: %.3f\n", stats.AvgTotal)
			for _, section := range []struct {
				title  string
				counts map[string]int
			}{{"by tier", stats.ByTier}, {"by method", stats.ByMethod}} {
				fmt.Printf("  %s:\n", section.title)
				keys := make([]string, 0, len(section.counts))
				for k := range section.counts {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Printf("    %-10s %d\n", k, section.counts[k])
				}
			}
			return nil
		},
	}
}

func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(); err != nil {
				return err
			}
			tracker, conn, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Printf("Database connection successful! (%s)\n", conn.Driver)
			runs, err := tracker.ListRuns(cmd.Context(), 500)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded runs: %d\n", len(runs))
			return nil
		},
	}
}
