package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	import_pkg "github.com/namelink/internal/import"
	"github.com/namelink/internal/match"
)

func createLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [reference.csv] [name...]",
		Short: "Show the best reference name for each given name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			references, err := loadReferences(args[0], false)
			if err != nil {
				return err
			}
			engine, err := buildEngine(references)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBEST MATCH\tRATIO\tWINDOW\tEXACT")
			for _, name := range args[1:] {
				res := engine.Lookup(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%v\n", res.Query, res.Best, res.Score, res.Window, res.Exact)
			}
			return w.Flush()
		},
	}
}

func createWordsCmd() *cobra.Command {
	var probe string

	cmd := &cobra.Command{
		Use:   "words [dictionary] [pairs.csv]",
		Short: "Benchmark blocked word lookup against a naive scan",
		Long: `Find the best dictionary word for each misspelling in a correct,misspelling
CSV using the narrow lookup window, and compare the average lookup time with a
full scan of the dictionary.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := import_pkg.ReadWordListFile(args[0])
			if err != nil {
				return err
			}
			pairs, err := import_pkg.ReadWordPairsFile(args[1])
			if err != nil {
				return err
			}

			wm, err := match.NewWordMatcher(words, settings.Matching.LookupWindow, match.Metric(settings.Matching.Metric))
			if err != nil {
				return err
			}
			report := wm.Run(pairs, probe)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MISSPELLED WORD\tCORRECT WORD\tBEST MATCH FOUND\tMATCH RATIO")
			for _, r := range report.Results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\n", r.Misspelling, r.Correct, r.Best, r.Ratio)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\nnaive worst case: %.2f ms\n", ms(report.Naive))
			fmt.Printf("fast lookup avg time/word = %.2f ms\n", ms(report.AvgBlocked))
			fmt.Printf("speedup over naive case = %.2fx\n", report.Speedup)
			return nil
		},
	}

	cmd.Flags().StringVar(&probe, "probe", match.DefaultProbe, "word scanned against the whole dictionary for the naive timing")
	return cmd
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
