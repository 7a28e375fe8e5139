package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/namelink/internal/audit"
	"github.com/namelink/internal/cache"
	"github.com/namelink/internal/db"
	"github.com/namelink/internal/export"
	import_pkg "github.com/namelink/internal/import"
	"github.com/namelink/internal/match"
)

func newReader() *import_pkg.CSVReader {
	reader := import_pkg.NewCSVReader()
	reader.BirthYearOffset = settings.Matching.BirthYearOffset
	reader.Debug = settings.Debug
	return reader
}

// readPartial keeps the records read before a malformed row unless strict is
// set.
func readPartial(records []match.Record, err error, strict bool) ([]match.Record, error) {
	var perr *import_pkg.ParseError
	if err != nil && errors.As(err, &perr) && !strict {
		logger.Warnw("stopped at malformed row, continuing with records read so far",
			"source", perr.Source, "row", perr.Row, "records", len(records), "error", perr.Err)
		return records, nil
	}
	return records, err
}

func loadReferences(path string, strict bool) ([]match.Record, error) {
	records, err := newReader().ReadReferenceFile(path)
	return readPartial(records, err, strict)
}

func buildEngine(references []match.Record) (*match.Engine, error) {
	corpus, err := match.NewCorpus(references)
	if err != nil {
		return nil, err
	}
	logger.Infow("corpus loaded", "names", corpus.Len(), "records", corpus.Size())
	return match.NewEngine(corpus, settings.EngineConfig())
}

func openTracker(ctx context.Context) (*audit.Tracker, *db.Connection, error) {
	conn, err := db.Open(settings.Database.Driver, settings.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	tracker := audit.NewTracker(conn)
	if err := tracker.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return tracker, conn, nil
}

func createResolveCmd() *cobra.Command {
	var (
		outDir  string
		noColor bool
		noCache bool
		noStore bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [reference.csv] [query.csv]",
		Short: "Resolve query records against reference identities",
		Long: `Resolve every query record, then write matches.csv and
ambiguous_matches.csv and print the match percentages.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now()

			references, err := loadReferences(args[0], strict)
			if err != nil {
				return err
			}
			queries, err := newReader().ReadQueryFile(args[1])
			if queries, err = readPartial(queries, err, strict); err != nil {
				return err
			}

			engineCfg := settings.EngineConfig()
			key := cache.Key(references, queries, engineCfg)
			results := cache.New(settings.Cache.Dir)
			useCache := settings.Cache.Enabled && !noCache

			var outcome *match.Outcome
			if useCache {
				outcome, err = results.Get(key)
				switch {
				case err == nil:
					logger.Infow("using cached outcome", "key", key)
				case errors.Is(err, cache.ErrMiss):
					outcome = nil
				default:
					logger.Warnw("cache read failed", "error", err)
					outcome = nil
				}
			}

			if outcome == nil {
				engine, err := buildEngine(references)
				if err != nil {
					return err
				}
				outcome, err = engine.Resolve(ctx, queries)
				if err != nil {
					return err
				}
				if useCache {
					if err := results.Put(key, outcome); err != nil {
						logger.Warnw("cache write failed", "error", err)
					}
				}
			}

			exporter := export.NewExporter(outDir, noColor)
			paths, err := exporter.WriteCSV(outcome)
			if err != nil {
				return err
			}
			exporter.PrintSummary(os.Stdout, match.CalculateStats(outcome))
			for _, p := range paths {
				fmt.Printf("wrote %s\n", p)
			}

			if settings.Database.Driver != "" && !noStore {
				tracker, conn, err := openTracker(ctx)
				if err != nil {
					return err
				}
				defer conn.Close()

				runID, err := tracker.RecordRun(ctx, settings.Debug, audit.RunInfo{
					ReferenceSource: args[0],
					QuerySource:     args[1],
					References:      len(references),
					CacheKey:        key,
					Config:          engineCfg,
				}, outcome)
				if err != nil {
					return err
				}
				fmt.Printf("recorded run %s\n", runID)
			}

			logger.Infow("resolve finished", "took", time.Since(start))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore the result cache")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record the run in the database")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first malformed input row")
	return cmd
}
