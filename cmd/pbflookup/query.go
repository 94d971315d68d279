package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/config"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/ingest"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/obslog"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/snapshot"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/tokenize"
	"github.com/thomasfischer-his/pbflookup-sub000/pkg/engine"
)

// testSetTolerance is how close (meters) an engine result must land to a
// test set's expected coordinate to count as a pass, using the spherical
// geodesic distance between (lon,lat) pairs.
const testSetTolerance = 250.0

func newQueryCmd() *cobra.Command {
	var duplicateProximity float64

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Resolve a single query, or every configured test set if no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := obslog.NewFile(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			paths := snapshot.Paths{Dir: cfg.TempDir, MapName: cfg.MapName}
			if !snapshot.Present(paths) {
				return fmt.Errorf("query: no snapshot for %q in %q, run 'pbflookup ingest' first", cfg.MapName, cfg.TempDir)
			}
			w, err := snapshot.Load(paths, ingest.DefaultGrid())
			if err != nil {
				return err
			}

			var stopwords *tokenize.Stopwords
			if cfg.StopwordFilename != "" {
				stopwords, err = tokenize.LoadStopwords(cfg.StopwordFilename)
				if err != nil {
					return err
				}
			}
			eng := engine.New(w, stopwords)

			if len(args) > 0 {
				return runSingleQuery(eng, args[0], duplicateProximity)
			}
			return runTestSets(eng, cfg.TestSets, duplicateProximity, logger)
		},
	}

	cmd.Flags().Float64Var(&duplicateProximity, "duplicate-proximity", 50.0, "meters within which lower-quality duplicate results are dropped")
	return cmd
}

func runSingleQuery(eng *engine.Engine, text string, duplicateProximity float64) error {
	results := eng.FindResults(text, duplicateProximity, 20)
	for _, r := range results {
		lon, lat := eng.ToLonLat(r.Coord.X, r.Coord.Y)
		fmt.Printf("%.6f %.6f %.3f %s\n", lon, lat, r.Quality, r.Origin)
	}
	return nil
}

func runTestSets(eng *engine.Engine, sets []config.TestSet, duplicateProximity float64, logger *zap.Logger) error {
	passed := 0
	for _, set := range sets {
		results := eng.FindResults(set.Text, duplicateProximity, 20)
		ok := testSetMatches(eng, results, set)
		if ok {
			passed++
		}
		logger.Info("test set evaluated",
			zap.String("name", set.Name),
			zap.String("text", set.Text),
			zap.Bool("pass", ok),
			zap.Int("candidates", len(results)),
		)
	}
	fmt.Printf("%d/%d test sets passed\n", passed, len(sets))
	return nil
}

// testSetMatches reports whether any result lands within testSetTolerance
// meters of any of the test set's expected (latitude, longitude) pairs.
func testSetMatches(eng *engine.Engine, results []aggregate.Result, set config.TestSet) bool {
	for _, r := range results {
		lon, lat := eng.ToLonLat(r.Coord.X, r.Coord.Y)
		for i := range set.Latitude {
			if i >= len(set.Longitude) {
				break
			}
			if coord.GeodesicDistance(lon, lat, set.Longitude[i], set.Latitude[i]) <= testSetTolerance {
				return true
			}
		}
	}
	return false
}
