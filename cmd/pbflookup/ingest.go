package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/config"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/ingest"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/obslog"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/snapshot"
)

func newIngestCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build (or rebuild) the on-disk indices from an OSM PBF extract",
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
			if !force && snapshot.Present(paths) {
				logger.Info("snapshot already present, skipping ingest", zap.String("tempdir", cfg.TempDir))
				return nil
			}

			f, err := os.Open(cfg.OSMPBFFilename)
			if err != nil {
				return fmt.Errorf("ingest: open %s: %w", cfg.OSMPBFFilename, err)
			}
			defer f.Close()

			w, err := ingest.Run(context.Background(), f, ingest.Options{Logger: logger})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
				return fmt.Errorf("ingest: create tempdir: %w", err)
			}
			if err := snapshot.Save(w, paths); err != nil {
				return fmt.Errorf("ingest: save snapshot: %w", err)
			}
			logger.Info("ingest complete", zap.String("mapname", cfg.MapName))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "re-ingest even if a snapshot is already present")
	return cmd
}
