package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/config"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/httpapi"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/ingest"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/obslog"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/snapshot"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/tokenize"
	"github.com/thomasfischer-his/pbflookup-sub000/pkg/engine"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the indices and serve the POST / query contract over HTTP",
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

			if cfg.HTTPPort == 0 {
				return fmt.Errorf("serve: http_port is not set; use the query subcommand for test-set mode")
			}

			paths := snapshot.Paths{Dir: cfg.TempDir, MapName: cfg.MapName}
			if !snapshot.Present(paths) {
				return fmt.Errorf("serve: no snapshot for %q in %q, run 'pbflookup ingest' first", cfg.MapName, cfg.TempDir)
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
			srv := httpapi.NewServer(eng, logger)

			addr := net.JoinHostPort(resolveInterface(cfg.HTTPInterface), fmt.Sprintf("%d", cfg.HTTPPort))
			logger.Info("serving", zap.String("addr", addr))
			return srv.Listen(addr)
		},
	}
}

// resolveInterface maps spec §6's http_interface enum (any/local/loop, or
// a dotted-quad) to a bind address.
func resolveInterface(iface string) string {
	switch iface {
	case "any":
		return "0.0.0.0"
	case "local", "loop":
		return "127.0.0.1"
	case "":
		return "127.0.0.1"
	default:
		return iface
	}
}
