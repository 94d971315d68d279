package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd builds the pbflookup command tree: ingest, serve, query.
// Every subcommand reads the same viper-backed config surface (spec §6).
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pbflookup",
		Short: "Resolve free-form Swedish place references to coordinates from an OSM PBF extract",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the config file (yaml/json/toml)")

	root.AddCommand(newIngestCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newQueryCmd())

	return root
}
