// Command pbflookup ingests a Swedish OSM PBF extract into the eight
// on-disk indices and serves (or batch-evaluates) free-form Swedish text
// queries against them (spec.md §1, §6).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
