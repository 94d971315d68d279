// Package snapshot implements the durable on-disk representation of a
// World (spec §4.7, C8): eight files per map name, some gzip-compressed,
// loaded concurrently with the admin-region file joined last.
package snapshot

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/adminregion"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/idstore"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/nametrie"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/roadindex"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// presenceThreshold is the minimum file size, in bytes, below which a
// snapshot file is treated as missing and a full re-ingest is triggered
// (spec §4.7).
const presenceThreshold = 16

// suffixes are the eight file suffixes, spec §4.7's table. Save writes all
// eight concurrently; Load reads the first seven concurrently and reads
// sweden, listed last, after they have finished.
var suffixes = []string{"texttree", "n2c", "nn", "wn", "rn", "w2n", "relmem", "sweden"}

var gzipped = map[string]bool{
	"texttree": false,
	"n2c":      true,
	"nn":       true,
	"wn":       true,
	"rn":       true,
	"w2n":      true,
	"relmem":   false,
	"sweden":   true,
}

// Paths locates the eight snapshot files for one map under tempdir (spec
// §6: "<mapname>.<suffix>").
type Paths struct {
	Dir     string
	MapName string
}

func (p Paths) path(suffix string) string {
	return filepath.Join(p.Dir, p.MapName+"."+suffix)
}

// Present reports whether every snapshot file exists and is at least
// presenceThreshold bytes (spec §4.7); if false, ingest must run from PBF.
func Present(p Paths) bool {
	for _, suffix := range suffixes {
		info, err := os.Stat(p.path(suffix))
		if err != nil || info.Size() < presenceThreshold {
			return false
		}
	}
	return true
}

// Save writes all eight snapshot files, one OS thread (goroutine) per file
// as spec §5 prescribes for "snapshot files ... on save/load", joining
// deterministically before returning.
func Save(w *world.World, p Paths) error {
	writers := map[string]func(io.Writer) error{
		"texttree": func(out io.Writer) error { return w.NameTrie.WriteTo(out) },
		"n2c":      func(out io.Writer) error { return w.NodeCoord.WriteTo(out, coordCodec) },
		"nn":       func(out io.Writer) error { return w.NodeNames.WriteTo(out, stringCodec) },
		"wn":       func(out io.Writer) error { return w.WayNames.WriteTo(out, stringCodec) },
		"rn":       func(out io.Writer) error { return w.RelNames.WriteTo(out, stringCodec) },
		"w2n":      func(out io.Writer) error { return w.WayNodes.WriteTo(out, wayNodesCodec) },
		"relmem":   func(out io.Writer) error { return w.RelMembers.WriteTo(out, relMemCodec) },
		"sweden": func(out io.Writer) error {
			if err := w.AdminRegions.WriteTo(out); err != nil {
				return err
			}
			return w.Roads.WriteTo(out)
		},
	}
	return runPerFile(suffixes, func(suffix string) error {
		return writeFile(p.path(suffix), gzipped[suffix], writers[suffix])
	})
}

// Load reads the seven other snapshot files concurrently, then reads the
// admin-region (`.sweden`) file last (spec §4.7). Decoding `.sweden` does
// not read any of the other indices.
func Load(p Paths, grid coord.Grid) (*world.World, error) {
	w := &world.World{Grid: grid}

	independent := []string{"texttree", "n2c", "nn", "wn", "rn", "w2n", "relmem"}
	readers := map[string]func(io.Reader) error{
		"texttree": func(in io.Reader) (err error) { w.NameTrie, err = nametrie.ReadFrom(in); return },
		"n2c":      func(in io.Reader) (err error) { w.NodeCoord, err = idstore.ReadFrom(in, coordCodec); return },
		"nn":       func(in io.Reader) (err error) { w.NodeNames, err = idstore.ReadFrom(in, stringCodec); return },
		"wn":       func(in io.Reader) (err error) { w.WayNames, err = idstore.ReadFrom(in, stringCodec); return },
		"rn":       func(in io.Reader) (err error) { w.RelNames, err = idstore.ReadFrom(in, stringCodec); return },
		"w2n":      func(in io.Reader) (err error) { w.WayNodes, err = idstore.ReadFrom(in, wayNodesCodec); return },
		"relmem":   func(in io.Reader) (err error) { w.RelMembers, err = idstore.ReadFrom(in, relMemCodec); return },
	}

	if err := runPerFile(independent, func(suffix string) error {
		return readFile(p.path(suffix), gzipped[suffix], readers[suffix])
	}); err != nil {
		return nil, err
	}

	if err := readFile(p.path("sweden"), gzipped["sweden"], func(in io.Reader) error {
		regions, err := adminregion.ReadFrom(in)
		if err != nil {
			return err
		}
		roads, err := roadindex.ReadFrom(in)
		if err != nil {
			return err
		}
		w.AdminRegions = regions
		w.Roads = roads
		return nil
	}); err != nil {
		return nil, err
	}

	return w, nil
}

// runPerFile runs fn(suffix) for every suffix on its own goroutine and
// joins before returning, collecting the first error encountered (spec §5's
// "one thread per snapshot file").
func runPerFile(names []string, fn func(suffix string) error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(names))
	for i, suffix := range names {
		wg.Add(1)
		go func(i int, suffix string) {
			defer wg.Done()
			errs[i] = fn(suffix)
		}(i, suffix)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("snapshot: %s: %w", names[i], err)
		}
	}
	return nil
}

func writeFile(path string, compress bool, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var out io.Writer = bw
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(bw)
		out = gz
	}

	if err := write(out); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readFile(path string, compress bool, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var in io.Reader = bufio.NewReader(f)
	if compress {
		gz, err := gzip.NewReader(in)
		if err != nil {
			return err
		}
		defer gz.Close()
		in = gz
	}

	return read(in)
}
