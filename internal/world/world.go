// Package world bundles the nine read-only indices built by ingest (spec
// §3, §4.2-§4.7) into a single immutable value the query engine holds for
// the lifetime of the process.
package world

import (
	"github.com/thomasfischer-his/pbflookup-sub000/internal/adminregion"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/idstore"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/nametrie"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/roadindex"
)

// World is the frozen set of indices a query is served against. Every field
// is built under single-writer discipline during ingest then never mutated
// (spec §5: "query-time access requires no locks").
type World struct {
	NodeCoord    *idstore.Store[coord.Coord]
	WayNodes     *idstore.Store[model.WayNodes]
	RelMembers   *idstore.Store[model.RelationMem]
	NodeNames    *idstore.Store[string]
	WayNames     *idstore.Store[string]
	RelNames     *idstore.Store[string]
	NameTrie     *nametrie.Trie
	AdminRegions *adminregion.Store
	Roads        *roadindex.Index
	Grid         coord.Grid
}

// regionContainerAdapter satisfies roadindex.RegionContainer atop an
// adminregion.Store plus its SCB reverse map, bridging the two packages
// without creating an import cycle between roadindex and adminregion.
type regionContainerAdapter struct {
	regions *adminregion.Store
}

// CountiesContaining returns the regional road-type codes of every county
// with an SCB-coded region whose polygon contains pt (spec §4.6's regional
// repair pass). It walks the known SCB mappings rather than every region;
// county (two-digit) and municipality (four-digit) codes both map to their
// county by the first two digits, and each county is reported once.
func (a regionContainerAdapter) CountiesContaining(pt coord.Coord) []roadindex.RegionCode {
	var out []roadindex.RegionCode
	seen := make(map[roadindex.RegionCode]bool)
	for code, relationID := range a.regions.SCBMappings() {
		if !a.regions.Contains(relationID, pt) {
			continue
		}
		region, ok := scbCodeToRegionCode(code)
		if !ok || seen[region] {
			continue
		}
		seen[region] = true
		out = append(out, region)
	}
	return out
}

// scbCodeToRegionCode maps a two-digit SCB county-code prefix to the
// regional road-type enum (grounded on original_source/sweden.cpp's county
// code table, same ordering as roadindex.RegionCode).
func scbCodeToRegionCode(scbCode string) (roadindex.RegionCode, bool) {
	if len(scbCode) < 2 {
		return 0, false
	}
	prefix := scbCode[:2]
	code, ok := scbCountyPrefix[prefix]
	return code, ok
}

var scbCountyPrefix = map[string]roadindex.RegionCode{
	"01": roadindex.RegionAB, "03": roadindex.RegionC, "04": roadindex.RegionD,
	"05": roadindex.RegionE, "06": roadindex.RegionF, "07": roadindex.RegionG,
	"08": roadindex.RegionH, "09": roadindex.RegionI, "10": roadindex.RegionK,
	"12": roadindex.RegionM, "13": roadindex.RegionN, "14": roadindex.RegionO,
	"17": roadindex.RegionS, "18": roadindex.RegionT, "19": roadindex.RegionU,
	"20": roadindex.RegionW, "21": roadindex.RegionX, "22": roadindex.RegionY,
	"23": roadindex.RegionZ, "24": roadindex.RegionAC, "25": roadindex.RegionBD,
}

// FixRoadRegions runs the post-ingest regional repair pass (spec §4.6)
// against this world's admin-region store.
func (w *World) FixRoadRegions() {
	w.Roads.FixUnlabeledRegionalRoads(regionContainerAdapter{regions: w.AdminRegions})
}

// ResolveElement returns the canonical display name for an element, looked
// up in whichever of NodeNames/WayNames/RelNames matches its kind.
func (w *World) ResolveElement(e model.OSMElement) (string, bool) {
	switch e.Kind {
	case model.KindNode:
		return w.NodeNames.Get(uint64(e.ID))
	case model.KindWay:
		return w.WayNames.Get(uint64(e.ID))
	case model.KindRelation:
		return w.RelNames.Get(uint64(e.ID))
	default:
		return "", false
	}
}
