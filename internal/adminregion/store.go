package adminregion

import (
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

// Region is an assembled administrative boundary: its polygon set, bounding
// box, admin level, and the relation id it came from (spec §3).
type Region struct {
	RelationID int64
	Polygons   [][]coord.Coord
	Bounds     Bounds
	AdminLevel int
	Name       string
}

// indexedRegion adapts a Region for rtreego.Spatial, so the rtree can
// bound-box prefilter candidates before the exact geometry test.
type indexedRegion struct {
	region *Region
}

func (r *indexedRegion) Bounds() rtreego.Rect {
	b := r.region.Bounds
	const epsilon = 1.0 // 1 decimeter minimum extent for degenerate boxes
	minX, minY := float64(b.MinX), float64(b.MinY)
	lenX := float64(b.MaxX-b.MinX) + epsilon
	lenY := float64(b.MaxY-b.MinY) + epsilon
	rect, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	return rect
}

// nameEntry is a single row of the sorted (normalizedName, adminLevel,
// relationID) name index (spec §4.5).
type nameEntry struct {
	normalizedName string
	adminLevel     int
	relationID     int64
}

// Store is the read-only admin-region index: assembled regions keyed by
// relation id, a sorted name index for region-name lookup, a bounding-box
// R-tree for fast containment prefiltering, and SCB/NUTS-3 reverse maps
// (spec §3, and the original_source supplement described in SPEC_FULL.md §5.3).
type Store struct {
	regions map[int64]*Region
	names   []nameEntry // sorted by normalizedName, ties broken by adminLevel

	rtree *rtreego.Rtree

	scbToRelation   map[string]int64
	nuts3ToRelation map[string]int64
}

// Builder accumulates regions before Store.Build freezes them into the
// read-only, sorted/indexed form (mirrors ingest's single-writer discipline,
// spec §5).
type Builder struct {
	regions         []*Region
	scbToRelation   map[string]int64
	nuts3ToRelation map[string]int64
	blacklist       map[int64]bool
}

// NewBuilder creates an empty Builder. blacklist holds relation ids that
// should never enter the store, e.g. administrative boundaries that leak
// into an extract from just outside the target country; a nil blacklist
// accepts every relation.
func NewBuilder(blacklist map[int64]bool) *Builder {
	if blacklist == nil {
		blacklist = make(map[int64]bool)
	}
	return &Builder{
		scbToRelation:   make(map[string]int64),
		nuts3ToRelation: make(map[string]int64),
		blacklist:       blacklist,
	}
}

// AddRegion registers a fully-assembled region, skipping blacklisted ids.
func (b *Builder) AddRegion(r *Region) {
	if b.blacklist[r.RelationID] {
		return
	}
	b.regions = append(b.regions, r)
}

// AddSCBCode records relationID's SCB administrative code, skipping
// blacklisted ids.
func (b *Builder) AddSCBCode(code string, relationID int64) {
	if b.blacklist[relationID] {
		return
	}
	b.scbToRelation[code] = relationID
}

// AddNUTS3Code records relationID's NUTS-3 code, skipping blacklisted ids.
func (b *Builder) AddNUTS3Code(code string, relationID int64) {
	if b.blacklist[relationID] {
		return
	}
	b.nuts3ToRelation[code] = relationID
}

// Build freezes the accumulated regions into a read-only Store: builds the
// sorted name index and the bounding-box R-tree.
func (b *Builder) Build() *Store {
	s := &Store{
		regions:         make(map[int64]*Region, len(b.regions)),
		scbToRelation:   b.scbToRelation,
		nuts3ToRelation: b.nuts3ToRelation,
		rtree:           rtreego.NewTree(2, 25, 50),
	}

	for _, r := range b.regions {
		s.regions[r.RelationID] = r
		s.names = append(s.names, nameEntry{
			normalizedName: NormalizeName(r.Name),
			adminLevel:     r.AdminLevel,
			relationID:     r.RelationID,
		})
		s.rtree.Insert(&indexedRegion{region: r})
	}

	sort.Slice(s.names, func(i, j int) bool {
		if s.names[i].normalizedName != s.names[j].normalizedName {
			return s.names[i].normalizedName < s.names[j].normalizedName
		}
		// Ties: lowest admin_level (highest-level entity, e.g. county over
		// municipality) sorts first (spec §4.5).
		return s.names[i].adminLevel < s.names[j].adminLevel
	})

	return s
}

// Region returns the region for a relation id.
func (s *Store) Region(relationID int64) (*Region, bool) {
	r, ok := s.regions[relationID]
	return r, ok
}

// CandidatesNear returns the regions whose bounding box could contain pt,
// using the R-tree as a fast prefilter before the caller runs the exact
// PointInPolygons test.
func (s *Store) CandidatesNear(pt coord.Coord) []*Region {
	rect, _ := rtreego.NewRect(rtreego.Point{float64(pt.X), float64(pt.Y)}, []float64{1, 1})
	spatials := s.rtree.SearchIntersect(rect)
	out := make([]*Region, 0, len(spatials))
	for _, sp := range spatials {
		out = append(out, sp.(*indexedRegion).region)
	}
	return out
}

// Contains reports whether pt is inside relationID's assembled polygons,
// bounding-box rejecting first.
func (s *Store) Contains(relationID int64, pt coord.Coord) bool {
	r, ok := s.regions[relationID]
	if !ok {
		return false
	}
	if !r.Bounds.Contains(pt) {
		return false
	}
	return PointInPolygons(r.Polygons, pt)
}

// regionPrefixes and regionSuffixes are the normalization affixes (spec
// §4.5), in the order they must be tried, grounded on original_source's
// AdministrativeRegion::region_beginnings/region_endings (sweden.cpp).
var regionPrefixes = []string{"landskapet "}
var regionSuffixes = []string{"s län", " län", "s kommun", " kommun"}

// municipalitiesMissingS lists municipality names whose normalized form
// (after stripping "s län"/"s kommun") is missing the trailing 's' that the
// official name drops in common usage, so NormalizeName adds it back (spec
// §4.5; exact list grounded on original_source/sweden.cpp's
// municipalitiesMissingS).
var municipalitiesMissingS = map[string]bool{
	"alingså": true, "bengtsfor": true, "bollnä": true, "degerfor": true,
	"grum": true, "hagfor": true, "hofor": true, "hällefor": true,
	"höganä": true, "kramfor": true, "munkfor": true, "mönsterå": true,
	"robertsfor": true, "sotenä": true, "storfor": true, "strängnä": true,
	"torså": true, "tranå": true, "vännä": true, "borå": true, "västerå": true,
}

// NormalizeName lowercases name and strips the region-name affixes per
// spec §4.5, re-adding a dropped trailing 's' for the municipalities in
// municipalitiesMissingS.
func NormalizeName(name string) string {
	lower := strings.ToLower(name)

	for _, prefix := range regionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimPrefix(lower, prefix)
		}
	}

	for _, suffix := range regionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			trimmed := strings.TrimSuffix(lower, suffix)
			if municipalitiesMissingS[trimmed] {
				trimmed += "s"
			}
			return trimmed
		}
	}

	return lower
}

// Lookup resolves a normalized region name to a relation id and its admin
// level, via binary search over the sorted name index. Among ties on
// normalized name, the lowest admin_level (highest-level entity) wins
// (spec §4.5).
func (s *Store) Lookup(name string) (relationID int64, adminLevel int, ok bool) {
	normalized := NormalizeName(name)

	idx := sort.Search(len(s.names), func(i int) bool {
		return s.names[i].normalizedName >= normalized
	})
	if idx >= len(s.names) || s.names[idx].normalizedName != normalized {
		return 0, 0, false
	}
	// idx is already the first match since the slice is sorted by
	// (name, adminLevel ascending); the lowest admin_level among ties
	// sorts first.
	return s.names[idx].relationID, s.names[idx].adminLevel, true
}

// SCBCode returns the relation id for an SCB administrative code (spec §3's
// scb_areas reverse lookup, used by the road index's regional repair pass,
// §4.6).
func (s *Store) SCBCode(code string) (int64, bool) {
	id, ok := s.scbToRelation[code]
	return id, ok
}

// NUTS3Code returns the relation id for a NUTS-3 code (spec §3's
// nuts3_areas reverse lookup).
func (s *Store) NUTS3Code(code string) (int64, bool) {
	id, ok := s.nuts3ToRelation[code]
	return id, ok
}

// AllRegions returns every stored region (used by snapshot serialization).
func (s *Store) AllRegions() []*Region {
	out := make([]*Region, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, r)
	}
	return out
}

// SCBMappings returns the SCB code -> relation id map (used by snapshot
// serialization).
func (s *Store) SCBMappings() map[string]int64 { return s.scbToRelation }

// NUTS3Mappings returns the NUTS-3 code -> relation id map (used by
// snapshot serialization).
func (s *Store) NUTS3Mappings() map[string]int64 { return s.nuts3ToRelation }
