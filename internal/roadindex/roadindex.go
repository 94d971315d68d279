// Package roadindex implements the road index (spec §4.6, C7):
// classification of ways into European/national/regional road buckets by
// their `ref` tag, closest-point queries, and the post-ingest regional
// repair pass for designations that carried no county prefix.
//
// Grounded on original_source/sweden.h's RoadType enum (Europe, National,
// then 21 regional Lan* codes, then Unknown) and sweden.cpp's
// europeanRoadNumberToIndex mapping table.
package roadindex

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

// RegionCode is one of Sweden's 21 county letter codes, in the fixed order
// of the original RoadType enum (grounded on original_source/sweden.h).
type RegionCode int

const (
	RegionM RegionCode = iota
	RegionK
	RegionI
	RegionH
	RegionG
	RegionN
	RegionO
	RegionF
	RegionE
	RegionD
	RegionAB
	RegionC
	RegionU
	RegionT
	RegionS
	RegionW
	RegionX
	RegionZ
	RegionY
	RegionAC
	RegionBD
	regionCount
)

var regionCodeNames = [regionCount]string{
	"M", "K", "I", "H", "G", "N", "O", "F", "E", "D",
	"AB", "C", "U", "T", "S", "W", "X", "Z", "Y", "AC", "BD",
}

func (r RegionCode) String() string {
	if r < 0 || int(r) >= int(regionCount) {
		return "?"
	}
	return regionCodeNames[r]
}

// regionCodeByLetters looks up the RegionCode for a letter pair/single
// letter, case-insensitively.
func regionCodeByLetters(letters string) (RegionCode, bool) {
	upper := strings.ToUpper(letters)
	for i, name := range regionCodeNames {
		if name == upper {
			return RegionCode(i), true
		}
	}
	return 0, false
}

// RoadKind classifies a designation as European, National, a specific
// region, or Unknown-regional (spec §4.6).
type RoadKind int

const (
	KindEuropean RoadKind = iota
	KindNational
	KindRegional
	KindUnknownRegional
)

// Designation is a single parsed road reference, e.g. "E4", "40", "AB 503".
type Designation struct {
	Kind   RoadKind
	Region RegionCode // valid only when Kind == KindRegional
	Number int
}

// europeanRoadNumbers maps the digit sequence following 'E' to its storage
// index, per original_source/sweden.cpp's europeanRoadNumberToIndex: 4, 6,
// 10, 12, 14, 16, 18, 20, 22 map to themselves; 45, 47, 55, 65 map to
// (n-40); 265 maps to 1.
var europeanRoadNumbers = map[int]int{
	4: 4, 6: 6, 10: 10, 12: 12, 14: 14, 16: 16, 18: 18, 20: 20, 22: 22,
	45: 5, 47: 7, 55: 15, 65: 25, 265: 1,
}

const europeanLen = 30
const nationalLen = 500

// ParseRef parses an OSM `ref` tag value into zero or more designations.
// Multiple designations may be separated by ';', ',', or '.' (the last
// being a link-road suffix, spec §4.6); each designation is classified per
// the rules in spec §4.6. A bare 'E' number not found in europeanRoadNumbers
// is reinterpreted as Östergötland (RegionE) regional traffic, matching the
// spec's note that an unmapped E-number is regional, not European.
func ParseRef(ref string) []Designation {
	var out []Designation
	for _, raw := range splitRef(ref) {
		d, ok := parseDesignation(strings.TrimSpace(raw))
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func splitRef(ref string) []string {
	return strings.FieldsFunc(ref, func(r rune) bool {
		return r == ';' || r == ',' || r == '.'
	})
}

func parseDesignation(raw string) (Designation, bool) {
	if raw == "" {
		return Designation{}, false
	}

	if raw[0] == 'E' || raw[0] == 'e' {
		digits := strings.TrimSpace(raw[1:])
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Designation{}, false
		}
		if _, ok := europeanRoadNumbers[n]; ok {
			return Designation{Kind: KindEuropean, Number: n}, true
		}
		// Unmapped E-number: reinterpreted as Östergötland regional (spec §4.6).
		return Designation{Kind: KindRegional, Region: RegionE, Number: n}, true
	}

	if isAllDigits(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Designation{}, false
		}
		if n < 500 {
			return Designation{Kind: KindNational, Number: n}, true
		}
		return Designation{Kind: KindUnknownRegional, Number: n}, true
	}

	// <letters> <digits>, letters being a county code.
	letters, digits := splitLettersDigits(raw)
	if letters == "" {
		return Designation{}, false
	}
	region, ok := regionCodeByLetters(letters)
	if !ok {
		return Designation{}, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Designation{}, false
	}
	return Designation{Kind: KindRegional, Region: region, Number: n}, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// splitLettersDigits splits "AB 503" / "AB503" into ("AB", "503").
func splitLettersDigits(s string) (letters, digits string) {
	s = strings.ReplaceAll(s, " ", "")
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	return s[:i], s[i:]
}

// WayRef is the information needed to classify and spatially index one way.
// NodeIDs, when present, is parallel to Coords and lets closest-point
// queries report the actual node id nearest the query point rather than
// just the containing way.
type WayRef struct {
	ID      int64
	Coords  []coord.Coord
	NodeIDs []int64
}

// indexedWay adapts a way for rtreego prefiltering.
type indexedWay struct {
	id     int64
	coords []coord.Coord
}

func (w *indexedWay) Bounds() rtreego.Rect {
	minX, minY := w.coords[0].X, w.coords[0].Y
	maxX, maxY := minX, minY
	for _, c := range w.coords[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	const epsilon = 1.0
	rect, _ := rtreego.NewRect(
		rtreego.Point{float64(minX), float64(minY)},
		[]float64{float64(maxX-minX) + epsilon, float64(maxY-minY) + epsilon},
	)
	return rect
}

// bucket holds the ways assigned to one (kind, region, number) slot plus an
// R-tree over their bounding boxes. closestInBucket does not consult the
// R-tree; it scans every node of every way in the bucket.
type bucket struct {
	ways  []WayRef
	rtree *rtreego.Rtree
}

func newBucket() *bucket {
	return &bucket{rtree: rtreego.NewTree(2, 5, 25)}
}

func (b *bucket) add(w WayRef) {
	b.ways = append(b.ways, w)
	if len(w.Coords) > 0 {
		b.rtree.Insert(&indexedWay{id: w.ID, coords: w.Coords})
	}
}

// Index is the road index: European roads in a fixed array, national roads
// in a flat array, regional roads in a lazily-allocated 3-dim structure
// (spec §4.6).
type Index struct {
	european [europeanLen]*bucket
	national [nationalLen]*bucket
	regional map[RegionCode]map[int]*bucket

	// unknownRegional holds Unknown-regional ways by number, pending the
	// repair pass.
	unknownRegional map[int]*bucket

	blacklist map[int64]bool
}

// NewIndex creates an empty Index, with the blacklist of known-noisy or
// out-of-country way ids applied during ingest (spec §4.6).
func NewIndex(blacklist map[int64]bool) *Index {
	if blacklist == nil {
		blacklist = make(map[int64]bool)
	}
	return &Index{
		regional:        make(map[RegionCode]map[int]*bucket),
		unknownRegional: make(map[int]*bucket),
		blacklist:       blacklist,
	}
}

// Classify inspects a way's highway/ref tags and, if it qualifies as a road
// (spec §4.6: highway in the road-type set AND a ref value present),
// returns its parsed designations.
func Classify(highway, ref string) []Designation {
	switch highway {
	case "motorway", "trunk", "primary", "secondary", "tertiary",
		"unclassified", "residential", "service":
		if ref == "" {
			return nil
		}
		return ParseRef(ref)
	default:
		return nil
	}
}

// Add registers way w under every designation it carries, skipping
// blacklisted ids (spec §4.6).
func (idx *Index) Add(w WayRef, designations []Designation) {
	if idx.blacklist[w.ID] {
		return
	}
	for _, d := range designations {
		switch d.Kind {
		case KindEuropean:
			slot, ok := europeanRoadNumbers[d.Number]
			if !ok || slot < 0 || slot >= europeanLen {
				continue
			}
			if idx.european[slot] == nil {
				idx.european[slot] = newBucket()
			}
			idx.european[slot].add(w)
		case KindNational:
			if d.Number < 0 || d.Number >= nationalLen {
				continue
			}
			if idx.national[d.Number] == nil {
				idx.national[d.Number] = newBucket()
			}
			idx.national[d.Number].add(w)
		case KindRegional:
			idx.regionalBucket(d.Region, d.Number, true).add(w)
		case KindUnknownRegional:
			if idx.unknownRegional[d.Number] == nil {
				idx.unknownRegional[d.Number] = newBucket()
			}
			idx.unknownRegional[d.Number].add(w)
		}
	}
}

func (idx *Index) regionalBucket(region RegionCode, number int, create bool) *bucket {
	byNumber, ok := idx.regional[region]
	if !ok {
		if !create {
			return nil
		}
		byNumber = make(map[int]*bucket)
		idx.regional[region] = byNumber
	}
	b, ok := byNumber[number]
	if !ok {
		if !create {
			return nil
		}
		b = newBucket()
		byNumber[number] = b
	}
	return b
}

// RegionContainer answers whether a point falls within exactly one SCB
// county for the regional repair pass (spec §4.6). Implemented by
// internal/adminregion.Store in production; kept as a narrow interface
// here to avoid a dependency cycle and to keep the repair pass testable in
// isolation.
type RegionContainer interface {
	// CountiesContaining returns the region codes whose polygon contains pt.
	CountiesContaining(pt coord.Coord) []RegionCode
}

// FixUnlabeledRegionalRoads is the regional repair pass (spec §4.6):
// for each way in the Unknown-regional bucket, take its middle node, query
// admin-region containment for the SCB counties containing it, and if
// exactly one contains it, move the way into that county's regional bucket.
func (idx *Index) FixUnlabeledRegionalRoads(regions RegionContainer) {
	for number, b := range idx.unknownRegional {
		remaining := b.ways[:0]
		for _, w := range b.ways {
			mid := middleCoord(w.Coords)
			counties := regions.CountiesContaining(mid)
			if len(counties) == 1 {
				idx.regionalBucket(counties[0], number, true).add(w)
				continue
			}
			remaining = append(remaining, w)
		}
		b.ways = remaining
	}
}

func middleCoord(coords []coord.Coord) coord.Coord {
	if len(coords) == 0 {
		return coord.Coord{}
	}
	return coords[len(coords)/2]
}

// ClosestResult is the outcome of a closest-point query (spec §4.6).
type ClosestResult struct {
	NodeID     int64
	Coord      coord.Coord // the actual closest point on the road, not the place's own center
	DistanceM  float64
	RoadNumber int
	Region     RegionCode // set when the match came from a regional bucket
	IsRegional bool
}

// ClosestRoadNode enumerates all ways assigned to the designation and
// returns the closest node to pt, with its distance in meters (spec §4.6).
// For Unknown-regional designations (d.Kind == KindUnknownRegional, used
// before the repair pass has run, or for numbers the repair pass could not
// resolve), every regional bucket carrying that number is searched and the
// region of the closest match is returned.
func (idx *Index) ClosestRoadNode(pt coord.Coord, d Designation) (ClosestResult, bool) {
	switch d.Kind {
	case KindEuropean:
		slot, ok := europeanRoadNumbers[d.Number]
		if !ok {
			return ClosestResult{}, false
		}
		return closestInBucket(idx.european[slot], pt, d.Number)
	case KindNational:
		if d.Number < 0 || d.Number >= nationalLen {
			return ClosestResult{}, false
		}
		return closestInBucket(idx.national[d.Number], pt, d.Number)
	case KindRegional:
		b := idx.regionalBucket(d.Region, d.Number, false)
		res, ok := closestInBucket(b, pt, d.Number)
		if ok {
			res.Region = d.Region
			res.IsRegional = true
		}
		return res, ok
	case KindUnknownRegional:
		return idx.closestAcrossRegions(pt, d.Number)
	default:
		return ClosestResult{}, false
	}
}

func (idx *Index) closestAcrossRegions(pt coord.Coord, number int) (ClosestResult, bool) {
	best := ClosestResult{}
	found := false
	for region, byNumber := range idx.regional {
		b, ok := byNumber[number]
		if !ok {
			continue
		}
		res, ok := closestInBucket(b, pt, number)
		if !ok {
			continue
		}
		res.Region = region
		res.IsRegional = true
		if !found || res.DistanceM < best.DistanceM {
			best = res
			found = true
		}
	}
	return best, found
}

func closestInBucket(b *bucket, pt coord.Coord, number int) (ClosestResult, bool) {
	if b == nil || len(b.ways) == 0 {
		return ClosestResult{}, false
	}

	var bestNode int64
	var bestCoord coord.Coord
	bestSq := int64(-1)
	for _, w := range b.ways {
		for i, c := range w.Coords {
			sq := coord.DistanceGridSq(pt, c)
			if bestSq < 0 || sq < bestSq {
				bestSq = sq
				bestCoord = c
				if i < len(w.NodeIDs) {
					bestNode = w.NodeIDs[i]
				} else {
					bestNode = w.ID
				}
			}
		}
	}
	if bestSq < 0 {
		return ClosestResult{}, false
	}
	return ClosestResult{
		NodeID:     bestNode,
		Coord:      bestCoord,
		DistanceM:  math.Sqrt(float64(bestSq)) / 10.0,
		RoadNumber: number,
	}, true
}

// String renders a designation for logging/debugging.
func (d Designation) String() string {
	switch d.Kind {
	case KindEuropean:
		return fmt.Sprintf("E%d", d.Number)
	case KindNational:
		return fmt.Sprintf("%d", d.Number)
	case KindRegional:
		return fmt.Sprintf("%s%d", d.Region, d.Number)
	default:
		return fmt.Sprintf("unknown-regional:%d", d.Number)
	}
}
