// Package adminregion implements the admin-region store: polygon assembly
// from relation members, point-in-polygon containment tests, and
// region-name lookup.
//
// Polygon assembly matches way endpoints to build closed rings: ways
// attached by whichever endpoint matches, in any order, rather than
// assuming a pre-sorted edge list.
package adminregion

import "github.com/thomasfischer-his/pbflookup-sub000/internal/coord"

// WayRef is a single member way contributing to a region's boundary: its
// simplified node coordinates in way order, tagged outer or inner.
type WayRef struct {
	Coords []coord.Coord
	Inner  bool
}

// AssemblePolygons builds polygon rings from a relation's outer/inner member
// ways, per the algorithm in spec §4.5:
//
//  1. Attempt to attach each unprocessed way to an existing polygon by
//     matching endpoints, in any of the four orientations; start a new
//     polygon when none matches.
//  2. Iterate until all ways are attached or a full pass makes no progress,
//     up to len(ways)+5 iterations.
//  3. Merge polygons whose endpoints coincide.
//  4. Drop the redundant closing vertex of each polygon.
//
// Ways that never found an attachment point (malformed relations with
// missing members) are emitted as their own degraded, possibly-open
// polygon rather than rejecting the whole relation.
func AssemblePolygons(ways []WayRef) [][]coord.Coord {
	polygons := make([][]coord.Coord, 0, len(ways))
	attached := make([]bool, len(ways))
	remaining := len(ways)

	maxIter := len(ways) + 5
	for iter := 0; iter < maxIter && remaining > 0; iter++ {
		progress := false

		for i, w := range ways {
			if attached[i] || len(w.Coords) == 0 {
				continue
			}
			if tryAttach(polygons, w.Coords) {
				attached[i] = true
				remaining--
				progress = true
			}
		}

		if remaining == 0 {
			break
		}
		if !progress {
			// No existing polygon could absorb any remaining way: seed a
			// new polygon with the first unattached one and keep going.
			for i, w := range ways {
				if !attached[i] {
					polygons = append(polygons, cloneCoords(w.Coords))
					attached[i] = true
					remaining--
					break
				}
			}
		}
	}

	// Anything still unattached after the iteration budget is emitted as
	// its own (possibly open) polygon rather than dropped.
	for i, w := range ways {
		if !attached[i] && len(w.Coords) > 0 {
			polygons = append(polygons, cloneCoords(w.Coords))
		}
	}

	polygons = mergeCoincidentPolygons(polygons)
	for i := range polygons {
		polygons[i] = dropRedundantClosingVertex(polygons[i])
	}
	return polygons
}

func cloneCoords(c []coord.Coord) []coord.Coord {
	out := make([]coord.Coord, len(c))
	copy(out, c)
	return out
}

// tryAttach attempts to append wc to one of polygons by matching an
// endpoint, in place. Returns true if attached.
func tryAttach(polygons [][]coord.Coord, wc []coord.Coord) bool {
	if len(wc) == 0 {
		return false
	}
	wFirst, wLast := wc[0], wc[len(wc)-1]

	for i, poly := range polygons {
		if len(poly) == 0 {
			continue
		}
		polyFirst, polyLast := poly[0], poly[len(poly)-1]

		switch {
		case polyLast == wFirst:
			polygons[i] = append(poly, wc[1:]...)
			return true
		case polyLast == wLast:
			polygons[i] = append(poly, reverseCoords(wc)[1:]...)
			return true
		case polyFirst == wLast:
			polygons[i] = append(cloneCoords(wc[:len(wc)-1]), poly...)
			return true
		case polyFirst == wFirst:
			polygons[i] = append(reverseCoords(wc)[:len(wc)-1], poly...)
			return true
		}
	}
	return false
}

func reverseCoords(c []coord.Coord) []coord.Coord {
	out := make([]coord.Coord, len(c))
	for i, v := range c {
		out[len(c)-1-i] = v
	}
	return out
}

// mergeCoincidentPolygons merges polygons whose endpoints coincide, in any
// of the four orientations, repeating until no further merges apply
// (spec §4.5 step 3).
func mergeCoincidentPolygons(polygons [][]coord.Coord) [][]coord.Coord {
	for {
		merged := false
		for i := 0; i < len(polygons) && !merged; i++ {
			for j := i + 1; j < len(polygons); j++ {
				if combined, ok := mergeTwo(polygons[i], polygons[j]); ok {
					polygons[i] = combined
					polygons = append(polygons[:j], polygons[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			break
		}
	}
	return polygons
}

func mergeTwo(a, b []coord.Coord) ([]coord.Coord, bool) {
	if len(a) == 0 || len(b) == 0 {
		return nil, false
	}
	aFirst, aLast := a[0], a[len(a)-1]
	bFirst, bLast := b[0], b[len(b)-1]

	switch {
	case aLast == bFirst:
		return append(cloneCoords(a), b[1:]...), true
	case aLast == bLast:
		return append(cloneCoords(a), reverseCoords(b)[1:]...), true
	case aFirst == bLast:
		return append(cloneCoords(b), a[1:]...), true
	case aFirst == bFirst:
		return append(reverseCoords(a), b[1:]...), true
	default:
		return nil, false
	}
}

// dropRedundantClosingVertex removes a polygon's final vertex if it
// logically coincides with the first (spec §3: "the coincident duplicate is
// dropped on store").
func dropRedundantClosingVertex(poly []coord.Coord) []coord.Coord {
	if len(poly) >= 2 && poly[0] == poly[len(poly)-1] {
		return poly[:len(poly)-1]
	}
	return poly
}

// Bounds is the axis-aligned bounding box of a region's polygon set,
// computed during assembly for fast rejection (spec §4.5).
type Bounds struct {
	MinX, MinY, MaxX, MaxY int32
}

// ComputeBounds returns the bounding box of all vertices across polygons.
func ComputeBounds(polygons [][]coord.Coord) Bounds {
	b := Bounds{}
	first := true
	for _, poly := range polygons {
		for _, v := range poly {
			if first {
				b = Bounds{MinX: v.X, MinY: v.Y, MaxX: v.X, MaxY: v.Y}
				first = false
				continue
			}
			if v.X < b.MinX {
				b.MinX = v.X
			}
			if v.X > b.MaxX {
				b.MaxX = v.X
			}
			if v.Y < b.MinY {
				b.MinY = v.Y
			}
			if v.Y > b.MaxY {
				b.MaxY = v.Y
			}
		}
	}
	return b
}

// Contains reports whether pt lies within b (spec §8, invariant 2).
func (b Bounds) Contains(pt coord.Coord) bool {
	return pt.X >= b.MinX && pt.X <= b.MaxX && pt.Y >= b.MinY && pt.Y <= b.MaxY
}

// PointInPolygons reports whether pt is inside the region defined by
// polygons, using the even-odd (ray-casting) rule against every polygon:
// the point is inside iff crossings are odd for at least one polygon
// (spec §4.5).
func PointInPolygons(polygons [][]coord.Coord, pt coord.Coord) bool {
	for _, poly := range polygons {
		if rayCastInside(poly, pt) {
			return true
		}
	}
	return false
}

func rayCastInside(poly []coord.Coord, pt coord.Coord) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y

		intersects := (yi > pt.Y) != (yj > pt.Y)
		if intersects {
			xCross := float64(xj-xi)*float64(pt.Y-yi)/float64(yj-yi) + float64(xi)
			if float64(pt.X) < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
