package adminregion

import (
	"bytes"
	"testing"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

func square(x0, y0, x1, y1 int32) []coord.Coord {
	return []coord.Coord{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0}}
}

func TestAssemblePolygonsFromSplitWays(t *testing.T) {
	full := square(0, 0, 1000, 1000)
	// Split the ring into two ways sharing endpoints.
	w1 := WayRef{Coords: full[0:3]}
	w2 := WayRef{Coords: []coord.Coord{full[2], full[3], full[4]}}

	polys := AssemblePolygons([]WayRef{w1, w2})
	if len(polys) != 1 {
		t.Fatalf("expected 1 merged polygon, got %d", len(polys))
	}
	if len(polys[0]) != 4 {
		t.Fatalf("expected closing vertex dropped leaving 4 vertices, got %d: %v", len(polys[0]), polys[0])
	}
}

func TestAssemblePolygonsReverseOrientation(t *testing.T) {
	full := square(0, 0, 1000, 1000)
	w1 := WayRef{Coords: full[0:3]}
	// Reverse order of second way so it must be flipped to attach.
	rev := []coord.Coord{full[4], full[3], full[2]}
	w2 := WayRef{Coords: rev}

	polys := AssemblePolygons([]WayRef{w1, w2})
	if len(polys) != 1 {
		t.Fatalf("expected 1 merged polygon with reversed way, got %d", len(polys))
	}
}

func TestPointInPolygonEvenOdd(t *testing.T) {
	square := [][]coord.Coord{square(0, 0, 1000, 1000)}
	inside := coord.Coord{X: 500, Y: 500}
	outside := coord.Coord{X: 2000, Y: 2000}

	if !PointInPolygons(square, inside) {
		t.Fatal("center point should be inside")
	}
	if PointInPolygons(square, outside) {
		t.Fatal("far point should be outside")
	}
}

func TestBoundsInvariant(t *testing.T) {
	polys := [][]coord.Coord{square(10, 20, 110, 220)}
	b := ComputeBounds(polys)
	for _, poly := range polys {
		for _, v := range poly {
			if !b.Contains(v) {
				t.Fatalf("vertex %v not within computed bounds %v", v, b)
			}
		}
	}
}

func TestNormalizeNameStripsAffixesAndRestoresS(t *testing.T) {
	cases := map[string]string{
		"Landskapet Småland": "småland",
		"Uppsala län":        "uppsala",
		"Kiruna kommun":      "kiruna",
		"Borås kommun":       "borås", // municipalitiesMissingS restores the 's'
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupTieBreaksOnAdminLevel(t *testing.T) {
	b := NewBuilder(nil)
	b.AddRegion(&Region{RelationID: 1, Name: "Uppsala län", AdminLevel: 4})
	b.AddRegion(&Region{RelationID: 2, Name: "Uppsala kommun", AdminLevel: 7})
	store := b.Build()

	id, level, ok := store.Lookup("uppsala")
	if !ok {
		t.Fatal("expected a match")
	}
	if id != 1 || level != 4 {
		t.Fatalf("expected the county (lower admin_level) to win: got id=%d level=%d", id, level)
	}
}

func TestBuilderBlacklistSkipsRegionAndCodes(t *testing.T) {
	b := NewBuilder(map[int64]bool{38091: true})
	b.AddRegion(&Region{RelationID: 38091, Name: "Blacklisted", AdminLevel: 7})
	b.AddRegion(&Region{RelationID: 2, Name: "Uppsala kommun", AdminLevel: 7})
	b.AddSCBCode("0000", 38091)
	b.AddNUTS3Code("SE000", 38091)
	store := b.Build()

	if _, ok := store.Region(38091); ok {
		t.Fatal("expected blacklisted relation id to be excluded from the store")
	}
	if _, ok := store.Region(2); !ok {
		t.Fatal("expected non-blacklisted region to still be present")
	}
	if _, ok := store.SCBCode("0000"); ok {
		t.Fatal("expected blacklisted relation's SCB code to be excluded")
	}
	if _, ok := store.NUTS3Code("SE000"); ok {
		t.Fatal("expected blacklisted relation's NUTS3 code to be excluded")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := NewBuilder(nil)
	region := &Region{
		RelationID: 42,
		Name:       "Kiruna kommun",
		AdminLevel: 7,
		Polygons:   [][]coord.Coord{square(0, 0, 1000, 1000)},
	}
	region.Bounds = ComputeBounds(region.Polygons)
	b.AddRegion(region)
	b.AddSCBCode("2584", 42)
	b.AddNUTS3Code("SE332", 42)
	store := b.Build()

	var buf bytes.Buffer
	if err := store.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if _, ok := loaded.Region(42); !ok {
		t.Fatal("expected region 42 after round-trip")
	}
	if id, ok := loaded.SCBCode("2584"); !ok || id != 42 {
		t.Fatalf("SCBCode round-trip failed: %v %v", id, ok)
	}
	if id, ok := loaded.NUTS3Code("SE332"); !ok || id != 42 {
		t.Fatalf("NUTS3Code round-trip failed: %v %v", id, ok)
	}
	if !loaded.Contains(42, coord.Coord{X: 500, Y: 500}) {
		t.Fatal("expected point inside region after round-trip")
	}
}
