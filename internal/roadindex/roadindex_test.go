package roadindex

import (
	"bytes"
	"testing"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

func TestParseRefEuropeanKnownNumber(t *testing.T) {
	ds := ParseRef("E4")
	if len(ds) != 1 || ds[0].Kind != KindEuropean || ds[0].Number != 4 {
		t.Fatalf("unexpected: %+v", ds)
	}
}

func TestParseRefEuropeanUnmappedBecomesRegional(t *testing.T) {
	ds := ParseRef("E99")
	if len(ds) != 1 || ds[0].Kind != KindRegional || ds[0].Region != RegionE {
		t.Fatalf("unexpected: %+v", ds)
	}
}

func TestParseRefNationalBelow500(t *testing.T) {
	ds := ParseRef("40")
	if len(ds) != 1 || ds[0].Kind != KindNational || ds[0].Number != 40 {
		t.Fatalf("unexpected: %+v", ds)
	}
}

func TestParseRefUnknownRegionalAbove500(t *testing.T) {
	ds := ParseRef("503")
	if len(ds) != 1 || ds[0].Kind != KindUnknownRegional {
		t.Fatalf("unexpected: %+v", ds)
	}
}

func TestParseRefRegionalLetters(t *testing.T) {
	ds := ParseRef("AB 503")
	if len(ds) != 1 || ds[0].Kind != KindRegional || ds[0].Region != RegionAB || ds[0].Number != 503 {
		t.Fatalf("unexpected: %+v", ds)
	}
}

func TestParseRefMultipleDesignations(t *testing.T) {
	ds := ParseRef("E4;40")
	if len(ds) != 2 {
		t.Fatalf("expected 2 designations, got %d: %+v", len(ds), ds)
	}
}

func TestClassifyRequiresRoadHighwayAndRef(t *testing.T) {
	if Classify("footway", "E4") != nil {
		t.Fatal("footway should not classify even with a ref")
	}
	if Classify("primary", "") != nil {
		t.Fatal("empty ref should not classify")
	}
	if Classify("primary", "E4") == nil {
		t.Fatal("primary with ref should classify")
	}
}

func TestIndexClosestRoadNode(t *testing.T) {
	idx := NewIndex(nil)
	w := WayRef{ID: 7, Coords: []coord.Coord{{X: 0, Y: 0}, {X: 100, Y: 100}}}
	idx.Add(w, []Designation{{Kind: KindNational, Number: 40}})

	res, ok := idx.ClosestRoadNode(coord.Coord{X: 1, Y: 1}, Designation{Kind: KindNational, Number: 40})
	if !ok {
		t.Fatal("expected a match")
	}
	if res.NodeID != 7 {
		t.Fatalf("expected way id 7, got %d", res.NodeID)
	}
}

func TestIndexClosestRoadNodeReportsClosestPointNotWayStart(t *testing.T) {
	idx := NewIndex(nil)
	w := WayRef{
		ID:      7,
		Coords:  []coord.Coord{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 200, Y: 200}},
		NodeIDs: []int64{101, 102, 103},
	}
	idx.Add(w, []Designation{{Kind: KindNational, Number: 40}})

	res, ok := idx.ClosestRoadNode(coord.Coord{X: 205, Y: 205}, Designation{Kind: KindNational, Number: 40})
	if !ok {
		t.Fatal("expected a match")
	}
	if res.NodeID != 103 {
		t.Fatalf("expected the actual closest node id 103, got %d", res.NodeID)
	}
	if res.Coord != (coord.Coord{X: 200, Y: 200}) {
		t.Fatalf("expected Coord to be the closest point on the road, got %+v", res.Coord)
	}
}

func TestIndexClosestRoadNodeFallsBackToWayIDWithoutNodeIDs(t *testing.T) {
	idx := NewIndex(nil)
	w := WayRef{ID: 7, Coords: []coord.Coord{{X: 0, Y: 0}, {X: 100, Y: 100}}}
	idx.Add(w, []Designation{{Kind: KindNational, Number: 40}})

	res, ok := idx.ClosestRoadNode(coord.Coord{X: 1, Y: 1}, Designation{Kind: KindNational, Number: 40})
	if !ok {
		t.Fatal("expected a match")
	}
	if res.NodeID != 7 {
		t.Fatalf("expected fallback way id 7, got %d", res.NodeID)
	}
	if res.Coord != (coord.Coord{X: 0, Y: 0}) {
		t.Fatalf("expected Coord to be the closest point on the road, got %+v", res.Coord)
	}
}

func TestIndexBlacklistSkipsWay(t *testing.T) {
	idx := NewIndex(map[int64]bool{7: true})
	w := WayRef{ID: 7, Coords: []coord.Coord{{X: 0, Y: 0}}}
	idx.Add(w, []Designation{{Kind: KindNational, Number: 40}})

	if _, ok := idx.ClosestRoadNode(coord.Coord{X: 0, Y: 0}, Designation{Kind: KindNational, Number: 40}); ok {
		t.Fatal("blacklisted way should not be findable")
	}
}

type fakeRegionContainer struct {
	counties []RegionCode
}

func (f fakeRegionContainer) CountiesContaining(pt coord.Coord) []RegionCode {
	return f.counties
}

func TestFixUnlabeledRegionalRoadsResolvesSingleCounty(t *testing.T) {
	idx := NewIndex(nil)
	w := WayRef{ID: 9, Coords: []coord.Coord{{X: 0, Y: 0}, {X: 10, Y: 10}}}
	idx.Add(w, []Designation{{Kind: KindUnknownRegional, Number: 600}})

	idx.FixUnlabeledRegionalRoads(fakeRegionContainer{counties: []RegionCode{RegionAB}})

	if len(idx.unknownRegional[600].ways) != 0 {
		t.Fatal("expected way to move out of the unknown-regional bucket")
	}
	if idx.regional[RegionAB] == nil || len(idx.regional[RegionAB][600].ways) != 1 {
		t.Fatal("expected way to land in regional[AB][600]")
	}
}

func TestFixUnlabeledRegionalRoadsLeavesAmbiguous(t *testing.T) {
	idx := NewIndex(nil)
	w := WayRef{ID: 9, Coords: []coord.Coord{{X: 0, Y: 0}}}
	idx.Add(w, []Designation{{Kind: KindUnknownRegional, Number: 601}})

	idx.FixUnlabeledRegionalRoads(fakeRegionContainer{counties: []RegionCode{RegionAB, RegionC}})

	if len(idx.unknownRegional[601].ways) != 1 {
		t.Fatal("ambiguous county match should leave the way in place")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	idx := NewIndex(nil)
	idx.Add(WayRef{ID: 1, Coords: []coord.Coord{{X: 0, Y: 0}, {X: 10, Y: 10}}},
		[]Designation{{Kind: KindEuropean, Number: 4}})
	idx.Add(WayRef{ID: 2, Coords: []coord.Coord{{X: 5, Y: 5}}},
		[]Designation{{Kind: KindNational, Number: 40}})
	idx.Add(WayRef{ID: 3, Coords: []coord.Coord{{X: 1, Y: 1}}},
		[]Designation{{Kind: KindRegional, Region: RegionAB, Number: 503}})
	idx.Add(WayRef{ID: 4, Coords: []coord.Coord{{X: 2, Y: 2}}},
		[]Designation{{Kind: KindUnknownRegional, Number: 777}})

	var buf bytes.Buffer
	if err := idx.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if _, ok := loaded.ClosestRoadNode(coord.Coord{X: 0, Y: 0}, Designation{Kind: KindEuropean, Number: 4}); !ok {
		t.Fatal("expected European road to survive round-trip")
	}
	if _, ok := loaded.ClosestRoadNode(coord.Coord{X: 5, Y: 5}, Designation{Kind: KindNational, Number: 40}); !ok {
		t.Fatal("expected national road to survive round-trip")
	}
	if _, ok := loaded.ClosestRoadNode(coord.Coord{X: 1, Y: 1}, Designation{Kind: KindRegional, Region: RegionAB, Number: 503}); !ok {
		t.Fatal("expected regional road to survive round-trip")
	}
	if len(loaded.unknownRegional[777].ways) != 1 {
		t.Fatal("expected unresolved unknown-regional bucket to survive round-trip")
	}
}

func TestSnapshotRoundTripPreservesNodeIDs(t *testing.T) {
	idx := NewIndex(nil)
	idx.Add(WayRef{
		ID:      7,
		Coords:  []coord.Coord{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 200, Y: 200}},
		NodeIDs: []int64{101, 102, 103},
	}, []Designation{{Kind: KindNational, Number: 40}})

	var buf bytes.Buffer
	if err := idx.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	res, ok := loaded.ClosestRoadNode(coord.Coord{X: 205, Y: 205}, Designation{Kind: KindNational, Number: 40})
	if !ok {
		t.Fatal("expected a match after round-trip")
	}
	if res.NodeID != 103 {
		t.Fatalf("expected node id 103 to survive the round-trip, got %d", res.NodeID)
	}
	if res.Coord != (coord.Coord{X: 200, Y: 200}) {
		t.Fatalf("expected Coord to survive the round-trip, got %+v", res.Coord)
	}
}
