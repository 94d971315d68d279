package matcher

import (
	"testing"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/adminregion"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/idstore"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/nametrie"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/roadindex"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

func buildTestWorld(t *testing.T) *world.World {
	t.Helper()

	nodeCoord := idstore.New[coord.Coord]()
	nodeCoord.Insert(1, coord.Coord{X: 1000, Y: 1000}) // Kungsgatan node, in Stockholm
	nodeCoord.Insert(2, coord.Coord{X: 1010, Y: 1000})
	nodeCoord.Insert(3, coord.Coord{X: 1020, Y: 1000})
	nodeCoord.Insert(10, coord.Coord{X: 500, Y: 500})   // Stockholm center
	nodeCoord.Insert(20, coord.Coord{X: 200000, Y: 500}) // Malmö, far away

	wayNodes := idstore.New[model.WayNodes]()
	wayNodes.Insert(100, model.WayNodes{Nodes: []int64{1, 2, 3}})

	relMembers := idstore.New[model.RelationMem]()
	relMembers.Insert(900, model.RelationMem{Members: []model.RelationMember{
		{Element: model.OSMElement{Kind: model.KindNode, ID: 10}, Role: model.RoleOuter},
	}})

	nodeNames := idstore.New[string]()
	wayNames := idstore.New[string]()
	wayNames.Insert(100, "Kungsgatan")
	relNames := idstore.New[string]()
	relNames.Insert(900, "Stockholm")

	trie := nametrie.New()
	trie.Insert("Kungsgatan", model.OSMElement{Kind: model.KindWay, ID: 100, Type: model.TypeRoadMajor})
	trie.Insert("Stockholm", model.OSMElement{Kind: model.KindNode, ID: 10, Type: model.TypePlaceLarge})
	trie.Insert("Malmö", model.OSMElement{Kind: model.KindNode, ID: 20, Type: model.TypePlaceLarge})
	trie.Insert("Stockholm kommun", model.OSMElement{Kind: model.KindRelation, ID: 900, Type: model.TypePlaceLargeArea})

	stockholmPolygon := [][]coord.Coord{{
		{X: 0, Y: 0}, {X: 10000, Y: 0}, {X: 10000, Y: 10000}, {X: 0, Y: 10000}, {X: 0, Y: 0},
	}}
	regionBuilder := adminregion.NewBuilder(nil)
	regionBuilder.AddRegion(&adminregion.Region{
		RelationID: 900,
		Name:       "Stockholm kommun",
		AdminLevel: 7,
		Polygons:   stockholmPolygon,
		Bounds:     adminregion.Bounds{MinX: 0, MinY: 0, MaxX: 10000, MaxY: 10000},
	})
	regions := regionBuilder.Build()

	roads := roadindex.NewIndex(nil)
	roads.Add(roadindex.WayRef{ID: 100, Coords: []coord.Coord{{X: 1000, Y: 1000}, {X: 1020, Y: 1000}}},
		[]roadindex.Designation{{Kind: roadindex.KindNational, Number: 55}})

	return &world.World{
		NodeCoord:    nodeCoord,
		WayNodes:     wayNodes,
		RelMembers:   relMembers,
		NodeNames:    nodeNames,
		WayNames:     wayNames,
		RelNames:     relNames,
		NameTrie:     trie,
		AdminRegions: regions,
		Roads:        roads,
	}
}

func TestCenterOfElementNode(t *testing.T) {
	w := buildTestWorld(t)
	c, ok := CenterOfElement(w, model.OSMElement{Kind: model.KindNode, ID: 10})
	if !ok || c.X != 500 || c.Y != 500 {
		t.Fatalf("unexpected node center: %+v %v", c, ok)
	}
}

func TestCenterOfElementWayAverages(t *testing.T) {
	w := buildTestWorld(t)
	c, ok := CenterOfElement(w, model.OSMElement{Kind: model.KindWay, ID: 100})
	if !ok {
		t.Fatal("expected ok")
	}
	if c.X != 1010 || c.Y != 1000 {
		t.Fatalf("unexpected way center: %+v", c)
	}
}

func TestCenterOfElementRelationWalksMembers(t *testing.T) {
	w := buildTestWorld(t)
	c, ok := CenterOfElement(w, model.OSMElement{Kind: model.KindRelation, ID: 900})
	if !ok || c.X != 500 || c.Y != 500 {
		t.Fatalf("unexpected relation center: %+v %v", c, ok)
	}
}

func TestRoadNearPlaceFindsKeywordRoad(t *testing.T) {
	w := buildTestWorld(t)
	results := RoadNearPlace(w, []string{"stockholm", "väg", "55"}, []string{"stockholm"})
	if len(results) == 0 {
		t.Fatal("expected at least one road-near-place result")
	}
	for _, r := range results {
		if r.Quality <= 0 {
			t.Fatalf("expected positive quality, got %+v", r)
		}
		if r.Coord.X == 500 && r.Coord.Y == 500 {
			t.Fatalf("expected the result coordinate to be the closest point on the road, not the place's own center: %+v", r)
		}
	}
}

func TestRoadNearPlaceNoDesignationIsEmpty(t *testing.T) {
	w := buildTestWorld(t)
	results := RoadNearPlace(w, []string{"stockholm"}, []string{"stockholm"})
	if len(results) != 0 {
		t.Fatalf("expected no results without a detected road, got %+v", results)
	}
}

func TestPlaceInAdminRegionMatchesContainedElement(t *testing.T) {
	w := buildTestWorld(t)
	results := PlaceInAdminRegion(w, []string{"stockholm kommun", "stockholm"})
	if len(results) == 0 {
		t.Fatal("expected at least one place-in-admin-region result")
	}
}

func TestLocalNearGlobalPairsWithinDistance(t *testing.T) {
	w := buildTestWorld(t)
	results := LocalNearGlobal(w, []string{"stockholm kommun", "stockholm"})
	for _, r := range results {
		if r.Quality < 0 || r.Quality > 1 {
			t.Fatalf("quality out of range: %+v", r)
		}
	}
}

func TestUniqueNameSingleHitAccepted(t *testing.T) {
	w := buildTestWorld(t)
	results := UniqueName(w, []string{"malmö"})
	if len(results) != 1 {
		t.Fatalf("expected exactly one unique-name result, got %d", len(results))
	}
	if results[0].Coord.X != 200000 {
		t.Fatalf("unexpected coord: %+v", results[0].Coord)
	}
}

func TestUniqueNameNoHitsIsEmpty(t *testing.T) {
	w := buildTestWorld(t)
	results := UniqueName(w, []string{"göteborg"})
	if len(results) != 0 {
		t.Fatalf("expected no results for an unmatched combo, got %+v", results)
	}
}
