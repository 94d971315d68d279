package ingest

import (
	"strconv"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
)

// classifyNode derives a node's RealWorldType from its `place`/`natural`
// tags, mirroring original_source/osmpbfreader.cpp's per-node tag switch.
// `place=county`/`place=municipality` are flagged separately: those are
// OSM data errors (an administrative area represented by a point instead
// of a relation) and are not given a RealWorldType or indexed by name.
func classifyNode(tags map[string]string) (t model.RealWorldType, skip bool) {
	switch tags["place"] {
	case "county", "municipality":
		return model.TypeUnknown, true
	case "traffic_sign":
		// A traffic sign's name may describe a place it merely points
		// toward, not its own location; skip indexing it.
		return model.TypeUnknown, true
	case "city":
		return model.TypePlaceLarge, false
	case "borough", "suburb", "town", "village":
		return model.TypePlaceMedium, false
	case "quarter", "neighbourhood", "hamlet", "isolated_dwelling":
		return model.TypePlaceSmall, false
	case "island":
		return model.TypeIsland, false
	}
	if tags["natural"] == "water" {
		return model.TypeWater, false
	}
	return model.TypeUnknown, false
}

// classifyWay derives a way's RealWorldType from its highway/building/
// place/natural tags (spec §4.6 for the road case; the rest mirrors
// original_source/osmpbfreader.cpp's per-way tag switch).
func classifyWay(tags map[string]string) model.RealWorldType {
	switch tags["highway"] {
	case "motorway", "trunk", "primary":
		return model.TypeRoadMajor
	case "secondary", "tertiary":
		return model.TypeRoadMedium
	case "unclassified", "residential", "service":
		return model.TypeRoadMinor
	}
	if tags["building"] != "" {
		return model.TypeBuilding
	}
	if tags["place"] == "island" {
		return model.TypeIsland
	}
	if tags["natural"] == "water" {
		return model.TypeWater
	}
	return model.TypeUnknown
}

// classifyRelation derives a relation's RealWorldType, admin level, and
// whether it is an administrative/historic boundary worth assembling into
// an admin region, mirroring original_source/osmpbfreader.cpp's per-relation
// tag switch.
func classifyRelation(tags map[string]string) (t model.RealWorldType, adminLevel int, isAdminBoundary bool) {
	boundary := tags["boundary"]
	adminLevel, _ = strconv.Atoi(tags["admin_level"])

	switch {
	case tags["building"] != "":
		t = model.TypeBuilding
	case tags["place"] == "island":
		t = model.TypeIsland
	case tags["natural"] == "water":
		t = model.TypeWater
	case tags["type"] == "route" && tags["route"] == "road":
		t = model.TypeRoadMajor
	case boundary == "administrative":
		t = model.TypePlaceLargeArea
	}

	isAdminBoundary = adminLevel > 0 && (boundary == "administrative" || boundary == "historic")
	return t, adminLevel, isAdminBoundary
}
