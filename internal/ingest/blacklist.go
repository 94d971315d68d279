package ingest

// defaultWayBlacklist holds way ids known to be noisy or just outside
// Sweden that nonetheless show up in a Sweden-bounded extract: roads right
// across the border, and a handful of roads in central Linköping with
// OSM data errors. Grounded on original_source/sweden.cpp's
// insertWayAsRoad blacklistedWayIds table.
var defaultWayBlacklist = intSet(
	1648176, 1648475, 1651992, 2954124, 4605570, 8150233, 23275365, 23444292,
	24040916, 24731243, 24786276, 27872415, 27872417, 27872418, 29054792,
	29054793, 30784964, 30887520, 34419027, 34419029, 38227481, 38564589,
	38564590, 44141405, 44298775, 45329454, 45876899, 46931166, 48386475,
	51381476, 51385960, 59065373, 59065380, 59065382, 59065388, 61380105,
	67171996, 69358305, 73854172, 80360747, 116831322, 138003259, 146294832,
	180751968, 194028774, 229700851, 308918468, 308918469, 321318578,
	324044848, 324093732, 324271180, 324492881, 324492887, 326365472,
	345614344, 345614345, 347763180, 347763181, 347763182, 347763184,
	347763185, 347763186, 347763188, 366707779, 375573546, 375573548,
	383462866, 399732015, 402989392,
)

// defaultAdminRelationBlacklist holds administrative-boundary relation ids
// for regions right outside Sweden that leak into the extract. Grounded on
// original_source/sweden.cpp's insertAdministrativeRegion
// blacklistedRelIds table.
var defaultAdminRelationBlacklist = intSet(
	38091, 50046, 52822, 54224, 404589, 406060, 406106, 406567, 406621,
	407717, 408105, 412436, 1650407, 1724359, 1724456, 2000320, 2375170,
	2375171, 2526815, 2541341, 2587236, 2978650, 4222805,
)

// defaultRelationBlacklist holds relation ids ignored outright during the
// scan, e.g. roads outside of Sweden that just happened to be included in
// the map data. Grounded on original_source/osmpbfreader.cpp's relation
// read loop blacklistedRelIds table.
var defaultRelationBlacklist = intSet(
	2545969, 3189514, 5518156, 5756777, 5794315, 5794316,
)

func intSet(ids ...int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// wayBlacklist returns the Options' way blacklist, falling back to
// defaultWayBlacklist when unset.
func (o Options) wayBlacklist() map[int64]bool {
	if o.Blacklist != nil {
		return o.Blacklist
	}
	return defaultWayBlacklist
}

// relationBlacklist returns the Options' whole-relation blacklist, falling
// back to defaultRelationBlacklist when unset.
func (o Options) relationBlacklist() map[int64]bool {
	if o.RelationBlacklist != nil {
		return o.RelationBlacklist
	}
	return defaultRelationBlacklist
}

// adminRelationBlacklist returns the Options' administrative-relation
// blacklist, falling back to defaultAdminRelationBlacklist when unset.
func (o Options) adminRelationBlacklist() map[int64]bool {
	if o.AdminRelationBlacklist != nil {
		return o.AdminRelationBlacklist
	}
	return defaultAdminRelationBlacklist
}
