package matcher

import (
	"strings"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// skipProximityMeters is the pruning distance below which two consecutive
// candidates on the grid reuse the previous containment result instead of
// retesting (spec §4.9.2, heuristic (b)).
const skipProximityMeters = 3000.0

// PlaceInAdminRegion matches elements found via the name trie against
// administrative regions resolved from other word combinations, testing
// point-in-polygon containment with two pruning heuristics (spec §4.9.2).
func PlaceInAdminRegion(w *world.World, combos []string) []aggregate.Result {
	type regionHit struct {
		combo      string
		relationID int64
		adminLevel int
	}
	var regionCombos []regionHit
	for _, combo := range combos {
		if relationID, level, ok := w.AdminRegions.Lookup(combo); ok {
			regionCombos = append(regionCombos, regionHit{combo: combo, relationID: relationID, adminLevel: level})
		}
	}
	if len(regionCombos) == 0 {
		return nil
	}

	var out []aggregate.Result

	// skipLevel tracks, per OSM element, the lowest admin_level at which it
	// was already confirmed inside a region; once inside level L, regions of
	// level L and higher (finer) are skipped (spec §4.9.2, step 3).
	skipLevel := make(map[model.OSMElement]int)

	var prevElement *model.OSMElement
	var prevCoord coord.Coord
	var prevInside bool

	for _, candidateCombo := range combos {
		elements := w.NameTrie.Retrieve(candidateCombo)
		for _, e := range elements {
			if limit, ok := skipLevel[e]; ok {
				skip := true
				for _, rc := range regionCombos {
					if rc.adminLevel < limit {
						skip = false
						break
					}
				}
				if skip {
					continue
				}
			}

			elemCoord, ok := CenterOfElement(w, e)
			if !ok {
				continue
			}

			for _, rc := range regionCombos {
				if limit, ok := skipLevel[e]; ok && rc.adminLevel >= limit {
					continue
				}

				inside := false
				reused := false

				// Heuristic (a): an element of the same kind within +-4 id of
				// the previously tested one reuses its containment result.
				if prevElement != nil && prevElement.Kind == e.Kind && abs64(prevElement.ID-e.ID) <= 4 {
					inside = prevInside
					reused = true
				} else if prevElement != nil && coord.DistanceGrid(prevCoord, elemCoord) < skipProximityMeters {
					// Heuristic (b): candidates within 3km on the grid skip the
					// inside test for the second one.
					inside = prevInside
					reused = true
				}

				if !reused {
					inside = w.AdminRegions.Contains(rc.relationID, elemCoord)
				}

				prevElement = &model.OSMElement{Kind: e.Kind, ID: e.ID, Type: e.Type}
				prevCoord = elemCoord
				prevInside = inside

				if !inside {
					continue
				}

				skipLevel[e] = rc.adminLevel

				out = append(out, aggregate.Result{
					Coord:           elemCoord,
					Quality:         placeInRegionQuality(candidateCombo, rc.combo, e, rc.adminLevel),
					Origin:          "place-in-admin-region:" + candidateCombo + "@" + rc.combo,
					ContributingIDs: []model.OSMElement{e},
				})
			}
		}
	}

	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// placeInRegionQuality scores a (candidate, region) match by where the
// region name appears relative to the candidate combo (absent/later
// scores higher), the element's real-world type, and the region's
// admin_level (city level ~9 preferred over county level ~4), per spec
// §4.9.2 step 4.
func placeInRegionQuality(candidateCombo, regionCombo string, e model.OSMElement, adminLevel int) float64 {
	positionScore := 1.0
	if strings.HasPrefix(candidateCombo, regionCombo) {
		positionScore = 0.7
	}

	typeScore := 0.6
	if e.Type.IsPlace() {
		typeScore = e.Type.QualityWeight()
	}

	level := adminLevel
	if level < 2 {
		level = 2
	} else if level > 9 {
		level = 9
	}
	levelScore := (float64(level) + 18.0) / 27.0

	return clamp01(positionScore * typeScore * levelScore)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
