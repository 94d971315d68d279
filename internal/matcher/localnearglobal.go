package matcher

import (
	"strings"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// maxGlobalDistanceMeters bounds how far a local candidate may be from its
// nearest global place and still be paired (spec §4.9.3).
const maxGlobalDistanceMeters = 20000.0

// placeTypeRank orders the four place sizes from smallest (1) to largest
// (4), used to find "the largest place-type found" among global
// candidates (spec §4.9.3, step 1).
var placeTypeRank = map[model.RealWorldType]int{
	model.TypePlaceSmall:     1,
	model.TypePlaceMedium:    2,
	model.TypePlaceLarge:     3,
	model.TypePlaceLargeArea: 4,
}

type globalCandidate struct {
	elem  model.OSMElement
	combo string
	coord coord.Coord
}

// LocalNearGlobal pairs local word-combination matches with the nearest
// "global" place of the largest place-type seen among all combos, keeping
// pairs within 20 km (spec §4.9.3).
func LocalNearGlobal(w *world.World, combos []string) []aggregate.Result {
	byCombo := make(map[string][]model.OSMElement, len(combos))
	maxRank := -1
	for _, combo := range combos {
		elems := w.NameTrie.Retrieve(combo)
		byCombo[combo] = elems
		for _, e := range elems {
			if r, ok := placeTypeRank[e.Type]; ok && r > maxRank {
				maxRank = r
			}
		}
	}
	if maxRank == -1 {
		return nil
	}

	var globals []globalCandidate
	for _, combo := range combos {
		for _, e := range byCombo[combo] {
			if placeTypeRank[e.Type] != maxRank {
				continue
			}
			c, ok := CenterOfElement(w, e)
			if !ok {
				continue
			}
			globals = append(globals, globalCandidate{elem: e, combo: combo, coord: c})
		}
	}
	if len(globals) == 0 {
		return nil
	}

	var out []aggregate.Result
	for _, combo := range combos {
		for _, e := range byCombo[combo] {
			localCoord, ok := CenterOfElement(w, e)
			if !ok {
				continue
			}

			best, bestDist, found := nearestGlobal(globals, localCoord, e)
			if !found || bestDist > maxGlobalDistanceMeters {
				continue
			}

			multiplier := 1.0
			if strings.Contains(combo, best.combo) {
				multiplier = 0.6
			}

			out = append(out, aggregate.Result{
				Coord:           localCoord,
				Quality:         clamp01(e.Type.QualityWeight() * multiplier),
				Origin:          "local-near-global:" + combo + "~" + best.combo,
				ContributingIDs: []model.OSMElement{e, best.elem},
			})
		}
	}
	return out
}

func nearestGlobal(globals []globalCandidate, pt coord.Coord, self model.OSMElement) (globalCandidate, float64, bool) {
	var best globalCandidate
	bestDist := -1.0
	found := false
	for _, g := range globals {
		if g.elem.Equal(self) {
			continue
		}
		d := coord.DistanceGrid(pt, g.coord)
		if !found || d < bestDist {
			best = g
			bestDist = d
			found = true
		}
	}
	return best, bestDist, found
}
