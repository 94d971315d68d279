package matcher

import (
	"math"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// maxUniqueHits bounds how many name-trie hits a combo may have and still
// be considered "unique enough" for this matcher; beyond it the combo is
// too common to pick a single element from (spec §4.9.4).
const maxUniqueHits = 29

// maxSampledPairs is the cap on pairwise distance samples used to estimate
// how tightly an ambiguous name's hits cluster (spec §4.9.4).
const maxSampledPairs = 7

// quartileDistanceThresholdMeters is the first-quartile sampled distance
// above which the hits are considered too scattered to represent one place
// (spec §4.9.4).
const quartileDistanceThresholdMeters = 31622.0

// centralityPenaltyThresholdMeters is the distance from the most-central
// sampled node beyond which the chosen element's quality is penalized
// (spec §4.9.4).
const centralityPenaltyThresholdMeters = 1000.0

// UniqueName matches word combinations whose name-trie hit count is low
// enough to plausibly denote one real place: a single hit is accepted
// directly; multiple hits are accepted only if they cluster tightly
// (estimated via sampled pairwise distances), in which case the element
// closest to the most-central sampled node is returned (spec §4.9.4).
func UniqueName(w *world.World, combos []string) []aggregate.Result {
	var out []aggregate.Result
	for _, combo := range combos {
		elements := w.NameTrie.Retrieve(combo)
		n := len(elements)
		if n == 0 || n > maxUniqueHits {
			continue
		}

		if n == 1 {
			e := elements[0]
			c, ok := CenterOfElement(w, e)
			if !ok {
				continue
			}
			out = append(out, aggregate.Result{
				Coord:           c,
				Quality:         e.Type.QualityWeight(),
				Origin:          "unique-name:" + combo,
				ContributingIDs: []model.OSMElement{e},
			})
			continue
		}

		items := make([]aggregate.WeightedItem, 0, n)
		validElements := make([]model.OSMElement, 0, n)
		for _, e := range elements {
			c, ok := CenterOfElement(w, e)
			if !ok {
				continue
			}
			items = append(items, aggregate.WeightedItem{Coord: c, Weight: e.Type.QualityWeight()})
			validElements = append(validElements, e)
		}
		if len(items) < 2 {
			continue
		}

		set := aggregate.NewWeightedSet(items)
		quartile, ok := set.FirstQuartileDistance(maxSampledPairs)
		if !ok || quartile >= quartileDistanceThresholdMeters {
			continue
		}

		centralIdx, ok := set.MostCentral()
		if !ok {
			continue
		}
		centralCoord := items[centralIdx].Coord

		closestIdx, closestDist := closestToCoord(items, centralCoord)
		if closestIdx < 0 {
			continue
		}

		quality := validElements[closestIdx].Type.QualityWeight()
		if closestDist > centralityPenaltyThresholdMeters {
			quality *= clamp01((4.5 - math.Log10(closestDist)) / 1.5)
		}

		out = append(out, aggregate.Result{
			Coord:           items[closestIdx].Coord,
			Quality:         clamp01(quality),
			Origin:          "unique-name:" + combo,
			ContributingIDs: []model.OSMElement{validElements[closestIdx]},
		})
	}
	return out
}

func closestToCoord(items []aggregate.WeightedItem, target coord.Coord) (int, float64) {
	best := -1
	bestDist := 0.0
	for i, it := range items {
		d := coord.DistanceGrid(it.Coord, target)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}
