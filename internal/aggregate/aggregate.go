// Package aggregate implements the shared Result type, the
// proximity-dedup/quality-sort/truncate pipeline (spec §4.10, C11), and the
// WeightedSet sampling helper the Unique-Name matcher reuses for its
// first-quartile inter-element distance estimate (spec §4.9.4), per the
// original_source/weightednodeset.cpp supplement described in SPEC_FULL.md.
package aggregate

import (
	"sort"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
)

// Result is one matcher's candidate answer: a coordinate, a quality score
// in [0,1], a human-readable origin description, and the OSM elements that
// contributed to it (spec §4.9).
type Result struct {
	Coord          coord.Coord
	Quality        float64
	Origin         string
	ContributingIDs []model.OSMElement
}

// WeightedItem pairs a coordinate with a weight (typically a quality
// score), the unit WeightedSet operates on.
type WeightedItem struct {
	Coord  coord.Coord
	Weight float64
}

// WeightedSet is a small reusable set of weighted coordinates supporting
// stride-sampled pairwise distance estimation (spec §4.9.4) and a
// most-central-item search. Aggregate's proximity-based deduplication
// (spec §4.10) works on Results directly and does not use it.
type WeightedSet struct {
	Items []WeightedItem
}

// NewWeightedSet wraps items as a WeightedSet.
func NewWeightedSet(items []WeightedItem) WeightedSet {
	return WeightedSet{Items: items}
}

// coprimeStride returns the smallest stride >= 2 that is coprime with n,
// falling back to 1 if none is found below n (spec §4.9.4: "sampling ...
// with a stride coprime to the set size").
func coprimeStride(n int) int {
	for stride := 2; stride < n; stride++ {
		if gcd(stride, n) == 1 {
			return stride
		}
	}
	return 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// SamplePairDistances samples up to maxPairs (i, i+stride) pairs, stride
// coprime with the set size, and returns their grid distances in meters
// (spec §4.9.4: "sampling up to 7 element pairs").
func (s WeightedSet) SamplePairDistances(maxPairs int) []float64 {
	n := len(s.Items)
	if n < 2 {
		return nil
	}
	stride := coprimeStride(n)

	dists := make([]float64, 0, maxPairs)
	for k := 0; k < maxPairs && k < n; k++ {
		i := k
		j := (k + stride) % n
		if i == j {
			continue
		}
		dists = append(dists, coord.DistanceGrid(s.Items[i].Coord, s.Items[j].Coord))
	}
	sort.Float64s(dists)
	return dists
}

// FirstQuartileDistance returns the sampled distance at the first-quartile
// position, or false if fewer than 2 items are present (spec §4.9.4).
func (s WeightedSet) FirstQuartileDistance(maxPairs int) (float64, bool) {
	dists := s.SamplePairDistances(maxPairs)
	if len(dists) == 0 {
		return 0, false
	}
	return dists[len(dists)/4], true
}

// MostCentral returns the index of the item with the smallest sum of grid
// distances to every other item — the "most central sampled node" spec
// §4.9.4 picks as the Unique-Name matcher's answer.
func (s WeightedSet) MostCentral() (int, bool) {
	if len(s.Items) == 0 {
		return 0, false
	}
	best := -1
	bestSum := 0.0
	for i := range s.Items {
		sum := 0.0
		for j := range s.Items {
			if i == j {
				continue
			}
			sum += coord.DistanceGrid(s.Items[i].Coord, s.Items[j].Coord)
		}
		if best == -1 || sum < bestSum {
			best = i
			bestSum = sum
		}
	}
	return best, true
}

// Aggregate concatenates matcher outputs, drops lower-quality members of
// any pair closer than duplicateProximity meters (ties keep both), sorts
// the remainder by descending quality, and truncates to limit (spec
// §4.10). duplicateProximity <= 0 disables dedup.
func Aggregate(matcherOutputs [][]Result, duplicateProximity float64, limit int) []Result {
	var all []Result
	for _, batch := range matcherOutputs {
		all = append(all, batch...)
	}

	if duplicateProximity > 0 {
		all = dedupByProximity(all, duplicateProximity)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Quality > all[j].Quality })

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// dedupByProximity drops the lower-quality member of any pair whose grid
// distance is below thresholdMeters; ties (equal quality) keep both
// (spec §4.10, step 2).
func dedupByProximity(results []Result, thresholdMeters float64) []Result {
	thresholdSq := int64(thresholdMeters * thresholdMeters * 100) // meters -> decimeters^2
	dropped := make([]bool, len(results))

	for i := 0; i < len(results); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(results); j++ {
			if dropped[j] {
				continue
			}
			if coord.DistanceGridSq(results[i].Coord, results[j].Coord) >= thresholdSq {
				continue
			}
			switch {
			case results[i].Quality > results[j].Quality:
				dropped[j] = true
			case results[j].Quality > results[i].Quality:
				dropped[i] = true
			}
		}
	}

	out := make([]Result, 0, len(results))
	for i, r := range results {
		if !dropped[i] {
			out = append(out, r)
		}
	}
	return out
}
