package matcher

import (
	"math"
	"strconv"
	"strings"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/roadindex"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// roadKeywords are the Swedish words that introduce a road number without a
// county-letter prefix (spec §4.9.1).
var roadKeywords = map[string]bool{
	"riksväg": true, "länsväg": true, "väg": true, "rv": true,
}

// maxRoadDistanceMeters bounds how far a place may be from a detected road
// and still be considered a match (spec §4.9.1).
const maxRoadDistanceMeters = 10000.0

// detectRoadDesignations scans the raw token list for road references: a
// keyword (riksväg/länsväg/väg/rv) followed by digits, a county-letter
// pair followed by digits, or a single token already in ref form (E4, 40,
// AB503) that roadindex.ParseRef understands directly (spec §4.9.1).
func detectRoadDesignations(tokens []string) []roadindex.Designation {
	var out []roadindex.Designation

	for i, t := range tokens {
		if ds := roadindex.ParseRef(t); len(ds) > 0 {
			out = append(out, ds...)
			continue
		}
		if i+1 >= len(tokens) || !isAllDigits(tokens[i+1]) {
			continue
		}
		if roadKeywords[t] {
			if ds := roadindex.ParseRef(tokens[i+1]); len(ds) > 0 {
				out = append(out, ds...)
			}
			continue
		}
		if isLetterOnly(t) && len(t) <= 2 {
			if ds := roadindex.ParseRef(strings.ToUpper(t) + tokens[i+1]); len(ds) > 0 {
				out = append(out, ds...)
			}
		}
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetterOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// roadQuality converts a distance in meters to a quality score: 1 km ->
// 1.0, 10 km -> 0.5, 100 km -> 0.0 (spec §4.9.1).
func roadQuality(distanceMeters float64) float64 {
	if distanceMeters <= 0 {
		return 1.0
	}
	q := 1.0 - (math.Log10(distanceMeters)-3.0)/2.0
	if q < 0 {
		q = 0
	} else if q > 1 {
		q = 1
	}
	return q
}

// RoadNearPlace matches place names against detected road designations,
// keeping pairs within 10 km and scoring by distance (spec §4.9.1).
func RoadNearPlace(w *world.World, rawTokens []string, combos []string) []aggregate.Result {
	designations := detectRoadDesignations(rawTokens)
	if len(designations) == 0 {
		return nil
	}

	var out []aggregate.Result
	for _, combo := range combos {
		elements := w.NameTrie.Retrieve(combo)
		for _, e := range elements {
			if !e.Type.IsPlace() {
				continue
			}
			placeCoord, ok := CenterOfElement(w, e)
			if !ok {
				continue
			}

			for _, d := range designations {
				res, ok := w.Roads.ClosestRoadNode(placeCoord, d)
				if !ok || res.DistanceM >= maxRoadDistanceMeters {
					continue
				}
				out = append(out, aggregate.Result{
					Coord:           res.Coord,
					Quality:         roadQuality(res.DistanceM),
					Origin:          "road-near-place:" + combo + "/" + strconv.Itoa(res.RoadNumber),
					ContributingIDs: []model.OSMElement{e},
				})
			}
		}
	}
	return out
}
