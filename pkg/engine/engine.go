// Package engine exposes the resolver's core entrypoint:
// find_results(text, duplicate_proximity) -> Vec<Result> (spec §1), the
// one API the HTTP layer and the test-set runner both call.
//
// Example:
//
//	eng := engine.New(w, stopwords)
//	results := eng.FindResults("Kungsgatan Stockholm", 50.0, 20)
package engine

import (
	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/matcher"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/tokenize"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// maxComboLen/minComboLen bound the sliding-window word-combination
// generator (spec §4.8); 3 is the default window size.
const (
	maxComboLen = 3
	minComboLen = 1
)

// Engine runs the query pipeline (tokenize -> matchers -> aggregate, spec
// §4.8-§4.10) against a fixed World.
type Engine struct {
	world     *world.World
	stopwords *tokenize.Stopwords
}

// New builds an Engine over world, tokenizing queries against stopwords
// (which may be nil, meaning no word is treated as a stopword).
func New(w *world.World, stopwords *tokenize.Stopwords) *Engine {
	return &Engine{world: w, stopwords: stopwords}
}

// FindResults tokenizes text, runs every C10 matcher over the resulting
// word combinations, and returns the aggregated, deduplicated, quality-
// sorted, limit-truncated result list (spec §1, §4.10). duplicateProximity
// <= 0 disables proximity deduplication.
func (e *Engine) FindResults(text string, duplicateProximity float64, limit int) []aggregate.Result {
	rawTokens := tokenize.Tokenize(text, e.stopwords, false)
	uniqueTokens := tokenize.Tokenize(text, e.stopwords, true)
	combos := tokenize.GenerateCombinations(uniqueTokens, maxComboLen, minComboLen)

	outputs := [][]aggregate.Result{
		matcher.RoadNearPlace(e.world, rawTokens, combos),
		matcher.PlaceInAdminRegion(e.world, combos),
		matcher.LocalNearGlobal(e.world, combos),
		matcher.UniqueName(e.world, combos),
	}

	return aggregate.Aggregate(outputs, duplicateProximity, limit)
}

// ToLonLat converts a grid coordinate back to (lon,lat) using this
// Engine's World grid, for callers (e.g. internal/httpapi) that need to
// render a Result's coordinate in the response.
func (e *Engine) ToLonLat(x, y int32) (lon, lat float64) {
	return e.world.Grid.ToLonLat(coord.Coord{X: x, Y: y})
}
