// Package matcher implements the four independent candidate-generator
// matchers and the Center-of-Element helper (spec §4.9, C10).
package matcher

import (
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// CenterOfElement returns a representative coordinate for any OSMElement
// (spec §4.9.5): a node's own coordinate; a way's average of its first,
// last, middle, and (for long ways) first/third-quartile nodes; a
// relation's BFS-averaged member node coordinates.
func CenterOfElement(w *world.World, e model.OSMElement) (coord.Coord, bool) {
	switch e.Kind {
	case model.KindNode:
		return w.NodeCoord.Get(uint64(e.ID))
	case model.KindWay:
		return wayCenter(w, e.ID)
	case model.KindRelation:
		return relationCenter(w, e.ID)
	default:
		return coord.Coord{}, false
	}
}

// sampleNodeIndices returns the sample indices spec §4.9.5 uses for a way
// of length n: first, last, middle, and (for n >= 4) the first and third
// quartile indices.
func sampleNodeIndices(n int) []int {
	if n == 0 {
		return nil
	}
	idx := []int{0, n - 1, n / 2}
	if n >= 4 {
		idx = append(idx, n/4, (3*n)/4)
	}
	return idx
}

func wayCenter(w *world.World, wayID int64) (coord.Coord, bool) {
	wn, ok := w.WayNodes.Get(uint64(wayID))
	if !ok || len(wn.Nodes) == 0 {
		return coord.Coord{}, false
	}
	return averageNodes(w, wn.Nodes, sampleNodeIndices(len(wn.Nodes)))
}

func averageNodes(w *world.World, nodeIDs []int64, indices []int) (coord.Coord, bool) {
	var sumX, sumY int64
	count := 0
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(nodeIDs) || seen[i] {
			continue
		}
		seen[i] = true
		c, ok := w.NodeCoord.Get(uint64(nodeIDs[i]))
		if !ok || c.Invalid() {
			continue
		}
		sumX += int64(c.X)
		sumY += int64(c.Y)
		count++
	}
	if count == 0 {
		return coord.Coord{}, false
	}
	return coord.Coord{X: int32(sumX / int64(count)), Y: int32(sumY / int64(count))}, true
}

// relationCenter performs a breadth-first walk into a relation's members,
// collecting the sample node ids each member way contributes (or a
// member node's own id, or recursing into a nested relation), then
// averages every collected node's coordinate (spec §4.9.5).
func relationCenter(w *world.World, relationID int64) (coord.Coord, bool) {
	visited := map[model.OSMElement]bool{{Kind: model.KindRelation, ID: relationID}: true}
	queue := []int64{relationID}

	var nodeIDs []int64
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		rm, ok := w.RelMembers.Get(uint64(id))
		if !ok {
			continue
		}
		for _, member := range rm.Members {
			if visited[member.Element] {
				continue
			}
			visited[member.Element] = true

			switch member.Element.Kind {
			case model.KindNode:
				nodeIDs = append(nodeIDs, member.Element.ID)
			case model.KindWay:
				wn, ok := w.WayNodes.Get(uint64(member.Element.ID))
				if !ok {
					continue
				}
				for _, i := range sampleNodeIndices(len(wn.Nodes)) {
					if i >= 0 && i < len(wn.Nodes) {
						nodeIDs = append(nodeIDs, wn.Nodes[i])
					}
				}
			case model.KindRelation:
				queue = append(queue, member.Element.ID)
			}
		}
	}

	if len(nodeIDs) == 0 {
		return coord.Coord{}, false
	}
	full := make([]int, len(nodeIDs))
	for i := range full {
		full[i] = i
	}
	return averageNodes(w, nodeIDs, full)
}
