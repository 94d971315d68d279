// Package simplify implements Ramer-Douglas-Peucker way simplification with
// pinned nodes (spec §4.4, C5): a single consumer goroutine drains a
// bounded channel of raw ways fed by the PBF reader, dropping only
// unreferenced intermediate nodes.
package simplify

import (
	"time"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

// epsilonSq is ε² in decimeter² — a 2m corridor (spec §4.4).
const epsilonSq = 400

// queueCapacity is the simplifier queue's recommended capacity (spec §4.4/§5).
const queueCapacity = 1 << 12

// throttleThreshold is the queue length above which the producer sleeps
// briefly before the next send (spec §5: capacity-16).
const throttleThreshold = queueCapacity - 16

// throttleSleep is the brief back-pressure sleep (spec §5: ~100ms).
const throttleSleep = 100 * time.Millisecond

// RawWay is a way as handed off by the PBF reader: its id and the full,
// unsimplified ordered node-id list with resolved coordinates.
type RawWay struct {
	ID     int64
	NodeIDs []int64
	Coords  []coord.Coord
}

// SimplifiedWay is RawWay after RDP with unreferenced nodes dropped.
type SimplifiedWay struct {
	ID      int64
	NodeIDs []int64
}

// Counter reports, and decides whether to keep, a node's reference count.
// The simplifier consults it instead of owning the counts itself, since the
// counts are kept by the ingest pipeline (internal/ingest.NodeCounter)
// (spec §3: "a node's counter ... is monotonically non-decreasing while
// ingest runs; pinned nodes (counter >= 1) are never deleted").
type Counter interface {
	Counter(id uint64) uint16
}

// Queue is the bounded MPSC channel between the PBF reader (producer) and
// the single simplifier consumer goroutine (spec §4.4/§5).
type Queue struct {
	ch chan RawWay
}

// NewQueue creates a Queue with the recommended capacity.
func NewQueue() *Queue {
	return &Queue{ch: make(chan RawWay, queueCapacity)}
}

// Send enqueues a way, sleeping briefly if the queue is nearly full so the
// producer applies back-pressure instead of blocking indefinitely on a full
// channel (spec §5: "the producer throttles (brief sleep) when the queue
// length exceeds capacity-16").
func (q *Queue) Send(w RawWay) {
	for len(q.ch) > throttleThreshold {
		time.Sleep(throttleSleep)
	}
	q.ch <- w
}

// Close signals no more ways will be sent. The consumer drains remaining
// items before returning (spec §5: "the queue must drain before the parser
// terminates").
func (q *Queue) Close() {
	close(q.ch)
}

// Run is the single consumer goroutine: it simplifies each way as it
// arrives and calls emit with the result. Run returns once the queue is
// closed and drained.
func Run(q *Queue, counter Counter, emit func(SimplifiedWay)) {
	for w := range q.ch {
		emit(Simplify(w, counter))
	}
}

// Simplify applies RDP to a single way, keeping any node whose reference
// counter is >= 1 (pinned: referenced by another way, a relation, or by
// being a shared endpoint) regardless of geometric redundancy.
//
// Endpoints are always kept. Spec §3 requires the result to have length >= 2;
// ways already at length 2 or below are returned unchanged.
func Simplify(w RawWay, counter Counter) SimplifiedWay {
	if len(w.NodeIDs) <= 2 {
		return SimplifiedWay{ID: w.ID, NodeIDs: append([]int64(nil), w.NodeIDs...)}
	}

	keep := make([]bool, len(w.NodeIDs))
	keep[0] = true
	keep[len(w.NodeIDs)-1] = true

	rdp(w.Coords, 0, len(w.Coords)-1, keep)

	// Never drop a node some other way/relation still references.
	for i, id := range w.NodeIDs {
		if counter.Counter(uint64(id)) >= 1 {
			keep[i] = true
		}
	}

	out := make([]int64, 0, len(w.NodeIDs))
	for i, id := range w.NodeIDs {
		if keep[i] {
			out = append(out, id)
		}
	}
	if len(out) < 2 {
		// Always keep both true endpoints even if geometry collapsed them.
		out = []int64{w.NodeIDs[0], w.NodeIDs[len(w.NodeIDs)-1]}
	}
	return SimplifiedWay{ID: w.ID, NodeIDs: out}
}

// rdp marks indices [lo,hi] of pts that must be kept under the
// Ramer-Douglas-Peucker criterion, recursing on the farthest point above
// the epsilon corridor.
func rdp(pts []coord.Coord, lo, hi int, keep []bool) {
	if hi-lo < 2 {
		return
	}

	maxDistSq := int64(0)
	farthest := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistSq(pts[i], pts[lo], pts[hi])
		if d > maxDistSq {
			maxDistSq = d
			farthest = i
		}
	}

	if farthest == -1 || maxDistSq <= epsilonSq {
		return
	}

	keep[farthest] = true
	rdp(pts, lo, farthest, keep)
	rdp(pts, farthest, hi, keep)
}

// perpendicularDistSq returns the squared perpendicular distance (in
// decimeter²) from p to the segment a-b, or the squared distance to a if
// a == b.
func perpendicularDistSq(p, a, b coord.Coord) int64 {
	dx := int64(b.X) - int64(a.X)
	dy := int64(b.Y) - int64(a.Y)
	if dx == 0 && dy == 0 {
		return coord.DistanceGridSq(p, a)
	}

	px := int64(p.X) - int64(a.X)
	py := int64(p.Y) - int64(a.Y)

	lenSq := dx*dx + dy*dy
	// Projection scalar t = (p-a)·(b-a) / |b-a|^2, clamped to [0,1] so the
	// nearest point stays on the segment rather than its infinite line.
	t := float64(px*dx+py*dy) / float64(lenSq)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	projX := float64(a.X) + t*float64(dx)
	projY := float64(a.Y) + t*float64(dy)

	ddx := float64(p.X) - projX
	ddy := float64(p.Y) - projY
	return int64(ddx*ddx + ddy*ddy)
}
