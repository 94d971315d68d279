package simplify

import (
	"testing"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
)

type fakeCounter map[uint64]uint16

func (f fakeCounter) Counter(id uint64) uint16 { return f[id] }

func TestSimplifyDropsUnreferencedNearlyStraightNode(t *testing.T) {
	// Three collinear-ish points; middle point within the 2m corridor.
	way := RawWay{
		ID:      1,
		NodeIDs: []int64{1, 2, 3},
		Coords: []coord.Coord{
			{X: 0, Y: 0},
			{X: 500, Y: 1}, // 0.1m off the line — inside epsilon
			{X: 1000, Y: 0},
		},
	}
	got := Simplify(way, fakeCounter{})
	if len(got.NodeIDs) != 2 {
		t.Fatalf("expected middle node dropped, got %v", got.NodeIDs)
	}
}

func TestSimplifyKeepsReferencedNode(t *testing.T) {
	way := RawWay{
		ID:      1,
		NodeIDs: []int64{1, 2, 3},
		Coords: []coord.Coord{
			{X: 0, Y: 0},
			{X: 500, Y: 1},
			{X: 1000, Y: 0},
		},
	}
	got := Simplify(way, fakeCounter{2: 1})
	found := false
	for _, id := range got.NodeIDs {
		if id == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("pinned node 2 must survive simplification, got %v", got.NodeIDs)
	}
}

func TestSimplifyKeepsFarOutlier(t *testing.T) {
	way := RawWay{
		ID:      1,
		NodeIDs: []int64{1, 2, 3},
		Coords: []coord.Coord{
			{X: 0, Y: 0},
			{X: 500, Y: 10000}, // far outside the corridor
			{X: 1000, Y: 0},
		},
	}
	got := Simplify(way, fakeCounter{})
	if len(got.NodeIDs) != 3 {
		t.Fatalf("expected outlier kept, got %v", got.NodeIDs)
	}
}

func TestSimplifyMinimumLengthInvariant(t *testing.T) {
	way := RawWay{ID: 1, NodeIDs: []int64{1, 2}, Coords: []coord.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}}}
	got := Simplify(way, fakeCounter{})
	if len(got.NodeIDs) < 2 {
		t.Fatalf("simplified way must have length >= 2, got %d", len(got.NodeIDs))
	}
}

func TestQueueSendAndDrain(t *testing.T) {
	q := NewQueue()
	// Sanity: queue accepts sends and Run drains them.
	done := make(chan struct{})
	var count int
	go func() {
		Run(q, fakeCounter{}, func(SimplifiedWay) { count++ })
		close(done)
	}()
	for i := 0; i < 5; i++ {
		q.Send(RawWay{ID: int64(i), NodeIDs: []int64{1, 2}, Coords: []coord.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}}})
	}
	q.Close()
	<-done
	if count != 5 {
		t.Fatalf("expected 5 ways drained, got %d", count)
	}
}
