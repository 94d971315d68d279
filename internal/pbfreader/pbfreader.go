// Package pbfreader decodes an OSM PBF extract into the plain node/way/
// relation shapes the ingest pipeline builds its indices from (spec §4,
// C1). It knows nothing about RealWorldType classification, simplification
// or index population — that belongs to internal/ingest; this package only
// turns BlobHeader/Blob/PrimitiveGroup framing into Go values, the way the
// teacher's parser.go turns ISO-8211 field framing into Feature values.
package pbfreader

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// Node is a decoded OSM node: its id, its position, and its tags.
type Node struct {
	ID   int64
	Lon  float64
	Lat  float64
	Tags map[string]string
}

// Way is a decoded OSM way: its id, the ids of its member nodes in order,
// and its tags.
type Way struct {
	ID      int64
	NodeIDs []int64
	Tags    map[string]string
}

// MemberKind discriminates a relation member's element kind.
type MemberKind uint8

const (
	MemberUnknown MemberKind = iota
	MemberNode
	MemberWay
	MemberRelation
)

// Member is one element of a relation, with its role string (e.g. "outer",
// "inner", "admin_centre").
type Member struct {
	Kind MemberKind
	Ref  int64
	Role string
}

// Relation is a decoded OSM relation: its id, its ordered members, and its
// tags.
type Relation struct {
	ID      int64
	Members []Member
	Tags    map[string]string
}

// Handler receives decoded primitives as the scan proceeds. OSM PBF files
// are ordered nodes-then-ways-then-relations within the file, so by the
// time OnWay is called every node it can reference has already been
// delivered via OnNode, and likewise for OnRelation and its way/node
// members (spec §6).
type Handler struct {
	OnNode     func(Node) error
	OnWay      func(Way) error
	OnRelation func(Relation) error
}

// Read streams a PBF file through scanner, invoking h's callbacks for each
// decoded primitive. workers controls the decoder's internal parallelism
// (blob decompression/unmarshal), per osmpbf.New's own workers argument;
// the handler callbacks themselves are invoked serially from this
// goroutine, in file order, so single-writer discipline on the ingest
// indices holds without extra locking (spec §5).
func Read(ctx context.Context, r io.Reader, workers int, h Handler) error {
	if workers <= 0 {
		workers = 1
	}
	scanner := osmpbf.New(ctx, r, workers)
	defer scanner.Close()

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			if h.OnNode == nil {
				continue
			}
			if err := h.OnNode(toNode(obj)); err != nil {
				return fmt.Errorf("pbfreader: node %d: %w", obj.ID, err)
			}
		case *osm.Way:
			if h.OnWay == nil {
				continue
			}
			if err := h.OnWay(toWay(obj)); err != nil {
				return fmt.Errorf("pbfreader: way %d: %w", obj.ID, err)
			}
		case *osm.Relation:
			if h.OnRelation == nil {
				continue
			}
			if err := h.OnRelation(toRelation(obj)); err != nil {
				return fmt.Errorf("pbfreader: relation %d: %w", obj.ID, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pbfreader: scan: %w", err)
	}
	return nil
}

func tagsToMap(tags osm.Tags) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.Key] = t.Value
	}
	return m
}

func toNode(n *osm.Node) Node {
	return Node{
		ID:   int64(n.ID),
		Lon:  n.Lon,
		Lat:  n.Lat,
		Tags: tagsToMap(n.Tags),
	}
}

func toWay(w *osm.Way) Way {
	ids := make([]int64, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = int64(wn.ID)
	}
	return Way{
		ID:      int64(w.ID),
		NodeIDs: ids,
		Tags:    tagsToMap(w.Tags),
	}
}

func toRelation(rel *osm.Relation) Relation {
	members := make([]Member, len(rel.Members))
	for i, m := range rel.Members {
		members[i] = Member{Kind: memberKind(m.Type), Ref: m.Ref, Role: m.Role}
	}
	return Relation{
		ID:      int64(rel.ID),
		Members: members,
		Tags:    tagsToMap(rel.Tags),
	}
}

func memberKind(t osm.Type) MemberKind {
	switch t {
	case osm.TypeNode:
		return MemberNode
	case osm.TypeWay:
		return MemberWay
	case osm.TypeRelation:
		return MemberRelation
	default:
		return MemberUnknown
	}
}
