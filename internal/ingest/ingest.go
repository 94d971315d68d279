// Package ingest implements the PBF-to-index pipeline (spec §4, the
// producer side of C1/C2/C3/C5/C6/C7): it drives internal/pbfreader over
// an OSM extract, classifies every primitive, names it, simplifies way
// geometry, assembles administrative-boundary polygons, and hands back a
// frozen internal/world.World ready to answer queries.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/adminregion"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/coord"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/idstore"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/nametrie"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/pbfreader"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/roadindex"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/simplify"
	"github.com/thomasfischer-his/pbflookup-sub000/internal/world"
)

// DefaultGrid returns the grid anchor spec §4.1 describes for a Sweden-
// centered extract (lon 4.4..31.2, lat 53.8..71.5), scaled at the range's
// middle latitude. Callers ingesting a different extract should build
// their own coord.Grid and set it on Options.
func DefaultGrid() coord.Grid {
	return coord.NewGrid(4.4, 53.8, 62.65)
}

// Options configures a single ingest run.
type Options struct {
	// Grid is the coordinate grid nodes are projected onto. The zero value
	// selects DefaultGrid.
	Grid coord.Grid
	// Workers is the PBF decoder's internal parallelism. <= 0 selects 1.
	Workers int
	// Blacklist excludes known-noisy or out-of-country way ids from the
	// road index (spec §4.6). A nil map selects defaultWayBlacklist.
	Blacklist map[int64]bool
	// RelationBlacklist excludes relations entirely from ingestion: none
	// of their names, members, or admin/code registrations are recorded.
	// A nil map selects defaultRelationBlacklist.
	RelationBlacklist map[int64]bool
	// AdminRelationBlacklist excludes administrative-boundary relations
	// from polygon assembly and SCB/NUTS3 code registration. A nil map
	// selects defaultAdminRelationBlacklist.
	AdminRelationBlacklist map[int64]bool
	// Logger receives an info-level message as each ingest stage completes
	// (with element counts after the scan); no durations are recorded. A
	// nil Logger runs silently.
	Logger *zap.Logger
}

// pendingAdminRelation holds an administrative/historic boundary relation's
// raw member list until the simplifier has fully drained, so polygon
// assembly never reads a way's geometry before it is ready (spec §5:
// "the simplifier must have finished before the node-reference counters
// are read by other consumers" — the same ordering constraint applies to
// the way geometry the counters gate).
type pendingAdminRelation struct {
	id         int64
	name       string
	adminLevel int
	members    []pbfreader.Member
}

type codeRegistration struct {
	code       string
	relationID int64
}

// Run ingests r (an OSM PBF stream) and builds the full set of C2-C7
// indices, returning a World ready for querying.
func Run(ctx context.Context, r io.Reader, opts Options) (*world.World, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	grid := opts.Grid
	if grid == (coord.Grid{}) {
		grid = DefaultGrid()
	}

	nodeCoord := idstore.New[coord.Coord]()
	wayNodesStore := idstore.New[model.WayNodes]()
	relMembers := idstore.New[model.RelationMem]()
	nodeNames := idstore.New[string]()
	wayNames := idstore.New[string]()
	relNames := idstore.New[string]()
	trie := nametrie.New()
	roads := roadindex.NewIndex(opts.wayBlacklist())
	relBlacklist := opts.relationBlacklist()
	adminBlacklist := opts.adminRelationBlacklist()
	counter := NewNodeCounter()

	queue := simplify.NewQueue()
	var simplifyWG sync.WaitGroup
	simplifyWG.Add(1)
	go func() {
		defer simplifyWG.Done()
		simplify.Run(queue, counter, func(sw simplify.SimplifiedWay) {
			wayNodesStore.Insert(uint64(sw.ID), model.WayNodes{Nodes: sw.NodeIDs})
			for _, id := range sw.NodeIDs {
				counter.Increase(uint64(id))
			}
		})
	}()

	var (
		mu           sync.Mutex
		pendingAdmin []pendingAdminRelation
		scbCodes     []codeRegistration
		nuts3Codes   []codeRegistration
	)

	var nodeCount, wayCount, relCount int

	handler := pbfreader.Handler{
		OnNode: func(n pbfreader.Node) error {
			nodeCount++
			c := grid.FromLonLat(n.Lon, n.Lat)
			nodeCoord.Insert(uint64(n.ID), c)
			if len(n.Tags) == 0 {
				return nil
			}
			rwType, skip := classifyNode(n.Tags)
			if skip {
				return nil
			}
			names, canonical := extractNames(n.Tags)
			if len(names) == 0 {
				return nil
			}
			counter.Increase(uint64(n.ID))
			elem := model.OSMElement{Kind: model.KindNode, ID: n.ID, Type: rwType}
			for _, name := range names {
				trie.Insert(name, elem)
			}
			if canonical != "" {
				nodeNames.Insert(uint64(n.ID), canonical)
			}
			return nil
		},
		OnWay: func(w pbfreader.Way) error {
			wayCount++
			coords := make([]coord.Coord, len(w.NodeIDs))
			for i, id := range w.NodeIDs {
				c, _ := nodeCoord.Get(uint64(id))
				coords[i] = c
			}

			queue.Send(simplify.RawWay{ID: w.ID, NodeIDs: w.NodeIDs, Coords: coords})

			if rwType := classifyWay(w.Tags); rwType != model.TypeUnknown {
				if names, canonical := extractNames(w.Tags); len(names) > 0 {
					elem := model.OSMElement{Kind: model.KindWay, ID: w.ID, Type: rwType}
					for _, name := range names {
						trie.Insert(name, elem)
					}
					if canonical != "" {
						wayNames.Insert(uint64(w.ID), canonical)
					}
				}
			}

			if designations := roadindex.Classify(w.Tags["highway"], w.Tags["ref"]); len(designations) > 0 {
				roads.Add(roadindex.WayRef{ID: w.ID, Coords: coords, NodeIDs: w.NodeIDs}, designations)
			}
			return nil
		},
		OnRelation: func(rel pbfreader.Relation) error {
			relCount++
			if relBlacklist[rel.ID] {
				return nil
			}
			rwType, adminLevel, isAdminBoundary := classifyRelation(rel.Tags)
			names, canonical := extractNames(rel.Tags)

			members := make([]model.RelationMember, 0, len(rel.Members))
			for _, m := range rel.Members {
				kind := relationMemberKind(m.Kind)
				if kind == model.KindUnknown {
					continue
				}
				members = append(members, model.RelationMember{
					Element: model.OSMElement{Kind: kind, ID: m.Ref},
					Role:    roleFlags(m.Role),
				})
			}
			relMembers.Insert(uint64(rel.ID), model.RelationMem{Members: members})

			if isAdminBoundary && len(canonical) > 1 && !adminBlacklist[rel.ID] {
				mu.Lock()
				pendingAdmin = append(pendingAdmin, pendingAdminRelation{
					id: rel.ID, name: canonical, adminLevel: adminLevel, members: rel.Members,
				})
				mu.Unlock()
			}

			if scb := rel.Tags["ref:scb"]; scb != "" {
				mu.Lock()
				scbCodes = append(scbCodes, codeRegistration{code: scb, relationID: rel.ID})
				mu.Unlock()
			}
			if scb := rel.Tags["ref:se:scb"]; scb != "" {
				mu.Lock()
				scbCodes = append(scbCodes, codeRegistration{code: scb, relationID: rel.ID})
				mu.Unlock()
			}
			if nuts3 := rel.Tags["ref:nuts:3"]; strings.HasPrefix(nuts3, "SE") {
				mu.Lock()
				nuts3Codes = append(nuts3Codes, codeRegistration{code: strings.TrimPrefix(nuts3, "SE"), relationID: rel.ID})
				mu.Unlock()
			}

			if len(names) > 0 {
				elem := model.OSMElement{Kind: model.KindRelation, ID: rel.ID, Type: rwType}
				for _, name := range names {
					trie.Insert(name, elem)
				}
				if canonical != "" {
					relNames.Insert(uint64(rel.ID), canonical)
				}
			}
			return nil
		},
	}

	if err := pbfreader.Read(ctx, r, opts.Workers, handler); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	logger.Info("pbf scan complete", zap.Int("nodes", nodeCount), zap.Int("ways", wayCount), zap.Int("relations", relCount))

	// Close and drain the simplifier before reading wayNodesStore for
	// polygon assembly (spec §5's ordering guarantee).
	queue.Close()
	simplifyWG.Wait()
	logger.Info("simplifier drained")

	regionBuilder := adminregion.NewBuilder(adminBlacklist)
	for _, pending := range pendingAdmin {
		var ways []adminregion.WayRef
		for _, m := range pending.members {
			if m.Kind != pbfreader.MemberWay {
				continue
			}
			wn, ok := wayNodesStore.Get(uint64(m.Ref))
			if !ok {
				continue
			}
			wayCoords := make([]coord.Coord, 0, len(wn.Nodes))
			for _, id := range wn.Nodes {
				if c, ok := nodeCoord.Get(uint64(id)); ok {
					wayCoords = append(wayCoords, c)
				}
			}
			ways = append(ways, adminregion.WayRef{Coords: wayCoords, Inner: m.Role == "inner"})
		}
		polygons := adminregion.AssemblePolygons(ways)
		regionBuilder.AddRegion(&adminregion.Region{
			RelationID: pending.id,
			Name:       pending.name,
			AdminLevel: pending.adminLevel,
			Polygons:   polygons,
			Bounds:     adminregion.ComputeBounds(polygons),
		})
	}
	for _, reg := range scbCodes {
		regionBuilder.AddSCBCode(reg.code, reg.relationID)
	}
	for _, reg := range nuts3Codes {
		regionBuilder.AddNUTS3Code(reg.code, reg.relationID)
	}
	regions := regionBuilder.Build()
	logger.Info("admin regions assembled", zap.Int("count", len(pendingAdmin)))

	w := &world.World{
		NodeCoord:    nodeCoord,
		WayNodes:     wayNodesStore,
		RelMembers:   relMembers,
		NodeNames:    nodeNames,
		WayNames:     wayNames,
		RelNames:     relNames,
		NameTrie:     trie,
		AdminRegions: regions,
		Roads:        roads,
		Grid:         grid,
	}
	w.FixRoadRegions()
	logger.Info("road regional repair pass complete")

	return w, nil
}

func relationMemberKind(k pbfreader.MemberKind) model.ElementKind {
	switch k {
	case pbfreader.MemberNode:
		return model.KindNode
	case pbfreader.MemberWay:
		return model.KindWay
	case pbfreader.MemberRelation:
		return model.KindRelation
	default:
		return model.KindUnknown
	}
}

func roleFlags(role string) model.RoleFlags {
	switch role {
	case "outer":
		return model.RoleOuter
	case "inner":
		return model.RoleInner
	default:
		return 0
	}
}
