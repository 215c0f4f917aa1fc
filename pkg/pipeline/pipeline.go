// Package pipeline orchestrates §4.3's network materialisation and
// §4.4's three-pass PT stitching over a single osmsource.EntitySource,
// owning the build context (settings, id generators, caches) for exactly
// one invocation (§5 "the network and zoning are the only mutable
// process-wide state and are owned exclusively by the current pipeline
// invocation"). This is the Go-native realisation of what the teacher's
// cmd/preprocess/main.go does inline (parse -> build -> component-filter
// -> contract -> serialise) for its routing stack.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmnet"
	"github.com/azybler/osmnetplan/pkg/osmsource"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/ptzoning"
	"github.com/azybler/osmnetplan/pkg/settings"
	"github.com/azybler/osmnetplan/pkg/spatial"
	"github.com/azybler/osmnetplan/pkg/zonemodel"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Result is the output object graph of a single pipeline invocation (§6
// Outputs): the materialised multi-layer network and its stitched PT
// zoning, plus the spatial index built over it (exposed for callers that
// want to run further ad-hoc proximity queries, e.g. a writer emitting a
// debug overlay).
type Result struct {
	Network *netmodel.Network
	Zoning  *zonemodel.Zoning
	Index   *spatial.Index
}

// relationRecord is a relation buffered during the single streaming pass
// for replay against pass 1/2 once every node and way has been seen (§5
// ordering: relations always arrive last, so every member's tags are
// already known by the time a relation is processed).
type relationRecord struct {
	id      int64
	tags    map[string]string
	members []ptzoning.RelationMember
}

// Run streams src exactly once in the kind order §5 requires (nodes, then
// ways, then relations), materialising the network per §4.3 and, if the
// pt sub-parser is active, stitching the PT zoning per §4.4. An optional
// node-retention pre-pass (§4.3a) runs as a second, ways-only scan before
// the main one when s.UseNodeRetentionPlanner is set.
func Run(ctx context.Context, src *osmsource.EntitySource, s *settings.Settings) (*Result, error) {
	osmtags.ResetCaches()

	builder := osmnet.NewBuilder(s, s.CountryISO2)

	if s.UseNodeRetentionPlanner {
		log.Println("pipeline: node-retention pre-pass (ways only)")
		if err := runRetentionPrepass(ctx, src, s, builder); err != nil {
			return nil, err
		}
	}

	log.Println("pipeline: materialising network (nodes, ways, relations)")

	sc, err := src.Scan(ctx, osmsource.ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("pipeline: open main pass: %w", err)
	}

	ptActive := s.IsParserActive(settings.PTParser)

	nodePos := map[int64]orb.Point{}
	nodeTags := map[int64]map[string]string{}
	var wayTags map[int64]map[string]string
	var ptEntities []ptzoning.Entity
	var relationBuf []relationRecord
	if ptActive {
		wayTags = map[int64]map[string]string{}
	}

	for sc.Scan() {
		switch o := sc.Object().(type) {
		case *osm.Node:
			id := int64(o.ID)
			lat, lon := o.Lat, o.Lon
			tags := o.Tags.Map()
			builder.ProcessNode(id, lat, lon, tags)

			if !ptActive || s.IsNodeExcluded(id) || !s.PassesBounding(lat, lon) {
				continue
			}
			nodePos[id] = orb.Point{lon, lat}
			if len(tags) > 0 {
				nodeTags[id] = tags
			}

		case *osm.Way:
			id := int64(o.ID)
			nodeIDs := wayNodeIDs(o)
			tags := o.Tags.Map()
			if err := builder.ProcessWay(id, nodeIDs, tags); err != nil {
				log.Printf("pipeline: way %d: %v", id, err)
			}

			if !ptActive {
				continue
			}
			wayTags[id] = tags
			if s.IsWayExcluded(id) {
				continue
			}
			ptEntities = append(ptEntities, ptzoning.Entity{
				OsmID:    id,
				IsWay:    true,
				Tags:     tags,
				Geometry: wayGeometry(nodeIDs, nodePos),
				Name:     tags["name"],
			})

		case *osm.Relation:
			if !ptActive {
				continue
			}
			relationBuf = append(relationBuf, newRelationRecord(o, nodeTags, wayTags))
		}
	}
	if err := sc.Err(); err != nil {
		sc.Close()
		return nil, fmt.Errorf("pipeline: main pass scan: %w", err)
	}
	sc.Close()

	log.Println("pipeline: splitting circular ways")
	builder.FinishCircularWays()
	log.Println("pipeline: repairing topology (breaking links at internal intersections)")
	builder.Repair()
	if s.RemoveDanglingSubnetworks {
		log.Println("pipeline: pruning dangling subnetworks")
		builder.Prune()
	}
	if s.ConsolidateLinkSegmentTypes {
		log.Println("pipeline: consolidating link-segment types")
		builder.Consolidate()
	}
	builder.Renumber()

	idx := spatial.BuildFromNetwork(builder.Network)

	if !ptActive {
		return &Result{Network: builder.Network, Zoning: zonemodel.NewZoning(), Index: idx}, nil
	}

	log.Println("pipeline: pt stitching pass 1 (pre-classification)")
	pass1 := ptzoning.NewPass1()
	for _, r := range relationBuf {
		pass1.ObserveRelation(r.tags, r.members)
	}

	log.Println("pipeline: pt stitching pass 2 (waiting areas and groups)")
	pass2 := ptzoning.NewPass2(pass1)
	for _, e := range ptEntities {
		pass2.ObserveEntity(e)
	}
	for id, tags := range nodeTags {
		if s.IsNodeExcluded(id) {
			continue
		}
		pass2.ObserveEntity(ptzoning.Entity{
			OsmID:    id,
			Tags:     tags,
			Geometry: nodePos[id],
			Name:     tags["name"],
		})
	}
	for _, r := range relationBuf {
		if !osmtags.IsPTv2StopAreaRelation(r.tags) {
			continue
		}
		memberIDs := make([]int64, len(r.members))
		var stations []ptzoning.Entity
		for i, m := range r.members {
			memberIDs[i] = m.OsmID
			if (m.IsNode || m.IsWay) && osmtags.IsPTv2Station(m.Tags) {
				stations = append(stations, ptzoning.Entity{OsmID: m.OsmID, Tags: m.Tags, Name: m.Tags["name"]})
			}
		}
		pass2.ObserveStopAreaRelation(r.id, r.tags, memberIDs, stations)
	}

	log.Println("pipeline: pt stitching pass 3 (stop-positions, stations, orphan zones)")
	pass3 := ptzoning.NewPass3(pass2.Zoning, builder.Network, idx, s, pass2, s.LeftHandDrive)
	pass3.ResolveStopPositions(pass2.DeferredStopPositions)
	pass3.ResolveStations(pass2.DeferredStations)
	pass3.ResolveOrphanZones()
	pass2.Zoning.CullDanglingGroups()

	return &Result{Network: builder.Network, Zoning: pass2.Zoning, Index: idx}, nil
}

// runRetentionPrepass runs §4.3a's optional ways-only scan and installs
// the resulting bitset on builder before the main pass stores any nodes.
func runRetentionPrepass(ctx context.Context, src *osmsource.EntitySource, s *settings.Settings, builder *osmnet.Builder) error {
	planner := osmnet.NewNodeRetentionPlanner(s)
	sc, err := src.Scan(ctx, osmsource.ScanOptions{SkipNodes: true, SkipRelations: true})
	if err != nil {
		return fmt.Errorf("pipeline: retention pre-pass: %w", err)
	}
	for sc.Scan() {
		if w, ok := sc.Object().(*osm.Way); ok {
			planner.ObserveWay(int64(w.ID), wayNodeIDs(w), w.Tags.Map())
		}
	}
	if err := sc.Err(); err != nil {
		sc.Close()
		return fmt.Errorf("pipeline: retention pre-pass scan: %w", err)
	}
	sc.Close()
	builder.SetNodeRetentionBitset(planner.Bitset())
	return nil
}

// wayNodeIDs extracts the plain int64 node-id sequence from an osm.Way,
// decoupling osmnet/ptzoning from paulmach/osm's wire types (§9 "the
// materialisation core stays decoupled from the OSM decoder").
func wayNodeIDs(w *osm.Way) []int64 {
	ids := make([]int64, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = int64(wn.ID)
	}
	return ids
}

// wayGeometry assembles a way's polyline (or, for a closed way, a
// polygon ring) from already-seen node positions (§4.4 pass 2 "geometry
// (point, centroid of line/polygon, or outer ring of multipolygon)").
// Nodes outside the bounding area or not yet seen are silently skipped;
// an empty result yields a nil geometry, which pass 2/3 treat as
// unmatchable rather than panicking.
func wayGeometry(nodeIDs []int64, nodePos map[int64]orb.Point) orb.Geometry {
	pts := make(orb.LineString, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if p, ok := nodePos[id]; ok {
			pts = append(pts, p)
		}
	}
	if len(pts) == 0 {
		return nil
	}
	if len(pts) >= 4 && pts[0] == pts[len(pts)-1] {
		return orb.Polygon{orb.Ring(pts)}
	}
	return pts
}

// newRelationRecord buffers a relation's tags and resolves each member's
// tags from the node/way tag caches collected during the same pass.
func newRelationRecord(r *osm.Relation, nodeTags, wayTags map[int64]map[string]string) relationRecord {
	rec := relationRecord{
		id:      int64(r.ID),
		tags:    r.Tags.Map(),
		members: make([]ptzoning.RelationMember, len(r.Members)),
	}
	for i, m := range r.Members {
		member := ptzoning.RelationMember{Role: m.Role, OsmID: m.Ref}
		switch m.Type {
		case osm.TypeWay:
			member.IsWay = true
			member.Tags = wayTags[m.Ref]
		case osm.TypeNode:
			member.IsNode = true
			member.Tags = nodeTags[m.Ref]
		}
		rec.members[i] = member
	}
	return rec
}
