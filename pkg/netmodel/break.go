package netmodel

import (
	"github.com/azybler/osmnetplan/pkg/geo"
	"github.com/paulmach/orb"
)

// BreakResult reports the outcome of BreakLinkAt: the two replacement
// links, and a map from each removed segment id to the new segment that
// preserves its original downstream (boarding) node — the fixup §9's
// design note calls for in place of an observer registry.
type BreakResult struct {
	NoOp               bool
	LinkA, LinkB       LinkID // LinkA ends at the break point, LinkB starts there
	SegmentReplacement map[LinkSegmentID]LinkSegmentID
}

func polylineLengthM(geom orb.LineString) float64 {
	lats := make([]float64, len(geom))
	lons := make([]float64, len(geom))
	for i, p := range geom {
		lats[i], lons[i] = p[1], p[0] // orb.Point is {lon, lat}
	}
	return geo.PolylineLength(lats, lons)
}

func removeAdjacency(n *Node, seg LinkSegmentID) {
	out := n.AdjacentSegments[:0]
	for _, s := range n.AdjacentSegments {
		if s != seg {
			out = append(out, s)
		}
	}
	n.AdjacentSegments = out
}

// BreakLinkAt splits the link at the node atNode, which must be an
// internal (non-endpoint) vertex of the link's polyline (§4.3b step 4.a,
// §9 "single break_link_at function"). If atNode is already an endpoint
// the call is a no-op (§8 boundary case). Breaking a previously-broken
// link is safe to call again: only the half containing atNode as an
// internal vertex should be targeted by the caller (§4.3b step 4.b) —
// this function itself always operates on a single, still-live link id.
func BreakLinkAt(l *Layer, linkID LinkID, atNode NodeID) BreakResult {
	link := l.Link(linkID)
	if link.Removed {
		panic("netmodel: BreakLinkAt called on an already-removed link")
	}
	if atNode == link.NodeA || atNode == link.NodeB {
		return BreakResult{NoOp: true, LinkA: linkID, LinkB: linkID, SegmentReplacement: map[LinkSegmentID]LinkSegmentID{}}
	}

	atPos := l.Node(atNode).Position
	idx := -1
	for i, p := range link.Geometry {
		if p == atPos {
			idx = i
			break
		}
	}
	if idx <= 0 || idx >= len(link.Geometry)-1 {
		panic("netmodel: BreakLinkAt: node is not an internal vertex of the link geometry")
	}

	geomA := append(orb.LineString{}, link.Geometry[:idx+1]...)
	geomB := append(orb.LineString{}, link.Geometry[idx:]...)

	oldNodeA, oldNodeB := link.NodeA, link.NodeB
	oldWayID, oldTags := link.OsmWayID, link.Tags
	oldSegAB, oldSegBA := link.SegmentAB, link.SegmentBA

	linkA := l.AddLink(oldNodeA, atNode, geomA, polylineLengthM(geomA), oldWayID, oldTags)
	linkB := l.AddLink(atNode, oldNodeB, geomB, polylineLengthM(geomB), oldWayID, oldTags)

	replacement := map[LinkSegmentID]LinkSegmentID{}

	if oldSegAB != NoID {
		segType, lanes := l.Segment(oldSegAB).Type, l.Segment(oldSegAB).Lanes
		removeAdjacency(l.Node(oldNodeB), oldSegAB)
		l.AddSegment(linkA, DirectionAB, segType, lanes) // downstream atNode
		segB := l.AddSegment(linkB, DirectionAB, segType, lanes) // downstream oldNodeB
		replacement[oldSegAB] = segB
	}
	if oldSegBA != NoID {
		segType, lanes := l.Segment(oldSegBA).Type, l.Segment(oldSegBA).Lanes
		removeAdjacency(l.Node(oldNodeA), oldSegBA)
		l.AddSegment(linkB, DirectionBA, segType, lanes) // downstream atNode
		segA := l.AddSegment(linkA, DirectionBA, segType, lanes) // downstream oldNodeA
		replacement[oldSegBA] = segA
	}

	if oldWayID != 0 {
		l.replaceWayLink(oldWayID, linkID, linkA, linkB)
	}
	// Re-fetch: the l.AddLink calls above may have grown l.links past its
	// capacity and reallocated the backing array, which would leave `link`
	// pointing at a stale copy — writing Removed through it would silently
	// not tombstone the live arena element.
	l.Link(linkID).Removed = true

	return BreakResult{LinkA: linkA, LinkB: linkB, SegmentReplacement: replacement}
}
