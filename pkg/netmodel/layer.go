package netmodel

import (
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

// Layer is a disjoint mode family with its own graph (§3
// InfrastructureLayer): it exclusively owns its Nodes/Links/LinkSegments/
// LinkSegmentTypes arenas. Cross-references between them are ids resolved
// through the owning Layer (§9 arena+index pattern), never pointers.
type Layer struct {
	Kind           osmtags.Layer
	SupportedModes osmtags.ModeSet

	nodes []Node
	links []Link
	segs  []LinkSegment
	types []LinkSegmentType

	// positionIndex maps a node's position to its id, enforcing "Position
	// unique within layer; each position corresponds to at most one node"
	// (§3 Node invariant).
	positionIndex map[orb.Point]NodeID

	// wayLinks indexes every link materialised from a given OSM way, so
	// topology repair and PT stitching can find "the links for this way"
	// without a linear scan (§9 spatial-search design note's sibling
	// index for way lookups).
	wayLinks map[int64][]LinkID

	// typeIndex deduplicates LinkSegmentTypes by (externalKey, access
	// properties) so identical types are reused (§4.3b.h).
	typeIndex map[string][]LinkSegmentTypeID

	nextNodeID NodeID
	nextLinkID LinkID
	nextSegID  LinkSegmentID
	nextTypeID LinkSegmentTypeID
}

// NewLayer creates an empty layer for the given kind.
func NewLayer(kind osmtags.Layer) *Layer {
	return &Layer{
		Kind:           kind,
		SupportedModes: osmtags.NewModeSet(),
		positionIndex:  map[orb.Point]NodeID{},
		wayLinks:       map[int64][]LinkID{},
		typeIndex:      map[string][]LinkSegmentTypeID{},
	}
}

// NumNodes, NumLinks, NumSegments, NumTypes report arena sizes.
func (l *Layer) NumNodes() int   { return len(l.nodes) }
func (l *Layer) NumLinks() int   { return len(l.links) }
func (l *Layer) NumSegments() int { return len(l.segs) }
func (l *Layer) NumTypes() int   { return len(l.types) }

// Node, Link, Segment, Type return a pointer into the arena for in-place
// mutation. Panics on an out-of-range id — a programming error (§7
// "Internal invariant violation").
func (l *Layer) Node(id NodeID) *Node               { return &l.nodes[id-1] }
func (l *Layer) Link(id LinkID) *Link               { return &l.links[id-1] }
func (l *Layer) Segment(id LinkSegmentID) *LinkSegment { return &l.segs[id-1] }
func (l *Layer) Type(id LinkSegmentTypeID) *LinkSegmentType { return &l.types[id-1] }

// Nodes, Links, Segments, Types expose the arenas for read-only iteration
// in id order, which is the stable order §5 requires for deterministic
// output.
func (l *Layer) Nodes() []Node               { return l.nodes }
func (l *Layer) Links() []Link               { return l.links }
func (l *Layer) Segments() []LinkSegment     { return l.segs }
func (l *Layer) Types() []LinkSegmentType    { return l.types }

// LiveLinks returns every non-tombstoned link, in id order. Tombstoned
// links (replaced by BreakLinkAt) are excluded — "replace the original
// link with the two new links in every index" (§4.3b step 4.a).
func (l *Layer) LiveLinks() []Link {
	out := make([]Link, 0, len(l.links))
	for _, link := range l.links {
		if !link.Removed {
			out = append(out, link)
		}
	}
	return out
}

// LiveNodes returns every non-tombstoned node, in id order.
func (l *Layer) LiveNodes() []Node {
	out := make([]Node, 0, len(l.nodes))
	for _, n := range l.nodes {
		if !n.Removed {
			out = append(out, n)
		}
	}
	return out
}

// GetOrCreateNode returns the node at position p, creating it if absent
// (§3: "each position corresponds to at most one node").
func (l *Layer) GetOrCreateNode(p orb.Point) NodeID {
	if id, ok := l.positionIndex[p]; ok {
		return id
	}
	l.nextNodeID++
	id := l.nextNodeID
	l.nodes = append(l.nodes, Node{ID: id, Position: p})
	l.positionIndex[p] = id
	return id
}

// FindNode returns the node id at position p, or NoID if none exists.
func (l *Layer) FindNode(p orb.Point) NodeID {
	return l.positionIndex[p]
}

// AddLink materialises a new link between nodeA and nodeB with the given
// geometry (§3 Link invariant: nodeA != nodeB, geometry endpoints match).
func (l *Layer) AddLink(nodeA, nodeB NodeID, geom orb.LineString, lengthM float64, osmWayID int64, tags map[string]string) LinkID {
	l.nextLinkID++
	id := l.nextLinkID
	l.links = append(l.links, Link{
		ID:       id,
		NodeA:    nodeA,
		NodeB:    nodeB,
		Geometry: geom,
		LengthM:  lengthM,
		OsmWayID: osmWayID,
		Tags:     tags,
	})
	if osmWayID != 0 {
		l.wayLinks[osmWayID] = append(l.wayLinks[osmWayID], id)
	}
	return id
}

// LinksForWay returns every link id materialised from the given OSM way.
func (l *Layer) LinksForWay(osmWayID int64) []LinkID {
	return l.wayLinks[osmWayID]
}

// replaceWayLink swaps oldID for newIDs in the way->links index, used when
// a link is broken into two.
func (l *Layer) replaceWayLink(wayID int64, oldID LinkID, newIDs ...LinkID) {
	ids := l.wayLinks[wayID]
	out := ids[:0]
	for _, id := range ids {
		if id == oldID {
			out = append(out, newIDs...)
		} else {
			out = append(out, id)
		}
	}
	l.wayLinks[wayID] = out
}

// AddSegment creates a new directional segment for a link and wires the
// node adjacency index (§3 ownership: "relational indices rebuilt at load
// time"). At most one segment per direction per link is enforced by the
// caller (network materialisation never calls this twice for the same
// (link, direction) pair).
func (l *Layer) AddSegment(linkID LinkID, dir Direction, typeID LinkSegmentTypeID, lanes int) LinkSegmentID {
	l.nextSegID++
	id := l.nextSegID
	l.segs = append(l.segs, LinkSegment{ID: id, Link: linkID, Dir: dir, Type: typeID, Lanes: lanes})

	link := l.Link(linkID)
	if dir == DirectionAB {
		link.SegmentAB = id
	} else {
		link.SegmentBA = id
	}

	// Downstream vertex gets the adjacency entry: this is the node a
	// traveller arrives at, which is what DirectedConnectoid access
	// resolution (§4.4 pass 3 step 4) needs.
	downstream := link.NodeB
	if dir == DirectionBA {
		downstream = link.NodeA
	}
	n := l.Node(downstream)
	n.AdjacentSegments = append(n.AdjacentSegments, id)

	return id
}

// GetOrCreateType returns an existing type with identical access
// properties under the same externalKey if one exists, else registers a
// new one (§4.3b.h "look up by (key,value) plus the exact set of
// access-group-properties ... reuse if identical").
func (l *Layer) GetOrCreateType(externalKey string, capacity, density float64, access ModeAccessProperties, name string) LinkSegmentTypeID {
	for _, id := range l.typeIndex[externalKey] {
		t := l.Type(id)
		if t.CapacityPcuPerLaneHour == capacity && t.MaxDensityPcuPerKmLane == density && t.Access.Equal(access) {
			return id
		}
	}
	l.nextTypeID++
	id := l.nextTypeID
	l.types = append(l.types, LinkSegmentType{
		ID:                     id,
		CapacityPcuPerLaneHour: capacity,
		MaxDensityPcuPerKmLane: density,
		Access:                 access,
		ExternalID:             externalKey,
		Name:                   name,
	})
	l.typeIndex[externalKey] = append(l.typeIndex[externalKey], id)
	return id
}
