package netmodel

import "github.com/paulmach/orb"

// SplitLinkAt materialises a new internal vertex on a link's polyline
// (inserted right after afterIdx) and breaks the link there in one step
// (§4.4 pass 3 step 6: "if the projection is closer than some existing
// vertex of the link, insert it as a new vertex ... and then split the
// link there; else reuse the existing vertex"). If point already equals
// an existing vertex, that vertex's node is reused instead of inserting a
// duplicate point.
//
// afterIdx must satisfy 0 <= afterIdx < len(link.Geometry)-1: the new
// vertex is inserted strictly between link.Geometry[afterIdx] and
// link.Geometry[afterIdx+1].
func SplitLinkAt(l *Layer, linkID LinkID, afterIdx int, point orb.Point) (NodeID, BreakResult) {
	link := l.Link(linkID)

	for _, p := range link.Geometry {
		if p == point {
			node := l.GetOrCreateNode(point)
			return node, BreakLinkAt(l, linkID, node)
		}
	}

	newGeom := make(orb.LineString, 0, len(link.Geometry)+1)
	newGeom = append(newGeom, link.Geometry[:afterIdx+1]...)
	newGeom = append(newGeom, point)
	newGeom = append(newGeom, link.Geometry[afterIdx+1:]...)
	link.Geometry = newGeom

	node := l.GetOrCreateNode(point)
	return node, BreakLinkAt(l, linkID, node)
}
