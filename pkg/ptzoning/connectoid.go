package ptzoning

import (
	"github.com/azybler/osmnetplan/pkg/geo"
	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/spatial"
	"github.com/azybler/osmnetplan/pkg/zonemodel"
	"github.com/paulmach/orb"
)

// projection is the result of projecting a point onto the closest segment
// of a link's polyline.
type projection struct {
	segIdx   int // index i such that the projection falls on geometry[i]-geometry[i+1]
	point    orb.Point
	distance float64
}

// projectOntoLink finds the closest point on link's polyline to target.
func projectOntoLink(link netmodel.Link, target orb.Point) projection {
	best := projection{distance: -1}
	for i := 0; i+1 < len(link.Geometry); i++ {
		a, b := link.Geometry[i], link.Geometry[i+1]
		dist, ratio := geo.PointToSegmentDist(target[1], target[0], a[1], a[0], b[1], b[0])
		if best.distance < 0 || dist < best.distance {
			lon := a[0] + ratio*(b[0]-a[0])
			lat := a[1] + ratio*(b[1]-a[1])
			best = projection{segIdx: i, point: orb.Point{lon, lat}, distance: dist}
		}
	}
	return best
}

// splitAndReindex splits layer's link at target's nearest projection
// (reusing an existing vertex if exact, §4.4 pass 3 step 6) and keeps the
// spatial index and any pre-existing connectoids on the link consistent
// with the split (§9 design note: SegmentReplacement is consumed here in
// place of an observer registry).
func splitAndReindex(zoning *zonemodel.Zoning, layer *netmodel.Layer, layerKind osmtags.Layer, idx *spatial.Index, linkID netmodel.LinkID, target orb.Point) (netmodel.NodeID, netmodel.BreakResult) {
	link := *layer.Link(linkID)
	proj := projectOntoLink(link, target)
	oldGeom := append(orb.LineString{}, link.Geometry...)

	node, res := netmodel.SplitLinkAt(layer, linkID, proj.segIdx, proj.point)
	if res.NoOp {
		return node, res
	}

	if idx != nil {
		idx.Delete(layerKind, linkID, oldGeom)
		idx.Insert(layerKind, res.LinkA, layer.Link(res.LinkA).Geometry)
		idx.Insert(layerKind, res.LinkB, layer.Link(res.LinkB).Geometry)
	}
	for old, repl := range res.SegmentReplacement {
		zoning.ReplaceAccessSegment(old, repl)
	}
	return node, res
}

// createConnectoidAtPoint splits layer's link at target's nearest
// projection and creates a DirectedConnectoid to the given zone over
// every entry segment that survives the driving-side/mode filters (§4.4
// pass 3 step 4).
func createConnectoidAtPoint(zoning *zonemodel.Zoning, layer *netmodel.Layer, layerKind osmtags.Layer, idx *spatial.Index, linkID netmodel.LinkID, target orb.Point, zone zonemodel.TransferZoneID, allowedModes osmtags.ModeSet, leftHandDrive bool) []zonemodel.ConnectoidID {
	node, _ := splitAndReindex(zoning, layer, layerKind, idx, linkID, target)

	var created []zonemodel.ConnectoidID
	for _, seg := range layer.Node(node).AdjacentSegments {
		segment := layer.Segment(seg)
		effective := allowedModes.Intersect(layer.Type(segment.Type).Access.AllowedModes)
		if effective.Empty() {
			continue
		}

		if layerKind == osmtags.RoadLayer && !onInsideOfDoor(layer, segment, target, leftHandDrive) {
			continue
		}

		id := zoning.AddConnectoid(layerKind, seg, map[zonemodel.TransferZoneID]osmtags.ModeSet{zone: effective})
		created = append(created, id)
	}
	return created
}

// onInsideOfDoor implements §4.4 pass 3 step 4's road-mode rule: a
// boarding zone must lie on the "inside of the door" relative to the
// segment's direction of travel — the left side for left-hand-drive
// countries, the right side otherwise. Rail-mode segments skip this check
// entirely (trains board on both sides, §4.4 pass 3 "create one connectoid
// per entry segment").
func onInsideOfDoor(layer *netmodel.Layer, segment *netmodel.LinkSegment, zonePoint orb.Point, leftHandDrive bool) bool {
	link := layer.Link(segment.Link)
	from, to := link.NodeA, link.NodeB
	if segment.Dir == netmodel.DirectionBA {
		from, to = link.NodeB, link.NodeA
	}
	fromP := layer.Node(from).Position
	toP := layer.Node(to).Position

	side := geo.SideOfLine(fromP[1], fromP[0], toP[1], toP[0], zonePoint[1], zonePoint[0])
	wantSide := 1 // right-hand traffic: boarding zone sits to the right of travel
	if leftHandDrive {
		wantSide = -1
	}
	return side == wantSide
}

// QueryCandidateLinks returns every indexed link whose bounding box falls
// within radiusDeg of center, restricted to the given layer.
func QueryCandidateLinks(idx *spatial.Index, layerKind osmtags.Layer, center orb.Point, radiusDeg float64) []spatial.Ref {
	var out []spatial.Ref
	for _, ref := range idx.QueryRadius(center, radiusDeg) {
		if ref.Layer == layerKind {
			out = append(out, ref)
		}
	}
	return out
}
