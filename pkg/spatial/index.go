// Package spatial provides a bulk-loaded, incrementally-updated spatial
// index over link polylines (§9 design note: "close-projection search
// needs a spatial index, not a linear scan over every link"). It wraps
// github.com/tidwall/rtree, a dependency the teacher already lists in
// go.mod (pkg/routing/snap.go's "find nearest node" comment notes a
// linear scan as a known limitation) but never wires up.
package spatial

import (
	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// Ref identifies one indexed link within a specific layer.
type Ref struct {
	Layer osmtags.Layer
	Link  netmodel.LinkID
}

// Index is a bounding-box index over link geometries, built once per
// layer set after topology repair and kept live across §4.4 pass 3's
// link splitting.
type Index struct {
	tree rtree.RTreeG[Ref]
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

func bbox(geom orb.LineString) (min, max [2]float64) {
	min = [2]float64{geom[0][0], geom[0][1]}
	max = min
	for _, p := range geom[1:] {
		if p[0] < min[0] {
			min[0] = p[0]
		}
		if p[1] < min[1] {
			min[1] = p[1]
		}
		if p[0] > max[0] {
			max[0] = p[0]
		}
		if p[1] > max[1] {
			max[1] = p[1]
		}
	}
	return min, max
}

// BuildFromNetwork bulk-loads the index from every live link across
// every layer of the network (§4.3 final step, before PT stitching
// begins consuming the index).
func BuildFromNetwork(net *netmodel.Network) *Index {
	idx := NewIndex()
	for _, layer := range net.Layers() {
		for _, link := range layer.LiveLinks() {
			idx.Insert(layer.Kind, link.ID, link.Geometry)
		}
	}
	return idx
}

// Insert adds a single link's geometry to the index, used both by
// BuildFromNetwork and incrementally whenever BreakLinkAt replaces a
// link with two new ones during PT stitching (§4.4 pass 3 step 2).
func (idx *Index) Insert(layer osmtags.Layer, link netmodel.LinkID, geom orb.LineString) {
	min, max := bbox(geom)
	idx.tree.Insert(min, max, Ref{Layer: layer, Link: link})
}

// Delete removes a link's entry, used when BreakLinkAt tombstones the
// original link being replaced.
func (idx *Index) Delete(layer osmtags.Layer, link netmodel.LinkID, geom orb.LineString) {
	min, max := bbox(geom)
	idx.tree.Delete(min, max, Ref{Layer: layer, Link: link})
}

// Len reports the number of indexed links.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Query returns every indexed ref whose bounding box intersects the
// given box, used as the coarse candidate filter before exact
// perpendicular-projection distance checks (§4.4 pass 3 step 2 "nearest
// perpendicular projections").
func (idx *Index) Query(min, max [2]float64) []Ref {
	var out []Ref
	idx.tree.Search(min, max, func(qmin, qmax [2]float64, ref Ref) bool {
		out = append(out, ref)
		return true
	})
	return out
}

// QueryRadius expands a box search by radiusDeg around center, a cheap
// approximation adequate at the scale of a single station's search
// radius (station↔tracks / station↔platform radii, §4.4 pass 3).
// Callers are responsible for converting a metric radius to degrees and
// for filtering candidates by the exact haversine distance afterward.
func (idx *Index) QueryRadius(center orb.Point, radiusDeg float64) []Ref {
	min := [2]float64{center[0] - radiusDeg, center[1] - radiusDeg}
	max := [2]float64{center[0] + radiusDeg, center[1] + radiusDeg}
	return idx.Query(min, max)
}
