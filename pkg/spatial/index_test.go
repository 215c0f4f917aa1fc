package spatial

import (
	"testing"

	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

func TestInsertAndQuery(t *testing.T) {
	idx := NewIndex()
	geom := orb.LineString{orb.Point{0, 0}, orb.Point{1, 1}}
	idx.Insert(osmtags.RoadLayer, netmodel.LinkID(1), geom)

	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}

	refs := idx.Query([2]float64{-1, -1}, [2]float64{2, 2})
	if len(refs) != 1 || refs[0].Link != netmodel.LinkID(1) {
		t.Fatalf("Query returned %v, want one ref to link 1", refs)
	}

	miss := idx.Query([2]float64{10, 10}, [2]float64{20, 20})
	if len(miss) != 0 {
		t.Fatalf("Query outside the bounding box returned %v, want none", miss)
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	idx := NewIndex()
	geom := orb.LineString{orb.Point{5, 5}, orb.Point{6, 6}}
	idx.Insert(osmtags.RailLayer, netmodel.LinkID(2), geom)
	idx.Delete(osmtags.RailLayer, netmodel.LinkID(2), geom)

	if idx.Len() != 0 {
		t.Fatalf("Len() after delete = %d, want 0", idx.Len())
	}
}

func TestBuildFromNetwork(t *testing.T) {
	net := netmodel.NewNetwork()
	layer := net.LayerFor(osmtags.RoadLayer)
	a := layer.GetOrCreateNode(orb.Point{0, 0})
	b := layer.GetOrCreateNode(orb.Point{1, 0})
	layer.AddLink(a, b, orb.LineString{orb.Point{0, 0}, orb.Point{1, 0}}, 100, 1, nil)

	idx := BuildFromNetwork(net)
	if idx.Len() != 1 {
		t.Fatalf("BuildFromNetwork indexed %d links, want 1", idx.Len())
	}
}

func TestQueryRadius(t *testing.T) {
	idx := NewIndex()
	idx.Insert(osmtags.RoadLayer, netmodel.LinkID(1), orb.LineString{orb.Point{0, 0}, orb.Point{0.001, 0}})

	hits := idx.QueryRadius(orb.Point{0, 0}, 0.01)
	if len(hits) != 1 {
		t.Fatalf("QueryRadius found %d, want 1", len(hits))
	}

	none := idx.QueryRadius(orb.Point{50, 50}, 0.01)
	if len(none) != 0 {
		t.Fatalf("QueryRadius far away found %d, want 0", len(none))
	}
}
