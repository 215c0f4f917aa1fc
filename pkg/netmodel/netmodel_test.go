package netmodel

import (
	"testing"

	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

func straightLine(points ...[2]float64) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p[0], p[1]}
	}
	return ls
}

func newTestLayer() (*Layer, NodeID, NodeID, NodeID, LinkID) {
	l := NewLayer(osmtags.RoadLayer)
	a := l.GetOrCreateNode(orb.Point{0, 0})
	mid := l.GetOrCreateNode(orb.Point{1, 0})
	b := l.GetOrCreateNode(orb.Point{2, 0})
	geom := straightLine([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0})
	link := l.AddLink(a, b, geom, 200, 100, nil)
	typeID := l.GetOrCreateType("highway=residential", 1800, 180, ModeAccessProperties{
		AllowedModes:   osmtags.NewModeSet(osmtags.ModeCar),
		MaxSpeedKmHFor: map[osmtags.Mode]float64{osmtags.ModeCar: 50},
	}, "residential")
	l.AddSegment(link, DirectionAB, typeID, 1)
	l.AddSegment(link, DirectionBA, typeID, 1)
	return l, a, mid, b, link
}

func TestBreakLinkAtInternalVertex(t *testing.T) {
	l, a, mid, b, link := newTestLayer()

	res := BreakLinkAt(l, link, mid)
	if res.NoOp {
		t.Fatal("expected a real break, got no-op")
	}
	if res.LinkA == res.LinkB {
		t.Fatal("expected two distinct replacement links")
	}
	if l.Link(link).Removed != true {
		t.Error("original link should be tombstoned")
	}

	linkA := l.Link(res.LinkA)
	if linkA.NodeA != a || linkA.NodeB != mid {
		t.Errorf("linkA endpoints = (%d,%d), want (%d,%d)", linkA.NodeA, linkA.NodeB, a, mid)
	}
	linkB := l.Link(res.LinkB)
	if linkB.NodeA != mid || linkB.NodeB != b {
		t.Errorf("linkB endpoints = (%d,%d), want (%d,%d)", linkB.NodeA, linkB.NodeB, mid, b)
	}

	if len(res.SegmentReplacement) != 2 {
		t.Fatalf("expected 2 segment replacements, got %d", len(res.SegmentReplacement))
	}

	live := l.LiveLinks()
	if len(live) != 2 {
		t.Fatalf("LiveLinks() = %d, want 2", len(live))
	}
}

func TestBreakLinkAtEndpointIsNoOp(t *testing.T) {
	l, a, _, _, link := newTestLayer()

	res := BreakLinkAt(l, link, a)
	if !res.NoOp {
		t.Fatal("breaking at an endpoint should be a no-op")
	}
	if l.Link(link).Removed {
		t.Error("no-op break must not tombstone the original link")
	}
}

func TestBreakLinkAtNonVertexPanics(t *testing.T) {
	l, _, _, _, link := newTestLayer()
	stray := l.GetOrCreateNode(orb.Point{5, 5})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when atNode is not a vertex of the link geometry")
		}
	}()
	BreakLinkAt(l, link, stray)
}

func TestGetOrCreateNodeDedup(t *testing.T) {
	l := NewLayer(osmtags.RoadLayer)
	p := orb.Point{10, 20}
	n1 := l.GetOrCreateNode(p)
	n2 := l.GetOrCreateNode(p)
	if n1 != n2 {
		t.Errorf("expected the same node id for the same position, got %d and %d", n1, n2)
	}
	if l.NumNodes() != 1 {
		t.Errorf("NumNodes() = %d, want 1", l.NumNodes())
	}
}

func TestGetOrCreateTypeDedup(t *testing.T) {
	l := NewLayer(osmtags.RoadLayer)
	access := ModeAccessProperties{
		AllowedModes:   osmtags.NewModeSet(osmtags.ModeCar),
		MaxSpeedKmHFor: map[osmtags.Mode]float64{osmtags.ModeCar: 50},
	}
	t1 := l.GetOrCreateType("highway=residential", 1800, 180, access, "residential")
	t2 := l.GetOrCreateType("highway=residential", 1800, 180, access, "residential")
	if t1 != t2 {
		t.Errorf("expected identical type to be reused, got %d and %d", t1, t2)
	}
	if l.NumTypes() != 1 {
		t.Errorf("NumTypes() = %d, want 1", l.NumTypes())
	}

	access2 := access
	access2.MaxSpeedKmHFor = map[osmtags.Mode]float64{osmtags.ModeCar: 30}
	t3 := l.GetOrCreateType("highway=residential", 1800, 180, access2, "residential, 30kmh zone")
	if t3 == t1 {
		t.Error("a different access profile under the same key should register a new type")
	}
}

func TestPruneDanglingKeepsLargestOnly(t *testing.T) {
	l := NewLayer(osmtags.RoadLayer)

	// Main component: a - b - c (3 nodes).
	a := l.GetOrCreateNode(orb.Point{0, 0})
	b := l.GetOrCreateNode(orb.Point{1, 0})
	c := l.GetOrCreateNode(orb.Point{2, 0})
	l.AddLink(a, b, straightLine([2]float64{0, 0}, [2]float64{1, 0}), 100, 1, nil)
	l.AddLink(b, c, straightLine([2]float64{1, 0}, [2]float64{2, 0}), 100, 2, nil)

	// Dangling stub: d - e (2 nodes).
	d := l.GetOrCreateNode(orb.Point{10, 10})
	e := l.GetOrCreateNode(orb.Point{11, 10})
	l.AddLink(d, e, straightLine([2]float64{10, 10}, [2]float64{11, 10}), 50, 3, nil)

	removed := l.PruneDangling(0, true)
	if removed != 2 {
		t.Fatalf("PruneDangling removed %d nodes, want 2", removed)
	}

	live := l.LiveNodes()
	if len(live) != 3 {
		t.Fatalf("LiveNodes() = %d, want 3", len(live))
	}
	for _, n := range live {
		if n.ID == d || n.ID == e {
			t.Errorf("dangling node %d should have been removed", n.ID)
		}
	}

	liveLinks := l.LiveLinks()
	if len(liveLinks) != 2 {
		t.Fatalf("LiveLinks() = %d, want 2", len(liveLinks))
	}
}

func TestPruneDanglingMinSize(t *testing.T) {
	l := NewLayer(osmtags.RoadLayer)

	a := l.GetOrCreateNode(orb.Point{0, 0})
	b := l.GetOrCreateNode(orb.Point{1, 0})
	c := l.GetOrCreateNode(orb.Point{2, 0})
	l.AddLink(a, b, straightLine([2]float64{0, 0}, [2]float64{1, 0}), 100, 1, nil)
	l.AddLink(b, c, straightLine([2]float64{1, 0}, [2]float64{2, 0}), 100, 2, nil)

	d := l.GetOrCreateNode(orb.Point{10, 10})
	e := l.GetOrCreateNode(orb.Point{11, 10})
	l.AddLink(d, e, straightLine([2]float64{10, 10}, [2]float64{11, 10}), 50, 3, nil)

	removed := l.PruneDangling(3, false)
	if removed != 2 {
		t.Fatalf("PruneDangling(minSize=3) removed %d, want 2", removed)
	}

	removedAgain := l.PruneDangling(3, false)
	if removedAgain != 0 {
		t.Errorf("second PruneDangling call removed %d nodes, want 0 (idempotent)", removedAgain)
	}
}

func TestConsolidateTypes(t *testing.T) {
	l := NewLayer(osmtags.RoadLayer)
	access := ModeAccessProperties{
		AllowedModes:   osmtags.NewModeSet(osmtags.ModeCar),
		MaxSpeedKmHFor: map[osmtags.Mode]float64{osmtags.ModeCar: 50},
	}
	// Simulate two types that were created under different keys but ended
	// up functionally identical (e.g. after access-tag overlay resolution).
	t1 := l.GetOrCreateType("highway=residential", 1800, 180, access, "residential")
	t2 := l.GetOrCreateType("highway=living_street", 1800, 180, access, "living_street")
	a := l.GetOrCreateNode(orb.Point{0, 0})
	b := l.GetOrCreateNode(orb.Point{1, 0})
	link := l.AddLink(a, b, straightLine([2]float64{0, 0}, [2]float64{1, 0}), 100, 1, nil)
	l.AddSegment(link, DirectionAB, t1, 1)
	link2 := l.AddLink(b, a, straightLine([2]float64{1, 0}, [2]float64{0, 0}), 100, 2, nil)
	l.AddSegment(link2, DirectionAB, t2, 1)

	removed := l.ConsolidateTypes()
	if removed != 1 {
		t.Fatalf("ConsolidateTypes removed %d, want 1", removed)
	}
	if l.NumTypes() != 1 {
		t.Fatalf("NumTypes() after consolidation = %d, want 1", l.NumTypes())
	}
	if l.Segment(l.Link(link).SegmentAB).Type != l.Segment(l.Link(link2).SegmentAB).Type {
		t.Error("both segments should now reference the same surviving type")
	}
}

func TestSplitLinkAtInsertsVertex(t *testing.T) {
	l, a, _, b, link := newTestLayer()

	node, res := SplitLinkAt(l, link, 0, orb.Point{0.5, 0})
	if res.NoOp {
		t.Fatal("expected a real split")
	}
	if node == a || node == b {
		t.Error("split should create a brand-new node")
	}
	if l.NumNodes() != 4 {
		t.Fatalf("NumNodes() = %d, want 4 (a, mid, b, new)", l.NumNodes())
	}
	linkA := l.Link(res.LinkA)
	if linkA.Geometry[len(linkA.Geometry)-1] != orb.Point{0.5, 0} {
		t.Error("linkA should end at the inserted vertex")
	}
}

func TestSplitLinkAtReusesExistingVertex(t *testing.T) {
	l, a, mid, _, link := newTestLayer()

	node, res := SplitLinkAt(l, link, 0, orb.Point{1, 0})
	if res.NoOp {
		t.Fatal("expected a real split at the existing mid vertex")
	}
	if node != mid {
		t.Errorf("expected the existing mid node %d to be reused, got %d", mid, node)
	}
	_ = a
}

func TestRenumberCompactsAfterPrune(t *testing.T) {
	l := NewLayer(osmtags.RoadLayer)
	a := l.GetOrCreateNode(orb.Point{0, 0})
	b := l.GetOrCreateNode(orb.Point{1, 0})
	c := l.GetOrCreateNode(orb.Point{2, 0})
	link1 := l.AddLink(a, b, straightLine([2]float64{0, 0}, [2]float64{1, 0}), 100, 1, nil)
	l.AddLink(b, c, straightLine([2]float64{1, 0}, [2]float64{2, 0}), 100, 2, nil)

	d := l.GetOrCreateNode(orb.Point{10, 10})
	e := l.GetOrCreateNode(orb.Point{11, 10})
	l.AddLink(d, e, straightLine([2]float64{10, 10}, [2]float64{11, 10}), 50, 3, nil)

	l.PruneDangling(3, false)
	res := l.Renumber()

	if l.NumNodes() != 3 {
		t.Fatalf("NumNodes() after renumber = %d, want 3", l.NumNodes())
	}
	if l.NumLinks() != 2 {
		t.Fatalf("NumLinks() after renumber = %d, want 2", l.NumLinks())
	}
	for i, n := range l.Nodes() {
		if int(n.ID) != i+1 {
			t.Errorf("node at slot %d has id %d, want contiguous %d", i, n.ID, i+1)
		}
	}
	if _, ok := res.NodeRemap[a]; !ok {
		t.Error("surviving node a should appear in the remap")
	}
	if _, ok := res.NodeRemap[d]; ok {
		t.Error("pruned node d should not appear in the remap")
	}
	newLink1, ok := res.LinkRemap[link1]
	if !ok {
		t.Fatal("surviving link1 should appear in the remap")
	}
	if l.Link(newLink1).NodeA != res.NodeRemap[a] {
		t.Error("remapped link should reference the remapped node id")
	}
}
