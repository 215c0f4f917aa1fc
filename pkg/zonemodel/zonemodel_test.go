package zonemodel

import (
	"testing"

	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

func TestAddGroupWiresMembers(t *testing.T) {
	z := NewZoning()
	p1 := z.AddZone(orb.Point{0, 0}, ZoneKindPlatform, osmtags.NewModeSet(osmtags.ModeTrain), 1, "")
	p2 := z.AddZone(orb.Point{1, 0}, ZoneKindPlatform, osmtags.NewModeSet(osmtags.ModeTrain), 2, "")

	g := z.AddGroup("Central Station", p1, p2)

	if len(z.Group(g).Members) != 2 {
		t.Fatalf("group has %d members, want 2", len(z.Group(g).Members))
	}
	if len(z.Zone(p1).Groups) != 1 || z.Zone(p1).Groups[0] != g {
		t.Error("zone p1 should back-reference its group")
	}
	found := z.GroupsByName("Central Station")
	if len(found) != 1 || found[0] != g {
		t.Error("GroupsByName should find the group by name")
	}
}

func TestRenameGroupUpdatesIndex(t *testing.T) {
	z := NewZoning()
	p1 := z.AddZone(orb.Point{0, 0}, ZoneKindPlatform, osmtags.NewModeSet(osmtags.ModeTrain), 1, "")
	g := z.AddGroup("", p1)

	z.RenameGroup(g, "Union Station")
	if z.Group(g).Name != "Union Station" {
		t.Errorf("group name = %q, want Union Station", z.Group(g).Name)
	}
	found := z.GroupsByName("Union Station")
	if len(found) != 1 || found[0] != g {
		t.Error("GroupsByName should find the renamed group")
	}
}

func TestCullDanglingGroups(t *testing.T) {
	z := NewZoning()
	p1 := z.AddZone(orb.Point{0, 0}, ZoneKindPlatform, osmtags.NewModeSet(osmtags.ModeBus), 1, "")
	g := z.AddGroup("Empty Stop", p1)

	z.Zone(p1).Removed = true
	removed := z.CullDanglingGroups()
	if removed != 1 {
		t.Fatalf("CullDanglingGroups removed %d, want 1", removed)
	}
	if !z.Group(g).Removed {
		t.Error("group with no live members should be tombstoned")
	}
}

func TestOrphanZones(t *testing.T) {
	l := netmodel.NewLayer(osmtags.RoadLayer)
	a := l.GetOrCreateNode(orb.Point{0, 0})
	b := l.GetOrCreateNode(orb.Point{1, 0})
	geom := orb.LineString{orb.Point{0, 0}, orb.Point{1, 0}}
	link := l.AddLink(a, b, geom, 100, 1, nil)
	typeID := l.GetOrCreateType("highway=residential", 1800, 180, netmodel.ModeAccessProperties{
		AllowedModes: osmtags.NewModeSet(osmtags.ModeBus),
	}, "residential")
	seg := l.AddSegment(link, netmodel.DirectionAB, typeID, 1)

	z := NewZoning()
	p1 := z.AddZone(orb.Point{0, 0}, ZoneKindPole, osmtags.NewModeSet(osmtags.ModeBus), 10, "")
	p2 := z.AddZone(orb.Point{5, 5}, ZoneKindPole, osmtags.NewModeSet(osmtags.ModeBus), 11, "")

	z.AddConnectoid(osmtags.RoadLayer, seg, map[TransferZoneID]osmtags.ModeSet{
		p1: osmtags.NewModeSet(osmtags.ModeBus),
	})

	orphans := z.OrphanZones()
	if len(orphans) != 1 || orphans[0] != p2 {
		t.Fatalf("OrphanZones = %v, want [%d]", orphans, p2)
	}
}
