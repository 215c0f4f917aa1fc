package zonemodel

import (
	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

// Zoning owns every TransferZone, TransferZoneGroup and DirectedConnectoid
// produced by a single pipeline invocation (§3 ownership: "the Zoning
// exclusively owns its TransferZones/Groups/Connectoids").
type Zoning struct {
	zones  []TransferZone
	groups []TransferZoneGroup
	conns  []DirectedConnectoid

	// nameIndex supports "attach S's name to the closest zone's group"
	// (§4.4 pass 3 step 1) without a linear scan.
	nameIndex map[string][]TransferZoneGroupID

	nextZoneID  TransferZoneID
	nextGroupID TransferZoneGroupID
	nextConnID  ConnectoidID
}

// NewZoning creates an empty zoning.
func NewZoning() *Zoning {
	return &Zoning{nameIndex: map[string][]TransferZoneGroupID{}}
}

func (z *Zoning) NumZones() int  { return len(z.zones) }
func (z *Zoning) NumGroups() int { return len(z.groups) }
func (z *Zoning) NumConns() int  { return len(z.conns) }

func (z *Zoning) Zone(id TransferZoneID) *TransferZone           { return &z.zones[id-1] }
func (z *Zoning) Group(id TransferZoneGroupID) *TransferZoneGroup { return &z.groups[id-1] }
func (z *Zoning) Connectoid(id ConnectoidID) *DirectedConnectoid  { return &z.conns[id-1] }

func (z *Zoning) Zones() []TransferZone           { return z.zones }
func (z *Zoning) Groups() []TransferZoneGroup     { return z.groups }
func (z *Zoning) Connectoids() []DirectedConnectoid { return z.conns }

// LiveZones, LiveGroups return non-tombstoned entries in id order.
func (z *Zoning) LiveZones() []TransferZone {
	out := make([]TransferZone, 0, len(z.zones))
	for _, zone := range z.zones {
		if !zone.Removed {
			out = append(out, zone)
		}
	}
	return out
}

func (z *Zoning) LiveGroups() []TransferZoneGroup {
	out := make([]TransferZoneGroup, 0, len(z.groups))
	for _, g := range z.groups {
		if !g.Removed {
			out = append(out, g)
		}
	}
	return out
}

// AddZone instantiates a new TransferZone (§4.4 "Instantiate a
// TransferZone with the OSM entity's geometry").
func (z *Zoning) AddZone(geom orb.Geometry, kind ZoneKind, modes osmtags.ModeSet, osmID int64, name string) TransferZoneID {
	return z.AddZoneWithRef(geom, kind, modes, osmID, name, "")
}

// AddZoneWithRef is AddZone plus an explicit ref/local_ref value, used for
// exact stop-position-to-platform matching (§4.4 pass 3 step 2.b).
func (z *Zoning) AddZoneWithRef(geom orb.Geometry, kind ZoneKind, modes osmtags.ModeSet, osmID int64, name, ref string) TransferZoneID {
	z.nextZoneID++
	id := z.nextZoneID
	z.zones = append(z.zones, TransferZone{
		ID:            id,
		Geometry:      geom,
		Kind:          kind,
		AllowedModes:  modes,
		ExternalOsmID: osmID,
		Name:          name,
		Ref:           ref,
	})
	return id
}

// AddGroup instantiates a new TransferZoneGroup with the given member
// zones, wiring the back-reference on each member (§4.4 "instantiate a
// TransferZoneGroup whose members are the child transfer zones").
func (z *Zoning) AddGroup(name string, members ...TransferZoneID) TransferZoneGroupID {
	z.nextGroupID++
	id := z.nextGroupID
	z.groups = append(z.groups, TransferZoneGroup{ID: id, Name: name, Members: append([]TransferZoneID{}, members...)})
	for _, m := range members {
		z.Zone(m).Groups = append(z.Zone(m).Groups, id)
	}
	if name != "" {
		z.nameIndex[name] = append(z.nameIndex[name], id)
	}
	return id
}

// AddMember appends a zone to an existing group, wiring both sides of
// the relation.
func (z *Zoning) AddMember(group TransferZoneGroupID, zone TransferZoneID) {
	g := z.Group(group)
	g.Members = append(g.Members, zone)
	zn := z.Zone(zone)
	zn.Groups = append(zn.Groups, group)
}

// GroupsByName returns every group currently registered under name,
// used to find "the closest zone's group" candidates by station name
// (§4.4 pass 3 step 1).
func (z *Zoning) GroupsByName(name string) []TransferZoneGroupID {
	return z.nameIndex[name]
}

// RenameGroup updates a group's name and the name index (§4.4 "adopt
// the station's name as the group's name").
func (z *Zoning) RenameGroup(id TransferZoneGroupID, name string) {
	g := z.Group(id)
	if g.Name == name {
		return
	}
	if old := z.nameIndex[g.Name]; g.Name != "" {
		for i, gid := range old {
			if gid == id {
				z.nameIndex[g.Name] = append(old[:i:i], old[i+1:]...)
				break
			}
		}
	}
	g.Name = name
	if name != "" {
		z.nameIndex[name] = append(z.nameIndex[name], id)
	}
}

// AddConnectoid creates a DirectedConnectoid linking a network access
// segment to one or more transfer zones (§3 DirectedConnectoid, §4.4
// pass 2 step 4 / pass 3 step 2).
func (z *Zoning) AddConnectoid(layer osmtags.Layer, segment netmodel.LinkSegmentID, allowed map[TransferZoneID]osmtags.ModeSet) ConnectoidID {
	z.nextConnID++
	id := z.nextConnID
	zones := make([]TransferZoneID, 0, len(allowed))
	for zid := range allowed {
		zones = append(zones, zid)
	}
	z.conns = append(z.conns, DirectedConnectoid{
		ID:            id,
		AccessLayer:   layer,
		AccessSegment: segment,
		AccessZones:   zones,
		AllowedModes:  allowed,
	})
	for zid := range allowed {
		zone := z.Zone(zid)
		zone.Connectoids = append(zone.Connectoids, id)
	}
	return id
}

// ReplaceAccessSegment repoints every connectoid currently anchored on
// oldSeg to newSeg, used after a link split (§4.4 pass 3 link-splitting,
// §9 design note: BreakLinkAt's SegmentReplacement map is consumed here
// rather than through an observer registry). A linear scan is acceptable:
// splits during PT stitching are rare relative to the connectoid count.
func (z *Zoning) ReplaceAccessSegment(oldSeg, newSeg netmodel.LinkSegmentID) int {
	n := 0
	for i := range z.conns {
		if z.conns[i].AccessSegment == oldSeg {
			z.conns[i].AccessSegment = newSeg
			n++
		}
	}
	return n
}

// CullDanglingGroups removes every group that has no live members left
// (§3 "Dangling groups (empty after parsing) may be culled").
func (z *Zoning) CullDanglingGroups() int {
	removed := 0
	for i := range z.groups {
		g := &z.groups[i]
		if g.Removed {
			continue
		}
		liveMembers := 0
		for _, m := range g.Members {
			if !z.Zone(m).Removed {
				liveMembers++
			}
		}
		if liveMembers == 0 {
			g.Removed = true
			removed++
		}
	}
	return removed
}

// OrphanZones returns, in id order, every live TransferZone with no
// connectoids (§4.4 orphan platforms). It does not tombstone them; pass 3
// resolves each one and tombstones those it cannot attach.
func (z *Zoning) OrphanZones() []TransferZoneID {
	var out []TransferZoneID
	for i := range z.zones {
		zn := &z.zones[i]
		if !zn.Removed && len(zn.Connectoids) == 0 {
			out = append(out, zn.ID)
		}
	}
	return out
}
