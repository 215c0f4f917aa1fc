package zonemodel

import (
	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

// TransferZone is a boarding location: a platform, pole, or an
// undifferentiated stop (§3 TransferZone). Geometry is a point for
// node-sourced zones, or a polygon/centroid for way/relation-sourced
// ones (§4.4 pass 1/2 instantiation rule).
type TransferZone struct {
	ID            TransferZoneID
	Geometry      orb.Geometry
	Kind          ZoneKind
	AllowedModes  osmtags.ModeSet
	ExternalOsmID int64
	Name          string
	Ref           string // OSM ref/local_ref tag, used for exact stop-to-platform matching

	Groups      []TransferZoneGroupID
	Connectoids []ConnectoidID
	Removed     bool // tombstoned when pass 3 finds no access link for an orphan zone
}

// TransferZoneGroup bundles TransferZones that share a stop-area
// relation or a promoted station name (§3 TransferZoneGroup).
type TransferZoneGroup struct {
	ID      TransferZoneGroupID
	Name    string
	Members []TransferZoneID
	Removed bool // tombstoned when it becomes empty (§3 "dangling groups... may be culled")
}

// DirectedConnectoid is the access point between a TransferZone and the
// network: one directed LinkSegment plus the zones reachable via it (§3
// DirectedConnectoid). It holds ids, not pointers — a weak reference
// into netmodel's arena, resolved through the Layer that owns the
// segment.
type DirectedConnectoid struct {
	ID             ConnectoidID
	AccessLayer    osmtags.Layer
	AccessSegment  netmodel.LinkSegmentID
	AccessZones    []TransferZoneID
	AllowedModes   map[TransferZoneID]osmtags.ModeSet // subset of the segment's allowed modes
	Removed        bool
}
