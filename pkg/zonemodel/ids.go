// Package zonemodel is the §3 public-transport zoning data model:
// TransferZones, TransferZoneGroups and DirectedConnectoids, held in a
// single arena (§9 "arena + index pattern") cross-referenced by small
// integer ids. DirectedConnectoid holds weak references (ids, resolved
// through the owning Zoning) to its LinkSegment and TransferZones, never
// ownership — mirroring netmodel's own id-based cross-referencing.
package zonemodel

// TransferZoneID, TransferZoneGroupID and ConnectoidID are 1-based arena
// indices; 0 (NoID) means "absent", matching pkg/netmodel's convention.
type (
	TransferZoneID      uint32
	TransferZoneGroupID uint32
	ConnectoidID        uint32
)

// NoID is the sentinel "no reference" value for every id type above.
const NoID = 0

// ZoneKind is a TransferZone's platform-or-pole classification (§3
// TransferZone: "type ∈ {platform, pole, none}").
type ZoneKind int

const (
	ZoneKindNone ZoneKind = iota
	ZoneKindPlatform
	ZoneKindPole
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneKindPlatform:
		return "platform"
	case ZoneKindPole:
		return "pole"
	default:
		return "none"
	}
}
