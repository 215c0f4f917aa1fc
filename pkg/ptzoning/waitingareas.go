package ptzoning

import (
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/zonemodel"
	"github.com/paulmach/orb"
)

// Entity is the minimal shape pass 2/3 need for a node, way or relation
// member: its OSM id, tags, and resolved geometry (a point for nodes, the
// polyline or closed-ring polygon for ways — resolved by the caller, since geometry
// assembly belongs to whichever package already streamed the way's node
// positions).
type Entity struct {
	OsmID    int64
	IsWay    bool
	Tags     map[string]string
	Geometry orb.Geometry
	Name     string
}

// DeferredStopPosition is a public_transport=stop_position node recorded
// for pass 3 resolution (§4.4 pass 2 "Defer every public_transport=
// stop_position node ... to pass 3").
type DeferredStopPosition struct {
	OsmID        int64
	Geometry     orb.Point
	AllowedModes osmtags.ModeSet
	Tags         map[string]string
	GroupID      zonemodel.TransferZoneGroupID // 0 if not a member of any stop-area group
}

// DeferredStation is an unattached public_transport=station entity with a
// point geometry, recorded for pass 3. Station ways and PTv1
// railway=station entities are matched as waiting areas in pass 2.
type DeferredStation struct {
	OsmID        int64
	Geometry     orb.Point
	Name         string
	AllowedModes osmtags.ModeSet
}

// Pass2 matches waiting-area patterns, instantiates TransferZones and
// TransferZoneGroups, and defers stop-positions and standalone stations
// to pass 3 (§4.4 pass 2).
type Pass2 struct {
	Zoning *zonemodel.Zoning

	pass1 *Pass1

	zoneByOsmID map[int64]zonemodel.TransferZoneID
	groupByRelationID map[int64]zonemodel.TransferZoneGroupID

	DeferredStopPositions []DeferredStopPosition
	DeferredStations      []DeferredStation

	processedStations map[int64]bool
}

// NewPass2 creates a pass-2 accumulator backed by the given pass-1 result
// and an empty Zoning.
func NewPass2(pass1 *Pass1) *Pass2 {
	return &Pass2{
		Zoning:            zonemodel.NewZoning(),
		pass1:             pass1,
		zoneByOsmID:       map[int64]zonemodel.TransferZoneID{},
		groupByRelationID: map[int64]zonemodel.TransferZoneGroupID{},
		processedStations: map[int64]bool{},
	}
}

// matchWaitingArea resolves an entity's PTv2/PTv1 waiting-area pattern,
// giving PTv2 precedence (§4.4 pass 2 patterns).
func matchWaitingArea(e Entity, promotedPlatform bool) (kind zonemodel.ZoneKind, modes osmtags.ModeSet, matched bool) {
	if promotedPlatform {
		return zonemodel.ZoneKindPlatform, osmtags.NewModeSet(), true
	}

	if v2kind, ok := osmtags.IsPTv2WaitingArea(e.Tags); ok {
		modes := osmtags.PTv2ModeFamilyModes(e.Tags)
		return zoneKindFromOsmtags(v2kind), modes, true
	}
	if osmtags.IsPTv2Station(e.Tags) {
		return zonemodel.ZoneKindPlatform, osmtags.PTv2ModeFamilyModes(e.Tags), true
	}

	if v1kind, mode, ok := osmtags.IsPTv1WaitingArea(e.Tags); ok {
		return zoneKindFromOsmtags(v1kind), osmtags.NewModeSet(mode), true
	}

	return zonemodel.ZoneKindNone, nil, false
}

func zoneKindFromOsmtags(k osmtags.WaitingAreaType) zonemodel.ZoneKind {
	switch k {
	case osmtags.WaitingAreaPlatform:
		return zonemodel.ZoneKindPlatform
	case osmtags.WaitingAreaPole:
		return zonemodel.ZoneKindPole
	default:
		return zonemodel.ZoneKindNone
	}
}

// ObserveEntity processes one node or way during pass 2 (§4.4 pass 2). It
// defers public_transport=stop_position nodes and unattached stations to
// pass 3 rather than matching them here.
func (p *Pass2) ObserveEntity(e Entity) {
	if osmtags.IsPTv2StopPosition(e.Tags) {
		pt, ok := e.Geometry.(orb.Point)
		if !ok {
			return
		}
		p.DeferredStopPositions = append(p.DeferredStopPositions, DeferredStopPosition{
			OsmID:        e.OsmID,
			Geometry:     pt,
			AllowedModes: osmtags.PTv2ModeFamilyModes(e.Tags),
			Tags:         e.Tags,
		})
		return
	}

	if osmtags.IsPTv2Station(e.Tags) && !p.processedStations[e.OsmID] {
		pt, ok := e.Geometry.(orb.Point)
		if ok {
			p.DeferredStations = append(p.DeferredStations, DeferredStation{
				OsmID:        e.OsmID,
				Geometry:     pt,
				Name:         e.Name,
				AllowedModes: osmtags.PTv2ModeFamilyModes(e.Tags),
			})
			return
		}
	}

	promoted := e.IsWay && p.pass1 != nil && p.pass1.MustRetainAsPlatform[e.OsmID]
	kind, modes, ok := matchWaitingArea(e, promoted)
	if !ok {
		return
	}

	id := p.Zoning.AddZoneWithRef(e.Geometry, kind, modes, e.OsmID, e.Name, refOf(e.Tags))
	p.zoneByOsmID[e.OsmID] = id
}

// refOf extracts the tag OSM uses to label a stop/platform with a
// line-local identifier, checking ref before its local_ref synonym.
func refOf(tags map[string]string) string {
	if v, ok := tags["ref"]; ok {
		return v
	}
	return tags["local_ref"]
}

// ObserveStopAreaRelation instantiates a TransferZoneGroup for a PTv2
// stop_area relation whose members have already been observed as
// TransferZones (§4.4 pass 2 "For stop-area relations, instantiate a
// TransferZoneGroup..."). stationMembers is the subset of members that
// are station nodes/ways, used to adopt a distinct station name.
func (p *Pass2) ObserveStopAreaRelation(relationID int64, relationTags map[string]string, memberOsmIDs []int64, stationMembers []Entity) zonemodel.TransferZoneGroupID {
	if !osmtags.IsPTv2StopAreaRelation(relationTags) {
		return 0
	}

	var members []zonemodel.TransferZoneID
	for _, osmID := range memberOsmIDs {
		if zid, ok := p.zoneByOsmID[osmID]; ok {
			members = append(members, zid)
		}
	}
	if len(members) == 0 {
		return 0
	}

	groupID := p.Zoning.AddGroup("", members...)
	p.groupByRelationID[relationID] = groupID

	for _, station := range stationMembers {
		if station.Name == "" {
			continue
		}
		p.Zoning.RenameGroup(groupID, station.Name)
		p.processedStations[station.OsmID] = true
		break
	}

	// Stop-positions belonging to this relation are still only recorded
	// elsewhere (ObserveEntity); tag them with the group here if they were
	// deferred from a node that is also a member of this relation.
	for i := range p.DeferredStopPositions {
		if p.DeferredStopPositions[i].GroupID == 0 {
			for _, osmID := range memberOsmIDs {
				if osmID == p.DeferredStopPositions[i].OsmID {
					p.DeferredStopPositions[i].GroupID = groupID
				}
			}
		}
	}

	return groupID
}

// ZoneByOsmID looks up the transfer zone created for a given OSM entity,
// used by pass 3 to resolve explicit settings overrides by id.
func (p *Pass2) ZoneByOsmID(osmID int64) (zonemodel.TransferZoneID, bool) {
	id, ok := p.zoneByOsmID[osmID]
	return id, ok
}
