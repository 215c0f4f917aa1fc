// Package osmnet implements the §4.3 network materialisation pass: turns
// a streamed OSM extract into a netmodel.Network. The Builder's input API
// uses plain ids/coordinates/tag maps rather than paulmach/osm's wire
// types, so the materialisation core stays decoupled from the OSM decoder
// (adapted in pkg/pipeline) the way the teacher keeps pkg/graph decoupled
// from pkg/osm (builder.go takes a *osmparser.ParseResult value, not a
// scanner).
package osmnet

import (
	"fmt"
	"log"

	"github.com/azybler/osmnetplan/pkg/geo"
	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/settings"
	"github.com/paulmach/orb"
)

// Builder accumulates the materialised Network across the nodes and ways
// phases of §4.3b, then runs circular-way splitting, topology repair,
// pruning and consolidation.
type Builder struct {
	Settings *settings.Settings
	Country  string
	IsUrban  bool // crude urban/rural speed-default switch (§4.1), applied unchanged to every way

	Network *netmodel.Network

	nodePos  map[int64]orb.Point
	nodeTags map[int64]map[string]string
	retained map[int64]bool // nil means "retain everything" (§4.3a disabled)

	circular []circularWay

	bbox struct {
		set                        bool
		minLat, maxLat, minLon, maxLon float64
	}

	skippedWays    int
	droppedModeWays int
}

type circularWay struct {
	osmID int64
	nodes []int64
	tags  map[string]string
}

// NewBuilder creates an empty Builder.
func NewBuilder(s *settings.Settings, country string) *Builder {
	return &Builder{
		Settings: s,
		Country:  country,
		Network:  netmodel.NewNetwork(),
		nodePos:  map[int64]orb.Point{},
		nodeTags: map[int64]map[string]string{},
	}
}

// SetNodeRetentionBitset installs the node-retention planner's output
// (§4.3a): only node ids present in retained will be stored by ProcessNode.
func (b *Builder) SetNodeRetentionBitset(retained map[int64]bool) {
	b.retained = retained
}

// ProcessNode stores a node's position (and tags, if non-empty) during the
// nodes phase (§4.3b step 1). Nodes outside the configured bounding area
// are discarded; the observed bounding box is tracked when none is
// configured.
func (b *Builder) ProcessNode(id int64, lat, lon float64, tags map[string]string) {
	if b.Settings.IsNodeExcluded(id) {
		return
	}
	if b.retained != nil && !b.retained[id] {
		return
	}
	if !b.Settings.PassesBounding(lat, lon) {
		return
	}

	if !b.bbox.set {
		b.bbox.minLat, b.bbox.maxLat = lat, lat
		b.bbox.minLon, b.bbox.maxLon = lon, lon
		b.bbox.set = true
	} else {
		if lat < b.bbox.minLat {
			b.bbox.minLat = lat
		}
		if lat > b.bbox.maxLat {
			b.bbox.maxLat = lat
		}
		if lon < b.bbox.minLon {
			b.bbox.minLon = lon
		}
		if lon > b.bbox.maxLon {
			b.bbox.maxLon = lon
		}
	}

	b.nodePos[id] = orb.Point{lon, lat}
	if len(tags) > 0 {
		b.nodeTags[id] = tags
	}
}

// ObservedBounds reports the bounding box of every retained node seen so
// far, used as the implied bounding area when none was configured.
func (b *Builder) ObservedBounds() (minLat, maxLat, minLon, maxLon float64, ok bool) {
	return b.bbox.minLat, b.bbox.maxLat, b.bbox.minLon, b.bbox.maxLon, b.bbox.set
}

func (b *Builder) warnf(format string, args ...any) {
	log.Printf("osmnet: "+format, args...)
}

// ProcessWay materialises a way's links (§4.3b step 2). Circular ways
// (first node == last node) are deferred to FinishCircularWays.
func (b *Builder) ProcessWay(id int64, nodeIDs []int64, tags map[string]string) error {
	if b.Settings.IsWayExcluded(id) {
		return nil
	}

	key, value, ok := WayKeyValue(tags)
	if !ok {
		return nil
	}
	if !b.Settings.IsTypeActivated(key, value, defaultActivated(key, value)) {
		return nil
	}

	retainedNodes := make([]int64, 0, len(nodeIDs))
	positions := make([]orb.Point, 0, len(nodeIDs))
	for _, nid := range nodeIDs {
		pos, ok := b.nodePos[nid]
		if !ok {
			continue
		}
		retainedNodes = append(retainedNodes, nid)
		positions = append(positions, pos)
	}
	if len(retainedNodes) < 2 {
		if len(nodeIDs) >= 2 {
			b.warnf("way %d: fewer than 2 retained nodes, dropping", id)
		}
		b.skippedWays++
		return nil
	}

	if retainedNodes[0] == retainedNodes[len(retainedNodes)-1] {
		b.circular = append(b.circular, circularWay{osmID: id, nodes: retainedNodes, tags: tags})
		return nil
	}

	return b.materialiseWay(id, retainedNodes, positions, tags, key, value)
}

// defaultActivated reports the built-in activated/deactivated status for a
// (key, value) pair absent any user override (§4.2): highway ways are
// activated by default if they classify as road-based, railway similarly,
// waterway similarly.
func defaultActivated(key, value string) bool {
	switch key {
	case "highway":
		return osmtags.IsRoadBasedHighway(value)
	case "railway":
		return osmtags.IsRailBasedRailway(value)
	case "waterway":
		return osmtags.IsWaterBasedWay(key, value)
	default:
		return false
	}
}

func (b *Builder) materialiseWay(osmID int64, nodeIDs []int64, positions []orb.Point, tags map[string]string, key, value string) error {
	modes := ResolveModes(key, value, tags, b.Country, b.Settings)
	if modes.Empty() {
		b.droppedModeWays++
		return nil
	}

	// Partition surviving modes by infrastructure layer (§4.3b step e): a
	// way typically touches one layer, but its mode set may span more than
	// one (e.g. a shared-use path with foot+train modes would be unusual
	// but the algorithm stays layer-generic).
	byLayer := map[osmtags.Layer]osmtags.ModeSet{}
	for m := range modes {
		layer := osmtags.LayerOf(m)
		if byLayer[layer] == nil {
			byLayer[layer] = osmtags.NewModeSet()
		}
		byLayer[layer].Add(m)
	}

	lanes := LaneCount(tags, b.warnf)

	for layerKind, layerModes := range byLayer {
		layer := b.Network.LayerFor(layerKind)
		if err := b.materialiseLayerLink(layer, osmID, nodeIDs, positions, tags, key, value, layerModes, lanes); err != nil {
			return fmt.Errorf("way %d on layer %s: %w", osmID, layerKind, err)
		}
	}
	return nil
}

func (b *Builder) materialiseLayerLink(layer *netmodel.Layer, osmID int64, nodeIDs []int64, positions []orb.Point, tags map[string]string, key, value string, modes osmtags.ModeSet, lanes int) error {
	nodeA := layer.GetOrCreateNode(positions[0])
	nodeB := layer.GetOrCreateNode(positions[len(positions)-1])

	geom := make(orb.LineString, len(positions))
	copy(geom, positions)
	length := polylineLengthM(geom)

	var linkTags map[string]string
	if b.Settings.RetainOsmTags {
		linkTags = tags
	}

	linkID := layer.AddLink(nodeA, nodeB, geom, length, osmID, linkTags)

	access := BuildAccessProperties(key, value, tags, b.Country, modes, b.IsUrban)
	capacity, density := osmtags.DefaultCapacityPcuPerLaneHour, osmtags.DefaultMaxDensityPcuPerKmLane
	if override, ok := b.Settings.TypeOverride(key, value); ok {
		capacity, density = override.CapacityPcuPerLaneHour, override.MaxDensityPcuPerKmLane
	}
	typeID := layer.GetOrCreateType(key+"="+value, capacity, density, access, value)

	// Representative mode for directionality: any mode in this layer's set
	// resolves to the same oneway scheme except for mode-specific oneway:*
	// overrides, so pick the first in AllModes order for the base case and
	// let DirectionFlags consult per-mode tags only when queried per-mode.
	anyMode := modes.Slice()[0]
	forward, backward := DirectionFlags(tags, anyMode)
	if !forward && !backward {
		b.warnf("way %d: no traversable direction resolved, link has no segments", osmID)
		return nil
	}
	if forward {
		layer.AddSegment(linkID, netmodel.DirectionAB, typeID, lanes)
	}
	if backward {
		layer.AddSegment(linkID, netmodel.DirectionBA, typeID, lanes)
	}
	return nil
}

func polylineLengthM(geom orb.LineString) float64 {
	lats := make([]float64, len(geom))
	lons := make([]float64, len(geom))
	for i, p := range geom {
		lats[i], lons[i] = p[1], p[0]
	}
	return geo.PolylineLength(lats, lons)
}
