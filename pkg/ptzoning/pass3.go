package ptzoning

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/azybler/osmnetplan/pkg/geo"
	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/settings"
	"github.com/azybler/osmnetplan/pkg/spatial"
	"github.com/azybler/osmnetplan/pkg/zonemodel"
	"github.com/paulmach/orb"
)

const metersPerDegree = 111_320.0

// degreesForMeters converts a metric radius into the rough degree radius
// spatial.Index.QueryRadius wants; see its own doc comment on accuracy.
func degreesForMeters(m float64) float64 {
	return m / metersPerDegree
}

// stopToLinkToleranceM bounds how far a stop-position node may sit from
// the link it's meant to anchor to before it's treated as unmatched;
// generous enough to absorb typical OSM node-placement slop while well
// under the stop<->waiting-area radius.
const stopToLinkToleranceM = 30.0

// orphanSearchRadiusM is the coarse bounding radius of §4.4 pass 3's
// orphan-zone "candidate-link filter" step, narrowed afterwards by the
// closest-edge family.
const orphanSearchRadiusM = 150.0

// Pass3 resolves deferred stop-positions, standalone stations and orphan
// transfer zones against the already-materialised network (§4.4 pass 3).
// Unlike passes 1-2 it mutates the network: every connectoid location may
// require splitting the link it anchors to (netmodel.SplitLinkAt), so the
// spatial index is updated incrementally as it goes.
type Pass3 struct {
	Zoning        *zonemodel.Zoning
	Network       *netmodel.Network
	Index         *spatial.Index
	Settings      *settings.Settings
	Pass2         *Pass2
	LeftHandDrive bool
}

// NewPass3 creates a pass-3 resolver over the network and zoning built by
// §4.3 and pass 2 respectively.
func NewPass3(zoning *zonemodel.Zoning, network *netmodel.Network, idx *spatial.Index, s *settings.Settings, pass2 *Pass2, leftHandDrive bool) *Pass3 {
	return &Pass3{Zoning: zoning, Network: network, Index: idx, Settings: s, Pass2: pass2, LeftHandDrive: leftHandDrive}
}

// ResolveStopPositions runs §4.4 pass 3's stop-position matching loop over
// every node pass 2 deferred.
func (p *Pass3) ResolveStopPositions(stops []DeferredStopPosition) {
	for _, stop := range stops {
		p.resolveStopPosition(stop)
	}
}

// resolveStopPosition implements §4.4 pass 3 steps 1-4 for a single
// deferred stop-position node P.
func (p *Pass3) resolveStopPosition(stop DeferredStopPosition) {
	if p.Settings.IsNodeExcluded(stop.OsmID) {
		return
	}

	var (
		zone        zonemodel.TransferZoneID
		restrictWay int64
		matched     bool
	)

	// Step 1: settings overrides win unconditionally.
	if ov, ok := p.Settings.StopWaitingAreaOverrides[stop.OsmID]; ok {
		if zid, found := p.Pass2.ZoneByOsmID(ov.WaitingAreaOsmID); found {
			zone, matched = zid, true
		}
		if ov.RestrictSet {
			restrictWay = ov.RestrictToOsmWayID
		} else if wayID, has := p.Settings.WaitingAreaAccessWayOverrides[ov.WaitingAreaOsmID]; has {
			restrictWay = wayID
		}
	}

	if !matched {
		zone, matched = p.matchStopPosition(stop)
	}

	if !matched {
		if !p.Settings.IsWarningSuppressed(stop.OsmID) {
			log.Printf("ptzoning: stop-position %d: no viable waiting area (tried stop-area group, ref/name, spatial search, self-promotion)", stop.OsmID)
		}
		return
	}

	zrec := p.Zoning.Zone(zone)
	if zrec.AllowedModes.Empty() {
		zrec.AllowedModes = stop.AllowedModes
	}

	p.createConnectoidsForStop(stop, zone, restrictWay)
}

// matchStopPosition implements §4.4 pass 3 step 2's matching order: group
// restriction + ref/name, then radius search + ref/name or closest, then
// tagging-error self-promotion.
func (p *Pass3) matchStopPosition(stop DeferredStopPosition) (zonemodel.TransferZoneID, bool) {
	if stop.GroupID != 0 {
		var inGroup []zonemodel.TransferZoneID
		for _, m := range p.Zoning.Group(stop.GroupID).Members {
			z := p.Zoning.Zone(m)
			if z.Removed {
				continue
			}
			if !z.AllowedModes.Empty() && z.AllowedModes.Intersect(stop.AllowedModes).Empty() {
				continue
			}
			inGroup = append(inGroup, m)
		}
		if zid, ok := matchByRefOrName(p.Zoning, inGroup, stop.Tags); ok {
			return zid, true
		}
	}

	spatialCandidates := p.zonesWithinRadius(stop.Geometry, stop.AllowedModes, p.Settings.StopToWaitingAreaRadiusM)
	if len(spatialCandidates) > 0 {
		if zid, ok := matchByRefOrName(p.Zoning, spatialCandidates, stop.Tags); ok {
			return zid, true
		}
		return closestZone(p.Zoning, spatialCandidates, stop.Geometry), true
	}

	if osmtags.IsPTv1StopPositionCandidate(stop.Tags) {
		kind, mode, _ := osmtags.IsPTv1WaitingArea(stop.Tags)
		modes := stop.AllowedModes
		if modes.Empty() {
			modes = osmtags.NewModeSet(mode)
		}
		if !p.hasNearbyAccessLink(modes, stop.Geometry) {
			return 0, false
		}
		zid := p.Zoning.AddZoneWithRef(stop.Geometry, zoneKindFromOsmtags(kind), modes, stop.OsmID, stop.Tags["name"], refOf(stop.Tags))
		return zid, true
	}

	return 0, false
}

// hasNearbyAccessLink reports whether point lies on the materialised
// infrastructure for at least one of modes' layers (§4.4 pass 3 step 2.d
// "if P is itself tagged as a v1 platform and lies on the infrastructure"):
// the precondition for tagging-error self-promotion, so a mistagged node
// far from any link doesn't spawn a guaranteed-orphan zone.
func (p *Pass3) hasNearbyAccessLink(modes osmtags.ModeSet, point orb.Point) bool {
	for _, kind := range layersOf(modes) {
		layer := p.Network.LayerFor(kind)
		if _, ok := p.findAccessLink(layer, kind, point, 0, stopToLinkToleranceM); ok {
			return true
		}
	}
	return false
}

// matchByRefOrName implements §4.4 pass 3 step 2.b: exact match by OSM
// ref (or its local_ref synonym), else by case-insensitive name equality.
func matchByRefOrName(z *zonemodel.Zoning, candidates []zonemodel.TransferZoneID, stopTags map[string]string) (zonemodel.TransferZoneID, bool) {
	if ref := refOf(stopTags); ref != "" {
		for _, c := range candidates {
			if z.Zone(c).Ref != "" && strings.EqualFold(z.Zone(c).Ref, ref) {
				return c, true
			}
		}
	}
	if name := stopTags["name"]; name != "" {
		for _, c := range candidates {
			if z.Zone(c).Name != "" && strings.EqualFold(z.Zone(c).Name, name) {
				return c, true
			}
		}
	}
	return 0, false
}

// zonesWithinRadius returns every live, mode-compatible zone within
// radiusM of center, used by both stop-position and station resolution.
func (p *Pass3) zonesWithinRadius(center orb.Point, modes osmtags.ModeSet, radiusM float64) []zonemodel.TransferZoneID {
	var out []zonemodel.TransferZoneID
	for _, z := range p.Zoning.Zones() {
		if z.Removed {
			continue
		}
		if !z.AllowedModes.Empty() && !modes.Empty() && z.AllowedModes.Intersect(modes).Empty() {
			continue
		}
		pt := representativePoint(z.Geometry)
		if geo.Haversine(center[1], center[0], pt[1], pt[0]) <= radiusM {
			out = append(out, z.ID)
		}
	}
	return out
}

// closestZone picks the geometrically nearest zone to center among
// candidates (§4.4 pass 3 step 2.c "else pick the geometrically closest").
func closestZone(z *zonemodel.Zoning, candidates []zonemodel.TransferZoneID, center orb.Point) zonemodel.TransferZoneID {
	best := candidates[0]
	bestDist := math.MaxFloat64
	for _, c := range candidates {
		pt := representativePoint(z.Zone(c).Geometry)
		d := geo.Haversine(center[1], center[0], pt[1], pt[0])
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// createConnectoidsForStop implements §4.4 pass 3 step 4: locate the
// planit node for P (splitting its link if P is internal), then create a
// connectoid per surviving entry segment in every layer P's modes touch.
func (p *Pass3) createConnectoidsForStop(stop DeferredStopPosition, zone zonemodel.TransferZoneID, restrictWay int64) {
	modes := stop.AllowedModes
	if modes.Empty() {
		modes = p.Zoning.Zone(zone).AllowedModes
	}

	for _, kind := range layersOf(modes) {
		layer := p.Network.LayerFor(kind)
		linkID, ok := p.findAccessLink(layer, kind, stop.Geometry, restrictWay, stopToLinkToleranceM)
		if !ok {
			continue
		}
		created := createConnectoidAtPoint(p.Zoning, layer, kind, p.Index, linkID, stop.Geometry, zone, modes, p.LeftHandDrive)
		if len(created) == 0 && !p.Settings.IsWarningSuppressed(stop.OsmID) {
			log.Printf("ptzoning: stop-position %d: matched zone %d but no connectoid survived the mode/driving-side filters", stop.OsmID, zone)
		}
	}
}

// findAccessLink finds the nearest link to point in the given layer,
// restricted to a specific OSM way when restrictWay is non-zero (§4.4
// pass 3 step 1 "restrict candidate links to that way only").
func (p *Pass3) findAccessLink(layer *netmodel.Layer, kind osmtags.Layer, point orb.Point, restrictWay int64, toleranceM float64) (netmodel.LinkID, bool) {
	var candidates []netmodel.LinkID
	if restrictWay != 0 {
		candidates = layer.LinksForWay(restrictWay)
	} else if p.Index != nil {
		for _, ref := range QueryCandidateLinks(p.Index, kind, point, degreesForMeters(toleranceM)) {
			candidates = append(candidates, ref.Link)
		}
	}

	var best netmodel.LinkID
	bestDist := math.MaxFloat64
	for _, lid := range candidates {
		link := layer.Link(lid)
		if link.Removed {
			continue
		}
		proj := projectOntoLink(*link, point)
		if proj.distance < 0 || proj.distance > toleranceM {
			continue
		}
		if proj.distance < bestDist {
			bestDist = proj.distance
			best = lid
		}
	}
	if best == 0 {
		return 0, false
	}
	return best, true
}

// ResolveStations runs §4.4 pass 3's standalone-station resolution loop.
func (p *Pass3) ResolveStations(stations []DeferredStation) {
	for _, st := range stations {
		p.resolveStation(st)
	}
}

// resolveStation implements §4.4 pass 3's standalone-station rules: merge
// into a nearby platform's group if one exists, else materialise a new
// station transfer zone with connectoids onto the nearest tracks/roads.
func (p *Pass3) resolveStation(st DeferredStation) {
	if p.Settings.IsNodeExcluded(st.OsmID) {
		return
	}

	if candidates := p.zonesWithinRadius(st.Geometry, st.AllowedModes, p.Settings.StationToPlatformRadiusM); len(candidates) > 0 {
		closest := closestZone(p.Zoning, candidates, st.Geometry)
		if groups := p.Zoning.Zone(closest).Groups; len(groups) > 0 {
			p.Zoning.RenameGroup(groups[0], st.Name)
		}
		return
	}

	layers := layersOf(st.AllowedModes)
	k := 1
	for _, l := range layers {
		if l == osmtags.RailLayer {
			k = 2
		}
	}

	zoneID := p.Zoning.AddZone(st.Geometry, zonemodel.ZoneKindPlatform, st.AllowedModes, st.OsmID, st.Name)
	anyConnectoid := false
	for _, kind := range layers {
		layer := p.Network.LayerFor(kind)
		for _, lp := range p.nearestLinksWithinRadius(layer, kind, st.Geometry, p.Settings.StationToTracksRadiusM, k) {
			created := createConnectoidAtPoint(p.Zoning, layer, kind, p.Index, lp.link, lp.point, zoneID, st.AllowedModes, p.LeftHandDrive)
			anyConnectoid = anyConnectoid || len(created) > 0
		}
	}
	if !anyConnectoid && !p.Settings.IsWarningSuppressed(st.OsmID) {
		log.Printf("ptzoning: standalone station %d: no mode-compatible track/road found within %.0fm", st.OsmID, p.Settings.StationToTracksRadiusM)
	}
}

// linkProjection is one candidate link plus its perpendicular projection
// of a fixed target point.
type linkProjection struct {
	link  netmodel.LinkID
	point orb.Point
	dist  float64
}

// nearestLinksWithinRadius returns up to k distinct links within radiusM
// of point, nearest first (§4.4 pass 3 "choose up to k ... nearest
// perpendicular projections").
func (p *Pass3) nearestLinksWithinRadius(layer *netmodel.Layer, kind osmtags.Layer, point orb.Point, radiusM float64, k int) []linkProjection {
	if p.Index == nil {
		return nil
	}
	var all []linkProjection
	for _, ref := range QueryCandidateLinks(p.Index, kind, point, degreesForMeters(radiusM)) {
		link := layer.Link(ref.Link)
		if link.Removed {
			continue
		}
		proj := projectOntoLink(*link, point)
		if proj.distance < 0 || proj.distance > radiusM {
			continue
		}
		all = append(all, linkProjection{link: ref.Link, point: proj.point, dist: proj.distance})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// ResolveOrphanZones implements §4.4 pass 3's final orphan-platform pass:
// every TransferZone still without a connectoid after the stop-position
// and station rounds gets one more attempt via a closest-edge spatial
// search (§4.4 pass 3 "For each TransferZone that has no connectoids...").
func (p *Pass3) ResolveOrphanZones() {
	for _, zid := range p.Zoning.OrphanZones() {
		p.resolveOrphanZone(zid)
	}
}

// orphanCandidate is one link a given orphan zone could attach to.
type orphanCandidate struct {
	kind    osmtags.Layer
	link    netmodel.LinkID
	highway string
	dist    float64
	point   orb.Point
}

func (p *Pass3) resolveOrphanZone(zid zonemodel.TransferZoneID) {
	zone := p.Zoning.Zone(zid)
	center := representativePoint(zone.Geometry)

	layers := layersOf(zone.AllowedModes)
	if len(layers) == 0 {
		layers = []osmtags.Layer{osmtags.RoadLayer}
	}

	// Step 1: candidate-link filter, mode-compatible within a bounding radius.
	var cands []orphanCandidate
	for _, kind := range layers {
		layer := p.Network.LayerFor(kind)
		for _, ref := range QueryCandidateLinks(p.Index, kind, center, degreesForMeters(orphanSearchRadiusM)) {
			link := layer.Link(ref.Link)
			if link.Removed {
				continue
			}
			allowed := linkAllowedModes(layer, *link)
			if !zone.AllowedModes.Empty() && allowed.Intersect(zone.AllowedModes).Empty() {
				continue
			}
			proj := projectOntoLink(*link, center)
			if proj.distance < 0 || proj.distance > orphanSearchRadiusM {
				continue
			}
			cands = append(cands, orphanCandidate{
				kind:    kind,
				link:    ref.Link,
				highway: highwayValueOf(layer, *link),
				dist:    proj.distance,
				point:   proj.point,
			})
		}
	}
	if len(cands) == 0 {
		if !p.Settings.IsWarningSuppressed(zone.ExternalOsmID) {
			log.Printf("ptzoning: orphan transfer zone %d: no mode-compatible link within %.0fm", zid, orphanSearchRadiusM)
		}
		zone.Removed = true
		return
	}

	// Step 2: closest-edge family.
	dstar := cands[0].dist
	for _, c := range cands {
		if c.dist < dstar {
			dstar = c.dist
		}
	}
	buffer := p.Settings.ClosestEdgeBufferM
	var kept []orphanCandidate
	for _, c := range cands {
		if c.dist <= dstar+buffer {
			kept = append(kept, c)
		}
	}

	// Step 3: driving-direction filter for non-rail zones. If it would
	// eliminate every remaining candidate, fall back to the unfiltered
	// set rather than leave the zone orphaned on a technicality the spec
	// does not resolve explicitly (§4.4 pass 3 step 3/4 interaction).
	var filtered []orphanCandidate
	for _, c := range kept {
		if c.kind == osmtags.RailLayer {
			filtered = append(filtered, c)
			continue
		}
		layer := p.Network.LayerFor(c.kind)
		if linkHasAccessibleSide(layer, *layer.Link(c.link), c.point, p.LeftHandDrive) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		filtered = kept
	}

	// Step 5: tie-break by highway importance, then distance, then id.
	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if c := osmtags.CompareHighwayImportance(a.highway, b.highway); c != 0 {
			return c < 0
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.link < b.link
	})

	best := filtered[0]
	layer := p.Network.LayerFor(best.kind)
	if len(createConnectoidAtPoint(p.Zoning, layer, best.kind, p.Index, best.link, best.point, zid, zone.AllowedModes, p.LeftHandDrive)) == 0 {
		zone.Removed = true
	}
}

// linkAllowedModes is the union of a link's one or two segment types'
// allowed modes.
func linkAllowedModes(layer *netmodel.Layer, link netmodel.Link) osmtags.ModeSet {
	out := osmtags.NewModeSet()
	if link.SegmentAB != netmodel.NoID {
		for m := range layer.Type(layer.Segment(link.SegmentAB).Type).Access.AllowedModes {
			out.Add(m)
		}
	}
	if link.SegmentBA != netmodel.NoID {
		for m := range layer.Type(layer.Segment(link.SegmentBA).Type).Access.AllowedModes {
			out.Add(m)
		}
	}
	return out
}

// linkHasAccessibleSide reports whether at least one of the link's
// directional segments places point on the inside-of-the-door side.
func linkHasAccessibleSide(layer *netmodel.Layer, link netmodel.Link, point orb.Point, leftHandDrive bool) bool {
	if link.SegmentAB != netmodel.NoID && onInsideOfDoor(layer, layer.Segment(link.SegmentAB), point, leftHandDrive) {
		return true
	}
	if link.SegmentBA != netmodel.NoID && onInsideOfDoor(layer, layer.Segment(link.SegmentBA), point, leftHandDrive) {
		return true
	}
	return false
}

// highwayValueOf extracts the highway=* value from a link's type external
// id ("key=value", comma-joined after consolidation), used for the
// CompareHighwayImportance tie-breaker. Returns "" for non-highway links.
func highwayValueOf(layer *netmodel.Layer, link netmodel.Link) string {
	var typeID netmodel.LinkSegmentTypeID
	switch {
	case link.SegmentAB != netmodel.NoID:
		typeID = layer.Segment(link.SegmentAB).Type
	case link.SegmentBA != netmodel.NoID:
		typeID = layer.Segment(link.SegmentBA).Type
	default:
		return ""
	}
	ext := layer.Type(typeID).ExternalID
	if i := strings.Index(ext, ","); i >= 0 {
		ext = ext[:i]
	}
	const prefix = "highway="
	if strings.HasPrefix(ext, prefix) {
		return ext[len(prefix):]
	}
	return ""
}

// layersOf returns the distinct infrastructure layers touched by modes,
// in osmtags.AllModes order for deterministic iteration (§5).
func layersOf(modes osmtags.ModeSet) []osmtags.Layer {
	seen := map[osmtags.Layer]bool{}
	var out []osmtags.Layer
	for _, m := range osmtags.AllModes {
		if !modes.Has(m) {
			continue
		}
		kind := osmtags.LayerOf(m)
		if !seen[kind] {
			seen[kind] = true
			out = append(out, kind)
		}
	}
	return out
}

// representativePoint resolves a single point standing in for a zone's
// geometry for proximity search: the point itself, or the centroid of a
// line/polygon/outer-ring (§4.4 pass 2 geometry assembly note).
func representativePoint(g orb.Geometry) orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return v
	case orb.LineString:
		return averagePoints(v)
	case orb.Polygon:
		if len(v) > 0 {
			return averagePoints(v[0])
		}
	case orb.MultiPolygon:
		if len(v) > 0 && len(v[0]) > 0 {
			return averagePoints(v[0][0])
		}
	}
	return orb.Point{}
}

func averagePoints(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, pt := range pts {
		sx += pt[0]
		sy += pt[1]
	}
	n := float64(len(pts))
	return orb.Point{sx / n, sy / n}
}
