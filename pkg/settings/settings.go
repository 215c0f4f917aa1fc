// Package settings is the single configuration value of §4.2: every
// recognised option, collapsed from the source's Osm*Settings/
// Osm*Configuration class hierarchy into one struct with explicit fields,
// the way the teacher's pkg/api.ServerConfig/DefaultConfig collapses
// server configuration into one struct with a constructor.
package settings

import (
	"github.com/azybler/osmnetplan/pkg/osmtags"
)

// SubParser identifies one of the activatable way families (§4.2
// "parser-active").
type SubParser int

const (
	HighwayParser SubParser = iota
	RailwayParser
	WaterwayParser
	PTParser
)

// BoundingBox is a rectangular lat/lon filter (§4.2 "bounding box/area").
type BoundingBox struct {
	MinLat, MaxLat, MinLon, MaxLon float64
}

// IsZero reports whether the box is unset (no filtering).
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// BoundingAreaFilter is a named administrative polygon filter; nil means
// "no polygon filter" (only BoundingBox applies, if set).
type BoundingAreaFilter interface {
	// Contains reports whether a coordinate lies inside the configured area.
	Contains(lat, lon float64) bool
}

// WayTypeOverride replaces the default link-segment-type capacity/density
// for one (key,value) way type (§4.2 "overwrite capacity/max-density").
type WayTypeOverride struct {
	CapacityPcuPerLaneHour float64
	MaxDensityPcuPerKmLane float64
}

// ModeEdit edits an allow list by way type (§4.2 "add/remove/set allowed
// modes by way type"). Exactly one of Add/Remove/Set should be non-nil-ish;
// Set replaces the list outright, Add/Remove patch it.
type ModeEdit struct {
	Add    osmtags.ModeSet
	Remove osmtags.ModeSet
	Set    osmtags.ModeSet
}

// StopWaitingAreaOverride forces a specific stop-position→waiting-area
// pairing (§4.2 "overwrite stop-location→waiting-area").
type StopWaitingAreaOverride struct {
	WaitingAreaOsmID   int64
	WaitingAreaIsWay   bool // false = node
	RestrictToOsmWayID int64
	RestrictSet        bool
}

// Settings is the single configuration value threaded through the
// pipeline (§9 "Global mutable state ... explicit build context").
type Settings struct {
	// Per-sub-parser activation.
	ActiveParsers map[SubParser]bool

	// Per-way-family activate/deactivate overrides. A value explicitly
	// present in Deactivated wins over the built-in activated list.
	ActivatedTypes   map[string]map[string]bool // family ("highway"/"railway"/"waterway") -> value -> true
	DeactivatedTypes map[string]map[string]bool

	// Capacity/density overrides keyed by "key=value".
	TypeOverrides map[string]WayTypeOverride

	// Allowed-mode edits keyed by "key=value".
	ModeEdits map[string]ModeEdit

	// OSM mode-token -> planit Mode overrides, merged over the built-in
	// mapping (§4.2 "add/remove OSM↔Mode mapping").
	OsmModeMappingAdd    map[string]osmtags.Mode
	OsmModeMappingRemove map[string]bool

	BoundingBox  BoundingBox
	BoundingArea BoundingAreaFilter

	CountryISO2 string

	// LeftHandDrive resolves §4.2's "driving side" option. Country→driving-side
	// lookup is an external collaborator (§1 Out of scope); callers supply
	// the resolved value directly rather than have the core infer it from
	// CountryISO2.
	LeftHandDrive bool

	RetainOsmTags bool

	RemoveDanglingSubnetworks   bool
	DanglingMinSize             int
	DanglingKeepLargestOnly     bool

	ConsolidateLinkSegmentTypes bool

	// Search radii in meters (§4.2 defaults: 25, 35, 35).
	StopToWaitingAreaRadiusM  float64
	StationToPlatformRadiusM float64
	StationToTracksRadiusM   float64

	// Closest-edge family buffer for orphan-zone link selection (§4.4
	// pass 3, design note §9: "5 m" default).
	ClosestEdgeBufferM float64

	// Node-retention pre-pass toggle (§4.3a).
	UseNodeRetentionPlanner bool

	// Geometry smoothing tolerance in meters; 0 disables smoothing
	// (§4.3b.f "apply a geometry-preserving smoothing tolerance only if
	// configured").
	GeometrySmoothingToleranceM float64

	// Explicit user overrides, keyed by OSM stop-position node id.
	StopWaitingAreaOverrides map[int64]StopWaitingAreaOverride
	// Explicit user overrides, keyed by OSM waiting-area id (node or way).
	WaitingAreaAccessWayOverrides map[int64]int64

	ExcludedNodeIDs map[int64]bool
	ExcludedWayIDs  map[int64]bool

	SuppressedWarningIDs map[int64]bool

	// Bounding-area-border warning suppression buffer (§4.4 failure
	// semantics, §7 "mandatory to avoid noise").
	BoundingBorderBufferM float64
}

// Default returns the settings matching the built-in activated/deactivated
// lists and the documented default radii (§4.2).
func Default() *Settings {
	return &Settings{
		ActiveParsers: map[SubParser]bool{
			HighwayParser: true,
			RailwayParser: false,
			WaterwayParser: false,
			PTParser:      true,
		},
		ActivatedTypes:   map[string]map[string]bool{},
		DeactivatedTypes: map[string]map[string]bool{},
		TypeOverrides:    map[string]WayTypeOverride{},
		ModeEdits:        map[string]ModeEdit{},

		OsmModeMappingAdd:    map[string]osmtags.Mode{},
		OsmModeMappingRemove: map[string]bool{},

		RetainOsmTags: false,

		RemoveDanglingSubnetworks: false,
		DanglingMinSize:           1,
		DanglingKeepLargestOnly:   false,

		ConsolidateLinkSegmentTypes: false,

		StopToWaitingAreaRadiusM: 25,
		StationToPlatformRadiusM: 35,
		StationToTracksRadiusM:   35,
		ClosestEdgeBufferM:       5,

		UseNodeRetentionPlanner: false,

		StopWaitingAreaOverrides:      map[int64]StopWaitingAreaOverride{},
		WaitingAreaAccessWayOverrides: map[int64]int64{},
		ExcludedNodeIDs:               map[int64]bool{},
		ExcludedWayIDs:                map[int64]bool{},
		SuppressedWarningIDs:          map[int64]bool{},

		BoundingBorderBufferM: 10,
	}
}

// IsParserActive reports whether the given sub-parser is enabled.
func (s *Settings) IsParserActive(p SubParser) bool {
	return s.ActiveParsers[p]
}

// IsTypeActivated resolves §4.2's "activate/deactivate type" override:
// an explicit Deactivated entry always wins; an explicit Activated entry
// overrides the built-in default; otherwise `builtinActive` (the built-in
// activated/deactivated list) applies.
func (s *Settings) IsTypeActivated(family, value string, builtinActive bool) bool {
	if s.DeactivatedTypes[family][value] {
		return false
	}
	if s.ActivatedTypes[family][value] {
		return true
	}
	return builtinActive
}

// TypeOverride looks up a capacity/density override for key=value.
func (s *Settings) TypeOverride(key, value string) (WayTypeOverride, bool) {
	o, ok := s.TypeOverrides[key+"="+value]
	return o, ok
}

// ApplyModeEdits applies any configured allow-list edit for key=value on
// top of the given base set, returning a new set.
func (s *Settings) ApplyModeEdits(key, value string, base osmtags.ModeSet) osmtags.ModeSet {
	edit, ok := s.ModeEdits[key+"="+value]
	if !ok {
		return base
	}
	if edit.Set != nil {
		return edit.Set.Clone()
	}
	out := base.Clone()
	for m := range edit.Add {
		out.Add(m)
	}
	for m := range edit.Remove {
		out.Remove(m)
	}
	return out
}

// OsmModeMapping returns the effective OSM-mode-token -> Mode mapping:
// the built-in default, with Remove entries deleted and Add entries
// overlaid (§4.2 "add/remove OSM↔Mode mapping").
func (s *Settings) OsmModeMapping() map[string]osmtags.Mode {
	base := osmtags.DefaultOsmModeMapping()
	for tok := range s.OsmModeMappingRemove {
		delete(base, tok)
	}
	for tok, m := range s.OsmModeMappingAdd {
		base[tok] = m
	}
	return base
}

// IsWayExcluded and IsNodeExcluded report whether an OSM way or node id
// is excluded by id (§4.2 "exclude node/way ids").
func (s *Settings) IsWayExcluded(id int64) bool  { return s.ExcludedWayIDs[id] }
func (s *Settings) IsNodeExcluded(id int64) bool { return s.ExcludedNodeIDs[id] }

// IsWarningSuppressed reports whether warnings for the given OSM id are
// suppressed (§4.2 "suppress-warnings for specified ids").
func (s *Settings) IsWarningSuppressed(id int64) bool { return s.SuppressedWarningIDs[id] }

// PassesBounding reports whether the point survives both the rectangular
// bounding box and (if set) the named bounding area polygon filter.
func (s *Settings) PassesBounding(lat, lon float64) bool {
	if !s.BoundingBox.IsZero() && !s.BoundingBox.Contains(lat, lon) {
		return false
	}
	if s.BoundingArea != nil && !s.BoundingArea.Contains(lat, lon) {
		return false
	}
	return true
}
