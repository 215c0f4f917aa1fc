package netmodel

import (
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

// Node is a planit graph vertex (§3 Node (planit)). AdjacentSegments is a
// relational index, rebuilt at load time rather than an owning pointer
// (§3 ownership rules, §9).
type Node struct {
	ID               NodeID
	Position         orb.Point
	AdjacentSegments []LinkSegmentID
	Removed          bool // tombstoned by dangling-subnetwork pruning
}

// Link is an edge of the macroscopic network (§3 Link). A link owns up to
// two LinkSegments (AB and/or BA); OsmWayID and Tags are only populated
// when the owning way is known/retained.
type Link struct {
	ID         LinkID
	NodeA      NodeID
	NodeB      NodeID
	Geometry   orb.LineString // first point == NodeA position, last == NodeB position
	LengthM    float64
	SegmentAB  LinkSegmentID // NoID if direction AB is not traversable
	SegmentBA  LinkSegmentID // NoID if direction BA is not traversable
	OsmWayID   int64
	Tags       map[string]string // only set when RetainOsmTags is enabled
	Removed    bool              // tombstoned by BreakLinkAt; excluded from live iteration
}

// LinkSegment is one directional half of a Link (§3 LinkSegment).
type LinkSegment struct {
	ID     LinkSegmentID
	Link   LinkID
	Dir    Direction
	Type   LinkSegmentTypeID
	Lanes  int
}

// ModeAccessProperties is the per-mode access properties a LinkSegmentType
// carries: which modes may use it, and the per-mode speed cap (already
// capped at the mode's physical maximum, §4.3b.h).
type ModeAccessProperties struct {
	AllowedModes   osmtags.ModeSet
	MaxSpeedKmHFor map[osmtags.Mode]float64
}

// Equal reports whether two ModeAccessProperties are functionally
// identical (§3 LinkSegmentType invariant: "Equality of access properties
// de-duplicates types"; §4.3b.6 consolidation).
func (a ModeAccessProperties) Equal(b ModeAccessProperties) bool {
	if len(a.AllowedModes) != len(b.AllowedModes) {
		return false
	}
	for m := range a.AllowedModes {
		if !b.AllowedModes.Has(m) {
			return false
		}
		if a.MaxSpeedKmHFor[m] != b.MaxSpeedKmHFor[m] {
			return false
		}
	}
	return true
}

// LinkSegmentType is the set of access properties shared by many link
// segments (§3 LinkSegmentType).
type LinkSegmentType struct {
	ID                     LinkSegmentTypeID
	CapacityPcuPerLaneHour float64
	MaxDensityPcuPerKmLane float64
	Access                 ModeAccessProperties
	ExternalID             string // derived from "key=value", or comma-joined after consolidation
	Name                   string
}
