// Package osmtags is the read-only tag-catalog collaborator of §4.1: O(1)
// classification of OSM key/value pairs, highway importance ranking, mode
// category membership and per-country defaults. Every table here is a
// constant map, never mutated after package init — the "deep class
// hierarchy of Osm*Tags classes" the source used collapses to this.
package osmtags

// highwayImportance ranks highway=* values from most important (1) to
// least important. Ties (unknown values) rank below every known value.
// The ranking is fixed by the spec's own example (motorway=1 ... unclassified=28);
// intermediate placement of residential/service/path-like values is ours
// to choose and is recorded as an Open Question decision in DESIGN.md.
var highwayImportance = map[string]int{
	"motorway":       1,
	"motorway_link":  2,
	"trunk":          3,
	"trunk_link":     4,
	"primary":        5,
	"primary_link":   6,
	"secondary":      7,
	"secondary_link": 8,
	"tertiary":       9,
	"tertiary_link":  10,
	"residential":    11,
	"living_street":  12,
	"service":        13,
	"busway":         14,
	"bus_guideway":   15,
	"pedestrian":     16,
	"track":          17,
	"road":           18,
	"escape":         19,
	"raceway":        20,
	"footway":        21,
	"bridleway":      22,
	"steps":          23,
	"corridor":       24,
	"path":           25,
	"cycleway":       26,
	"platform":       27,
	"unclassified":   28,
}

// roadBasedHighways lists highway=* values that carry road-based modes
// (as opposed to purely pedestrian/cycle infrastructure, which is still
// "road based" for layer-assignment purposes but excluded from the
// driving-mode default allow lists — see defaults.go).
var roadBasedHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"unclassified": true, "residential": true, "living_street": true,
	"service": true, "pedestrian": true, "track": true, "road": true,
	"busway": true, "bus_guideway": true, "escape": true, "raceway": true,
	"footway": true, "bridleway": true, "steps": true, "corridor": true,
	"path": true, "cycleway": true, "platform": true,
}

// IsRoadBasedHighway reports whether the given highway=* value is part of
// the road-based highway vocabulary (§4.1 contract).
func IsRoadBasedHighway(value string) bool {
	return roadBasedHighways[value]
}

// unknownImportance is the importance rank given to a value not present in
// highwayImportance; it sorts after every known value.
const unknownImportance = 1 << 30

// CompareHighwayImportance returns a negative number if a is more important
// than b, a positive number if b is more important, and 0 if they tie
// (including both being unknown). Used to pick the "most important" link
// among several candidates for a stop's access road (§4.1, §4.4 pass 3
// step 5 tie-breaker).
func CompareHighwayImportance(a, b string) int {
	ra, ok := highwayImportance[a]
	if !ok {
		ra = unknownImportance
	}
	rb, ok := highwayImportance[b]
	if !ok {
		rb = unknownImportance
	}
	return ra - rb
}
