package osmtags

// railBasedRailways lists railway=* values that carry a rail-based mode
// (as opposed to railway=platform/halt/station, which are PT tagging,
// handled separately by the ptv1/ptv2 vocabularies).
var railBasedRailways = map[string]bool{
	"rail": true, "light_rail": true, "tram": true, "subway": true,
	"narrow_gauge": true, "monorail": true, "funicular": true,
}

// IsRailBasedRailway reports whether the given railway=* value carries
// rail traffic (§4.1 contract).
func IsRailBasedRailway(value string) bool {
	return railBasedRailways[value]
}
