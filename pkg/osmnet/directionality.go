package osmnet

import "github.com/azybler/osmnetplan/pkg/osmtags"

// DirectionFlags resolves a way's traversable directions (§4.3b step g),
// generalizing the teacher's directionFlags (pkg/osm/parser.go) from a
// single car-only oneway scheme to the full oneway/junction/oneway:<mode>
// scheme spanning every layer.
func DirectionFlags(tags map[string]string, mode osmtags.Mode) (forward, backward bool) {
	forward, backward = true, true

	if tags["junction"] == "roundabout" {
		backward = false
	}
	highway := tags["highway"]
	if highway == "motorway" || highway == "motorway_link" {
		backward = false
	}

	// A mode-specific oneway:<mode> tag overrides the general scheme.
	modeToken := onewayModeToken(mode)
	if modeToken != "" {
		if v, ok := tags["oneway:"+modeToken]; ok {
			return parseOneway(v, forward, backward)
		}
	}

	if v, ok := tags["oneway"]; ok {
		return parseOneway(v, forward, backward)
	}

	return forward, backward
}

func parseOneway(value string, implicitForward, implicitBackward bool) (forward, backward bool) {
	switch value {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	case "no", "0", "false":
		return true, true
	case "reversible", "alternating":
		// Time-dependent direction the core cannot resolve statically;
		// treat as untraversable rather than guessing (§7 fall back to a
		// safe default and log).
		return false, false
	default:
		return implicitForward, implicitBackward
	}
}

// onewayModeToken maps a planit Mode back to the OSM token used in
// oneway:<mode> tags, where OSM's scheme differs from the mode's own
// canonical token (bicycle keeps its own spelling, etc).
func onewayModeToken(m osmtags.Mode) string {
	switch m {
	case osmtags.ModeBicycle:
		return "bicycle"
	case osmtags.ModeBus:
		return "psv"
	default:
		return ""
	}
}
