package osmnet

import (
	"strconv"
	"strings"

	"github.com/azybler/osmnetplan/pkg/netmodel"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/settings"
)

// WayKeyValue extracts the classifying (key, value) pair for a way's
// tags (§4.3b step c "resolve the way's key=value type"), checking
// highway, railway, then waterway in that order.
func WayKeyValue(tags map[string]string) (key, value string, ok bool) {
	if v := tags["highway"]; v != "" {
		return "highway", v, true
	}
	if v := tags["railway"]; v != "" {
		return "railway", v, true
	}
	if v := tags["waterway"]; v != "" {
		return "waterway", v, true
	}
	return "", "", false
}

// ResolveModes computes a way's surviving allowed-mode set (§4.3b step c):
// start from the global/country defaults for key=value, overlay the way's
// own single-mode tags (bicycle=, psv=, foot=, ...) and access-category
// tags (access=, vehicle=, motor_vehicle=) whose value is
// yes/designated/permissive (allow) or no/private (disallow), restrict
// highway=busway to bus, then apply any settings-configured allow-list
// edit. busway=*, lanes:<mode>=* and <mode>:lanes=* tags are not read.
func ResolveModes(key, value string, tags map[string]string, country string, s *settings.Settings) osmtags.ModeSet {
	base := osmtags.AllowedModes(key, value, country)

	categoryAllow := osmtags.NewModeSet()
	categoryDisallow := osmtags.NewModeSet()
	allow := osmtags.NewModeSet()
	disallow := osmtags.NewModeSet()

	mapping := s.OsmModeMapping()

	for tag, val := range tags {
		// access-category tags (access=, vehicle=, motor_vehicle=) apply to
		// every mode in that OSM category rather than one mode, so they are
		// checked before the single-mode mapping.
		if cat := osmtags.CategoryModes(tag); !cat.Empty() {
			switch val {
			case "yes", "designated", "permissive":
				categoryAllow = categoryAllow.Clone()
				for m := range cat {
					categoryAllow.Add(m)
				}
			case "no", "private":
				categoryDisallow = categoryDisallow.Clone()
				for m := range cat {
					categoryDisallow.Add(m)
				}
			}
			continue
		}
		mode, known := mapping[tag]
		if !known {
			continue
		}
		switch val {
		case "yes", "designated", "permissive":
			allow.Add(mode)
		case "no", "private":
			disallow.Add(mode)
		}
	}

	// highway=busway is bus/psv-exclusive regardless of the default table
	// (§ Open Question: busway is infrastructure, not a PT zoning construct).
	if key == "highway" && value == "busway" {
		allow.Add(osmtags.ModeBus)
		for _, m := range osmtags.AllModes {
			if m != osmtags.ModeBus && m != osmtags.ModeFoot {
				disallow.Add(m)
			}
		}
	}

	resolved := osmtags.ApplyAccessOverlay(base, categoryAllow, categoryDisallow, allow, disallow)
	return s.ApplyModeEdits(key, value, resolved)
}

// LaneCount parses a way's lanes= tag, defaulting to 1 and logging/falling
// back on malformed input (§4.3b failure semantics: "malformed lanes=
// ... fall back to the default value for that field and log a warning").
func LaneCount(tags map[string]string, warnf func(format string, args ...any)) int {
	raw := tags["lanes"]
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		warnf("malformed lanes=%q, defaulting to 1", raw)
		return 1
	}
	return n
}

// BuildAccessProperties assembles the ModeAccessProperties for a
// LinkSegmentType: per-mode speed capped at the mode's physical maximum
// (§4.3b step h).
func BuildAccessProperties(key, value string, tags map[string]string, country string, modes osmtags.ModeSet, isUrban bool) netmodel.ModeAccessProperties {
	speeds := map[osmtags.Mode]float64{}
	for m := range modes {
		limit := osmtags.SpeedLimitKmH(key, value, country, isUrban)
		if cap := osmtags.MaxPhysicalSpeedKmH(m); cap > 0 && limit > cap {
			limit = cap
		}
		speeds[m] = limit
	}
	return netmodel.ModeAccessProperties{AllowedModes: modes, MaxSpeedKmHFor: speeds}
}
