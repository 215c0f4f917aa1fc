package osmtags

import "log"

// warnedOnce deduplicates "unknown key/value" warnings so a busy extract
// doesn't flood the log (§4.1 failure semantics: "logged once").
var warnedOnce = map[string]bool{}

func warnOnce(cause string) {
	if warnedOnce[cause] {
		return
	}
	warnedOnce[cause] = true
	log.Printf("osmtags: %s", cause)
}

// AllowedModes computes the default mode set for key=value in the given
// ISO-2 country (§4.1 contract): start from the global default, then
// overlay the country-specific mode_access table if present. This is the
// *default* set; per-way tag overlays (access=*, busway=*, lanes:mode, ...)
// are applied on top of this by the network-materialisation pass
// (pkg/osmnet), which is the component that actually sees a way's tags.
func AllowedModes(key, value, country string) ModeSet {
	base := globalModeDefaults(key, value)
	if base == nil {
		if key == "highway" || key == "railway" || key == "route" || key == "waterway" {
			warnOnce("unknown " + key + "=" + value)
		}
		base = NewModeSet()
	}

	if key != "highway" {
		return base
	}

	ct := loadCountry(country)
	if ct == nil || ct.modeAccess == nil {
		if country != "" {
			warnOnce("no mode_access table for country " + country + ", using global defaults")
		}
		return base
	}
	if override, ok := ct.modeAccess[value]; ok {
		return override.Clone()
	}
	return base
}

// ApplyAccessOverlay applies the allow/disallow/category-inclusion
// precedence described in §4.1 to a base mode set: disallow rules beat
// allow rules which beat category-inclusion rules. `allow` and `disallow`
// are modes explicitly named by single-mode tags (bicycle=*, foot=*,
// psv=*, ...) on the way itself; `categoryAllow` and `categoryDisallow`
// are the modes a category tag (access=*, vehicle=*, motor_vehicle=*)
// expanded to.
func ApplyAccessOverlay(base ModeSet, categoryAllow, categoryDisallow, allow, disallow ModeSet) ModeSet {
	out := base.Clone()
	for m := range categoryAllow {
		out.Add(m)
	}
	for m := range categoryDisallow {
		out.Remove(m)
	}
	for m := range allow {
		out.Add(m)
	}
	for m := range disallow {
		out.Remove(m)
	}
	return out
}
