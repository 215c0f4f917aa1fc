package osmtags

// SpeedLimitKmH resolves the §4.1 speed_limit(key, value, country, is_urban)
// contract: country table first, then the global fallback constants.
// Railways and waterways carry a single speed (urban/non-urban collapse to
// the same value for them).
func SpeedLimitKmH(key, value, country string, isUrban bool) float64 {
	ct := loadCountry(country)

	switch key {
	case "highway":
		if ct != nil && ct.speedHighway != nil {
			if pair, ok := ct.speedHighway[value]; ok {
				if isUrban {
					return pair[0]
				}
				return pair[1]
			}
		}
		return GlobalHighwaySpeedKmH
	case "railway":
		if ct != nil && ct.speedRailway != nil {
			if kmh, ok := ct.speedRailway[value]; ok {
				return kmh
			}
		}
		return GlobalRailwaySpeedKmH
	case "route", "waterway":
		return GlobalWaterwaySpeedKmH
	default:
		warnOnce("speed_limit requested for unknown key " + key)
		return GlobalHighwaySpeedKmH
	}
}
