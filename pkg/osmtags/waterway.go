package osmtags

// waterBasedWays lists (key, value) combinations that carry a ferry/water
// mode. OSM models ferry routes either as route=ferry or, less commonly,
// waterway=canal/river/fairway segments tagged for ferry access.
var waterBasedWays = map[string]map[string]bool{
	"route": {"ferry": true},
	"waterway": {
		"fairway": true, "canal": true, "river": true, "ferry": true,
	},
}

// IsWaterBasedWay reports whether the given key=value combination carries
// a water-based mode (§4.1 contract).
func IsWaterBasedWay(key, value string) bool {
	return waterBasedWays[key][value]
}
