package osmtags

// WaitingAreaType is the kind of transfer zone a matched OSM entity
// produces (§3 TransferZone.type).
type WaitingAreaType int

const (
	WaitingAreaNone WaitingAreaType = iota
	WaitingAreaPlatform
	WaitingAreaPole
)

// PTv2 tagging vocabulary (§4.4): public_transport=* combined with a mode
// family tag.
const (
	PTv2KeyPublicTransport = "public_transport"
	PTv2ValuePlatform      = "platform"
	PTv2ValueStopPosition  = "stop_position"
	PTv2ValueStation       = "station"
	PTv2ValueStopArea      = "stop_area"
)

// ptv2ModeFamilyTags are the boolean mode-family tags (bus=yes, train=yes,
// ...) PTv2 combines with public_transport=* to disambiguate which modes a
// platform/stop serves.
var ptv2ModeFamilyTags = map[string]Mode{
	"bus":       ModeBus,
	"train":     ModeTrain,
	"tram":      ModeTram,
	"light_rail": ModeLightRail,
	"subway":    ModeSubway,
	"ferry":     ModeFerry,
	"trolleybus": ModeBus,
	"share_taxi": ModeBus,
}

// PTv2ModeFamilyModes returns the modes implied by the way/node's PTv2
// mode-family boolean tags (e.g. bus=yes, train=yes).
func PTv2ModeFamilyModes(tags map[string]string) ModeSet {
	out := NewModeSet()
	for tag, mode := range ptv2ModeFamilyTags {
		if tags[tag] == "yes" {
			out.Add(mode)
		}
	}
	return out
}

// IsPTv2WaitingArea reports whether the tag set matches a recognised PTv2
// waiting-area pattern and, if so, which type it implies.
func IsPTv2WaitingArea(tags map[string]string) (WaitingAreaType, bool) {
	switch tags[PTv2KeyPublicTransport] {
	case PTv2ValuePlatform:
		return WaitingAreaPlatform, true
	case "":
		return WaitingAreaNone, false
	default:
		return WaitingAreaNone, false
	}
}

// IsPTv2StopPosition reports whether the node is tagged
// public_transport=stop_position.
func IsPTv2StopPosition(tags map[string]string) bool {
	return tags[PTv2KeyPublicTransport] == PTv2ValueStopPosition
}

// IsPTv2Station reports whether the entity is tagged public_transport=station.
func IsPTv2Station(tags map[string]string) bool {
	return tags[PTv2KeyPublicTransport] == PTv2ValueStation
}

// IsPTv2StopAreaRelation reports whether a relation is a PTv2 stop-area
// relation (public_transport=stop_area).
func IsPTv2StopAreaRelation(tags map[string]string) bool {
	return tags[PTv2KeyPublicTransport] == PTv2ValueStopArea
}

// PTv1 tagging vocabulary (§4.4): the legacy, pre-PTv2 scheme.
const (
	PTv1HighwayBusStop = "bus_stop"
	PTv1HighwayPlatform = "platform"
	PTv1RailwayPlatform = "platform"
	PTv1RailwayHalt     = "halt"
	PTv1RailwayTramStop = "tram_stop"
	PTv1RailwayStation  = "station"
	PTv1AmenityFerryTerminal = "ferry_terminal"
)

// IsPTv1WaitingArea reports whether the tag set matches a recognised PTv1
// waiting-area pattern and, if so, which type and mode it implies.
func IsPTv1WaitingArea(tags map[string]string) (WaitingAreaType, Mode, bool) {
	if hw := tags["highway"]; hw != "" {
		switch hw {
		case PTv1HighwayBusStop:
			return WaitingAreaPole, ModeBus, true
		case PTv1HighwayPlatform:
			return WaitingAreaPlatform, ModeBus, true
		}
	}
	if rw := tags["railway"]; rw != "" {
		switch rw {
		case PTv1RailwayPlatform:
			return WaitingAreaPlatform, ModeTrain, true
		case PTv1RailwayHalt:
			return WaitingAreaPlatform, ModeTrain, true
		case PTv1RailwayTramStop:
			return WaitingAreaPole, ModeTram, true
		case PTv1RailwayStation:
			return WaitingAreaPlatform, ModeTrain, true
		}
	}
	if tags["amenity"] == PTv1AmenityFerryTerminal {
		return WaitingAreaPlatform, ModeFerry, true
	}
	return WaitingAreaNone, "", false
}

// IsPTv1StopPositionCandidate reports whether a node tagged as a PTv1
// waiting area could, per §4.4 pass 3 step 2d, also double as a
// stop-position when no better match exists (tagging-error recovery).
func IsPTv1StopPositionCandidate(tags map[string]string) bool {
	_, _, ok := IsPTv1WaitingArea(tags)
	return ok
}
