package osmtags

// ModeSet is a small, immutable-by-convention set of modes. Built-in maps
// are never handed out directly — every accessor returns a fresh ModeSet
// so callers may freely overlay/mutate it (§4.1: "allowed_modes ... the
// default mode set").
type ModeSet map[Mode]bool

// NewModeSet builds a ModeSet from the given modes.
func NewModeSet(modes ...Mode) ModeSet {
	s := make(ModeSet, len(modes))
	for _, m := range modes {
		s[m] = true
	}
	return s
}

// Clone returns an independent copy.
func (s ModeSet) Clone() ModeSet {
	out := make(ModeSet, len(s))
	for m := range s {
		out[m] = true
	}
	return out
}

// Add inserts a mode.
func (s ModeSet) Add(m Mode) { s[m] = true }

// Remove deletes a mode.
func (s ModeSet) Remove(m Mode) { delete(s, m) }

// Has reports membership.
func (s ModeSet) Has(m Mode) bool { return s[m] }

// Empty reports whether the set has no modes.
func (s ModeSet) Empty() bool { return len(s) == 0 }

// Intersect returns a new set containing modes present in both s and o.
func (s ModeSet) Intersect(o ModeSet) ModeSet {
	out := make(ModeSet)
	for m := range s {
		if o[m] {
			out[m] = true
		}
	}
	return out
}

// Slice returns the set's members in the stable AllModes order, so that
// persisted output and comparisons are deterministic (§5 ordering
// guarantees).
func (s ModeSet) Slice() []Mode {
	out := make([]Mode, 0, len(s))
	for _, m := range AllModes {
		if s[m] {
			out = append(out, m)
		}
	}
	return out
}

// modeCategory groups modes that OSM access tags commonly address as one
// unit (e.g. access=no disallows everything; vehicle=no disallows every
// wheeled mode but not foot). Category membership drives the
// "category-inclusion" precedence tier of §4.1's allowed_modes contract.
var modeCategory = map[string]ModeSet{
	"access":        NewModeSet(ModeCar, ModeBus, ModeBicycle, ModeFoot, ModeTrain, ModeTram, ModeLightRail, ModeSubway, ModeFerry),
	"vehicle":       NewModeSet(ModeCar, ModeBus, ModeBicycle),
	"motor_vehicle": NewModeSet(ModeCar, ModeBus),
}

// CategoryModes returns the ModeSet a given OSM access-category key (e.g.
// "vehicle", "motor_vehicle", "access") expands to, or nil if the key is
// not a recognised category.
func CategoryModes(key string) ModeSet {
	if s, ok := modeCategory[key]; ok {
		return s.Clone()
	}
	return nil
}
