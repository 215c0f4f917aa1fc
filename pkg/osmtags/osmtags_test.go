package osmtags

import "testing"

func TestCompareHighwayImportance(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		wantSign int // -1, 0, 1
	}{
		{"motorway beats trunk", "motorway", "trunk", -1},
		{"unclassified loses to everything known", "unclassified", "residential", 1},
		{"unknown ties unknown", "made_up", "also_made_up", 0},
		{"known beats unknown", "primary", "made_up", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareHighwayImportance(tt.a, tt.b)
			sign := 0
			switch {
			case got < 0:
				sign = -1
			case got > 0:
				sign = 1
			}
			if sign != tt.wantSign {
				t.Errorf("CompareHighwayImportance(%q,%q) sign = %d, want %d", tt.a, tt.b, sign, tt.wantSign)
			}
		})
	}
}

func TestIsRoadBasedHighway(t *testing.T) {
	if !IsRoadBasedHighway("residential") {
		t.Error("residential should be road based")
	}
	if IsRoadBasedHighway("made_up_value") {
		t.Error("unknown highway value should not be road based")
	}
}

func TestIsRailBasedRailway(t *testing.T) {
	if !IsRailBasedRailway("rail") {
		t.Error("rail should be rail based")
	}
	if IsRailBasedRailway("platform") {
		t.Error("platform is a PT tag, not a rail-based railway")
	}
}

func TestIsWaterBasedWay(t *testing.T) {
	if !IsWaterBasedWay("route", "ferry") {
		t.Error("route=ferry should be water based")
	}
	if IsWaterBasedWay("highway", "motorway") {
		t.Error("highway=motorway is not water based")
	}
}

func TestAllowedModesCountryOverlay(t *testing.T) {
	t.Cleanup(ResetCaches)

	global := AllowedModes("highway", "motorway", "")
	if !global.Has(ModeCar) {
		t.Fatalf("global motorway defaults should include car, got %v", global)
	}

	au := AllowedModes("highway", "track", "AU")
	if !au.Has(ModeBicycle) || !au.Has(ModeFoot) {
		t.Errorf("AU track override should carry bicycle+foot, got %v", au)
	}

	unknown := AllowedModes("highway", "motorway", "ZZ")
	if !unknown.Has(ModeCar) {
		t.Errorf("unknown country should fall back to global defaults, got %v", unknown)
	}
}

func TestSpeedLimitKmH(t *testing.T) {
	t.Cleanup(ResetCaches)

	if got := SpeedLimitKmH("highway", "residential", "AU", true); got != 50 {
		t.Errorf("AU residential urban = %v, want 50", got)
	}
	if got := SpeedLimitKmH("highway", "made_up", "AU", true); got != GlobalHighwaySpeedKmH {
		t.Errorf("unknown way value should fall back to global, got %v", got)
	}
	if got := SpeedLimitKmH("railway", "rail", "", false); got != GlobalRailwaySpeedKmH {
		t.Errorf("no country should fall back to global railway speed, got %v", got)
	}
}

func TestPTv2WaitingArea(t *testing.T) {
	tags := map[string]string{"public_transport": "platform", "bus": "yes"}
	typ, ok := IsPTv2WaitingArea(tags)
	if !ok || typ != WaitingAreaPlatform {
		t.Fatalf("expected platform match, got %v %v", typ, ok)
	}
	modes := PTv2ModeFamilyModes(tags)
	if !modes.Has(ModeBus) {
		t.Errorf("expected bus mode, got %v", modes)
	}
}

func TestPTv1WaitingArea(t *testing.T) {
	typ, mode, ok := IsPTv1WaitingArea(map[string]string{"highway": "bus_stop"})
	if !ok || typ != WaitingAreaPole || mode != ModeBus {
		t.Fatalf("expected bus pole, got %v %v %v", typ, mode, ok)
	}

	_, _, ok = IsPTv1WaitingArea(map[string]string{"shop": "bakery"})
	if ok {
		t.Error("non-PT tags should not match")
	}
}
