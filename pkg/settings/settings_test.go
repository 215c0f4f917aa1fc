package settings

import (
	"testing"

	"github.com/azybler/osmnetplan/pkg/osmtags"
)

func TestIsTypeActivated(t *testing.T) {
	s := Default()
	if !s.IsTypeActivated("highway", "primary", true) {
		t.Error("builtin-active type should stay active with no overrides")
	}

	s.DeactivatedTypes["highway"] = map[string]bool{"road": true}
	if s.IsTypeActivated("highway", "road", true) {
		t.Error("explicit deactivation should win over builtin-active")
	}

	s.ActivatedTypes["highway"] = map[string]bool{"raceway": true}
	if !s.IsTypeActivated("highway", "raceway", false) {
		t.Error("explicit activation should win over builtin-inactive")
	}
}

func TestApplyModeEdits(t *testing.T) {
	s := Default()
	base := osmtags.NewModeSet(osmtags.ModeCar)

	if got := s.ApplyModeEdits("highway", "secondary", base); !got.Has(osmtags.ModeCar) {
		t.Fatal("no edit configured should return base unchanged")
	}

	s.ModeEdits["highway=secondary"] = ModeEdit{Add: osmtags.NewModeSet(osmtags.ModeTram)}
	got := s.ApplyModeEdits("highway", "secondary", base)
	if !got.Has(osmtags.ModeTram) || !got.Has(osmtags.ModeCar) {
		t.Errorf("Add edit should union with base, got %v", got)
	}

	s.ModeEdits["highway=secondary"] = ModeEdit{Set: osmtags.NewModeSet(osmtags.ModeFoot)}
	got = s.ApplyModeEdits("highway", "secondary", base)
	if got.Has(osmtags.ModeCar) || !got.Has(osmtags.ModeFoot) {
		t.Errorf("Set edit should replace base outright, got %v", got)
	}
}

func TestOsmModeMapping(t *testing.T) {
	s := Default()
	s.OsmModeMappingRemove["hgv"] = true
	s.OsmModeMappingAdd["e-scooter"] = osmtags.ModeBicycle

	m := s.OsmModeMapping()
	if _, ok := m["hgv"]; ok {
		t.Error("removed token should be absent")
	}
	if m["e-scooter"] != osmtags.ModeBicycle {
		t.Error("added token should map to the configured mode")
	}
	if m["motorcar"] != osmtags.ModeCar {
		t.Error("unrelated builtin mapping should survive")
	}
}

func TestPassesBounding(t *testing.T) {
	s := Default()
	s.BoundingBox = BoundingBox{MinLat: 1, MaxLat: 2, MinLon: 1, MaxLon: 2}
	if !s.PassesBounding(1.5, 1.5) {
		t.Error("point inside box should pass")
	}
	if s.PassesBounding(5, 5) {
		t.Error("point outside box should fail")
	}
}
