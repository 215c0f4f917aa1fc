package osmnet

import (
	"testing"

	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/settings"
)

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name         string
		tags         map[string]string
		mode         osmtags.Mode
		wantForward  bool
		wantBackward bool
	}{
		{
			name:         "default bidirectional",
			tags:         map[string]string{"highway": "residential"},
			mode:         osmtags.ModeCar,
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "motorway implied oneway",
			tags:         map[string]string{"highway": "motorway"},
			mode:         osmtags.ModeCar,
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:         "roundabout implied oneway",
			tags:         map[string]string{"highway": "residential", "junction": "roundabout"},
			mode:         osmtags.ModeCar,
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:         "explicit oneway=-1 reverses",
			tags:         map[string]string{"highway": "primary", "oneway": "-1"},
			mode:         osmtags.ModeCar,
			wantForward:  false,
			wantBackward: true,
		},
		{
			name:         "oneway=-1 overrides roundabout",
			tags:         map[string]string{"highway": "residential", "junction": "roundabout", "oneway": "-1"},
			mode:         osmtags.ModeCar,
			wantForward:  false,
			wantBackward: true,
		},
		{
			name:         "oneway:bicycle=no overrides general oneway for bikes",
			tags:         map[string]string{"highway": "primary", "oneway": "yes", "oneway:bicycle": "no"},
			mode:         osmtags.ModeBicycle,
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "oneway=reversible is untraversable",
			tags:         map[string]string{"highway": "primary", "oneway": "reversible"},
			mode:         osmtags.ModeCar,
			wantForward:  false,
			wantBackward: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := DirectionFlags(tt.tags, tt.mode)
			if fwd != tt.wantForward || bwd != tt.wantBackward {
				t.Errorf("DirectionFlags() = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantForward, tt.wantBackward)
			}
		})
	}
}

func TestWayKeyValue(t *testing.T) {
	tests := []struct {
		name      string
		tags      map[string]string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{name: "highway wins", tags: map[string]string{"highway": "residential", "railway": "rail"}, wantKey: "highway", wantValue: "residential", wantOK: true},
		{name: "railway only", tags: map[string]string{"railway": "rail"}, wantKey: "railway", wantValue: "rail", wantOK: true},
		{name: "waterway only", tags: map[string]string{"waterway": "river"}, wantKey: "waterway", wantValue: "river", wantOK: true},
		{name: "none", tags: map[string]string{"name": "x"}, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := WayKeyValue(tt.tags)
			if ok != tt.wantOK || key != tt.wantKey || value != tt.wantValue {
				t.Errorf("WayKeyValue() = (%q, %q, %v), want (%q, %q, %v)", key, value, ok, tt.wantKey, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestLaneCountFallsBackOnMalformed(t *testing.T) {
	var warned string
	warnf := func(format string, args ...any) { warned = format }

	tests := []struct {
		name string
		tags map[string]string
		want int
	}{
		{name: "absent", tags: map[string]string{}, want: 1},
		{name: "valid", tags: map[string]string{"lanes": "3"}, want: 3},
		{name: "malformed", tags: map[string]string{"lanes": "many"}, want: 1},
		{name: "zero", tags: map[string]string{"lanes": "0"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warned = ""
			got := LaneCount(tt.tags, warnf)
			if got != tt.want {
				t.Errorf("LaneCount() = %d, want %d", got, tt.want)
			}
			if tt.name == "malformed" && warned == "" {
				t.Error("expected a warning for malformed lanes=")
			}
		})
	}
}

func TestMaterialiseSimpleWay(t *testing.T) {
	s := settings.Default()
	b := NewBuilder(s, "")

	b.ProcessNode(1, 1.0, 103.0, nil)
	b.ProcessNode(2, 1.001, 103.001, nil)
	b.ProcessNode(3, 1.002, 103.002, nil)

	if err := b.ProcessWay(100, []int64{1, 2, 3}, map[string]string{"highway": "residential"}); err != nil {
		t.Fatalf("ProcessWay: %v", err)
	}

	if !b.Network.HasLayer(osmtags.RoadLayer) {
		t.Fatal("expected a road layer to be created")
	}
	layer := b.Network.LayerFor(osmtags.RoadLayer)
	if layer.NumLinks() != 1 {
		t.Fatalf("NumLinks() = %d, want 1", layer.NumLinks())
	}
	link := layer.Link(1)
	if link.SegmentAB == 0 || link.SegmentBA == 0 {
		t.Error("a plain residential way should be bidirectional")
	}
}

func TestMaterialiseDropsNoModeWay(t *testing.T) {
	s := settings.Default()
	b := NewBuilder(s, "")
	b.ProcessNode(1, 1.0, 103.0, nil)
	b.ProcessNode(2, 1.001, 103.001, nil)

	// access=no is an "access" category tag, which covers every mode
	// (modeset.go modeCategory["access"]), so every mode is disallowed
	// and the way is dropped for having no surviving mode.
	err := b.ProcessWay(101, []int64{1, 2}, map[string]string{"highway": "footway", "access": "no"})
	if err != nil {
		t.Fatalf("ProcessWay: %v", err)
	}
	if b.Network.HasLayer(osmtags.RoadLayer) && b.Network.LayerFor(osmtags.RoadLayer).NumLinks() != 0 {
		t.Error("a way with no surviving mode should not materialise a link")
	}
}

func TestTopologyRepairBreaksInternalIntersection(t *testing.T) {
	s := settings.Default()
	b := NewBuilder(s, "")

	// way A: 1-2-3 (2 is shared with way B's endpoint)
	b.ProcessNode(1, 1.0, 103.0, nil)
	b.ProcessNode(2, 1.0, 103.001, nil)
	b.ProcessNode(3, 1.0, 103.002, nil)
	// way B: 4-2 (ends at the midpoint of way A, making node 2 internal to A)
	b.ProcessNode(4, 1.001, 103.001, nil)

	if err := b.ProcessWay(200, []int64{1, 2, 3}, map[string]string{"highway": "residential"}); err != nil {
		t.Fatalf("ProcessWay A: %v", err)
	}
	if err := b.ProcessWay(201, []int64{4, 2}, map[string]string{"highway": "residential"}); err != nil {
		t.Fatalf("ProcessWay B: %v", err)
	}

	layer := b.Network.LayerFor(osmtags.RoadLayer)
	if layer.NumLinks() != 2 {
		t.Fatalf("before repair: NumLinks() = %d, want 2", layer.NumLinks())
	}

	b.Repair()

	live := layer.LiveLinks()
	if len(live) != 3 {
		t.Fatalf("after repair: LiveLinks() = %d, want 3 (way A split into 2 + way B)", len(live))
	}
}
