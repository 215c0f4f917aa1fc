package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/azybler/osmnetplan/pkg/osmsource"
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/azybler/osmnetplan/pkg/settings"
	"github.com/paulmach/orb"
)

// sampleExtract is a tiny street with a bus stop pole and its stop_area
// relation, laid out so Run exercises both §4.3 network materialisation
// and §4.4's three pass-stitching over a single streamed extract.
const sampleExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="1.0000" lon="103.0000"/>
  <node id="2" lat="1.0000" lon="103.0010"/>
  <node id="3" lat="1.0000" lon="103.0020"/>
  <node id="100" lat="1.0003" lon="103.0010">
    <tag k="highway" v="bus_stop"/>
    <tag k="name" v="Museum"/>
  </node>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="primary"/>
  </way>
  <relation id="500">
    <member type="node" ref="100" role="platform"/>
    <tag k="public_transport" v="stop_area"/>
    <tag k="name" v="Museum Stop Area"/>
  </relation>
</osm>`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.osm")
	if err := os.WriteFile(path, []byte(sampleExtract), 0o644); err != nil {
		t.Fatalf("write sample extract: %v", err)
	}
	return path
}

func TestRunMaterialisesNetworkAndZoning(t *testing.T) {
	src, err := osmsource.OpenFile(writeSample(t))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer src.Close()

	s := settings.Default()
	result, err := Run(context.Background(), src, s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	road := result.Network.LayerFor(osmtags.RoadLayer)
	if len(road.LiveLinks()) == 0 {
		t.Fatal("expected at least one live road link")
	}
	if road.NumSegments() == 0 {
		t.Fatal("expected at least one directed segment")
	}

	if result.Zoning.NumZones() != 1 {
		t.Fatalf("NumZones() = %d, want 1 (the bus_stop pole)", result.Zoning.NumZones())
	}
	if result.Zoning.NumGroups() != 1 {
		t.Fatalf("NumGroups() = %d, want 1 (the stop_area relation)", result.Zoning.NumGroups())
	}

	var found bool
	for _, z := range result.Zoning.Zones() {
		if z.Name == "Museum" && len(z.Groups) > 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected the bus_stop zone to carry its name and belong to a group")
	}
}

func TestRunWithoutPTSkipsZoning(t *testing.T) {
	src, err := osmsource.OpenFile(writeSample(t))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer src.Close()

	s := settings.Default()
	s.ActiveParsers[settings.PTParser] = false

	result, err := Run(context.Background(), src, s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Zoning.NumZones() != 0 {
		t.Errorf("NumZones() = %d, want 0 with the pt sub-parser deactivated", result.Zoning.NumZones())
	}
}

func TestWayGeometryBuildsLineString(t *testing.T) {
	pos := map[int64]orb.Point{
		1: {103.0, 1.0},
		2: {103.001, 1.0},
	}
	geom := wayGeometry([]int64{1, 2}, pos)
	ls, ok := geom.(orb.LineString)
	if !ok {
		t.Fatalf("wayGeometry returned %T, want orb.LineString", geom)
	}
	if len(ls) != 2 {
		t.Fatalf("len(ls) = %d, want 2", len(ls))
	}
}

func TestWayGeometryClosedWayBuildsPolygon(t *testing.T) {
	pos := map[int64]orb.Point{
		1: {0, 0},
		2: {0, 1},
		3: {1, 1},
	}
	// A closed way: first and last node ids are the same.
	geom := wayGeometry([]int64{1, 2, 3, 1}, pos)
	if _, ok := geom.(orb.Polygon); !ok {
		t.Fatalf("wayGeometry(closed) returned %T, want orb.Polygon", geom)
	}
}

func TestWayGeometrySkipsUnseenNodes(t *testing.T) {
	pos := map[int64]orb.Point{
		1: {0, 0},
	}
	geom := wayGeometry([]int64{1, 99}, pos)
	ls, ok := geom.(orb.LineString)
	if !ok {
		t.Fatalf("wayGeometry returned %T, want orb.LineString", geom)
	}
	if len(ls) != 1 {
		t.Fatalf("len(ls) = %d, want 1 (node 99 was never seen)", len(ls))
	}
}

func TestWayGeometryEmptyReturnsNil(t *testing.T) {
	geom := wayGeometry([]int64{7}, map[int64]orb.Point{})
	if geom != nil {
		t.Errorf("wayGeometry with no resolvable nodes should return nil, got %v", geom)
	}
}
