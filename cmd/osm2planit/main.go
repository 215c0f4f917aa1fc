// Command osm2planit exercises pipeline.Run end to end against a local
// OSM XML/PBF extract or an HTTP(S) URL, printing the resulting network
// and zoning counts. It mirrors cmd/preprocess's flag-based CLI shape;
// the full CLI/writer/persistence framework around it is out of scope
// (§1 "the downstream PLANit network/zoning persistence layer").
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/azybler/osmnetplan/pkg/osmsource"
	"github.com/azybler/osmnetplan/pkg/pipeline"
	"github.com/azybler/osmnetplan/pkg/settings"
)

func main() {
	input := flag.String("input", "", "Path to a .osm/.osm.pbf file, or an http(s):// URL")
	country := flag.String("country", "", "ISO-2 country code for mode-access/speed-limit defaults")
	leftHandDrive := flag.Bool("left-hand-drive", false, "Driving side for connectoid inside-of-door resolution (§4.4)")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLon,maxLat,maxLon")
	railway := flag.Bool("railway", false, "Activate the railway sub-parser")
	waterway := flag.Bool("waterway", false, "Activate the waterway sub-parser")
	noPt := flag.Bool("no-pt", false, "Deactivate the public-transport sub-parser")
	retainTags := flag.Bool("retain-tags", false, "Attach parsed OSM tag maps to produced links/nodes")
	dangling := flag.Bool("remove-dangling", false, "Remove dangling subnetworks below the minimum component size")
	danglingMinSize := flag.Int("dangling-min-size", 1, "Minimum connected-component size to retain")
	danglingLargestOnly := flag.Bool("dangling-largest-only", false, "Retain only the single largest connected component")
	consolidate := flag.Bool("consolidate", false, "Consolidate functionally-equivalent link-segment types")
	nodeRetention := flag.Bool("node-retention", false, "Run the optional node-retention pre-pass (§4.3a)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: osm2planit --input <file.osm|file.osm.pbf|http(s)://...> [--country AU] [options]")
		os.Exit(1)
	}

	s := settings.Default()
	s.CountryISO2 = *country
	s.LeftHandDrive = *leftHandDrive
	s.RetainOsmTags = *retainTags
	s.RemoveDanglingSubnetworks = *dangling
	s.DanglingMinSize = *danglingMinSize
	s.DanglingKeepLargestOnly = *danglingLargestOnly
	s.ConsolidateLinkSegmentTypes = *consolidate
	s.UseNodeRetentionPlanner = *nodeRetention
	s.ActiveParsers[settings.RailwayParser] = *railway
	s.ActiveParsers[settings.WaterwayParser] = *waterway
	s.ActiveParsers[settings.PTParser] = !*noPt

	if *bbox != "" {
		var minLat, minLon, maxLat, maxLon float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLon, &maxLat, &maxLon); err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLon,maxLat,maxLon): %v", err)
		}
		s.BoundingBox = settings.BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}
		log.Printf("Using bounding box filter: lat [%.5f, %.5f], lon [%.5f, %.5f]", minLat, maxLat, minLon, maxLon)
	}

	ctx := context.Background()
	start := time.Now()

	log.Println("Opening OSM source...")
	src, err := openSource(ctx, *input)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer src.Close()

	log.Println("Running pipeline...")
	result, err := pipeline.Run(ctx, src, s)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	for _, layer := range result.Network.Layers() {
		log.Printf("Layer %s: %d nodes, %d links, %d segments, %d types",
			layer.Kind, len(layer.LiveNodes()), len(layer.LiveLinks()), layer.NumSegments(), layer.NumTypes())
	}
	log.Printf("Zoning: %d transfer zones, %d groups, %d connectoids",
		result.Zoning.NumZones(), result.Zoning.NumGroups(), result.Zoning.NumConns())

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}

// openSource picks the local-file or HTTP(S) constructor based on input's
// scheme (§6 Inputs: "accepted as local file paths or HTTP(S) URLs").
func openSource(ctx context.Context, input string) (*osmsource.EntitySource, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return osmsource.OpenHTTP(ctx, input)
	}
	return osmsource.OpenFile(input)
}
