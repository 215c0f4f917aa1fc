package osmsource

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"
)

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "andorra-latest.osm.pbf", want: FormatPBF},
		{path: "extract.pbf", want: FormatPBF},
		{path: "extract.osm", want: FormatXML},
		{path: "extract.xml", want: FormatXML},
		{path: "extract.json", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromExtension(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatFromExtension(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="1.0" lon="103.0"/>
  <node id="2" lat="1.1" lon="103.1"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="residential"/>
  </way>
</osm>`

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{name: "xml declaration", data: []byte(sampleXML), want: FormatXML},
		{name: "bare osm element", data: []byte("<osm version=\"0.6\"></osm>"), want: FormatXML},
		{name: "pbf blob header length prefix", data: []byte{0x00, 0x00, 0x00, 0x0d, 0x0a, 0x09, 'O', 'S', 'M', 'H', 'e', 'a', 'd', 'e', 'r'}, want: FormatPBF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sniffFormat(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("sniffFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("sniffFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestOpenFileXMLTwoPasses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.osm")
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatalf("write sample file: %v", err)
	}

	src, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer src.Close()

	ctx := context.Background()

	wayScanner, err := src.Scan(ctx, ScanOptions{SkipNodes: true, SkipRelations: true})
	if err != nil {
		t.Fatalf("Scan (ways pass): %v", err)
	}
	var ways int
	for wayScanner.Scan() {
		if _, ok := wayScanner.Object().(*osm.Way); ok {
			ways++
		}
	}
	if err := wayScanner.Err(); err != nil {
		t.Fatalf("ways pass error: %v", err)
	}
	wayScanner.Close()
	if ways != 1 {
		t.Fatalf("ways pass found %d ways, want 1", ways)
	}

	nodeScanner, err := src.Scan(ctx, ScanOptions{SkipWays: true, SkipRelations: true})
	if err != nil {
		t.Fatalf("Scan (nodes pass): %v", err)
	}
	var nodes int
	for nodeScanner.Scan() {
		if _, ok := nodeScanner.Object().(*osm.Node); ok {
			nodes++
		}
	}
	if err := nodeScanner.Err(); err != nil {
		t.Fatalf("nodes pass error: %v", err)
	}
	nodeScanner.Close()
	if nodes != 2 {
		t.Fatalf("nodes pass found %d nodes, want 2", nodes)
	}
}
