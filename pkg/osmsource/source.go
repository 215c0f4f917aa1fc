// Package osmsource provides a streaming EntitySource abstraction over
// OSM extracts, generalizing the teacher's two-pass osmpbf.New(ctx, rs,
// n) approach (pkg/osm/parser.go) to the three input origins §1/§4
// require: local PBF, local XML, and HTTP(S) extracts. Every origin
// resolves to an io.ReadSeeker so the same two-pass (ways-then-nodes)
// scan strategy works regardless of where the bytes came from.
package osmsource

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// Format identifies the on-disk encoding of an OSM extract.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// Scanner is the minimal streaming interface both osmpbf.Scanner and
// osmxml.Scanner satisfy (§4 streaming order: nodes, then ways, then
// relations, ascending id within kind — enforced by the underlying OSM
// file ordering, not re-sorted here).
type Scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// EntitySource opens independent scanning passes over the same
// underlying extract. Each call to Scan starts a fresh pass from the
// beginning of the file, mirroring the teacher's rs.Seek(0,
// io.SeekStart) between its two passes.
type EntitySource struct {
	format Format
	rs     io.ReadSeeker
	closer func() error
}

// ScanOptions controls which object kinds a pass needs, so a scanner can
// skip decoding kinds the caller doesn't want (§4.3 pass 1 only needs
// ways, pass 2 only needs nodes — matching the teacher's
// scanner.SkipNodes/SkipWays/SkipRelations fields).
type ScanOptions struct {
	SkipNodes     bool
	SkipWays      bool
	SkipRelations bool
}

// Scan opens a new scanning pass from the start of the extract.
func (s *EntitySource) Scan(ctx context.Context, opts ScanOptions) (Scanner, error) {
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("osmsource: seek to start: %w", err)
	}

	switch s.format {
	case FormatPBF:
		sc := osmpbf.New(ctx, s.rs, 1)
		sc.SkipNodes = opts.SkipNodes
		sc.SkipWays = opts.SkipWays
		sc.SkipRelations = opts.SkipRelations
		return sc, nil
	case FormatXML:
		sc := osmxml.New(ctx, s.rs)
		return &xmlScanner{Scanner: sc, opts: opts}, nil
	default:
		return nil, fmt.Errorf("osmsource: unknown format %d", s.format)
	}
}

// Close releases any resources (temp files) the source opened.
func (s *EntitySource) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// xmlScanner adapts osmxml.Scanner, which has no skip-by-kind knobs, to
// Scanner's contract by filtering in Scan.
type xmlScanner struct {
	*osmxml.Scanner
	opts ScanOptions
}

func (x *xmlScanner) Scan() bool {
	for x.Scanner.Scan() {
		switch x.Scanner.Object().(type) {
		case *osm.Node:
			if x.opts.SkipNodes {
				continue
			}
		case *osm.Way:
			if x.opts.SkipWays {
				continue
			}
		case *osm.Relation:
			if x.opts.SkipRelations {
				continue
			}
		}
		return true
	}
	return false
}

// FormatFromExtension infers a Format from a file path's extension,
// treating ".osm.pbf" and ".pbf" as FormatPBF and ".osm"/".xml" as
// FormatXML.
func FormatFromExtension(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".pbf"):
		return FormatPBF, nil
	case strings.HasSuffix(lower, ".osm"), strings.HasSuffix(lower, ".xml"):
		return FormatXML, nil
	default:
		return 0, fmt.Errorf("osmsource: cannot infer format from %q", filepath.Base(path))
	}
}

// sniffFormat inspects the leading bytes of r (rewound by the caller before
// use) to tell PBF's length-delimited protobuf framing apart from XML/text,
// for sources whose URL carries no recognisable extension.
func sniffFormat(r io.Reader) (Format, error) {
	head := make([]byte, 64)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}
	head = head[:n]
	for _, b := range head {
		if b == '<' {
			return FormatXML, nil
		}
		// A leading '<' found before any non-printable byte means XML; any
		// byte outside printable ASCII/whitespace this early means PBF's
		// binary BlobHeader length prefix.
		if b < 0x09 || (b > 0x0d && b < 0x20) {
			return FormatPBF, nil
		}
	}
	return FormatXML, nil
}

// OpenFile opens a local PBF or XML extract for streaming.
func OpenFile(path string) (*EntitySource, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("osmsource: open %s: %w", path, err)
	}
	return &EntitySource{format: format, rs: f, closer: f.Close}, nil
}

// OpenHTTP downloads an extract from url into a local temp file, then
// opens it for streaming (§4 "HTTP(S): download-then-seek" — the
// scanner interfaces both require io.ReadSeeker, which a live HTTP
// response body is not). Many OSM HTTP endpoints (e.g. the api.openstreetmap.org
// map call used in bbox-extract requests) carry no .osm/.pbf suffix at all, so
// the format is sniffed from the downloaded bytes whenever the URL's
// extension doesn't resolve one.
func OpenHTTP(ctx context.Context, url string) (*EntitySource, error) {
	format, extErr := FormatFromExtension(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("osmsource: build request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Minute}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osmsource: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osmsource: fetch %s: status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "osmnetplan-extract-*"+filepath.Ext(url))
	if err != nil {
		return nil, fmt.Errorf("osmsource: create temp file: %w", err)
	}

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("osmsource: download %s: %w", url, err)
	}
	log.Printf("osmsource: downloaded %s (%d bytes) in %s", url, n, time.Since(start).Round(time.Second))

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("osmsource: rewind temp file: %w", err)
	}

	if extErr != nil {
		format, err = sniffFormat(tmp)
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, fmt.Errorf("osmsource: sniff format of %s: %w", url, err)
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, fmt.Errorf("osmsource: rewind temp file: %w", err)
		}
	}

	tmpPath := tmp.Name()
	closer := func() error {
		cerr := tmp.Close()
		rerr := os.Remove(tmpPath)
		if cerr != nil {
			return cerr
		}
		return rerr
	}

	return &EntitySource{format: format, rs: tmp, closer: closer}, nil
}
