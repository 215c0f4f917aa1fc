package osmtags

import (
	"embed"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"
)

//go:embed csvdata
var csvData embed.FS

// countryModeAccess holds the parsed mode_access/<ISO2>.csv override: for
// each way value, the ModeSet the country's authority permits.
type countryModeAccess map[string]ModeSet

// countrySpeedHighway holds speed_limit/highway/<ISO2>.csv: urban/non-urban
// km/h per way value.
type countrySpeedHighway map[string][2]float64 // [urban, nonUrban]

// countrySpeedRailway holds speed_limit/railway/<ISO2>.csv: km/h per way value.
type countrySpeedRailway map[string]float64

// countryTables is the lazily-built, per-country default bundle. Tables
// are immutable once loaded (§5: "Tag catalogs and country defaults are
// immutable after initial load").
type countryTables struct {
	modeAccess     countryModeAccess
	speedHighway   countrySpeedHighway
	speedRailway   countrySpeedRailway
}

// countryCache memoizes parsed per-country tables keyed by ISO-2 code.
// Reset via ResetCaches between pipeline invocations (§5 shared-resource
// policy).
var countryCache = map[string]*countryTables{}

var warnedUnknownCountry = map[string]bool{}

// ResetCaches clears every lazily-built cache and per-run warning
// dedup set, restoring the package to its initial state (§5: "Between
// invocations, all ... static caches must be resettable").
func ResetCaches() {
	countryCache = map[string]*countryTables{}
	warnedUnknownCountry = map[string]bool{}
	warnedOnce = map[string]bool{}
}

// loadCountry returns the parsed tables for an ISO-2 country code,
// loading and caching them on first use. An unknown/missing country
// returns a non-nil bundle whose tables are nil, so callers transparently
// fall through to the global tables; loadCountry itself logs nothing
// (AllowedModes logs the missing mode_access table once).
func loadCountry(iso2 string) *countryTables {
	iso2 = strings.ToUpper(strings.TrimSpace(iso2))
	if iso2 == "" {
		return &countryTables{}
	}
	if t, ok := countryCache[iso2]; ok {
		return t
	}

	t := &countryTables{
		modeAccess:   parseModeAccessCSV(iso2),
		speedHighway: parseSpeedHighwayCSV(iso2),
		speedRailway: parseSpeedRailwayCSV(iso2),
	}
	countryCache[iso2] = t
	return t
}

func readCSVRows(path string) ([][]string, bool) {
	f, err := csvData.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // mode_access rows have a variable column count
	var rows [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("osmtags: malformed CSV row in %s: %v (row skipped)", path, err)
			continue
		}
		if first {
			first = false
			continue // header row
		}
		rows = append(rows, rec)
	}
	return rows, true
}

func parseModeAccessCSV(iso2 string) countryModeAccess {
	rows, ok := readCSVRows("csvdata/mode_access/" + iso2 + ".csv")
	if !ok {
		return nil
	}
	mapping := DefaultOsmModeMapping()
	out := make(countryModeAccess, len(rows))
	for _, rec := range rows {
		if len(rec) < 1 {
			continue
		}
		wayValue := strings.TrimSpace(rec[0])
		if wayValue == "" {
			continue
		}
		set := NewModeSet()
		for _, tok := range rec[1:] {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if m, ok := mapping[tok]; ok {
				set.Add(m)
			}
		}
		out[wayValue] = set
	}
	return out
}

func parseSpeedHighwayCSV(iso2 string) countrySpeedHighway {
	rows, ok := readCSVRows("csvdata/speed_limit/highway/" + iso2 + ".csv")
	if !ok {
		return nil
	}
	out := make(countrySpeedHighway, len(rows))
	for _, rec := range rows {
		if len(rec) < 3 {
			log.Printf("osmtags: short speed_limit/highway row for %s: %v (row skipped)", iso2, rec)
			continue
		}
		urban, err1 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		nonUrban, err2 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err1 != nil || err2 != nil {
			log.Printf("osmtags: unparsable speed_limit/highway row for %s: %v (row skipped)", iso2, rec)
			continue
		}
		out[strings.TrimSpace(rec[0])] = [2]float64{urban, nonUrban}
	}
	return out
}

func parseSpeedRailwayCSV(iso2 string) countrySpeedRailway {
	rows, ok := readCSVRows("csvdata/speed_limit/railway/" + iso2 + ".csv")
	if !ok {
		return nil
	}
	out := make(countrySpeedRailway, len(rows))
	for _, rec := range rows {
		if len(rec) < 2 {
			log.Printf("osmtags: short speed_limit/railway row for %s: %v (row skipped)", iso2, rec)
			continue
		}
		kmh, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			log.Printf("osmtags: unparsable speed_limit/railway row for %s: %v (row skipped)", iso2, rec)
			continue
		}
		out[strings.TrimSpace(rec[0])] = kmh
	}
	return out
}
