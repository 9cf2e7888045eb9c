// Package regions holds the static country-to-region reference data.
//
// The mapping is a hand-curated subset of World Bank region groupings. It is
// kept as a versionable CSV artifact compiled into the binary rather than
// inlined constants, so the data can be updated without touching pipeline
// logic. It has no lifecycle beyond process start: loaded once, never
// refreshed within a run.
package regions

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"
)

//go:embed region_mapping.csv
var mappingCSV string

// Mapping associates an ISO3 country code with a coarse region name.
type Mapping struct {
	CountryCode string // uppercase canonical
	Region      string
}

// Load parses the embedded reference file. Codes are canonicalized to
// uppercase; blank codes or regions are rejected rather than skipped.
func Load() ([]Mapping, error) {
	reader := csv.NewReader(strings.NewReader(mappingCSV))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse region mapping: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("region mapping is empty")
	}
	if rows[0][0] != "country_code" || rows[0][1] != "region" {
		return nil, fmt.Errorf("unexpected region mapping header: %v", rows[0])
	}

	seen := make(map[string]bool, len(rows)-1)
	mappings := make([]Mapping, 0, len(rows)-1)
	for i, row := range rows[1:] {
		code := strings.ToUpper(strings.TrimSpace(row[0]))
		region := strings.TrimSpace(row[1])
		if code == "" || region == "" {
			return nil, fmt.Errorf("region mapping line %d: blank code or region", i+2)
		}
		if seen[code] {
			return nil, fmt.Errorf("region mapping line %d: duplicate code %s", i+2, code)
		}
		seen[code] = true
		mappings = append(mappings, Mapping{CountryCode: code, Region: region})
	}
	return mappings, nil
}
