package pipeline

import (
	"context"
	"fmt"
	"strings"

	"worldbank-pipeline/internal/regions"
	"worldbank-pipeline/internal/store"
)

// ------------------- Transform Stage -------------------

// Rows where value or period is null, or where either cast fails, are
// excluded rather than defaulted. TRY_CAST appears in both the projection and
// the filter so a single unparseable row drops out instead of failing the
// whole statement.
const cleanTableSQL = `
CREATE OR REPLACE TABLE indicator_clean AS
SELECT
    REF_AREA AS country_code,
    REF_AREA_LABEL AS country_name,
    TRY_CAST(TIME_PERIOD AS INTEGER) AS year,
    TRY_CAST(OBS_VALUE AS DOUBLE) AS value,
    INDICATOR_LABEL AS indicator_name
FROM indicator_raw
WHERE OBS_VALUE IS NOT NULL
  AND TIME_PERIOD IS NOT NULL
  AND TRY_CAST(OBS_VALUE AS DOUBLE) IS NOT NULL
  AND TRY_CAST(TIME_PERIOD AS INTEGER) IS NOT NULL
`

const enrichedTableSQL = `
CREATE OR REPLACE TABLE indicator_with_region AS
SELECT
    i.*,
    COALESCE(r.region, 'Other') AS region
FROM indicator_clean i
LEFT JOIN region_mapping r ON UPPER(i.country_code) = r.country_code
`

// BuildCleanTable derives the typed fact table from indicator_raw, replacing
// any previous version. Returns the surviving row count and the number of
// rows excluded by the null filters or a failed cast.
func BuildCleanTable(ctx context.Context, db *store.Duck) (cleanRows, excludedRows int64, err error) {
	rawRows, err := db.CountRows(ctx, "indicator_raw")
	if err != nil {
		return 0, 0, err
	}
	if err := db.Exec(ctx, cleanTableSQL); err != nil {
		return 0, 0, fmt.Errorf("failed to build indicator_clean: %w", err)
	}
	cleanRows, err = db.CountRows(ctx, "indicator_clean")
	if err != nil {
		return 0, 0, err
	}
	excludedRows = rawRows - cleanRows
	fmt.Printf("🧹 Cleaned data: %d rows (%d excluded by null or cast failure)\n", cleanRows, excludedRows)
	return cleanRows, excludedRows, nil
}

// BuildRegionMapping materializes the static country-to-region reference
// table from the embedded artifact. Rebuilt fresh each run; there is no
// update mechanism within a run.
func BuildRegionMapping(ctx context.Context, db *store.Duck) (int64, error) {
	mappings, err := regions.Load()
	if err != nil {
		return 0, err
	}

	if err := db.Exec(ctx, "CREATE OR REPLACE TABLE region_mapping (country_code VARCHAR, region VARCHAR)"); err != nil {
		return 0, fmt.Errorf("failed to create region_mapping: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO region_mapping VALUES ")
	for i, m := range mappings {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "('%s', '%s')", escapeSQLString(m.CountryCode), escapeSQLString(m.Region))
	}
	if err := db.Exec(ctx, sb.String()); err != nil {
		return 0, fmt.Errorf("failed to populate region_mapping: %w", err)
	}

	fmt.Printf("🗺️ Created region_mapping: %d countries\n", len(mappings))
	return int64(len(mappings)), nil
}

// BuildEnrichedTable left-joins the clean facts to the region mapping on
// uppercased country code. The join preserves every clean row; codes with no
// mapping get the literal region 'Other' rather than being dropped.
func BuildEnrichedTable(ctx context.Context, db *store.Duck) (int64, error) {
	if err := db.Exec(ctx, enrichedTableSQL); err != nil {
		return 0, fmt.Errorf("failed to build indicator_with_region: %w", err)
	}
	count, err := db.CountRows(ctx, "indicator_with_region")
	if err != nil {
		return 0, err
	}
	fmt.Printf("🔄 Created indicator_with_region: %d rows\n", count)
	return count, nil
}
