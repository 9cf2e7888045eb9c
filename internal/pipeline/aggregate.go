package pipeline

import (
	"context"
	"fmt"

	"worldbank-pipeline/internal/model"
	"worldbank-pipeline/internal/store"
)

// ------------------- Aggregate Stage -------------------

// Both aggregates exclude region NULL, empty string, and the literal
// 'Unknown'. Enrichment assigns unmapped countries 'Other', never 'Unknown',
// so those rows pass this filter and show up as a distinct 'Other' bucket.
// That matches the source analysis literally; see the literal-filter note in
// DESIGN.md before changing it.
const regionYearSQL = `
SELECT
    region,
    year,
    AVG(value) AS avg_participation_rate,
    COUNT(DISTINCT country_code) AS num_countries
FROM indicator_with_region
WHERE region != 'Unknown'
  AND region IS NOT NULL
  AND region != ''
GROUP BY region, year
HAVING COUNT(DISTINCT country_code) >= 3
ORDER BY region, year
`

const regionSummarySQL = `
SELECT
    region,
    MIN(year) AS first_year,
    MAX(year) AS last_year,
    ROUND(AVG(value), 1) AS avg_rate,
    COUNT(*) AS data_points
FROM indicator_with_region
WHERE region != 'Unknown' AND region IS NOT NULL AND region != ''
GROUP BY region
ORDER BY avg_rate DESC
`

// RegionYearAggregates computes the mean participation rate and distinct
// country count per (region, year), keeping only groups with at least three
// distinct contributing countries, sorted ascending by (region, year). The
// result is a fresh read-only view of indicator_with_region.
func RegionYearAggregates(ctx context.Context, db *store.Duck) ([]model.RegionYearAggregate, error) {
	rows, err := db.DB.QueryContext(ctx, regionYearSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query regional aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []model.RegionYearAggregate
	for rows.Next() {
		var a model.RegionYearAggregate
		if err := rows.Scan(&a.Region, &a.Year, &a.AvgRate, &a.NumCountries); err != nil {
			return nil, fmt.Errorf("failed to scan regional aggregate: %w", err)
		}
		aggs = append(aggs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fmt.Printf("📊 Regional aggregates: %d rows\n", len(aggs))
	return aggs, nil
}

// RegionSummaries computes the per-region rollup (first/last year, average
// rate rounded to one decimal, total data points) sorted descending by
// average rate. Ties may appear in any order.
func RegionSummaries(ctx context.Context, db *store.Duck) ([]model.RegionSummary, error) {
	rows, err := db.DB.QueryContext(ctx, regionSummarySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query region summaries: %w", err)
	}
	defer rows.Close()

	var summaries []model.RegionSummary
	for rows.Next() {
		var s model.RegionSummary
		if err := rows.Scan(&s.Region, &s.FirstYear, &s.LastYear, &s.AvgRate, &s.DataPoints); err != nil {
			return nil, fmt.Errorf("failed to scan region summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fmt.Printf("📊 Region summaries: %d rows\n", len(summaries))
	return summaries, nil
}
