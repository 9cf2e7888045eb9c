package pipeline

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionYearAggregates(t *testing.T) {
	db := testDuck(t)
	createEnriched(t, db)

	// East Asia & Pacific 2020: three countries, passes the threshold.
	insertEnriched(t, db, `('CHN', 'China', 2020, 68.0, 'lfp', 'East Asia & Pacific')`)
	insertEnriched(t, db, `('JPN', 'Japan', 2020, 62.0, 'lfp', 'East Asia & Pacific')`)
	insertEnriched(t, db, `('KOR', 'Korea', 2020, 63.0, 'lfp', 'East Asia & Pacific')`)
	// North America 2020: two countries, below the threshold.
	insertEnriched(t, db, `('USA', 'United States', 2020, 61.5, 'lfp', 'North America')`)
	insertEnriched(t, db, `('CAN', 'Canada', 2020, 65.2, 'lfp', 'North America')`)
	// 'Other' 2020: three unmapped countries. The exclusion filter only
	// rejects the literal 'Unknown', so this bucket survives.
	insertEnriched(t, db, `('ZZZ', 'Atlantis', 2020, 50.0, 'lfp', 'Other')`)
	insertEnriched(t, db, `('XXX', 'Erewhon', 2020, 52.0, 'lfp', 'Other')`)
	insertEnriched(t, db, `('YYY', 'Utopia', 2020, 54.0, 'lfp', 'Other')`)
	// Excluded regions: literal 'Unknown', empty string, NULL.
	insertEnriched(t, db, `('AAA', 'A', 2020, 10.0, 'lfp', 'Unknown')`)
	insertEnriched(t, db, `('BBB', 'B', 2020, 10.0, 'lfp', 'Unknown')`)
	insertEnriched(t, db, `('CCC', 'C', 2020, 10.0, 'lfp', 'Unknown')`)
	insertEnriched(t, db, `('DDD', 'D', 2020, 10.0, 'lfp', '')`)
	insertEnriched(t, db, `('EEE', 'E', 2020, 10.0, 'lfp', '')`)
	insertEnriched(t, db, `('FFF', 'F', 2020, 10.0, 'lfp', '')`)
	insertEnriched(t, db, `('GGG', 'G', 2020, 10.0, 'lfp', NULL)`)

	aggs, err := RegionYearAggregates(t.Context(), db)
	require.NoError(t, err)

	regions := make([]string, 0, len(aggs))
	for _, a := range aggs {
		regions = append(regions, a.Region)
		require.GreaterOrEqual(t, a.NumCountries, 3, "threshold must hold for every group")
	}
	require.Equal(t, []string{"East Asia & Pacific", "Other"}, regions,
		"'Other' passes the literal 'Unknown' filter; below-threshold and excluded regions are absent")

	require.Equal(t, 2020, aggs[0].Year)
	require.InDelta(t, (68.0+62.0+63.0)/3, aggs[0].AvgRate, 1e-9)
	require.Equal(t, 3, aggs[0].NumCountries)

	t.Run("sorted_by_region_and_year", func(t *testing.T) {
		require.True(t, sort.SliceIsSorted(aggs, func(i, j int) bool {
			if aggs[i].Region != aggs[j].Region {
				return aggs[i].Region < aggs[j].Region
			}
			return aggs[i].Year < aggs[j].Year
		}))
	})
}

func TestRegionYearAggregatesScenario(t *testing.T) {
	db := testDuck(t)
	createEnriched(t, db)

	// Five distinct countries reporting for the same region and year.
	values := []float64{61.5, 65.2, 60.0, 62.0, 64.0}
	insertEnriched(t, db, `('USA', 'United States', 2020, 61.5, 'lfp', 'North America')`)
	insertEnriched(t, db, `('CAN', 'Canada', 2020, 65.2, 'lfp', 'North America')`)
	insertEnriched(t, db, `('BMU', 'Bermuda', 2020, 60.0, 'lfp', 'North America')`)
	insertEnriched(t, db, `('GRL', 'Greenland', 2020, 62.0, 'lfp', 'North America')`)
	insertEnriched(t, db, `('SPM', 'St. Pierre', 2020, 64.0, 'lfp', 'North America')`)

	aggs, err := RegionYearAggregates(t.Context(), db)
	require.NoError(t, err)
	require.Len(t, aggs, 1)

	var sum float64
	for _, v := range values {
		sum += v
	}
	require.Equal(t, "North America", aggs[0].Region)
	require.Equal(t, 2020, aggs[0].Year)
	require.InDelta(t, sum/float64(len(values)), aggs[0].AvgRate, 1e-9)
	require.Equal(t, 5, aggs[0].NumCountries)
}

func TestRegionSummaries(t *testing.T) {
	db := testDuck(t)
	createEnriched(t, db)

	// Europe spans two years with a high average; Other sits lower.
	insertEnriched(t, db, `('DEU', 'Germany', 2019, 70.0, 'lfp', 'Europe & Central Asia')`)
	insertEnriched(t, db, `('FRA', 'France', 2020, 71.0, 'lfp', 'Europe & Central Asia')`)
	insertEnriched(t, db, `('GBR', 'UK', 2021, 72.04, 'lfp', 'Europe & Central Asia')`)
	insertEnriched(t, db, `('ZZZ', 'Atlantis', 2020, 50.0, 'lfp', 'Other')`)
	insertEnriched(t, db, `('AAA', 'A', 2020, 10.0, 'lfp', 'Unknown')`)

	summaries, err := RegionSummaries(t.Context(), db)
	require.NoError(t, err)
	require.Len(t, summaries, 2, "'Unknown' is excluded; no country threshold applies here")

	t.Run("sorted_by_avg_rate_descending", func(t *testing.T) {
		require.Equal(t, "Europe & Central Asia", summaries[0].Region)
		require.Equal(t, "Other", summaries[1].Region)
		require.GreaterOrEqual(t, summaries[0].AvgRate, summaries[1].AvgRate)
	})

	t.Run("year_bounds_and_rounding", func(t *testing.T) {
		eu := summaries[0]
		require.Equal(t, 2019, eu.FirstYear)
		require.Equal(t, 2021, eu.LastYear)
		require.InDelta(t, 71.0, eu.AvgRate, 1e-9, "average is rounded to one decimal place")
		require.Equal(t, 3, eu.DataPoints)
	})
}

func TestRegionYearAggregatesEmpty(t *testing.T) {
	db := testDuck(t)
	createEnriched(t, db)

	t.Run("no_data_at_all", func(t *testing.T) {
		aggs, err := RegionYearAggregates(t.Context(), db)
		require.NoError(t, err)
		require.Empty(t, aggs)
	})

	t.Run("all_groups_below_threshold", func(t *testing.T) {
		insertEnriched(t, db, `('USA', 'United States', 2020, 61.5, 'lfp', 'North America')`)
		insertEnriched(t, db, `('CAN', 'Canada', 2020, 65.2, 'lfp', 'North America')`)

		aggs, err := RegionYearAggregates(t.Context(), db)
		require.NoError(t, err)
		require.Empty(t, aggs, "a group that never reaches 3 countries is simply absent")
	})
}
