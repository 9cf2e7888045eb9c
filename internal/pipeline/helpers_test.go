package pipeline

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"worldbank-pipeline/internal/store"
)

// testDuck opens an in-memory analytical store scoped to one test.
func testDuck(t *testing.T) *store.Duck {
	t.Helper()
	db, err := store.OpenDuck("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// createRawIndicator builds indicator_raw with the source feed's column
// names, all VARCHAR, which is what type inference produces for columns with
// mixed content.
func createRawIndicator(t *testing.T, db *store.Duck) {
	t.Helper()
	err := db.Exec(t.Context(), `
		CREATE OR REPLACE TABLE indicator_raw (
			REF_AREA VARCHAR,
			REF_AREA_LABEL VARCHAR,
			TIME_PERIOD VARCHAR,
			OBS_VALUE VARCHAR,
			INDICATOR_LABEL VARCHAR
		)
	`)
	require.NoError(t, err)
}

// insertRaw appends one VALUES tuple to indicator_raw.
func insertRaw(t *testing.T, db *store.Duck, tuple string) {
	t.Helper()
	require.NoError(t, db.Exec(t.Context(), "INSERT INTO indicator_raw VALUES "+tuple))
}

// createEnriched builds indicator_with_region directly so the aggregate
// queries can be exercised without the upstream stages.
func createEnriched(t *testing.T, db *store.Duck) {
	t.Helper()
	err := db.Exec(t.Context(), `
		CREATE OR REPLACE TABLE indicator_with_region (
			country_code VARCHAR,
			country_name VARCHAR,
			year INTEGER,
			value DOUBLE,
			indicator_name VARCHAR,
			region VARCHAR
		)
	`)
	require.NoError(t, err)
}

func insertEnriched(t *testing.T, db *store.Duck, tuple string) {
	t.Helper()
	require.NoError(t, db.Exec(t.Context(), "INSERT INTO indicator_with_region VALUES "+tuple))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
