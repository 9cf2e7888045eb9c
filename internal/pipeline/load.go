package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"worldbank-pipeline/internal/model"
	"worldbank-pipeline/internal/store"
)

// ErrIngest marks CSV files the analytical store cannot materialize:
// missing, unreadable, or malformed beyond type inference's tolerance.
var ErrIngest = errors.New("ingest failure")

// ------------------- Load Stage -------------------

// LoadRawTables materializes both cached CSV files as raw tables. Column
// types are inferred per load from the file content and header row; no schema
// is declared up front. Each load replaces any existing table of the same
// name, which makes the loader idempotent against an unchanged source file.
// The dictionary load additionally deduplicates rows with set semantics.
func LoadRawTables(ctx context.Context, db *store.Duck, cfg model.Config) (rawRows, dictRows int64, err error) {
	rawRows, err = loadCSV(ctx, db, cfg.IndicatorPath(), "indicator_raw", false)
	if err != nil {
		return 0, 0, err
	}
	dictRows, err = loadCSV(ctx, db, cfg.DictionaryPath(), "dictionary", true)
	if err != nil {
		return rawRows, 0, err
	}
	return rawRows, dictRows, nil
}

func loadCSV(ctx context.Context, db *store.Duck, path, table string, distinct bool) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrIngest, path, err)
	}

	sel := "SELECT *"
	if distinct {
		sel = "SELECT DISTINCT *"
	}
	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS %s FROM read_csv_auto('%s', header=true)",
		table, sel, escapeSQLString(path),
	)
	if err := db.Exec(ctx, query); err != nil {
		return 0, fmt.Errorf("%w: loading %s into %s: %v", ErrIngest, path, table, err)
	}

	count, err := db.CountRows(ctx, table)
	if err != nil {
		return 0, err
	}
	fmt.Printf("📄 Loaded %s: %d rows\n", table, count)
	return count, nil
}

// escapeSQLString doubles single quotes for embedding in a SQL literal.
func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
