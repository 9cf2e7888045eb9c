package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"worldbank-pipeline/internal/model"
)

var db *sql.DB

// InitDB opens the run-tracking database and creates its tables. Tracking
// calls are no-ops until this has been called, so the pipeline stages can be
// exercised without a tracking store.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	stageTable := `
	CREATE TABLE IF NOT EXISTS stage_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		status TEXT,
		started_at DATETIME,
		ended_at DATETIME,
		records INTEGER
	);
	`
	logTable := `
	CREATE TABLE IF NOT EXISTS pipeline_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		stage TEXT,
		level TEXT,
		message TEXT,
		fields TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, errorTable, stageTable, logTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CloseDB releases the tracking database handle.
func CloseDB() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveRun stores a new pipeline run with its configuration.
func SaveRun(runID string, cfg model.Config) error {
	if db == nil {
		return nil
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, config, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, cfgJSON, "pending", now, now)
	return err
}

// UpdateRunStatus updates a run's status.
func UpdateRunStatus(runID string, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records a fatal error for a run.
func SaveRunError(runID string, runErr error) error {
	if db == nil || runErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, runErr.Error(), now)
	return err
}

// SaveStageProgress records the lifecycle of a pipeline stage.
func SaveStageProgress(runID, stage, status string, startedAt, endedAt *time.Time, records int64) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO stage_progress (run_id, stage, status, started_at, ended_at, records) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, status, startedAt, endedAt, records)
	return err
}

// SavePipelineLog persists a structured log row for a run.
func SavePipelineLog(runID, stage, level, message string, fields map[string]interface{}) error {
	if db == nil {
		return nil
	}
	var fieldsJSON []byte
	if fields != nil {
		var err error
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO pipeline_logs (run_id, stage, level, message, fields, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, level, message, string(fieldsJSON), now)
	return err
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches a run's full config and status.
func GetRun(runID string) (map[string]interface{}, error) {
	var cfgJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT config, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&cfgJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var cfg model.Config
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"config":    cfg,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}
