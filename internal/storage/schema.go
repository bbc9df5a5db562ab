package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
//
//	v1: runs, run_sources
//	v2: artifacts
const currentSchemaVersion = 2

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createRunsTables(tx); err != nil {
			return err
		}
		if err := createArtifactsTable(tx); err != nil {
			return err
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)

	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if version < 1 {
			if err := createSchemaVersionTable(tx); err != nil {
				return err
			}
			if err := createRunsTables(tx); err != nil {
				return err
			}
		}
		if version < 2 {
			if err := createArtifactsTable(tx); err != nil {
				return err
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createRunsTables creates runs and the ordered source list of each run
func createRunsTables(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			target TEXT NOT NULL,
			base_name TEXT NOT NULL,
			version TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK(status IN ('succeeded', 'failed')),
			error TEXT NOT NULL DEFAULT '',
			source_count INTEGER NOT NULL DEFAULT 0,
			bytes INTEGER NOT NULL DEFAULT 0,
			digest TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`); err != nil {
		return err
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS run_sources (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ordinal INTEGER NOT NULL,
			path TEXT NOT NULL,
			PRIMARY KEY (run_id, ordinal)
		)
	`)
	return err
}

// createArtifactsTable creates the content-addressed store of aggregates
func createArtifactsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			digest TEXT PRIMARY KEY,
			codec TEXT NOT NULL,
			size INTEGER NOT NULL,
			data BLOB
		)
	`)
	return err
}
