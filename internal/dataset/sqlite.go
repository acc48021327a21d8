// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package dataset

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// Store mirrors the two output tables into a SQLite file, keyed on
// identity, so runs can be queried and re-run without duplicating rows.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite database at path and ensures the
// schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// initSchema creates the tables if they do not exist.
func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS features (
		file                  TEXT    NOT NULL,
		function              TEXT    NOT NULL,
		ordinal               INTEGER NOT NULL,
		cyclomatic_complexity INTEGER NOT NULL,
		token_count           INTEGER NOT NULL,
		parameter_count       INTEGER NOT NULL,
		max_nesting_depth     INTEGER NOT NULL,
		loop_count            INTEGER NOT NULL,
		branch_count          INTEGER NOT NULL,
		call_count            INTEGER NOT NULL,
		PRIMARY KEY (file, function, ordinal)
	);
	CREATE TABLE IF NOT EXISTS measurements (
		file                 TEXT    NOT NULL,
		function             TEXT    NOT NULL,
		ordinal              INTEGER NOT NULL,
		noinline_object_size INTEGER NOT NULL,
		inline_object_size   INTEGER NOT NULL,
		percent_delta        REAL,
		compile_status       TEXT    NOT NULL,
		PRIMARY KEY (file, function, ordinal)
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// InsertFeatures upserts feature rows inside one transaction.
func (s *Store) InsertFeatures(records []types.FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO features (
		file, function, ordinal,
		cyclomatic_complexity, token_count, parameter_count,
		max_nesting_depth, loop_count, branch_count, call_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(file, function, ordinal) DO UPDATE SET
		cyclomatic_complexity = excluded.cyclomatic_complexity,
		token_count           = excluded.token_count,
		parameter_count       = excluded.parameter_count,
		max_nesting_depth     = excluded.max_nesting_depth,
		loop_count            = excluded.loop_count,
		branch_count          = excluded.branch_count,
		call_count            = excluded.call_count`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing feature upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.Identity.File, rec.Identity.Function, rec.Identity.Ordinal,
			rec.CyclomaticComplexity, rec.TokenCount, rec.ParameterCount,
			rec.MaxNestingDepth, rec.LoopCount, rec.BranchCount, rec.CallCount,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upserting features for %s: %w", rec.Identity, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing features: %w", err)
	}
	return nil
}

// InsertMeasurements upserts measurement rows inside one transaction.
// Failed rows store NULL for percent_delta.
func (s *Store) InsertMeasurements(records []types.MeasurementRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO measurements (
		file, function, ordinal,
		noinline_object_size, inline_object_size,
		percent_delta, compile_status
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(file, function, ordinal) DO UPDATE SET
		noinline_object_size = excluded.noinline_object_size,
		inline_object_size   = excluded.inline_object_size,
		percent_delta        = excluded.percent_delta,
		compile_status       = excluded.compile_status`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing measurement upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var delta interface{}
		if rec.Status == types.StatusOK {
			delta = rec.PercentDelta
		}
		_, err := stmt.Exec(
			rec.Identity.File, rec.Identity.Function, rec.Identity.Ordinal,
			rec.NoinlineSize, rec.InlineSize, delta, string(rec.Status),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upserting measurement for %s: %w", rec.Identity, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing measurements: %w", err)
	}
	return nil
}

// CountRows returns the row counts of both tables.
func (s *Store) CountRows() (features, measurements int, err error) {
	if err := s.db.QueryRow("SELECT COUNT(*) FROM features").Scan(&features); err != nil {
		return 0, 0, fmt.Errorf("counting features: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM measurements").Scan(&measurements); err != nil {
		return 0, 0, fmt.Errorf("counting measurements: %w", err)
	}
	return features, measurements, nil
}

// Close releases the database handle. Safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
