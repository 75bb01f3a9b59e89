/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stats records how menus are used: which item was selected, how
// deep it sat, and how long the user needed. The store is an embedded SQLite
// database in the user's state directory.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "gopie/internal/log"
	"gopie/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// StatsFileName is the database file below the state directory.
	StatsFileName = "stats.sqlite"

	// schemaVersion tracks the SQLite schema of the statistics store.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// Selection is one recorded session outcome.
type Selection struct {
	Time     time.Time
	Menu     string // configured menu name, "" for ad-hoc menus
	Path     string // selected item path, "" when canceled
	Depth    int
	Canceled bool
	Duration time.Duration
}

// MenuCount is the per-menu selection total.
type MenuCount struct {
	Menu  string
	Count int
}

// Totals summarizes the whole store.
type Totals struct {
	Selections    int
	Cancels       int
	AvgDurationMs float64
	PerMenu       []MenuCount
}

// Store wraps the statistics database. Safe for concurrent use; the
// underlying pool is capped at one connection for embedded usage.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// DefaultPath returns the per-user statistics database path, honoring
// XDG_STATE_HOME.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve state directory: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "gopie", StatsFileName), nil
}

// Open creates or opens the statistics database at path, enables WAL mode,
// and brings the schema up to date.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("stats"), "open").With(
		slog.String("path", path),
	)
	if path == "" {
		return nil, errors.New("stats path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create state dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Set reasonable connection pool limits for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("stats store ready")
	return &Store{db: db, log: applog.WithComponent("stats")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	// Seed or update single-row version info
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS selections (
			id          INTEGER PRIMARY KEY,
			ts          TEXT    NOT NULL,
			menu        TEXT    NOT NULL,
			path        TEXT    NOT NULL,
			canceled    INTEGER NOT NULL DEFAULT 0,
			depth       INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_selections_ts ON selections(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_selections_menu ON selections(menu);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade; just log and continue
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// Early stores tracked neither selection depth nor duration.
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`ALTER TABLE selections ADD COLUMN depth INTEGER NOT NULL DEFAULT 0;`,
				`ALTER TABLE selections ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0;`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}

// Record appends one selection.
func (s *Store) Record(ctx context.Context, sel Selection) error {
	ts := sel.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	canceled := 0
	if sel.Canceled {
		canceled = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO selections (ts, menu, path, canceled, depth, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339), sel.Menu, sel.Path, canceled, sel.Depth, sel.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record selection: %w", err)
	}
	return nil
}

// Totals summarizes all recorded sessions.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(canceled), 0), AVG(CASE WHEN canceled=0 THEN duration_ms END) FROM selections`).
		Scan(&t.Selections, &t.Cancels, &avg)
	if err != nil {
		return Totals{}, fmt.Errorf("read totals: %w", err)
	}
	if avg.Valid {
		t.AvgDurationMs = avg.Float64
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT menu, COUNT(*) FROM selections WHERE canceled=0 GROUP BY menu ORDER BY COUNT(*) DESC, menu ASC`)
	if err != nil {
		return Totals{}, fmt.Errorf("read per-menu totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mc MenuCount
		if err := rows.Scan(&mc.Menu, &mc.Count); err != nil {
			return Totals{}, fmt.Errorf("scan per-menu total: %w", err)
		}
		t.PerMenu = append(t.PerMenu, mc)
	}
	if err := rows.Err(); err != nil {
		return Totals{}, fmt.Errorf("read per-menu totals: %w", err)
	}
	return t, nil
}

// Recent returns the latest recorded sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Selection, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, menu, path, canceled, depth, duration_ms FROM selections ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("read recent selections: %w", err)
	}
	defer rows.Close()
	var out []Selection
	for rows.Next() {
		var (
			ts       string
			canceled int
			ms       int64
			sel      Selection
		)
		if err := rows.Scan(&ts, &sel.Menu, &sel.Path, &canceled, &sel.Depth, &ms); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			sel.Time = t
		}
		sel.Canceled = canceled != 0
		sel.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read recent selections: %w", err)
	}
	return out, nil
}
