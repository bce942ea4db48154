// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// testDB creates a migrated database in a temporary directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "furnishop-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMigrateCreatesSessionsTable(t *testing.T) {
	db := testDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'sessions'`).Scan(&name)
	if err != nil {
		t.Fatalf("sessions table not found: %v", err)
	}

	_, err = db.Exec(`INSERT INTO sessions (token, data, expiry) VALUES (?, ?, ?)`, "tok", []byte("data"), 1.5)
	if err != nil {
		t.Fatalf("insert into sessions: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestWALMode(t *testing.T) {
	db := testDB(t)

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestPing(t *testing.T) {
	db := testDB(t)

	if err := Ping(context.Background(), db, time.Second); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	_ = db.Close()
	if err := Ping(context.Background(), db, time.Second); err == nil {
		t.Error("Ping() on closed database: expected error")
	}
}
