// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strconv"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// openMemoryDB opens a private in-memory SQLite database. One connection
// keeps every statement on the same in-memory instance.
func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sqlFile(text string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(text)}
}

// sqliteScripts returns n well-behaved scripts, version_0 through version_n-1.
func sqliteScripts(n int) fstest.MapFS {
	scripts := fstest.MapFS{}
	for v := 0; v < n; v++ {
		if v == 0 {
			scripts[ScriptName(0)] = sqlFile(`
				CREATE TABLE forum_schema_version (version INTEGER NOT NULL);
				INSERT INTO forum_schema_version (version) VALUES (0);
				CREATE TABLE t0 (id INTEGER PRIMARY KEY);
			`)
			continue
		}
		scripts[ScriptName(v)] = sqlFile(`
			CREATE TABLE t` + strconv.Itoa(v) + ` (id INTEGER PRIMARY KEY);
			UPDATE forum_schema_version SET version = ` + strconv.Itoa(v) + `;
		`)
	}
	return scripts
}

func tableExists(t *testing.T, conn *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := conn.QueryRow(`SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`, name).Scan(&exists)
	if err != nil {
		t.Fatalf("Failed to check table %s: %v", name, err)
	}
	return exists
}

func TestCurrentVersion_NoTable(t *testing.T) {
	conn := openMemoryDB(t)

	version, err := CurrentVersion(context.Background(), conn, SQLite)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != -1 {
		t.Errorf("CurrentVersion() = %d, want -1", version)
	}
}

func TestApplyPending_AppliesAllScripts(t *testing.T) {
	tests := []struct {
		name    string
		scripts int
		want    int
	}{
		{"no scripts", 0, -1},
		{"one script", 1, 0},
		{"three scripts", 3, 2},
		{"six scripts", 6, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := openMemoryDB(t)
			ctx := context.Background()

			version, err := ApplyPending(ctx, conn, SQLite, sqliteScripts(tt.scripts))
			if err != nil {
				t.Fatalf("ApplyPending() error = %v", err)
			}
			if version != tt.want {
				t.Errorf("ApplyPending() = %d, want %d", version, tt.want)
			}

			stored, err := CurrentVersion(ctx, conn, SQLite)
			if err != nil {
				t.Fatalf("CurrentVersion() error = %v", err)
			}
			if stored != tt.want {
				t.Errorf("stored version = %d, want %d", stored, tt.want)
			}

			for v := 0; v < tt.scripts; v++ {
				if !tableExists(t, conn, "t"+strconv.Itoa(v)) {
					t.Errorf("table t%d missing after migration", v)
				}
			}
		})
	}
}

func TestApplyPending_SecondRunIsNoop(t *testing.T) {
	conn := openMemoryDB(t)
	ctx := context.Background()
	scripts := sqliteScripts(4)

	if _, err := ApplyPending(ctx, conn, SQLite, scripts); err != nil {
		t.Fatalf("first ApplyPending() error = %v", err)
	}

	// Re-executing any script would fail on CREATE TABLE.
	version, err := ApplyPending(ctx, conn, SQLite, scripts)
	if err != nil {
		t.Fatalf("second ApplyPending() error = %v", err)
	}
	if version != 3 {
		t.Errorf("second ApplyPending() = %d, want 3", version)
	}
}

func TestApplyPending_ResumesFromStoredVersion(t *testing.T) {
	conn := openMemoryDB(t)
	ctx := context.Background()

	if _, err := ApplyPending(ctx, conn, SQLite, sqliteScripts(2)); err != nil {
		t.Fatalf("ApplyPending() error = %v", err)
	}

	version, err := ApplyPending(ctx, conn, SQLite, sqliteScripts(5))
	if err != nil {
		t.Fatalf("ApplyPending() error = %v", err)
	}
	if version != 4 {
		t.Errorf("ApplyPending() = %d, want 4", version)
	}
}

func TestApplyPending_VersionMismatchAborts(t *testing.T) {
	conn := openMemoryDB(t)
	ctx := context.Background()

	scripts := sqliteScripts(4)
	scripts[ScriptName(2)] = sqlFile(`
		CREATE TABLE t2 (id INTEGER PRIMARY KEY);
		UPDATE forum_schema_version SET version = 7;
	`)

	version, err := ApplyPending(ctx, conn, SQLite, scripts)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("ApplyPending() error = %v, want %v", err, ErrVersionMismatch)
	}
	if version != 7 {
		t.Errorf("ApplyPending() = %d, want 7", version)
	}

	// Whatever the script did stays in place.
	stored, err := CurrentVersion(ctx, conn, SQLite)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if stored != 7 {
		t.Errorf("stored version = %d, want 7", stored)
	}
	if !tableExists(t, conn, "t2") {
		t.Error("table t2 should remain after mismatching migration")
	}

	// Nothing after the failing script runs.
	if tableExists(t, conn, "t3") {
		t.Error("migration 3 should not run after a mismatch")
	}
}

func TestApplyPending_ScriptErrorRollsBack(t *testing.T) {
	conn := openMemoryDB(t)
	ctx := context.Background()

	scripts := sqliteScripts(3)
	scripts[ScriptName(1)] = sqlFile(`
		CREATE TABLE t1 (id INTEGER PRIMARY KEY);
		INSERT INTO no_such_table VALUES (1);
		UPDATE forum_schema_version SET version = 1;
	`)

	version, err := ApplyPending(ctx, conn, SQLite, scripts)
	if err == nil {
		t.Fatal("ApplyPending() should fail on a broken script")
	}
	if errors.Is(err, ErrVersionMismatch) {
		t.Errorf("ApplyPending() error = %v, want a script error", err)
	}
	if version != 0 {
		t.Errorf("ApplyPending() = %d, want 0", version)
	}
	if tableExists(t, conn, "t1") {
		t.Error("failed script should be rolled back")
	}
	if tableExists(t, conn, "t2") {
		t.Error("migration 2 should not run after a failure")
	}
}

func TestMigrations_Contiguous(t *testing.T) {
	scripts := Migrations()

	entries, err := fs.ReadDir(scripts, ".")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}

	for v := 0; v < len(entries); v++ {
		if _, err := fs.Stat(scripts, ScriptName(v)); err != nil {
			t.Errorf("missing %s: %v", ScriptName(v), err)
		}
	}
}

func TestScriptName(t *testing.T) {
	if got := ScriptName(12); got != "version_12.sql" {
		t.Errorf("ScriptName(12) = %q, want %q", got, "version_12.sql")
	}
}
