// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// ErrVersionMismatch is returned when a migration script does not leave the
// schema version at exactly the number it was applied as.
var ErrVersionMismatch = errors.New("migration left unexpected schema version")

//go:embed migrations/*.sql
var embedded embed.FS

const versionQuery = `SELECT version FROM forum_schema_version`

// Migrations returns the Postgres migration scripts compiled into the binary.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err) // the path is a compile-time constant
	}
	return sub
}

// ScriptName returns the file name of the script that upgrades the schema
// to the given version.
func ScriptName(version int) string {
	return fmt.Sprintf("version_%d.sql", version)
}

// CurrentVersion reports the stored schema version, or -1 when the version
// table does not exist yet.
func CurrentVersion(ctx context.Context, conn *sql.DB, dialect Dialect) (int, error) {
	var exists bool
	if err := conn.QueryRowContext(ctx, dialect.versionTableExists).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check for version table: %w", err)
	}
	if !exists {
		return -1, nil
	}

	var version int
	if err := conn.QueryRowContext(ctx, versionQuery).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// ApplyPending applies version_N.sql scripts from scripts, starting at the
// stored version + 1, until no script exists for the next version. It
// returns the final schema version.
//
// Every script must bump forum_schema_version by exactly one. When a script
// leaves any other value, whatever it did is committed as-is and
// ErrVersionMismatch is returned. No further scripts run after a failure.
//
// Not safe to run from more than one process against the same database at
// the same time.
func ApplyPending(ctx context.Context, conn *sql.DB, dialect Dialect, scripts fs.FS) (int, error) {
	version, err := CurrentVersion(ctx, conn, dialect)
	if err != nil {
		return 0, err
	}
	slog.Info("database version", "version", version, "dialect", dialect.Name)

	for {
		next := version + 1
		script, err := fs.ReadFile(scripts, ScriptName(next))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return version, fmt.Errorf("failed to read migration %d: %w", next, err)
		}

		slog.Info("migrating", "version", next, "size", humanize.Bytes(uint64(len(script))))
		got, err := applyScript(ctx, conn, string(script))
		if err != nil {
			return version, fmt.Errorf("migration %d failed: %w", next, err)
		}
		if got != next {
			slog.Error("abort: migration left unexpected schema version",
				"expected", next,
				"version", got,
			)
			return got, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, next, got)
		}
		version = got
	}

	slog.Info("database up-to-date", "version", version)
	return version, nil
}

// applyScript runs one script and reads back the version it left behind,
// committing both together.
func applyScript(ctx context.Context, conn *sql.DB, script string) (int, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return 0, err
	}

	var version int
	if err := tx.QueryRowContext(ctx, versionQuery).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit migration: %w", err)
	}
	return version, nil
}
