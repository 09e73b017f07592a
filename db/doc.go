// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the versioned evolution of the relational schema.

# Migrations

Each schema version has one SQL script, migrations/version_N.sql, numbered
from 0 without gaps. ApplyPending brings a database up to date at startup:

	version, err := db.ApplyPending(ctx, conn, db.Postgres, db.Migrations())
	if err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

The stored version lives in the single-row forum_schema_version table. A
missing table means version -1. Every script must end by bumping that row
to its own number:

	UPDATE forum_schema_version SET version = 3;

A missing script for version N+1 means "up to date", not an error. Scripts
run once; they are not written to be re-applied.

Run migrations from one process only, before other instances start
serving. Concurrent runs against the same database are not guarded.

# Dialects

Postgres is the production dialect. SQLite (modernc.org/sqlite) is
supported by the engine itself so script sets can be exercised in-memory.

# Tables

	users 1──* user_roles *──1 roles
	boards 1──* board_roles *──1 roles
	boards 1──* topics 1──* posts *──1 users

Deleting a topic cascades to its posts. Boards are soft-deleted and never
removed once they have content.
*/
package db
