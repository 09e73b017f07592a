// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

// Dialect holds the engine-specific SQL the migration engine needs.
type Dialect struct {
	Name               string
	versionTableExists string
}

var (
	// Postgres only looks at the first schema on the search path, so
	// separate schemas in one database migrate independently.
	Postgres = Dialect{
		Name: "postgres",
		versionTableExists: `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = current_schema()
				AND table_name = 'forum_schema_version'
			)`,
	}

	SQLite = Dialect{
		Name: "sqlite",
		versionTableExists: `
			SELECT EXISTS (
				SELECT 1 FROM sqlite_master
				WHERE type = 'table' AND name = 'forum_schema_version'
			)`,
	}
)
