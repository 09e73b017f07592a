// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string (required)
  - SecretKey: HMAC key for session tokens (required)
  - AdminUsername: User granted the administrator role at startup (optional)
  - SearchDictionary: Postgres text search configuration (default: english)
  - EnvFile: Dotenv file read before the environment (default: .env)

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-secret            Session signing key
	-admin             Administrator username
	-search-dictionary Text search configuration
	-env               Dotenv file

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	SECRET_KEY        → -secret
	ADMIN_USERNAME    → -admin
	SEARCH_DICTIONARY → -search-dictionary

CLI flags take precedence over environment variables, and variables
already present in the environment take precedence over the dotenv file.
A missing dotenv file is not an error.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SECRET_KEY must be provided

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(sqlx.NewDb(conn, "postgres"), cfg)
*/
package cliparse
