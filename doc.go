// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the forum API server.

The forum is a set of boards holding topics and posts, with role-based
board visibility and role-gated administration.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... SECRET_KEY=... go run main.go

Or with flags:

	go run main.go -p 3318 -d "postgres://..." -secret "..."

Variables may also live in a .env file next to the binary.

# Startup

Before listening, the server:

  - pings the database
  - applies pending schema migrations and exits on any failure
  - grants the administrator role to ADMIN_USERNAME, if that user exists

Only one instance should migrate a database at a time.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - SECRET_KEY (-secret): Session cookie signing key

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - ADMIN_USERNAME (-admin): Bootstrap administrator
  - SEARCH_DICTIONARY (-search-dictionary): Default text search configuration (default: english)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (sessions, forum, admin)
  - router: Route definitions and guard wiring using Go 1.22+ routing
  - middleware: Guards, logging, security headers, JSON helpers
  - identity: Users, passwords and CSRF tokens
  - rbac: Board visibility, roles and admin scopes
  - content: Topics, posts and search
  - render: Markdown rendering and HTML sanitizing
  - validate: Username, password and title rules
  - models: Request/response and query result types
  - auth: Password hashing, CSRF tokens and session signing
  - db: Embedded migrations and the migration engine
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
