// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the forum API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Sessions (public):

	POST /register - Create an account and log in
	POST /login    - Log in

Sessions (login required):

	GET  /session - Current user, CSRF token, scopes, visible boards
	POST /logout  - End the session (CSRF)

Forum (login required, POSTs also need CSRF):

	GET  /boards                              - Board overview
	GET  /boards/{board}                      - Board with topics
	POST /boards/{board}/topics               - New topic
	GET  /boards/{board}/topics/{topic}       - Topic with posts
	POST /boards/{board}/topics/{topic}/posts - Reply
	POST /posts/{post}/edit                   - Edit own post
	POST /posts/{post}/delete                 - Delete own post
	GET  /search?q=...&dict=...               - Full-text search

Administration (login, CSRF, then scope):

	GET  /admin                 - Roles and users (any scope, no CSRF)
	POST /admin/boards          - can_create_boards
	POST /boards/{board}/edit   - can_create_boards
	POST /boards/{board}/delete - can_create_boards
	POST /admin/roles           - can_create_roles
	POST /admin/assign-roles    - can_assign_roles

# Guard Order

Guards always run login, then CSRF, then scope. A request without a valid
session gets 401 before its CSRF token is looked at; a bad token gets 403
before scopes are read.

# Handler Initialization

The router builds the stores once and shares them between handlers and
guards:

	users := identity.NewStore(db)
	roles := rbac.NewStore(db)
	posts := content.NewStore(db, roles, render.NewMarkdown())
	signer := auth.NewSessionSigner(cfg.SecretKey, handlers.SessionTTL)
*/
package router
