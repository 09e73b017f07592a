// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the forum API.

# Handler Types

Each handler is a struct holding the stores it needs:

  - SessionHandler: registration, login, logout and the session view
  - ForumHandler: boards, topics, posts and search
  - AdminHandler: board and role administration

	users := identity.NewStore(db)
	roles := rbac.NewStore(db)
	posts := content.NewStore(db, roles, render.NewMarkdown())
	forum := handlers.NewForumHandler(posts, roles, cfg.SearchDictionary)

Handlers assume the guards from package middleware already ran:
everything except Register and Login reads the user id with
middleware.UserID, and every POST except Register and Login sits behind
RequireCSRF. The router wires this up.

# Sessions

	POST /register → Register (400 passwords_dont_match, invalid_username,
	                 invalid_password; 409 username_taken)
	POST /login    → Login (401 invalid_credentials)
	POST /logout   → Logout
	GET  /session  → Session (username, csrf_token, admin_scopes, accessible_boards)

Register and Login set the forum_session cookie and return the same body
as GET /session. Clients send csrf_token back in the X-CSRF-Token header.

# Forum

	GET  /boards                                → ListBoards
	GET  /boards/{board}                        → GetBoard
	POST /boards/{board}/topics                 → CreateTopic
	GET  /boards/{board}/topics/{topic}         → GetTopic
	POST /boards/{board}/topics/{topic}/posts   → CreatePost
	POST /posts/{post}/edit                     → EditPost
	POST /posts/{post}/delete                   → DeletePost
	GET  /search?q=...&dict=...                 → Search

Missing, hidden and foreign rows all answer 404. Validation failures
answer 400.

# Administration

	GET  /admin               → Overview (roles and users)
	POST /admin/boards        → CreateBoard
	POST /boards/{board}/edit → EditBoard
	POST /boards/{board}/delete → DeleteBoard
	POST /admin/roles         → CreateRole
	POST /admin/assign-roles  → AssignRoles

The stores re-check scopes inside their transactions, so a 403 can come
from the store even after the router's scope guard passed.
*/
package handlers
