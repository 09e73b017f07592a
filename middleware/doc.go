// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware, request guards and helper
functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /boards", middleware.WithLogging(handler))

Each request gets an id (taken from X-Request-ID or a new UUID), echoed
in the response header. Start (method, path, remote) and completion
(status, duration_ms) are logged with that id.

# Security Headers

	server := http.Server{
		Handler: middleware.SecurityHeaders(mux),
	}

Sets a Content-Security-Policy that allows no scripts, plus nosniff,
frame and referrer headers.

# Guards

State-changing endpoints compose guards in a fixed order:

	h := middleware.Chain(handler,
		middleware.RequireLogin(signer, users),   // 401
		middleware.RequireCSRF(users),            // 403
		middleware.RequireScope(roles, middleware.CanCreateBoards), // 403
	)

RequireLogin verifies the forum_session cookie and that its user still
exists, then stores the user id in the request context:

	userID, _ := middleware.UserID(r.Context())

RequireCSRF compares the X-CSRF-Token header with the user's current
token. RequireScope re-reads the user's admin scopes. Store failures
answer 500 and never let the request through.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.PostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used in request logs.
*/
package middleware
