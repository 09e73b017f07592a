// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/forum/content"
	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/rbac"
)

// pathID parses a positive integer path parameter
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// currentUser returns the user id set by RequireLogin. Handlers behind
// that guard always have one.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "login required")
	}
	return userID, ok
}

// storeError maps store errors onto responses. Hidden and missing rows
// both answer 404.
func storeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, rbac.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
	case errors.Is(err, content.ErrInvalid), errors.Is(err, rbac.ErrInvalid):
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, rbac.ErrForbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
