// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/forum/auth"
	"github.com/danielhkuo/forum/identity"
	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/rbac"
	"github.com/danielhkuo/forum/validate"
)

// SessionTTL is how long a session cookie stays valid
const SessionTTL = 30 * 24 * time.Hour

// Error codes returned in ErrorResponse.Message by Register and Login
const (
	CodePasswordsDontMatch = "passwords_dont_match"
	CodeInvalidUsername    = "invalid_username"
	CodeInvalidPassword    = "invalid_password"
	CodeUsernameTaken      = "username_taken"
	CodeInvalidCredentials = "invalid_credentials"
)

type SessionHandler struct {
	users    *identity.Store
	roles    *rbac.Store
	sessions *auth.SessionSigner
}

func NewSessionHandler(users *identity.Store, roles *rbac.Store, sessions *auth.SessionSigner) *SessionHandler {
	return &SessionHandler{users: users, roles: roles, sessions: sessions}
}

// Register handles POST /register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Password != req.ConfirmPassword {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodePasswordsDontMatch)
		return
	}
	if !validate.Username(req.Username) {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeInvalidUsername)
		return
	}
	if !validate.Password(req.Password) {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeInvalidPassword)
		return
	}

	created, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Error("failed to register user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !created {
		middleware.ErrorResponse(w, http.StatusConflict, CodeUsernameTaken)
		return
	}

	slog.Info("user registered", "username", req.Username)
	h.startSession(w, r, req.Username, req.Password, http.StatusCreated)
}

// Login handles POST /login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.startSession(w, r, req.Username, req.Password, http.StatusOK)
}

func (h *SessionHandler) startSession(w http.ResponseWriter, r *http.Request, username, password string, status int) {
	userID, ok, err := h.users.Login(r.Context(), username, password)
	if err != nil {
		slog.Error("failed to log in", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, CodeInvalidCredentials)
		return
	}

	value, err := h.sessions.Sign(userID)
	if err != nil {
		slog.Error("failed to sign session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	middleware.SetSessionCookie(w, value, SessionTTL)

	resp, err := h.describe(r.Context(), userID)
	if err != nil {
		slog.Error("failed to describe session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, status, resp)
}

// Logout handles POST /logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.Logout(r.Context(), userID); err != nil {
		slog.Error("failed to log out", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /session
func (h *SessionHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	resp, err := h.describe(r.Context(), userID)
	if err != nil {
		slog.Error("failed to describe session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// describe gathers what a client needs to render pages for the user
func (h *SessionHandler) describe(ctx context.Context, userID int64) (models.SessionResponse, error) {
	resp := models.SessionResponse{UserID: userID}

	var err error
	if resp.Username, _, err = h.users.Username(ctx, userID); err != nil {
		return resp, err
	}
	if resp.CSRFToken, _, err = h.users.CSRFToken(ctx, userID); err != nil {
		return resp, err
	}

	scopes, isAdmin, err := h.roles.AdminScopes(ctx, userID)
	if err != nil {
		return resp, err
	}
	if isAdmin {
		resp.AdminScopes = &scopes
	}

	if resp.AccessibleBoards, err = h.roles.AccessibleBoards(ctx, userID); err != nil {
		return resp, err
	}
	return resp, nil
}
