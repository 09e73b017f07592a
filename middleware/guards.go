// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/forum/models"
)

const (
	// SessionCookie holds the signed session token
	SessionCookie = "forum_session"
	// CSRFHeader carries the user's CSRF token on state-changing requests
	CSRFHeader = "X-CSRF-Token"
)

type contextKey struct{}

var userIDKey contextKey

// SessionVerifier turns a session cookie value into a user id.
// auth.SessionSigner implements it.
type SessionVerifier interface {
	Verify(token string) (int64, error)
}

// Authenticator is implemented by identity.Store
type Authenticator interface {
	IsAuthenticated(ctx context.Context, userID int64) (bool, error)
}

// CSRFValidator is implemented by identity.Store
type CSRFValidator interface {
	ValidateCSRF(ctx context.Context, userID int64, token string) (bool, error)
}

// ScopeResolver is implemented by rbac.Store
type ScopeResolver interface {
	AdminScopes(ctx context.Context, userID int64) (models.AdminScopes, bool, error)
}

// Guard wraps a handler with a check that may reject the request
type Guard func(http.HandlerFunc) http.HandlerFunc

// Chain applies guards so that guards[0] runs first
func Chain(h http.HandlerFunc, guards ...Guard) http.HandlerFunc {
	for i := len(guards) - 1; i >= 0; i-- {
		h = guards[i](h)
	}
	return h
}

// UserID returns the id RequireLogin stored in the request context
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID stores a user id the way RequireLogin does
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequireLogin rejects requests without a valid session cookie naming an
// existing user with 401.
func RequireLogin(sessions SessionVerifier, users Authenticator) Guard {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				ErrorResponse(w, http.StatusUnauthorized, "login required")
				return
			}

			userID, err := sessions.Verify(cookie.Value)
			if err != nil {
				ErrorResponse(w, http.StatusUnauthorized, "login required")
				return
			}

			ok, err := users.IsAuthenticated(r.Context(), userID)
			if err != nil {
				slog.Error("failed to check session", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "database error")
				return
			}
			if !ok {
				ErrorResponse(w, http.StatusUnauthorized, "login required")
				return
			}

			next(w, r.WithContext(WithUserID(r.Context(), userID)))
		}
	}
}

// RequireCSRF rejects requests whose X-CSRF-Token header is not the
// user's current token with 403. It must run after RequireLogin.
func RequireCSRF(tokens CSRFValidator) Guard {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				ErrorResponse(w, http.StatusForbidden, "forbidden")
				return
			}

			valid, err := tokens.ValidateCSRF(r.Context(), userID, r.Header.Get(CSRFHeader))
			if err != nil {
				slog.Error("failed to validate csrf token", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "database error")
				return
			}
			if !valid {
				ErrorResponse(w, http.StatusForbidden, "forbidden")
				return
			}

			next(w, r)
		}
	}
}

// RequireScope rejects users whose admin scopes do not satisfy need with
// 403. It must run after RequireLogin.
func RequireScope(roles ScopeResolver, need func(models.AdminScopes) bool) Guard {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				ErrorResponse(w, http.StatusForbidden, "forbidden")
				return
			}

			scopes, ok, err := roles.AdminScopes(r.Context(), userID)
			if err != nil {
				slog.Error("failed to load admin scopes", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "database error")
				return
			}
			if !ok || !need(scopes) {
				ErrorResponse(w, http.StatusForbidden, "forbidden")
				return
			}

			next(w, r)
		}
	}
}

// Scope predicates for RequireScope
func AnyScope(s models.AdminScopes) bool        { return s.Any() }
func CanCreateBoards(s models.AdminScopes) bool { return s.CanCreateBoards }
func CanCreateRoles(s models.AdminScopes) bool  { return s.CanCreateRoles }
func CanAssignRoles(s models.AdminScopes) bool  { return s.CanAssignRoles }

// SetSessionCookie stores a signed session token on the client
func SetSessionCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
