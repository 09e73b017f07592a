// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/forum/auth"
	"github.com/danielhkuo/forum/cliparse"
	"github.com/danielhkuo/forum/content"
	"github.com/danielhkuo/forum/handlers"
	"github.com/danielhkuo/forum/identity"
	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/rbac"
	"github.com/danielhkuo/forum/render"
)

func NewRouter(db *sqlx.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Stores
	users := identity.NewStore(db)
	roles := rbac.NewStore(db)
	posts := content.NewStore(db, roles, render.NewMarkdown())
	signer := auth.NewSessionSigner(cfg.SecretKey, handlers.SessionTTL)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(users, roles, signer)
	forumHandler := handlers.NewForumHandler(posts, roles, cfg.SearchDictionary)
	adminHandler := handlers.NewAdminHandler(users, roles)

	// Guards, always in this order
	login := middleware.RequireLogin(signer, users)
	csrf := middleware.RequireCSRF(users)
	scope := func(need func(models.AdminScopes) bool) middleware.Guard {
		return middleware.RequireScope(roles, need)
	}

	read := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.Chain(h, login))
	}
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.Chain(h, login, csrf))
	}
	adminWrite := func(h http.HandlerFunc, need func(models.AdminScopes) bool) http.HandlerFunc {
		return middleware.WithLogging(middleware.Chain(h, login, csrf, scope(need)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /register", middleware.WithLogging(sessionHandler.Register))
	mux.HandleFunc("POST /login", middleware.WithLogging(sessionHandler.Login))
	mux.HandleFunc("POST /logout", write(sessionHandler.Logout))
	mux.HandleFunc("GET /session", read(sessionHandler.Session))

	// Boards, topics and posts
	mux.HandleFunc("GET /boards", read(forumHandler.ListBoards))
	mux.HandleFunc("GET /boards/{board}", read(forumHandler.GetBoard))
	mux.HandleFunc("POST /boards/{board}/topics", write(forumHandler.CreateTopic))
	mux.HandleFunc("GET /boards/{board}/topics/{topic}", read(forumHandler.GetTopic))
	mux.HandleFunc("POST /boards/{board}/topics/{topic}/posts", write(forumHandler.CreatePost))
	mux.HandleFunc("POST /posts/{post}/edit", write(forumHandler.EditPost))
	mux.HandleFunc("POST /posts/{post}/delete", write(forumHandler.DeletePost))
	mux.HandleFunc("GET /search", read(forumHandler.Search))

	// Administration
	mux.HandleFunc("GET /admin", middleware.WithLogging(middleware.Chain(adminHandler.Overview, login, scope(middleware.AnyScope))))
	mux.HandleFunc("POST /admin/boards", adminWrite(adminHandler.CreateBoard, middleware.CanCreateBoards))
	mux.HandleFunc("POST /boards/{board}/edit", adminWrite(adminHandler.EditBoard, middleware.CanCreateBoards))
	mux.HandleFunc("POST /boards/{board}/delete", adminWrite(adminHandler.DeleteBoard, middleware.CanCreateBoards))
	mux.HandleFunc("POST /admin/roles", adminWrite(adminHandler.CreateRole, middleware.CanCreateRoles))
	mux.HandleFunc("POST /admin/assign-roles", adminWrite(adminHandler.AssignRoles, middleware.CanAssignRoles))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("forum API v1"))
	})

	return mux
}
