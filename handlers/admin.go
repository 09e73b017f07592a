// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/forum/identity"
	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/rbac"
)

type AdminHandler struct {
	users *identity.Store
	roles *rbac.Store
}

func NewAdminHandler(users *identity.Store, roles *rbac.Store) *AdminHandler {
	return &AdminHandler{users: users, roles: roles}
}

// Overview handles GET /admin
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.Roles(r.Context())
	if err != nil {
		storeError(w, err, "list roles")
		return
	}
	users, err := h.users.Users(r.Context())
	if err != nil {
		storeError(w, err, "list users")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.AdminPage{Roles: roles, Users: users})
}

// CreateBoard handles POST /admin/boards
func (h *AdminHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.BoardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	boardID, err := h.roles.CreateBoard(r.Context(), userID, req)
	if err != nil {
		storeError(w, err, "create board")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: boardID})
}

// EditBoard handles POST /boards/{board}/edit
func (h *AdminHandler) EditBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(r, "board")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	var req models.BoardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.roles.EditBoard(r.Context(), userID, boardID, req); err != nil {
		storeError(w, err, "edit board")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CreatedResponse{ID: boardID})
}

// DeleteBoard handles POST /boards/{board}/delete
func (h *AdminHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(r, "board")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.roles.DeleteBoard(r.Context(), userID, boardID); err != nil {
		storeError(w, err, "delete board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateRole handles POST /admin/roles
func (h *AdminHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateRoleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	roleID, err := h.roles.CreateRole(r.Context(), userID, req)
	if err != nil {
		storeError(w, err, "create role")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: roleID})
}

// AssignRoles handles POST /admin/assign-roles
func (h *AdminHandler) AssignRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.AssignRolesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	added, err := h.roles.AssignRoles(r.Context(), userID, req.RoleIDs, req.UserIDs)
	if err != nil {
		storeError(w, err, "assign roles")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.AssignRolesResponse{Added: added})
}
