// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/forum/content"
	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/rbac"
)

type ForumHandler struct {
	posts      *content.Store
	roles      *rbac.Store
	dictionary string
}

// NewForumHandler creates the board, topic and post handlers. dictionary
// is the text search configuration used when a search names none.
func NewForumHandler(posts *content.Store, roles *rbac.Store, dictionary string) *ForumHandler {
	return &ForumHandler{posts: posts, roles: roles, dictionary: dictionary}
}

// ListBoards handles GET /boards
func (h *ForumHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	boards, err := h.posts.BoardsOverview(r.Context(), userID)
	if err != nil {
		storeError(w, err, "list boards")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, boards)
}

// GetBoard handles GET /boards/{board}
func (h *ForumHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(r, "board")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	board, err := h.roles.Board(r.Context(), userID, boardID)
	if err != nil {
		storeError(w, err, "read board")
		return
	}

	topics, err := h.posts.TopicsOfBoard(r.Context(), userID, boardID)
	if err != nil {
		storeError(w, err, "list topics")
		return
	}
	page := models.BoardPage{Board: board, Topics: topics}

	// Board editors also get the role restriction for the edit form
	scopes, _, err := h.roles.AdminScopes(r.Context(), userID)
	if err != nil {
		storeError(w, err, "load admin scopes")
		return
	}
	if scopes.CanCreateBoards {
		if page.RoleIDs, err = h.roles.BoardRoleIDs(r.Context(), boardID); err != nil {
			storeError(w, err, "list board roles")
			return
		}
		if page.Roles, err = h.roles.Roles(r.Context()); err != nil {
			storeError(w, err, "list roles")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, page)
}

// CreateTopic handles POST /boards/{board}/topics
func (h *ForumHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, ok := pathID(r, "board")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	var req models.PostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	topicID, err := h.posts.CreateTopic(r.Context(), userID, boardID, req.Title, req.Content)
	if err != nil {
		storeError(w, err, "create topic")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: topicID})
}

// GetTopic handles GET /boards/{board}/topics/{topic}
func (h *ForumHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, okBoard := pathID(r, "board")
	topicID, okTopic := pathID(r, "topic")
	if !okBoard || !okTopic {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	view, err := h.posts.PostsOfTopic(r.Context(), userID, boardID, topicID)
	if err != nil {
		storeError(w, err, "read topic")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// CreatePost handles POST /boards/{board}/topics/{topic}/posts
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	boardID, okBoard := pathID(r, "board")
	topicID, okTopic := pathID(r, "topic")
	if !okBoard || !okTopic {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	var req models.PostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	postID, err := h.posts.CreatePost(r.Context(), userID, boardID, topicID, req.Title, req.Content)
	if err != nil {
		storeError(w, err, "create post")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: postID})
}

// EditPost handles POST /posts/{post}/edit
func (h *ForumHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(r, "post")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	var req models.PostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.posts.EditPost(r.Context(), userID, postID, req.Title, req.Content); err != nil {
		storeError(w, err, "edit post")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CreatedResponse{ID: postID})
}

// DeletePost handles POST /posts/{post}/delete
func (h *ForumHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(r, "post")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
		return
	}

	topicDeleted, err := h.posts.DeletePost(r.Context(), userID, postID)
	if err != nil {
		storeError(w, err, "delete post")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DeletePostResponse{TopicDeleted: topicDeleted})
}

// Search handles GET /search?q=...&dict=...
func (h *ForumHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "q is required")
		return
	}
	dictionary := r.URL.Query().Get("dict")
	if dictionary == "" {
		dictionary = h.dictionary
	}

	hits, err := h.posts.SearchPosts(r.Context(), userID, dictionary, query)
	if err != nil {
		storeError(w, err, "search posts")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SearchResponse{Query: query, Posts: hits})
}
