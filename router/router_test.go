// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/forum/middleware"
	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "forum API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// Every route answers; without a session most answer 401
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"POST", "/register"},
		{"POST", "/login"},
		{"POST", "/logout"},
		{"GET", "/session"},

		{"GET", "/boards"},
		{"GET", "/boards/1"},
		{"POST", "/boards/1/topics"},
		{"GET", "/boards/1/topics/1"},
		{"POST", "/boards/1/topics/1/posts"},
		{"POST", "/posts/1/edit"},
		{"POST", "/posts/1/delete"},
		{"GET", "/search"},

		{"GET", "/admin"},
		{"POST", "/admin/boards"},
		{"POST", "/boards/1/edit"},
		{"POST", "/boards/1/delete"},
		{"POST", "/admin/roles"},
		{"POST", "/admin/assign-roles"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed || w.Code == http.StatusNotFound {
				t.Errorf("Route %s %s returned %d, expected route handler to exist", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},   // Only GET is defined
		{"DELETE", "/boards"}, // Only GET is defined
		{"GET", "/login"},     // Only POST is defined
		{"PUT", "/posts/1/edit"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

// client carries a session cookie and CSRF token between requests
type client struct {
	t      *testing.T
	mux    *http.ServeMux
	cookie *http.Cookie
	csrf   string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	headers := map[string]string{}
	if c.csrf != "" {
		headers[middleware.CSRFHeader] = c.csrf
	}
	req := testutil.MakeRequest(method, path, body, headers)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)
	return w
}

func (c *client) login(path string, body interface{}, expected int) models.SessionResponse {
	c.t.Helper()

	w := c.do("POST", path, body)
	testutil.AssertStatus(c.t, w, expected)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			c.cookie = cookie
		}
	}

	var session models.SessionResponse
	testutil.AssertJSON(c.t, w, &session)
	c.csrf = session.CSRFToken
	return session
}

func TestFullFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	bob := &client{t: t, mux: mux}
	session := bob.login("/register", models.RegisterRequest{
		Username:        "bob",
		Password:        "correct horse battery",
		ConfirmPassword: "correct horse battery",
	}, http.StatusCreated)
	if session.Username != "bob" || session.CSRFToken == "" {
		t.Fatalf("Unexpected session: %+v", session)
	}

	// Topic on a board that does not exist creates nothing
	w := bob.do("POST", "/boards/999/topics", models.PostRequest{Title: "Hello", Content: "First!"})
	testutil.AssertStatus(t, w, http.StatusNotFound)
	if n := testutil.CountRows(t, db, `SELECT COUNT(*) FROM topics`); n != 0 {
		t.Errorf("Expected no topics, got %d", n)
	}

	boardID := testutil.CreateTestBoard(t, db, "General")
	boardPath := "/boards/" + strconv.FormatInt(boardID, 10)

	w = bob.do("POST", boardPath+"/topics", models.PostRequest{Title: "Hello", Content: "First!"})
	testutil.AssertStatus(t, w, http.StatusCreated)
	var topic models.CreatedResponse
	testutil.AssertJSON(t, w, &topic)
	if n := testutil.CountRows(t, db, `SELECT COUNT(*) FROM posts WHERE topic_id = $1`, topic.ID); n != 1 {
		t.Errorf("Expected exactly one post, got %d", n)
	}

	// Without the CSRF header the same request is refused
	token := bob.csrf
	bob.csrf = ""
	w = bob.do("POST", boardPath+"/topics", models.PostRequest{Title: "Again", Content: "Second"})
	testutil.AssertStatus(t, w, http.StatusForbidden)
	bob.csrf = token

	// Logging in elsewhere replaces the token of this session
	other := &client{t: t, mux: mux}
	other.login("/login", models.LoginRequest{Username: "bob", Password: "correct horse battery"}, http.StatusOK)

	w = bob.do("POST", boardPath+"/topics", models.PostRequest{Title: "Again", Content: "Second"})
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = other.do("POST", boardPath+"/topics", models.PostRequest{Title: "Again", Content: "Second"})
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = other.do("GET", boardPath, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var page models.BoardPage
	testutil.AssertJSON(t, w, &page)
	if len(page.Topics) != 2 {
		t.Errorf("Expected 2 topics, got %+v", page.Topics)
	}

	w = other.do("POST", "/logout", nil)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// The signed cookie still names bob, but the CSRF token is gone
	w = other.do("POST", boardPath+"/topics", models.PostRequest{Title: "Late", Content: "Too late"})
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestAdminGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	adminID := testutil.CreateTestUser(t, db, "admin", "correct horse battery")
	testutil.GrantTestRole(t, db, adminID, models.AdminRoleID)
	testutil.CreateTestUser(t, db, "user", "correct horse battery")

	anonymous := &client{t: t, mux: mux}
	w := anonymous.do("POST", "/admin/boards", models.BoardRequest{Title: "General"})
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	user := &client{t: t, mux: mux}
	session := user.login("/login", models.LoginRequest{Username: "user", Password: "correct horse battery"}, http.StatusOK)
	if session.AdminScopes != nil {
		t.Errorf("Plain user should have no admin scopes, got %+v", session.AdminScopes)
	}

	w = user.do("GET", "/admin", nil)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	w = user.do("POST", "/admin/boards", models.BoardRequest{Title: "General"})
	testutil.AssertStatus(t, w, http.StatusForbidden)

	admin := &client{t: t, mux: mux}
	session = admin.login("/login", models.LoginRequest{Username: "admin", Password: "correct horse battery"}, http.StatusOK)
	if session.AdminScopes == nil || !session.AdminScopes.CanCreateBoards {
		t.Fatalf("Admin should have all scopes, got %+v", session.AdminScopes)
	}

	w = admin.do("GET", "/admin", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = admin.do("POST", "/admin/boards", models.BoardRequest{Title: "General", Description: "Anything goes"})
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = user.do("GET", "/boards", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var boards []models.BoardSummary
	testutil.AssertJSON(t, w, &boards)
	if len(boards) != 1 || boards[0].Title != "General" {
		t.Errorf("Expected the new board to be visible, got %+v", boards)
	}

	w = admin.do("GET", "/session", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}
