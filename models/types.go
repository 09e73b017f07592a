package models

import "time"

// Distinguished role granted to the bootstrap administrator
const AdminRoleID = 1

// Domain types

// AdminScopes is the OR of the capability flags of every role a user holds.
type AdminScopes struct {
	CanCreateBoards bool `json:"can_create_boards" db:"can_create_boards"`
	CanCreateRoles  bool `json:"can_create_roles" db:"can_create_roles"`
	CanAssignRoles  bool `json:"can_assign_roles" db:"can_assign_roles"`
}

// Any reports whether at least one capability is granted
func (s AdminScopes) Any() bool {
	return s.CanCreateBoards || s.CanCreateRoles || s.CanAssignRoles
}

type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	AdminScopes
}

type UserSummary struct {
	ID              int64      `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	CreationTime    time.Time  `json:"creation_time" db:"creation_time"`
	LatestLoginTime *time.Time `json:"latest_login_time,omitempty" db:"latest_login_time"`
	Locked          bool       `json:"locked" db:"locked"`
}

type Board struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
}

// Query result records

type BoardSummary struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	TopicCount     int64      `json:"topic_count" db:"topic_count"`
	PostCount      int64      `json:"post_count" db:"post_count"`
	LatestPostTime *time.Time `json:"latest_post_time,omitempty" db:"latest_post_time"`
}

// TopicSummary is one row of a board's topic list. Title and Author come
// from the topic's first post.
type TopicSummary struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Author       string    `json:"author" db:"author"`
	Sticky       bool      `json:"sticky" db:"sticky"`
	PostCount    int64     `json:"post_count" db:"post_count"`
	LastPostTime time.Time `json:"last_post_time" db:"last_post_time"`
}

type Post struct {
	ID              int64      `json:"id" db:"id"`
	TopicID         int64      `json:"topic_id" db:"topic_id"`
	AuthorID        int64      `json:"author_id" db:"author_user_id"`
	Author          string     `json:"author" db:"author"`
	Title           string     `json:"title" db:"title"`
	TitleOriginal   string     `json:"title_original" db:"title_original"`
	Content         string     `json:"content" db:"content"`
	ContentOriginal string     `json:"content_original" db:"content_original"`
	CreationTime    time.Time  `json:"creation_time" db:"creation_time"`
	EditTime        *time.Time `json:"edit_time,omitempty" db:"edit_time"`
	// Owned is relative to the requesting user
	Owned bool `json:"owned" db:"owned"`
}

type TopicView struct {
	ID         int64  `json:"id"`
	BoardID    int64  `json:"board_id"`
	BoardTitle string `json:"board_title"`
	Title      string `json:"title"`
	Posts      []Post `json:"posts"`
}

type SearchHit struct {
	PostID       int64     `json:"post_id" db:"post_id"`
	TopicID      int64     `json:"topic_id" db:"topic_id"`
	BoardID      int64     `json:"board_id" db:"board_id"`
	BoardTitle   string    `json:"board_title" db:"board_title"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	Author       string    `json:"author" db:"author"`
	CreationTime time.Time `json:"creation_time" db:"creation_time"`
}

// Request types

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Used for new topics, replies and edits
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type BoardRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RoleIDs     []int64 `json:"role_ids"`
}

type CreateRoleRequest struct {
	Name string `json:"name"`
	AdminScopes
}

type AssignRolesRequest struct {
	RoleIDs []int64 `json:"role_ids"`
	UserIDs []int64 `json:"user_ids"`
}

// Response types

type SessionResponse struct {
	UserID           int64        `json:"user_id"`
	Username         string       `json:"username"`
	CSRFToken        string       `json:"csrf_token"`
	AdminScopes      *AdminScopes `json:"admin_scopes,omitempty"`
	AccessibleBoards []int64      `json:"accessible_boards"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

type AssignRolesResponse struct {
	Added int64 `json:"added"`
}

type DeletePostResponse struct {
	TopicDeleted bool `json:"topic_deleted"`
}

type BoardPage struct {
	Board  Board          `json:"board"`
	Topics []TopicSummary `json:"topics"`
	// Only filled in for users who can edit boards
	RoleIDs []int64 `json:"role_ids,omitempty"`
	Roles   []Role  `json:"roles,omitempty"`
}

type AdminPage struct {
	Roles []Role        `json:"roles"`
	Users []UserSummary `json:"users"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Posts []SearchHit `json:"posts"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
