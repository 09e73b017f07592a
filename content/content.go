// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/render"
	"github.com/danielhkuo/forum/validate"
)

var (
	// ErrNotFound covers missing rows and rows the user may not see
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

// SearchLimit caps the number of posts a search returns
const SearchLimit = 100

// IndexedDictionary is the text search configuration the posts full-text
// index is built on. Other configurations work but scan.
const IndexedDictionary = "english"

const searchDocument = "p.title_original || ' ' || p.content_original"

// pq error code for an unknown text search configuration
const undefinedObject = "42704"

// AccessChecker decides board visibility. rbac.Store implements it.
type AccessChecker interface {
	AccessibleBoards(ctx context.Context, userID int64) ([]int64, error)
	CanAccessBoard(ctx context.Context, userID, boardID int64) (bool, error)
}

// Renderer turns raw post content into safe HTML. render.Markdown
// implements it.
type Renderer interface {
	Render(raw string) string
}

// Store owns topics and posts.
type Store struct {
	db       *sqlx.DB
	access   AccessChecker
	renderer Renderer
}

func NewStore(db *sqlx.DB, access AccessChecker, renderer Renderer) *Store {
	return &Store{db: db, access: access, renderer: renderer}
}

// postText is a validated title and content in raw and display form
type postText struct {
	title           string
	titleOriginal   string
	content         string
	contentOriginal string
}

func (s *Store) prepare(title, content string) (postText, error) {
	if !validate.Title(title) || !validate.Content(content) {
		return postText{}, ErrInvalid
	}

	rendered := s.renderer.Render(content)
	if strings.TrimSpace(rendered) == "" {
		return postText{}, ErrInvalid
	}

	return postText{
		title:           render.Title(title),
		titleOriginal:   title,
		content:         rendered,
		contentOriginal: content,
	}, nil
}

func (s *Store) checkBoard(ctx context.Context, userID, boardID int64) error {
	ok, err := s.access.CanAccessBoard(ctx, userID, boardID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// CreateTopic starts a topic on a board with its first post. The topic
// and post are written together, so a failed post leaves no topic.
func (s *Store) CreateTopic(ctx context.Context, userID, boardID int64, title, content string) (int64, error) {
	text, err := s.prepare(title, content)
	if err != nil {
		return 0, err
	}
	if err := s.checkBoard(ctx, userID, boardID); err != nil {
		return 0, err
	}

	var topicID int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `
			SELECT id FROM boards WHERE id = $1 AND NOT deleted FOR SHARE
		`, boardID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock board: %w", err)
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO topics (board_id) VALUES ($1) RETURNING id
		`, boardID).Scan(&topicID)
		if err != nil {
			return fmt.Errorf("failed to insert topic: %w", err)
		}

		_, err = insertPost(ctx, tx, topicID, userID, text)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("topic created", "topic_id", topicID, "board_id", boardID, "user_id", userID)
	return topicID, nil
}

// CreatePost replies to a topic. The topic must belong to boardID, still
// have posts, and sit on a board the user can see.
func (s *Store) CreatePost(ctx context.Context, userID, boardID, topicID int64, title, content string) (int64, error) {
	text, err := s.prepare(title, content)
	if err != nil {
		return 0, err
	}

	var postID int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		// Holds off a concurrent delete of the topic's last post.
		var found int64
		err := tx.GetContext(ctx, &found, `
			SELECT t.id
			FROM topics t
			WHERE t.id = $1
			  AND t.board_id = $2
			  AND EXISTS (SELECT 1 FROM posts p WHERE p.topic_id = t.id)
			FOR SHARE OF t
		`, topicID, boardID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock topic: %w", err)
		}

		if err := s.checkBoard(ctx, userID, boardID); err != nil {
			return err
		}

		postID, err = insertPost(ctx, tx, topicID, userID, text)
		return err
	})
	if err != nil {
		return 0, err
	}
	return postID, nil
}

func insertPost(ctx context.Context, tx *sqlx.Tx, topicID, userID int64, text postText) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO posts (topic_id, author_user_id, title, title_original, content, content_original)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, topicID, userID, text.title, text.titleOriginal, text.content, text.contentOriginal).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	return id, nil
}

// EditPost replaces the title and content of a post the user wrote and
// stamps its edit time. Posts on boards the user can no longer see are
// treated as missing.
func (s *Store) EditPost(ctx context.Context, userID, postID int64, title, content string) error {
	text, err := s.prepare(title, content)
	if err != nil {
		return err
	}

	boards, err := s.access.AccessibleBoards(ctx, userID)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = $1, title_original = $2, content = $3, content_original = $4, edit_time = NOW()
		WHERE id = $5
		  AND author_user_id = $6
		  AND topic_id IN (SELECT t.id FROM topics t WHERE t.board_id = ANY($7))
	`, text.title, text.titleOriginal, text.content, text.contentOriginal, postID, userID, pq.Array(boards))
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post the user wrote. When it was the topic's last
// post the topic goes too, and the returned bool is true.
//
// The topic row is locked before the post is deleted, so two deletes of
// a topic's last two posts run one after the other: the second sees zero
// remaining posts and removes the topic exactly once.
func (s *Store) DeletePost(ctx context.Context, userID, postID int64) (bool, error) {
	var topicDeleted bool
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var post struct {
			TopicID int64 `db:"topic_id"`
			BoardID int64 `db:"board_id"`
		}
		err := tx.GetContext(ctx, &post, `
			SELECT p.topic_id, t.board_id
			FROM posts p
			JOIN topics t ON t.id = p.topic_id
			WHERE p.id = $1 AND p.author_user_id = $2
		`, postID, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up post: %w", err)
		}

		if err := s.checkBoard(ctx, userID, post.BoardID); err != nil {
			return err
		}

		var locked int64
		err = tx.GetContext(ctx, &locked, `SELECT id FROM topics WHERE id = $1 FOR UPDATE`, post.TopicID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock topic: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM posts WHERE id = $1 AND author_user_id = $2
		`, postID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			// deleted by a concurrent request while we waited for the lock
			return ErrNotFound
		}

		var remaining int64
		err = tx.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM posts WHERE topic_id = $1`, post.TopicID)
		if err != nil {
			return fmt.Errorf("failed to count posts: %w", err)
		}
		if remaining > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, post.TopicID); err != nil {
			return fmt.Errorf("failed to delete topic: %w", err)
		}
		topicDeleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	slog.Info("post deleted", "post_id", postID, "user_id", userID, "topic_deleted", topicDeleted)
	return topicDeleted, nil
}

// BoardsOverview summarizes every board the user can see, in id order.
// Topics without posts are not counted.
func (s *Store) BoardsOverview(ctx context.Context, userID int64) ([]models.BoardSummary, error) {
	boards, err := s.access.AccessibleBoards(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := []models.BoardSummary{}
	err = s.db.SelectContext(ctx, &summaries, `
		SELECT b.id, b.title, b.description,
		       COUNT(DISTINCT p.topic_id) AS topic_count,
		       COUNT(p.id) AS post_count,
		       MAX(p.creation_time) AS latest_post_time
		FROM boards b
		LEFT JOIN topics t ON t.board_id = b.id
		LEFT JOIN posts p ON p.topic_id = t.id
		WHERE b.id = ANY($1)
		GROUP BY b.id
		ORDER BY b.id
	`, pq.Array(boards))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize boards: %w", err)
	}
	return summaries, nil
}

// TopicsOfBoard lists a board's topics, most recently active first.
// Topics without posts are skipped.
func (s *Store) TopicsOfBoard(ctx context.Context, userID, boardID int64) ([]models.TopicSummary, error) {
	if err := s.checkBoard(ctx, userID, boardID); err != nil {
		return nil, err
	}

	topics := []models.TopicSummary{}
	err := s.db.SelectContext(ctx, &topics, `
		SELECT t.id, fp.title, u.username AS author, t.sticky,
		       stats.post_count, stats.last_post_time
		FROM topics t
		JOIN LATERAL (
			SELECT COUNT(*) AS post_count, MAX(p.creation_time) AS last_post_time
			FROM posts p
			WHERE p.topic_id = t.id
		) stats ON stats.post_count > 0
		JOIN LATERAL (
			SELECT p.title, p.author_user_id
			FROM posts p
			WHERE p.topic_id = t.id
			ORDER BY p.creation_time, p.id
			LIMIT 1
		) fp ON TRUE
		JOIN users u ON u.id = fp.author_user_id
		WHERE t.board_id = $1
		ORDER BY stats.last_post_time DESC, t.id DESC
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// PostsOfTopic returns a topic on boardID with its posts, oldest first.
// Each post's Owned field is set for the user's own posts.
func (s *Store) PostsOfTopic(ctx context.Context, userID, boardID, topicID int64) (models.TopicView, error) {
	if err := s.checkBoard(ctx, userID, boardID); err != nil {
		return models.TopicView{}, err
	}

	var view models.TopicView
	err := s.readTx(ctx, func(tx *sqlx.Tx) error {
		var header struct {
			BoardTitle string `db:"board_title"`
		}
		err := tx.GetContext(ctx, &header, `
			SELECT b.title AS board_title
			FROM topics t
			JOIN boards b ON b.id = t.board_id
			WHERE t.id = $1 AND t.board_id = $2
		`, topicID, boardID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read topic: %w", err)
		}

		posts := []models.Post{}
		err = tx.SelectContext(ctx, &posts, `
			SELECT p.id, p.topic_id, p.author_user_id, u.username AS author,
			       p.title, p.title_original, p.content, p.content_original,
			       p.creation_time, p.edit_time,
			       p.author_user_id = $2 AS owned
			FROM posts p
			JOIN users u ON u.id = p.author_user_id
			WHERE p.topic_id = $1
			ORDER BY p.creation_time, p.id
		`, topicID, userID)
		if err != nil {
			return fmt.Errorf("failed to list posts: %w", err)
		}
		if len(posts) == 0 {
			slog.Warn("topic has no posts", "topic_id", topicID, "board_id", boardID)
			return ErrNotFound
		}

		view = models.TopicView{
			ID:         topicID,
			BoardID:    boardID,
			BoardTitle: header.BoardTitle,
			Title:      posts[0].Title,
			Posts:      posts,
		}
		return nil
	})
	if err != nil {
		return models.TopicView{}, err
	}
	return view, nil
}

// SearchPosts runs a full-text search over post titles and content on the
// boards the user can see, newest first. dictionary names a Postgres text
// search configuration; an unknown one is ErrInvalid.
func (s *Store) SearchPosts(ctx context.Context, userID int64, dictionary, query string) ([]models.SearchHit, error) {
	hits := []models.SearchHit{}
	if strings.TrimSpace(query) == "" {
		return hits, nil
	}

	boards, err := s.access.AccessibleBoards(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &hits, `
		SELECT p.id AS post_id, p.topic_id, t.board_id, b.title AS board_title,
		       p.title, p.content, u.username AS author, p.creation_time
		FROM posts p
		JOIN topics t ON t.id = p.topic_id
		JOIN boards b ON b.id = t.board_id
		JOIN users u ON u.id = p.author_user_id
		WHERE t.board_id = ANY($1)
		  AND NOT b.deleted
		  AND `+searchVector(dictionary)+`
		      @@ plainto_tsquery($2::regconfig, $3)
		ORDER BY p.creation_time DESC, p.id DESC
		LIMIT $4
	`, pq.Array(boards), dictionary, query, SearchLimit)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedObject {
		return nil, ErrInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return hits, nil
}

// searchVector is the document side of the search match. For
// IndexedDictionary it repeats the expression of idx_posts_search_english
// so the planner can use that index.
func searchVector(dictionary string) string {
	if dictionary == IndexedDictionary {
		return "to_tsvector('english', " + searchDocument + ")"
	}
	return "to_tsvector($2::regconfig, " + searchDocument + ")"
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// readTx runs fn against a single snapshot
func (s *Store) readTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(tx)
}
