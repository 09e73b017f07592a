// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/danielhkuo/forum/models"
	"github.com/danielhkuo/forum/validate"
)

var (
	// ErrForbidden means the acting user lacks the scope for a mutation
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the board does not exist, is deleted, or is not
	// visible to the acting user
	ErrNotFound = errors.New("board not found")
	ErrInvalid  = errors.New("invalid input")
)

// accessPredicate is true for boards (aliased b) that user $1 may see:
// the board is not deleted, the user exists, and the board is either
// unrestricted or restricted to a role the user holds.
const accessPredicate = `
	NOT b.deleted
	AND EXISTS (SELECT 1 FROM users u WHERE u.id = $1)
	AND (
		NOT EXISTS (SELECT 1 FROM board_roles br WHERE br.board_id = b.id)
		OR EXISTS (
			SELECT 1
			FROM board_roles br
			JOIN user_roles ur ON ur.role_id = br.role_id
			WHERE br.board_id = b.id AND ur.user_id = $1
		)
	)`

// Store answers who may see which boards and gates board and role
// administration. Nothing is cached; every call reads current roles.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// AdminScopes ORs the capability flags of every role the user holds. The
// boolean is false when no role grants any capability.
func (s *Store) AdminScopes(ctx context.Context, userID int64) (models.AdminScopes, bool, error) {
	scopes, err := loadScopes(ctx, s.db, userID, false)
	if err != nil {
		return models.AdminScopes{}, false, err
	}
	return scopes, scopes.Any(), nil
}

func loadScopes(ctx context.Context, q sqlx.QueryerContext, userID int64, lock bool) (models.AdminScopes, error) {
	query := `
		SELECT r.can_create_boards, r.can_create_roles, r.can_assign_roles
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
	`
	if lock {
		query += ` FOR SHARE`
	}

	var roles []models.AdminScopes
	if err := sqlx.SelectContext(ctx, q, &roles, query, userID); err != nil {
		return models.AdminScopes{}, fmt.Errorf("failed to load roles: %w", err)
	}

	var scopes models.AdminScopes
	for _, r := range roles {
		scopes.CanCreateBoards = scopes.CanCreateBoards || r.CanCreateBoards
		scopes.CanCreateRoles = scopes.CanCreateRoles || r.CanCreateRoles
		scopes.CanAssignRoles = scopes.CanAssignRoles || r.CanAssignRoles
	}
	return scopes, nil
}

// requireScope re-reads the actor's roles inside tx, holding them until
// commit, and fails with ErrForbidden unless need accepts them.
func requireScope(ctx context.Context, tx *sqlx.Tx, actorID int64, need func(models.AdminScopes) bool) error {
	scopes, err := loadScopes(ctx, tx, actorID, true)
	if err != nil {
		return err
	}
	if !need(scopes) {
		return ErrForbidden
	}
	return nil
}

func canCreateBoards(s models.AdminScopes) bool { return s.CanCreateBoards }
func canCreateRoles(s models.AdminScopes) bool  { return s.CanCreateRoles }
func canAssignRoles(s models.AdminScopes) bool  { return s.CanAssignRoles }

// AccessibleBoards returns the ids of every board the user may see, in id
// order. Unknown users see nothing.
func (s *Store) AccessibleBoards(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := s.db.SelectContext(ctx, &ids, `
		SELECT b.id FROM boards b WHERE `+accessPredicate+`
		ORDER BY b.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible boards: %w", err)
	}
	return ids, nil
}

// CanAccessBoard is AccessibleBoards for a single board
func (s *Store) CanAccessBoard(ctx context.Context, userID, boardID int64) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, `
		SELECT EXISTS (SELECT 1 FROM boards b WHERE b.id = $2 AND `+accessPredicate+`)
	`, userID, boardID)
	if err != nil {
		return false, fmt.Errorf("failed to check board access: %w", err)
	}
	return ok, nil
}

// Board returns a board the user may see, or ErrNotFound
func (s *Store) Board(ctx context.Context, userID, boardID int64) (models.Board, error) {
	var board models.Board
	err := s.db.GetContext(ctx, &board, `
		SELECT b.id, b.title, b.description
		FROM boards b
		WHERE b.id = $2 AND `+accessPredicate, userID, boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, ErrNotFound
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("failed to read board: %w", err)
	}
	return board, nil
}

// BoardRoleIDs lists the roles a board is restricted to. Empty means open.
func (s *Store) BoardRoleIDs(ctx context.Context, boardID int64) ([]int64, error) {
	ids := []int64{}
	err := s.db.SelectContext(ctx, &ids, `
		SELECT role_id FROM board_roles WHERE board_id = $1 ORDER BY role_id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board roles: %w", err)
	}
	return ids, nil
}

func (s *Store) Roles(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	err := s.db.SelectContext(ctx, &roles, `
		SELECT id, name, can_create_boards, can_create_roles, can_assign_roles
		FROM roles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func validBoard(req models.BoardRequest) bool {
	return validate.Name(req.Title) && validate.Description(req.Description)
}

// CreateBoard adds a board restricted to req.RoleIDs (open when empty).
// Unknown role ids are ignored.
func (s *Store) CreateBoard(ctx context.Context, actorID int64, req models.BoardRequest) (int64, error) {
	if !validBoard(req) {
		return 0, ErrInvalid
	}

	var boardID int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireScope(ctx, tx, actorID, canCreateBoards); err != nil {
			return err
		}

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO boards (title, description) VALUES ($1, $2) RETURNING id
		`, req.Title, req.Description).Scan(&boardID)
		if err != nil {
			return fmt.Errorf("failed to insert board: %w", err)
		}
		return setBoardRoles(ctx, tx, boardID, req.RoleIDs)
	})
	if err != nil {
		return 0, err
	}

	slog.Info("board created", "board_id", boardID, "actor", actorID, "restricted", len(req.RoleIDs) > 0)
	return boardID, nil
}

// EditBoard replaces a board's title, description and role restriction.
// The actor must be able to see the board.
func (s *Store) EditBoard(ctx context.Context, actorID, boardID int64, req models.BoardRequest) error {
	if !validBoard(req) {
		return ErrInvalid
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockVisibleBoard(ctx, tx, actorID, boardID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE boards SET title = $1, description = $2 WHERE id = $3
		`, req.Title, req.Description, boardID)
		if err != nil {
			return fmt.Errorf("failed to update board: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM board_roles WHERE board_id = $1`, boardID); err != nil {
			return fmt.Errorf("failed to clear board roles: %w", err)
		}
		return setBoardRoles(ctx, tx, boardID, req.RoleIDs)
	})
}

// DeleteBoard hides a board. Its topics and posts are kept.
func (s *Store) DeleteBoard(ctx context.Context, actorID, boardID int64) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockVisibleBoard(ctx, tx, actorID, boardID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE boards SET deleted = TRUE WHERE id = $1`, boardID); err != nil {
			return fmt.Errorf("failed to delete board: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("board deleted", "board_id", boardID, "actor", actorID)
	return nil
}

// lockVisibleBoard checks the board scope and locks the board row, which
// must be visible to the actor.
func lockVisibleBoard(ctx context.Context, tx *sqlx.Tx, actorID, boardID int64) error {
	if err := requireScope(ctx, tx, actorID, canCreateBoards); err != nil {
		return err
	}

	var id int64
	err := tx.GetContext(ctx, &id, `
		SELECT b.id FROM boards b
		WHERE b.id = $2 AND `+accessPredicate+`
		FOR UPDATE OF b
	`, actorID, boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock board: %w", err)
	}
	return nil
}

func setBoardRoles(ctx context.Context, tx *sqlx.Tx, boardID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO board_roles (board_id, role_id)
		SELECT $1::integer, r.id FROM roles r WHERE r.id = ANY($2)
		ON CONFLICT DO NOTHING
	`, boardID, pq.Array(roleIDs))
	if err != nil {
		return fmt.Errorf("failed to set board roles: %w", err)
	}
	return nil
}

// CreateRole adds a role with the given capabilities
func (s *Store) CreateRole(ctx context.Context, actorID int64, req models.CreateRoleRequest) (int64, error) {
	if !validate.Name(req.Name) {
		return 0, ErrInvalid
	}

	var roleID int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireScope(ctx, tx, actorID, canCreateRoles); err != nil {
			return err
		}

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO roles (name, can_create_boards, can_create_roles, can_assign_roles)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, req.Name, req.CanCreateBoards, req.CanCreateRoles, req.CanAssignRoles).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("failed to insert role: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("role created", "role_id", roleID, "actor", actorID)
	return roleID, nil
}

// AssignRoles grants every listed role to every listed user. Pairs that
// already exist and ids that name nothing are skipped. It returns the
// number of grants added.
func (s *Store) AssignRoles(ctx context.Context, actorID int64, roleIDs, userIDs []int64) (int64, error) {
	var added int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireScope(ctx, tx, actorID, canAssignRoles); err != nil {
			return err
		}
		if len(roleIDs) == 0 || len(userIDs) == 0 {
			return nil
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT u.id, r.id
			FROM users u CROSS JOIN roles r
			WHERE u.id = ANY($1) AND r.id = ANY($2)
			ON CONFLICT DO NOTHING
		`, pq.Array(userIDs), pq.Array(roleIDs))
		if err != nil {
			return fmt.Errorf("failed to assign roles: %w", err)
		}
		added, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("roles assigned", "actor", actorID, "roles", roleIDs, "users", userIDs, "added", added)
	return added, nil
}

// BootstrapAdmin grants the administrator role to username. An empty name
// or a name that matches no user does nothing.
func (s *Store) BootstrapAdmin(ctx context.Context, username string) error {
	if username == "" {
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT id, $2::integer FROM users WHERE username = $1
		ON CONFLICT DO NOTHING
	`, username, models.AdminRoleID)
	if err != nil {
		return fmt.Errorf("failed to grant administrator role: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("administrator role granted", "username", username)
	}
	return nil
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
