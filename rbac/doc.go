// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package rbac decides which boards a user can see and who may administer
boards and roles.

# Board Visibility

A board is visible to a user when all of the following hold:

  - the board is not deleted
  - the user exists
  - the board has no board_roles rows, or one of them names a role the
    user holds

	ids, err := store.AccessibleBoards(ctx, userID)
	ok, err := store.CanAccessBoard(ctx, userID, boardID)

Results are computed on every call. Role grants take effect on the next
request.

# Admin Scopes

Each role carries three capability flags. A user's scopes are the OR of
the flags of every role they hold:

	scopes, ok, err := store.AdminScopes(ctx, userID)

ok is false when no capability is granted at all.

# Mutations

Every mutation takes the acting user's id and re-reads that user's roles
inside its own transaction, so a scope revoked between the HTTP guard and
the write still blocks the write:

	CreateBoard  can_create_boards
	EditBoard    can_create_boards, board visible to the actor
	DeleteBoard  can_create_boards, board visible to the actor
	CreateRole   can_create_roles
	AssignRoles  can_assign_roles

Missing scopes return ErrForbidden. Boards the actor cannot see return
ErrNotFound. DeleteBoard only sets the deleted flag.

# Bootstrap

At startup the configured administrator username receives role 1:

	err := store.BootstrapAdmin(ctx, cfg.AdminUsername)
*/
package rbac
