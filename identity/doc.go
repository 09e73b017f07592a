// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity stores user accounts and their login state.

# Accounts

	store := identity.NewStore(db)
	created, err := store.Register(ctx, "alice", "correct horse battery")

Register returns false when the username is taken. Validation of the
username and password belongs to the caller (see package validate).

An account whose password hash is NULL is locked: it exists, owns its
posts and roles, but can never log in.

# Sessions

Login verifies the password and, on success, stores a fresh CSRF token
on the user row. Each user has exactly one token, so logging in again
from another device invalidates the previous device's token.

	userID, ok, err := store.Login(ctx, "alice", password)
	ok, err = store.ValidateCSRF(ctx, userID, r.Header.Get("X-CSRF-Token"))
	err = store.Logout(ctx, userID)

The user id itself travels in a signed session cookie (package auth);
IsAuthenticated only checks that the id still names a user.
*/
package identity
