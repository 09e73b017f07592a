// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and token primitives.

# CSRF Tokens

Synchronizer tokens are random 32-byte (256-bit) secrets:

	token, err := auth.GenerateCSRFToken()

Tokens are URL-safe base64 encoded without padding. A fresh token is
issued on every login and stored on the user row.

# Passwords

Passwords are stored as bcrypt hashes, never in plaintext:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

CheckPassword with an empty hash always fails, after spending the same
bcrypt work as a real comparison. Use it for unknown users and locked
accounts so every failed login looks the same.

# Sessions

The session cookie holds an HS256 JWT whose subject is the user id:

	signer := auth.NewSessionSigner(secret, 30*24*time.Hour)
	value, err := signer.Sign(userID)
	userID, err := signer.Verify(value)

Verify returns ErrInvalidSession for any bad, expired or foreign token.
*/
package auth
