// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the named records shared by the stores and the
HTTP layer.

# Query Records

Every listing query scans into its own record type instead of a row tuple:

  - BoardSummary: boards overview (counts, latest post time)
  - TopicSummary: topics of a board, titled by their first post
  - Post: posts of a topic, with Owned relative to the requesting user
  - SearchHit: full-text search results

# Scopes

AdminScopes aggregates the three role capabilities:

	scopes.CanCreateBoards  // create, edit and delete boards
	scopes.CanCreateRoles   // create roles
	scopes.CanAssignRoles   // grant roles to users

A user whose roles grant none of them is not an administrator.

# Request and Response Types

JSON bodies of the HTTP adapter, e.g. RegisterRequest, PostRequest,
SessionResponse and BoardPage. ErrorResponse is the uniform error body.
*/
package models
