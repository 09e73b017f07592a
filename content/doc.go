// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package content stores topics and posts and serves the forum's read views.

# Content Tree

	boards (soft-deleted, package rbac)
	  └── topics (deleted with their last post)
	        └── posts (title, content, raw originals, author, times)

A topic is only visible while it has at least one post. CreateTopic
writes the topic and its first post in one transaction. Readers still
skip or reject post-less topics, which older data or manual edits can
leave behind.

# Writes

	topicID, err := store.CreateTopic(ctx, userID, boardID, title, body)
	postID, err := store.CreatePost(ctx, userID, boardID, topicID, title, body)
	err = store.EditPost(ctx, userID, postID, title, body)
	topicDeleted, err := store.DeletePost(ctx, userID, postID)

Titles must be 2-50 characters (54 when they start with "Re: ") without
surrounding whitespace. Content must be non-blank, at most 10000
characters, and render to non-empty HTML. Invalid input returns
ErrInvalid before anything is written.

Only the author may edit or delete a post. Someone else's post, a
missing post, and a post on a board the user cannot see all return
ErrNotFound.

# Access

Every operation asks an AccessChecker (rbac.Store in production) which
boards the user can see. Hidden boards behave exactly like missing ones.

# Search

SearchPosts matches plainto_tsquery against the raw title and content
using the caller's text search configuration, for example "english":

	hits, err := store.SearchPosts(ctx, userID, "english", "migration")

At most SearchLimit hits are returned, newest first.
*/
package content
