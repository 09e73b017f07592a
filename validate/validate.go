// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	_ "embed"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinUsernameLength = 2
	MaxUsernameLength = 20

	MinPasswordLength = 10
	// bcrypt ignores everything past 72 bytes
	MaxPasswordBytes = 72

	MinTitleLength      = 2
	MaxTitleLength      = 50
	MaxReplyTitleLength = 54
	ReplyPrefix         = "Re: "

	MaxContentLength     = 10000
	MaxDescriptionLength = 500
)

//go:embed common_passwords.txt
var commonPasswordList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordList, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}()

// Username reports whether a username may be registered: 2-20 characters
// with no leading or trailing whitespace.
func Username(username string) bool {
	return lengthBetween(username, MinUsernameLength, MaxUsernameLength) && !edgeSpace(username)
}

// Password reports whether a password is long enough and not a well-known one.
func Password(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength || len(password) > MaxPasswordBytes {
		return false
	}
	_, common := commonPasswords[strings.ToLower(password)]
	return !common
}

// Title reports whether a post title is acceptable: 2-50 characters, or up
// to 54 when it starts with the reply prefix "Re: ", with no leading or
// trailing whitespace.
func Title(title string) bool {
	limit := MaxTitleLength
	if strings.HasPrefix(title, ReplyPrefix) {
		limit = MaxReplyTitleLength
	}
	return lengthBetween(title, MinTitleLength, limit) && !edgeSpace(title)
}

// Name is the rule for board titles and role names.
func Name(name string) bool {
	return lengthBetween(name, MinTitleLength, MaxTitleLength) && !edgeSpace(name)
}

// Content reports whether post content is non-blank and within limits.
func Content(content string) bool {
	return strings.TrimSpace(content) != "" && utf8.RuneCountInString(content) <= MaxContentLength
}

func Description(description string) bool {
	return utf8.RuneCountInString(description) <= MaxDescriptionLength
}

func lengthBetween(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && n <= hi
}

func edgeSpace(s string) bool {
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}
