// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"strings"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"two characters", "ab", true},
		{"one character", "a", false},
		{"empty", "", false},
		{"exactly 50", strings.Repeat("a", 50), true},
		{"51 plain characters", strings.Repeat("a", 51), false},
		{"reply prefix 54 characters", "Re: " + strings.Repeat("a", 50), true},
		{"reply prefix 55 characters", "Re: " + strings.Repeat("a", 51), false},
		{"reply prefix lowercase is plain", "re: " + strings.Repeat("a", 50), false},
		{"leading space", " hello", false},
		{"trailing space", "hello ", false},
		{"trailing newline", "hello\n", false},
		{"inner spaces", "hello world", true},
		{"multibyte counted as characters", strings.Repeat("ä", 50), true},
		{"multibyte over limit", strings.Repeat("ä", 51), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.title); got != tt.want {
				t.Errorf("Title(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{"normal", "alice", true},
		{"two characters", "bo", true},
		{"one character", "b", false},
		{"twenty characters", strings.Repeat("x", 20), true},
		{"twenty-one characters", strings.Repeat("x", 21), false},
		{"leading space", " alice", false},
		{"trailing tab", "alice\t", false},
		{"inner space", "alice smith", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Username(tt.username); got != tt.want {
				t.Errorf("Username(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"long and uncommon", "tangerine-walrus-42", true},
		{"nine characters", "abcdefgh9", false},
		{"common", "password123", false},
		{"common different case", "QwertyUiop", false},
		{"73 bytes", strings.Repeat("z", 73), false},
		{"72 bytes", strings.Repeat("z", 72), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Password(tt.password); got != tt.want {
				t.Errorf("Password(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestContent(t *testing.T) {
	if Content("") || Content("   \n\t") {
		t.Error("blank content should be rejected")
	}
	if !Content("hello") {
		t.Error("plain content should be accepted")
	}
	if !Content(strings.Repeat("a", MaxContentLength)) {
		t.Error("content at the limit should be accepted")
	}
	if Content(strings.Repeat("a", MaxContentLength+1)) {
		t.Error("content over the limit should be rejected")
	}
}

func TestNameAndDescription(t *testing.T) {
	if !Name("General") {
		t.Error("Name(General) should be accepted")
	}
	if Name(" General") || Name("G") {
		t.Error("Name should reject edge whitespace and single characters")
	}
	if !Description("") {
		t.Error("empty description should be accepted")
	}
	if Description(strings.Repeat("d", MaxDescriptionLength+1)) {
		t.Error("description over the limit should be rejected")
	}
}
