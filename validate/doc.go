// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package validate holds the shape rules for user-submitted text. Lengths
// are counted in characters, not bytes.
package validate
