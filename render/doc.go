// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package render is the sanitization pipeline for post text.

Raw content is parsed as markdown (gomarkdown). Markdown syntax, including
a typed ">" for blockquotes, produces markup. HTML the user typed is
written out as escaped text, so "a < b" displays as typed and "<b>" never
becomes a tag. The output then passes through a user-generated-content
HTML policy (bluemonday). Every character is escaped exactly once.

The original text is kept by callers for editing; only the rendered form
is ever displayed.
*/
package render
