// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"html"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Markdown turns user-typed markdown into HTML that is safe to display.
type Markdown struct {
	policy *bluemonday.Policy
}

func NewMarkdown() *Markdown {
	return &Markdown{policy: bluemonday.UGCPolicy()}
}

// Render converts raw markdown to HTML. Any HTML the user typed is shown
// as text, escaped exactly once; only markdown produces markup. A typed
// ">" still starts a blockquote.
func (m *Markdown) Render(raw string) string {
	// parser and renderer keep per-document state
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags,
		RenderNodeHook: escapeRawHTML,
	})

	out := markdown.ToHTML(parser.NormalizeNewlines([]byte(raw)), p, r)
	return string(m.policy.SanitizeBytes(out))
}

// escapeRawHTML prints raw HTML nodes as escaped text instead of markup.
func escapeRawHTML(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.HTMLSpan:
		mdhtml.EscapeHTML(w, n.Literal)
		return ast.GoToNext, true
	case *ast.HTMLBlock:
		io.WriteString(w, "<p>")
		mdhtml.EscapeHTML(w, []byte(strings.TrimRight(string(n.Literal), "\n")))
		io.WriteString(w, "</p>\n")
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

// Title escapes a title for display. Titles are plain text.
func Title(raw string) string {
	return html.EscapeString(raw)
}
