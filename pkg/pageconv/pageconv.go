// Package pageconv implements spec.md §5's supplemented snippet
// extraction: a short excerpt of a rendered page's HTML body, derived
// either from an explicit `<!-- more -->` marker or the first closing
// `</p>`.
//
// Grounded on weberc2-futhorc/pkg/futhorc/postpageconverter.go's
// `snippet` helper, generalized from `template.HTML` to the plain
// `string`/`value.Value` types the rest of vitrine uses.
package pageconv

import (
	"strings"

	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

const maxSnippetLen = 1024

// Snippet extracts an excerpt from rendered HTML content.
func Snippet(content []byte) string {
	s := string(content)
	if idx := strings.Index(s, "<!-- more -->"); idx >= 0 {
		return s[:idx]
	}
	if idx := strings.Index(s, "</p>"); idx >= 0 {
		idx += len("</p>")
		if idx > maxSnippetLen {
			idx = maxSnippetLen
		}
		return s[:idx]
	}
	return ""
}

// WithSnippet returns p with its Data["snippet"] populated from p.Content,
// leaving an existing explicit front-matter snippet untouched.
func WithSnippet(p page.Page) page.Page {
	if existing, ok := p.Data.Get("snippet"); ok && existing.String() != "" {
		return p
	}
	snippet := Snippet(p.Content)
	if snippet == "" {
		return p
	}
	m, ok := p.Data.Map()
	if !ok {
		m = map[string]value.Value{}
	}
	out := make(map[string]value.Value, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out["snippet"] = value.String(snippet)
	p.Data = value.Map(out)
	return p
}
