// Package highlight implements spec.md §4.4/§4.9's syntax-highlight plugin:
// fenced code blocks are rendered through chroma, and one or more themes'
// CSS is emitted as synthesized Style assets (syntax_highlight.themes).
//
// chroma usage (lexer lookup by language token, html.WithClasses formatter,
// style-to-stylesheet emission) is grounded on
// other_examples/f7fc9e79_danprince-sietch__builder.go's
// chromaHtml.WithClasses usage, ported from chroma v1's formatters/html to
// the pack's github.com/alecthomas/chroma/v2 (the teacher module doesn't
// depend on chroma; this is an enrichment pulled from the wider pack per
// SPEC_FULL.md's domain stack).
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Formatter renders fenced code blocks with a fixed chroma style, and can
// emit that style's stylesheet once per build (spec.md §4.9: "Style assets
// ... may be synthesized"). cssPrefix, when set, namespaces every generated
// class name so several themes' stylesheets can be loaded on the same page
// without their class names colliding (the original's
// `syntax_highlight.css_prefix`).
type Formatter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New builds a Formatter for the named chroma style (e.g. "github",
// "monokai") with no class-name prefix; an unknown name falls back to
// chroma's default style.
func New(styleName string) *Formatter {
	return NewPrefixed(styleName, "")
}

// NewPrefixed builds a Formatter the way New does, additionally namespacing
// generated class names with cssPrefix.
func NewPrefixed(styleName, cssPrefix string) *Formatter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	opts := []chromahtml.Option{chromahtml.WithClasses(true), chromahtml.TabWidth(2)}
	if cssPrefix != "" {
		opts = append(opts, chromahtml.ClassPrefix(cssPrefix))
	}
	return &Formatter{
		style:     style,
		formatter: chromahtml.New(opts...),
	}
}

// Highlight tokenizes `code` with the lexer named by `lang` (the fenced
// code block's info string) and renders it as a <pre><code> block with
// chroma's CSS-class annotations. An unrecognized language falls back to
// chroma's plaintext lexer so highlighting never fails a build.
func (f *Formatter) Highlight(lang, code string) (string, error) {
	lexer := lexers.Get(strings.TrimSpace(lang))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := f.formatter.Format(&sb, f.style, iterator); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Stylesheet renders the active chroma style as an unscoped CSS stylesheet.
// pkg/pipeline builds its synthesized Style assets from ScopedStylesheet.
func (f *Formatter) Stylesheet() (string, error) {
	var sb strings.Builder
	if err := f.formatter.WriteCSS(&sb, f.style); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ScopedStylesheet renders the active chroma style nested under selector,
// so several themes' stylesheets can coexist on one page (e.g. a
// light/dark pair switched by a wrapping class) the way the original's
// `syntax_highlight.themes[].selector` does. An empty selector is
// equivalent to Stylesheet.
func (f *Formatter) ScopedStylesheet(selector string) (string, error) {
	css, err := f.Stylesheet()
	if err != nil {
		return "", err
	}
	if selector == "" {
		return css, nil
	}
	return scopeCSS(css, selector), nil
}

// scopeCSS prefixes every ruleset's selector list with scope, so
// ".chroma .kw{...}" becomes "scope .chroma .kw{...}".
func scopeCSS(css, scope string) string {
	var out strings.Builder
	for _, rule := range strings.SplitAfter(css, "}") {
		if strings.TrimSpace(rule) == "" {
			out.WriteString(rule)
			continue
		}
		open := strings.Index(rule, "{")
		if open < 0 {
			out.WriteString(rule)
			continue
		}
		selectors := strings.Split(rule[:open], ",")
		for i, s := range selectors {
			selectors[i] = scope + " " + strings.TrimSpace(s)
		}
		out.WriteString(strings.Join(selectors, ", "))
		out.WriteString(rule[open:])
	}
	return out.String()
}
