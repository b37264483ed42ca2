// Package asset implements spec.md §4.6: discovering `<a href>`,
// `<img src>` (with width/height), `<link rel=stylesheet href>`, and
// `<script src>` references inside rendered page HTML.
//
// Grounded on the tokenizer-walk idiom in
// other_examples/64answer-httpcloak__session-warmup.go, using
// golang.org/x/net/html — the pack's only HTML-tokenizer dependency.
package asset

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"vitrine/pkg/link"
)

// Extract walks `content` (a rendered page's HTML) and returns every
// asset/anchor reference it finds, each tagged with the Link kind that
// produced it.
func Extract(sourcePath string, content []byte) ([]link.Link, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(string(content)))
	var links []link.Link

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if l, ok := fromToken(sourcePath, token); ok {
				links = append(links, l)
			}
		}
	}
}

func fromToken(sourcePath string, token html.Token) (link.Link, bool) {
	switch token.Data {
	case "a":
		if href, ok := attr(token, "href"); ok && href != "" {
			return link.Link{Kind: link.Anchor, SourcePath: resolve(href)}, true
		}
	case "img":
		if src, ok := attr(token, "src"); ok && src != "" {
			w, _ := strconv.Atoi(attrOr(token, "width", ""))
			h, _ := strconv.Atoi(attrOr(token, "height", ""))
			return link.Link{Kind: link.Image, SourcePath: resolve(src), Width: w, Height: h}, true
		}
	case "link":
		if rel, ok := attr(token, "rel"); ok && rel == "stylesheet" {
			if href, ok := attr(token, "href"); ok && href != "" {
				return link.Link{Kind: link.Style, SourcePath: resolve(href)}, true
			}
		}
	case "script":
		if src, ok := attr(token, "src"); ok && src != "" {
			return link.Link{Kind: link.Script, SourcePath: resolve(src)}, true
		}
	}
	return link.Link{}, false
}

func attr(token html.Token, name string) (string, bool) {
	for _, a := range token.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func attrOr(token html.Token, name, def string) string {
	if v, ok := attr(token, name); ok {
		return v
	}
	return def
}

// resolve maps a source-relative reference to the extension-mapped path
// pkg/vurl's later canonicalization will resolve: ".ts" -> ".js" and
// ".scss" -> ".css" (spec.md §4.7's transform stage consumes sources,
// emits the mapped extension; asset discovery records the destination
// extension a discovered reference should resolve to once transform runs).
func resolve(ref string) string {
	switch {
	case strings.HasSuffix(ref, ".ts"):
		return ref[:len(ref)-len(".ts")] + ".js"
	case strings.HasSuffix(ref, ".scss"):
		return ref[:len(ref)-len(".scss")] + ".css"
	default:
		return ref
	}
}
