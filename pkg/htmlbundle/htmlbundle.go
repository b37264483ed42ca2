// Package htmlbundle implements spec.md §4.8: the central rendezvous stage
// that drains Page/Image/Script/Style inputs, builds the complete
// source-path -> canonical-URL map, rewrites every page's HTML references
// against that map, and emits the two downstream streams (Page, Asset).
//
// Grounded on weberc2-futhorc/pkg/futhorc/multichan.go's "drain then
// fan back out" shape (generalized by pkg/actor.Fork/Merge) and
// pkg/asset's HTML tokenizer walk, reused here for the rewrite pass.
package htmlbundle

import (
	"strings"

	"golang.org/x/net/html"

	"vitrine/pkg/build"
	"vitrine/pkg/link"
	"vitrine/pkg/page"
	"vitrine/pkg/vurl"
)

// Asset is the second of htmlbundle's two output streams: any
// non-Page entity (Image, Script, or Style) with its canonical URL
// already assigned.
type Asset struct {
	Kind      link.Kind
	InputPath string
	URL       string
	Content   []byte // empty for Image: Output copies InputPath's bytes directly
	HasInput  bool
}

// Bundle implements the full §4.8 protocol over already-drained slices (the
// draining itself is the caller's responsibility; pkg/pipeline appends
// every entity to plain slices behind a mutex in a single Collect actor
// before Bundle runs).
func Bundle(baseURL string, pages []page.Page, images []page.Image, scripts []page.Script, styles []page.Style) ([]page.Page, []Asset, error) {
	linkMap := map[string]string{} // source path -> canonical URL

	for _, p := range pages {
		canonical, err := canonicalize(baseURL, p.URL)
		if err != nil {
			return nil, nil, build.WrapURL(build.RewriteUrls, p.URL, err)
		}
		linkMap[p.InputPath] = canonical
	}
	var assets []Asset
	for _, img := range images {
		canonical, err := canonicalize(baseURL, img.URL)
		if err != nil {
			return nil, nil, build.WrapURL(build.RewriteUrls, img.URL, err)
		}
		key := img.SourcePath
		if key == "" {
			key = img.InputPath
		}
		linkMap[key] = canonical
		assets = append(assets, Asset{Kind: link.Image, InputPath: img.InputPath, URL: canonical, HasInput: true})
	}
	for _, s := range scripts {
		canonical, err := canonicalize(baseURL, s.URL)
		if err != nil {
			return nil, nil, build.WrapURL(build.RewriteUrls, s.URL, err)
		}
		key := s.SourcePath
		if key == "" {
			key = s.InputPath
		}
		if key != "" {
			linkMap[key] = canonical
		}
		assets = append(assets, Asset{Kind: link.Script, InputPath: s.InputPath, URL: canonical, Content: s.Content, HasInput: s.InputPath != ""})
	}
	for _, s := range styles {
		canonical, err := canonicalize(baseURL, s.URL)
		if err != nil {
			return nil, nil, build.WrapURL(build.RewriteUrls, s.URL, err)
		}
		key := s.SourcePath
		if key == "" {
			key = s.InputPath
		}
		if key != "" {
			linkMap[key] = canonical
		}
		assets = append(assets, Asset{Kind: link.Style, InputPath: s.InputPath, URL: canonical, Content: s.Content, HasInput: s.InputPath != ""})
	}

	rewritten := make([]page.Page, len(pages))
	for i, p := range pages {
		canonical := linkMap[p.InputPath]
		rewrittenContent, err := rewriteReferences(p.Content, linkMap)
		if err != nil {
			return nil, nil, build.WrapURL(build.RewriteUrls, p.URL, err)
		}
		p.Content = rewrittenContent
		p.URL = canonical
		rewritten[i] = p
	}

	return rewritten, assets, nil
}

func canonicalize(baseURL, u string) (string, error) {
	return vurl.Normalize(baseURL, vurl.CanonicalPageURL(u))
}

// rewriteReferences re-walks content with the same selectors pkg/asset
// uses and substitutes any attribute whose value resolves to a known
// source path. Unresolved references are left intact (spec.md §4.8).
func rewriteReferences(content []byte, linkMap map[string]string) ([]byte, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(string(content)))
	var out strings.Builder

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			token := tokenizer.Token()
			rewriteToken(&token, linkMap)
			out.WriteString(token.String())
			continue
		}
		out.Write(tokenizer.Raw())
	}
	return []byte(out.String()), nil
}

func rewriteToken(token *html.Token, linkMap map[string]string) {
	attrName := refAttr(token.Data)
	if attrName == "" {
		return
	}
	for i, a := range token.Attr {
		if a.Key != attrName {
			continue
		}
		if canonical, ok := linkMap[a.Val]; ok {
			token.Attr[i].Val = canonical
		}
	}
}

func refAttr(tag string) string {
	switch tag {
	case "a", "link":
		return "href"
	case "img", "script":
		return "src"
	default:
		return ""
	}
}
