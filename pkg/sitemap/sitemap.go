// Package sitemap implements spec.md §6's optional sitemap.xml output: the
// sitemaps.org 0.9 schema over the final Page stream.
//
// No example repo in the pack depends on a sitemap-generation library;
// this stage is built directly on encoding/xml, following the
// struct-tag-driven XML construction style used for Atom/JSON feed
// encoding elsewhere in the pack (other_examples'
// WaylonWalker-markata-go feed builder). See DESIGN.md for the stdlib
// justification.
package sitemap

import (
	"encoding/xml"
	"time"

	"vitrine/pkg/build"
	"vitrine/pkg/config"
	"vitrine/pkg/page"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Build renders sitemap.xml for every page whose URL has cfg.URLPrefix as
// a prefix (an empty prefix matches everything). Build is a no-op
// (returns the zero XML, false) when cfg.Enabled is false.
func Build(cfg config.SitemapConfig, pages []page.Page) (page.XML, bool, error) {
	if !cfg.Enabled {
		return page.XML{}, false, nil
	}

	set := urlset{Xmlns: xmlns}
	for _, p := range pages {
		if cfg.URLPrefix != "" && !hasPrefix(p.URL, cfg.URLPrefix) {
			continue
		}
		set.URLs = append(set.URLs, urlEntry{
			Loc:        p.URL,
			LastMod:    lastMod(p),
			ChangeFreq: cfg.ChangeFreq,
			Priority:   cfg.Priority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return page.XML{}, false, build.Wrap(build.Config, "sitemap", err)
	}

	url := cfg.URL
	if url == "" {
		url = "/sitemap.xml"
	}
	content := append([]byte(xml.Header), out...)
	return page.XML{URL: url, Content: content}, true, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// lastMod reads a page's front-matter date the same way pkg/feed and
// pkg/orderer do, formatted per the W3C datetime profile sitemaps.org
// requires. A page without a parseable date omits <lastmod> entirely.
func lastMod(p page.Page) string {
	v, ok := p.Data.Get("date")
	if !ok {
		return ""
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
