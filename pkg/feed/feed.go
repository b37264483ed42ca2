// Package feed implements spec.md §4.11: one Atom 1.0 feed per
// config.FeedConfig entry, built from the final Page stream.
//
// Grounded on weberc2-futhorc/pkg/futhorc/feedbuilder.go's
// github.com/gorilla/feeds usage, generalized from futhorc's hardcoded
// index/post page types to the config-driven field set and optional
// scripthost filter predicate of spec.md §6.
package feed

import (
	"context"
	"sort"
	"time"

	"github.com/gorilla/feeds"

	"vitrine/pkg/build"
	"vitrine/pkg/config"
	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

// Filter is the shape of a registered feed_filter callable, proxied
// through pkg/scripthost.Host.Proxy.
type Filter func(ctx context.Context, args ...value.Value) (value.Value, error)

// Build renders one Atom feed for cfg against pages, applying cfg's
// optional filter predicate first. pages should already carry their
// final, canonicalized URLs (i.e. run after pkg/htmlbundle).
func Build(ctx context.Context, cfg config.FeedConfig, filter Filter, pages []page.Page) (page.XML, error) {
	selected := pages
	if filter != nil {
		selected = nil
		for _, p := range pages {
			ok, err := filterMatches(ctx, filter, p)
			if err != nil {
				return page.XML{}, build.WrapURL(build.Config, cfg.URL, err)
			}
			if ok {
				selected = append(selected, p)
			}
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return pageDate(selected[i]).After(pageDate(selected[j]))
	})

	f := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: cfg.URL},
		Description: cfg.Subtitle,
		Updated:     resolveUpdated(cfg, selected),
		Id:          cfg.ID,
		Subtitle:    cfg.Subtitle,
		Copyright:   cfg.Rights,
	}
	if cfg.Icon != "" {
		f.Image = &feeds.Image{Url: cfg.Icon}
	}
	for _, name := range cfg.Author {
		f.Author = &feeds.Author{Name: name}
		break // gorilla/feeds.Feed carries a single primary author; the remaining names are not emitted
	}

	for _, p := range selected {
		f.Items = append(f.Items, buildItem(p))
	}

	atom, err := f.ToAtom()
	if err != nil {
		return page.XML{}, build.WrapURL(build.Config, cfg.URL, err)
	}

	return page.XML{URL: cfg.URL, Content: []byte(atom)}, nil
}

func buildItem(p page.Page) *feeds.Item {
	item := &feeds.Item{
		Title:   stringField(p, "title"),
		Link:    &feeds.Link{Href: p.URL},
		Id:      p.URL,
		Created: pageDate(p),
	}
	if author := stringField(p, "author"); author != "" {
		item.Author = &feeds.Author{Name: author}
	}
	if snippet := stringField(p, "snippet"); snippet != "" {
		item.Description = snippet
	} else {
		item.Description = string(p.Content)
	}
	return item
}

func stringField(p page.Page, key string) string {
	v, ok := p.Data.Get(key)
	if !ok {
		return ""
	}
	return v.String()
}

func pageDate(p page.Page) time.Time {
	v, ok := p.Data.Get("date")
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}
	}
	return t
}

// resolveUpdated implements spec.md §6's Updated fallback: an explicit
// cfg.Updated wins; otherwise the most recent selected entry's date.
func resolveUpdated(cfg config.FeedConfig, pages []page.Page) time.Time {
	if cfg.Updated != "" {
		if t, err := time.Parse(time.RFC3339, cfg.Updated); err == nil {
			return t
		}
	}
	if len(pages) == 0 {
		return time.Time{}
	}
	return pageDate(pages[0]) // pages is sorted newest-first
}

func filterMatches(ctx context.Context, filter Filter, p page.Page) (bool, error) {
	result, err := filter(ctx, pageToValue(p))
	if err != nil {
		return false, err
	}
	b, _ := result.Bool()
	return b, nil
}

func pageToValue(p page.Page) value.Value {
	merged, ok := p.Data.Map()
	if !ok {
		merged = map[string]value.Value{}
	}
	out := make(map[string]value.Value, len(merged)+2)
	for k, v := range merged {
		out[k] = v
	}
	out["url"] = value.String(p.URL)
	out["content"] = value.String(string(p.Content))
	return value.Map(out)
}
