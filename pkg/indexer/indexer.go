// Package indexer implements spec.md §5's supplemented pagination
// feature: group ordered pages into an all-pages index plus one index
// per tag, and paginate each into fixed-size index pages.
//
// Grounded on weberc2-futhorc/pkg/futhorc/indexer.go's Indexer/Index/
// Paginate, generalized from the teacher's Post-only tag extraction
// (`p.Content.Tags`) to any page.Page whose Data carries a `tags` array.
package indexer

import (
	"fmt"

	"vitrine/pkg/orderer"
	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

// index accumulates the ordered pages that belong under one tag ("" for
// the all-pages index).
type index struct {
	tag   string
	pages []orderer.Ordered
}

// Paginate groups pages (already sorted newest-first by pkg/orderer) into
// the all-pages index and one index per Data["tags"] entry, then slices
// each into pageSize-sized index pages. baseURL is the site root; indices
// are rooted at baseURL for the untagged index and baseURL+"/tag/<tag>"
// for tag indices.
func Paginate(pages []orderer.Ordered, pageSize int, baseURL string) []page.Page {
	if pageSize < 1 {
		pageSize = 1
	}

	byTag := map[string]*index{"": {tag: ""}}
	for _, p := range pages {
		byTag[""].pages = append(byTag[""].pages, p)
		for _, tag := range tags(p.Page) {
			idx, ok := byTag[tag]
			if !ok {
				idx = &index{tag: tag}
				byTag[tag] = idx
			}
			idx.pages = append(idx.pages, p)
		}
	}

	var out []page.Page
	for _, idx := range byTag {
		out = append(out, idx.paginate(pageSize, baseURL)...)
	}
	return out
}

func tags(p page.Page) []string {
	v, ok := p.Data.Get("tags")
	if !ok {
		return nil
	}
	seq, ok := v.Seq()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, t := range seq {
		out = append(out, t.String())
	}
	return out
}

func (idx *index) paginate(pageSize int, baseURL string) []page.Page {
	pageCount := (len(idx.pages) + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	var out []page.Page
	for n := 0; n < pageCount; n++ {
		start := n * pageSize
		end := start + pageSize
		if end > len(idx.pages) {
			end = len(idx.pages)
		}

		out = append(out, page.Page{
			URL:  indexURL(idx.tag, baseURL, n, pageCount),
			Data: idx.pageData(n, pageCount, start, end, baseURL),
		})
	}
	return out
}

func (idx *index) pageData(n, pageCount, start, end int, baseURL string) value.Value {
	posts := make([]value.Value, 0, end-start)
	for _, p := range idx.pages[start:end] {
		posts = append(posts, postView(p))
	}

	m := map[string]value.Value{
		"tag":         value.String(idx.tag),
		"posts":       value.Seq(posts),
		"page_number": value.I64(int64(n + 1)),
		"page_count":  value.I64(int64(pageCount)),
	}
	if n > 0 {
		m["prev"] = value.String(indexURL(idx.tag, baseURL, n-1, pageCount))
	}
	if n+1 < pageCount {
		m["next"] = value.String(indexURL(idx.tag, baseURL, n+1, pageCount))
	}
	return value.Map(m)
}

func postView(p orderer.Ordered) value.Value {
	m, ok := p.Data.Map()
	if !ok {
		m = map[string]value.Value{}
	}
	out := make(map[string]value.Value, len(m)+3)
	for k, v := range m {
		out[k] = v
	}
	out["url"] = value.String(p.URL)
	out["next"] = value.String(p.Next)
	out["prev"] = value.String(p.Prev)
	return value.Map(out)
}

func indexURL(tag, baseURL string, pageIndex, pageCount int) string {
	root := baseURL
	if tag != "" {
		root = baseURL + "/tag/" + tag
	}
	if pageIndex == 0 {
		if root == "" {
			return "/"
		}
		return root + "/"
	}
	return fmt.Sprintf("%s/page/%d/", root, pageIndex+1)
}
