package indexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/orderer"
	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

func tagged(url string, tags ...string) orderer.Ordered {
	seq := make([]value.Value, len(tags))
	for i, t := range tags {
		seq[i] = value.String(t)
	}
	return orderer.Ordered{Page: page.Page{URL: url, Data: value.Map(map[string]value.Value{"tags": value.Seq(seq)})}}
}

func TestPaginateBuildsAllPagesAndTagIndices(t *testing.T) {
	pages := []orderer.Ordered{
		tagged("/a/", "go"),
		tagged("/b/", "go", "testing"),
		tagged("/c/"),
	}

	out := Paginate(pages, 10, "")

	var urls []string
	for _, p := range out {
		urls = append(urls, p.URL)
	}
	require.Contains(t, urls, "/")
	require.Contains(t, urls, "/tag/go/")
	require.Contains(t, urls, "/tag/testing/")
}

func TestPaginateSplitsAtPageSize(t *testing.T) {
	pages := []orderer.Ordered{tagged("/a/"), tagged("/b/"), tagged("/c/")}
	out := Paginate(pages, 2, "")

	var root []page.Page
	for _, p := range out {
		if p.URL == "/" || p.URL == "/page/2/" {
			root = append(root, p)
		}
	}
	require.Len(t, root, 2)

	for _, p := range root {
		posts, _ := p.Data.Get("posts")
		seq, _ := posts.Seq()
		if p.URL == "/" {
			require.Len(t, seq, 2)
			next, _ := p.Data.Get("next")
			require.Equal(t, "/page/2/", next.String())
		} else {
			require.Len(t, seq, 1)
			prev, _ := p.Data.Get("prev")
			require.Equal(t, "/", prev.String())
		}
	}
}
