package sitemap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/config"
	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

func TestBuildDisabledIsNoop(t *testing.T) {
	_, ok, err := Build(config.SitemapConfig{Enabled: false}, []page.Page{{URL: "/a/"}})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBuildIncludesAllPagesByDefault(t *testing.T) {
	pages := []page.Page{{URL: "https://example.com/a/"}, {URL: "https://example.com/b/"}}
	xml, ok, err := Build(config.SitemapConfig{Enabled: true}, pages)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/sitemap.xml", xml.URL)
	body := string(xml.Content)
	require.True(t, strings.Contains(body, "https://example.com/a/"))
	require.True(t, strings.Contains(body, "https://example.com/b/"))
}

func TestBuildIncludesLastModFromPageDate(t *testing.T) {
	pages := []page.Page{
		{URL: "https://example.com/a/", Data: value.Map(map[string]value.Value{
			"date": value.String("2024-03-01T00:00:00Z"),
		})},
		{URL: "https://example.com/b/"},
	}
	xml, _, err := Build(config.SitemapConfig{Enabled: true}, pages)
	require.NoError(t, err)
	body := string(xml.Content)
	require.True(t, strings.Contains(body, "<lastmod>2024-03-01T00:00:00Z</lastmod>"))
	require.Equal(t, 1, strings.Count(body, "<lastmod>"))
}

func TestBuildFiltersByURLPrefix(t *testing.T) {
	pages := []page.Page{
		{URL: "https://example.com/blog/a/"},
		{URL: "https://example.com/about/"},
	}
	xml, _, err := Build(config.SitemapConfig{Enabled: true, URLPrefix: "https://example.com/blog/"}, pages)
	require.NoError(t, err)
	body := string(xml.Content)
	require.True(t, strings.Contains(body, "/blog/a/"))
	require.False(t, strings.Contains(body, "/about/"))
}
