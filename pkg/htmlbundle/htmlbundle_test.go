package htmlbundle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/page"
)

func TestBundleRewritesAnchorsBetweenPages(t *testing.T) {
	pages := []page.Page{
		{InputPath: "/src/a.md", URL: "/a/", Content: []byte(`<a href="/src/b.md">b</a>`)},
		{InputPath: "/src/b.md", URL: "/b/", Content: []byte(`<a href="/src/a.md">a</a>`)},
	}

	rewritten, assets, err := Bundle("https://example.com", pages, nil, nil, nil)
	require.NoError(t, err)
	require.Empty(t, assets)
	require.Contains(t, string(rewritten[0].Content), `href="https://example.com/b/"`)
	require.Contains(t, string(rewritten[1].Content), `href="https://example.com/a/"`)
}

func TestBundleRewritesImageReference(t *testing.T) {
	pages := []page.Page{
		{InputPath: "/src/a.md", URL: "/a/", Content: []byte(`<img src="/img/photo.jpg" width="200" height="100">`)},
	}
	images := []page.Image{
		// InputPath is the real on-disk location (elsewhere under
		// input_dir); SourcePath is the literal src= text pages use to
		// reference it, which is what the rewrite pass matches against.
		{InputPath: "/project/assets/photo.jpg", SourcePath: "/img/photo.jpg", URL: "/image.jpg", Width: 200, Height: 100},
	}

	rewritten, assets, err := Bundle("https://example.com", pages, images, nil, nil)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, "https://example.com/image.jpg", assets[0].URL)
	require.Equal(t, "/project/assets/photo.jpg", assets[0].InputPath)
	require.Contains(t, string(rewritten[0].Content), `src="https://example.com/image.jpg"`)
	require.Contains(t, string(rewritten[0].Content), `width="200"`)
}

func TestBundleLeavesUnresolvedReferencesIntact(t *testing.T) {
	pages := []page.Page{
		{InputPath: "/src/a.md", URL: "/a/", Content: []byte(`<a href="https://elsewhere.example/">ext</a>`)},
	}
	rewritten, _, err := Bundle("https://example.com", pages, nil, nil, nil)
	require.NoError(t, err)
	require.Contains(t, string(rewritten[0].Content), `href="https://elsewhere.example/"`)
}
