package asset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/link"
)

func TestExtractFindsAllKinds(t *testing.T) {
	html := `<html><body>
		<a href="/other/">link</a>
		<img src="image.jpg" width="200" height="100">
		<link rel="stylesheet" href="style.scss">
		<script src="app.ts"></script>
	</body></html>`

	links, err := Extract("/page.html", []byte(html))
	require.NoError(t, err)
	require.Contains(t, links, link.Link{Kind: link.Anchor, SourcePath: "/other/"})
	require.Contains(t, links, link.Link{Kind: link.Image, SourcePath: "image.jpg", Width: 200, Height: 100})
	require.Contains(t, links, link.Link{Kind: link.Style, SourcePath: "style.css"})
	require.Contains(t, links, link.Link{Kind: link.Script, SourcePath: "app.js"})
}

func TestExtractIgnoresUnrelatedTags(t *testing.T) {
	links, err := Extract("/page.html", []byte(`<div class="x">no links here</div>`))
	require.NoError(t, err)
	require.Empty(t, links)
}
