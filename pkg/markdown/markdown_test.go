package markdown

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBasicEmphasis(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	cfg, err := NewConfig(base, nil, nil)
	require.NoError(t, err)

	page, _ := url.Parse("https://example.com/foo/")
	out, err := Render(cfg, page, []byte("*Italic*"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<em>Italic</em>")
}

func TestRenderRewritesRelativeMarkdownLinks(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	cfg, err := NewConfig(base, nil, nil)
	require.NoError(t, err)

	page, _ := url.Parse("https://example.com/a/")
	out, err := Render(cfg, page, []byte("[other](./other.md)"))
	require.NoError(t, err)
	require.Contains(t, string(out), `href="https://example.com/a/other"`)
}

func TestUnknownPluginIsFatal(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	_, err := NewConfig(base, []string{"not-a-plugin"}, nil)
	require.Error(t, err)
}

func TestTablesPluginEnablesTableExtension(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	cfg, err := NewConfig(base, []string{"tables"}, nil)
	require.NoError(t, err)

	page, _ := url.Parse("https://example.com/")
	out, err := Render(cfg, page, []byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}
