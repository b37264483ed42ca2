package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHighlightKnownLanguage(t *testing.T) {
	f := New("github")
	out, err := f.Highlight("go", "package main\n")
	require.NoError(t, err)
	require.Contains(t, out, "<pre")
}

func TestHighlightUnknownLanguageFallsBack(t *testing.T) {
	f := New("github")
	out, err := f.Highlight("not-a-real-language", "plain text")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestStylesheetNonEmpty(t *testing.T) {
	f := New("github")
	css, err := f.Stylesheet()
	require.NoError(t, err)
	require.True(t, strings.Contains(css, "{"))
}

func TestScopedStylesheetPrefixesEverySelector(t *testing.T) {
	f := New("github")
	css, err := f.ScopedStylesheet(".theme-dark")
	require.NoError(t, err)
	for _, rule := range strings.Split(css, "}") {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		require.True(t, strings.Contains(rule, ".theme-dark "), "rule missing scope: %q", rule)
	}
}

func TestNewPrefixedNamespacesClassNames(t *testing.T) {
	f := NewPrefixed("github", "hl-")
	out, err := f.Highlight("go", "package main\n")
	require.NoError(t, err)
	require.Contains(t, out, "hl-")
}
