package pageconv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

func TestSnippetPrefersMoreMarker(t *testing.T) {
	content := []byte("<p>intro</p><!-- more --><p>rest</p>")
	require.Equal(t, "<p>intro</p>", Snippet(content))
}

func TestSnippetFallsBackToFirstParagraph(t *testing.T) {
	content := []byte("<p>intro</p><p>rest</p>")
	require.Equal(t, "<p>intro</p>", Snippet(content))
}

func TestWithSnippetLeavesExplicitFrontMatterAlone(t *testing.T) {
	p := page.Page{
		Content: []byte("<p>body</p>"),
		Data:    value.Map(map[string]value.Value{"snippet": value.String("custom")}),
	}
	out := WithSnippet(p)
	snippet, _ := out.Data.Get("snippet")
	require.Equal(t, "custom", snippet.String())
}
