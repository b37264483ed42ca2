package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

func TestRenderMergesSiteAndPageData(t *testing.T) {
	set, err := NewSet(context.Background(), Funcs{}, value.Map(map[string]value.Value{
		"site_title": value.String("My Site"),
	}), map[string]string{
		"post.html": `{{.site_title}}: {{.title}} -- {{.content}}`,
	})
	require.NoError(t, err)

	p := page.Page{
		URL:     "/foo/",
		Content: []byte("body"),
		Data: value.Map(map[string]value.Value{
			"layout": value.String("post.html"),
			"title":  value.String("Foo"),
		}),
	}

	out, err := set.Render(p)
	require.NoError(t, err)
	require.Equal(t, "My Site: Foo -- body", string(out.Content))
}

func TestRenderWithoutLayoutIsNoop(t *testing.T) {
	set, err := NewSet(context.Background(), Funcs{}, value.Null(), nil)
	require.NoError(t, err)

	p := page.Page{Content: []byte("body"), Data: value.Null()}
	out, err := set.Render(p)
	require.NoError(t, err)
	require.Equal(t, "body", string(out.Content))
}
