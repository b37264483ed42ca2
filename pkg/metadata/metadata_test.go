package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractYAMLFrontMatter(t *testing.T) {
	content := []byte("---\nurl: /foo/baz\n---\nbaz")
	v, rest, err := Extract("/tmp/does-not-exist.md", content)
	require.NoError(t, err)
	require.Equal(t, []byte("baz"), rest)
	got, ok := v.Get("url")
	require.True(t, ok)
	require.Equal(t, "/foo/baz", got.String())
}

func TestExtractTOMLFrontMatter(t *testing.T) {
	content := []byte("+++\ntitle = \"Hi\"\n+++\nbody")
	v, rest, err := Extract("/tmp/does-not-exist.md", content)
	require.NoError(t, err)
	require.Equal(t, []byte("body"), rest)
	got, ok := v.Get("title")
	require.True(t, ok)
	require.Equal(t, "Hi", got.String())
}

func TestExtractNoDelimiterPassesThrough(t *testing.T) {
	content := []byte("just a page, no front matter")
	v, rest, err := Extract("/tmp/does-not-exist.md", content)
	require.NoError(t, err)
	require.True(t, v.IsNull())
	require.Equal(t, content, rest)
}

func TestExtractMissingClosingFenceErrors(t *testing.T) {
	content := []byte("---\nurl: /foo\nno closing fence")
	_, _, err := Extract("/tmp/does-not-exist.md", content)
	require.Error(t, err)
}
