package vurl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeIdempotent(t *testing.T) {
	got, err := Normalize("https://example.com/base/", "a/../b/./c")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/base/b/c", got)

	got2, err := Normalize(got, "")
	require.NoError(t, err)
	require.Equal(t, got, got2)
}

func TestNormalizeNeverClimbsAboveRoot(t *testing.T) {
	got, err := Normalize("https://example.com/", "../../x")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/x", got)
}

func TestCanonicalPageURL(t *testing.T) {
	require.Equal(t, "/x/", CanonicalPageURL("/x/index.html"))
	require.Equal(t, "/x/", CanonicalPageURL("/x.html"))
	require.Equal(t, "/a/b/", CanonicalPageURL("/a/b/index.html"))
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, "/foo/index.html", OutputPath("/foo/"))
	require.Equal(t, "/foo/bar.html", OutputPath("/foo/bar.html"))
	require.Equal(t, "/foo/index.html", OutputPath("/foo"))
}

func TestPathPushPop(t *testing.T) {
	p := ParsePath("/a/b")
	p = p.Push("c")
	require.Equal(t, "/a/b/c", p.String())
	p = p.Pop().Pop()
	require.Equal(t, "/a", p.String())
}
