package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/htmlbundle"
	"vitrine/pkg/page"
)

func TestWritePageTrailingSlashBecomesIndexHTML(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	err = w.WritePage(context.Background(), page.Page{URL: "/foo/", Content: []byte("hi")})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "foo", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "hi", string(data))
}

func TestWriteRejectsOutputPathCollision(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, w.WritePage(context.Background(), page.Page{URL: "/foo/", Content: []byte("a")}))
	err = w.WritePage(context.Background(), page.Page{URL: "/foo/", Content: []byte("b")})
	require.Error(t, err)
}

func TestWriteAssetCopiesFileBytes(t *testing.T) {
	src := filepath.Join(t.TempDir(), "image.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpgbytes"), 0o644))

	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	err = w.WriteAsset(context.Background(), htmlbundle.Asset{InputPath: src, URL: "/image.jpg", HasInput: true})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "image.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpgbytes", string(data))
}
