package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkHonorsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	write("visible.md", "visible")
	write("_foo.md", "underscore")
	write("hidden-config.md", "ignored via config")
	write(".gitignore", "hidden-git.md\n")
	write("hidden-git.md", "ignored via gitignore")
	write("sub/page.md", "nested")

	w, err := Walk(root, Options{IgnorePaths: []string{"hidden-config.md"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	var rels []string
	for entry := range w.OutputChan() {
		rels = append(rels, entry.RelPath)
	}
	require.NoError(t, <-runErr)

	sort.Strings(rels)
	require.Equal(t, []string{"sub/page.md", "visible.md"}, rels)
}

func TestDeriveURL(t *testing.T) {
	cases := []struct {
		rel, wantURL, wantLang string
	}{
		{"index.md", "/", "en"},
		{"foo.md", "/foo", "en"},
		{"foo/index.md", "/foo/", "en"},
		{"foo/bar.eo.md", "/foo/bar", "eo"},
	}
	for _, c := range cases {
		url, lang := DeriveURL(c.rel, "en")
		require.Equal(t, c.wantURL, url, c.rel)
		require.Equal(t, c.wantLang, lang, c.rel)
	}
}
