package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDerivePageURLsCollectsOnlyPageSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "hello\n")
	writeFile(t, filepath.Join(dir, "about.html"), "<p>about</p>\n")
	writeFile(t, filepath.Join(dir, "logo.png"), "not-a-page\n")

	urls, err := derivePageURLs(context.Background(), dir)
	require.NoError(t, err)
	require.True(t, urls["/"])
	require.True(t, urls["/about"])
	require.Len(t, urls, 2)
}

func TestLoadConfigDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "hello\n")

	cfg, err := loadConfig(context.Background(), buildFlags{Input: dir})
	require.NoError(t, err)
	require.Equal(t, dir, cfg.InputDir)
	require.Equal(t, "_site", filepath.Base(cfg.OutputDir))
}

func TestLoadConfigRejectsCopyPathCollidingWithPage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "about.md"), "hello\n")
	writeFile(t, filepath.Join(dir, "vitrine.config.json"), `{"copy_paths": {"favicon.ico": "/about/"}}`)

	_, err := loadConfig(context.Background(), buildFlags{
		Input:  dir,
		Config: filepath.Join(dir, "vitrine.config.json"),
	})
	require.Error(t, err)
}

func TestLoadConfigAppliesOutputAndBaseURLOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "hello\n")
	outDir := filepath.Join(dir, "custom-out")

	cfg, err := loadConfig(context.Background(), buildFlags{
		Input:   dir,
		Output:  outDir,
		BaseURL: "https://example.org",
	})
	require.NoError(t, err)
	require.Equal(t, outDir, cfg.OutputDir)
	require.Equal(t, "https://example.org", cfg.BaseURL)
}

func TestBuildCmdRunProducesOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "---\ndate: 2024-01-01T00:00:00Z\n---\nhello\n")

	cmd := &BuildCmd{buildFlags: buildFlags{Input: dir}}
	root := &CLI{}
	g := &Global{Logger: slog.Default()}

	require.NoError(t, cmd.Run(g, root))

	cfg, err := loadConfig(context.Background(), buildFlags{Input: dir})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "index.html"))
	require.NoError(t, err)
}
