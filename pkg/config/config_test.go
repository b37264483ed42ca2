package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadJSONCDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// trailing comma and comments are allowed, it's JSONC
		"base_url": "https://example.com",
		"copy_paths": {"favicon.ico": "/favicon.ico"},
	}`), 0o644))

	cfg, err := Load(path, map[string]bool{"/index.html": true})
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.BaseURL)
	require.Equal(t, "_site", cfg.OutputDir)
	require.Equal(t, "en", cfg.DefaultLang)
	require.Equal(t, "/favicon.ico", cfg.CopyPaths["favicon.ico"])
}

func TestLoadRejectsCopyPathCollision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("copy_paths:\n  robots.txt: /about/\n"), 0o644))

	_, err := Load(path, map[string]bool{"/about/": true})
	require.Error(t, err)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.config.toml")
	require.NoError(t, os.WriteFile(path, []byte("base_url = \"https://example.com\"\ndefault_lang = \"fr\"\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "fr", cfg.DefaultLang)
}

func TestLoadSitemapAcceptsNumericPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sitemap": {"priority": 0.8, "changefreq": "daily"}}`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.True(t, cfg.Sitemap.Enabled)
	require.Equal(t, "0.8", cfg.Sitemap.Priority)
	require.Equal(t, "daily", cfg.Sitemap.ChangeFreq)
}

func TestLoadSitemapAcceptsNumericPriorityFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sitemap:\n  priority: 0.5\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "0.5", cfg.Sitemap.Priority)
}

func TestDiscoverNoCandidatesIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	found, err := Discover(dir, "")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestUnrecognizedEngineIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitrine.config.lua")
	require.NoError(t, os.WriteFile(path, []byte("return {}"), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
}
