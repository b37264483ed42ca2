package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunBuildsPagesAssetsAndSitemap(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "input")
	outputDir := filepath.Join(root, "output")

	writeFile(t, filepath.Join(inputDir, "index.md"), "---\ndate: 2024-01-01T00:00:00Z\n---\n# Home\n\n<img src=\"/img/a.png\">\n")
	writeFile(t, filepath.Join(inputDir, "about.md"), "---\ndate: 2024-02-01T00:00:00Z\n---\n[home](/)\n")
	writeFile(t, filepath.Join(inputDir, "img/a.png"), "fake-png-bytes")

	cfg := &config.Config{
		BaseURL:     "https://example.com",
		InputDir:    inputDir,
		OutputDir:   outputDir,
		DefaultLang: "en",
		Sitemap:     config.SitemapConfig{Enabled: true},
	}

	stats, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Greater(t, stats.Pages, 0)
	require.Equal(t, 1, stats.Images)
	require.True(t, stats.Sitemap)

	_, err = os.Stat(filepath.Join(outputDir, "index.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "about", "index.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "img", "a.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "sitemap.xml"))
	require.NoError(t, err)

	aboutContent, err := os.ReadFile(filepath.Join(outputDir, "about", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(aboutContent), "https://example.com")
}

// A page outside input_dir's root referencing a sibling asset via a path
// that doesn't start with "/" must resolve that reference against the
// page's own directory, not input_dir: the source file here only exists
// under blog/, not at the input root, so the build fails unless resolution
// is page-relative.
func TestRunResolvesPageRelativeAssetAgainstPageDirectory(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "input")
	outputDir := filepath.Join(root, "output")

	writeFile(t, filepath.Join(inputDir, "blog/post.md"), "---\ndate: 2024-01-01T00:00:00Z\n---\n<img src=\"cover.jpg\">\n")
	writeFile(t, filepath.Join(inputDir, "blog/cover.jpg"), "fake-jpg-bytes")

	cfg := &config.Config{
		BaseURL:     "https://example.com",
		InputDir:    inputDir,
		OutputDir:   outputDir,
		DefaultLang: "en",
	}

	stats, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Images)

	var found bool
	require.NoError(t, filepath.WalkDir(outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err == nil && string(data) == "fake-jpg-bytes" {
			found = true
		}
		return nil
	}))
	require.True(t, found, "expected cover.jpg's bytes to be copied into the output tree")
}

func TestRunSkipsSitemapWhenDisabled(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "input")
	outputDir := filepath.Join(root, "output")

	writeFile(t, filepath.Join(inputDir, "index.md"), "hello\n")

	cfg := &config.Config{
		BaseURL:     "https://example.com",
		InputDir:    inputDir,
		OutputDir:   outputDir,
		DefaultLang: "en",
	}

	stats, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.False(t, stats.Sitemap)

	_, err = os.Stat(filepath.Join(outputDir, "sitemap.xml"))
	require.True(t, os.IsNotExist(err))
}

func TestRunEmitsOneStylesheetPerSyntaxHighlightTheme(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "input")
	outputDir := filepath.Join(root, "output")

	writeFile(t, filepath.Join(inputDir, "index.md"), "# hi\n")

	cfg := &config.Config{
		BaseURL:     "https://example.com",
		InputDir:    inputDir,
		OutputDir:   outputDir,
		DefaultLang: "en",
		SyntaxHighlight: config.SyntaxHighlightConfig{
			CSSPrefix: "hl-",
			Themes: []config.SyntaxHighlightTheme{
				{Name: "github", URL: "/highlight/light.css", Selector: ".theme-light"},
				{Name: "monokai", URL: "/highlight/dark.css", Selector: ".theme-dark"},
			},
		},
	}

	stats, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Styles)

	light, err := os.ReadFile(filepath.Join(outputDir, "highlight", "light.css"))
	require.NoError(t, err)
	require.Contains(t, string(light), ".theme-light ")

	dark, err := os.ReadFile(filepath.Join(outputDir, "highlight", "dark.css"))
	require.NoError(t, err)
	require.Contains(t, string(dark), ".theme-dark ")
}

func TestHighlightStylesheetsEmptyWhenNoThemesConfigured(t *testing.T) {
	styles, err := highlightStylesheets(&config.Config{})
	require.NoError(t, err)
	require.Empty(t, styles)
}
