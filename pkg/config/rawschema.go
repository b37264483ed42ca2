package config

import (
	"encoding/json"
	"path/filepath"
	"strconv"

	"vitrine/pkg/value"
)

// rawSchema mirrors spec.md §6's abridged config schema as decoded from
// JSON/YAML/TOML. Tag sets cover all three formats since yaml.v3 and
// BurntSushi/toml both also honor struct tags of their own name.
type rawSchema struct {
	BaseURL         string            `json:"base_url" yaml:"base_url" toml:"base_url"`
	InputDir        string            `json:"input_dir" yaml:"input_dir" toml:"input_dir"`
	OutputDir       string            `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	LayoutDir       string            `json:"layout_dir" yaml:"layout_dir" toml:"layout_dir"`
	IgnorePaths     []string          `json:"ignore_paths" yaml:"ignore_paths" toml:"ignore_paths"`
	CopyPaths       map[string]string `json:"copy_paths" yaml:"copy_paths" toml:"copy_paths"`
	SiteData        map[string]any    `json:"site_data" yaml:"site_data" toml:"site_data"`
	DefaultLang     string            `json:"default_lang" yaml:"default_lang" toml:"default_lang"`
	MarkdownPlugins []string          `json:"markdown_plugins" yaml:"markdown_plugins" toml:"markdown_plugins"`
	Optimize        bool              `json:"optimize" yaml:"optimize" toml:"optimize"`
	Feeds           []rawFeed         `json:"feeds" yaml:"feeds" toml:"feeds"`
	Sitemap         json.RawMessage   `json:"sitemap" yaml:"-" toml:"-"`
	SitemapYAML     any               `json:"-" yaml:"sitemap" toml:"sitemap"`
	SyntaxHighlight rawSyntaxHighlight `json:"syntax_highlight" yaml:"syntax_highlight" toml:"syntax_highlight"`
}

type rawSyntaxHighlight struct {
	CSSPrefix string           `json:"css_prefix" yaml:"css_prefix" toml:"css_prefix"`
	Themes    []rawHighlightTheme `json:"themes" yaml:"themes" toml:"themes"`
}

type rawHighlightTheme struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	URL      string `json:"url" yaml:"url" toml:"url"`
	Selector string `json:"selector" yaml:"selector" toml:"selector"`
}

type rawFeed struct {
	URL         string   `json:"url" yaml:"url" toml:"url"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Author      []string `json:"author" yaml:"author" toml:"author"`
	Category    []string `json:"category" yaml:"category" toml:"category"`
	Contributor []string `json:"contributor" yaml:"contributor" toml:"contributor"`
	Generator   string   `json:"generator" yaml:"generator" toml:"generator"`
	Icon        string   `json:"icon" yaml:"icon" toml:"icon"`
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Logo        string   `json:"logo" yaml:"logo" toml:"logo"`
	Rights      string   `json:"rights" yaml:"rights" toml:"rights"`
	Subtitle    string   `json:"subtitle" yaml:"subtitle" toml:"subtitle"`
	Updated     string   `json:"updated" yaml:"updated" toml:"updated"`
}

func rawUnmarshalJSON(data []byte, raw *rawSchema) error {
	return json.Unmarshal(data, raw)
}

// rawFromValue decodes a rawSchema out of a script config's exported Value
// by round-tripping through JSON, since rawSchema's json tags already
// describe the shape and value.Value already guarantees JSON round-trip
// identity (spec.md §8).
func rawFromValue(v value.Value) (rawSchema, error) {
	var raw rawSchema
	data, err := json.Marshal(v)
	if err != nil {
		return raw, err
	}
	err = json.Unmarshal(data, &raw)
	return raw, err
}

func (cfg *Config) applyRaw(raw rawSchema, baseDir string) error {
	if raw.BaseURL != "" {
		cfg.BaseURL = raw.BaseURL
	}
	if raw.InputDir != "" {
		cfg.InputDir = resolveRel(baseDir, raw.InputDir)
	}
	if raw.OutputDir != "" {
		cfg.OutputDir = resolveRel(baseDir, raw.OutputDir)
	}
	if raw.LayoutDir != "" {
		cfg.LayoutDir = resolveRel(baseDir, raw.LayoutDir)
	}
	cfg.IgnorePaths = append(cfg.IgnorePaths, raw.IgnorePaths...)
	for k, v := range raw.CopyPaths {
		cfg.CopyPaths[k] = v
	}
	if raw.SiteData != nil {
		cfg.SiteData = value.Merge(cfg.SiteData, value.FromGo(raw.SiteData))
	}
	if raw.DefaultLang != "" {
		cfg.DefaultLang = raw.DefaultLang
	}
	cfg.MarkdownPlugins = append(cfg.MarkdownPlugins, raw.MarkdownPlugins...)
	cfg.Optimize = cfg.Optimize || raw.Optimize

	for _, f := range raw.Feeds {
		cfg.Feeds = append(cfg.Feeds, FeedConfig{
			URL:         f.URL,
			Title:       f.Title,
			Author:      f.Author,
			Category:    f.Category,
			Contributor: f.Contributor,
			Generator:   f.Generator,
			Icon:        f.Icon,
			ID:          f.ID,
			Logo:        f.Logo,
			Rights:      f.Rights,
			Subtitle:    f.Subtitle,
			Updated:     f.Updated,
		})
	}

	sitemapRaw := raw.SitemapYAML
	if sitemapRaw == nil && len(raw.Sitemap) > 0 {
		var v any
		if err := json.Unmarshal(raw.Sitemap, &v); err != nil {
			return err
		}
		sitemapRaw = v
	}
	applySitemap(cfg, sitemapRaw)

	if raw.SyntaxHighlight.CSSPrefix != "" {
		cfg.SyntaxHighlight.CSSPrefix = raw.SyntaxHighlight.CSSPrefix
	}
	for _, t := range raw.SyntaxHighlight.Themes {
		cfg.SyntaxHighlight.Themes = append(cfg.SyntaxHighlight.Themes, SyntaxHighlightTheme{
			Name:     t.Name,
			URL:      t.URL,
			Selector: t.Selector,
		})
	}

	return nil
}

func applySitemap(cfg *Config, raw any) {
	switch t := raw.(type) {
	case bool:
		cfg.Sitemap.Enabled = t
	case map[string]any:
		cfg.Sitemap.Enabled = true
		if v, ok := t["changefreq"].(string); ok {
			cfg.Sitemap.ChangeFreq = v
		}
		if v, ok := priorityString(t["priority"]); ok {
			cfg.Sitemap.Priority = v
		}
		if v, ok := t["url_prefix"].(string); ok {
			cfg.Sitemap.URLPrefix = v
		}
		if v, ok := t["url"].(string); ok {
			cfg.Sitemap.URL = v
		}
	}
}

// priorityString accepts sitemap.priority written the natural way for a
// sitemaps.org priority value (a bare number, e.g. `priority: 0.8`) as well
// as a quoted string, since JSON/YAML/TOML decoders hand back a float64 (or
// an integer type) for an unquoted number rather than a string.
func priorityString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func resolveRel(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
