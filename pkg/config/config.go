// Package config implements the declarative/imperative config loader from
// spec.md §6: discovery of vitrine.config.{ts,js,json,toml,yaml,lua,rhai},
// per-format parsing, defaulting, and the copy_paths/page-URL collision
// validation decided in DESIGN.md's Open Question section.
//
// JSONC parsing follows weberc2-futhorc/pkg/futhorc/config.go's
// hujson.Standardize pattern; YAML and TOML follow the pack's
// gopkg.in/yaml.v3 and github.com/BurntSushi/toml usage (grounded on
// inful-docbuilder/internal/config/config.go and
// jmylchreest-tvarr/cmd/tvarr/cmd/config.go respectively). JS/TS config
// files are evaluated through pkg/scripthost.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"vitrine/pkg/build"
	"vitrine/pkg/scripthost"
	"vitrine/pkg/value"
	"vitrine/pkg/vurl"
)

// candidateNames is the discovery order from spec.md §6. lua/rhai are
// recognized so discovery can name them in an error rather than silently
// skipping past a file the user clearly intended as config.
var candidateNames = []string{
	"vitrine.config.ts",
	"vitrine.config.js",
	"vitrine.config.json",
	"vitrine.config.toml",
	"vitrine.config.yaml",
	"vitrine.config.lua",
	"vitrine.config.rhai",
}

// FeedConfig is one entry of the `feeds[]` config key (spec.md §6).
type FeedConfig struct {
	URL         string
	Title       string
	Author      []string
	Category    []string
	Contributor []string
	Generator   string
	Icon        string
	ID          string
	Logo        string
	Rights      string
	Subtitle    string
	Updated     string
	Filter      scripthost.FunctionID
	HasFilter   bool
}

// SitemapConfig corresponds to the `sitemap` config key's object form.
type SitemapConfig struct {
	Enabled    bool
	ChangeFreq string
	Priority   string
	URLPrefix  string
	URL        string
}

// SyntaxHighlightTheme is one entry of `syntax_highlight.themes`: a named
// chroma style emitted as its own stylesheet, scoped under Selector so
// several themes' rules can coexist in the same page (e.g. a light/dark
// pair toggled by a wrapping class).
type SyntaxHighlightTheme struct {
	Name     string
	URL      string
	Selector string
}

// SyntaxHighlightConfig corresponds to the `syntax_highlight` config key.
// CSSPrefix namespaces the generated class names (chroma's ClassPrefix);
// with an empty Themes list no highlight stylesheet is generated.
type SyntaxHighlightConfig struct {
	CSSPrefix string
	Themes    []SyntaxHighlightTheme
}

// Config is the fully resolved, defaulted build configuration.
type Config struct {
	BaseURL         string
	InputDir        string
	OutputDir       string
	LayoutDir       string
	IgnorePaths     []string
	CopyPaths       map[string]string // source path -> output URL
	SiteData        value.Value
	DefaultLang     string
	MarkdownPlugins []string
	Feeds           []FeedConfig
	Sitemap         SitemapConfig
	SyntaxHighlight SyntaxHighlightConfig
	Optimize        bool

	// Host is non-nil only when the config file was a JS/TS module; its
	// goroutine must be started (Host.Run) before any layout_filters,
	// layout_functions, layout_tests, markdown_render, or feed filter
	// callable is invoked, and Close()d once the build finishes.
	Host *scripthost.Host

	LayoutFilters   map[string]scripthost.FunctionID
	LayoutFunctions map[string]scripthost.FunctionID
	LayoutTests     map[string]scripthost.FunctionID
	MarkdownRender  *scripthost.FunctionID
}

// Discover finds the config file to load, per spec.md §6: an explicit path
// wins; otherwise the first existing vitrine.config.* candidate in `dir`.
// Absence of any candidate is not an error: discover returns "" and a nil
// error, and Load applies pure defaults.
func Discover(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", build.Wrap(build.Config, explicit, err)
		}
		return explicit, nil
	}
	for _, name := range candidateNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads and parses the config at `path` (as returned by Discover, or
// "" for defaults-only), applies the spec.md §6 defaults, and validates
// copy_paths against the supplied set of generated-page URLs.
func Load(path string, pageURLs map[string]bool) (*Config, error) {
	cfg := &Config{
		InputDir:        ".",
		OutputDir:       "_site",
		DefaultLang:     "en",
		CopyPaths:       map[string]string{},
		SiteData:        value.Map(nil),
		LayoutFilters:   map[string]scripthost.FunctionID{},
		LayoutFunctions: map[string]scripthost.FunctionID{},
		LayoutTests:     map[string]scripthost.FunctionID{},
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()

	if err := cfg.validateCopyPaths(pageURLs); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.InputDir == "" {
		cfg.InputDir = "."
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "_site"
	}
	if cfg.LayoutDir == "" {
		if _, err := os.Stat(filepath.Join(cfg.InputDir, "_layouts")); err == nil {
			cfg.LayoutDir = filepath.Join(cfg.InputDir, "_layouts")
		}
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "en"
	}
}

// validateCopyPaths implements the Open Question decision recorded in
// DESIGN.md: a copy_paths destination URL colliding with a generated page's
// URL, or writing to the same output file as one (e.g. "/about/" against a
// page at "/about"), is rejected at config-validate time rather than
// resolved by stage-order precedence.
func (cfg *Config) validateCopyPaths(pageURLs map[string]bool) error {
	pageOutputs := make(map[string]bool, len(pageURLs))
	for u := range pageURLs {
		pageOutputs[vurl.OutputPath(u)] = true
	}
	for src, dst := range cfg.CopyPaths {
		dstOutput := dst
		if strings.HasSuffix(dst, "/") {
			dstOutput += "index.html"
		}
		if pageURLs[dst] || pageOutputs[dstOutput] {
			return build.WrapURL(build.Config, dst,
				fmt.Errorf("copy_paths entry %q collides with a generated page URL", src))
		}
	}
	return nil
}

func (cfg *Config) loadFile(path string) error {
	switch ext := filepath.Ext(path); ext {
	case ".json":
		return cfg.loadJSONC(path)
	case ".yaml", ".yml":
		return cfg.loadYAML(path)
	case ".toml":
		return cfg.loadTOML(path)
	case ".js", ".ts":
		return cfg.loadScript(path)
	case ".lua", ".rhai":
		return build.Wrap(build.Config, path,
			fmt.Errorf("%s config files are recognized by discovery but no %s engine is wired", ext, ext))
	default:
		return build.Wrap(build.Config, path, fmt.Errorf("unrecognized config file extension %q", ext))
	}
}

func (cfg *Config) loadJSONC(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return build.Wrap(build.Config, path, err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return build.Wrap(build.Config, path, err)
	}
	var raw rawSchema
	if err := rawUnmarshalJSON(std, &raw); err != nil {
		return build.Wrap(build.Config, path, err)
	}
	return cfg.applyRaw(raw, filepath.Dir(path))
}

func (cfg *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return build.Wrap(build.Config, path, err)
	}
	var raw rawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return build.Wrap(build.Config, path, err)
	}
	return cfg.applyRaw(raw, filepath.Dir(path))
}

func (cfg *Config) loadTOML(path string) error {
	var raw rawSchema
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return build.Wrap(build.Config, path, err)
	}
	return cfg.applyRaw(raw, filepath.Dir(path))
}

func (cfg *Config) loadScript(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return build.Wrap(build.Config, path, err)
	}
	host, configValue, err := scripthost.New(string(source), filepath.Base(path))
	if err != nil {
		return build.Wrap(build.ScriptHost, path, err)
	}
	cfg.Host = host

	raw, err := rawFromValue(configValue)
	if err != nil {
		return build.Wrap(build.Config, path, err)
	}
	if err := cfg.applyRaw(raw, filepath.Dir(path)); err != nil {
		return err
	}

	ids, err := host.Callables(len(cfg.Feeds))
	if err != nil {
		return build.Wrap(build.ScriptHost, path, err)
	}
	cfg.registerCallables(ids)
	return nil
}

func (cfg *Config) registerCallables(ids []scripthost.FunctionID) {
	for _, id := range ids {
		switch id.Kind {
		case "layout_filter":
			cfg.LayoutFilters[id.Name] = id
		case "layout_function":
			cfg.LayoutFunctions[id.Name] = id
		case "layout_test":
			cfg.LayoutTests[id.Name] = id
		case "markdown_render":
			render := id
			cfg.MarkdownRender = &render
		case "feed_filter":
			if id.Index < len(cfg.Feeds) {
				cfg.Feeds[id.Index].Filter = id
				cfg.Feeds[id.Index].HasFilter = true
			}
		}
	}
}
