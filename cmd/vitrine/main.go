// Command vitrine builds and previews a site from the pipeline defined in
// vitrine/pkg/pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"vitrine/pkg/actor"
	"vitrine/pkg/config"
	"vitrine/pkg/pipeline"
	"vitrine/pkg/walker"
)

// Set at build time with: -ldflags "-X main.version=1.0.0".
var version = "dev"

// CLI is the root command, mirroring inful-docbuilder's cmd/docbuilder
// CLI/cmd:"" struct shape.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable debug logging (overridden by LOG_LEVEL)"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Run the pipeline once"`
	Serve ServeCmd `cmd:"" help:"Build, then watch and rebuild while serving output_dir over HTTP"`
}

// Global is passed to every subcommand's Run, following
// inful-docbuilder/cmd/docbuilder's convention.
type Global struct {
	Logger *slog.Logger
}

// AfterApply sets up slog once, after flags are parsed. LOG_LEVEL, when
// set, takes precedence over --verbose: it is the ambient override every
// vitrine invocation respects regardless of which subcommand runs.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("parsing LOG_LEVEL: %w", err)
		}
		level = lvl
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// buildFlags is the flag set spec.md §6 gives `build`, embedded into
// `serve` (which adds only --port) the way inful-docbuilder's subcommands
// each own their own flag struct rather than sharing root-level ones.
type buildFlags struct {
	Config  string `help:"Path to a vitrine.config.* file (default: discover in the working directory)"`
	Input   string `name:"input" help:"Root of the source tree" default:"."`
	Output  string `name:"output" help:"Site output root (overrides output_dir from config)"`
	BaseURL string `name:"base-url" help:"Prepended to every generated URL (overrides base_url from config)"`
}

// BuildCmd implements the 'build' subcommand.
type BuildCmd struct {
	buildFlags
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ctx := context.Background()
	cfg, err := loadConfig(ctx, b.buildFlags)
	if err != nil {
		return err
	}
	start := time.Now()
	stats, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	g.Logger.Info("build completed",
		"elapsed", time.Since(start),
		"pages", stats.Pages, "images", stats.Images,
		"scripts", stats.Scripts, "styles", stats.Styles,
		"feeds", stats.Feeds, "sitemap", stats.Sitemap,
		"output", cfg.OutputDir)
	return nil
}

// ServeCmd implements the 'serve' subcommand: an initial build, a watcher
// that rebuilds on source changes, and a local preview server. Per
// spec.md §6, a change to the config file itself restarts the whole
// build-server rather than just triggering a rebuild.
type ServeCmd struct {
	buildFlags
	Port int `name:"port" help:"Port to serve output_dir on." default:"8000"`
}

func (s *ServeCmd) Run(g *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for {
		restart, err := s.runOnce(ctx, g)
		if err != nil {
			return err
		}
		if !restart {
			return nil
		}
		g.Logger.Info("config changed, restarting build-server")
	}
}

// runOnce loads the config, builds, watches, and serves until either ctx
// is cancelled (returns restart=false) or the config file changes
// (returns restart=true so Run loops back to reload it).
func (s *ServeCmd) runOnce(ctx context.Context, g *Global) (restart bool, err error) {
	sessionCtx, cancelSession := context.WithCancel(ctx)
	defer cancelSession()

	cfg, configPath, err := loadConfigWithPath(sessionCtx, s.buildFlags)
	if err != nil {
		return false, err
	}

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		start := time.Now()
		stats, err := pipeline.Run(sessionCtx, cfg)
		if err != nil {
			g.Logger.Error("rebuild failed", "error", err)
			return
		}
		g.Logger.Info("rebuilt", "elapsed", time.Since(start), "pages", stats.Pages)
	}
	rebuild()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()
	if err := watchRecursive(watcher, cfg.InputDir); err != nil {
		return false, fmt.Errorf("watching %s: %w", cfg.InputDir, err)
	}
	if cfg.LayoutDir != "" && cfg.LayoutDir != cfg.InputDir {
		if err := watchRecursive(watcher, cfg.LayoutDir); err != nil {
			return false, fmt.Errorf("watching %s: %w", cfg.LayoutDir, err)
		}
	}
	if configPath != "" {
		if err := watcher.Add(filepath.Dir(configPath)); err != nil {
			return false, fmt.Errorf("watching %s: %w", configPath, err)
		}
	}

	reload := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if configPath != "" && filepath.Clean(event.Name) == filepath.Clean(configPath) {
					select {
					case reload <- struct{}{}:
					default:
					}
					continue
				}
				if outputOrIgnoredPath(event.Name, cfg) {
					continue
				}
				g.Logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
				rebuild()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				g.Logger.Error("watcher error", "error", err)
			}
		}
	}()

	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: http.FileServer(http.Dir(cfg.OutputDir)),
	}
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
		}
	}()
	g.Logger.Info("serving", "addr", addr, "dir", cfg.OutputDir)

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		return false, err
	case <-reload:
		restart = true
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return false, err
	}
	return restart, nil
}

// watchRecursive adds dir and every subdirectory to w, following
// astrophena-site's approach of registering each directory individually
// since fsnotify has no recursive watch of its own.
func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}

// outputOrIgnoredPath filters out change events the watcher would
// otherwise rebuild in response to pointlessly: writes to the output
// directory itself (a previous rebuild) and editor swap/backup files.
func outputOrIgnoredPath(path string, cfg *config.Config) bool {
	if outDir, err := filepath.Abs(cfg.OutputDir); err == nil {
		if rel, err := filepath.Rel(outDir, path); err == nil && rel != ".." && rel[0] != '.' {
			return true
		}
	}
	base := filepath.Base(path)
	return base == ".DS_Store" || base[len(base)-1] == '~'
}

// loadConfig is loadConfigWithPath without the discovered path, for
// callers (build) that have no use for it.
func loadConfig(ctx context.Context, flags buildFlags) (*config.Config, error) {
	cfg, _, err := loadConfigWithPath(ctx, flags)
	return cfg, err
}

// loadConfigWithPath resolves the config file, runs a lightweight
// pre-pass walk to derive the page URLs pkg/config needs for copy_paths
// collision validation, loads the final Config, and applies the CLI's
// --output/--base-url overrides (which win over the config file's
// output_dir/base_url). --input is used as input_dir only when the config
// file leaves input_dir at its default.
func loadConfigWithPath(ctx context.Context, flags buildFlags) (*config.Config, string, error) {
	absInput, err := filepath.Abs(flags.Input)
	if err != nil {
		return nil, "", err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	path, err := config.Discover(cwd, flags.Config)
	if err != nil {
		return nil, "", err
	}

	pageURLs, err := derivePageURLs(ctx, absInput)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(path, pageURLs)
	if err != nil {
		return nil, "", err
	}

	if cfg.InputDir == "." {
		cfg.InputDir = absInput
	}
	if flags.Output != "" {
		cfg.OutputDir = flags.Output
	}
	if flags.BaseURL != "" {
		cfg.BaseURL = flags.BaseURL
	}
	return cfg, path, nil
}

// derivePageURLs walks the input tree once, classifying each entry the
// same way pipeline.Run does (pipeline.IsPageSource), to build the set of
// URLs pkg/config.Load cross-references copy_paths destinations against.
// This is a best-effort pass: it uses each entry's default derived URL and
// does not honor a front-matter "url" override, since resolving that
// would mean parsing every file's metadata before the config (which
// decides ignore_paths) has even been loaded.
func derivePageURLs(ctx context.Context, dir string) (map[string]bool, error) {
	w, err := walker.Walk(dir, walker.Options{})
	if err != nil {
		return nil, err
	}

	urls := map[string]bool{}
	var mu sync.Mutex
	collect := actor.NewInput("DeriveURLs", 1, w.OutputChan(), func(_ context.Context, e walker.Entry) error {
		if pipeline.IsPageSource(e.RelPath) {
			mu.Lock()
			urls[e.URL] = true
			mu.Unlock()
		}
		return nil
	}, nil)

	if err := (actor.Multi{&w, &collect}).Run(ctx); err != nil {
		return nil, err
	}
	return urls, nil
}

func main() {
	cli := &CLI{}
	parser := kong.Parse(cli,
		kong.Description("vitrine: a static site build pipeline."),
		kong.Vars{"version": version},
	)
	globals := &Global{Logger: slog.Default()}
	if err := parser.Run(globals, cli); err != nil {
		log.Fatal(err)
	}
}
