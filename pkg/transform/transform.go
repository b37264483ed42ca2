// Package transform implements spec.md §4.7's purely functional,
// extension-keyed stages: SCSS compile, TS/TSX transpile, JS/CSS bundling,
// and minification.
//
// esbuild usage (api.Transform for single-file transpile, api.Build with a
// virtual-filesystem resolve/load plugin for bundling) is grounded on
// other_examples/12aa3360_becomeliminal-js-rules (api.TransformOptions) and
// other_examples/bab99886_danprince-sietch (api.Build + api.Plugin with
// Setup/OnResolve/OnLoad). Minify is grounded on
// other_examples/rvflash-combine__asset.go and
// other_examples/A-Line-Services-go-cms__build.go (tdewolff/minify/v2).
package transform

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/minify/v2"
	minifycss "github.com/tdewolff/minify/v2/css"
	minifyjs "github.com/tdewolff/minify/v2/js"

	"vitrine/pkg/build"
)

// VirtualFS is an in-memory {absolute-path -> source} view filled by the
// caller, so the bundler can resolve sources that never existed on disk
// (spec.md §4.7). pkg/pipeline puts only the entry file's own source in it
// (e.g. the compiled output of a .scss file).
type VirtualFS struct {
	mu    sync.RWMutex
	files map[string]string
}

func NewVirtualFS() *VirtualFS {
	return &VirtualFS{files: map[string]string{}}
}

func (vfs *VirtualFS) Set(path, contents string) {
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	vfs.files[path] = contents
}

func (vfs *VirtualFS) Get(path string) (string, bool) {
	vfs.mu.RLock()
	defer vfs.mu.RUnlock()
	s, ok := vfs.files[path]
	return s, ok
}

// virtualPlugin intercepts resolves/loads for any path registered in vfs
// (relative imports are resolved against the importing file first),
// falling back to esbuild's normal filesystem resolution otherwise.
func virtualPlugin(vfs *VirtualFS) api.Plugin {
	return api.Plugin{
		Name: "vitrine-virtual-fs",
		Setup: func(b api.PluginBuild) {
			b.OnResolve(api.OnResolveOptions{Filter: `.*`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				p := args.Path
				if args.Importer != "" && (strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")) {
					p = filepath.Join(filepath.Dir(args.Importer), p)
				}
				if _, ok := vfs.Get(p); ok {
					return api.OnResolveResult{Path: p, Namespace: "vitrine-virtual"}, nil
				}
				return api.OnResolveResult{}, nil
			})
			b.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "vitrine-virtual"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				contents, ok := vfs.Get(args.Path)
				if !ok {
					return api.OnLoadResult{}, fmt.Errorf("vitrine: no virtual source for %q", args.Path)
				}
				loader := loaderForPath(args.Path)
				return api.OnLoadResult{Contents: &contents, Loader: loader, ResolveDir: filepath.Dir(args.Path)}, nil
			})
		},
	}
}

func loaderForPath(path string) api.Loader {
	switch {
	case strings.HasSuffix(path, ".ts"), strings.HasSuffix(path, ".tsx"):
		return api.LoaderTS
	case strings.HasSuffix(path, ".css"), strings.HasSuffix(path, ".scss"):
		return api.LoaderCSS
	default:
		return api.LoaderJS
	}
}

// TranspileTypeScript converts a single .ts/.tsx source to JS (spec.md
// §4.7: "`.ts`/`.tsx` → transpile to JS").
func TranspileTypeScript(sourcePath, source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:     loaderForPath(sourcePath),
		Format:     api.FormatESModule,
		Target:     api.ESNext,
		Sourcefile: sourcePath,
	})
	if len(result.Errors) > 0 {
		return "", build.Wrap(build.TranspileTypeScript, sourcePath, esbuildError(result.Errors))
	}
	return string(result.Code), nil
}

// BundleJS bundles `entryPath` and its transitive imports to a single JS
// file, resolving synthesized sources from vfs (spec.md §4.7: "bundle
// transitively").
func BundleJS(entryPath string, vfs *VirtualFS) (string, error) {
	result := api.Build(api.BuildOptions{
		EntryPoints: []string{entryPath},
		Bundle:      true,
		Write:       false,
		Format:      api.FormatIIFE,
		Target:      api.ESNext,
		Plugins:     []api.Plugin{virtualPlugin(vfs)},
	})
	if len(result.Errors) > 0 {
		return "", build.Wrap(build.BundleJs, entryPath, esbuildError(result.Errors))
	}
	return outputString(result.OutputFiles), nil
}

// BundleCSS bundles `entryPath`, resolving `@import` transitively, with the
// bundler's filesystem view supplied from vfs so synthesized styles (e.g.
// the syntax-highlight theme) can be `@import`ed too.
func BundleCSS(entryPath string, vfs *VirtualFS) (string, error) {
	result := api.Build(api.BuildOptions{
		EntryPoints: []string{entryPath},
		Bundle:      true,
		Write:       false,
		Plugins:     []api.Plugin{virtualPlugin(vfs)},
	})
	if len(result.Errors) > 0 {
		return "", build.Wrap(build.BundleCss, entryPath, esbuildError(result.Errors))
	}
	return outputString(result.OutputFiles), nil
}

func outputString(files []api.OutputFile) string {
	var sb strings.Builder
	for _, f := range files {
		sb.Write(f.Contents)
	}
	return sb.String()
}

func esbuildError(msgs []api.Message) error {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(m.Text)
	}
	return fmt.Errorf("%s", sb.String())
}

// minifier is shared across MinifyCSS/MinifyJS calls, per the pack's usage
// of one long-lived tdewolff/minify/v2.M instance registered with its
// per-type minifiers once.
var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", minifycss.Minify)
	m.AddFunc("application/javascript", minifyjs.Minify)
	return m
}

// MinifyCSS minifies CSS source, gated by the `optimize` config key
// (spec.md §4.7).
func MinifyCSS(sourcePath, source string) (string, error) {
	out, err := minifier.String("text/css", source)
	if err != nil {
		return "", build.Wrap(build.MinifyCss, sourcePath, err)
	}
	return out, nil
}

// MinifyJS minifies JS source, gated by the `optimize` config key.
func MinifyJS(sourcePath, source string) (string, error) {
	out, err := minifier.String("application/javascript", source)
	if err != nil {
		return "", build.Wrap(build.MinifyJs, sourcePath, err)
	}
	return out, nil
}
