// Package build implements the error taxonomy from spec.md §7: a fixed set
// of error kinds, each carrying context frames (source path, URL, template
// name) so they surface coherently at the top-level build result.
package build

import "fmt"

// Kind is one of the fixed error kinds from spec.md §7.
type Kind string

const (
	Io                 Kind = "io"
	ParseFrontMatter   Kind = "parse_front_matter"
	ParseMarkdown      Kind = "parse_markdown"
	RenderLayout       Kind = "render_layout"
	BundleCss          Kind = "bundle_css"
	BundleJs           Kind = "bundle_js"
	MinifyCss          Kind = "minify_css"
	MinifyJs           Kind = "minify_js"
	MinifyHtml         Kind = "minify_html"
	TranspileTypeScript Kind = "transpile_typescript"
	CompileScss        Kind = "compile_scss"
	ExtractAssets      Kind = "extract_assets"
	RewriteUrls        Kind = "rewrite_urls"
	ScriptHost         Kind = "script_host"
	Config             Kind = "config"
)

// Error is a build.Error carrying the context frames spec.md §7 requires.
// Callers identify the kind with errors.As, not string matching.
type Error struct {
	Kind     Kind
	Path     string // source file path, if applicable
	URL      string // URL, if applicable
	Template string // template name, if applicable
	Err      error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.URL != "" {
		msg += fmt.Sprintf(" (url=%s)", e.URL)
	}
	if e.Template != "" {
		msg += fmt.Sprintf(" (template=%s)", e.Template)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error, for the common case of a kind plus an underlying
// cause and a source path.
func Wrap(kind Kind, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

// WrapURL is like Wrap but attaches a URL frame instead of a path.
func WrapURL(kind Kind, u string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, URL: u, Err: err}
}

// WrapTemplate is like Wrap but attaches a template-name frame.
func WrapTemplate(kind Kind, template string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Template: template, Err: err}
}
