// Package layout implements spec.md §4.5: a polymorphic template engine
// dispatched by file extension, with user-supplied filters/functions/tests
// exposed to templates as FuncMap entries backed by pkg/scripthost proxies.
//
// Grounded on weberc2-futhorc/pkg/futhorc/theme.go (html/template +
// FuncMap construction) and other_examples/astrophena-site's dual
// html/template (auto-escaped page wrappers) / text/template (page
// content, deliberately unescaped) split — generalized here into two
// Engine implementations selected by the layout file's extension.
package layout

import (
	"bytes"
	"context"
	htemplate "html/template"
	"strings"
	ttemplate "text/template"

	"vitrine/pkg/build"
	"vitrine/pkg/value"
)

// Engine renders one kind of layout file.
type Engine interface {
	// AddLayouts parses the named layout sources (name -> source) into the
	// engine's template set.
	AddLayouts(sources map[string]string) error
	// Render executes the named layout against a context built by merging
	// site-data and page-data (spec.md §4.5).
	Render(name string, ctx value.Value) ([]byte, error)
}

// Funcs is the set of user-extensions available to every Engine:
// layout_filters/functions/tests from spec.md §6, each backed by a
// pkg/scripthost proxy.
type Funcs struct {
	Filters   map[string]func(ctx context.Context, args ...value.Value) (value.Value, error)
	Functions map[string]func(ctx context.Context, args ...value.Value) (value.Value, error)
	Tests     map[string]func(ctx context.Context, args ...value.Value) (value.Value, error)
}

func (f Funcs) funcMap(ctx context.Context) map[string]any {
	out := map[string]any{
		"startswith": strings.HasPrefix,
		"html": func(s string) htemplate.HTML {
			return htemplate.HTML(s)
		},
	}
	for name, fn := range f.Filters {
		out[name] = callableAdapter(ctx, fn)
	}
	for name, fn := range f.Functions {
		out["fn_"+name] = callableAdapter(ctx, fn)
	}
	for name, fn := range f.Tests {
		out["is_"+name] = callableAdapter(ctx, fn)
	}
	return out
}

// callableAdapter turns a Value-typed scripthost proxy into a
// template.FuncMap-compatible function over `any` args, the Go type
// html/template and text/template both already accept as field/pipeline
// values.
func callableAdapter(ctx context.Context, fn func(context.Context, ...value.Value) (value.Value, error)) func(...any) (any, error) {
	return func(args ...any) (any, error) {
		vargs := make([]value.Value, len(args))
		for i, a := range args {
			vargs[i] = value.FromGo(a)
		}
		result, err := fn(ctx, vargs...)
		if err != nil {
			return nil, err
		}
		return result.ToGo(), nil
	}
}

// HTMLEngine renders .html layouts with auto-escaping (site chrome: page
// wrappers, feeds-as-HTML fragments, anything emitted verbatim to the
// browser).
type HTMLEngine struct {
	funcs Funcs
	ctx   context.Context
	tmpl  *htemplate.Template
}

func NewHTMLEngine(ctx context.Context, funcs Funcs) *HTMLEngine {
	return &HTMLEngine{funcs: funcs, ctx: ctx, tmpl: htemplate.New("root").Funcs(funcs.funcMap(ctx))}
}

func (e *HTMLEngine) AddLayouts(sources map[string]string) error {
	for name, src := range sources {
		t := e.tmpl.New(name)
		if _, err := t.Parse(src); err != nil {
			return build.WrapTemplate(build.RenderLayout, name, err)
		}
	}
	return nil
}

func (e *HTMLEngine) Render(name string, ctx value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, ctx.ToGo()); err != nil {
		return nil, build.WrapTemplate(build.RenderLayout, name, err)
	}
	return buf.Bytes(), nil
}

// TextEngine renders non-HTML layouts (e.g. feed/sitemap XML templates, or
// a page source written directly against a text layout) without escaping,
// per astrophena-site's rationale: the expansion target isn't always HTML.
type TextEngine struct {
	funcs Funcs
	ctx   context.Context
	tmpl  *ttemplate.Template
}

func NewTextEngine(ctx context.Context, funcs Funcs) *TextEngine {
	return &TextEngine{funcs: funcs, ctx: ctx, tmpl: ttemplate.New("root").Funcs(funcs.funcMap(ctx))}
}

func (e *TextEngine) AddLayouts(sources map[string]string) error {
	for name, src := range sources {
		t := e.tmpl.New(name)
		if _, err := t.Parse(src); err != nil {
			return build.WrapTemplate(build.RenderLayout, name, err)
		}
	}
	return nil
}

func (e *TextEngine) Render(name string, ctx value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, ctx.ToGo()); err != nil {
		return nil, build.WrapTemplate(build.RenderLayout, name, err)
	}
	return buf.Bytes(), nil
}

// EngineFor dispatches by layout file extension, per spec.md §4.5's
// "keyed on file-extension" rule: ".txt" and ".xml" layouts use TextEngine,
// everything else (".html" chiefly) uses HTMLEngine.
func EngineFor(ext string, ctx context.Context, funcs Funcs) Engine {
	switch ext {
	case ".txt", ".xml":
		return NewTextEngine(ctx, funcs)
	default:
		return NewHTMLEngine(ctx, funcs)
	}
}
