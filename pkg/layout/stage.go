package layout

import (
	"context"
	"fmt"
	"path/filepath"

	"vitrine/pkg/actor"
	"vitrine/pkg/build"
	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

// Set holds one Engine per layout file extension and the parsed layout
// sources backing them, letting the stage dispatch a page's chosen layout
// to the right template system (spec.md §4.5).
type Set struct {
	engines  map[string]Engine
	siteData value.Value
}

// NewSet parses every layout file under layoutFiles (name -> source,
// already relative paths such as "post.html") into per-extension engines.
func NewSet(ctx context.Context, funcs Funcs, siteData value.Value, layoutFiles map[string]string) (*Set, error) {
	byExt := map[string]map[string]string{}
	for name, src := range layoutFiles {
		ext := filepath.Ext(name)
		if byExt[ext] == nil {
			byExt[ext] = map[string]string{}
		}
		byExt[ext][name] = src
	}

	set := &Set{engines: map[string]Engine{}, siteData: siteData}
	for ext, sources := range byExt {
		engine := EngineFor(ext, ctx, funcs)
		if err := engine.AddLayouts(sources); err != nil {
			return nil, err
		}
		set.engines[ext] = engine
	}
	return set, nil
}

// Render renders `page` with its chosen layout (page.Data["layout"]),
// merging site-data under page-data per spec.md §4.5. A page with no
// layout is returned unchanged.
func (s *Set) Render(p page.Page) (page.Page, error) {
	layoutVal, ok := p.Data.Get("layout")
	if !ok || layoutVal.IsNull() {
		return p, nil
	}
	name := layoutVal.String()
	ext := filepath.Ext(name)
	engine, ok := s.engines[ext]
	if !ok {
		return p, build.WrapTemplate(build.RenderLayout, name, fmt.Errorf("no layout engine registered for extension %q", ext))
	}

	ctx := value.Merge(s.siteData, p.Data)
	ctx = value.Merge(ctx, value.Map(map[string]value.Value{
		"content": value.String(string(p.Content)),
		"url":     value.String(p.URL),
	}))

	rendered, err := engine.Render(name, ctx)
	if err != nil {
		return p, err
	}
	p.Content = rendered
	return p, nil
}

// Stage wraps Render as a pkg/actor.Map over a channel of Pages, per
// spec.md §2's pipeline-of-stages design.
func Stage(name string, concurrency int, in <-chan page.Page, set *Set) actor.Map[page.Page, page.Page] {
	return actor.NewMap(name, concurrency, in, func(_ context.Context, p page.Page) (page.Page, error) {
		return set.Render(p)
	})
}
