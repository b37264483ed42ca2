// Package minify implements spec.md §4.9's HTML minifier, the last
// optional pass before Output. Kept separate from pkg/transform's CSS/JS
// minification per the component table's split, but grounded on the same
// tdewolff/minify/v2 usage (other_examples/A-Line-Services-go-cms__build.go).
package minify

import (
	"github.com/tdewolff/minify/v2"
	minifyhtml "github.com/tdewolff/minify/v2/html"

	"vitrine/pkg/build"
)

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", minifyhtml.Minify)
	return m
}

// HTML minifies rendered page content, gated by the `optimize` config key.
func HTML(sourceURL string, content []byte) ([]byte, error) {
	out, err := minifier.Bytes("text/html", content)
	if err != nil {
		return nil, build.WrapURL(build.MinifyHtml, sourceURL, err)
	}
	return out, nil
}
