// Package page defines the entity types from spec.md §3 that flow through
// the pipeline's channels: Page, Image, Script, Style, and the late
// aggregate XML assets (Feed/Sitemap).
package page

import "vitrine/pkg/value"

// Page is one future HTML output file. Content mutates as content stages
// transform it; Data is populated from front matter and merged with
// site-wide data at render time.
type Page struct {
	InputPath string
	URL       string
	Lang      string
	Content   []byte
	Data      value.Value
}

// Image is created by the asset-extract stage from <img> tags. It never
// carries content in memory; Output copies its bytes directly from
// InputPath. SourcePath is the literal href/src reference text the page
// author wrote (e.g. "/img/a.png"), distinct from InputPath (the real
// filesystem location under input_dir) whenever input_dir isn't the site
// root; htmlbundle's rewrite pass matches against SourcePath since that is
// what actually appears in the rendered HTML.
type Image struct {
	InputPath  string
	SourcePath string
	URL        string
	Width      int
	Height     int
}

// Script is created from <script src> tags, or synthesized by the bundler.
// Content is read eagerly and mutated by transpile/bundle/minify. InputPath
// and SourcePath distinguish real filesystem location from as-written
// reference text the same way Image's fields do; both may be empty for a
// synthesized bundle.
type Script struct {
	InputPath  string
	SourcePath string
	URL        string
	Content    []byte
}

// Style is created from <link rel=stylesheet> tags or synthesized (e.g. the
// syntax-highlight theme). InputPath/SourcePath are optional for the same
// reason as Script's.
type Style struct {
	InputPath  string
	SourcePath string
	URL        string
	Content    []byte
}

// XML is a late-stage aggregate asset: a feed or a sitemap, rendered once
// from accumulated page views and written verbatim by Output.
type XML struct {
	URL     string
	Content []byte
}
