// Package vurl implements the structured Url/UrlPath type from spec.md §3:
// separate scheme/authority/path/query/fragment, with a path type
// supporting normalize, segments, pop, push, and trailing-slash
// preservation. It is layered on top of stdlib net/url, which has no
// equivalent path-segment manipulation API.
package vurl

import (
	"net/url"
	"strings"
)

// Path is a structured, slash-separated URL path that remembers whether it
// is absolute (rooted at "/") and whether it had a trailing slash.
type Path struct {
	segments []string
	absolute bool
	trailing bool
}

// ParsePath splits a raw path string into a Path.
func ParsePath(raw string) Path {
	absolute := strings.HasPrefix(raw, "/")
	trailing := len(raw) > 0 && strings.HasSuffix(raw, "/") && raw != "/"
	trimmed := strings.Trim(raw, "/")
	var segments []string
	if trimmed != "" {
		for _, s := range strings.Split(trimmed, "/") {
			segments = append(segments, s)
		}
	}
	return Path{segments: segments, absolute: absolute, trailing: trailing}
}

// Segments returns the path's non-empty segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

func (p Path) IsAbsolute() bool { return p.absolute }
func (p Path) HasTrailingSlash() bool { return p.trailing }

// Push appends a segment, returning a new Path.
func (p Path) Push(segment string) Path {
	p.segments = append(append([]string{}, p.segments...), segment)
	return p
}

// Pop removes the last segment, returning a new Path. Popping an empty path
// is a no-op.
func (p Path) Pop() Path {
	if len(p.segments) == 0 {
		return p
	}
	p.segments = append([]string{}, p.segments[:len(p.segments)-1]...)
	return p
}

// Normalize resolves "." and ".." segments without ever climbing above the
// root (spec.md §8: "normalize never introduces `..` above the root").
func (p Path) Normalize() Path {
	out := make([]string, 0, len(p.segments))
	for _, s := range p.segments {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			// else: silently drop a `..` that would climb above the root.
		default:
			out = append(out, s)
		}
	}
	p.segments = out
	return p
}

// String renders the path back to a slash-separated string, preserving
// absoluteness and trailing slash verbatim.
func (p Path) String() string {
	var b strings.Builder
	if p.absolute {
		b.WriteByte('/')
	}
	b.WriteString(strings.Join(p.segments, "/"))
	if p.trailing && len(p.segments) > 0 {
		b.WriteByte('/')
	}
	if p.absolute && len(p.segments) == 0 {
		return "/"
	}
	return b.String()
}

// Url is a structured URL with independently addressable components,
// wrapping net/url.URL for parsing while exposing the Path abstraction
// above for the path component.
type Url struct {
	Scheme    string
	Authority string
	Path      Path
	Query     string
	Fragment  string
}

// Parse parses a raw URL string into a Url.
func Parse(raw string) (Url, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Url{}, err
	}
	return Url{
		Scheme:    u.Scheme,
		Authority: u.Host,
		Path:      ParsePath(u.EscapedPath()),
		Query:     u.RawQuery,
		Fragment:  u.Fragment,
	}, nil
}

// String renders the Url back to its canonical string form.
func (u Url) String() string {
	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteString("://")
	} else if u.Authority != "" {
		b.WriteString("//")
	}
	b.WriteString(u.Authority)
	b.WriteString(u.Path.String())
	if u.Query != "" {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// IsAbsolute reports whether the URL has a root path (spec.md §8:
// "normalize(p).is_absolute() == has_root(p)").
func (u Url) IsAbsolute() bool {
	return u.Path.IsAbsolute()
}

// Normalize resolves base against a (possibly relative) reference and
// normalizes the resulting path, matching spec.md §3/§8's canonical-URL
// rules: idempotent, never climbs above the root, and
// `normalize(p).is_absolute() == has_root(p)`.
func Normalize(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	resolved := b.ResolveReference(r)
	p := ParsePath(resolved.EscapedPath()).Normalize()
	resolved.Path = p.String()
	resolved.RawPath = ""
	return resolved.String(), nil
}

// CanonicalPageURL implements the spec.md §3 page-URL canonicalization:
// "/x/index.html" → "/x/"; "/x.html" → "/x/"; a trailing slash is preserved
// verbatim and later written back out as ".../index.html".
func CanonicalPageURL(raw string) string {
	p := ParsePath(raw)
	segs := p.Segments()
	if len(segs) == 0 {
		return "/"
	}
	last := segs[len(segs)-1]
	if last == "index.html" {
		p = p.Pop()
		p.trailing = true
		return p.String()
	}
	if strings.HasSuffix(last, ".html") {
		segs[len(segs)-1] = strings.TrimSuffix(last, ".html")
		p.segments = segs
		p.trailing = true
		return p.String()
	}
	return p.String()
}

// OutputPath implements the spec.md §6 file-output-layout rule: a URL
// ending in "/" writes to URL/index.html; a URL ending in ".html" writes
// verbatim; any other URL has "/index.html" appended.
func OutputPath(u string) string {
	switch {
	case strings.HasSuffix(u, "/"):
		return u + "index.html"
	case strings.HasSuffix(u, ".html"):
		return u
	default:
		return strings.TrimSuffix(u, "/") + "/index.html"
	}
}
