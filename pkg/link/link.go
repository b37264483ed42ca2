// Package link implements the Link tagged value from spec.md §3: a
// tagged URL-reference discovered in HTML (Anchor, Image, Script, or
// Style), carrying the source path and, for images, intrinsic dimensions.
// Link is used as a hash key to dedupe discovered assets and to canonicalize
// their URLs once (spec.md §4.8).
package link

// Kind identifies which HTML construct produced the Link.
type Kind uint8

const (
	Anchor Kind = iota
	Image
	Script
	Style
)

func (k Kind) String() string {
	switch k {
	case Anchor:
		return "anchor"
	case Image:
		return "image"
	case Script:
		return "script"
	case Style:
		return "style"
	default:
		return "unknown"
	}
}

// Link is a dedup key: two Links with the same Kind, SourcePath, Width, and
// Height are the same asset (spec.md §3: "Asset dedup key: the Link value
// itself (path + dimensions for images)").
type Link struct {
	Kind       Kind
	SourcePath string // reference as written in the page (.ts/.scss mapped to .js/.css); relative references are not resolved against the page's directory
	Width      int    // 0 if absent/not an image
	Height     int    // 0 if absent/not an image
}

// Set is a deduplicating collection of Links, keyed by value.
type Set struct {
	seen map[Link]struct{}
	all  []Link
}

func NewSet() *Set {
	return &Set{seen: make(map[Link]struct{})}
}

// Add inserts l if not already present, reporting whether it was newly
// added.
func (s *Set) Add(l Link) bool {
	if _, ok := s.seen[l]; ok {
		return false
	}
	s.seen[l] = struct{}{}
	s.all = append(s.all, l)
	return true
}

// All returns every distinct Link added, in insertion order.
func (s *Set) All() []Link {
	out := make([]Link, len(s.all))
	copy(out, s.all)
	return out
}

func (s *Set) OfKind(k Kind) []Link {
	var out []Link
	for _, l := range s.all {
		if l.Kind == k {
			out = append(out, l)
		}
	}
	return out
}
