// Package output implements spec.md §4.9: the Output stage. It computes
// each entity's output path from its canonical URL, deletes output_dir
// once at the start of a successful build, creates parent directories as
// needed, and asserts no two writes collide on the same path.
//
// Filesystem access goes through github.com/go-git/go-billy/v5, kept from
// weberc2-futhorc/pkg/futhorc/filecopier.go's billy.Filesystem-based
// writer; the destructive recursive cleanup is new, grounded on the same
// package's osfs.New usage for the output root.
package output

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"vitrine/pkg/build"
	"vitrine/pkg/htmlbundle"
	"vitrine/pkg/page"
	"vitrine/pkg/vurl"
)

// Writer owns output_dir exclusively for the duration of one build
// (spec.md §5: "no other stage reads from it"). It is not safe to reuse
// across builds; construct a fresh Writer per build.
type Writer struct {
	root billy.Filesystem
	dir  string

	mu          sync.Mutex
	written     map[string]bool
	cleanupOnce sync.Once
}

// New prepares a Writer rooted at dir. It does not touch the filesystem
// yet: the destructive cleanup happens lazily, on the first successful
// write, per spec.md §7 ("Output's destructive cleanup happens only at the
// start of a successful rebuild").
func New(dir string) (*Writer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, build.Wrap(build.Io, dir, err)
	}
	return &Writer{root: osfs.New(abs), dir: abs, written: map[string]bool{}}, nil
}

// clean removes output_dir recursively, exactly once per Writer's
// lifetime, immediately before the first write.
func (w *Writer) clean() error {
	var cleanErr error
	w.cleanupOnce.Do(func() {
		cleanErr = os.RemoveAll(w.dir)
	})
	return cleanErr
}

// WritePage writes a rendered page to its output path (spec.md §4.9's
// trailing-slash/`.html`/bare-URL rules, via pkg/vurl.OutputPath).
func (w *Writer) WritePage(ctx context.Context, p page.Page) error {
	return w.writeBytes(ctx, vurl.OutputPath(urlPath(p.URL)), p.Content)
}

// WriteAsset writes an htmlbundle.Asset: Image assets are copied
// byte-for-byte from InputPath; Script/Style assets with content are
// written verbatim.
func (w *Writer) WriteAsset(ctx context.Context, a htmlbundle.Asset) error {
	outPath := assetOutputPath(urlPath(a.URL))
	if a.HasInput && len(a.Content) == 0 {
		return w.copyFile(ctx, outPath, a.InputPath)
	}
	return w.writeBytes(ctx, outPath, a.Content)
}

// WriteXML writes a late-stage Feed/Sitemap asset verbatim at its URL.
func (w *Writer) WriteXML(ctx context.Context, x page.XML) error {
	return w.writeBytes(ctx, assetOutputPath(urlPath(x.URL)), x.Content)
}

// urlPath strips any scheme/authority a canonical URL carries (htmlbundle
// resolves against base_url, so Page/Asset URLs are absolute) down to the
// root-relative path the filesystem layout is keyed on. A URL that fails to
// parse, or that never had a scheme, is returned unchanged.
func urlPath(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Path == "" {
		return u
	}
	return parsed.Path
}

func assetOutputPath(u string) string {
	if strings.HasSuffix(u, "/") {
		return u + "index.html"
	}
	return u
}

func (w *Writer) writeBytes(ctx context.Context, outURL string, content []byte) error {
	if err := w.reserve(outURL); err != nil {
		return err
	}
	if err := w.clean(); err != nil {
		return build.Wrap(build.Io, w.dir, err)
	}

	rel := strings.TrimPrefix(outURL, "/")
	if err := w.mkdirAll(filepath.Dir(rel)); err != nil {
		return build.Wrap(build.Io, rel, err)
	}

	f, err := w.root.Create(rel)
	if err != nil {
		return build.Wrap(build.Io, rel, err)
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return build.Wrap(build.Io, rel, err)
	}
	return ctx.Err()
}

func (w *Writer) copyFile(ctx context.Context, outURL, srcPath string) error {
	if err := w.reserve(outURL); err != nil {
		return err
	}
	if err := w.clean(); err != nil {
		return build.Wrap(build.Io, w.dir, err)
	}

	rel := strings.TrimPrefix(outURL, "/")
	if err := w.mkdirAll(filepath.Dir(rel)); err != nil {
		return build.Wrap(build.Io, rel, err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return build.Wrap(build.Io, srcPath, err)
	}
	defer src.Close()

	dst, err := w.root.Create(rel)
	if err != nil {
		return build.Wrap(build.Io, rel, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, &contextReader{ctx, src}); err != nil {
		return build.Wrap(build.Io, srcPath, err)
	}
	return nil
}

func (w *Writer) mkdirAll(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	return w.root.MkdirAll(dir, 0o755)
}

// reserve asserts no two writes collide on the same output path (spec.md
// §4.9/§8).
func (w *Writer) reserve(outURL string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written[outURL] {
		return build.WrapURL(build.Io, outURL, fmt.Errorf("two entities wrote to the same output path"))
	}
	w.written[outURL] = true
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
