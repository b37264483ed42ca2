// Package walker enumerates files under input_dir honoring spec.md §4.2's
// exclusion rules: gitignore semantics from .gitignore siblings, the
// hidden-prefix rule, user-configured ignore paths, and a hard exclusion of
// output_dir/layout_dir. It also derives each survivor's canonical-ish URL
// per spec.md §4.2's deterministic rule.
//
// The directory-stack scan is grounded on
// weberc2-futhorc/pkg/futhorc/filefinder.go; gitignore matching uses
// github.com/go-git/go-git/v5/plumbing/format/gitignore (an
// inful-docbuilder dependency) rather than a hand-rolled matcher.
package walker

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"vitrine/pkg/actor"
)

// Options configures a Walk.
type Options struct {
	// IgnorePaths are additional excludes, relative to the input root,
	// slash-separated (spec.md §6 `ignore_paths`).
	IgnorePaths []string
	// OutputDir and LayoutDir are absolute paths that are always excluded
	// (spec.md §4.2), even if not otherwise ignored.
	OutputDir string
	LayoutDir string
	// DefaultLang is used for Entry.Lang when no language tag is present
	// in the file name (spec.md §6 `default_lang`).
	DefaultLang string
}

// Entry is one surviving file under input_dir.
type Entry struct {
	InputPath string // absolute, normalized
	RelPath   string // slash-separated, relative to input root
	URL       string // derived per spec.md §4.2
	Lang      string
}

// knownLangTags is the fixed table of secondary-extension language tags
// spec.md §4.2 refers to ("a known language tag"). This is deliberately a
// closed set rather than a heuristic: an unrecognized secondary extension
// (e.g. "page.min.js") must not be mistaken for a language tag.
var knownLangTags = map[string]bool{
	"en": true, "eo": true, "es": true, "fr": true, "de": true, "it": true,
	"pt": true, "ru": true, "ja": true, "zh": true, "ko": true, "ar": true,
	"nl": true, "pl": true, "sv": true, "fi": true, "da": true, "no": true,
	"cs": true, "tr": true, "uk": true, "he": true, "hi": true, "vi": true,
}

// Walk returns an actor.Output that enumerates every surviving file under
// root, applying `opts`.
func Walk(root string, opts Options) (walker actor.Output[Entry], err error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return walker, err
	}

	fs := osfs.New(absRoot)
	matcher, err := buildMatcher(fs)
	if err != nil {
		return walker, err
	}

	ignoreSet := make(map[string]bool, len(opts.IgnorePaths))
	for _, p := range opts.IgnorePaths {
		ignoreSet[filepath.ToSlash(filepath.Clean(p))] = true
	}

	dirs := []string{"."}
	var dir string
	var entries []os.FileInfo

	walker = actor.NewOutput("Walker", 1, func(ctx context.Context) (Entry, error) {
		for {
			for len(entries) > 0 {
				info := entries[0]
				entries = entries[1:]
				rel := path.Join(filepath.ToSlash(dir), info.Name())

				if excluded(absRoot, rel, info.IsDir(), matcher, ignoreSet, opts) {
					continue
				}

				if info.IsDir() {
					dirs = append(dirs, rel)
					continue
				}

				inputPath := filepath.Join(absRoot, filepath.FromSlash(rel))
				url, lang := DeriveURL(rel, opts.DefaultLang)
				return Entry{InputPath: inputPath, RelPath: rel, URL: url, Lang: lang}, nil
			}

			if len(dirs) < 1 {
				return Entry{}, actor.ErrStop
			}
			dir, dirs = dirs[0], dirs[1:]

			if err := ctx.Err(); err != nil {
				return Entry{}, err
			}

			readDir := dir
			if readDir == "." {
				readDir = "."
			}
			infos, err := fs.ReadDir(readDir)
			if err != nil {
				return Entry{}, err
			}
			entries = infos
		}
	})
	return walker, nil
}

func buildMatcher(fs billy.Filesystem) (gitignore.Matcher, error) {
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, err
	}
	return gitignore.NewMatcher(patterns), nil
}

func excluded(
	absRoot, rel string,
	isDir bool,
	matcher gitignore.Matcher,
	ignoreSet map[string]bool,
	opts Options,
) bool {
	if rel == "." {
		return false
	}

	base := path.Base(rel)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return true
	}

	if ignoreSet[rel] {
		return true
	}

	segments := strings.Split(rel, "/")
	if matcher.Match(segments, isDir) {
		return true
	}

	abs := filepath.Join(absRoot, filepath.FromSlash(rel))
	if opts.OutputDir != "" && isWithin(opts.OutputDir, abs) {
		return true
	}
	if opts.LayoutDir != "" && isWithin(opts.LayoutDir, abs) {
		return true
	}

	return false
}

func isWithin(dir, candidate string) bool {
	dir = filepath.Clean(dir)
	candidate = filepath.Clean(candidate)
	if dir == candidate {
		return true
	}
	rel, err := filepath.Rel(dir, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}

// DeriveURL implements spec.md §4.2's URL derivation: strip input_dir
// prefix (rel is already relative), drop extension, if the file stem is
// "index" use the parent directory, and if a secondary extension names a
// known language tag, extract it as the page language and strip it.
func DeriveURL(rel, defaultLang string) (url string, lang string) {
	lang = defaultLang

	dir := path.Dir(rel)
	base := path.Base(rel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if secondExt := path.Ext(stem); secondExt != "" {
		tag := strings.TrimPrefix(secondExt, ".")
		if knownLangTags[tag] {
			lang = tag
			stem = strings.TrimSuffix(stem, secondExt)
		}
	}

	if stem == "index" {
		if dir == "." {
			return "/", lang
		}
		return "/" + dir + "/", lang
	}

	if dir == "." {
		return "/" + stem, lang
	}
	return "/" + dir + "/" + stem, lang
}
