package transform

import (
	"fmt"
	"regexp"
	"strings"

	"vitrine/pkg/build"
)

// ScssCompiler is the narrow contract spec.md §1 carves out for SCSS (an
// "external collaborator" whose interface, not implementation, is
// specified). No example repo in the pack depends on a SCSS library —
// see DESIGN.md's standard-library justification — so the default
// implementation below only flattens `@import`; callers needing real Sass
// semantics (nesting, variables, mixins) supply their own ScssCompiler.
type ScssCompiler interface {
	Compile(sourcePath string, source string, resolve func(importPath string) (string, error)) (string, error)
}

// FlattenImportCompiler implements ScssCompiler by recursively inlining
// `@import "path";` statements (stripping the quotes and appending ".scss"
// when missing) and otherwise passing SCSS through unchanged. It does not
// look up leading-underscore partials, and does not implement nesting,
// variables, or mixins.
type FlattenImportCompiler struct{}

var importRe = regexp.MustCompile(`(?m)^\s*@import\s+["']([^"']+)["']\s*;\s*$`)

func (FlattenImportCompiler) Compile(sourcePath, source string, resolve func(string) (string, error)) (string, error) {
	return flattenImports(sourcePath, source, resolve, map[string]bool{sourcePath: true})
}

func flattenImports(sourcePath, source string, resolve func(string) (string, error), seen map[string]bool) (string, error) {
	var replaceErr error
	out := importRe.ReplaceAllStringFunc(source, func(match string) string {
		if replaceErr != nil {
			return ""
		}
		sub := importRe.FindStringSubmatch(match)
		importPath := sub[1]
		if !strings.HasSuffix(importPath, ".scss") {
			importPath += ".scss"
		}
		if seen[importPath] {
			replaceErr = build.Wrap(build.CompileScss, sourcePath, fmt.Errorf("circular @import of %q", importPath))
			return ""
		}
		imported, err := resolve(importPath)
		if err != nil {
			replaceErr = build.Wrap(build.CompileScss, sourcePath, err)
			return ""
		}
		nestedSeen := map[string]bool{importPath: true}
		for k := range seen {
			nestedSeen[k] = true
		}
		flattened, err := flattenImports(importPath, imported, resolve, nestedSeen)
		if err != nil {
			replaceErr = err
			return ""
		}
		return flattened
	})
	if replaceErr != nil {
		return "", replaceErr
	}
	return out, nil
}
