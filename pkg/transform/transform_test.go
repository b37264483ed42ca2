package transform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranspileTypeScript(t *testing.T) {
	out, err := TranspileTypeScript("app.ts", "const x: number = 1;\nexport default x;\n")
	require.NoError(t, err)
	require.NotContains(t, out, ": number")
}

func TestBundleJSWithVirtualFS(t *testing.T) {
	vfs := NewVirtualFS()
	vfs.Set("/virtual/entry.js", `import {x} from "./dep.js"; console.log(x);`)
	vfs.Set("/virtual/dep.js", `export const x = 1;`)

	out, err := BundleJS("/virtual/entry.js", vfs)
	require.NoError(t, err)
	require.Contains(t, out, "console.log")
}

func TestMinifyCSS(t *testing.T) {
	out, err := MinifyCSS("style.css", "body {\n  color: red;\n}\n")
	require.NoError(t, err)
	require.Equal(t, "body{color:red}", out)
}

func TestFlattenImportCompiler(t *testing.T) {
	files := map[string]string{
		"base.scss": "body { color: red; }",
	}
	var c FlattenImportCompiler
	out, err := c.Compile("main.scss", `@import "base";`, func(p string) (string, error) {
		return files[p], nil
	})
	require.NoError(t, err)
	require.Contains(t, out, "color: red")
}
