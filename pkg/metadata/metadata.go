// Package metadata implements spec.md §4.3: per-page front-matter / sidecar
// data extraction. Grounded on weberc2-futhorc/pkg/futhorc/post.go's
// fence-scanning approach, generalized from a fixed YAML frontmatter block
// to the TOML/YAML dual-delimiter grammar and sidecar-file lookup spec.md
// adds, and from a fixed struct to pkg/value.Value.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"vitrine/pkg/build"
	"vitrine/pkg/value"
)

// Extract implements spec.md §4.3's precedence: a sidecar data file wins
// over inline front matter. `content` is the page's raw source bytes;
// `inputPath` locates any sidecar. It returns the page's Value (zero Value
// if neither a sidecar nor front matter is present) and the content with
// any front-matter block stripped.
func Extract(inputPath string, content []byte) (value.Value, []byte, error) {
	if data, ok, err := loadSidecar(inputPath); err != nil {
		return value.Null(), content, err
	} else if ok {
		return data, content, nil
	}
	return extractFrontMatter(inputPath, content)
}

func loadSidecar(inputPath string) (value.Value, bool, error) {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	for ext, decode := range sidecarDecoders {
		path := stem + ext
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		v, err := decode(data)
		if err != nil {
			return value.Null(), false, build.Wrap(build.ParseFrontMatter, path, err)
		}
		return v, true, nil
	}
	return value.Null(), false, nil
}

var sidecarDecoders = map[string]func([]byte) (value.Value, error){
	".json": decodeJSON,
	".toml": decodeTOML,
	".yaml": decodeYAML,
}

func decodeJSON(data []byte) (value.Value, error) {
	var v value.Value
	err := v.UnmarshalJSON(data)
	return v, err
}

func decodeTOML(data []byte) (value.Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return value.Null(), err
	}
	return value.FromGo(raw), nil
}

func decodeYAML(data []byte) (value.Value, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return value.Null(), err
	}
	return value.FromGo(raw), nil
}

// extractFrontMatter implements spec.md §4.3's front-matter grammar: the
// delimiter ("+++" for TOML, "---" for YAML, the default) must appear at
// offset 0, optionally followed on the same line by a format name; the
// closing delimiter must be line-anchored and followed by LF, CRLF, or EOF.
// Absence of a recognized opening delimiter passes content through
// unchanged; a malformed body is a fatal parse error.
func extractFrontMatter(inputPath string, content []byte) (value.Value, []byte, error) {
	delim, decode, ok := detectDelimiter(content)
	if !ok {
		return value.Null(), content, nil
	}

	firstLineEnd := bytes.IndexByte(content, '\n')
	if firstLineEnd < 0 {
		return value.Null(), content, nil
	}

	closeSeq := []byte("\n" + delim)
	closeIdx := -1
	for search := firstLineEnd; search < len(content); {
		i := bytes.Index(content[search:], closeSeq)
		if i < 0 {
			break
		}
		i += search
		after := content[i+len(closeSeq):]
		if len(after) == 0 || after[0] == '\n' || bytes.HasPrefix(after, []byte("\r\n")) {
			closeIdx = i
			break
		}
		search = i + 1
	}
	if closeIdx < 0 {
		return value.Null(), content, build.Wrap(build.ParseFrontMatter, inputPath,
			fmt.Errorf("missing closing %q fence", delim))
	}

	body := content[firstLineEnd+1 : closeIdx]
	rest := content[closeIdx+len(closeSeq):]
	rest = trimOneLineEnding(rest)

	v, err := decode(body)
	if err != nil {
		return value.Null(), content, build.Wrap(build.ParseFrontMatter, inputPath, err)
	}
	return v, rest, nil
}

func detectDelimiter(content []byte) (delim string, decode func([]byte) (value.Value, error), ok bool) {
	if bytes.HasPrefix(content, []byte("+++")) {
		return "+++", decodeTOML, true
	}
	if bytes.HasPrefix(content, []byte("---")) {
		return "---", decodeYAML, true
	}
	return "", nil, false
}

func trimOneLineEnding(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}
