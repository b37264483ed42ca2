package minify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLStripsComments(t *testing.T) {
	out, err := HTML("/a.html", []byte("<html>  <!-- hi -->  <body>\n\n<p>hello</p></body></html>"))
	require.NoError(t, err)
	require.NotContains(t, string(out), "<!-- hi -->")
}

func TestHTMLCollapsesWhitespaceBetweenTags(t *testing.T) {
	out, err := HTML("/a.html", []byte("<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>"))
	require.NoError(t, err)
	require.NotContains(t, string(out), "\n  ")
}
