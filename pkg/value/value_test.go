package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	v := Map(map[string]Value{
		"title": String("Hello"),
		"tags":  Seq([]Value{String("a"), String("b")}),
		"count": I64(3),
		"ok":    Bool(true),
		"empty": Null(),
	})

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var got Value
	require.NoError(t, json.Unmarshal(data, &got))

	data2, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(data), string(data2))
}

func TestMergeOverlaysNestedMaps(t *testing.T) {
	base := Map(map[string]Value{
		"site": Map(map[string]Value{
			"title": String("Base"),
			"lang":  String("en"),
		}),
	})
	overlay := Map(map[string]Value{
		"site": Map(map[string]Value{
			"title": String("Overridden"),
		}),
	})

	merged := Merge(base, overlay)
	site, ok := merged.Get("site")
	require.True(t, ok)

	title, ok := site.Get("title")
	require.True(t, ok)
	require.Equal(t, "Overridden", title.String())

	lang, ok := site.Get("lang")
	require.True(t, ok)
	require.Equal(t, "en", lang.String())
}

func TestFromGoNestedSlicesAndMaps(t *testing.T) {
	v := FromGo(map[string]any{
		"a": []any{1, "two", 3.5},
		"b": nil,
	})
	a, ok := v.Get("a")
	require.True(t, ok)
	seq, ok := a.Seq()
	require.True(t, ok)
	require.Len(t, seq, 3)
	i, ok := seq[0].I64()
	require.True(t, ok)
	require.Equal(t, int64(1), i)
}
