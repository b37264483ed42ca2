package orderer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vitrine/pkg/page"
	"vitrine/pkg/value"
)

func dated(url, date string) page.Page {
	return page.Page{URL: url, Data: value.Map(map[string]value.Value{"date": value.String(date)})}
}

func TestOrderSortsNewestFirstAndLinksNeighbors(t *testing.T) {
	pages := []page.Page{
		dated("/a/", "2020-01-01T00:00:00Z"),
		dated("/b/", "2023-01-01T00:00:00Z"),
		dated("/c/", "2021-01-01T00:00:00Z"),
	}

	ordered := Order(pages)
	require.Equal(t, []string{"/b/", "/c/", "/a/"}, []string{ordered[0].URL, ordered[1].URL, ordered[2].URL})

	require.Equal(t, "", ordered[0].Next)
	require.Equal(t, "/c/", ordered[0].Prev)
	require.Equal(t, "/b/", ordered[1].Next)
	require.Equal(t, "/a/", ordered[1].Prev)
	require.Equal(t, "/c/", ordered[2].Next)
	require.Equal(t, "", ordered[2].Prev)
}
