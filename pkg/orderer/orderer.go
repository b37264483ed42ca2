// Package orderer implements spec.md §5's supplemented ordering feature:
// sort a set of pages by an order key and link each to its chronological
// neighbors.
//
// Grounded on weberc2-futhorc/pkg/futhorc/orderer.go's
// Orderer/OrderedPage/OrderPages, generalized from the teacher's
// generic-over-Post-content-type Page[T] to vitrine's single concrete
// page.Page (Data carries what used to be the type parameter).
package orderer

import (
	"sort"
	"time"

	"vitrine/pkg/page"
)

// Ordered is a page.Page annotated with its derived sort key and its
// neighbors in sorted order.
type Ordered struct {
	page.Page
	Order int64
	Next  string
	Prev  string
}

// Order sorts pages by descending Order key (newest first, matching
// teacher's Compare) and assigns Next/Prev URLs between adjacent entries.
// The order key is Data["order"] if present (an explicit int64 override),
// else Data["date"] parsed as RFC3339, else zero.
func Order(pages []page.Page) []Ordered {
	ordered := make([]Ordered, len(pages))
	for i, p := range pages {
		ordered[i] = Ordered{Page: p, Order: orderKey(p)}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order > ordered[j].Order
	})

	if len(ordered) < 2 {
		return ordered
	}

	for i := range ordered[1:] {
		ordered[i].Prev = ordered[i+1].URL
	}
	for i := range ordered[:len(ordered)-1] {
		ordered[i+1].Next = ordered[i].URL
	}
	return ordered
}

func orderKey(p page.Page) int64 {
	if v, ok := p.Data.Get("order"); ok {
		if n, ok := v.I64(); ok {
			return n
		}
	}
	if v, ok := p.Data.Get("date"); ok {
		if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
			return t.UnixNano()
		}
	}
	return 0
}
