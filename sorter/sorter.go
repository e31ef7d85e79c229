// Package sorter turns sort expressions such as "created:desc,id" into
// ordered keys and applies them to in-memory slices.
package sorter

import (
	"slices"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Key is one field of a sort order.
type Key struct {
	Field string
	Dir   Direction
}

// Order lists keys by precedence.
type Order []Key

// Compare orders two items by one field, ascending.
type Compare[T any] func(a, b T) int

// Parse reads a comma separated list of "field" or "field:dir" terms.
// A bare field sorts ascending. Terms naming a field outside allowed, an
// unknown direction, or a field already seen are dropped.
func Parse(expr string, allowed ...string) Order {
	var order Order
	for term := range strings.SplitSeq(expr, ",") {
		field, dir, hasDir := strings.Cut(term, ":")
		field = strings.TrimSpace(field)
		if field == "" || !slices.Contains(allowed, field) {
			continue
		}

		d := Asc
		if hasDir {
			d = Direction(strings.ToLower(strings.TrimSpace(dir)))
		}
		if d != Asc && d != Desc {
			continue
		}

		if slices.ContainsFunc(order, func(k Key) bool { return k.Field == field }) {
			continue
		}
		order = append(order, Key{Field: field, Dir: d})
	}
	return order
}

// String renders the order back into Parse syntax.
func (o Order) String() string {
	terms := make([]string, len(o))
	for i, k := range o {
		terms[i] = k.Field + ":" + string(k.Dir)
	}
	return strings.Join(terms, ",")
}

// Apply stably sorts items by o. fields maps each field name to its
// ascending comparison; keys without one are skipped.
func Apply[T any](items []T, o Order, fields map[string]Compare[T]) {
	if len(o) == 0 {
		return
	}

	slices.SortStableFunc(items, func(a, b T) int {
		for _, k := range o {
			cmp, ok := fields[k.Field]
			if !ok {
				continue
			}
			c := cmp(a, b)
			if k.Dir == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
