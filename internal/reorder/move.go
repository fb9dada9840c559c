// Package reorder holds the client side of drag-to-reorder: moving an item
// within a list, telling drags from clicks, and a controller that applies
// a drop optimistically while the new order is persisted.
package reorder

// Move returns a copy of items with the element at from moved to index to.
// The relative order of every other element is preserved. Out-of-range
// indexes return an unchanged copy.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}
