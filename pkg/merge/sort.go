package merge

import "slices"

// SortStable returns a copy of items ordered by less, keeping the relative
// order of items that compare equal. Use it when a list's order is derived
// from a sort key instead of supplied by the caller.
func SortStable[T any](items []T, less func(a, b T) bool) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})
	return sorted
}
