// Package collection holds small generic slice helpers used by the catalog
// engine and the services.
//
//	active := collection.Filter(products, func(p Item) bool { return p.Active })
//	byBrand := collection.CountBy(products, func(p Item) string { return p.Brand })
//	page := collection.Page(active, 2, 20)
//
// Helpers never modify their input except SortStable, which sorts a copy.
package collection

import (
	"cmp"
	"slices"
)

// Map transforms each element of s.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements for which fn is true, in order. The result is
// never nil.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Any reports whether some element satisfies fn.
func Any[T any](s []T, fn func(T) bool) bool {
	return slices.IndexFunc(s, fn) >= 0
}

// CountBy counts elements per key. Empty keys are skipped.
func CountBy[T any](s []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, v := range s {
		if k := key(v); k != "" {
			out[k]++
		}
	}
	return out
}

// SortedUnique flattens the values produced by fn, drops empty and duplicate
// values and returns them in ascending order.
func SortedUnique[T any, K cmp.Ordered](s []T, fn func(T) []K) []K {
	var zero K
	seen := make(map[K]struct{})
	out := []K{}
	for _, v := range s {
		for _, k := range fn(v) {
			if k == zero {
				continue
			}
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	slices.Sort(out)
	return out
}

// SortStable returns a sorted copy of s. Elements that compare equal keep
// their input order.
func SortStable[T any](s []T, compare func(a, b T) int) []T {
	out := slices.Clone(s)
	slices.SortStableFunc(out, compare)
	return out
}

// Sum adds the values extracted by fn.
func Sum[T any](s []T, fn func(T) float64) float64 {
	var total float64
	for _, v := range s {
		total += fn(v)
	}
	return total
}

// TotalPages is ceil(n/size), 0 for an empty list.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Page returns the 1-indexed page of s. Out-of-range pages are empty.
func Page[T any](s []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(s) {
		return []T{}
	}
	end := min(start+size, len(s))
	return s[start:end]
}
