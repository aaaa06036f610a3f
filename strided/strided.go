// Package strided provides typed views over the columnar arguments of batch calls.
//
// A batch of N logical tasks is passed as a set of parallel columns rather than N records.
// Each column is a base slice plus an explicit step between consecutive tasks, and a step
// of zero broadcasts a single element to every task, so a caller can supply a dense array
// or a constant without duplicating data.
package strided

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// T is a read-only view of count elements of base, taken every stride elements.
type T[V any] struct {
	base   []V
	stride int
	count  int
}

// Column is the part of a column needed to size a batch.
type Column interface {
	Len() int
	Broadcasts() bool
}

// New creates a view of count elements of base starting at base[0], stride elements apart.
func New[V any](base []V, stride, count int) T[V] {
	return T[V]{base: base, stride: stride, count: count}
}

// Dense is a view of every element of s.
func Dense[V any](s []V) T[V] { return T[V]{base: s, stride: 1, count: len(s)} }

// Of is Dense over the arguments.
func Of[V any](v ...V) T[V] { return Dense(v) }

// Broadcast repeats v for count tasks.
func Broadcast[V any](v V, count int) T[V] {
	return T[V]{base: []V{v}, stride: 0, count: count}
}

// At returns the element for task i.
func (s T[V]) At(i int) V { return s.base[i*s.stride] }

// Len is the number of tasks the view was created for.
func (s T[V]) Len() int { return s.count }

// Stride is the step, in elements, between consecutive tasks.
func (s T[V]) Stride() int { return s.stride }

// Broadcasts is true for a zero stride column.
func (s T[V]) Broadcasts() bool { return s.stride == 0 }

// Fits reports whether the column can supply n tasks without reading out of bounds.
func (s T[V]) Fits(n int) bool {
	if n == 0 {
		return true
	}
	if s.stride == 0 {
		return len(s.base) > 0
	}
	return s.count >= n && (n-1)*s.stride < len(s.base)
}

// Sub is the view of count tasks starting at task offset.
func (s T[V]) Sub(offset, count int) T[V] {
	if s.stride == 0 || count == 0 {
		return T[V]{base: s.base, stride: s.stride, count: count}
	}
	return T[V]{base: s.base[offset*s.stride:], stride: s.stride, count: count}
}

// Slice copies the viewed elements into a new dense slice.
func (s T[V]) Slice() (out []V) {
	out = make([]V, s.count)
	for i := range out {
		out[i] = s.At(i)
	}
	return
}

// Search returns the first task for which f is true, f must be monotone over the column.
func (s T[V]) Search(f func(V) bool) int {
	return sort.Search(s.count, func(i int) bool { return f(s.At(i)) })
}

// EqualRange returns the half-open range of tasks equal to v in a column sorted ascending,
// located with two binary searches.
func EqualRange[V constraints.Ordered](s T[V], v V) (lo, hi int) {
	lo = sort.Search(s.count, func(i int) bool { return s.At(i) >= v })
	hi = lo + sort.Search(s.count-lo, func(i int) bool { return s.At(lo+i) > v })
	return
}

// Count returns the number of tasks in a batch: the length of the first column that is
// not a broadcast, or of the first column if all of them broadcast.
func Count(cols ...Column) (n int) {
	for _, c := range cols {
		if !c.Broadcasts() {
			return c.Len()
		}
	}
	if len(cols) > 0 {
		n = cols[0].Len()
	}
	return
}
