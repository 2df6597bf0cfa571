package mergesort

import (
	"cmp"
	"slices"
)

// Sort stably sorts numbers in ascending order and returns the root of the recursion tree. The returned root carries no Initial when len(numbers) <= 1; see [Visualize].
func Sort(numbers []float64) *Node[float64] {
	return SortFunc(numbers, cmp.Compare[float64])
}

// SortFunc is like [Sort] but orders elements with compare, which returns a negative number when a < b, zero when they are equal, and a positive number when a > b.
//
// Elements which compare equal keep their original relative order.
func SortFunc[E any](xs []E, compare func(a, b E) int) *Node[E] {
	if len(xs) <= 1 {
		return &Node[E]{Result: slices.Clone(nonNil(xs))}
	}

	mid := len(xs) / 2
	left := SortFunc(xs[:mid], compare)
	right := SortFunc(xs[mid:], compare)

	return &Node[E]{
		Result:  MergeFunc(left.Result, right.Result, compare),
		Initial: slices.Clone(xs),
		Left:    left,
		Right:   right,
	}
}

// Visualize sorts numbers like [Sort], and always records the full input on the root node, so that the submitted list can be displayed even when it has no children.
func Visualize(numbers []float64) *Node[float64] {
	root := Sort(numbers)
	if root.Initial == nil {
		root.Initial = slices.Clone(nonNil(numbers))
	}
	return root
}

// Merge combines two ascending sequences into a new ascending sequence. On ties the element from left is taken first.
func Merge(left, right []float64) []float64 {
	return MergeFunc(left, right, cmp.Compare[float64])
}

// MergeFunc is the comparison-function variant of [Merge]. Neither input is modified.
func MergeFunc[E any](left, right []E, compare func(a, b E) int) []E {
	out := make([]E, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if compare(left[i], right[j]) <= 0 {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}

// nil input produces an empty, non-nil result so JSON encodes it as [].
func nonNil[E any](xs []E) []E {
	if xs == nil {
		return []E{}
	}
	return xs
}
