// Package mergesort implements a top-down merge sort which records every recursive call as a node in a tree.
//
// The tree is intended for visualization: each node holds the sub-array a call received and the sorted result it produced, and the two children show how that result was assembled. Sorting is pure and synchronous; inputs are never mutated or retained.
package mergesort
