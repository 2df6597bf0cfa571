package mergesort

// Node is a single recursive call of the sort.
//
// Left and Right are either both set or both nil. Initial is set on every node with children, and on a root node returned by [Visualize].
type Node[E any] struct {
	Result  []E      `json:"result"`
	Initial []E      `json:"initialArray,omitempty"`
	Left    *Node[E] `json:"left,omitempty"`
	Right   *Node[E] `json:"right,omitempty"`
}

// IsLeaf reports whether n is a base case of the sort, holding at most one element and no children.
func (n *Node[E]) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Count returns the total number of nodes in the tree rooted at n.
func Count[E any](n *Node[E]) int {
	if n == nil {
		return 0
	}
	return 1 + Count(n.Left) + Count(n.Right)
}

// Depth returns the number of edges on the longest path from n down to a leaf. A single leaf has depth zero.
func Depth[E any](n *Node[E]) int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	return 1 + max(Depth(n.Left), Depth(n.Right))
}

// Walk visits every node in pre-order (node, then left subtree, then right subtree). Returning false from fn skips the children of that node.
func Walk[E any](n *Node[E], fn func(n *Node[E], depth int) bool) {
	walk(n, 0, fn)
}

func walk[E any](n *Node[E], depth int, fn func(n *Node[E], depth int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	walk(n.Left, depth+1, fn)
	walk(n.Right, depth+1, fn)
}

// Leaves returns the leaf nodes of the tree, left to right.
func Leaves[E any](n *Node[E]) []*Node[E] {
	var out []*Node[E]
	Walk(n, func(n *Node[E], _ int) bool {
		if n.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}
