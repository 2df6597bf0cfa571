// Package render turns merge sort recursion trees into forms suitable for display.
package render

import (
	"fmt"

	"github.com/bluesky-social/mergetree/internal/mergetree/input"
	"github.com/bluesky-social/mergetree/mergesort"

	"github.com/xlab/treeprint"
)

// Step is one element of a flattened tree. An opening step is followed by the steps of the node's children and then a matching closing step.
//
// Templates iterate the steps in order: an opening step starts a node box and prints Initial (when HasInitial), a closing step prints Result and ends the box.
type Step struct {
	Open       bool
	Leaf       bool
	Depth      int
	HasInitial bool
	Initial    string
	Result     string
}

// Steps flattens the tree rooted at root. A nil root produces no steps.
func Steps(root *mergesort.Node[float64]) []Step {
	var out []Step
	appendSteps(&out, root, 0)
	return out
}

func appendSteps(out *[]Step, n *mergesort.Node[float64], depth int) {
	if n == nil {
		return
	}
	open := Step{
		Open:       true,
		Leaf:       n.IsLeaf(),
		Depth:      depth,
		HasInitial: n.Initial != nil,
	}
	if open.HasInitial {
		open.Initial = input.Format(n.Initial)
	}
	*out = append(*out, open)

	appendSteps(out, n.Left, depth+1)
	appendSteps(out, n.Right, depth+1)

	*out = append(*out, Step{
		Leaf:   n.IsLeaf(),
		Depth:  depth,
		Result: input.Format(n.Result),
	})
}

// Text renders the tree as an indented ASCII diagram. Nodes with an initial array are labelled "[initial] -> [result]", others just "[result]".
func Text(root *mergesort.Node[float64]) string {
	if root == nil {
		return ""
	}
	tree := treeprint.NewWithRoot(label(root))
	addBranches(tree, root)
	return tree.String()
}

func addBranches(tree treeprint.Tree, n *mergesort.Node[float64]) {
	for _, child := range []*mergesort.Node[float64]{n.Left, n.Right} {
		if child == nil {
			continue
		}
		if child.IsLeaf() {
			tree.AddNode(label(child))
			continue
		}
		addBranches(tree.AddBranch(label(child)), child)
	}
}

func label(n *mergesort.Node[float64]) string {
	if n.Initial == nil {
		return fmt.Sprintf("[%s]", input.Format(n.Result))
	}
	return fmt.Sprintf("[%s] -> [%s]", input.Format(n.Initial), input.Format(n.Result))
}
