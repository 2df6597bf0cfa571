package mergesort

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortExample(t *testing.T) {
	assert := assert.New(t)

	root := Sort([]float64{5, 3, 8, 1})
	assert.Equal([]float64{1, 3, 5, 8}, root.Result)
	assert.Equal([]float64{5, 3, 8, 1}, root.Initial)

	require.NotNil(t, root.Left)
	require.NotNil(t, root.Right)
	assert.Equal([]float64{5, 3}, root.Left.Initial)
	assert.Equal([]float64{3, 5}, root.Left.Result)
	assert.Equal([]float64{8, 1}, root.Right.Initial)
	assert.Equal([]float64{1, 8}, root.Right.Result)

	for _, child := range []*Node[float64]{root.Left, root.Right} {
		require.NotNil(t, child.Left)
		require.NotNil(t, child.Right)
		assert.True(child.Left.IsLeaf())
		assert.True(child.Right.IsLeaf())
		assert.Nil(child.Left.Initial)
		assert.Nil(child.Right.Initial)
	}
	assert.Equal([]float64{5}, root.Left.Left.Result)
	assert.Equal([]float64{3}, root.Left.Right.Result)
	assert.Equal([]float64{8}, root.Right.Left.Result)
	assert.Equal([]float64{1}, root.Right.Right.Result)
}

func TestSortFullTree(t *testing.T) {
	want := &Node[float64]{
		Result:  []float64{4, 4, 4},
		Initial: []float64{4, 4, 4},
		Left:    &Node[float64]{Result: []float64{4}},
		Right: &Node[float64]{
			Result:  []float64{4, 4},
			Initial: []float64{4, 4},
			Left:    &Node[float64]{Result: []float64{4}},
			Right:   &Node[float64]{Result: []float64{4}},
		},
	}
	if diff := gocmp.Diff(want, Sort([]float64{4, 4, 4})); diff != "" {
		t.Errorf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestSortBaseCase(t *testing.T) {
	assert := assert.New(t)

	empty := Sort([]float64{})
	assert.True(empty.IsLeaf())
	assert.Equal([]float64{}, empty.Result)
	assert.Nil(empty.Initial)

	// nil input still produces a non-nil empty result
	fromNil := Sort(nil)
	assert.NotNil(fromNil.Result)
	assert.Empty(fromNil.Result)

	single := Sort([]float64{7})
	assert.True(single.IsLeaf())
	assert.Equal([]float64{7}, single.Result)
	assert.Nil(single.Initial)
}

func TestSortDoesNotAliasInput(t *testing.T) {
	assert := assert.New(t)

	input := []float64{3, 1, 2}
	root := Sort(input)
	assert.Equal([]float64{3, 1, 2}, input)

	input[0] = 100
	assert.Equal([]float64{3, 1, 2}, root.Initial)
	assert.Equal([]float64{1, 2, 3}, root.Result)

	single := []float64{9}
	leaf := Sort(single)
	single[0] = 0
	assert.Equal([]float64{9}, leaf.Result)
}

func TestSortMixedValues(t *testing.T) {
	root := Sort([]float64{2.5, -1, 0, -1, 1e3, -7.25, 0.5})
	assert.Equal(t, []float64{-7.25, -1, -1, 0, 0.5, 2.5, 1e3}, root.Result)
}

func TestSortProperties(t *testing.T) {
	assert := assert.New(t)
	rng := rand.New(rand.NewSource(42))

	for n := 0; n <= 65; n++ {
		input := make([]float64, n)
		for i := range input {
			// small range to force plenty of duplicates
			input[i] = float64(rng.Intn(21)-10) / 2
		}
		root := Sort(input)

		assert.True(slices.IsSorted(root.Result), "sorted n=%d", n)

		want := slices.Clone(input)
		slices.Sort(want)
		assert.Equal(want, root.Result, "permutation n=%d", n)

		if n >= 1 {
			assert.Equal(2*n-1, Count(root), "node count n=%d", n)
		}
		if n > 1 {
			assert.Equal(int(math.Ceil(math.Log2(float64(n)))), Depth(root), "depth n=%d", n)
		} else {
			assert.True(root.IsLeaf())
		}
	}
}

func TestTreeInvariants(t *testing.T) {
	root := Sort([]float64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 5})
	Walk(root, func(n *Node[float64], depth int) bool {
		if n.IsLeaf() {
			assert.LessOrEqual(t, len(n.Result), 1)
			return true
		}
		require.NotNil(t, n.Left)
		require.NotNil(t, n.Right)
		assert.Equal(t, Merge(n.Left.Result, n.Right.Result), n.Result)
		assert.Equal(t, len(n.Initial)/2, len(n.Left.Result))
		assert.Equal(t, n.Initial, append(slices.Clone(n.Left.leafInputs()), n.Right.leafInputs()...))
		return true
	})
}

// leafInputs reassembles the input of a node from its leaves.
func (n *Node[E]) leafInputs() []E {
	var out []E
	for _, leaf := range Leaves(n) {
		out = append(out, leaf.Result...)
	}
	return out
}

func TestMerge(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]float64{1, 2, 3, 4}, Merge([]float64{1, 3}, []float64{2, 4}))
	assert.Equal([]float64{1, 2}, Merge([]float64{}, []float64{1, 2}))
	assert.Equal([]float64{1, 2}, Merge([]float64{1, 2}, nil))
	assert.Equal([]float64{}, Merge(nil, nil))
	assert.Equal([]float64{-1, 0, 0, 5, 5, 9}, Merge([]float64{0, 5, 9}, []float64{-1, 0, 5}))

	left := []float64{1, 3}
	right := []float64{2}
	Merge(left, right)
	assert.Equal([]float64{1, 3}, left)
	assert.Equal([]float64{2}, right)
}

func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		left := make([]float64, rng.Intn(10))
		right := make([]float64, rng.Intn(10))
		for j := range left {
			left[j] = float64(rng.Intn(10))
		}
		for j := range right {
			right[j] = float64(rng.Intn(10))
		}
		slices.Sort(left)
		slices.Sort(right)

		merged := Merge(left, right)
		require.True(t, slices.IsSorted(merged))

		want := append(slices.Clone(left), right...)
		slices.Sort(want)
		require.Equal(t, want, merged)
	}
}

type tagged struct {
	key float64
	id  int
}

func compareTagged(a, b tagged) int {
	return cmp.Compare(a.key, b.key)
}

func TestSortFuncStable(t *testing.T) {
	assert := assert.New(t)

	// two equal values: the one that started on the left must come out first
	pair := SortFunc([]tagged{{2, 0}, {2, 1}}, compareTagged)
	assert.Equal([]tagged{{2, 0}, {2, 1}}, pair.Result)
	assert.Equal(pair.Left.Result[0], pair.Result[0])
	assert.Equal(pair.Right.Result[0], pair.Result[1])

	input := []tagged{{3, 0}, {1, 1}, {3, 2}, {2, 3}, {1, 4}, {3, 5}, {2, 6}}
	root := SortFunc(input, compareTagged)
	want := slices.Clone(input)
	slices.SortStableFunc(want, compareTagged)
	assert.Equal(want, root.Result)
}

func TestMergeFuncTieTakesLeft(t *testing.T) {
	left := []tagged{{1, 0}, {2, 1}}
	right := []tagged{{1, 2}, {2, 3}}
	got := MergeFunc(left, right, compareTagged)
	assert.Equal(t, []tagged{{1, 0}, {1, 2}, {2, 1}, {2, 3}}, got)
}

func TestVisualize(t *testing.T) {
	assert := assert.New(t)

	single := Visualize([]float64{7})
	assert.True(single.IsLeaf())
	assert.Equal([]float64{7}, single.Initial)
	assert.Equal([]float64{7}, single.Result)

	empty := Visualize(nil)
	assert.True(empty.IsLeaf())
	assert.Equal([]float64{}, empty.Initial)
	assert.Equal([]float64{}, empty.Result)

	root := Visualize([]float64{5, 3, 8, 1})
	assert.Equal(Sort([]float64{5, 3, 8, 1}), root)
}
