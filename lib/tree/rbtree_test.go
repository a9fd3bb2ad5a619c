package tree

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type checkData struct {
	color RBColor
	key   uint64
}

func rbtreeColorsAndKeys(tree RBTree[uint64]) []checkData {
	res := make([]checkData, 0, tree.Len())
	tree.Foreach(func(idx int64, color RBColor, key uint64) bool {
		res = append(res, checkData{color, key})
		return true
	})
	return res
}

func requireRBTree(t *testing.T, tree RBTree[uint64], expected []checkData) {
	t.Helper()
	require.Equal(t, int64(len(expected)), tree.Len())
	require.Equal(t, expected, rbtreeColorsAndKeys(tree))
	require.NoError(t, tree.Validate())
}

func TestRBTree_NilTree(t *testing.T) {
	var tree *rbTree[uint64]
	require.ErrorIs(t, tree.Insert(1), ErrRBTreeNil)
	require.ErrorIs(t, tree.Delete(1), ErrRBTreeNil)
	require.False(t, tree.Search(1))
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	_, ok := tree.Min()
	require.False(t, ok)
	_, err := tree.RemoveMin()
	require.ErrorIs(t, err, ErrRBTreeNil)
	require.ErrorIs(t, tree.Validate(), ErrRBTreeNil)
	require.ErrorIs(t, Validate[uint64](nil), ErrRBTreeNil)
	tree.Release()
}

func TestRBTree_Init(t *testing.T) {
	tree := NewRBTree[uint64]()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.False(t, tree.Search(0))
	_, ok := tree.Max()
	require.False(t, ok)
	require.Empty(t, slices.Collect(tree.Keys()))
	require.NoError(t, tree.Validate())
	_, err := tree.RemoveMin()
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
	tree.Release()
}

func TestRBTreeLeftAndRightRotate_Pred(t *testing.T) {
	type opType uint8
	const (
		Insert opType = iota
		Remove
	)
	type action struct {
		a        opType
		key      uint64
		expected []checkData
	}
	testcases := []struct {
		name    string
		rbtree  RBTree[uint64]
		actions []action
	}{
		{
			name:   "pred",
			rbtree: NewRBTree[uint64](),
			actions: []action{
				{
					Insert, 52, []checkData{
						{Black, 52},
					},
				},
				{
					Insert, 47, []checkData{
						{Red, 47}, {Black, 52},
					},
				},
				{
					Insert, 3, []checkData{
						{Red, 3}, {Black, 47}, {Red, 52},
					},
				},
				{
					Insert, 35, []checkData{
						{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52},
					},
				},
				{
					Insert, 24, []checkData{
						{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52},
					},
				},
				{
					Remove, 24, []checkData{
						{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52},
					},
				},
				{
					Remove, 47, []checkData{
						{Black, 3}, {Black, 35}, {Black, 52},
					},
				},
				{
					Remove, 52, []checkData{
						{Red, 3}, {Black, 35},
					},
				},
				{
					Remove, 3, []checkData{
						{Black, 35},
					},
				},
				{
					Remove, 35, []checkData{},
				},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			for _, act := range tc.actions {
				switch act.a {
				case Insert:
					require.NoError(tt, tc.rbtree.Insert(act.key))
				case Remove:
					require.NoError(tt, tc.rbtree.Delete(act.key))
				}
				requireRBTree(tt, tc.rbtree, act.expected)
			}
			require.Nil(tt, tc.rbtree.Root())
		})
	}
}

func TestRBTree_RemoveMin(t *testing.T) {
	tree := NewRBTree[uint64]()
	for _, key := range []uint64{52, 47, 3, 35, 24} {
		require.NoError(t, tree.Insert(key))
	}
	requireRBTree(t, tree, []checkData{
		{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52},
	})

	expected := [][]checkData{
		{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}},
		{{Black, 35}, {Black, 47}, {Black, 52}},
		{{Black, 47}, {Red, 52}},
		{{Black, 52}},
		{},
	}
	for i, key := range []uint64{3, 24, 35, 47, 52} {
		k, ok := tree.Min()
		require.True(t, ok)
		require.Equal(t, key, k)
		k, err := tree.RemoveMin()
		require.NoError(t, err)
		require.Equal(t, key, k)
		requireRBTree(t, tree, expected[i])
	}
	_, err := tree.RemoveMin()
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
}

// Each case removes a black leaf whose sibling shape selects one delete
// fixup path, for the left child and its mirror.
func TestRBTree_RemoveRebalanceCases(t *testing.T) {
	testcases := []struct {
		name     string
		inserts  []uint64
		removes  []uint64
		expected []checkData
	}{
		{
			name:     "sibling red left",
			inserts:  []uint64{10, 5, 20, 15, 25, 30},
			removes:  []uint64{5},
			expected: []checkData{{Black, 10}, {Red, 15}, {Black, 20}, {Black, 25}, {Red, 30}},
		},
		{
			name:     "sibling red right",
			inserts:  []uint64{30, 35, 20, 25, 15, 10},
			removes:  []uint64{35},
			expected: []checkData{{Red, 10}, {Black, 15}, {Black, 20}, {Red, 25}, {Black, 30}},
		},
		{
			name:     "near red left",
			inserts:  []uint64{10, 5, 20, 15},
			removes:  []uint64{5},
			expected: []checkData{{Black, 10}, {Black, 15}, {Black, 20}},
		},
		{
			name:     "near red right",
			inserts:  []uint64{10, 5, 20, 7},
			removes:  []uint64{20},
			expected: []checkData{{Black, 5}, {Black, 7}, {Black, 10}},
		},
		{
			name:     "far red left",
			inserts:  []uint64{10, 5, 20, 25},
			removes:  []uint64{5},
			expected: []checkData{{Black, 10}, {Black, 20}, {Black, 25}},
		},
		{
			name:     "far red right",
			inserts:  []uint64{10, 5, 20, 3},
			removes:  []uint64{20},
			expected: []checkData{{Black, 3}, {Black, 5}, {Black, 10}},
		},
		{
			name:     "both black",
			inserts:  []uint64{10, 5, 20, 30},
			removes:  []uint64{30, 5},
			expected: []checkData{{Black, 10}, {Red, 20}},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[uint64]()
			for _, key := range tc.inserts {
				require.NoError(tt, tree.Insert(key))
				require.NoError(tt, tree.Validate())
			}
			for _, key := range tc.removes {
				require.NoError(tt, tree.Delete(key))
			}
			requireRBTree(tt, tree, tc.expected)
		})
	}
}

func TestRBTree_RemoveBorrowSucc(t *testing.T) {
	pred := NewRBTree[uint64]()
	succ := NewRBTree[uint64](WithRBTreeRemoveBorrowSucc[uint64]())
	for _, key := range []uint64{20, 10, 30} {
		require.NoError(t, pred.Insert(key))
		require.NoError(t, succ.Insert(key))
	}

	require.NoError(t, pred.Delete(20))
	require.Equal(t, uint64(10), pred.Root().Key())
	requireRBTree(t, pred, []checkData{{Black, 10}, {Red, 30}})

	require.NoError(t, succ.Delete(20))
	require.Equal(t, uint64(30), succ.Root().Key())
	requireRBTree(t, succ, []checkData{{Red, 10}, {Black, 30}})
}

func TestRBTree_OrderedInsertAndDelete(t *testing.T) {
	tree := NewRBTree[uint64]()
	keys := []uint64{10, 20, 30, 40, 50}
	for _, key := range keys {
		require.NoError(t, tree.Insert(key))
		require.NoError(t, tree.Validate())
	}
	require.Equal(t, keys, slices.Collect(tree.Keys()))
	root := tree.Root()
	require.NotNil(t, root)
	require.Equal(t, uint64(20), root.Key())
	require.Equal(t, Black, root.Color())
	require.Nil(t, root.Parent())
	require.Equal(t, uint64(10), root.Left().Key())
	require.Equal(t, uint64(40), root.Right().Key())
	require.Equal(t, uint64(30), root.Right().Left().Key())
	require.Equal(t, uint64(50), root.Right().Right().Key())
	require.Equal(t, Red, root.Right().Left().Color())
	require.Nil(t, root.Left().Left())

	for _, key := range []uint64{30, 10, 50} {
		require.NoError(t, tree.Delete(key))
		require.NoError(t, tree.Validate())
	}
	require.Equal(t, []uint64{20, 40}, slices.Collect(tree.Keys()))
	require.Equal(t, int64(2), tree.Len())
}

func TestRBTree_DuplicateAndAbsent(t *testing.T) {
	tree := NewRBTree[uint64]()
	for _, key := range []uint64{10, 20, 30, 40, 50} {
		require.NoError(t, tree.Insert(key))
	}
	before := rbtreeColorsAndKeys(tree)

	err := tree.Insert(30)
	require.ErrorIs(t, err, ErrRBTreeKeyDuplicated)
	require.True(t, IsNoop(err))
	require.Equal(t, before, rbtreeColorsAndKeys(tree))
	require.Equal(t, int64(5), tree.Len())

	err = tree.Delete(35)
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
	require.True(t, IsNoop(err))
	require.Equal(t, before, rbtreeColorsAndKeys(tree))

	for _, key := range []uint64{10, 30, 50} {
		require.True(t, tree.Search(key))
	}
	for _, key := range []uint64{0, 15, 60} {
		require.False(t, tree.Search(key))
	}
	require.False(t, IsNoop(nil))
	require.False(t, IsNoop(ErrRBTreeAllocFailed))
}

func TestRBTree_NodeLimit(t *testing.T) {
	tree := NewRBTree[uint64](WithRBTreeNodeLimit[uint64](3))
	for _, key := range []uint64{1, 2, 3} {
		require.NoError(t, tree.Insert(key))
	}
	before := rbtreeColorsAndKeys(tree)

	err := tree.Insert(4)
	require.ErrorIs(t, err, ErrRBTreeAllocFailed)
	require.False(t, IsNoop(err))
	require.Equal(t, before, rbtreeColorsAndKeys(tree))
	require.False(t, tree.Search(4))
	require.NoError(t, tree.Validate())

	// Duplicates are reported before allocation.
	require.ErrorIs(t, tree.Insert(2), ErrRBTreeKeyDuplicated)

	require.NoError(t, tree.Delete(1))
	require.NoError(t, tree.Insert(4))
	require.Equal(t, []uint64{2, 3, 4}, slices.Collect(tree.Keys()))
	require.NoError(t, tree.Validate())
}

func TestRBTree_Release(t *testing.T) {
	tree := NewRBTree[uint64](WithRBTreePrealloc[uint64](16))
	for i := uint64(0); i < 100; i++ {
		require.NoError(t, tree.Insert(i))
	}
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.False(t, tree.Search(1))
	require.ErrorIs(t, tree.Insert(1), ErrRBTreeReleased)
	require.ErrorIs(t, tree.Delete(1), ErrRBTreeReleased)
	require.ErrorIs(t, tree.Validate(), ErrRBTreeReleased)
	require.Empty(t, slices.Collect(tree.Keys()))
	require.False(t, IsNoop(tree.Insert(1)))
	tree.Release()

	empty := NewRBTree[uint64]()
	empty.Release()
	require.ErrorIs(t, empty.Insert(1), ErrRBTreeReleased)
}

func TestRBTree_Desc(t *testing.T) {
	tree := NewRBTree[int64](WithRBTreeDesc[int64]())
	keys := lo.Shuffle(lo.Range(200))
	for _, key := range keys {
		require.NoError(t, tree.Insert(int64(key)))
	}
	require.NoError(t, tree.Validate())

	expected := make([]int64, 0, 200)
	for i := int64(199); i >= 0; i-- {
		expected = append(expected, i)
	}
	require.Equal(t, expected, slices.Collect(tree.Keys()))

	k, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, int64(199), k)
	k, ok = tree.Max()
	require.True(t, ok)
	require.Equal(t, int64(0), k)
	k, err := tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, int64(199), k)
	require.Equal(t, int64(-1), tree.Compare(2, 1))
}

func TestRBTree_Keys(t *testing.T) {
	tree := NewRBTree[int32]()
	for _, key := range []int32{5, -3, 9, 0, 7} {
		require.NoError(t, tree.Insert(key))
	}
	expected := []int32{-3, 0, 5, 7, 9}
	require.Equal(t, expected, slices.Collect(tree.Keys()))
	require.Equal(t, expected, slices.Collect(tree.Keys()))

	seq := tree.Keys()
	got := make([]int32, 0, 2)
	for key := range seq {
		got = append(got, key)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []int32{-3, 0}, got)
	require.Equal(t, expected, slices.Collect(seq))

	idxes := make([]int64, 0, 5)
	tree.Foreach(func(idx int64, color RBColor, key int32) bool {
		idxes = append(idxes, idx)
		return key < 5
	})
	require.Equal(t, []int64{0, 1, 2}, idxes)
}

func TestRBTree_Float(t *testing.T) {
	tree := NewRBTree[float64]()
	for _, key := range []float64{1.5, -0.25, 3.75, 0} {
		require.NoError(t, tree.Insert(key))
	}
	require.ErrorIs(t, tree.Insert(1.5), ErrRBTreeKeyDuplicated)
	require.Equal(t, []float64{-0.25, 0, 1.5, 3.75}, slices.Collect(tree.Keys()))
	require.NoError(t, tree.Validate())
}

func TestFprint(t *testing.T) {
	tree := NewRBTree[int]()
	for _, key := range []int{30, 10, 20} {
		require.NoError(t, tree.Insert(key))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, Fprint[int](buf, tree))
	require.Equal(t, "10\n20\n30\n", buf.String())

	buf.Reset()
	require.NoError(t, Fprint[int](buf, NewRBTree[int]()))
	require.Empty(t, buf.String())
	require.ErrorIs(t, Fprint[int](buf, nil), ErrRBTreeNil)
}

type failWriter struct{}

var errWrite = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestFprint_WriteError(t *testing.T) {
	tree := NewRBTree[int]()
	require.NoError(t, tree.Insert(1))
	require.ErrorIs(t, Fprint[int](failWriter{}, tree), errWrite)
}

func TestRBTree_ManyOrdered(t *testing.T) {
	for _, opts := range [][]RBTreeOpt[uint64]{
		nil,
		{WithRBTreeRemoveBorrowSucc[uint64]()},
	} {
		tree := NewRBTree[uint64](opts...)
		const n = 1000
		for i := uint64(0); i < n; i++ {
			require.NoError(t, tree.Insert(i))
		}
		require.NoError(t, tree.Validate())
		require.Equal(t, lo.RangeFrom[uint64](0, n), slices.Collect(tree.Keys()))

		// Delete the even keys ascending, then the odd keys descending.
		for i := uint64(0); i < n; i += 2 {
			require.NoError(t, tree.Delete(i))
		}
		require.NoError(t, tree.Validate())
		for i := int64(n - 1); i >= 0; i -= 2 {
			require.NoError(t, tree.Delete(uint64(i)))
			if i%100 == 1 {
				require.NoError(t, tree.Validate())
			}
		}
		require.Equal(t, int64(0), tree.Len())
		require.Nil(t, tree.Root())
	}
}

// The tree is checked against a map model after every operation.
func TestRBTree_RandomModel(t *testing.T) {
	for _, opts := range [][]RBTreeOpt[int64]{
		nil,
		{WithRBTreeRemoveBorrowSucc[int64]()},
		{WithRBTreeDesc[int64]()},
	} {
		rng := rand.New(rand.NewPCG(42, 1024))
		tree := NewRBTree[int64](opts...)
		model := make(map[int64]struct{}, 512)
		for i := 0; i < 5000; i++ {
			key := rng.Int64N(512)
			_, exists := model[key]
			if rng.IntN(3) > 0 {
				err := tree.Insert(key)
				if exists {
					require.ErrorIs(t, err, ErrRBTreeKeyDuplicated)
				} else {
					require.NoError(t, err)
					model[key] = struct{}{}
				}
			} else {
				err := tree.Delete(key)
				if exists {
					require.NoError(t, err)
					delete(model, key)
				} else {
					require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
				}
			}
			require.Equal(t, int64(len(model)), tree.Len())
			require.NoError(t, tree.Validate(), "op %d key %d", i, key)
		}
		require.NoError(t, tree.Validate())
		expected := lo.Keys(model)
		slices.SortFunc(expected, func(a, b int64) int {
			return int(tree.Compare(a, b))
		})
		require.Equal(t, expected, slices.Collect(tree.Keys()))
		tree.Release()
	}
}

// Random keys with duplicates, delete a random half, the other half stays.
func TestRBTree_RandomHalfRemove(t *testing.T) {
	n := 1_000_000
	if testing.Short() {
		n = 10_000
	}
	rng := rand.New(rand.NewPCG(7, 7))
	tree := NewRBTree[uint32](WithRBTreePrealloc[uint32](n))
	keys := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		key := rng.Uint32N(uint32(n) * 4)
		if err := tree.Insert(key); err == nil {
			keys = append(keys, key)
		} else {
			require.ErrorIs(t, err, ErrRBTreeKeyDuplicated)
		}
	}
	require.Equal(t, int64(len(keys)), tree.Len())
	require.NoError(t, tree.Validate())

	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	half := len(keys) / 2
	for _, key := range keys[:half] {
		require.NoError(t, tree.Delete(key))
	}
	require.NoError(t, tree.Validate())
	require.Equal(t, int64(len(keys)-half), tree.Len())
	for _, key := range keys[:half] {
		require.False(t, tree.Search(key))
	}
	for _, key := range keys[half:] {
		require.True(t, tree.Search(key))
	}
	tree.Release()
}

func TestRBTreeValidate_Violations(t *testing.T) {
	build := func() *rbTree[uint64] {
		tree := NewRBTree[uint64]().(*rbTree[uint64])
		for _, key := range []uint64{52, 47, 3, 35, 24} {
			require.NoError(t, tree.Insert(key))
		}
		require.NoError(t, tree.Validate())
		return tree
	}
	// 47B(24B(3R,35R),52B)
	testcases := []struct {
		name     string
		corrupt  func(tree *rbTree[uint64])
		expected error
	}{
		{
			name: "order",
			corrupt: func(tree *rbTree[uint64]) {
				n := tree.node(tree.search(35))
				n.key = 50
			},
			expected: ErrRBTreeOrderViolation,
		},
		{
			name: "root color",
			corrupt: func(tree *rbTree[uint64]) {
				tree.node(tree.root).color = Red
			},
			expected: ErrRBTreeRootColorViolation,
		},
		{
			name: "red",
			corrupt: func(tree *rbTree[uint64]) {
				tree.node(tree.search(24)).color = Red
			},
			expected: ErrRBTreeRedViolation,
		},
		{
			name: "black",
			corrupt: func(tree *rbTree[uint64]) {
				tree.node(tree.search(3)).color = Black
			},
			expected: ErrRBTreeBlackViolation,
		},
		{
			name: "link",
			corrupt: func(tree *rbTree[uint64]) {
				tree.node(tree.search(3)).parent = tree.search(52)
			},
			expected: ErrRBTreeLinkViolation,
		},
		{
			name: "count",
			corrupt: func(tree *rbTree[uint64]) {
				tree.count++
			},
			expected: ErrRBTreeLinkViolation,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := build()
			tc.corrupt(tree)
			err := tree.Validate()
			require.ErrorIs(tt, err, tc.expected)
			require.ErrorIs(tt, err, ErrRBTreeInvariantViolated)
		})
	}
}

func TestRBTreeValidate_Combined(t *testing.T) {
	tree := NewRBTree[uint64]().(*rbTree[uint64])
	for _, key := range []uint64{2, 1, 3} {
		require.NoError(t, tree.Insert(key))
	}
	tree.node(tree.root).color = Red
	tree.node(tree.search(1)).key = 9
	err := Validate[uint64](tree)
	require.ErrorIs(t, err, ErrRBTreeRootColorViolation)
	require.ErrorIs(t, err, ErrRBTreeOrderViolation)
	require.ErrorIs(t, err, ErrRBTreeRedViolation)
	require.True(t, strings.Contains(err.Error(), "root 2"))
}

func TestRBTreeDelete_BrokenBlackHeight(t *testing.T) {
	type testcase struct {
		name     string
		corrupt  func(tree *rbTree[uint64])
		remove   uint64
		expected error
	}
	testcases := []testcase{
		{
			// A black leaf without a sibling cannot be rebalanced.
			name: "leaf without sibling",
			corrupt: func(tree *rbTree[uint64]) {
				for _, key := range []uint64{2, 1} {
					require.NoError(t, tree.Insert(key))
				}
				tree.node(tree.search(1)).color = Black
			},
			remove:   1,
			expected: ErrRBTreeBlackViolation,
		},
		{
			// BB recolors 3 and climbs to 2, which has no sibling.
			name: "ancestor without sibling",
			corrupt: func(tree *rbTree[uint64]) {
				for _, key := range []uint64{4, 2, 6, 1, 3, 5, 7} {
					require.NoError(t, tree.Insert(key))
				}
				for _, key := range []uint64{1, 3, 5, 7} {
					tree.node(tree.search(key)).color = Black
				}
				for _, key := range []uint64{5, 7, 6} {
					tree.arena.recycle(tree.search(key))
				}
				tree.node(tree.root).right = nilIdx
				tree.count = 4
			},
			remove:   1,
			expected: ErrRBTreeBlackViolation,
		},
		{
			// The red sibling 4 has a red near child 3.
			name: "red sibling with red near child",
			corrupt: func(tree *rbTree[uint64]) {
				for _, key := range []uint64{2, 1, 4, 3, 5} {
					require.NoError(t, tree.Insert(key))
				}
				tree.node(tree.search(4)).color = Red
			},
			remove:   1,
			expected: ErrRBTreeBlackViolation,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewRBTree[uint64]().(*rbTree[uint64])
			tc.corrupt(tree)
			before := rbtreeColorsAndKeys(tree)
			beforeLen := tree.Len()

			err := tree.Delete(tc.remove)
			require.ErrorIs(tt, err, tc.expected)
			require.ErrorIs(tt, err, ErrRBTreeInvariantViolated)
			require.False(tt, IsNoop(err))
			require.Equal(tt, before, rbtreeColorsAndKeys(tree))
			require.Equal(tt, beforeLen, tree.Len())
			require.True(tt, tree.Search(tc.remove))
		})
	}
}

func BenchmarkRBTree_Insert(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	tree := NewRBTree[uint64](WithRBTreePrealloc[uint64](b.N))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(rng.Uint64())
	}
}

func BenchmarkRBTree_InsertDelete(b *testing.B) {
	tree := NewRBTree[uint64]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(uint64(i))
		if i%2 == 1 {
			_ = tree.Delete(uint64(i - 1))
		}
	}
}

func BenchmarkRBTree_Search(b *testing.B) {
	tree := NewRBTree[uint64]()
	for i := uint64(0); i < 1<<16; i++ {
		_ = tree.Insert(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Search(uint64(i) & (1<<16 - 1))
	}
}
