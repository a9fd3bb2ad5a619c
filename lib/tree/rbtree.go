package tree

import (
	"iter"

	"github.com/benz9527/xrbtree/lib/infra"
)

var _ RBTree[int] = (*rbTree[int])(nil)

type rbTree[K infra.OrderedKey] struct {
	arena          *rbArena[K]
	stats          *rbTreeStats
	kcmp           infra.OrderedKeyComparator[K]
	root           uint32
	count          int64
	isDesc         bool
	isRmBorrowSucc bool
	isReleased     bool
}

func (tree *rbTree[K]) Compare(i, j K) int64 {
	return tree.kcmp(i, j)
}

func (tree *rbTree[K]) Len() int64 {
	if tree == nil {
		return 0
	}
	return tree.count
}

func (tree *rbTree[K]) Root() RBNode[K] {
	if tree.usable() != nil {
		return nil
	}
	return tree.ref(tree.root)
}

func (tree *rbTree[K]) usable() error {
	if tree == nil {
		return ErrRBTreeNil
	}
	if tree.isReleased {
		return ErrRBTreeReleased
	}
	return nil
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K]) leftRotate(x uint32) {
	if x == nilIdx || tree.node(x).right == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	xn := tree.node(x)
	p, y := xn.parent, xn.right
	yn := tree.node(y)
	dir := tree.direction(x)
	xn.right, yn.left = yn.left, x

	tree.fixLink(x)
	tree.fixLink(y)

	switch dir {
	case Root:
		tree.root = y
	case Left:
		tree.node(p).left = y
	case Right:
		tree.node(p).right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	yn.parent = p
	tree.stats.RecordRotation(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K]) rightRotate(x uint32) {
	if x == nilIdx || tree.node(x).left == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	xn := tree.node(x)
	p, y := xn.parent, xn.left
	yn := tree.node(y)
	dir := tree.direction(x)
	xn.left, yn.right = yn.right, x

	tree.fixLink(x)
	tree.fixLink(y)

	switch dir {
	case Root:
		tree.root = y
	case Left:
		tree.node(p).left = y
	case Right:
		tree.node(p).right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	yn.parent = p
	tree.stats.RecordRotation(Right)
}

// Insert descends to the leaf position of key, links a new red node and
// rebalances from it. The node is allocated before any link is written,
// so an allocation failure leaves the tree untouched.
func (tree *rbTree[K]) Insert(key K) error {
	if err := tree.usable(); err != nil {
		return err
	}

	var (
		x, y = tree.root, nilIdx
		res  int64
	)
	for x != nilIdx {
		y = x
		if res = tree.kcmp(key, tree.node(x).key); /* equal */ res == 0 {
			tree.stats.RecordInsert(statsResultDuplicated)
			return ErrRBTreeKeyDuplicated
		} else /* less */ if res < 0 {
			x = tree.node(x).left
		} else /* greater */ {
			x = tree.node(x).right
		}
	}

	z, err := tree.arena.allocate(key)
	if err != nil {
		tree.stats.RecordInsert(statsResultAllocFailed)
		return err
	}
	tree.node(z).parent = y
	if y == nilIdx {
		tree.root = z
	} else if res < 0 {
		tree.node(y).left = z
	} else {
		tree.node(y).right = z
	}

	tree.count++
	tree.insertRebalance(z)
	tree.stats.RecordInsert(statsResultOK)
	return nil
}

type rbInsertCase uint8

const (
	insUncleRed rbInsertCase = iota
	insTriangle
	insLine
)

func (c rbInsertCase) String() string {
	switch c {
	case insUncleRed:
		return "uncle-red"
	case insTriangle:
		return "triangle"
	case insLine:
		return "line"
	default:
	}
	return "unknown"
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

X is root: repaint X into black. Done.

X's parent P is black: nothing violated. Done.

Uncle red: both the parent P and the uncle U are red, so grandpa G is black.
Repaint P and U into black and G into red. G may now be red under a red
parent, continue with G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

Triangle: P is red, U is black, X is the inner grandchild of G.
Rotate P away from X, the old P becomes the outer grandchild and the line
case below resolves it.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

Line: P is red, U is black, X and P lean to the same side.
Rotate G toward U and swap the colors of P and G. Done.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K]) insertRebalance(x uint32) {
	for {
		if x == tree.root {
			tree.node(x).color = Black
			return
		}

		p := tree.node(x).parent
		if tree.isBlack(p) {
			return
		}

		// A red parent is never the root.
		g := tree.node(p).parent
		if g == nilIdx {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] red parent without grandpa")
		}

		if u := tree.sibling(p); /* uncle red */ tree.isRed(u) {
			tree.stats.RecordRebalance(insUncleRed)
			tree.node(p).color = Black
			tree.node(u).color = Black
			tree.node(g).color = Red
			x = g
			continue
		}

		dir, pdir := tree.direction(x), tree.direction(p)
		if /* triangle */ dir != pdir {
			tree.stats.RecordRebalance(insTriangle)
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert violate (triangle)")
			}
			x, p = p, x
		}

		tree.stats.RecordRebalance(insLine)
		switch /* line */ pdir {
		case Left:
			tree.rightRotate(g)
		case Right:
			tree.leftRotate(g)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (line)")
		}
		pn, gn := tree.node(p), tree.node(g)
		pn.color, gn.color = gn.color, pn.color
		return
	}
}

func (tree *rbTree[K]) search(key K) uint32 {
	for aux := tree.root; aux != nilIdx; {
		res := tree.kcmp(key, tree.node(aux).key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = tree.node(aux).right
		} else {
			aux = tree.node(aux).left
		}
	}
	return nilIdx
}

func (tree *rbTree[K]) Search(key K) bool {
	if tree.usable() != nil {
		return false
	}
	return tree.search(key) != nilIdx
}

func (tree *rbTree[K]) Min() (K, bool) {
	var k K
	if tree.usable() != nil || tree.root == nilIdx {
		return k, false
	}
	return tree.node(tree.minimum(tree.root)).key, true
}

func (tree *rbTree[K]) Max() (K, bool) {
	var k K
	if tree.usable() != nil || tree.root == nilIdx {
		return k, false
	}
	return tree.node(tree.maximum(tree.root)).key, true
}

/*
The node to remove is reduced to a leaf first. While the node X still has
a child, its key is replaced by the key of its pred (if X has a left child)
or its succ, and the reduction continues from that pred or succ.

Find pred:

	  |                    |
	  X                    L
	 / \                  / \
	L  ..   copy(L, X)   L  ..
	   ..   =========>      ..
	 continue from L

Find succ (X has only a right child):

	 |                    |
	 X                    S
	  \    copy(S, X)      \
	   S   =========>       S
	continue from S

The slot finally unlinked is always that leaf.
A red leaf is unlinked directly. A black leaf is rebalanced first, the
rebalance needs its parent and sibling. A corrupted tree whose black leaf
cannot be rebalanced fails with ErrRBTreeInvariantViolated and is left
untouched.
*/
func (tree *rbTree[K]) Delete(key K) error {
	if err := tree.usable(); err != nil {
		return err
	}

	z := tree.search(key)
	if z == nilIdx {
		tree.stats.RecordRemove(statsResultNotFound)
		return ErrRBTreeKeyNotFound
	}

	// Nothing is written before the black leaf is known to be rebalanceable.
	y := tree.leafOf(z)
	if tree.isBlack(y) {
		if err := tree.checkRemoveRebalance(y); err != nil {
			tree.stats.RecordRemove(statsResultInvalidState)
			return err
		}
	}
	tree.reduceToLeaf(z)
	if tree.isBlack(y) {
		tree.removeRebalance(y)
	}
	tree.unlinkLeaf(y)
	tree.count--
	tree.stats.RecordRemove(statsResultOK)
	return nil
}

func (tree *rbTree[K]) RemoveMin() (K, error) {
	var k K
	if err := tree.usable(); err != nil {
		return k, err
	}
	if tree.root == nilIdx {
		return k, ErrRBTreeKeyNotFound
	}
	k = tree.node(tree.minimum(tree.root)).key
	return k, tree.Delete(k)
}

// borrowFrom is the node whose key replaces the key of z.
func (tree *rbTree[K]) borrowFrom(z uint32) uint32 {
	if zn := tree.node(z); zn.left != nilIdx && (!tree.isRmBorrowSucc || zn.right == nilIdx) {
		return tree.pred(z)
	}
	return tree.succ(z)
}

// leafOf is the leaf reduceToLeaf(z) ends at, no key is copied.
func (tree *rbTree[K]) leafOf(z uint32) uint32 {
	for !tree.isLeaf(z) {
		z = tree.borrowFrom(z)
	}
	return z
}

func (tree *rbTree[K]) reduceToLeaf(z uint32) uint32 {
	for !tree.isLeaf(z) {
		y := tree.borrowFrom(z)
		tree.node(z).key = tree.node(y).key
		z = y
	}
	return z
}

func (tree *rbTree[K]) unlinkLeaf(y uint32) {
	switch dir := tree.direction(y); dir {
	case Root:
		tree.root = nilIdx
	case Left:
		tree.node(tree.node(y).parent).left = nilIdx
	case Right:
		tree.node(tree.node(y).parent).right = nilIdx
	default:
	}
	tree.arena.recycle(y)
}

type rbRmCase uint8

const (
	rmSiblingRed rbRmCase = iota
	rmBothBlack
	rmNearRed
	rmFarRed
)

func (c rbRmCase) String() string {
	switch c {
	case rmSiblingRed:
		return "R"
	case rmBothBlack:
		return "BB"
	case rmNearRed:
		return "RB"
	case rmFarRed:
		return "BR"
	default:
	}
	return "unknown"
}

// siblingChildren returns the near child Sc (same side as a node on the
// dir side of S's parent) and the far child Sd of the sibling s.
func (tree *rbTree[K]) siblingChildren(s uint32, dir RBDirection) (sc, sd uint32) {
	switch dir {
	case Left:
		return tree.node(s).left, tree.node(s).right
	case Right:
		return tree.node(s).right, tree.node(s).left
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] remove violate (root has no sibling)")
}

// checkRemoveRebalance walks the path removeRebalance(x) takes without
// writing anything. It fails where removeRebalance would find no sibling
// to borrow a black from, which only happens on a corrupted tree.
func (tree *rbTree[K]) checkRemoveRebalance(x uint32) error {
	for !tree.isRed(x) && x != tree.root {
		s := tree.sibling(x)
		if s == nilIdx {
			return infra.WrapErrorStackWithMessage(ErrRBTreeBlackViolation, "[rbtree] double black node without sibling")
		}
		sc, sd := tree.siblingChildren(s, tree.direction(x))
		switch {
		case tree.isRed(s):
			// Sc becomes the sibling after the R rotation and has to be
			// black, then the next pass ends in BB, RB or BR.
			if sc == nilIdx || tree.isRed(sc) {
				return infra.WrapErrorStackWithMessage(ErrRBTreeBlackViolation, "[rbtree] red sibling without black near child")
			}
			return nil
		case tree.isRed(sc), tree.isRed(sd), tree.isRed(tree.node(x).parent):
			return nil
		default:
		}
		x = tree.node(x).parent
	}
	return nil
}

// rmCaseOf classifies the sibling S of a double black node by S's color
// and its near child Sc (same side as the node) and far child Sd.
func (tree *rbTree[K]) rmCaseOf(s, sc, sd uint32) rbRmCase {
	if tree.isRed(s) {
		return rmSiblingRed
	}
	if tree.isRed(sd) {
		return rmFarRed
	}
	if tree.isRed(sc) {
		return rmNearRed
	}
	return rmBothBlack
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black. A red X is repainted black and the loop stops,
so does a root X.

Sc is X's sibling's child on X's side (near), Sd the one on the opposite
side (far). The cases mirror when X is a right child.

R: The sibling S is red, so P, Sc and Sd are black.
Repaint S into black, P into red, rotate P toward X. X now has a black
sibling, loop again on X.

	  [P]                   <P>               [S]
	  / \      repaint      / \  l-rotate(P)  / \
	[X] <S>  ==========>  [X] [S]  ======>  <P> [Sd]
	    / \                   / \           / \
	 [Sc] [Sd]             [Sc] [Sd]      [X] [Sc]

BB: S, Sc and Sd are black. Repaint S into red. A red P is repainted
black and the loop stops, a black P carries the extra black, loop on P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

RB: S is black, Sc is red and Sd is black.
Repaint Sc into black and S into red, rotate S away from X. Sd is now red
on the far side, loop on X to reach BR.

	  {P}                   {P}                 {P}
	  / \       repaint     / \   r-rotate(S)   / \
	[X] [S]  ==========>  [X] <S>  ========>  [X] [Sc]
	    / \                   / \                   \
	  <Sc> [Sd]            [Sc] [Sd]                <S>
	                                                  \
	                                                  [Sd]

BR: S is black and Sd is red.
S takes P's color, P and Sd are repainted black, rotate P toward X. Done.

	  {P}                   {P}                {S}
	  / \      repaint      / \  l-rotate(P)   / \
	[X] [S]  ==========>  [X] {S}  =======>  [P] [Sd]
	    / \                   / \            / \
	 {Sc} <Sd>             {Sc} [Sd]       [X] {Sc}

The path is checked by checkRemoveRebalance beforehand.
*/
func (tree *rbTree[K]) removeRebalance(x uint32) {
	for {
		if tree.isRed(x) {
			tree.node(x).color = Black
			return
		}
		if x == tree.root {
			return
		}

		s := tree.sibling(x)
		if s == nilIdx {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (double black node without sibling)")
		}
		p := tree.node(x).parent
		dir := tree.direction(x)
		sc, sd := tree.siblingChildren(s, dir)

		rmCase := tree.rmCaseOf(s, sc, sd)
		tree.stats.RecordRebalance(rmCase)
		switch rmCase {
		case rmSiblingRed:
			tree.node(s).color = Black
			tree.node(p).color = Red
			tree.rotateToward(p, dir)
		case rmBothBlack:
			tree.node(s).color = Red
			if tree.isRed(p) {
				tree.node(p).color = Black
				return
			}
			x = p
		case rmNearRed:
			tree.node(sc).color = Black
			tree.node(s).color = Red
			tree.rotateToward(s, -dir)
		case rmFarRed:
			tree.node(s).color = tree.node(p).color
			tree.node(p).color = Black
			tree.node(sd).color = Black
			tree.rotateToward(p, dir)
			return
		}
	}
}

// rotateToward pivots x down to the dir side.
func (tree *rbTree[K]) rotateToward(x uint32, dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate toward the root direction")
	}
}

// Keys is the in-order traversal as a lazy sequence.
func (tree *rbTree[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.Foreach(func(_ int64, _ RBColor, key K) bool {
			return yield(key)
		})
	}
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	if tree.usable() != nil || tree.root == nilIdx {
		return
	}

	stack := make([]uint32, 0, 64)
	defer func() {
		clear(stack)
	}()

	for aux := tree.root; aux != nilIdx; aux = tree.node(aux).left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		n := tree.node(aux)
		if !action(idx, n.color, n.key) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = n.right; aux != nilIdx; aux = tree.node(aux).left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K]) Validate() error {
	return Validate[K](tree)
}

// Release returns every node to the arena in post-order, then drops the
// arena. Calling it again is a no-op.
func (tree *rbTree[K]) Release() {
	if tree.usable() != nil {
		return
	}
	tree.releaseSubtree(tree.root)
	tree.stats.RecordRelease(tree.count)
	tree.root = nilIdx
	tree.count = 0
	tree.arena.free()
	tree.isReleased = true
}

func (tree *rbTree[K]) releaseSubtree(idx uint32) {
	if idx == nilIdx {
		return
	}
	n := tree.node(idx)
	tree.releaseSubtree(n.left)
	tree.releaseSubtree(n.right)
	tree.arena.recycle(idx)
}

type RBTreeOpt[K infra.OrderedKey] func(*rbTree[K])

// WithRBTreeDesc orders the keys from the greatest to the least.
func WithRBTreeDesc[K infra.OrderedKey]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isDesc = true
	}
}

// WithRBTreeRemoveBorrowSucc reduces a removed node with a right child by
// its succ instead of its pred.
func WithRBTreeRemoveBorrowSucc[K infra.OrderedKey]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isRmBorrowSucc = true
	}
}

// WithRBTreeNodeLimit bounds the number of live nodes. An insert beyond
// the bound fails with ErrRBTreeAllocFailed.
func WithRBTreeNodeLimit[K infra.OrderedKey](limit int64) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.arena.limit = limit
	}
}

func WithRBTreePrealloc[K infra.OrderedKey](n int) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		if n <= 0 {
			return
		}
		limit := tree.arena.limit
		tree.arena = newRBArena[K](n, limit)
	}
}

// WithRBTreeStats records the tree operations by otel meter
// "xrbtree/rbtree/<name>".
func WithRBTreeStats[K infra.OrderedKey](name string) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.stats = newRBTreeStats(name)
	}
}

func NewRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	tree := &rbTree[K]{
		arena:          newRBArena[K](0, 0),
		root:           nilIdx,
		isDesc:         false,
		isRmBorrowSucc: false,
	}

	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}

	tree.kcmp = infra.AscCompare[K]
	if tree.isDesc {
		tree.kcmp = infra.DescCompare[K]
	}
	return tree
}
