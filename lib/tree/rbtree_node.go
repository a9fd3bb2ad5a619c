package tree

import "github.com/benz9527/xrbtree/lib/infra"

var _ RBNode[int] = rbNodeRef[int]{}

// rbNodeRef is the exported view of an arena slot.
type rbNodeRef[K infra.OrderedKey] struct {
	tree *rbTree[K]
	idx  uint32
}

func (ref rbNodeRef[K]) Key() K {
	return ref.tree.node(ref.idx).key
}

func (ref rbNodeRef[K]) Color() RBColor {
	return ref.tree.node(ref.idx).color
}

func (ref rbNodeRef[K]) Left() RBNode[K] {
	return ref.tree.ref(ref.tree.node(ref.idx).left)
}

func (ref rbNodeRef[K]) Right() RBNode[K] {
	return ref.tree.ref(ref.tree.node(ref.idx).right)
}

func (ref rbNodeRef[K]) Parent() RBNode[K] {
	return ref.tree.ref(ref.tree.node(ref.idx).parent)
}

func (tree *rbTree[K]) ref(idx uint32) RBNode[K] {
	if idx == nilIdx {
		return nil
	}
	return rbNodeRef[K]{tree: tree, idx: idx}
}

func (tree *rbTree[K]) node(idx uint32) *rbNode[K] {
	return tree.arena.at(idx)
}

func (tree *rbTree[K]) isRed(idx uint32) bool {
	return idx != nilIdx && tree.node(idx).color == Red
}

func (tree *rbTree[K]) isBlack(idx uint32) bool {
	return !tree.isRed(idx)
}

func (tree *rbTree[K]) isLeaf(idx uint32) bool {
	n := tree.node(idx)
	return idx != nilIdx && n.left == nilIdx && n.right == nilIdx
}

func (tree *rbTree[K]) direction(idx uint32) RBDirection {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	p := tree.node(idx).parent
	if p == nilIdx {
		return Root
	}
	if tree.node(p).left == idx {
		return Left
	}
	return Right
}

func (tree *rbTree[K]) sibling(idx uint32) uint32 {
	switch dir := tree.direction(idx); dir {
	case Left:
		return tree.node(tree.node(idx).parent).right
	case Right:
		return tree.node(tree.node(idx).parent).left
	default:
	}
	return nilIdx
}

func (tree *rbTree[K]) fixLink(idx uint32) {
	n := tree.node(idx)
	if n.left != nilIdx {
		tree.node(n.left).parent = idx
	}
	if n.right != nilIdx {
		tree.node(n.right).parent = idx
	}
}

func (tree *rbTree[K]) minimum(idx uint32) uint32 {
	for idx != nilIdx && tree.node(idx).left != nilIdx {
		idx = tree.node(idx).left
	}
	return idx
}

func (tree *rbTree[K]) maximum(idx uint32) uint32 {
	for idx != nilIdx && tree.node(idx).right != nilIdx {
		idx = tree.node(idx).right
	}
	return idx
}

// pred is the rightmost node of the left subtree.
func (tree *rbTree[K]) pred(idx uint32) uint32 {
	return tree.maximum(tree.node(idx).left)
}

// succ is the leftmost node of the right subtree.
func (tree *rbTree[K]) succ(idx uint32) uint32 {
	return tree.minimum(tree.node(idx).right)
}
