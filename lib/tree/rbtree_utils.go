package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/lib/infra"
)

// rbtree rule validation utilities.
// They only read the RBNode views and recompute every property from
// scratch, nothing is trusted from the insert and delete bookkeeping.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// OrderViolationValidate walks the tree in-order, every node checked
// against the bounds inherited from its ancestors.
func OrderViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	return orderValidate[K](tree, tree.Root(), nil, nil)
}

func orderValidate[K infra.OrderedKey](tree RBTree[K], node, lo, hi RBNode[K]) error {
	if node == nil {
		return nil
	}
	if err := orderValidate[K](tree, node.Left(), lo, node); err != nil {
		return err
	}
	if lo != nil && tree.Compare(node.Key(), lo.Key()) <= 0 {
		return fmt.Errorf("%w: key %v not after lower bound %v", ErrRBTreeOrderViolation, node.Key(), lo.Key())
	}
	if hi != nil && tree.Compare(node.Key(), hi.Key()) >= 0 {
		return fmt.Errorf("%w: key %v not before upper bound %v", ErrRBTreeOrderViolation, node.Key(), hi.Key())
	}
	return orderValidate[K](tree, node.Right(), node, hi)
}

func RootColorValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	if root := tree.Root(); root != nil && root.Color() != Black {
		return fmt.Errorf("%w: root %v", ErrRBTreeRootColorViolation, root.Key())
	}
	return nil
}

// RedViolationValidate post-order scans for a red node under a red parent.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	return redValidate[K](tree.Root())
}

func redValidate[K infra.OrderedKey](node RBNode[K]) error {
	if node == nil {
		return nil
	}
	if err := redValidate[K](node.Left()); err != nil {
		return err
	}
	if err := redValidate[K](node.Right()); err != nil {
		return err
	}
	if p := node.Parent(); node.Color() == Red && p != nil && p.Color() == Red {
		return fmt.Errorf("%w: red node %v under red parent %v", ErrRBTreeRedViolation, node.Key(), p.Key())
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	if h := blackHeight[K](tree.Root()); h < 0 {
		return ErrRBTreeBlackViolation
	}
	return nil
}

// blackHeight counts the nil leaf as 1, a black node adds 1.
// Returns -1 once the left and right heights differ.
func blackHeight[K infra.OrderedKey](node RBNode[K]) int {
	if node == nil {
		return 1
	}
	l := blackHeight[K](node.Left())
	r := blackHeight[K](node.Right())
	if l < 0 || r < 0 || l != r {
		return -1
	}
	if node.Color() == Black {
		return l + 1
	}
	return l
}

// LinkViolationValidate checks the parent back references and that the
// reachable node count matches Len.
func LinkViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	root := tree.Root()
	if root != nil && root.Parent() != nil {
		return fmt.Errorf("%w: root %v has a parent", ErrRBTreeLinkViolation, root.Key())
	}
	count, err := linkValidate[K](root)
	if err != nil {
		return err
	}
	if count != tree.Len() {
		return fmt.Errorf("%w: %d nodes reachable, len %d", ErrRBTreeLinkViolation, count, tree.Len())
	}
	return nil
}

func linkValidate[K infra.OrderedKey](node RBNode[K]) (int64, error) {
	if node == nil {
		return 0, nil
	}
	count := int64(1)
	for _, child := range []RBNode[K]{node.Left(), node.Right()} {
		if child == nil {
			continue
		}
		if p := child.Parent(); p == nil || p != node {
			return 0, fmt.Errorf("%w: node %v lost its parent %v", ErrRBTreeLinkViolation, child.Key(), node.Key())
		}
		n, err := linkValidate[K](child)
		if err != nil {
			return 0, err
		}
		count += n
	}
	return count, nil
}

// Validate runs all the rule validations and combines the violations.
func Validate[K infra.OrderedKey](tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	if t, ok := tree.(*rbTree[K]); ok {
		if err := t.usable(); err != nil {
			return err
		}
	}
	return multierr.Combine(
		OrderViolationValidate[K](tree),
		RootColorValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
		LinkViolationValidate[K](tree),
	)
}
