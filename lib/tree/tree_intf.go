package tree

import (
	"iter"

	"github.com/benz9527/xrbtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

// RBNode is a read-only view of a tree node.
// An absent child or parent is returned as a nil interface.
// A view is only valid until the next mutation of its tree.
type RBNode[K infra.OrderedKey] interface {
	Key() K
	Color() RBColor
	Left() RBNode[K]
	Right() RBNode[K]
	Parent() RBNode[K]
}

// RBTree is a red-black tree over unique keys.
// A tree is owned by one goroutine at a time; no method is safe for
// concurrent use.
type RBTree[K infra.OrderedKey] interface {
	Len() int64
	Root() RBNode[K]
	// Compare is the ordering the tree is built on.
	Compare(i, j K) int64
	// Insert returns ErrRBTreeKeyDuplicated if the key is present and
	// ErrRBTreeAllocFailed if no node could be obtained. The tree is
	// unchanged in both cases.
	Insert(key K) error
	Search(key K) bool
	// Delete returns ErrRBTreeKeyNotFound and leaves the tree unchanged
	// if the key is absent.
	Delete(key K) error
	RemoveMin() (K, error)
	Min() (K, bool)
	Max() (K, bool)
	// Keys yields the keys in tree order. The sequence may be ranged
	// over any number of times but not across a mutation.
	Keys() iter.Seq[K]
	Foreach(action func(idx int64, color RBColor, key K) bool)
	Validate() error
	// Release frees all nodes. The tree must not be used afterward.
	Release()
}
