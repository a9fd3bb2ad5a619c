package tree

import (
	"errors"
	"fmt"
)

var (
	ErrRBTreeNil      = errors.New("[rbtree] nil tree")
	ErrRBTreeReleased = errors.New("[rbtree] tree has been released")

	// ErrRBTreeKeyDuplicated and ErrRBTreeKeyNotFound are no-op statuses,
	// the tree is left as it was.
	ErrRBTreeKeyDuplicated = errors.New("[rbtree] key duplicated")
	ErrRBTreeKeyNotFound   = errors.New("[rbtree] key not found")

	ErrRBTreeAllocFailed = errors.New("[rbtree] node allocation failed")

	ErrRBTreeInvariantViolated  = errors.New("[rbtree] invariant violated")
	ErrRBTreeOrderViolation     = fmt.Errorf("%w: order violation", ErrRBTreeInvariantViolated)
	ErrRBTreeRootColorViolation = fmt.Errorf("%w: red root", ErrRBTreeInvariantViolated)
	ErrRBTreeRedViolation       = fmt.Errorf("%w: red violation", ErrRBTreeInvariantViolated)
	ErrRBTreeBlackViolation     = fmt.Errorf("%w: black violation", ErrRBTreeInvariantViolated)
	ErrRBTreeLinkViolation      = fmt.Errorf("%w: link violation", ErrRBTreeInvariantViolated)
)

// IsNoop reports whether err is a status that left the tree unchanged
// because the request had nothing to do.
func IsNoop(err error) bool {
	return errors.Is(err, ErrRBTreeKeyDuplicated) || errors.Is(err, ErrRBTreeKeyNotFound)
}
