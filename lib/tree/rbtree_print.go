package tree

import (
	"bufio"
	"fmt"
	"io"

	"github.com/benz9527/xrbtree/lib/infra"
)

// Fprint writes the keys of tree to w in tree order, one per line.
func Fprint[K infra.OrderedKey](w io.Writer, tree RBTree[K]) error {
	if tree == nil {
		return ErrRBTreeNil
	}
	bw := bufio.NewWriter(w)
	for key := range tree.Keys() {
		if _, err := fmt.Fprintln(bw, key); err != nil {
			return err
		}
	}
	return bw.Flush()
}
