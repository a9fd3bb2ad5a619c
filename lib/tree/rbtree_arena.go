package tree

import (
	"math"

	"github.com/benz9527/xrbtree/lib/infra"
)

// nilIdx is the handle of the nil leaf sentinel. The slot is always
// black and never written.
const nilIdx uint32 = 0

const maxArenaNodes uint64 = math.MaxUint32 - 1

type rbNode[K infra.OrderedKey] struct {
	key    K
	parent uint32
	left   uint32
	right  uint32
	color  RBColor
}

// rbArena stores all nodes of one tree. Links between nodes are slot
// handles, so a child pointing back to its parent does not own it.
// Removed slots are recycled by later allocations.
type rbArena[K infra.OrderedKey] struct {
	nodes    []rbNode[K]
	recycled []uint32
	used     int64
	limit    int64 // 0 means unbounded
}

func newRBArena[K infra.OrderedKey](prealloc int, limit int64) *rbArena[K] {
	if prealloc < 0 {
		prealloc = 0
	}
	return &rbArena[K]{
		nodes: make([]rbNode[K], 1 /* nil sentinel */, prealloc+1),
		limit: limit,
	}
}

// allocate returns a red node without links.
// Pointers obtained from at() before a call are stale after it.
func (arena *rbArena[K]) allocate(key K) (uint32, error) {
	if arena.limit > 0 && arena.used >= arena.limit {
		return nilIdx, ErrRBTreeAllocFailed
	}

	var idx uint32
	if l := len(arena.recycled); l > 0 {
		idx = arena.recycled[l-1]
		arena.recycled = arena.recycled[:l-1]
	} else {
		if uint64(len(arena.nodes)) > maxArenaNodes {
			return nilIdx, ErrRBTreeAllocFailed
		}
		arena.nodes = append(arena.nodes, rbNode[K]{})
		idx = uint32(len(arena.nodes) - 1)
	}
	arena.nodes[idx] = rbNode[K]{
		key:   key,
		color: Red,
	}
	arena.used++
	return idx, nil
}

func (arena *rbArena[K]) recycle(idx uint32) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] recycle the nil sentinel")
	}
	arena.nodes[idx] = rbNode[K]{}
	arena.recycled = append(arena.recycled, idx)
	arena.used--
}

func (arena *rbArena[K]) at(idx uint32) *rbNode[K] {
	return &arena.nodes[idx]
}

func (arena *rbArena[K]) len() int64 {
	return arena.used
}

func (arena *rbArena[K]) free() {
	clear(arena.recycled)
	arena.nodes = nil
	arena.recycled = nil
	arena.used = 0
}
