package workload

import (
	"math/rand/v2"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Gen generates the next workload key.
type Gen func() int64

// SequentialGen yields start, start+1, ...
func SequentialGen(start int64) Gen {
	next := start
	return func() int64 {
		k := next
		next++
		return k
	}
}

// RandomGen yields keys in [0, n) with duplicates. The same seed gives
// the same keys.
func RandomGen(seed uint64, n int64) Gen {
	if n <= 0 {
		n = 1
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() int64 {
		return rng.Int64N(n)
	}
}

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID only increases, if it overflows, it will be reset to 1.
// It occupies a whole cache line, the generators shared by the workers
// do not false share with their neighbours.
type monotonicNonZeroID struct {
	_      [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val    uint64
	stride uint64
	_      [cacheLinePadSize - 2*unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, id.stride); v == 0 {
		v = atomic.AddUint64(&id.val, id.stride)
	}
	return v
}

// MonotonicGen yields stride, 2*stride, ... and is safe for concurrent
// use. Every gap between two keys is never generated, a sparse key set
// to search misses in.
func MonotonicGen(stride int64) Gen {
	if stride <= 0 {
		stride = 1
	}
	src := &monotonicNonZeroID{stride: uint64(stride)}
	return func() int64 {
		return int64(src.next() & (1<<63 - 1))
	}
}

// Take collects the next n keys of gen.
func Take(gen Gen, n int) []int64 {
	if n <= 0 {
		return []int64{}
	}
	keys := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, gen())
	}
	return keys
}
