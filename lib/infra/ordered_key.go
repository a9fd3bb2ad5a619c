package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// NaN breaks the total order, callers must not store it.
type Float interface {
	~float32 | ~float64
}

// OrderedKey is the totally-ordered scalar key set accepted by the trees.
type OrderedKey interface {
	Integer | Float
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// AscCompare is the natural order comparator.
func AscCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// DescCompare reverses the natural order.
func DescCompare[K OrderedKey](i, j K) int64 {
	return AscCompare[K](j, i)
}
