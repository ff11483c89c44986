// Package pool provides sync.Pool instances for the scratch memory used by
// the GIF codec: byte buffers grouped by size class and LZW encoder hash
// tables.
package pool

import "sync"

// Size classes for bucketed byte pools.
const (
	Size256B = 256
	Size4K   = 4096
	Size64K  = 65536
	Size1M   = 1048576
)

// LZWTableSize is the number of slots in an LZW encoder hash table
// (four times the 4096-code space).
const LZWTableSize = 4 << 12

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size256B:
		return 0
	case size <= Size4K:
		return 1
	case size <= Size64K:
		return 2
	default:
		return 3
	}
}

var sizes = [4]int{Size256B, Size4K, Size64K, Size1M}

var pools [4]sync.Pool

var lzwTables = sync.Pool{
	New: func() any {
		t := make([]uint32, LZWTableSize)
		return &t
	},
}

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, 0, sz)
				return &b
			},
		}
	}
}

// Get returns an empty byte slice with capacity for at least size bytes.
// Callers append into it and hand it back with Put.
func Get(size int) []byte {
	bp := pools[bucketIndex(size)].Get().(*[]byte)
	b := (*bp)[:0]
	if cap(b) < size {
		return make([]byte, 0, size)
	}
	return b
}

// Put returns a byte slice to the pool. Slices smaller than Size256B are
// dropped, as are slices past the largest class so one huge frame does not
// pin memory.
func Put(b []byte) {
	c := cap(b)
	if c < Size256B || c > 4*Size1M {
		return
	}
	// File under the largest class the capacity fully covers.
	idx := bucketIndex(c)
	if idx > 0 && c < sizes[idx] {
		idx--
	}
	b = b[:0]
	pools[idx].Put(&b)
}

// GetLZWTable returns a zeroed LZW encoder hash table.
func GetLZWTable() []uint32 {
	return *lzwTables.Get().(*[]uint32)
}

// PutLZWTable zeroes t and returns it to the pool.
func PutLZWTable(t []uint32) {
	if len(t) != LZWTableSize {
		return
	}
	for i := range t {
		t[i] = 0
	}
	lzwTables.Put(&t)
}
