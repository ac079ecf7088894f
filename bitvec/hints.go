package bitvec

import (
	"iter"
	"math/bits"
)

// BsearchHints buckets the value range [0, rangelen] into slices of
// 2^lrate and records, for each bucket start b<<lrate, how many of the
// arrlen monotone values in vals are smaller. The returned array has
// (rangelen>>lrate)+2 slots; the last one always holds arrlen, so
// [hints[b], hints[b+1]] bounds the index range a binary search for any
// value in bucket b has to look at.
func BsearchHints(vals iter.Seq[uint64], arrlen, rangelen uint64, lrate uint) *Packed {
	slots := rangelen>>lrate + 2
	hints := NewPacked(slots, uint(bits.Len64(arrlen)))

	var b, cnt uint64
	for v := range vals {
		for b < slots-1 && b<<lrate <= v {
			hints.Set(b, cnt)
			b++
		}
		cnt++
	}
	for ; b < slots-1; b++ {
		hints.Set(b, cnt)
	}
	hints.Set(slots-1, arrlen)
	return hints
}

