// Package rrr implements the RRR compressed bit vector.
//
// The input is cut into 63-bit blocks. Each block is stored as its class
// (popcount, 6 bits in R) and its offset among all blocks of that class
// (CodeLen(class) bits in S). Every SampleInterval blocks the cumulative
// popcount (sumR) and the S bit position (posS) are sampled, so Rank
// scans at most SampleInterval-1 classes before decoding a single block.
//
// Layout summary:
//
//	R     6 bits per block             class (popcount)
//	S     CodeLen(class) bits per block combinatorial offset
//	sumR  one entry per sample group   ones before the group
//	posS  one entry per sample group   S bit offset of the group
//
// An RRR value is immutable after Build or Load and safe for concurrent
// use. Sequential Bit/Rank callers can keep a Cursor to reuse the last
// decoded block.
package rrr

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/tamirms/succinct/bitvec"
	ibits "github.com/tamirms/succinct/internal/bits"
)

// SampleInterval is the number of blocks between sumR/posS samples.
const SampleInterval = 128

// classBits is the width of a block class in R.
const classBits = 6

// RRR is a compressed, read-only bit vector with rank and select.
type RRR struct {
	tbl *Table

	r    *bitvec.BitVector
	s    *bitvec.BitVector
	sumR *bitvec.Packed
	posS *bitvec.Packed

	onecnt uint64
	n      uint64
}

// Len returns the number of bits.
func (q *RRR) Len() uint64 { return q.n }

// OneCount returns the number of set bits.
func (q *RRR) OneCount() uint64 { return q.onecnt }

// Table returns the combinatorics table the vector decodes with.
func (q *RRR) Table() *Table { return q.tbl }

func (q *RRR) blockCount() uint64 { return (q.n + BlockSize - 1) / BlockSize }

func (q *RRR) class(block uint64) int {
	return int(q.r.Bits(block*classBits, classBits))
}

// group returns the sample group covering block, clamped to the last
// group for the one-past-the-end block.
func (q *RRR) group(block uint64) uint64 {
	return min(block/SampleInterval, q.sumR.Len()-1)
}

// partialSum returns the number of ones before block.
func (q *RRR) partialSum(block uint64) uint64 {
	g := q.group(block)
	sum := q.sumR.Get(g)
	for j := g * SampleInterval; j < block; j++ {
		sum += uint64(q.class(j))
	}
	return sum
}

// positionS returns the bit offset of block's code in S.
func (q *RRR) positionS(block uint64) uint64 {
	g := q.group(block)
	pos := q.posS.Get(g)
	for j := g * SampleInterval; j < block; j++ {
		pos += uint64(q.tbl.CodeLen(q.class(j)))
	}
	return pos
}

// word decodes block, whose code starts at S offset pos.
func (q *RRR) word(block, pos uint64) uint64 {
	c := q.class(block)
	if c == 0 {
		return 0
	}
	width := q.tbl.CodeLen(c)
	return q.tbl.Decode(q.s.Bits(pos, width), c)
}

// Block returns the decoded bits of block i (63 bits, the last block
// zero-padded).
func (q *RRR) Block(i uint64) uint64 {
	if i >= q.blockCount() {
		panic(fmt.Sprintf("rrr: block %d out of range [0, %d)", i, q.blockCount()))
	}
	if q.onecnt == 0 {
		return 0
	}
	return q.word(i, q.positionS(i))
}

func (q *RRR) checkPos(p uint64) {
	if p > q.n {
		panic(fmt.Sprintf("rrr: position %d beyond length %d", p, q.n))
	}
}

// Rank returns the number of set bits in [0, p). p must be at most Len.
func (q *RRR) Rank(p uint64) uint64 {
	q.checkPos(p)
	if q.onecnt == 0 {
		return 0
	}
	block := p / BlockSize
	sum := q.partialSum(block)
	if block*BlockSize == p {
		return sum
	}
	w := q.word(block, q.positionS(block))
	return sum + uint64(bits.OnesCount64(w&ibits.Mask(uint(p%BlockSize))))
}

// RankZero returns the number of clear bits in [0, p).
func (q *RRR) RankZero(p uint64) uint64 {
	return p - q.Rank(p)
}

// Bit reports whether bit p is set.
func (q *RRR) Bit(p uint64) bool {
	if p >= q.n {
		panic(fmt.Sprintf("rrr: bit %d beyond length %d", p, q.n))
	}
	return q.Rank(p+1)-q.Rank(p) == 1
}

// Select returns the position of the r-th (0-based) set bit.
// r must be less than OneCount.
func (q *RRR) Select(r uint64) uint64 {
	if r >= q.onecnt {
		panic(fmt.Sprintf("rrr: select rank %d out of range [0, %d)", r, q.onecnt))
	}
	// Last group whose sample is at most r; sumR[0] is 0.
	groups := int(q.sumR.Len())
	g := uint64(sort.Search(groups, func(i int) bool {
		return q.sumR.Get(uint64(i)) > r
	}) - 1)

	block := g * SampleInterval
	sum := q.sumR.Get(g)
	pos := q.posS.Get(g)
	for {
		c := q.class(block)
		if sum+uint64(c) > r {
			break
		}
		sum += uint64(c)
		pos += uint64(q.tbl.CodeLen(c))
		block++
	}
	w := q.word(block, pos)
	return block*BlockSize + uint64(ibits.Select64(w, int(r-sum)))
}

// SelectZero returns the position of the r-th (0-based) clear bit.
// r must be less than Len-OneCount.
//
// There are no zero samples; the answer is found by binary search over
// RankZero, costing O(log n) rank queries.
func (q *RRR) SelectZero(r uint64) uint64 {
	if r >= q.n-q.onecnt {
		panic(fmt.Sprintf("rrr: selectzero rank %d out of range [0, %d)", r, q.n-q.onecnt))
	}
	lo, hi := uint64(0), q.n
	for lo < hi {
		mid := lo + (hi-lo)/2
		if q.RankZero(mid) < r+1 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// Clear resets q to the empty vector.
func (q *RRR) Clear() {
	*q = RRR{}
}

// SizeInBits returns the number of bits used by the encoded structure.
func (q *RRR) SizeInBits() uint64 {
	size := uint64(2 * 64)
	for _, bv := range []*bitvec.BitVector{q.r, q.s} {
		if bv != nil {
			size += bv.Len()
		}
	}
	for _, p := range []*bitvec.Packed{q.sumR, q.posS} {
		if p != nil {
			size += p.Bits().Len()
		}
	}
	return size
}
