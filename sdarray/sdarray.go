// Package sdarray implements SDArraySml, a compressed array of
// non-negative integers that answers prefix sums, random access and
// rank by value.
//
// Values are grouped into blocks of BlockSize. Each block stores the
// inclusive prefix sums of its values relative to the block base, split
// into a low part of a per-block width and a high part coded in unary.
// Six select hints per block jump into the high plane at sub-block
// boundaries so no query scans more than one sub-block of it.
package sdarray

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tamirms/succinct/bitvec"
	ibits "github.com/tamirms/succinct/internal/bits"
)

const (
	// BlockSize is the number of values per block.
	BlockSize = 512

	subBlocks    = 7
	subBlockSize = (BlockSize + subBlocks - 1) / subBlocks // 74
	hintBits     = 10

	widthShift = 57
	ptrMask    = uint64(1)<<widthShift - 1

	// maxStringValues bounds the output of String.
	maxStringValues = 64
)

// SDArray is an immutable compressed integer array.
type SDArray struct {
	bits  *bitvec.BitVector
	table []uint64 // three words per block
	n     uint64
	sum   uint64
}

// block describes the layout of one block.
type block struct {
	base  uint64 // sum of all previous blocks
	lo    uint64 // bit offset of the low parts
	hi    uint64 // bit offset of the high plane
	width uint
	hints uint64
}

func (a *SDArray) block(b uint64) block {
	info := a.table[3*b+1]
	width := uint(info >> widthShift)
	lo := info & ptrMask
	return block{
		base:  a.table[3*b],
		lo:    lo,
		hi:    lo + uint64(width)*BlockSize,
		width: width,
		hints: a.table[3*b+2],
	}
}

// low returns the low part of element i.
func (a *SDArray) low(blk *block, i uint64) uint64 {
	if blk.width == 0 {
		return 0
	}
	return a.bits.Bits(blk.lo+uint64(blk.width)*i, blk.width)
}

// hint returns the high-plane position of element 74*(p+1)-1.
func hint(hints uint64, p uint64) uint64 {
	return hints >> (p * hintBits) & (1<<hintBits - 1)
}

// selectHi returns the high-plane position of element off.
func (a *SDArray) selectHi(blk *block, off uint64) uint64 {
	sb, res := off/subBlockSize, off%subBlockSize
	if res == subBlockSize-1 {
		return hint(blk.hints, sb)
	}
	var gb uint64
	if sb > 0 {
		gb = hint(blk.hints, sb-1) + 1
	}
	return a.bits.ScanOnes(blk.hi+gb, res) + gb
}

// selectZeroHi returns the high-plane position of the off-th zero.
func (a *SDArray) selectZeroHi(blk *block, off uint64) uint64 {
	sb := uint64(0)
	for ; sb < subBlocks-1; sb++ {
		// zeros before the hinted element
		if hint(blk.hints, sb)+1-(sb+1)*subBlockSize >= off {
			break
		}
	}
	res, pos := off, uint64(0)
	if sb > 0 {
		pos = hint(blk.hints, sb-1) + 1
		res -= pos - sb*subBlockSize
	}
	return pos + a.bits.ScanZeros(blk.hi+pos, res)
}

// element returns the in-block inclusive prefix sum of element off.
func (a *SDArray) element(blk *block, off uint64) uint64 {
	hi := a.selectHi(blk, off) - off
	return hi<<blk.width | a.low(blk, off)
}

// Len returns the number of values.
func (a *SDArray) Len() uint64 { return a.n }

// Total returns the sum of all values.
func (a *SDArray) Total() uint64 { return a.sum }

// BlockCount returns the number of blocks.
func (a *SDArray) BlockCount() uint64 { return uint64(len(a.table) / 3) }

// BlockSum returns the sum of all values before block i.
func (a *SDArray) BlockSum(i uint64) uint64 { return a.table[3*i] }

// PrefixSum returns the sum of the first p values. For p >= Len it
// returns Total.
func (a *SDArray) PrefixSum(p uint64) uint64 {
	if p >= a.n {
		return a.sum
	}
	blk := a.block(p / BlockSize)
	off := p % BlockSize
	if off == 0 {
		return blk.base
	}
	return blk.base + a.element(&blk, off-1)
}

// Lookup returns value p. p must be less than Len.
func (a *SDArray) Lookup(p uint64) uint64 {
	v, _ := a.LookupPrev(p)
	return v
}

// LookupPrev returns value p together with PrefixSum(p).
func (a *SDArray) LookupPrev(p uint64) (value, prefix uint64) {
	if p >= a.n {
		panic(fmt.Sprintf("sdarray: index %d out of range [0, %d)", p, a.n))
	}
	blk := a.block(p / BlockSize)
	off := p % BlockSize
	var prev, prehi uint64
	if off > 0 {
		prehi = a.selectHi(&blk, off-1) + 1 - off
		prev = prehi<<blk.width | a.low(&blk, off-1)
	}
	hi := prehi + a.bits.ScanNext(blk.hi+prehi+off)
	cur := hi<<blk.width | a.low(&blk, off)
	return cur - prev, blk.base + prev
}

// Rank returns the smallest p with PrefixSum(p) >= val, or Len when val
// exceeds Total.
func (a *SDArray) Rank(val uint64) uint64 {
	return a.RankRange(val, 0, a.BlockCount())
}

// RankRange is Rank with the block search limited to blocks [lo, hi).
// The caller guarantees the answer's block lies in that window, for
// example from hints over BlockSum.
func (a *SDArray) RankRange(val, lo, hi uint64) uint64 {
	if lo > hi || hi > a.BlockCount() {
		panic(fmt.Sprintf("sdarray: block window [%d, %d) out of range [0, %d]", lo, hi, a.BlockCount()))
	}
	if val > a.sum {
		return a.n
	}
	// First block whose base is at least val.
	b := lo + uint64(sort.Search(int(hi-lo), func(i int) bool {
		return a.table[3*(lo+uint64(i))] >= val
	}))
	if b == 0 {
		return 0
	}
	b--
	return b*BlockSize + a.rankBlock(b, val-a.table[3*b])
}

// rankBlock returns one past the index of the first element of block b
// whose in-block prefix sum is at least val.
func (a *SDArray) rankBlock(b, val uint64) uint64 {
	blk := a.block(b)
	vlo := val & ibits.Mask(blk.width)
	vhi := val >> blk.width

	var hipos, rank uint64
	if vhi > 0 {
		hipos = a.selectZeroHi(&blk, vhi-1) + 1
		rank = hipos - vhi
	}
	for rank < BlockSize && a.bits.Bit(blk.hi+hipos) {
		if a.low(&blk, rank) >= vlo {
			return rank + 1
		}
		rank++
		hipos++
	}
	return rank + 1
}

// RankSelect returns Rank(val) and the prefix sum at that rank.
func (a *SDArray) RankSelect(val uint64) (rank, prefix uint64) {
	rank = a.Rank(val)
	return rank, a.PrefixSum(rank)
}

// Clear resets a to the empty array.
func (a *SDArray) Clear() {
	*a = SDArray{}
}

// String renders the values as "{v0,v1,...}". Long arrays are cut after
// maxStringValues values.
func (a *SDArray) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	e := a.Values(0)
	for i := 0; i < maxStringValues; i++ {
		v, ok := e.Next()
		if !ok {
			break
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprint(&sb, v)
	}
	if a.n > maxStringValues {
		fmt.Fprintf(&sb, ",... (%d values)", a.n)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Stats describes the space used by an SDArray.
type Stats struct {
	Len         uint64
	Sum         uint64
	Blocks      uint64
	HeaderBytes uint64 // block table
	UpperBytes  uint64 // unary high planes
	LowerBytes  uint64 // fixed-width low parts
}

// TotalBytes returns the sum of all parts.
func (s Stats) TotalBytes() uint64 {
	return s.HeaderBytes + s.UpperBytes + s.LowerBytes
}

// Stats returns a breakdown of the space used by a.
func (a *SDArray) Stats() Stats {
	var lower uint64
	for b := uint64(0); b < a.BlockCount(); b++ {
		lower += uint64(a.block(b).width) * BlockSize
	}
	var total uint64
	if a.bits != nil {
		total = a.bits.Len()
	}
	return Stats{
		Len:         a.n,
		Sum:         a.sum,
		Blocks:      a.BlockCount(),
		HeaderBytes: uint64(len(a.table)) * 8,
		UpperBytes:  (total - lower + 7) / 8,
		LowerBytes:  (lower + 7) / 8,
	}
}
