// Package rankselect answers rank and select over a sparse set of bit
// positions, stored as an sdarray of the gaps between consecutive
// positions.
//
// Select(r) is a prefix sum of the gap array. Rank(p) is a rank-by-value
// query on the same array; a hint table over the block sums narrows its
// binary search to the blocks that can hold p.
package rankselect

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/tamirms/succinct/bitvec"
	succincterrors "github.com/tamirms/succinct/errors"
	ibits "github.com/tamirms/succinct/internal/bits"
	"github.com/tamirms/succinct/sdarray"
)

// baseSampleRate is added to the log of the average gap to get the hint
// bucket width.
const baseSampleRate = 7

// maxStringPositions bounds the output of String.
const maxStringPositions = 64

// RankSelect is an immutable set of bit positions.
type RankSelect struct {
	qs    *sdarray.SDArray
	lrate uint
	hints *bitvec.Packed
}

// FromPositions builds a RankSelect over positions, which must be
// strictly increasing.
func FromPositions(positions []uint64) (*RankSelect, error) {
	b := sdarray.NewBuilder()
	for i, p := range positions {
		if i > 0 {
			switch prev := positions[i-1]; {
			case p < prev:
				return nil, fmt.Errorf("%w: position %d at index %d follows %d",
					succincterrors.ErrUnsortedInput, p, i, prev)
			case p == prev:
				return nil, fmt.Errorf("%w: %d at index %d",
					succincterrors.ErrDuplicatePosition, p, i)
			}
		}
		b.AddInc(p)
	}
	return fromSDArray(b.Build()), nil
}

// FromBitVector builds a RankSelect over the set bits of bv.
func FromBitVector(bv *bitvec.BitVector) *RankSelect {
	b := sdarray.NewBuilder()
	n := bv.Len()
	for p := uint64(0); p < n; p++ {
		p += bv.ScanNext(p)
		if p >= n {
			break
		}
		b.AddInc(p)
	}
	return fromSDArray(b.Build())
}

// FromBitSet builds a RankSelect over the set bits of bs.
func FromBitSet(bs *bitset.BitSet) *RankSelect {
	b := sdarray.NewBuilder()
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		b.AddInc(uint64(i))
	}
	return fromSDArray(b.Build())
}

func fromSDArray(qs *sdarray.SDArray) *RankSelect {
	rs := &RankSelect{qs: qs}
	rs.initRank()
	return rs
}

func (rs *RankSelect) initRank() {
	qs := rs.qs
	if qs.Len() == 0 {
		return
	}
	rs.lrate = ibits.CeilLog2(qs.Total()/qs.Len()+1) + baseSampleRate
	sums := func(yield func(uint64) bool) {
		for i := uint64(0); i < qs.BlockCount(); i++ {
			if !yield(qs.BlockSum(i)) {
				return
			}
		}
	}
	rs.hints = bitvec.BsearchHints(sums, qs.BlockCount(), qs.Total(), rs.lrate)
}

// OneCount returns the number of positions.
func (rs *RankSelect) OneCount() uint64 { return rs.qs.Len() }

// Universe returns one past the largest position, or 0 for an empty set.
func (rs *RankSelect) Universe() uint64 {
	if rs.qs.Len() == 0 {
		return 0
	}
	return rs.qs.Total() + 1
}

// Rank returns the number of positions smaller than p.
func (rs *RankSelect) Rank(p uint64) uint64 {
	qs := rs.qs
	if p == 0 || qs.Len() == 0 {
		return 0
	}
	if p > qs.Total() {
		return qs.Len()
	}
	b := p >> rs.lrate
	k := qs.RankRange(p, rs.hints.Get(b), rs.hints.Get(b+1))
	if k == 0 {
		return 0
	}
	return k - 1
}

// Select returns the r-th (0-based) smallest position. r must be less
// than OneCount.
func (rs *RankSelect) Select(r uint64) uint64 {
	if r >= rs.qs.Len() {
		panic(fmt.Sprintf("rankselect: select rank %d out of range [0, %d)", r, rs.qs.Len()))
	}
	return rs.qs.PrefixSum(r + 1)
}

// Bit reports whether p is in the set.
func (rs *RankSelect) Bit(p uint64) bool {
	r := rs.Rank(p)
	if r == rs.qs.Len() {
		return false
	}
	return rs.Select(r) == p
}

// Positions returns the positions in increasing order.
func (rs *RankSelect) Positions() iter.Seq[uint64] {
	return rs.qs.PrefixSums(0).All()
}

// Clear resets rs to the empty set.
func (rs *RankSelect) Clear() {
	*rs = RankSelect{qs: &sdarray.SDArray{}}
}

// String renders the positions as "{p0,p1,...}". Large sets are cut after
// maxStringPositions positions.
func (rs *RankSelect) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	i := 0
	for p := range rs.Positions() {
		if i == maxStringPositions {
			fmt.Fprintf(&sb, ",... (%d positions)", rs.qs.Len())
			break
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprint(&sb, p)
		i++
	}
	sb.WriteByte('}')
	return sb.String()
}

// SizeInBits returns the approximate encoded size.
func (rs *RankSelect) SizeInBits() uint64 {
	size := rs.qs.Stats().TotalBytes()*8 + 8
	if rs.hints != nil {
		size += rs.hints.Bits().Len()
	}
	return size
}

// bucketCount returns the number of hint slots for total and lrate.
func bucketCount(total uint64, lrate uint) uint64 {
	if lrate >= 64 {
		return 2
	}
	return total>>lrate + 2
}
