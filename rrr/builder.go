package rrr

import (
	"fmt"
	"math/bits"

	"github.com/tamirms/succinct/bitvec"
)

// Builder encodes plain bit vectors into RRR vectors.
type Builder struct {
	tbl *Table
	r   bitvec.Builder
	s   bitvec.Builder
}

// NewBuilder returns a Builder encoding with tbl.
func NewBuilder(tbl *Table) *Builder {
	if tbl == nil {
		panic("rrr: nil Table")
	}
	return &Builder{tbl: tbl}
}

// Build encodes the plain vector with the default Table.
func Build(bv *bitvec.BitVector) *RRR {
	return NewBuilder(DefaultTable()).Build(bv)
}

// Build encodes bv. The builder can be reused afterwards.
func (b *Builder) Build(bv *bitvec.BitVector) *RRR {
	n := bv.Len()
	if n > bitvec.MaxLen {
		panic(fmt.Sprintf("rrr: length %d exceeds %d", n, bitvec.MaxLen))
	}
	numBlocks := (n + BlockSize - 1) / BlockSize
	numGroups := (numBlocks + SampleInterval - 1) / SampleInterval

	classes := make([]uint8, 0, numBlocks)
	var onecnt uint64
	for pos := uint64(0); pos < n; pos += BlockSize {
		step := uint(min(BlockSize, n-pos))
		w := bv.Bits(pos, step)
		c := bits.OnesCount64(w)
		onecnt += uint64(c)
		classes = append(classes, uint8(c))
		b.r.PutBits(uint64(c), classBits)
		b.s.PutBits(b.tbl.Encode(w, c), b.tbl.CodeLen(c))
	}

	q := &RRR{
		tbl:    b.tbl,
		r:      b.r.Build(),
		s:      b.s.Build(),
		onecnt: onecnt,
		n:      n,
	}
	if onecnt == 0 {
		return q
	}

	q.sumR = bitvec.NewPacked(numGroups, uint(bits.Len64(onecnt)))
	q.posS = bitvec.NewPacked(numGroups, uint(bits.Len64(q.s.Len())))
	var sum, pos uint64
	for i, c := range classes {
		if i%SampleInterval == 0 {
			g := uint64(i / SampleInterval)
			q.sumR.Set(g, sum)
			q.posS.Set(g, pos)
		}
		sum += uint64(c)
		pos += uint64(b.tbl.CodeLen(int(c)))
	}
	return q
}
