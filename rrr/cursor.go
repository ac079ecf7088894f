package rrr

import (
	"fmt"
	"math/bits"

	ibits "github.com/tamirms/succinct/internal/bits"
)

// Cursor caches the most recently decoded block of an RRR vector.
// Moving to the next block reuses the cached sums instead of rescanning
// the sample group, so forward scans cost one decode per block.
//
// A Cursor is not safe for concurrent use; give each goroutine its own.
type Cursor struct {
	q *RRR

	valid  bool
	block  uint64
	pos    uint64 // S offset of block
	before uint64 // ones before block
	word   uint64
}

// NewCursor returns a Cursor over q.
func (q *RRR) NewCursor() *Cursor {
	return &Cursor{q: q}
}

func (c *Cursor) load(block uint64) {
	q := c.q
	switch {
	case c.valid && block == c.block:
		return
	case c.valid && block == c.block+1:
		c.before += uint64(bits.OnesCount64(c.word))
		c.pos += uint64(q.tbl.CodeLen(q.class(c.block)))
	default:
		c.before = q.partialSum(block)
		c.pos = q.positionS(block)
	}
	c.block = block
	c.word = q.word(block, c.pos)
	c.valid = true
}

// Rank returns the number of set bits in [0, p).
func (c *Cursor) Rank(p uint64) uint64 {
	q := c.q
	q.checkPos(p)
	if q.onecnt == 0 {
		return 0
	}
	if p == q.n {
		return q.onecnt
	}
	c.load(p / BlockSize)
	return c.before + uint64(bits.OnesCount64(c.word&ibits.Mask(uint(p%BlockSize))))
}

// Bit reports whether bit p is set.
func (c *Cursor) Bit(p uint64) bool {
	q := c.q
	if p >= q.n {
		panic(fmt.Sprintf("rrr: bit %d beyond length %d", p, q.n))
	}
	if q.onecnt == 0 {
		return false
	}
	c.load(p / BlockSize)
	return c.word>>(p%BlockSize)&1 == 1
}
