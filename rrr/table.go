package rrr

import (
	"fmt"
	"math/bits"
	"sync"

	ibits "github.com/tamirms/succinct/internal/bits"
)

// BlockSize is the number of bits covered by one RRR block.
const BlockSize = 63

// centralBinom63 holds C(63, 29), C(63, 30) and C(63, 31) as stored.
var centralBinom63 = [3]uint64{
	759510004936100352,
	860778005594247040,
	916312070471295232,
}

// Table holds the binomial coefficients C(n, r) for n in [0, 63] and the
// code length of each block class. A Table is immutable once built.
type Table struct {
	binom   [BlockSize + 1][BlockSize + 1]uint64
	codeLen [BlockSize + 1]uint8
}

// DefaultTable returns the process-wide Table, computing it on first use.
var DefaultTable = sync.OnceValue(NewTable)

// NewTable computes a Table. Most callers want DefaultTable.
func NewTable() *Table {
	t := &Table{}
	for n := uint64(0); n <= BlockSize; n++ {
		t.binom[n][0] = 1
		for r := uint64(1); r <= n; r++ {
			// C(n,r) = C(n,r-1) * (n-r+1) / r. The product can exceed 64 bits
			// while the quotient never does.
			hi, lo := bits.Mul64(t.binom[n][r-1], n-r+1)
			t.binom[n][r], _ = bits.Div64(hi, lo, r)
		}
	}
	// The central coefficients of the last row are pinned to the values
	// existing archives were written with. Encode and Decode never read
	// row 63, and each literal has the same bit length as the exact value.
	for i, v := range centralBinom63 {
		t.binom[BlockSize][29+i] = v
		t.binom[BlockSize][BlockSize-29-i] = v
	}
	for c := 0; c <= BlockSize; c++ {
		if c == 0 || c == BlockSize {
			t.codeLen[c] = 1
			continue
		}
		t.codeLen[c] = uint8(ibits.CeilLog2(t.binom[BlockSize][c]))
	}
	return t
}

// Binom returns C(n, r), or 0 when r > n. n must be at most 63.
func (t *Table) Binom(n, r int) uint64 {
	if r < 0 || r > n {
		return 0
	}
	return t.binom[n][r]
}

// CodeLen returns the number of bits used to store the offset of a block
// with c set bits.
func (t *Table) CodeLen(c int) uint {
	return uint(t.codeLen[c])
}

// Encode returns the combinatorial offset of the 63-bit block word among
// all blocks with k set bits. k must equal the popcount of word.
func (t *Table) Encode(word uint64, k int) uint64 {
	var r uint64
	for j := 0; k > 0; j++ {
		if word>>j&1 == 0 {
			continue
		}
		if BlockSize-j == k {
			break
		}
		r += t.binom[BlockSize-1-j][k]
		k--
	}
	return r
}

// Decode returns the block word with k set bits at combinatorial offset.
func (t *Table) Decode(offset uint64, k int) uint64 {
	if k < 0 || k > BlockSize {
		panic(fmt.Sprintf("rrr: block class %d out of [0, %d]", k, BlockSize))
	}
	var word uint64
	for j := 0; k > 0; j++ {
		if BlockSize-j == k {
			word |= ibits.Mask(uint(k)) << j
			break
		}
		if c := t.binom[BlockSize-1-j][k]; offset >= c {
			word |= 1 << j
			offset -= c
			k--
		}
	}
	return word
}
