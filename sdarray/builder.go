package sdarray

import (
	"fmt"
	"math/bits"

	"github.com/tamirms/succinct/bitvec"
	ibits "github.com/tamirms/succinct/internal/bits"
)

// Builder accumulates values and produces an SDArray. The zero value is
// ready to use; a Builder can be reused after Build.
type Builder struct {
	vals  []uint64
	cnt   uint64
	pSum  uint64 // total of all flushed blocks
	total uint64 // total of every added value

	bits  bitvec.Builder
	table []uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{vals: make([]uint64, 0, BlockSize)}
}

// Add appends v. It panics if the running total would overflow uint64.
func (b *Builder) Add(v uint64) {
	total, carry := bits.Add64(b.total, v, 0)
	if carry != 0 {
		panic(fmt.Sprintf("sdarray: adding %d to sum %d overflows uint64", v, b.total))
	}
	b.cnt++
	b.vals = append(b.vals, v)
	if len(b.vals) == BlockSize {
		b.buildBlock()
	}
	b.total = total
}

// AddInc appends the value that makes the running total equal pos.
// pos must not be below CurrentSum.
func (b *Builder) AddInc(pos uint64) {
	if pos < b.total {
		panic(fmt.Sprintf("sdarray: AddInc(%d) below current sum %d", pos, b.total))
	}
	b.Add(pos - b.total)
}

// CurrentSum returns the total of all values added so far.
func (b *Builder) CurrentSum() uint64 { return b.total }

// Len returns the number of values added so far.
func (b *Builder) Len() uint64 { return b.cnt }

// buildBlock encodes the buffered values as one block:
//
//	table[3b]   sum of all previous blocks
//	table[3b+1] bit offset of the block | low width<<57
//	table[3b+2] six 10-bit select hints into the high plane
//
// followed in the bit stream by BlockSize low parts of width bits and the
// unary high plane (element i is the one at position high_i+i).
func (b *Builder) buildBlock() {
	if len(b.vals) == 0 {
		return
	}
	vals := b.vals
	for len(vals) < BlockSize {
		vals = append(vals, 0)
	}
	for i := 1; i < len(vals); i++ {
		vals[i] += vals[i-1]
	}

	begPos := b.bits.Len()
	if begPos > ptrMask {
		panic(fmt.Sprintf("sdarray: bit stream offset %d overflows block pointer", begPos))
	}
	last := vals[BlockSize-1]
	b.table = append(b.table, b.pSum)
	b.pSum += last

	width := ibits.CeilLog2(1 + last/BlockSize)
	for _, v := range vals {
		b.bits.PutBits(v, width)
	}

	var hints uint64
	for p, i := 0, subBlockSize; p < subBlocks-1; p, i = p+1, i+subBlockSize {
		hp := vals[i-1]>>width + uint64(i-1)
		hints |= hp << (p * hintBits)
	}

	var j uint64
	for i, v := range vals {
		pos := v>>width + uint64(i)
		b.bits.PutZeros(pos - j)
		b.bits.Put1()
		j = pos + 1
	}

	b.table = append(b.table, begPos|uint64(width)<<widthShift, hints)
	b.vals = vals[:0]
}

// Build flushes the last partial block and returns the finished array.
// The builder is reset.
func (b *Builder) Build() *SDArray {
	b.buildBlock()
	a := &SDArray{
		bits:  b.bits.Build(),
		table: b.table,
		n:     b.cnt,
		sum:   b.pSum,
	}
	b.vals = b.vals[:0]
	b.cnt, b.pSum, b.total = 0, 0, 0
	b.table = nil
	return a
}
