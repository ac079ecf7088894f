package bitvec

import (
	"fmt"

	ibits "github.com/tamirms/succinct/internal/bits"
)

// Builder appends bits to a growing vector. The zero value is ready to use.
type Builder struct {
	words   []uint64
	current uint64
	bitPos  uint
	n       uint64
}

// NewBuilder returns a Builder with room for capBits bits.
func NewBuilder(capBits uint64) *Builder {
	return &Builder{words: make([]uint64, 0, wordCount(capBits))}
}

func (b *Builder) flushWord() {
	b.words = append(b.words, b.current)
	b.current = 0
	b.bitPos = 0
}

// PutBits appends the low n bits of v, least significant first.
// n must be in [0, 64].
func (b *Builder) PutBits(v uint64, n uint) {
	if n == 0 {
		return
	}
	if n > 64 {
		panic(fmt.Sprintf("bitvec: PutBits width %d > 64", n))
	}
	v &= ibits.Mask(n)
	b.n += uint64(n)

	if b.bitPos+n <= 64 {
		b.current |= v << b.bitPos
		b.bitPos += n
		if b.bitPos == 64 {
			b.flushWord()
		}
		return
	}

	inCurrent := 64 - b.bitPos
	b.current |= v << b.bitPos
	b.flushWord()
	b.current = v >> inCurrent
	b.bitPos = n - inCurrent
}

// Put0 appends a clear bit.
func (b *Builder) Put0() { b.PutBits(0, 1) }

// Put1 appends a set bit.
func (b *Builder) Put1() { b.PutBits(1, 1) }

// PutOnes appends n set bits.
func (b *Builder) PutOnes(n uint64) {
	for n >= 64 {
		b.PutBits(^uint64(0), 64)
		n -= 64
	}
	b.PutBits(^uint64(0), uint(n))
}

// PutZeros appends n clear bits.
func (b *Builder) PutZeros(n uint64) {
	if b.bitPos > 0 {
		k := min(n, uint64(64-b.bitPos))
		b.PutBits(0, uint(k))
		n -= k
	}
	b.n += n - n%64
	for ; n >= 64; n -= 64 {
		b.words = append(b.words, 0)
	}
	b.PutBits(0, uint(n))
}

// Len returns the number of bits appended so far.
func (b *Builder) Len() uint64 { return b.n }

// Build returns the appended bits as a BitVector and resets the builder.
func (b *Builder) Build() *BitVector {
	if b.n > MaxLen {
		panic(fmt.Sprintf("bitvec: length %d exceeds %d", b.n, MaxLen))
	}
	words := b.words
	if b.bitPos > 0 {
		words = append(words, b.current)
	}
	bv := &BitVector{words: words, n: b.n}
	*b = Builder{}
	return bv
}
