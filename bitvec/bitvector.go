// Package bitvec provides the plain bit containers the compressed
// structures are built from: a fixed-length BitVector with windowed word
// access, an append-only Builder, a fixed-width Packed integer array and
// bucket hints for bounding binary searches.
package bitvec

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/tamirms/succinct/archive"
	succincterrors "github.com/tamirms/succinct/errors"
	ibits "github.com/tamirms/succinct/internal/bits"
	"github.com/tamirms/succinct/internal/encoding"
)

// MaxLen is the largest supported bit length.
const MaxLen = uint64(1) << 50

// maxStringBits bounds the output of String.
const maxStringBits = 256

const className = "Bitvector"

// BitVector is a fixed-length sequence of bits stored in 64-bit words,
// least significant bit first.
//
// A BitVector loaded from an mmap'd archive aliases read-only memory; only
// vectors created by New, FromWords, Clone or a Builder may be mutated.
type BitVector struct {
	words []uint64
	n     uint64
}

func wordCount(n uint64) int {
	return int((n + 63) / 64)
}

// New returns an all-zero vector of n bits.
func New(n uint64) *BitVector {
	if n > MaxLen {
		panic(fmt.Sprintf("bitvec: length %d exceeds %d", n, MaxLen))
	}
	return &BitVector{words: make([]uint64, wordCount(n)), n: n}
}

// FromWords wraps words as an n-bit vector without copying.
// Bits of the last word at positions >= n are ignored by counting
// operations but kept as-is.
func FromWords(words []uint64, n uint64) *BitVector {
	if n > MaxLen {
		panic(fmt.Sprintf("bitvec: length %d exceeds %d", n, MaxLen))
	}
	if len(words) < wordCount(n) {
		panic(fmt.Sprintf("bitvec: %d words cannot hold %d bits", len(words), n))
	}
	return &BitVector{words: words[:wordCount(n)], n: n}
}

// Len returns the number of bits.
func (bv *BitVector) Len() uint64 { return bv.n }

// WordCount returns the number of backing words.
func (bv *BitVector) WordCount() int { return len(bv.words) }

// Words returns the backing words. The slice aliases the vector.
func (bv *BitVector) Words() []uint64 { return bv.words }

// Word returns backing word i.
func (bv *BitVector) Word(i int) uint64 { return bv.words[i] }

func (bv *BitVector) checkRange(pos uint64, l uint) {
	if l < 1 || l > 64 {
		panic(fmt.Sprintf("bitvec: window width %d out of [1, 64]", l))
	}
	if pos+uint64(l) > bv.n {
		panic(fmt.Sprintf("bitvec: window [%d, %d) beyond length %d", pos, pos+uint64(l), bv.n))
	}
}

// Bits returns the l bits starting at pos as an integer, bit pos in the
// least significant position. l must be in [1, 64].
func (bv *BitVector) Bits(pos uint64, l uint) uint64 {
	bv.checkRange(pos, l)
	i, off := pos/64, uint(pos%64)
	v := bv.words[i] >> off
	if off+l > 64 {
		v |= bv.words[i+1] << (64 - off)
	}
	return v & ibits.Mask(l)
}

// SetBits overwrites the l bits starting at pos with the low l bits of v.
func (bv *BitVector) SetBits(pos uint64, l uint, v uint64) {
	bv.checkRange(pos, l)
	v &= ibits.Mask(l)
	i, off := pos/64, uint(pos%64)
	bv.words[i] = bv.words[i]&^(ibits.Mask(l)<<off) | v<<off
	if off+l > 64 {
		rest := off + l - 64
		bv.words[i+1] = bv.words[i+1]&^ibits.Mask(rest) | v>>(64-off)
	}
}

// Bit reports whether bit pos is set.
func (bv *BitVector) Bit(pos uint64) bool {
	if pos >= bv.n {
		panic(fmt.Sprintf("bitvec: bit %d beyond length %d", pos, bv.n))
	}
	return bv.words[pos/64]>>(pos%64)&1 == 1
}

// SetBit sets or clears bit pos.
func (bv *BitVector) SetBit(pos uint64, b bool) {
	if pos >= bv.n {
		panic(fmt.Sprintf("bitvec: bit %d beyond length %d", pos, bv.n))
	}
	if b {
		bv.words[pos/64] |= 1 << (pos % 64)
	} else {
		bv.words[pos/64] &^= 1 << (pos % 64)
	}
}

// Byte returns bits [8i, 8i+8). A trailing partial byte is zero-extended.
func (bv *BitVector) Byte(i uint64) uint8 {
	pos := i * 8
	if pos >= bv.n {
		panic(fmt.Sprintf("bitvec: byte %d beyond length %d", i, bv.n))
	}
	return uint8(bv.Bits(pos, uint(min(8, bv.n-pos))))
}

// tailMask masks the valid bits of the last word.
func (bv *BitVector) tailMask() uint64 {
	if r := bv.n % 64; r != 0 {
		return ibits.Mask(uint(r))
	}
	return ^uint64(0)
}

// CountOnes returns the number of set bits.
func (bv *BitVector) CountOnes() uint64 {
	if len(bv.words) == 0 {
		return 0
	}
	var c int
	last := len(bv.words) - 1
	for _, w := range bv.words[:last] {
		c += bits.OnesCount64(w)
	}
	c += bits.OnesCount64(bv.words[last] & bv.tailMask())
	return uint64(c)
}

// FillZero clears every bit.
func (bv *BitVector) FillZero() {
	clear(bv.words)
}

// FillOne sets every bit. Bits past Len in the last word stay clear.
func (bv *BitVector) FillOne() {
	for i := range bv.words {
		bv.words[i] = ^uint64(0)
	}
	if len(bv.words) > 0 {
		bv.words[len(bv.words)-1] = bv.tailMask()
	}
}

// Clone returns a deep copy backed by fresh memory.
func (bv *BitVector) Clone() *BitVector {
	return &BitVector{words: append([]uint64(nil), bv.words...), n: bv.n}
}

// String renders the bits as 0/1 text, position 0 first. Long vectors are
// cut after maxStringBits bits.
func (bv *BitVector) String() string {
	var sb strings.Builder
	limit := min(bv.n, maxStringBits)
	sb.Grow(int(limit) + 24)
	for i := uint64(0); i < limit; i++ {
		if bv.words[i/64]>>(i%64)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	if bv.n > limit {
		fmt.Fprintf(&sb, "... (%d bits)", bv.n)
	}
	return sb.String()
}

// ScanNext returns the distance from pos to the next set bit at or after
// pos. It returns Len()-pos when no such bit exists.
func (bv *BitVector) ScanNext(pos uint64) uint64 {
	if pos >= bv.n {
		return 0
	}
	i := pos / 64
	w := bv.words[i] >> (pos % 64)
	if w != 0 {
		return min(uint64(bits.TrailingZeros64(w)), bv.n-pos)
	}
	for i++; i < uint64(len(bv.words)); i++ {
		if bv.words[i] != 0 {
			return min(i*64+uint64(bits.TrailingZeros64(bv.words[i]))-pos, bv.n-pos)
		}
	}
	return bv.n - pos
}

// ScanOnes returns the offset from pos of the r-th (0-based) set bit at or
// after pos. It returns Len()-pos when fewer than r+1 such bits exist.
func (bv *BitVector) ScanOnes(pos, r uint64) uint64 {
	return bv.scan(pos, r, false)
}

// ScanZeros returns the offset from pos of the r-th (0-based) clear bit at
// or after pos. It returns Len()-pos when fewer than r+1 such bits exist.
func (bv *BitVector) ScanZeros(pos, r uint64) uint64 {
	return bv.scan(pos, r, true)
}

func (bv *BitVector) scan(pos, r uint64, zeros bool) uint64 {
	if pos >= bv.n {
		return 0
	}
	i := pos / 64
	off := pos % 64
	w := bv.words[i]
	if zeros {
		w = ^w
	}
	w >>= off
	base := i*64 + off
	for {
		c := uint64(bits.OnesCount64(w))
		if r < c {
			return min(base+uint64(ibits.Select64(w, int(r)))-pos, bv.n-pos)
		}
		r -= c
		i++
		if i >= uint64(len(bv.words)) {
			return bv.n - pos
		}
		w = bv.words[i]
		if zeros {
			w = ^w
		}
		base = i * 64
	}
}

// Save writes the vector as a "Bitvector" record.
func (bv *BitVector) Save(w archive.Writer) error {
	w.StartClass(className, 1)
	bv.SaveRaw(w)
	w.EndClass()
	return w.Err()
}

// SaveRaw writes the vector fields without a class bracket.
func (bv *BitVector) SaveRaw(w archive.Writer) {
	w.Var("bit_len").PutUint64(bv.n)
	w.Var("bits").SaveMem(encoding.Bytes(bv.words))
}

// Load reads a "Bitvector" record. The words alias the reader's data when
// it is suitably aligned.
func (bv *BitVector) Load(r archive.Reader) error {
	if err := archive.ExpectClass(r, className, 1); err != nil {
		return err
	}
	if err := bv.LoadRaw(r); err != nil {
		return err
	}
	return r.EndClass()
}

// LoadRaw reads fields written by SaveRaw.
func (bv *BitVector) LoadRaw(r archive.Reader) error {
	n, err := r.Var("bit_len").Uint64()
	if err != nil {
		return err
	}
	if n > MaxLen {
		return fmt.Errorf("%w: bit length %d exceeds %d", succincterrors.ErrCorrupted, n, MaxLen)
	}
	b, err := r.Var("bits").LoadMem()
	if err != nil {
		return err
	}
	if len(b) != wordCount(n)*8 {
		return fmt.Errorf("%w: %d bits stored in %d bytes", succincterrors.ErrCorrupted, n, len(b))
	}
	words, _ := encoding.Words(b)
	bv.words = words
	bv.n = n
	return nil
}
