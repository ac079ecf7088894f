package bitvec

import (
	"fmt"

	"github.com/tamirms/succinct/archive"
	succincterrors "github.com/tamirms/succinct/errors"
)

const packedClassName = "FixedWArray"

// Packed is an array of n unsigned integers of width bits each, stored
// back to back in a BitVector. Width 0 stores nothing and reads zeros.
type Packed struct {
	bv    *BitVector
	width uint
	n     uint64
}

// NewPacked returns a zeroed array of n values of width bits.
func NewPacked(n uint64, width uint) *Packed {
	if width > 64 {
		panic(fmt.Sprintf("bitvec: packed width %d > 64", width))
	}
	return &Packed{bv: New(n * uint64(width)), width: width, n: n}
}

// Get returns value i.
func (p *Packed) Get(i uint64) uint64 {
	if i >= p.n {
		panic(fmt.Sprintf("bitvec: packed index %d out of range [0, %d)", i, p.n))
	}
	if p.width == 0 {
		return 0
	}
	return p.bv.Bits(i*uint64(p.width), p.width)
}

// Set stores the low width bits of v at index i.
func (p *Packed) Set(i uint64, v uint64) {
	if i >= p.n {
		panic(fmt.Sprintf("bitvec: packed index %d out of range [0, %d)", i, p.n))
	}
	if p.width == 0 {
		return
	}
	p.bv.SetBits(i*uint64(p.width), p.width, v)
}

// Len returns the number of values.
func (p *Packed) Len() uint64 { return p.n }

// Width returns the bit width of each value.
func (p *Packed) Width() uint { return p.width }

// Bits returns the underlying bit storage.
func (p *Packed) Bits() *BitVector { return p.bv }

// Save writes the array as a "FixedWArray" record.
func (p *Packed) Save(w archive.Writer) error {
	w.StartClass(packedClassName, 1)
	w.Var("bitwidth").PutUint8(uint8(p.width))
	w.Var("len").PutUint64(p.n)
	p.bv.SaveRaw(w)
	w.EndClass()
	return w.Err()
}

// Load reads a "FixedWArray" record.
func (p *Packed) Load(r archive.Reader) error {
	if err := archive.ExpectClass(r, packedClassName, 1); err != nil {
		return err
	}
	width, err := r.Var("bitwidth").Uint8()
	if err != nil {
		return err
	}
	n, err := r.Var("len").Uint64()
	if err != nil {
		return err
	}
	bv := &BitVector{}
	if err := bv.LoadRaw(r); err != nil {
		return err
	}
	if width > 64 || (width > 0 && n > MaxLen/uint64(width)) || bv.Len() != n*uint64(width) {
		return fmt.Errorf("%w: packed array of %d x %d bits over %d bits",
			succincterrors.ErrCorrupted, n, width, bv.Len())
	}
	if err := r.EndClass(); err != nil {
		return err
	}
	p.bv, p.width, p.n = bv, uint(width), n
	return nil
}
