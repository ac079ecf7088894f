package sdarray

import (
	"fmt"
	"math/bits"

	"github.com/tamirms/succinct/archive"
	"github.com/tamirms/succinct/bitvec"
	succincterrors "github.com/tamirms/succinct/errors"
)

const className = "SDArraySml"

// Save writes a as an "SDArraySml" record.
func (a *SDArray) Save(w archive.Writer) error {
	bits := a.bits
	if bits == nil {
		bits = bitvec.New(0)
	}
	w.StartClass(className, 1)
	w.Var("length").PutUint64(a.n)
	w.Var("sum").PutUint64(a.sum)
	if err := bits.Save(w.Var("bits")); err != nil {
		return err
	}
	table := bitvec.FromWords(a.table, uint64(len(a.table))*64)
	if err := table.Save(w.Var("table")); err != nil {
		return err
	}
	w.EndClass()
	return w.Err()
}

// Load reads an "SDArraySml" record.
func (a *SDArray) Load(r archive.Reader) error {
	if err := archive.ExpectClass(r, className, 1); err != nil {
		return err
	}
	n, err := r.Var("length").Uint64()
	if err != nil {
		return err
	}
	sum, err := r.Var("sum").Uint64()
	if err != nil {
		return err
	}
	var bits, table bitvec.BitVector
	if err := bits.Load(r.Var("bits")); err != nil {
		return err
	}
	if err := table.Load(r.Var("table")); err != nil {
		return err
	}
	if err := r.EndClass(); err != nil {
		return err
	}

	blocks := (n + BlockSize - 1) / BlockSize
	if table.Len() != blocks*3*64 {
		return fmt.Errorf("%w: sdarray table of %d bits for %d blocks",
			succincterrors.ErrCorrupted, table.Len(), blocks)
	}
	loaded := SDArray{bits: &bits, table: table.Words(), n: n, sum: sum}
	if err := loaded.check(); err != nil {
		return err
	}
	*a = loaded
	return nil
}

// check verifies that each block's low parts, high plane and hints lie
// inside the bit stream and that the block sums chain up to the total.
func (a *SDArray) check() error {
	blocks := a.BlockCount()
	var base uint64
	for b := uint64(0); b < blocks; b++ {
		info := a.table[3*b+1]
		width, lo := info>>widthShift, info&ptrMask
		end := a.bits.Len()
		if b+1 < blocks {
			end = a.table[3*(b+1)+1] & ptrMask
		}
		// Low parts, then a high plane holding at least BlockSize ones.
		if width > 64 || lo > end || end-lo < (width+1)*BlockSize {
			return fmt.Errorf("%w: sdarray block %d spans [%d, %d) of %d bits",
				succincterrors.ErrCorrupted, b, lo, end, a.bits.Len())
		}
		blk := a.block(b)
		plane := end - blk.hi
		if a.bits.ScanOnes(blk.hi, BlockSize-1) != plane-1 {
			return fmt.Errorf("%w: sdarray block %d high plane does not end at bit %d",
				succincterrors.ErrCorrupted, b, end)
		}
		for p := uint64(0); p < subBlocks-1; p++ {
			if want := a.bits.ScanOnes(blk.hi, (p+1)*subBlockSize-1); hint(blk.hints, p) != want {
				return fmt.Errorf("%w: sdarray block %d hint %d is %d, want %d",
					succincterrors.ErrCorrupted, b, p, hint(blk.hints, p), want)
			}
		}
		if blk.base != base {
			return fmt.Errorf("%w: sdarray block %d base %d, want %d",
				succincterrors.ErrCorrupted, b, blk.base, base)
		}
		last := (plane-BlockSize)<<blk.width | a.low(&blk, BlockSize-1)
		var carry uint64
		if base, carry = bits.Add64(base, last, 0); carry != 0 {
			return fmt.Errorf("%w: sdarray block %d sum overflows", succincterrors.ErrCorrupted, b)
		}
	}
	if base != a.sum {
		return fmt.Errorf("%w: sdarray blocks sum to %d, header says %d",
			succincterrors.ErrCorrupted, base, a.sum)
	}
	return nil
}
