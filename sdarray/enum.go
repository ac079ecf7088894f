package sdarray

import "iter"

// PrefixSumEnum walks inclusive prefix sums in index order, decoding the
// high plane sequentially instead of selecting into it per element.
type PrefixSumEnum struct {
	a     *SDArray
	start uint64

	idx     uint64
	base    uint64
	loPtr   uint64
	hiStart uint64
	hiPtr   uint64
	width   uint
}

// PrefixSums returns an enumerator yielding PrefixSum(i+1),
// PrefixSum(i+2), ..., PrefixSum(Len).
func (a *SDArray) PrefixSums(i uint64) *PrefixSumEnum {
	e := &PrefixSumEnum{a: a, start: i}
	e.Reset()
	return e
}

// Reset rewinds the enumerator to its starting index.
func (e *PrefixSumEnum) Reset() {
	i := e.start
	if i >= e.a.n {
		e.idx = e.a.n
		return
	}
	e.moveBlock(i / BlockSize)
	for r := i % BlockSize; r > 0; r-- {
		e.Next()
	}
}

func (e *PrefixSumEnum) moveBlock(b uint64) {
	blk := e.a.block(b)
	e.base = blk.base
	e.loPtr = blk.lo
	e.hiStart = blk.hi
	e.hiPtr = 0
	e.width = blk.width
	e.idx = b * BlockSize
}

// Next returns the next prefix sum. ok is false once the array is
// exhausted.
func (e *PrefixSumEnum) Next() (v uint64, ok bool) {
	a := e.a
	if e.idx >= a.n {
		return 0, false
	}
	e.hiPtr += a.bits.ScanNext(e.hiStart + e.hiPtr)
	var lo uint64
	if e.width > 0 {
		lo = a.bits.Bits(e.loPtr, e.width)
	}
	hi := e.hiPtr - e.idx%BlockSize
	v = e.base + (hi<<e.width | lo)

	e.hiPtr++
	e.loPtr += uint64(e.width)
	e.idx++
	if e.idx%BlockSize == 0 && e.idx < a.n {
		e.moveBlock(e.idx / BlockSize)
	}
	return v, true
}

// All returns the remaining prefix sums as an iterator.
func (e *PrefixSumEnum) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for {
			v, ok := e.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// ValueEnum walks values in index order.
type ValueEnum struct {
	ps    *PrefixSumEnum
	start uint64
	last  uint64
}

// Values returns an enumerator yielding Lookup(i), Lookup(i+1), ...,
// Lookup(Len-1).
func (a *SDArray) Values(i uint64) *ValueEnum {
	e := &ValueEnum{start: i}
	if i > 0 {
		e.ps = a.PrefixSums(i - 1)
	} else {
		e.ps = a.PrefixSums(0)
	}
	e.Reset()
	return e
}

// Reset rewinds the enumerator to its starting index.
func (e *ValueEnum) Reset() {
	e.ps.Reset()
	e.last = 0
	if e.start > 0 {
		e.last, _ = e.ps.Next()
	}
}

// Next returns the next value. ok is false once the array is exhausted.
func (e *ValueEnum) Next() (v uint64, ok bool) {
	cur, ok := e.ps.Next()
	if !ok {
		return 0, false
	}
	v = cur - e.last
	e.last = cur
	return v, true
}

// All returns the remaining values as an iterator.
func (e *ValueEnum) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for {
			v, ok := e.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
