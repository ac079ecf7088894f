// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// FastRange64 maps a 64-bit hash uniformly to [0, n).
// Uses the "fastrange" technique: multiply and take high bits.
func FastRange64(hash, n uint64) uint64 {
	hi, _ := bits.Mul64(hash, n)
	return hi
}

// CeilLog2 returns ceil(log2(x)), the number of bits needed to store any
// value in [0, x). CeilLog2(0) and CeilLog2(1) are 0.
func CeilLog2(x uint64) uint {
	if x <= 1 {
		return 0
	}
	return uint(bits.Len64(x - 1))
}

// Mask returns a word with the low n bits set, n in [0, 64].
func Mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// Select64 returns the position of the k-th (0-indexed) set bit of x.
// Returns 64 when x has k or fewer set bits.
func Select64(x uint64, k int) int {
	// Skip whole bytes first, then strip set bits inside the target byte.
	for shift := 0; shift < 64; shift += 8 {
		b := uint8(x >> shift)
		c := bits.OnesCount8(b)
		if k < c {
			for ; k > 0; k-- {
				b &= b - 1
			}
			return shift + bits.TrailingZeros8(b)
		}
		k -= c
	}
	return 64
}
