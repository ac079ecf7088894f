package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/bits"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

func TestFastRange64Range(t *testing.T) {
	rng := newTestRNG(t)
	for i := 0; i < 10000; i++ {
		n := rng.Uint64N(1<<50) + 1
		h := rng.Uint64()
		if got := FastRange64(h, n); got >= n {
			t.Fatalf("iter %d: FastRange64(0x%X, %d)=%d >= %d", i, h, n, got, n)
		}
	}
}

func TestCeilLog2(t *testing.T) {
	cases := []struct {
		x    uint64
		want uint
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {63, 6}, {64, 6}, {65, 7},
		{1 << 40, 40}, {1<<40 + 1, 41}, {math.MaxUint64, 64},
	}
	for _, c := range cases {
		if got := CeilLog2(c.x); got != c.want {
			t.Errorf("CeilLog2(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestMask(t *testing.T) {
	if Mask(0) != 0 {
		t.Errorf("Mask(0) = %x", Mask(0))
	}
	if Mask(64) != math.MaxUint64 {
		t.Errorf("Mask(64) = %x", Mask(64))
	}
	for n := uint(1); n < 64; n++ {
		if bits.OnesCount64(Mask(n)) != int(n) || Mask(n)>>n != 0 {
			t.Fatalf("Mask(%d) = %x", n, Mask(n))
		}
	}
}

// TestSelect64 compares Select64 against a bit-by-bit scan.
func TestSelect64(t *testing.T) {
	rng := newTestRNG(t)
	words := []uint64{0, 1, math.MaxUint64, 1 << 63, 0x8000000000000001, 0x00FF00FF00FF00FF}
	for i := 0; i < 2000; i++ {
		words = append(words, rng.Uint64()&rng.Uint64())
	}
	for _, w := range words {
		k := 0
		for pos := 0; pos < 64; pos++ {
			if w&(1<<pos) == 0 {
				continue
			}
			if got := Select64(w, k); got != pos {
				t.Fatalf("Select64(0x%X, %d) = %d, want %d", w, k, got, pos)
			}
			k++
		}
		if got := Select64(w, k); got != 64 {
			t.Fatalf("Select64(0x%X, %d) past last one = %d, want 64", w, k, got)
		}
	}
}
