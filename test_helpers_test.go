package succinct

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/tamirms/succinct/archive"
	"github.com/tamirms/succinct/bitvec"
	"github.com/tamirms/succinct/rrr"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomBits returns an n-bit vector where each bit is set with
// probability density.
func randomBits(rng *randv2.Rand, n uint64, density float64) *bitvec.BitVector {
	bv := bitvec.New(n)
	for i := range n {
		if rng.Float64() < density {
			bv.SetBit(i, true)
		}
	}
	return bv
}

// writeTestRRR saves an RRR vector over random bits to a temp file and
// returns the path with the source vector.
func writeTestRRR(t testing.TB, n uint64) (string, *bitvec.BitVector) {
	t.Helper()
	bv := randomBits(newTestRNG(t), n, 0.1)
	path := filepath.Join(t.TempDir(), "test.succ")
	if err := WriteFile(path, rrr.Build(bv)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, bv
}

// readTestFile returns the contents of path.
func readTestFile(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// wrapBody frames an archive body with a valid header and footer.
func wrapBody(body []byte) []byte {
	data := make([]byte, headerSize+len(body)+footerSize)
	hdr := header{Magic: magic, Version: version, BodySize: uint64(len(body))}
	hdr.encodeTo(data)
	copy(data[headerSize:], body)
	ftr := footer{BodyHash: xxhash.Sum64(body)}
	ftr.encodeTo(data[headerSize+len(body):])
	return data
}

// checkRRR compares every rank and bit of q against bv.
func checkRRR(t *testing.T, q *rrr.RRR, bv *bitvec.BitVector) {
	t.Helper()
	if q.Len() != bv.Len() {
		t.Fatalf("Len() = %d, want %d", q.Len(), bv.Len())
	}
	var ones uint64
	for i := range bv.Len() {
		if got := q.Rank(i); got != ones {
			t.Fatalf("Rank(%d) = %d, want %d", i, got, ones)
		}
		if bv.Bit(i) {
			if got := q.Select(ones); got != i {
				t.Fatalf("Select(%d) = %d, want %d", ones, got, i)
			}
			ones++
		}
	}
	if q.OneCount() != ones {
		t.Fatalf("OneCount() = %d, want %d", q.OneCount(), ones)
	}
}

// failingSaver reports an error from Save.
type failingSaver struct{ err error }

func (s failingSaver) Save(w archive.Writer) error { return s.err }

// lateFailingSaver measures cleanly and fails on the real write.
type lateFailingSaver struct {
	err   error
	calls int
}

func (s *lateFailingSaver) Save(w archive.Writer) error {
	s.calls++
	w.StartClass("late", 1)
	w.PutUint64(7)
	w.EndClass()
	if s.calls > 1 {
		return s.err
	}
	return w.Err()
}

// unbalancedSaver leaves a class record open.
type unbalancedSaver struct{}

func (unbalancedSaver) Save(w archive.Writer) error {
	w.StartClass("open", 1)
	w.PutUint64(7)
	return w.Err()
}

// growingSaver writes more bytes on every call, so the measured size
// never matches the real one.
type growingSaver struct{ calls int }

func (s *growingSaver) Save(w archive.Writer) error {
	w.StartClass("grow", 1)
	w.SaveBin(make([]byte, 8*s.calls))
	s.calls++
	w.EndClass()
	return w.Err()
}
