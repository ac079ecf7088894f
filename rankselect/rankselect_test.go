package rankselect

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"

	"github.com/tamirms/succinct/archive"
	"github.com/tamirms/succinct/bitvec"
	succincterrors "github.com/tamirms/succinct/errors"
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

// randomPositions returns k distinct sorted positions below universe.
func randomPositions(rng *rand.Rand, universe uint64, k int) []uint64 {
	seen := make(map[uint64]struct{}, k)
	for len(seen) < k {
		seen[rng.Uint64N(universe)] = struct{}{}
	}
	pos := make([]uint64, 0, k)
	for p := range seen {
		pos = append(pos, p)
	}
	slices.Sort(pos)
	return pos
}

func naiveRank(pos []uint64, p uint64) uint64 {
	return uint64(sort.Search(len(pos), func(i int) bool { return pos[i] >= p }))
}

func checkSet(t *testing.T, rs *RankSelect, pos []uint64, queries []uint64) {
	t.Helper()
	require.Equal(t, uint64(len(pos)), rs.OneCount())
	for r, p := range pos {
		if got := rs.Select(uint64(r)); got != p {
			t.Fatalf("Select(%d)=%d, want %d", r, got, p)
		}
		if !rs.Bit(p) {
			t.Fatalf("Bit(%d)=false for a member", p)
		}
	}
	for _, p := range queries {
		if got, want := rs.Rank(p), naiveRank(pos, p); got != want {
			t.Fatalf("Rank(%d)=%d, want %d", p, got, want)
		}
		_, member := slices.BinarySearch(pos, p)
		if got := rs.Bit(p); got != member {
			t.Fatalf("Bit(%d)=%v, want %v", p, got, member)
		}
	}
}

func TestPositionsScenario(t *testing.T) {
	rs, err := FromPositions([]uint64{2, 5, 5000, 5001, 100000})
	require.NoError(t, err)

	require.Equal(t, uint64(2), rs.Rank(5000))
	require.Equal(t, uint64(3), rs.Rank(5001))
	require.Equal(t, uint64(2), rs.Select(0))
	require.True(t, rs.Bit(5000))
	require.False(t, rs.Bit(5002))
	require.Equal(t, uint64(5), rs.Rank(200000))
	require.Equal(t, uint64(100001), rs.Universe())
	require.Equal(t, "{2,5,5000,5001,100000}", rs.String())
}

func TestRandomSets(t *testing.T) {
	rng := newTestRNG(t)
	cases := []struct {
		universe uint64
		k        int
	}{
		{1, 1},
		{10, 10},
		{1000, 3},
		{1000, 900},
		{200000, 5},
		{200000, 5000},
		{1 << 40, 2000},
	}
	for _, tc := range cases {
		pos := randomPositions(rng, tc.universe, tc.k)
		rs, err := FromPositions(pos)
		require.NoError(t, err)

		var queries []uint64
		for _, p := range pos {
			queries = append(queries, p, p+1, max(p, 1)-1)
		}
		for i := 0; i < 2000; i++ {
			queries = append(queries, rng.Uint64N(tc.universe+10))
		}
		queries = append(queries, 0, tc.universe, tc.universe+1)
		checkSet(t, rs, pos, queries)
	}
}

func TestPositionZero(t *testing.T) {
	rs, err := FromPositions([]uint64{0, 1, 7})
	require.NoError(t, err)
	require.Equal(t, uint64(0), rs.Select(0))
	require.True(t, rs.Bit(0))
	require.Equal(t, uint64(0), rs.Rank(0))
	require.Equal(t, uint64(1), rs.Rank(1))
	require.Equal(t, uint64(3), rs.Rank(8))
}

func TestInputErrors(t *testing.T) {
	_, err := FromPositions([]uint64{1, 5, 3})
	require.ErrorIs(t, err, succincterrors.ErrUnsortedInput)

	_, err = FromPositions([]uint64{1, 5, 5, 9})
	require.ErrorIs(t, err, succincterrors.ErrDuplicatePosition)
}

func TestEmpty(t *testing.T) {
	rs, err := FromPositions(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rs.OneCount())
	require.Equal(t, uint64(0), rs.Universe())
	require.Equal(t, uint64(0), rs.Rank(0))
	require.Equal(t, uint64(0), rs.Rank(100))
	require.False(t, rs.Bit(3))
	require.Equal(t, "{}", rs.String())
	require.Panics(t, func() { rs.Select(0) })
}

func TestFromBitVectorAndBitSet(t *testing.T) {
	rng := newTestRNG(t)
	const n = 70000
	bv := bitvec.New(n)
	bs := bitset.New(n)
	var pos []uint64
	for i := uint64(0); i < n; i++ {
		if rng.IntN(40) == 0 {
			bv.SetBit(i, true)
			bs.Set(uint(i))
			pos = append(pos, i)
		}
	}
	bv.SetBit(n-1, true)
	bs.Set(n - 1)
	if pos[len(pos)-1] != n-1 {
		pos = append(pos, n-1)
	}

	fromBV := FromBitVector(bv)
	fromBS := FromBitSet(bs)
	fromPos, err := FromPositions(pos)
	require.NoError(t, err)

	for _, rs := range []*RankSelect{fromBV, fromBS, fromPos} {
		require.Equal(t, pos, slices.Collect(rs.Positions()))
	}
	queries := make([]uint64, 0, 3000)
	for i := 0; i < 3000; i++ {
		queries = append(queries, rng.Uint64N(n+5))
	}
	checkSet(t, fromBV, pos, queries)
	checkSet(t, fromBS, pos, queries)
}

// TestMatchesRoaring cross-checks against a roaring bitmap, whose Rank
// counts members at or below x.
func TestMatchesRoaring(t *testing.T) {
	rng := newTestRNG(t)
	pos := randomPositions(rng, 1<<24, 20000)
	rb := roaring.New()
	for _, p := range pos {
		rb.Add(uint32(p))
	}
	rs, err := FromPositions(pos)
	require.NoError(t, err)

	for i := 0; i < 5000; i++ {
		x := uint32(rng.Uint64N(1 << 24))
		require.Equal(t, rb.Rank(x), rs.Rank(uint64(x)+1), "rank at %d", x)
		require.Equal(t, rb.Contains(x), rs.Bit(uint64(x)), "membership of %d", x)
	}
	for r := uint64(0); r < rs.OneCount(); r += 13 {
		want, err := rb.Select(uint32(r))
		require.NoError(t, err)
		require.Equal(t, uint64(want), rs.Select(r))
	}
}

func TestSelectRankDuality(t *testing.T) {
	rng := newTestRNG(t)
	pos := randomPositions(rng, 1<<20, 3000)
	rs, err := FromPositions(pos)
	require.NoError(t, err)

	for r := uint64(0); r < rs.OneCount(); r++ {
		require.Equal(t, r, rs.Rank(rs.Select(r)))
	}
	for i := 0; i < 2000; i++ {
		p := rng.Uint64N(rs.Universe())
		// Select(Rank(p+1)-1) is the nearest member at or before p.
		k := rs.Rank(p + 1)
		if k == 0 {
			require.Less(t, p, pos[0])
			continue
		}
		s := rs.Select(k - 1)
		require.LessOrEqual(t, s, p)
		require.Equal(t, k, rs.Rank(s+1))
	}
}

func TestClear(t *testing.T) {
	rs, err := FromPositions([]uint64{3, 4})
	require.NoError(t, err)
	rs.Clear()
	require.Equal(t, uint64(0), rs.OneCount())
	require.Equal(t, uint64(0), rs.Rank(10))
	require.False(t, rs.Bit(3))
}

func TestSaveLoad(t *testing.T) {
	rng := newTestRNG(t)
	for _, k := range []int{0, 1, 700, 4000} {
		pos := randomPositions(rng, 1<<22, k)
		rs, err := FromPositions(pos)
		require.NoError(t, err)

		buf := archive.NewBuffer()
		require.NoError(t, rs.Save(buf))

		loaded := &RankSelect{}
		require.NoError(t, loaded.Load(buf.Reader()))
		queries := make([]uint64, 0, 1000)
		for i := 0; i < 1000; i++ {
			queries = append(queries, rng.Uint64N(1<<22+1))
		}
		checkSet(t, loaded, pos, queries)

		again := archive.NewBuffer()
		require.NoError(t, loaded.Save(again))
		require.Equal(t, buf.Bytes(), again.Bytes())
	}
}

func TestLoadRejectsBadHints(t *testing.T) {
	rs, err := FromPositions([]uint64{10, 20, 30})
	require.NoError(t, err)

	buf := archive.NewBuffer()
	buf.StartClass(className, 1)
	require.NoError(t, rs.qs.Save(buf))
	buf.PutUint8(uint8(rs.lrate))
	require.NoError(t, bitvec.NewPacked(1, 4).Save(buf))
	buf.EndClass()

	err = (&RankSelect{}).Load(buf.Reader())
	require.ErrorIs(t, err, succincterrors.ErrCorrupted)
}

func BenchmarkRank(b *testing.B) {
	rng := newTestRNG(b)
	pos := randomPositions(rng, 1<<30, 1<<16)
	rs, err := FromPositions(pos)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rs.Rank(uint64(i) * 16411 % (1 << 30))
	}
}
