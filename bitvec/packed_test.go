package bitvec

import (
	"errors"
	"slices"
	"testing"

	"github.com/tamirms/succinct/archive"
	succincterrors "github.com/tamirms/succinct/errors"
)

func TestPackedGetSet(t *testing.T) {
	rng := newTestRNG(t)
	for _, width := range []uint{0, 1, 7, 10, 33, 63, 64} {
		const n = 500
		p := NewPacked(n, width)
		ref := make([]uint64, n)
		for i := 0; i < 3*n; i++ {
			idx := rng.Uint64N(n)
			v := rng.Uint64()
			if width < 64 {
				v &= 1<<width - 1
			}
			p.Set(idx, v)
			ref[idx] = v
		}
		for i, want := range ref {
			if got := p.Get(uint64(i)); got != want {
				t.Fatalf("width %d: Get(%d)=%d, want %d", width, i, got, want)
			}
		}
		if p.Len() != n || p.Width() != width || p.Bits().Len() != n*uint64(width) {
			t.Fatalf("width %d: Len=%d Width=%d bits=%d", width, p.Len(), p.Width(), p.Bits().Len())
		}
	}
}

func TestPackedSaveLoad(t *testing.T) {
	rng := newTestRNG(t)
	p := NewPacked(300, 13)
	for i := uint64(0); i < 300; i++ {
		p.Set(i, rng.Uint64N(1<<13))
	}
	buf := archive.NewBuffer()
	if err := p.Save(buf); err != nil {
		t.Fatal(err)
	}
	got := &Packed{}
	if err := got.Load(buf.Reader()); err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < 300; i++ {
		if got.Get(i) != p.Get(i) {
			t.Fatalf("index %d: %d != %d", i, got.Get(i), p.Get(i))
		}
	}
}

func TestPackedLoadRejectsBadWidth(t *testing.T) {
	buf := archive.NewBuffer()
	buf.StartClass(packedClassName, 1)
	buf.PutUint8(9)
	buf.PutUint64(10)
	New(64).SaveRaw(buf)
	buf.EndClass()

	err := (&Packed{}).Load(buf.Reader())
	if !errors.Is(err, succincterrors.ErrCorrupted) {
		t.Fatalf("Load err=%v, want ErrCorrupted", err)
	}
}

func TestPackedOutOfRangePanics(t *testing.T) {
	p := NewPacked(4, 3)
	mustPanic(t, "Get", func() { p.Get(4) })
	mustPanic(t, "Set", func() { p.Set(4, 1) })
	mustPanic(t, "width", func() { NewPacked(1, 65) })
}

func TestBsearchHints(t *testing.T) {
	rng := newTestRNG(t)
	for iter := 0; iter < 50; iter++ {
		arrlen := rng.IntN(200)
		vals := make([]uint64, arrlen)
		for i := range vals {
			vals[i] = rng.Uint64N(10000)
		}
		slices.Sort(vals)
		rangelen := uint64(10000)
		lrate := uint(rng.IntN(8))

		h := BsearchHints(slices.Values(vals), uint64(arrlen), rangelen, lrate)
		slots := rangelen>>lrate + 2
		if h.Len() != slots {
			t.Fatalf("iter %d: %d slots, want %d", iter, h.Len(), slots)
		}
		for b := uint64(0); b < slots-1; b++ {
			bound := b << lrate
			want := uint64(0)
			for _, v := range vals {
				if v < bound {
					want++
				}
			}
			if got := h.Get(b); got != want {
				t.Fatalf("iter %d lrate %d: hint[%d]=%d, want %d", iter, lrate, b, got, want)
			}
		}
		if got := h.Get(slots - 1); got != uint64(arrlen) {
			t.Fatalf("iter %d: last hint %d, want %d", iter, got, arrlen)
		}
	}
}
