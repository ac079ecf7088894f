package archive

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	succincterrors "github.com/tamirms/succinct/errors"
)

// sample is a small record exercising every field kind.
type sample struct {
	count uint64
	width uint8
	bin   []byte
	mem   []byte
}

func (s *sample) Save(w Writer) error {
	w.StartClass("sample", 2)
	w.Var("count").PutUint64(s.count)
	w.Var("width").PutUint8(s.width)
	w.Var("bin").SaveBin(s.bin)
	w.Var("mem").SaveMem(s.mem)
	w.EndClass()
	return w.Err()
}

func (s *sample) Load(r Reader) error {
	if err := ExpectClass(r, "sample", 2); err != nil {
		return err
	}
	var err error
	if s.count, err = r.Var("count").Uint64(); err != nil {
		return err
	}
	if s.width, err = r.Var("width").Uint8(); err != nil {
		return err
	}
	s.bin = make([]byte, 3)
	if err := r.Var("bin").LoadBin(s.bin); err != nil {
		return err
	}
	if s.mem, err = r.Var("mem").LoadMem(); err != nil {
		return err
	}
	return r.EndClass()
}

func newSample() *sample {
	return &sample{
		count: 0xDEADBEEFCAFE,
		width: 17,
		bin:   []byte{1, 2, 3},
		mem:   []byte("memory region payload"),
	}
}

func TestRoundTrip(t *testing.T) {
	in := newSample()
	buf := NewBuffer()
	require.NoError(t, in.Save(buf))
	require.True(t, buf.Balanced())

	out := &sample{}
	r := buf.Reader()
	require.NoError(t, out.Load(r))
	require.Equal(t, in, out)
	require.Zero(t, r.Remaining())
}

func TestSizeMatchesBuffer(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 63, 64, 1000} {
		in := newSample()
		in.mem = bytes.Repeat([]byte{0xAB}, n)
		buf := NewBuffer()
		require.NoError(t, in.Save(buf))

		size, err := Size(in)
		require.NoError(t, err)
		require.Equal(t, int64(len(buf.Bytes())), size, "payload %d", n)
	}
}

func TestRegionAlignment(t *testing.T) {
	buf := NewBuffer()
	buf.PutUint8(1)
	buf.SaveMem([]byte{9, 9, 9})
	buf.PutUint8(2)
	buf.SaveMem([]byte{7})

	data := buf.Bytes()
	r := NewReader(data)
	_, err := r.Uint8()
	require.NoError(t, err)

	p, err := r.LoadMem()
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9, 9}, p)
	require.Zero(t, r.Pos()%regionAlign)

	_, err = r.Uint8()
	require.NoError(t, err)
	start := r.Pos()
	p, err = r.LoadMem()
	require.NoError(t, err)
	require.Equal(t, []byte{7}, p)
	require.Zero(t, r.Pos()%regionAlign)
	// marker + size + pad + payload + pad
	require.Equal(t, int64(4+8+3+1+7), r.Pos()-start)
}

func TestRegionPayloadOffsetAligned(t *testing.T) {
	for lead := 0; lead < 16; lead++ {
		buf := NewBuffer()
		for i := 0; i < lead; i++ {
			buf.PutUint8(uint8(i))
		}
		buf.SaveMem([]byte("payload!"))
		data := buf.Bytes()

		idx := bytes.Index(data, []byte("payload!"))
		require.GreaterOrEqual(t, idx, 0)
		require.Zero(t, idx%regionAlign, "lead %d", lead)
	}
}

func TestWrongClass(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, newSample().Save(buf))

	_, err := buf.Reader().LoadClass("other")
	require.ErrorIs(t, err, succincterrors.ErrWrongClass)
}

func TestWrongVersion(t *testing.T) {
	buf := NewBuffer()
	buf.StartClass("sample", 3)
	buf.EndClass()

	err := ExpectClass(buf.Reader(), "sample", 2)
	require.ErrorIs(t, err, succincterrors.ErrWrongVersion)

	v, err := buf.Reader().LoadClass("sample")
	require.NoError(t, err)
	require.Equal(t, uint8(3), v)
}

func TestBadEndMarker(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, newSample().Save(buf))
	data := bytes.Clone(buf.Bytes())
	data[len(data)-1] = 'x'

	err := (&sample{}).Load(NewReader(data))
	require.ErrorIs(t, err, succincterrors.ErrBadEndMarker)
}

func TestBadRegionMarker(t *testing.T) {
	buf := NewBuffer()
	buf.SaveMem([]byte{1, 2, 3, 4})
	data := bytes.Clone(buf.Bytes())
	binary.LittleEndian.PutUint32(data, 0x12345678)

	_, err := NewReader(data).LoadMem()
	require.ErrorIs(t, err, succincterrors.ErrBadRegion)
}

func TestTruncation(t *testing.T) {
	buf := NewBuffer()
	require.NoError(t, newSample().Save(buf))
	data := buf.Bytes()

	for cut := 0; cut < len(data); cut++ {
		err := (&sample{}).Load(NewReader(data[:cut]))
		require.ErrorIs(t, err, succincterrors.ErrTruncated, "cut at %d", cut)
	}
}

func TestOversizedRegion(t *testing.T) {
	buf := NewBuffer()
	buf.SaveMem([]byte{1})
	data := bytes.Clone(buf.Bytes())
	binary.LittleEndian.PutUint64(data[4:], 1<<62)

	_, err := NewReader(data).LoadMem()
	require.ErrorIs(t, err, succincterrors.ErrTruncated)
}

func TestClassTag(t *testing.T) {
	a := ClassTag("RRR2", 1)
	b := ClassTag("RRR2", 2)
	require.Equal(t, a&0xFFFFFF, b&0xFFFFFF)
	require.Equal(t, uint32(1), a>>24)
	require.Equal(t, uint32(2), b>>24)
	require.NotEqual(t, ClassTag("SDArraySml", 1), ClassTag("Bitvector", 1))
}

type failWriter struct{ after int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, bytes.ErrTooLarge
	}
	f.after--
	return len(p), nil
}

func TestStickyError(t *testing.T) {
	w := NewWriter(&failWriter{after: 1})
	w.PutUint64(1)
	w.PutUint64(2)
	pos := w.Pos()
	w.PutUint64(3)
	require.ErrorIs(t, w.Err(), bytes.ErrTooLarge)
	require.Equal(t, pos, w.Pos())
	require.Error(t, newSample().Save(w))
}

func TestInfoWriter(t *testing.T) {
	in := newSample()
	iw := NewInfoWriter()
	iw.StartClass("outer", 1)
	iw.Var("inner")
	require.NoError(t, in.Save(iw))
	iw.Var("tail").PutUint64(5)
	iw.EndClass()
	require.NoError(t, iw.Err())

	buf := NewBuffer()
	buf.StartClass("outer", 1)
	require.NoError(t, in.Save(buf))
	buf.PutUint64(5)
	buf.EndClass()
	require.Equal(t, int64(len(buf.Bytes())), iw.Pos())

	out := iw.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7, out)
	require.True(t, strings.HasPrefix(lines[0], "outer v1"), out)
	require.Contains(t, lines[1], "inner: sample v2")
	require.Contains(t, lines[2], "count  8 B")
	require.Contains(t, lines[3], "width  1 B")
	require.Contains(t, lines[4], "bin  3 B")
	require.Contains(t, lines[5], "mem")
	require.Contains(t, lines[6], "tail  8 B")
}

func TestInfoWriterUnbalanced(t *testing.T) {
	iw := NewInfoWriter()
	iw.EndClass()
	require.Error(t, iw.Err())
}
