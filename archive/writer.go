package archive

import (
	"bytes"
	"encoding/binary"
	"io"
)

var zeroPad [regionAlign]byte

// StreamWriter writes records to an io.Writer.
type StreamWriter struct {
	w   io.Writer
	pos int64
	err error

	openClasses int
}

// NewWriter returns a Writer that streams records to w.
func NewWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// NewSizeWriter returns a Writer that only counts bytes.
func NewSizeWriter() *StreamWriter {
	return &StreamWriter{w: io.Discard}
}

func (sw *StreamWriter) write(p []byte) {
	if sw.err != nil || len(p) == 0 {
		return
	}
	n, err := sw.w.Write(p)
	sw.pos += int64(n)
	if err != nil {
		sw.err = err
	}
}

func (sw *StreamWriter) putUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	sw.write(buf[:])
}

// StartClass writes the class header for name at version.
func (sw *StreamWriter) StartClass(name string, version uint8) {
	sw.putUint32(ClassTag(name, version))
	sw.openClasses++
}

// EndClass writes the class end marker.
func (sw *StreamWriter) EndClass() {
	sw.write([]byte(endMarker))
	sw.openClasses--
}

// Var is a no-op for stream writers.
func (sw *StreamWriter) Var(string) Writer { return sw }

// PutUint64 writes v little-endian.
func (sw *StreamWriter) PutUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	sw.write(buf[:])
}

// PutUint8 writes a single byte.
func (sw *StreamWriter) PutUint8(v uint8) {
	sw.write([]byte{v})
}

// SaveBin writes p verbatim.
func (sw *StreamWriter) SaveBin(p []byte) {
	sw.write(p)
}

// SaveMem writes p as an aligned memory region.
func (sw *StreamWriter) SaveMem(p []byte) {
	sw.putUint32(regionMagic | regionAlign)
	sw.PutUint64(uint64(len(p)))
	sw.write(zeroPad[:padLen(sw.pos)])
	sw.write(p)
	sw.write(zeroPad[:padLen(sw.pos)])
}

// Pos returns the number of bytes written so far.
func (sw *StreamWriter) Pos() int64 { return sw.pos }

// Err returns the first write error.
func (sw *StreamWriter) Err() error { return sw.err }

// Balanced reports whether every StartClass has a matching EndClass.
func (sw *StreamWriter) Balanced() bool { return sw.openClasses == 0 }

// Buffer is an in-memory Writer.
type Buffer struct {
	StreamWriter
	buf bytes.Buffer
}

// NewBuffer returns an empty in-memory Writer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.StreamWriter.w = &b.buf
	return b
}

// Bytes returns the serialized records. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.buf.Bytes() }

// Reader returns a Reader over the buffered records.
func (b *Buffer) Reader() *SliceReader { return NewReader(b.buf.Bytes()) }
