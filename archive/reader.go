package archive

import (
	"encoding/binary"
	"fmt"

	succincterrors "github.com/tamirms/succinct/errors"
)

// SliceReader reads records from an in-memory byte slice, typically an
// mmap'd archive file. LoadMem returns subslices of the backing data, so the
// data must outlive every structure loaded from it.
type SliceReader struct {
	data []byte
	pos  int64
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *SliceReader {
	return &SliceReader{data: data}
}

func (sr *SliceReader) next(n int64) ([]byte, error) {
	if n < 0 || sr.pos+n > int64(len(sr.data)) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			succincterrors.ErrTruncated, n, sr.pos, int64(len(sr.data))-sr.pos)
	}
	b := sr.data[sr.pos : sr.pos+n : sr.pos+n]
	sr.pos += n
	return b, nil
}

func (sr *SliceReader) uint32() (uint32, error) {
	b, err := sr.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// LoadClass checks the class tag of the next record.
func (sr *SliceReader) LoadClass(name string) (uint8, error) {
	start := sr.pos
	tag, err := sr.uint32()
	if err != nil {
		return 0, err
	}
	if tag&0xFFFFFF != nameHash24(name) {
		return 0, fmt.Errorf("%w: expected %q at offset %d", succincterrors.ErrWrongClass, name, start)
	}
	return uint8(tag >> 24), nil
}

// EndClass consumes the class end marker.
func (sr *SliceReader) EndClass() error {
	start := sr.pos
	b, err := sr.next(int64(len(endMarker)))
	if err != nil {
		return err
	}
	if string(b) != endMarker {
		return fmt.Errorf("%w: at offset %d", succincterrors.ErrBadEndMarker, start)
	}
	return nil
}

// Var is a no-op for slice readers.
func (sr *SliceReader) Var(string) Reader { return sr }

// Uint64 reads a little-endian uint64.
func (sr *SliceReader) Uint64() (uint64, error) {
	b, err := sr.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Uint8 reads a single byte.
func (sr *SliceReader) Uint8() (uint8, error) {
	b, err := sr.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// LoadBin fills p from the stream.
func (sr *SliceReader) LoadBin(p []byte) error {
	b, err := sr.next(int64(len(p)))
	if err != nil {
		return err
	}
	copy(p, b)
	return nil
}

// LoadMem returns the payload of the next memory region without copying.
func (sr *SliceReader) LoadMem() ([]byte, error) {
	start := sr.pos
	marker, err := sr.uint32()
	if err != nil {
		return nil, err
	}
	if marker != regionMagic|regionAlign {
		return nil, fmt.Errorf("%w: marker 0x%08X at offset %d", succincterrors.ErrBadRegion, marker, start)
	}
	size, err := sr.Uint64()
	if err != nil {
		return nil, err
	}
	if _, err := sr.next(int64(padLen(sr.pos))); err != nil {
		return nil, err
	}
	if size > uint64(len(sr.data)) {
		return nil, fmt.Errorf("%w: region of %d bytes at offset %d", succincterrors.ErrTruncated, size, start)
	}
	payload, err := sr.next(int64(size))
	if err != nil {
		return nil, err
	}
	if _, err := sr.next(int64(padLen(sr.pos))); err != nil {
		return nil, err
	}
	return payload, nil
}

// Pos returns the read offset.
func (sr *SliceReader) Pos() int64 { return sr.pos }

// Remaining returns the number of unread bytes.
func (sr *SliceReader) Remaining() int64 { return int64(len(sr.data)) - sr.pos }
