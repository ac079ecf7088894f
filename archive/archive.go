// Package archive implements the record format every succinct structure is
// saved in and loaded from.
//
// A record is bracketed by StartClass/EndClass. The class header is a
// 32-bit tag: the low 24 bits fold an xxh3 hash of the class name, the high
// 8 bits carry the class version. EndClass writes the 4-byte marker "cend".
// Inside a record, fields are raw little-endian bytes (SaveBin, PutUint64)
// or memory regions (SaveMem). Var names the next field; it is only kept by
// introspection writers and costs nothing on the wire.
//
// Memory region layout:
//
//	Offset  Size  Field
//	0       4     Marker   0x924924<<8 | alignment (8)
//	4       8     Size     uint64_le, bytes of payload
//	12      pad   zero bytes up to the next 8-byte stream boundary
//	...     Size  payload
//	...     pad   zero bytes up to the next 8-byte stream boundary
//
// Payloads therefore start 8-byte aligned relative to the stream start,
// which lets readers over mmap'd files hand out zero-copy word views.
package archive

import (
	"fmt"

	"github.com/zeebo/xxh3"

	succincterrors "github.com/tamirms/succinct/errors"
)

const (
	endMarker = "cend"

	regionMagic = uint32(0x924924) << 8

	// regionAlign is the payload alignment of memory regions.
	regionAlign = 8
)

// Writer serializes records. Errors are sticky: after the first failure all
// further calls are no-ops and Err reports that failure.
type Writer interface {
	StartClass(name string, version uint8)
	EndClass()
	// Var names the next field and returns the receiver for chaining.
	Var(name string) Writer
	PutUint64(v uint64)
	PutUint8(v uint8)
	SaveBin(p []byte)
	// SaveMem writes p as a memory region (see package doc).
	SaveMem(p []byte)
	Pos() int64
	Err() error
}

// Reader deserializes records written by a Writer.
type Reader interface {
	// LoadClass checks the class tag of the next record against name and
	// returns the stored version.
	LoadClass(name string) (uint8, error)
	EndClass() error
	Var(name string) Reader
	Uint64() (uint64, error)
	Uint8() (uint8, error)
	LoadBin(p []byte) error
	// LoadMem returns the payload of the next memory region. The slice
	// aliases the reader's backing data.
	LoadMem() ([]byte, error)
	Pos() int64
}

// Saver is implemented by every structure that can be written to an archive.
type Saver interface {
	Save(w Writer) error
}

// Loader is implemented by every structure that can be read from an archive.
type Loader interface {
	Load(r Reader) error
}

// ClassTag returns the 32-bit class header for name at version.
func ClassTag(name string, version uint8) uint32 {
	return nameHash24(name) | uint32(version)<<24
}

func nameHash24(name string) uint32 {
	h := xxh3.HashString(name)
	return uint32(h^(h>>24)^(h>>48)) & 0xFFFFFF
}

// ExpectClass loads the next class header and checks that it is name at
// exactly version.
func ExpectClass(r Reader, name string, version uint8) error {
	v, err := r.LoadClass(name)
	if err != nil {
		return err
	}
	if v != version {
		return fmt.Errorf("%w: %s version %d, want %d", succincterrors.ErrWrongVersion, name, v, version)
	}
	return nil
}

// Size returns the number of bytes s occupies when saved.
func Size(s Saver) (int64, error) {
	w := NewSizeWriter()
	if err := s.Save(w); err != nil {
		return 0, err
	}
	return w.Pos(), w.Err()
}

// padLen returns the zero padding that aligns pos to regionAlign.
func padLen(pos int64) int {
	return int((regionAlign - pos%regionAlign) % regionAlign)
}
