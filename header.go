package succinct

import (
	"encoding/binary"

	succincterrors "github.com/tamirms/succinct/errors"
)

const (
	// magic identifies succinct archive files.
	// "SUCC" in little-endian
	magic = uint32(0x43435553)

	// version is the current file format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (32 bytes)
	headerSize = 32

	// footerSize is the exact size of the serialized footer (16 bytes)
	footerSize = 16
)

// header is the 32-byte file header.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x43435553 ("SUCC")
//	4       2     Version   0x0001
//	6       2     Reserved  (zero)
//	8       8     BodySize  uint64_le, bytes of archive records
//	16      16    Reserved  [16]byte (zero)
//
// The body starts at offset 32, so memory regions inside it stay 8-byte
// aligned relative to the file start.
type header struct {
	Magic    uint32
	Version  uint16
	BodySize uint64
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	clear(buf[:headerSize])
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.BodySize)
}

// decodeHeader parses a 32-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, succincterrors.ErrTruncatedFile
	}

	h := &header{
		Magic:    binary.LittleEndian.Uint32(buf[0:4]),
		Version:  binary.LittleEndian.Uint16(buf[4:6]),
		BodySize: binary.LittleEndian.Uint64(buf[8:16]),
	}

	if h.Magic != magic {
		return nil, succincterrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, succincterrors.ErrInvalidVersion
	}
	return h, nil
}

// footer is the 16-byte file footer.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       8     BodyHash  uint64_le (xxHash64 of the body)
//	8       8     Reserved  [8]byte (zero)
type footer struct {
	BodyHash uint64
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	clear(buf[:footerSize])
	binary.LittleEndian.PutUint64(buf[0:8], f.BodyHash)
}

// decodeFooter parses a 16-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, succincterrors.ErrTruncatedFile
	}
	return &footer{BodyHash: binary.LittleEndian.Uint64(buf[0:8])}, nil
}
