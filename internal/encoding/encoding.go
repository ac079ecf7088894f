// Package encoding converts between word slices and their little-endian
// byte images for memory regions.
//
// The zero-copy paths use unsafe reinterpretation and are only taken on
// little-endian architectures (amd64, arm64) with 8-byte aligned input.
// Every other case falls back to an explicit little-endian copy, so results
// are identical everywhere.
package encoding

import (
	"encoding/binary"
	"unsafe"
)

// nativeLittleEndian reports whether the host stores words little-endian.
var nativeLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Words returns b viewed as little-endian uint64 words.
// len(b) must be a multiple of 8; Words panics otherwise.
//
// When b is 8-byte aligned on a little-endian host the result aliases b
// (no copy). The caller must then keep b alive and unmodified for as long
// as the words are in use. The second result reports whether aliasing
// happened.
func Words(b []byte) ([]uint64, bool) {
	if len(b)%8 != 0 {
		panic("encoding: Words: length is not a multiple of 8")
	}
	if len(b) == 0 {
		return nil, false
	}
	if nativeLittleEndian && uintptr(unsafe.Pointer(&b[0]))%8 == 0 {
		return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8), true
	}
	w := make([]uint64, len(b)/8)
	for i := range w {
		w[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return w, false
}

// Bytes returns the little-endian byte image of w.
// On little-endian hosts the result aliases w and must not be modified.
func Bytes(w []uint64) []byte {
	if len(w) == 0 {
		return nil
	}
	if nativeLittleEndian {
		return unsafe.Slice((*byte)(unsafe.Pointer(&w[0])), len(w)*8)
	}
	b := make([]byte, len(w)*8)
	for i, v := range w {
		binary.LittleEndian.PutUint64(b[i*8:], v)
	}
	return b
}
