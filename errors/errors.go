// Package errors defines all exported error sentinels for the succinct library.
//
// This is the single source of truth for error values. The archive layer,
// the file layer and every structure package import from here, so errors.Is
// checks work across package boundaries.
//
// Only recoverable conditions are represented here. Out-of-domain arguments
// (position past the end, field width over 64, select on an empty set) are
// programming errors and panic.
package errors

import "errors"

// Archive record errors
var (
	ErrWrongClass     = errors.New("succinct: archive class tag mismatch")
	ErrWrongVersion   = errors.New("succinct: unsupported archive class version")
	ErrBadEndMarker   = errors.New("succinct: archive class end marker missing")
	ErrBadRegion      = errors.New("succinct: archive memory region header is corrupted")
	ErrTruncated      = errors.New("succinct: archive data is truncated")
	ErrLengthMismatch = errors.New("succinct: declared length does not match stored data")
	ErrCorrupted      = errors.New("succinct: structure data is corrupted")
)

// File errors
var (
	ErrInvalidMagic   = errors.New("succinct: invalid magic number")
	ErrInvalidVersion = errors.New("succinct: unsupported file version")
	ErrTruncatedFile  = errors.New("succinct: archive file is truncated")
	ErrChecksumFailed = errors.New("succinct: file checksum verification failed")
	ErrFileClosed     = errors.New("succinct: archive file is closed")
)

// Build errors
var (
	ErrUnsortedInput     = errors.New("succinct: input positions are not sorted")
	ErrDuplicatePosition = errors.New("succinct: duplicate input position")
)
