//go:build darwin

package succinct

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for an archive before it is mapped.
// F_PREALLOCATE only reserves space; Ftruncate sets the length.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	_ = unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst)
	return unix.Ftruncate(int(file.Fd()), size)
}
