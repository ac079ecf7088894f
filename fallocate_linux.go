//go:build linux

package succinct

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for an archive before it is mapped, so
// a full disk fails here instead of raising SIGBUS during writes.
func fallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	// Filesystems without fallocate (NFS, tmpfs on old kernels) still get
	// the right length.
	_ = unix.Fallocate(fd, 0, 0, size)
	return unix.Ftruncate(fd, size)
}
