//go:build linux

package succinct

import "golang.org/x/sys/unix"

// fadviseSequential hints that the file is about to be read front to back.
// Used when an archive is read into memory instead of mapped.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
