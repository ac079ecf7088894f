//go:build !linux && !darwin

package succinct

import "os"

// fallocateFile sets the archive length before it is mapped. Disk blocks
// may stay unreserved on these platforms.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
