//go:build !linux

package succinct

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(fd int, offset, length int64) {}
