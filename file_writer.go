package succinct

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	"github.com/tamirms/succinct/archive"
)

// fileWriter streams archive records straight into a pre-allocated,
// memory-mapped file.
// File layout: [Header 32B][Body: archive records][Footer 16B]
type fileWriter struct {
	file *os.File
	mmap mmap.MMap
	data []byte

	bodyOff uint64         // write position inside the body
	bodyCap uint64         // estimated body size
	hasher  *xxhash.Digest // streaming hash of the body as it is written
}

// WriteFile saves s to a new archive file at path, replacing any existing
// file. The body size is measured first so the file can be allocated and
// mapped once.
func WriteFile(path string, s archive.Saver, opts ...Option) error {
	cfg := newConfig(opts)

	bodySize, err := archive.Size(s)
	if err != nil {
		return fmt.Errorf("measure archive body: %w", err)
	}

	fw, err := newFileWriter(path, uint64(bodySize))
	if err != nil {
		return err
	}

	w := archive.NewWriter(fw)
	if err := s.Save(w); err != nil {
		return errors.Join(fmt.Errorf("save archive body: %w", err), fw.discard())
	}
	if !w.Balanced() {
		return errors.Join(errors.New("save archive body: unbalanced class records"), fw.discard())
	}

	size, err := fw.finish()
	if err != nil {
		return errors.Join(err, os.Remove(path))
	}
	cfg.logger.Debug("wrote archive file",
		"path", path,
		"size", size,
		"body", fw.bodyOff)
	return nil
}

func newFileWriter(path string, bodyCap uint64) (*fileWriter, error) {
	estimatedSize := headerSize + bodyCap + footerSize

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}

	if err := fallocateFile(file, int64(estimatedSize)); err != nil {
		return nil, errors.Join(fmt.Errorf("allocate archive file: %w", err), file.Close())
	}

	mm, err := mmap.MapRegion(file, int(estimatedSize), mmap.RDWR, 0, 0)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("mmap archive file: %w", err), file.Close())
	}
	prefaultRegion(mm)

	return &fileWriter{
		file:    file,
		mmap:    mm,
		data:    []byte(mm),
		bodyCap: bodyCap,
		hasher:  xxhash.New(),
	}, nil
}

// Write copies p into the body region. It fails once the measured size is
// exceeded, which means Save wrote different bytes the second time.
func (fw *fileWriter) Write(p []byte) (int, error) {
	if fw.bodyOff+uint64(len(p)) > fw.bodyCap {
		return 0, fmt.Errorf("archive body exceeds measured size %d", fw.bodyCap)
	}
	n := copy(fw.data[headerSize+fw.bodyOff:], p)
	fw.bodyOff += uint64(n)
	if _, err := fw.hasher.Write(p); err != nil {
		panic("hash.Hash.Write returned unexpected error: " + err.Error())
	}
	return n, nil
}

// finish writes header and footer, flushes, unmaps and truncates the file to
// its final size.
func (fw *fileWriter) finish() (uint64, error) {
	hdr := header{
		Magic:    magic,
		Version:  version,
		BodySize: fw.bodyOff,
	}
	hdr.encodeTo(fw.data[:headerSize])

	ftr := footer{BodyHash: fw.hasher.Sum64()}
	ftr.encodeTo(fw.data[headerSize+fw.bodyOff:])

	if err := fw.mmap.Flush(); err != nil {
		return 0, errors.Join(fmt.Errorf("mmap flush failed: %w", err), fw.close())
	}

	// Unmap before truncate.
	unmapErr := fw.mmap.Unmap()
	fw.mmap = nil
	if unmapErr != nil {
		return 0, errors.Join(fmt.Errorf("mmap unmap failed: %w", unmapErr), fw.close())
	}

	actualSize := headerSize + fw.bodyOff + footerSize
	if err := fw.file.Truncate(int64(actualSize)); err != nil {
		return 0, errors.Join(fmt.Errorf("truncate failed: %w", err), fw.close())
	}

	closeErr := fw.file.Close()
	fw.file = nil
	return actualSize, closeErr
}

// close releases the writer without finalizing. Idempotent.
// discard closes the file and removes the partial archive.
func (fw *fileWriter) discard() error {
	name := fw.file.Name()
	return errors.Join(fw.close(), os.Remove(name))
}

func (fw *fileWriter) close() error {
	var unmapErr error
	if fw.mmap != nil {
		unmapErr = fw.mmap.Unmap()
		fw.mmap = nil
	}
	var closeErr error
	if fw.file != nil {
		closeErr = fw.file.Close()
		fw.file = nil
	}
	return errors.Join(unmapErr, closeErr)
}
