package succinct

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	"github.com/tamirms/succinct/archive"
	succincterrors "github.com/tamirms/succinct/errors"
)

// File is a read-only archive file holding one saved structure.
//
// Structures loaded from a File alias its data: they stay valid only until
// Close. Load and Verify are safe for concurrent use; Close is not, and
// must only be called after every reader is done.
type File struct {
	mmap mmap.MMap // nil for OpenBytes and WithoutMmap
	data []byte
	body []byte

	header *header
	logger *slog.Logger

	closed atomic.Bool
}

// Open opens an archive file. Unless WithoutMmap is given, the file is
// memory-mapped and the descriptor closed before Open returns.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	defer f.Close()
	return OpenFile(f, opts...)
}

// OpenFile opens an archive from an already open file. The caller is
// responsible for closing f, which may happen as soon as OpenFile returns.
func OpenFile(f *os.File, opts ...Option) (*File, error) {
	cfg := newConfig(opts)

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive file: %w", err)
	}
	fileSize := stat.Size()
	if fileSize < headerSize+footerSize {
		return nil, succincterrors.ErrTruncatedFile
	}

	if cfg.noMmap {
		data, err := readWhole(f, fileSize)
		if err != nil {
			return nil, err
		}
		af := &File{data: data, logger: cfg.logger}
		if err := af.initFromData(cfg); err != nil {
			return nil, err
		}
		return af, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap archive file: %w", err)
	}
	adviseRandom(mm)

	af := &File{
		mmap:   mm,
		data:   []byte(mm),
		logger: cfg.logger,
	}
	if err := af.initFromData(cfg); err != nil {
		return nil, errors.Join(err, af.Close())
	}
	return af, nil
}

// OpenBytes opens an archive held in memory. Close is a no-op.
// The caller must not modify data while the File is in use.
func OpenBytes(data []byte, opts ...Option) (*File, error) {
	cfg := newConfig(opts)
	if len(data) < headerSize+footerSize {
		return nil, succincterrors.ErrTruncatedFile
	}
	af := &File{data: data, logger: cfg.logger}
	if err := af.initFromData(cfg); err != nil {
		return nil, err
	}
	return af, nil
}

// readWhole reads size bytes of f into a heap buffer.
func readWhole(f *os.File, size int64) ([]byte, error) {
	fadviseSequential(int(f.Fd()), 0, size)
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size), data); err != nil {
		return nil, fmt.Errorf("read archive file: %w", err)
	}
	return data, nil
}

// initFromData parses the header and locates the body. The footer is only
// decoded by Verify.
func (af *File) initFromData(cfg *config) error {
	hdr, err := decodeHeader(af.data[:headerSize])
	if err != nil {
		return err
	}
	avail := uint64(len(af.data)) - headerSize - footerSize
	if hdr.BodySize > avail {
		return fmt.Errorf("%w: header declares %d body bytes, file has %d",
			succincterrors.ErrTruncatedFile, hdr.BodySize, avail)
	}
	if hdr.BodySize < avail {
		return fmt.Errorf("%w: %d bytes after footer",
			succincterrors.ErrCorrupted, avail-hdr.BodySize)
	}
	af.header = hdr
	af.body = af.data[headerSize : headerSize+hdr.BodySize : headerSize+hdr.BodySize]

	af.logger.Debug("opened archive file",
		"size", len(af.data),
		"body", hdr.BodySize,
		"mmap", af.mmap != nil)

	if cfg.verify {
		return af.Verify()
	}
	return nil
}

// Size returns the total file size in bytes.
func (af *File) Size() int64 {
	return int64(len(af.data))
}

// BodySize returns the number of bytes of archive records.
func (af *File) BodySize() int64 {
	return int64(af.header.BodySize)
}

// Reader returns a fresh archive reader over the body.
func (af *File) Reader() (*archive.SliceReader, error) {
	if af.closed.Load() {
		return nil, succincterrors.ErrFileClosed
	}
	return archive.NewReader(af.body), nil
}

// Load reads the stored structure into l. The whole body must be consumed.
func (af *File) Load(l archive.Loader) error {
	r, err := af.Reader()
	if err != nil {
		return err
	}
	if err := l.Load(r); err != nil {
		return err
	}
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d unread body bytes", succincterrors.ErrCorrupted, n)
	}
	return nil
}

// Verify checks the body against the footer checksum.
func (af *File) Verify() error {
	if af.closed.Load() {
		return succincterrors.ErrFileClosed
	}
	ft, err := decodeFooter(af.data[len(af.data)-footerSize:])
	if err != nil {
		return err
	}
	if got := xxhash.Sum64(af.body); got != ft.BodyHash {
		af.logger.Debug("archive checksum mismatch",
			"want", ft.BodyHash,
			"got", got)
		return succincterrors.ErrChecksumFailed
	}
	return nil
}

// Close releases the mapping. Calling Close more than once is a no-op.
func (af *File) Close() error {
	if af.closed.Swap(true) {
		return nil
	}
	if af.mmap != nil {
		return af.mmap.Unmap()
	}
	return nil
}
