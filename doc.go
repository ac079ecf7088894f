// Package succinct stores succinct data structures in memory-mappable
// archive files.
//
// The structures themselves live in subpackages:
//
//   - bitvec: plain bit vectors, a bit-stream builder and packed
//     fixed-width integer arrays
//   - rrr: RRR-compressed bit vectors with rank and select
//   - sdarray: compressed monotone sequences (prefix sums of small values)
//   - rankselect: rank/select over sparse sets of positions
//   - archive: the record format every structure saves to
//
// This package adds the file container around an archive body.
//
// # Basic Usage
//
// Saving a structure:
//
//	q := rrr.Build(bv)
//	if err := succinct.WriteFile("bits.succ", q); err != nil {
//	    log.Fatal(err)
//	}
//
// Loading it back:
//
//	f, err := succinct.Open("bits.succ", succinct.WithVerify())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	var q rrr.RRR
//	if err := f.Load(&q); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(q.Rank(1000))
//
// Loaded structures reference the mapped file directly, so they must not
// be used after Close.
//
// # Package Structure
//
//   - Public API: file.go (Open, OpenFile, OpenBytes, File), file_writer.go (WriteFile)
//   - Configuration: options.go (Option, With* functions)
//   - Serialization: header.go (header, footer)
//   - Platform: fallocate_*.go, fadvise_*.go, prefault_*.go (OS-specific hints)
package succinct
