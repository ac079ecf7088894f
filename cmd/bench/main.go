// Bench is a benchmarking tool for measuring build time, space usage and
// query throughput of the succinct structures, including a round trip
// through an archive file.
//
// Usage:
//
//	go run ./cmd/bench -bits 100000000 -density 0.05
//
// Flags:
//
//	-bits      Length of the random bit vector (default: 100,000,000)
//	-density   Fraction of set bits (default: 0.05)
//	-queries   Number of rank and select queries per structure (default: 1,000,000)
//	-workers   Number of concurrent query goroutines (default: GOMAXPROCS)
//	-layout    Print the archive layout of each structure
//	-v         Enable debug logging
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/tamirms/succinct"
	"github.com/tamirms/succinct/archive"
	"github.com/tamirms/succinct/bitvec"
	intbits "github.com/tamirms/succinct/internal/bits"
	"github.com/tamirms/succinct/rankselect"
	"github.com/tamirms/succinct/rrr"
	"github.com/tamirms/succinct/sdarray"
)

// hashSeed fixes the generated positions across runs.
const hashSeed = uint32(0x1234)

// getMaxRSS returns the maximum resident set size in bytes.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// position maps i to a pseudo-random position in [0, n).
func position(i, n uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	h, _ := murmur3.Sum128WithSeed(buf[:], hashSeed)
	return intbits.FastRange64(h, n)
}

// result is one row of the report.
type result struct {
	name      string
	build     time.Duration
	fileSize  int64
	sizeBits  uint64
	rankNs    float64
	selectNs  float64
	openNs    float64
	checksums uint64
}

// querier is the query surface shared by the benchmarked structures.
type querier interface {
	Rank(p uint64) uint64
	Select(r uint64) uint64
}

// runQueries issues rank and select queries from workers goroutines and
// returns the average latency of each in nanoseconds.
func runQueries(q querier, universe, ones uint64, queries, workers int) (rankNs, selectNs float64, sum uint64, err error) {
	perWorker := max(queries/workers, 1)
	sums := make([]uint64, workers)

	measure := func(fn func(w, i int) uint64) (float64, error) {
		var g errgroup.Group
		start := time.Now()
		for w := range workers {
			g.Go(func() error {
				var s uint64
				for i := range perWorker {
					s += fn(w, i)
				}
				sums[w] += s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return 0, err
		}
		return float64(time.Since(start).Nanoseconds()) / float64(perWorker), nil
	}

	rankNs, err = measure(func(w, i int) uint64 {
		return q.Rank(position(uint64(w*perWorker+i), universe+1))
	})
	if err != nil {
		return 0, 0, 0, err
	}
	if ones > 0 {
		selectNs, err = measure(func(w, i int) uint64 {
			return q.Select(position(uint64(w*perWorker+i)^0x5555, ones))
		})
		if err != nil {
			return 0, 0, 0, err
		}
	}
	for _, s := range sums {
		sum += s
	}
	return rankNs, selectNs, sum, nil
}

// roundTrip writes s to dir, opens the file and loads it into dst.
func roundTrip(dir, name string, s archive.Saver, dst archive.Loader, logger *slog.Logger) (*succinct.File, time.Duration, error) {
	path := filepath.Join(dir, name+".succ")
	if err := succinct.WriteFile(path, s, succinct.WithLogger(logger)); err != nil {
		return nil, 0, err
	}
	start := time.Now()
	f, err := succinct.Open(path, succinct.WithLogger(logger), succinct.WithVerify())
	if err != nil {
		return nil, 0, err
	}
	if err := f.Load(dst); err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, time.Since(start), nil
}

func printLayout(name string, s archive.Saver) {
	iw := archive.NewInfoWriter()
	if err := s.Save(iw); err != nil {
		fmt.Printf("%s layout: %v\n", name, err)
		return
	}
	fmt.Printf("\n%s layout:\n%s", name, iw.String())
}

func main() {
	bitsFlag := flag.Uint64("bits", 100_000_000, "length of the random bit vector")
	densityFlag := flag.Float64("density", 0.05, "fraction of set bits")
	queriesFlag := flag.Int("queries", 1_000_000, "number of queries per structure")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "number of concurrent query goroutines")
	layoutFlag := flag.Bool("layout", false, "print the archive layout of each structure")
	verboseFlag := flag.Bool("v", false, "enable debug logging")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (query phase only)")
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	n := *bitsFlag
	if n == 0 || n > bitvec.MaxLen {
		fmt.Printf("-bits must be in [1, %d]\n", bitvec.MaxLen)
		return
	}
	workers := max(*workersFlag, 1)

	fmt.Println("Generating bits...")
	bv := bitvec.New(n)
	target := uint64(*densityFlag * float64(n))
	for i := range target {
		bv.SetBit(position(i, n), true)
	}
	ones := bv.CountOnes()

	tmpDir, err := os.MkdirTemp("", "succinct-bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	var results []result

	// RRR
	fmt.Println("Building RRR...")
	start := time.Now()
	q := rrr.Build(bv)
	rrrBuild := time.Since(start)

	// Rank/select over the same set bits
	fmt.Println("Building rank/select...")
	start = time.Now()
	rs := rankselect.FromBitVector(bv)
	rsBuild := time.Since(start)

	// SDArray over the set positions
	fmt.Println("Building SDArray...")
	start = time.Now()
	sb := sdarray.NewBuilder()
	for p := bv.ScanNext(0); p < n; p += 1 + bv.ScanNext(p+1) {
		sb.AddInc(p)
	}
	sd := sb.Build()
	sdBuild := time.Since(start)

	if *layoutFlag {
		printLayout("RRR", q)
		printLayout("rank/select", rs)
		printLayout("SDArray", sd)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	type entry struct {
		name  string
		file  string
		build time.Duration
		saver archive.Saver
		load  interface {
			archive.Loader
			querier
		}
		sizeBits func() uint64
	}
	var (
		loadedRRR rrr.RRR
		loadedRS  rankselect.RankSelect
		loadedSD  sdArrayQuerier
	)
	entries := []entry{
		{"RRR", "rrr", rrrBuild, q, &loadedRRR, loadedRRR.SizeInBits},
		{"rank/select", "rankselect", rsBuild, rs, &loadedRS, loadedRS.SizeInBits},
		{"SDArray", "sdarray", sdBuild, sd, &loadedSD, func() uint64 { return loadedSD.Stats().TotalBytes() * 8 }},
	}

	for _, e := range entries {
		fmt.Printf("Benchmarking %s...\n", e.name)
		f, openDur, err := roundTrip(tmpDir, e.file, e.saver, e.load, logger)
		if err != nil {
			fmt.Printf("%s round trip failed: %v\n", e.name, err)
			return
		}
		rankNs, selectNs, sum, err := runQueries(e.load, n, ones, *queriesFlag, workers)
		if err != nil {
			_ = f.Close()
			fmt.Printf("%s queries failed: %v\n", e.name, err)
			return
		}
		results = append(results, result{
			name:      e.name,
			build:     e.build,
			fileSize:  f.Size(),
			sizeBits:  e.sizeBits(),
			rankNs:    rankNs,
			selectNs:  selectNs,
			openNs:    float64(openDur.Nanoseconds()),
			checksums: sum,
		})
		if err := f.Close(); err != nil {
			fmt.Printf("%s close failed: %v\n", e.name, err)
			return
		}
	}

	// Structures answering the same queries over the same set must agree.
	for _, r := range results[1:] {
		if r.checksums != results[0].checksums {
			logger.Error("query checksums disagree", "structure", r.name, "want", results[0].checksums, "got", r.checksums)
		}
	}

	fmt.Printf("\n")
	fmt.Printf("Bits: %s  Ones: %s (%.2f%%)  Workers: %d  Peak RSS: %s\n",
		humanize.Comma(int64(n)), humanize.Comma(int64(ones)),
		100*float64(ones)/float64(n), workers, humanize.IBytes(getMaxRSS()))
	fmt.Printf("╔══════════════╦══════════╦════════════╦══════════╦══════════╦══════════╦══════════╗\n")
	fmt.Printf("║ Structure    ║ Build    ║ File       ║ Bits/bit ║ Rank     ║ Select   ║ Open     ║\n")
	fmt.Printf("╠══════════════╬══════════╬════════════╬══════════╬══════════╬══════════╬══════════╣\n")
	for _, r := range results {
		fmt.Printf("║ %-12s ║ %6.2f s ║ %10s ║ %8.4f ║ %5.0f ns ║ %5.0f ns ║ %5.1f ms ║\n",
			r.name, r.build.Seconds(), humanize.IBytes(uint64(r.fileSize)),
			float64(r.sizeBits)/float64(n), r.rankNs, r.selectNs, r.openNs/1e6)
	}
	fmt.Printf("╚══════════════╩══════════╩════════════╩══════════╩══════════╩══════════╩══════════╝\n")
}

// sdArrayQuerier answers rank and select over the positions stored as an
// SDArray of gaps.
type sdArrayQuerier struct {
	sdarray.SDArray
}

// Rank returns the number of positions smaller than p.
func (s *sdArrayQuerier) Rank(p uint64) uint64 {
	switch {
	case p == 0 || s.Len() == 0:
		return 0
	case p > s.Total():
		return s.Len()
	}
	return s.SDArray.Rank(p) - 1
}

// Select returns the r-th smallest position.
func (s *sdArrayQuerier) Select(r uint64) uint64 {
	return s.SDArray.PrefixSum(r + 1)
}
