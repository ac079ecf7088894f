package rrr

import (
	"fmt"

	"github.com/tamirms/succinct/archive"
	"github.com/tamirms/succinct/bitvec"
	succincterrors "github.com/tamirms/succinct/errors"
)

const (
	className         = "RRR2"
	rankOnlyClassName = "RRR2_rankonly"
)

// Save writes q as an "RRR2" record.
func (q *RRR) Save(w archive.Writer) error {
	return q.save(w, className)
}

// SaveRankOnly writes q as an "RRR2_rankonly" record. Such records are
// loaded with LoadRankOnly alongside the plain vector they were built from.
func (q *RRR) SaveRankOnly(w archive.Writer) error {
	return q.save(w, rankOnlyClassName)
}

func (q *RRR) save(w archive.Writer, name string) error {
	sumR, posS := q.sumR, q.posS
	if sumR == nil {
		sumR = bitvec.NewPacked(0, 0)
		posS = bitvec.NewPacked(0, 0)
	}
	r, s := q.r, q.s
	if r == nil {
		r, s = bitvec.New(0), bitvec.New(0)
	}

	w.StartClass(name, 1)
	w.Var("bit_len").PutUint64(q.n)
	if err := r.Save(w.Var("R")); err != nil {
		return err
	}
	if err := s.Save(w.Var("S")); err != nil {
		return err
	}
	if err := sumR.Save(w.Var("sumR")); err != nil {
		return err
	}
	if err := posS.Save(w.Var("posS")); err != nil {
		return err
	}
	w.Var("onecnt").PutUint64(q.onecnt)
	w.Var("len").PutUint64(q.n)
	w.EndClass()
	return w.Err()
}

// Load reads an "RRR2" record. Loaded vectors decode with DefaultTable.
func (q *RRR) Load(r archive.Reader) error {
	if err := archive.ExpectClass(r, className, 1); err != nil {
		return err
	}
	blen, err := r.Var("bit_len").Uint64()
	if err != nil {
		return err
	}
	return q.loadBody(r, blen)
}

// LoadRankOnly reads an "RRR2_rankonly" record and checks that it was
// built from a vector of the same length as original.
func (q *RRR) LoadRankOnly(r archive.Reader, original *bitvec.BitVector) error {
	if err := archive.ExpectClass(r, rankOnlyClassName, 1); err != nil {
		return err
	}
	blen, err := r.Var("bit_len").Uint64()
	if err != nil {
		return err
	}
	if blen != original.Len() {
		return fmt.Errorf("%w: stored %d bits, vector has %d",
			succincterrors.ErrLengthMismatch, blen, original.Len())
	}
	return q.loadBody(r, blen)
}

func (q *RRR) loadBody(r archive.Reader, blen uint64) error {
	var (
		rv, sv     bitvec.BitVector
		sumR, posS bitvec.Packed
	)
	if err := rv.Load(r.Var("R")); err != nil {
		return err
	}
	if err := sv.Load(r.Var("S")); err != nil {
		return err
	}
	if err := sumR.Load(r.Var("sumR")); err != nil {
		return err
	}
	if err := posS.Load(r.Var("posS")); err != nil {
		return err
	}
	onecnt, err := r.Var("onecnt").Uint64()
	if err != nil {
		return err
	}
	n, err := r.Var("len").Uint64()
	if err != nil {
		return err
	}
	if err := r.EndClass(); err != nil {
		return err
	}

	numBlocks := (n + BlockSize - 1) / BlockSize
	numGroups := (numBlocks + SampleInterval - 1) / SampleInterval
	switch {
	case n > bitvec.MaxLen || onecnt > n:
		return fmt.Errorf("%w: rrr with %d ones over %d bits", succincterrors.ErrCorrupted, onecnt, n)
	case rv.Len() != numBlocks*classBits:
		return fmt.Errorf("%w: rrr class array holds %d bits for %d blocks",
			succincterrors.ErrCorrupted, rv.Len(), numBlocks)
	case onecnt > 0 && (sumR.Len() != numGroups || posS.Len() != numGroups):
		return fmt.Errorf("%w: rrr samples %d/%d for %d groups",
			succincterrors.ErrCorrupted, sumR.Len(), posS.Len(), numGroups)
	}
	tbl := DefaultTable()
	if err := checkBlocks(tbl, &rv, &sv, &sumR, &posS, numBlocks, onecnt); err != nil {
		return err
	}
	if blen != n {
		return fmt.Errorf("%w: bit_len %d, len %d", succincterrors.ErrLengthMismatch, blen, n)
	}

	*q = RRR{
		tbl:    tbl,
		r:      &rv,
		s:      &sv,
		onecnt: onecnt,
		n:      n,
	}
	if onecnt > 0 {
		q.sumR, q.posS = &sumR, &posS
	}
	return nil
}

// checkBlocks walks the class array once and verifies S and the samples
// against it.
func checkBlocks(tbl *Table, rv, sv *bitvec.BitVector, sumR, posS *bitvec.Packed, numBlocks, onecnt uint64) error {
	var ones, spos uint64
	for i := uint64(0); i < numBlocks; i++ {
		if onecnt > 0 && i%SampleInterval == 0 {
			g := i / SampleInterval
			if sumR.Get(g) != ones || posS.Get(g) != spos {
				return fmt.Errorf("%w: rrr sample %d is (%d, %d), want (%d, %d)",
					succincterrors.ErrCorrupted, g, sumR.Get(g), posS.Get(g), ones, spos)
			}
		}
		c := int(rv.Bits(i*classBits, classBits))
		ones += uint64(c)
		spos += uint64(tbl.CodeLen(c))
	}
	switch {
	case ones != onecnt:
		return fmt.Errorf("%w: rrr classes sum to %d, onecnt is %d", succincterrors.ErrCorrupted, ones, onecnt)
	case sv.Len() != spos:
		return fmt.Errorf("%w: rrr S holds %d bits, classes need %d", succincterrors.ErrCorrupted, sv.Len(), spos)
	}
	return nil
}
