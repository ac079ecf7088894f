package rankselect

import (
	"fmt"

	"github.com/tamirms/succinct/archive"
	"github.com/tamirms/succinct/bitvec"
	succincterrors "github.com/tamirms/succinct/errors"
	"github.com/tamirms/succinct/sdarray"
)

const className = "sd_rank_select_sml"

// Save writes rs as an "sd_rank_select_sml" record.
func (rs *RankSelect) Save(w archive.Writer) error {
	hints := rs.hints
	if hints == nil {
		hints = bitvec.NewPacked(0, 0)
	}
	w.StartClass(className, 1)
	if err := rs.qs.Save(w.Var("sdarray")); err != nil {
		return err
	}
	w.Var("log_sample_rate").PutUint8(uint8(rs.lrate))
	if err := hints.Save(w.Var("rank_hints")); err != nil {
		return err
	}
	w.EndClass()
	return w.Err()
}

// Load reads an "sd_rank_select_sml" record.
func (rs *RankSelect) Load(r archive.Reader) error {
	if err := archive.ExpectClass(r, className, 1); err != nil {
		return err
	}
	qs := &sdarray.SDArray{}
	if err := qs.Load(r.Var("sdarray")); err != nil {
		return err
	}
	lrate, err := r.Var("log_sample_rate").Uint8()
	if err != nil {
		return err
	}
	hints := &bitvec.Packed{}
	if err := hints.Load(r.Var("rank_hints")); err != nil {
		return err
	}
	if err := r.EndClass(); err != nil {
		return err
	}

	if qs.Len() > 0 {
		if want := bucketCount(qs.Total(), uint(lrate)); hints.Len() != want {
			return fmt.Errorf("%w: %d rank hints, want %d",
				succincterrors.ErrCorrupted, hints.Len(), want)
		}
		var prev uint64
		for i := uint64(0); i < hints.Len(); i++ {
			h := hints.Get(i)
			if h < prev || h > qs.BlockCount() {
				return fmt.Errorf("%w: rank hint %d is %d, blocks %d",
					succincterrors.ErrCorrupted, i, h, qs.BlockCount())
			}
			prev = h
		}
	} else {
		hints = nil
	}
	*rs = RankSelect{qs: qs, lrate: uint(lrate), hints: hints}
	return nil
}
