package readfilter

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// PairOpts defines options for PairFilter.
type PairOpts struct {
	// CheckGrouping makes Add fail when a read name shows up again after its
	// group was already flushed, i.e. when the input is not grouped by name.
	// This keeps every flushed name in memory.
	CheckGrouping bool
}

// PairFilter counts well-formed read pairs in a stream grouped by read name.
// Consecutive records with the same name form a group. A group of exactly two
// records passes; any other group size is filtered. Records with the same
// name are assumed to be adjacent; a split group is counted as separate
// groups unless PairOpts.CheckGrouping is set.
//
// Usage:
//   f := NewPairFilter(opts)
//   for ... { if err := f.Add(r); err != nil { ... } }
//   counts := f.Finish()
type PairFilter struct {
	opts PairOpts

	name    string
	pending []*sam.Record
	counts  Counts
	// Names of flushed groups. Set only if opts.CheckGrouping.
	flushed map[string]struct{}
}

// NewPairFilter creates an empty PairFilter.
func NewPairFilter(opts PairOpts) *PairFilter {
	f := &PairFilter{opts: opts}
	if opts.CheckGrouping {
		f.flushed = map[string]struct{}{}
	}
	return f
}

// Add feeds the next record in stream order. If r starts a new group, the
// pending group is counted first. Add returns an error only when
// CheckGrouping is set and r belongs to a group that was already flushed.
func (f *PairFilter) Add(r *sam.Record) error {
	if len(f.pending) > 0 && r.Name == f.name {
		f.pending = append(f.pending, r)
		return nil
	}
	f.flush()
	if f.flushed != nil {
		if _, ok := f.flushed[r.Name]; ok {
			return errors.E(errors.Precondition,
				fmt.Sprintf("read %s appears in two separate groups; input must be grouped by read name", r.Name))
		}
	}
	f.name = r.Name
	f.pending = append(f.pending, r)
	return nil
}

// flush counts the pending group and clears it. It is a no-op on an empty
// group.
func (f *PairFilter) flush() {
	n := int64(len(f.pending))
	if n == 0 {
		return
	}
	if n == 2 {
		f.counts.Passed += n
	} else {
		f.counts.Filtered += n
		if log.At(log.Debug) {
			log.Debug.Printf("pairs: dropping group %s of size %d", f.name, n)
		}
	}
	if f.flushed != nil {
		f.flushed[f.name] = struct{}{}
	}
	for i := range f.pending {
		f.pending[i] = nil
	}
	f.pending = f.pending[:0]
}

// Finish counts the last pending group and returns the totals. The filter can
// keep accepting records afterwards; later Finish calls return the running
// totals.
func (f *PairFilter) Finish() Counts {
	f.flush()
	return f.counts
}

// FilterPairs runs a PairFilter over src until it is exhausted.
func FilterPairs(src Source, opts PairOpts) (Counts, error) {
	f := NewPairFilter(opts)
	for src.Scan() {
		if err := f.Add(src.Record()); err != nil {
			return f.counts, err
		}
	}
	counts := f.Finish()
	return counts, src.Err()
}
