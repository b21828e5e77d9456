package readfilter

import (
	"github.com/grailbio/base/log"
)

// Dedup copies records from src to sink, skipping every record whose DedupKey
// was already seen earlier in src. Output preserves the order of src. The set
// of seen keys lives only for this call.
//
// Dedup stops at the first error from sink or src and returns it along with
// the counts accumulated so far.
func Dedup(src Source, sink Sink) (Counts, error) {
	var (
		c    Counts
		seen = keySet{}
	)
	for src.Scan() {
		r := src.Record()
		if !seen.insert(KeyFromRecord(r)) {
			c.Filtered++
			if log.At(log.Debug) {
				log.Debug.Printf("dedup: dropping %s (flags %v)", r.Name, r.Flags)
			}
			continue
		}
		c.Passed++
		if err := sink.Write(r); err != nil {
			return c, err
		}
	}
	return c, src.Err()
}
