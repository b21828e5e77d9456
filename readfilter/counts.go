package readfilter

import "fmt"

const (
	// DedupUnit names the records counted by Dedup in Counts.Report.
	DedupUnit = "reads due to multiple split alignments"
	// PairUnit names the records counted by PairFilter in Counts.Report.
	PairUnit = "alignments"
)

// Counts is the number of records a filter kept and dropped.
type Counts struct {
	Passed   int64
	Filtered int64
}

// Total is the number of records the filter consumed.
func (c Counts) Total() int64 {
	return c.Passed + c.Filtered
}

// Report formats the one-line summary printed by the command-line tools.
func (c Counts) Report(unit string) string {
	return fmt.Sprintf("Filtered out %d out of %d %s", c.Filtered, c.Total(), unit)
}
