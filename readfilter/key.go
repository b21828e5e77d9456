package readfilter

import (
	"github.com/grailbio/hts/sam"
)

// Source yields records in stream order. bamprovider.Iterator implements it.
type Source interface {
	Scan() bool
	Record() *sam.Record
	Err() error
}

// Sink consumes records. bamwriter.Writer implements it.
type Sink interface {
	Write(r *sam.Record) error
}

// DedupKey identifies one read of a template: its name plus whether it is the
// first mate.
type DedupKey struct {
	Name      string
	FirstMate bool
}

// KeyFromRecord computes the DedupKey of r.
func KeyFromRecord(r *sam.Record) DedupKey {
	return DedupKey{Name: r.Name, FirstMate: r.Flags&sam.Read1 != 0}
}

// keySet is a grow-only set of keys.
type keySet map[DedupKey]struct{}

// insert adds k and reports whether it was absent.
func (s keySet) insert(k DedupKey) bool {
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}
