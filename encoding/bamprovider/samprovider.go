package bamprovider

import (
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// SAMProvider implements Provider for uncompressed SAM text files.
type SAMProvider struct {
	// Path of the *.sam file. Must be nonempty.
	Path string
	err  errors.Once

	mu      sync.Mutex
	nActive int
	header  *sam.Header
}

type samIterator struct {
	provider *SAMProvider
	in       file.File
	rs       io.ReadSeeker
	reader   *sam.Reader

	active bool
	err    error
	next   *sam.Record
}

// GetHeader implements the Provider interface.
func (s *SAMProvider) GetHeader() (*sam.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header != nil {
		return s.header, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, s.Path)
	if err != nil {
		err = errors.E(err, "open", s.Path)
		s.err.Set(err)
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	r, err := sam.NewReader(in.Reader(ctx))
	if err != nil {
		err = errors.E(err, "read SAM header", s.Path)
		s.err.Set(err)
		return nil, err
	}
	s.header = r.Header()
	return s.header, nil
}

// Close implements the Provider interface.
func (s *SAMProvider) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %+v", s.nActive, s.Path)
	}
	return s.err.Err()
}

// NewIterator implements the Provider interface.
func (s *SAMProvider) NewIterator() Iterator {
	s.mu.Lock()
	s.nActive++
	s.mu.Unlock()

	iter := &samIterator{provider: s, active: true}
	ctx := vcontext.Background()
	if iter.in, iter.err = file.Open(ctx, s.Path); iter.err != nil {
		iter.err = errors.E(iter.err, "open", s.Path)
		return iter
	}
	iter.rs = iter.in.Reader(ctx)
	if iter.reader, iter.err = sam.NewReader(iter.rs); iter.err != nil {
		iter.err = errors.E(iter.err, "read SAM header", s.Path)
	}
	return iter
}

// Scan implements the Iterator interface.
func (i *samIterator) Scan() bool {
	if !i.active {
		vlog.Fatal("Reusing iterator")
	}
	if i.err != nil {
		return false
	}
	i.next, i.err = i.reader.Read()
	return i.err == nil
}

// Record implements the Iterator interface.
func (i *samIterator) Record() *sam.Record {
	return i.next
}

// Rewind implements the Iterator interface. sam.Reader buffers its input, so
// the reader is rebuilt on top of the same file after seeking to the start.
func (i *samIterator) Rewind() error {
	if i.rs == nil {
		return i.Err()
	}
	if i.err != nil && i.err != io.EOF {
		return i.err
	}
	i.next = nil
	if _, i.err = i.rs.Seek(0, io.SeekStart); i.err != nil {
		return i.err
	}
	i.reader, i.err = sam.NewReader(i.rs)
	return i.err
}

// Err implements the Iterator interface.
func (i *samIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *samIterator) Close() error {
	if !i.active {
		vlog.Fatal("Closing an inactive iterator")
	}
	i.active = false
	if i.in != nil {
		if err := i.in.Close(vcontext.Background()); err != nil && i.err == nil {
			i.err = err
		}
		i.in, i.rs, i.reader = nil, nil, nil
	}
	err := i.Err()
	s := i.provider
	s.err.Set(err)
	s.mu.Lock()
	s.nActive--
	if s.nActive < 0 {
		vlog.Fatalf("Negative active count for %+v", s.Path)
	}
	s.mu.Unlock()
	return err
}
