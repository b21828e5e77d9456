package bamprovider

import (
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// BAMProvider implements Provider for BAM files. The path is opened through
// grailbio/base/file, so any registered file implementation can serve it.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	err  errors.Once

	mu      sync.Mutex
	nActive int
	header  *sam.Header
}

type bamIterator struct {
	provider *BAMProvider
	in       file.File
	reader   *bam.Reader
	// Offset of the first record in the file.
	firstRecord bgzf.Offset

	active bool
	err    error
	next   *sam.Record
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.header != nil {
		return b.header, nil
	}

	ctx := vcontext.Background()
	reader, err := file.Open(ctx, b.Path)
	if err != nil {
		err = errors.E(err, "open", b.Path)
		b.err.Set(err)
		return nil, err
	}
	defer reader.Close(ctx) // nolint: errcheck
	bamReader, err := bam.NewReader(reader.Reader(ctx), 1)
	if err != nil {
		err = errors.E(err, "read BAM header", b.Path)
		b.err.Set(err)
		return nil, err
	}
	defer bamReader.Close() // nolint: errcheck
	b.header = bamReader.Header()
	return b.header, nil
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %+v", b.nActive, b.Path)
	}
	return b.err.Err()
}

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator() Iterator {
	b.mu.Lock()
	b.nActive++
	b.mu.Unlock()

	iter := &bamIterator{
		provider: b,
		active:   true,
	}
	ctx := vcontext.Background()
	if iter.in, iter.err = file.Open(ctx, b.Path); iter.err != nil {
		iter.err = errors.E(iter.err, "open", b.Path)
		return iter
	}
	if iter.reader, iter.err = bam.NewReader(iter.in.Reader(ctx), 1); iter.err != nil {
		iter.err = errors.E(iter.err, "read BAM header", b.Path)
		return iter
	}
	iter.firstRecord = iter.reader.LastChunk().End
	return iter
}

// Scan implements the Iterator interface.
func (i *bamIterator) Scan() bool {
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
func (i *bamIterator) Record() *sam.Record {
	return i.next
}

// Rewind implements the Iterator interface.
func (i *bamIterator) Rewind() error {
	if i.reader == nil {
		return i.Err()
	}
	if i.err != nil && i.err != io.EOF {
		return i.err
	}
	i.next = nil
	i.err = i.reader.Seek(i.firstRecord)
	return i.err
}

// Err implements the Iterator interface.
func (i *bamIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	if !i.active {
		vlog.Fatal("Closing an inactive iterator")
	}
	i.active = false
	if i.reader != nil {
		if err := i.reader.Close(); err != nil && i.err == nil {
			i.err = err
		}
		i.reader = nil
	}
	if i.in != nil {
		if err := i.in.Close(vcontext.Background()); err != nil && i.err == nil {
			i.err = err
		}
		i.in = nil
	}
	err := i.Err()
	b := i.provider
	b.err.Set(err)
	b.mu.Lock()
	b.nActive--
	if b.nActive < 0 {
		vlog.Fatalf("Negative active count for %+v", b.Path)
	}
	b.mu.Unlock()
	return err
}
