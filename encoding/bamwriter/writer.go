// Package bamwriter writes sam.Records to BAM or SAM files.
package bamwriter

import (
	"context"
	"io"

	"github.com/grailbio/bamfilter/encoding/bamprovider"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Writer consumes records. Records are written in the order Write is called.
type Writer interface {
	// Write appends one record.
	Write(r *sam.Record) error
	// Close flushes buffered data and releases the underlying file. It must be
	// called exactly once, also after a failed Write.
	Close() error
}

// Opts defines options for Create and NewWriter.
type Opts struct {
	// Type is the output format. If Unknown, Create guesses it from the path
	// and falls back to BAM; NewWriter uses BAM.
	Type bamprovider.FileType
	// CompressionLevel is the gzip level of BAM output. Zero means
	// gzip.DefaultCompression.
	CompressionLevel int
}

type recordWriter interface {
	Write(r *sam.Record) error
}

type writer struct {
	path  string
	codec recordWriter
	// closer is the BAM codec. nil for SAM, which doesn't buffer.
	closer io.Closer
	out    file.File
	ctx    context.Context
}

func (o Opts) level() int {
	if o.CompressionLevel == 0 {
		return gzip.DefaultCompression
	}
	return o.CompressionLevel
}

func newCodec(w io.Writer, header *sam.Header, opts Opts) (recordWriter, io.Closer, error) {
	if opts.Type == bamprovider.SAM {
		sw, err := sam.NewWriter(w, header, sam.FlagDecimal)
		return sw, nil, err
	}
	bw, err := bam.NewWriterLevel(w, header, opts.level(), 1)
	if err != nil {
		return nil, nil, err
	}
	return bw, bw, nil
}

// Create opens "path" for writing and emits the header. The header carries
// both the header text and the reference dictionary of the output. Existing
// contents of "path", if any, are destroyed.
func Create(path string, header *sam.Header, optList ...Opts) (Writer, error) {
	opts := mergeOpts(optList)
	if opts.Type == bamprovider.Unknown && bamprovider.GuessFileType(path) == bamprovider.SAM {
		opts.Type = bamprovider.SAM
	}
	ctx := vcontext.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "%v: create", path)
	}
	codec, closer, err := newCodec(out.Writer(ctx), header, opts)
	if err != nil {
		out.Close(ctx) // nolint: errcheck
		return nil, errors.Wrapf(err, "%v: write header", path)
	}
	return &writer{path: path, codec: codec, closer: closer, out: out, ctx: ctx}, nil
}

// NewWriter creates a Writer that emits to "w". Close flushes the codec but
// does not close "w".
func NewWriter(w io.Writer, header *sam.Header, optList ...Opts) (Writer, error) {
	codec, closer, err := newCodec(w, header, mergeOpts(optList))
	if err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	return &writer{codec: codec, closer: closer}, nil
}

func mergeOpts(optList []Opts) Opts {
	opts := Opts{}
	for _, o := range optList {
		if o.Type != bamprovider.Unknown {
			opts.Type = o.Type
		}
		if o.CompressionLevel != 0 {
			opts.CompressionLevel = o.CompressionLevel
		}
	}
	return opts
}

// Write implements the Writer interface.
func (w *writer) Write(r *sam.Record) error {
	if err := w.codec.Write(r); err != nil {
		return errors.Wrapf(err, "%v: write %s", w.path, r.Name)
	}
	return nil
}

// Close implements the Writer interface.
func (w *writer) Close() error {
	var err error
	if w.closer != nil {
		if e := w.closer.Close(); e != nil {
			err = errors.Wrapf(e, "%v: flush", w.path)
		}
	}
	if w.out != nil {
		if e := w.out.Close(w.ctx); e != nil && err == nil {
			err = errors.Wrapf(e, "%v: close", w.path)
		}
	}
	return err
}
