package bamprovider

import (
	"strings"

	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Type forces the file type. If Unknown, the type is guessed from the
	// pathname.
	Type FileType
}

// Provider allows reading a BAM or SAM file sequentially. Thread safe.
type Provider interface {
	// GetHeader returns the header of the file. The header carries both the
	// header text and the reference dictionary. The callee must not modify the
	// returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over all the records in the file, in file
	// order. If the file cannot be opened, the iterator yields no record and
	// reports the error in Err and Close.
	//
	// REQUIRES: Close has not been called.
	NewIterator() Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in file order. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of the file, Scan() returns false. If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true. The caller owns the
	// returned record.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Rewind moves the iterator back before the first record, so that the
	// next Scan yields the first record of the file again. The file is not
	// reopened.
	//
	// REQUIRES: Close has not been called.
	Rewind() error

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// FileType represents the type of an alignment file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// BAM file
	BAM
	// SAM file
	SAM
)

// ParseFileType parses the file type string. "bam" returns bamprovider.BAM, for
// example. On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch name {
	case "bam":
		return BAM
	case "sam":
		return SAM
	default:
		return Unknown
	}
}

// GuessFileType returns the file type from the pathname. Returns Unknown if the
// suffix is not recognized.
func GuessFileType(path string) FileType {
	if strings.HasSuffix(path, ".bam") {
		return BAM
	}
	if strings.HasSuffix(path, ".sam") {
		return SAM
	}
	vlog.VI(1).Infof("%v: could not detect file type.", path)
	return Unknown
}

func mergeOpts(optList []ProviderOpts) ProviderOpts {
	opts := ProviderOpts{}
	for _, o := range optList {
		if o.Type != Unknown {
			opts.Type = o.Type
		}
	}
	return opts
}

// NewProvider creates a Provider object that can handle BAM or SAM file of
// "path". Unless ProviderOpts.Type is set, the file type is autodetected from
// the path, and files of unknown type are read as BAM. NewProvider does not
// touch the file; errors surface from GetHeader and the iterators.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	opts := mergeOpts(optList)
	fileType := opts.Type
	if fileType == Unknown {
		fileType = GuessFileType(path)
	}
	switch fileType {
	case BAM, Unknown:
		return &BAMProvider{Path: path}
	case SAM:
		return &SAMProvider{Path: path}
	}
	panic("shouldn't reach here")
}

// Open creates a Provider for "path" and reads its header, so that a missing
// or unparsable file is reported before any record is requested. On error, the
// provider is closed and nil is returned.
func Open(path string, optList ...ProviderOpts) (Provider, error) {
	p := NewProvider(path, optList...)
	if _, err := p.GetHeader(); err != nil {
		p.Close() // nolint: errcheck
		return nil, err
	}
	return p, nil
}
