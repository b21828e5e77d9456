package main

// See doc.go for documentation

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/grailbio/bamfilter/encoding/bamprovider"
	"github.com/grailbio/bamfilter/readfilter"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage: bio-bam-pairfilter --bams <bam_file>

Required parameters:
	--bams    <input_bam_file> 	Input BAM file path, grouped by read name

Optional parameters:
	--check-grouping           	Fail if records with the same name are not adjacent
	--help                     	Print this help message and exit
	--version                  	Print version and exit
`

type config struct {
	bamPath       string
	checkGrouping bool
	help          bool
	version       bool
}

// parseArgs converts command-line arguments (without the program name) into a
// config. Errors are of kind errors.Invalid.
func parseArgs(args []string) (config, error) {
	var cfg config
	if len(args) == 0 {
		cfg.help = true
		return cfg, nil
	}
	fs := flag.NewFlagSet("bio-bam-pairfilter", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.StringVar(&cfg.bamPath, "bams", "", "Input BAM file path")
	fs.BoolVar(&cfg.checkGrouping, "check-grouping", false, "Fail if records with the same name are not adjacent")
	fs.BoolVar(&cfg.help, "help", false, "Print this help message and exit")
	fs.BoolVar(&cfg.help, "h", false, "Print this help message and exit")
	fs.BoolVar(&cfg.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return config{}, errors.E(errors.Invalid, err.Error())
	}
	if strings.HasPrefix(cfg.bamPath, "--") {
		return config{}, errors.E(errors.Invalid,
			fmt.Sprintf("argument to option --bams cannot begin with \"--\"; bad argument: %s", cfg.bamPath))
	}
	if fs.NArg() > 0 {
		return config{}, errors.E(errors.Invalid,
			fmt.Sprintf("did not recognize the following command line arguments: %s", strings.Join(fs.Args(), " ")))
	}
	if cfg.help || cfg.version {
		return cfg, nil
	}
	if cfg.bamPath == "" {
		return config{}, errors.E(errors.Invalid, "--bams option required")
	}
	return cfg, nil
}

// groupedByName reports whether the header promises that records with the
// same name are adjacent.
func groupedByName(h *sam.Header) bool {
	return h.SortOrder == sam.QueryName || h.GroupOrder == sam.GroupQuery
}

// run counts pairs in cfg.bamPath and prints the summary to stderr.
func run(cfg config, stderr io.Writer) error {
	ctx := vcontext.Background()
	if _, err := file.Stat(ctx, cfg.bamPath); err != nil {
		return errors.E(errors.NotExist, err, "input BAM file does not exist:", cfg.bamPath)
	}
	provider, err := bamprovider.Open(cfg.bamPath)
	if err != nil {
		return errors.E(err, "failed to open the input BAM file")
	}
	e := errors.Once{}
	if header, err := provider.GetHeader(); err != nil {
		e.Set(err)
	} else if !groupedByName(header) {
		log.Printf("warning: %s: header sort order is %v; records with the same name must be adjacent",
			cfg.bamPath, header.SortOrder)
	}
	if e.Err() == nil {
		iter := provider.NewIterator()
		counts, err := readfilter.FilterPairs(iter, readfilter.PairOpts{CheckGrouping: cfg.checkGrouping})
		e.Set(err)
		if err == nil {
			fmt.Fprintln(stderr, counts.Report(readfilter.PairUnit))
		}
		e.Set(iter.Close())
	}
	e.Set(provider.Close())
	return e.Err()
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n\n%s", err, usage)
		os.Exit(1)
	}
	if cfg.version {
		fmt.Fprintf(os.Stderr, "bio-bam-pairfilter version %s\n", version)
		os.Exit(0)
	}
	if cfg.help {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(0)
	}
	if err := run(cfg, os.Stderr); err != nil {
		log.Fatalf("bio-bam-pairfilter: %v", err)
	}
}
