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
	"github.com/grailbio/bamfilter/encoding/bamwriter"
	"github.com/grailbio/bamfilter/readfilter"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage: bio-bam-dedup --bam <bam_file> --out <output_bam_file>

Required parameters:
	--bam     <input_bam_file> 	Input BAM file path
	--out     <output_bam_file>	Output BAM file path

Optional parameters:
	--help                     	Print this help message and exit
	--version                  	Print version and exit
`

type config struct {
	bamPath string
	outPath string
	help    bool
	version bool
}

// parseArgs converts command-line arguments (without the program name) into a
// config. Errors are of kind errors.Invalid. A config with help or version set
// is returned without checking the required flags.
func parseArgs(args []string) (config, error) {
	var cfg config
	if len(args) == 0 {
		cfg.help = true
		return cfg, nil
	}
	fs := flag.NewFlagSet("bio-bam-dedup", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.StringVar(&cfg.bamPath, "bam", "", "Input BAM file path")
	fs.StringVar(&cfg.outPath, "out", "", "Output BAM file path")
	fs.BoolVar(&cfg.help, "help", false, "Print this help message and exit")
	fs.BoolVar(&cfg.help, "h", false, "Print this help message and exit")
	fs.BoolVar(&cfg.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return config{}, errors.E(errors.Invalid, err.Error())
	}
	var badValue error
	fs.Visit(func(f *flag.Flag) {
		if v := f.Value.String(); badValue == nil && strings.HasPrefix(v, "--") {
			badValue = errors.E(errors.Invalid,
				fmt.Sprintf("argument to option --%s cannot begin with \"--\"; bad argument: %s", f.Name, v))
		}
	})
	if badValue != nil {
		return config{}, badValue
	}
	if fs.NArg() > 0 {
		return config{}, errors.E(errors.Invalid,
			fmt.Sprintf("did not recognize the following command line arguments: %s", strings.Join(fs.Args(), " ")))
	}
	if cfg.help || cfg.version {
		return cfg, nil
	}
	if cfg.bamPath == "" {
		return config{}, errors.E(errors.Invalid, "--bam option required")
	}
	if cfg.outPath == "" {
		return config{}, errors.E(errors.Invalid, "--out option required")
	}
	return cfg, nil
}

// run filters cfg.bamPath into cfg.outPath and prints the summary to stderr.
func run(cfg config, stderr io.Writer) (err error) {
	ctx := vcontext.Background()
	if _, err := file.Stat(ctx, cfg.bamPath); err != nil {
		return errors.E(errors.NotExist, err, "input BAM file does not exist:", cfg.bamPath)
	}
	provider, err := bamprovider.Open(cfg.bamPath)
	if err != nil {
		return errors.E(err, "failed to open the input BAM file")
	}
	e := errors.Once{}
	defer func() {
		e.Set(provider.Close())
		err = e.Err()
	}()
	header, err := provider.GetHeader()
	if err != nil {
		e.Set(err)
		return
	}
	w, err := bamwriter.Create(cfg.outPath, header)
	if err != nil {
		e.Set(errors.E(err, "failed to open the output BAM file"))
		return
	}
	iter := provider.NewIterator()
	if err := iter.Rewind(); err != nil {
		e.Set(err)
	} else {
		counts, err := readfilter.Dedup(iter, w)
		e.Set(err)
		fmt.Fprintln(stderr, counts.Report(readfilter.DedupUnit))
		log.Debug.Printf("%s: %d records in, %d written to %s", cfg.bamPath, counts.Total(), counts.Passed, cfg.outPath)
	}
	e.Set(iter.Close())
	e.Set(w.Close())
	return
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n\n%s", err, usage)
		os.Exit(1)
	}
	if cfg.version {
		fmt.Fprintf(os.Stderr, "bio-bam-dedup version %s\n", version)
		os.Exit(0)
	}
	if cfg.help {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(0)
	}
	if err := run(cfg, os.Stderr); err != nil {
		log.Fatalf("bio-bam-dedup: %v", err)
	}
}
