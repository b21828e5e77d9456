package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/grailbio/bamfilter/encoding/bamwriter"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cfg, err := parseArgs(nil)
	require.NoError(t, err)
	expect.EQ(t, cfg, config{help: true})

	cfg, err = parseArgs([]string{"--bams", "in.bam"})
	require.NoError(t, err)
	expect.EQ(t, cfg, config{bamPath: "in.bam"})

	cfg, err = parseArgs([]string{"--bams", "in.bam", "--check-grouping"})
	require.NoError(t, err)
	expect.EQ(t, cfg, config{bamPath: "in.bam", checkGrouping: true})

	cfg, err = parseArgs([]string{"--version"})
	require.NoError(t, err)
	expect.EQ(t, cfg, config{version: true})

	for _, args := range [][]string{
		{"--check-grouping"},
		{"--bams", "a.bam", "b.bam"},
		{"--bams", "--help"},
		{"--bam", "a.bam"},
	} {
		_, err := parseArgs(args)
		require.Error(t, err, "%v", args)
		expect.True(t, errors.Is(errors.Invalid, err), "%v: %v", args, err)
	}
}

func writeInput(t *testing.T, path string, sortOrder sam.SortOrder, names []string) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1})
	require.NoError(t, err)
	header.Version = "1.5"
	header.SortOrder = sortOrder
	w, err := bamwriter.Create(path, header)
	require.NoError(t, err)
	for i, name := range names {
		flags := sam.Paired | sam.Read1
		if i%2 == 1 {
			flags = sam.Paired | sam.Read2
		}
		require.NoError(t, w.Write(&sam.Record{
			Name:    name,
			Ref:     chr1,
			Pos:     i,
			Flags:   flags,
			Cigar:   []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 2)},
			MateRef: chr1,
			MatePos: i,
			Seq:     sam.NewSeq([]byte("AC")),
			Qual:    []byte{20, 20},
		}))
	}
	require.NoError(t, w.Close())
}

func TestRun(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	tests := []struct {
		names    []string
		expected string
	}{
		{nil, "Filtered out 0 out of 0 alignments\n"},
		{[]string{"A", "A"}, "Filtered out 0 out of 2 alignments\n"},
		{[]string{"A", "A", "A"}, "Filtered out 3 out of 3 alignments\n"},
		{[]string{"A"}, "Filtered out 1 out of 1 alignments\n"},
		{[]string{"A", "A", "B", "C", "C", "C", "D", "D"}, "Filtered out 4 out of 8 alignments\n"},
	}
	for i, test := range tests {
		path := filepath.Join(tmpDir, "in.bam")
		writeInput(t, path, sam.QueryName, test.names)
		var stderr bytes.Buffer
		require.NoError(t, run(config{bamPath: path}, &stderr), "test %d", i)
		expect.EQ(t, stderr.String(), test.expected, "test %d", i)
	}
}

func TestRunCheckGrouping(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tmpDir, "in.bam")
	writeInput(t, path, sam.Coordinate, []string{"A", "B", "A", "B"})

	var stderr bytes.Buffer
	require.NoError(t, run(config{bamPath: path}, &stderr))
	expect.EQ(t, stderr.String(), "Filtered out 4 out of 4 alignments\n")

	stderr.Reset()
	err := run(config{bamPath: path, checkGrouping: true}, &stderr)
	require.Error(t, err)
	expect.True(t, errors.Is(errors.Precondition, err), "%v", err)
	expect.EQ(t, stderr.String(), "")
}

func TestRunMissingInput(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	var stderr bytes.Buffer
	err := run(config{bamPath: filepath.Join(tmpDir, "missing.bam")}, &stderr)
	require.Error(t, err)
	expect.True(t, errors.Is(errors.NotExist, err), "%v", err)
}

func TestGroupedByName(t *testing.T) {
	h, err := sam.NewHeader(nil, nil)
	require.NoError(t, err)
	expect.False(t, groupedByName(h))
	h.SortOrder = sam.QueryName
	expect.True(t, groupedByName(h))
	h.SortOrder = sam.Unsorted
	h.GroupOrder = sam.GroupQuery
	expect.True(t, groupedByName(h))
}
