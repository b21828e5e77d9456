package bamwriter_test

import (
	"bytes"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/bamfilter/encoding/bamprovider"
	"github.com/grailbio/bamfilter/encoding/bamwriter"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func testData(t *testing.T) (*sam.Header, []*sam.Record) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	assert.Nil(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1})
	assert.Nil(t, err)
	cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 2)}
	return header, []*sam.Record{
		&sam.Record{Name: "A", Ref: chr1, Pos: 1, Flags: sam.Paired | sam.Read1, MateRef: chr1, MatePos: 5,
			Cigar: cigar, Seq: sam.NewSeq([]byte("AC")), Qual: []byte{20, 20}},
		&sam.Record{Name: "A", Ref: chr1, Pos: 5, Flags: sam.Paired | sam.Read2, MateRef: chr1, MatePos: 1,
			Cigar: cigar, Seq: sam.NewSeq([]byte("GT")), Qual: []byte{20, 20}},
	}
}

func verifyBAM(t *testing.T, records []*sam.Record, in io.Reader) {
	reader, err := bam.NewReader(in, 1)
	assert.Nil(t, err)
	i := 0
	for {
		r, err := reader.Read()
		if err == io.EOF {
			expect.EQ(t, i, len(records), "not enough records in bam output %d vs %d", len(records), i)
			break
		}
		assert.Nil(t, err)
		assert.True(t, i < len(records), "too many records in bam output")
		expected, err := records[i].MarshalText()
		expect.Nil(t, err)
		actual, err := r.MarshalText()
		expect.Nil(t, err)
		expect.EQ(t, actual, expected, "record[%d] does not match %v vs %v", i, records[i], r)
		i++
	}
}

func TestBAMBuffer(t *testing.T) {
	header, records := testData(t)
	for _, level := range []int{0, gzip.BestSpeed, gzip.BestCompression} {
		var buf bytes.Buffer
		w, err := bamwriter.NewWriter(&buf, header, bamwriter.Opts{CompressionLevel: level})
		assert.Nil(t, err)
		for _, r := range records {
			expect.Nil(t, w.Write(r))
		}
		assert.Nil(t, w.Close())
		verifyBAM(t, records, &buf)
	}
}

func TestSAMBuffer(t *testing.T) {
	header, records := testData(t)
	var buf bytes.Buffer
	w, err := bamwriter.NewWriter(&buf, header, bamwriter.Opts{Type: bamprovider.SAM})
	assert.Nil(t, err)
	for _, r := range records {
		expect.Nil(t, w.Write(r))
	}
	assert.Nil(t, w.Close())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expect.EQ(t, len(lines), 3)
	expect.EQ(t, lines[0], "@SQ\tSN:chr1\tLN:1000")
	expect.True(t, strings.HasPrefix(lines[1], "A\t"), lines[1])
}

func TestCreate(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	header, records := testData(t)

	path := filepath.Join(tmpDir, "out.bam")
	w, err := bamwriter.Create(path, header)
	assert.Nil(t, err)
	for _, r := range records {
		expect.Nil(t, w.Write(r))
	}
	assert.Nil(t, w.Close())
	data, err := ioutil.ReadFile(path)
	assert.Nil(t, err)
	verifyBAM(t, records, bytes.NewReader(data))

	path = filepath.Join(tmpDir, "out.sam")
	w, err = bamwriter.Create(path, header)
	assert.Nil(t, err)
	assert.Nil(t, w.Close())
	data, err = ioutil.ReadFile(path)
	assert.Nil(t, err)
	expect.True(t, strings.HasPrefix(string(data), "@SQ\tSN:chr1\tLN:1000"), string(data))
}

func TestCreateFailure(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	header, _ := testData(t)
	blocker := filepath.Join(tmpDir, "file")
	assert.Nil(t, ioutil.WriteFile(blocker, []byte("x"), 0644))
	// A regular file cannot be used as a directory.
	_, err := bamwriter.Create(filepath.Join(blocker, "out.bam"), header)
	expect.NotNil(t, err)
}
