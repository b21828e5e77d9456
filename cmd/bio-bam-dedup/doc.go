/*Command bio-bam-dedup removes duplicate alignments of the same read from a
  BAM file.

  For every (read name, first-mate flag) pair only the first alignment in the
  input is kept, which drops the extra split or supplementary alignments an
  aligner may emit for one read. Records are written in input order. A summary
  line is printed to stderr.

  Usage: bio-bam-dedup --bam in.bam --out out.bam

  Paths ending in ".sam" are read or written as SAM text.
*/
package main
