/*Command bio-bam-pairfilter counts alignments that belong to well-formed read
  pairs.

  Consecutive records with the same read name form a group; groups of exactly
  two records pass and all other groups are filtered. The input must be
  grouped by read name (e.g. "samtools sort -n"); the tool warns when the
  header does not say so, and --check-grouping turns a violation into an
  error. Nothing is written besides the summary line on stderr.

  Usage: bio-bam-pairfilter --bams in.bam

  --bams takes exactly one path.
*/
package main
