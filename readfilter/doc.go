// Package readfilter removes unwanted records from a stream of alignments in a
// single pass.
//
// Dedup keeps the first record of every (read name, first-mate flag) key and
// drops the rest, e.g. the extra split alignments an aligner emits for one
// read. PairFilter groups consecutive records with the same read name and
// keeps only groups of exactly two records.
//
// Both filters consume records in the order the source yields them and never
// modify a record.
package readfilter
