// Package bamprovider provides sequential readers for BAM and SAM files.
//
// A Provider wraps one alignment file. Each Iterator created by the provider
// scans the file from its first record to the end in file order, and can be
// rewound to the first record without reopening the file.
package bamprovider
