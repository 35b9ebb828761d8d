// Package engine is the low-level FITS I/O engine the typed layer is built
// on. It owns the byte-level concerns: opening and creating files, sniffing
// and applying gzip compression, splitting a file into header-data units,
// computing data-unit sizes from the structural keywords, and serializing
// everything back out in 2880-byte blocks.
//
// The engine deals in cards and raw data bytes only. Typed record parsing,
// pixel codecs and column batching live above it, in the public fits
// package. A File is an exclusively-owned resource: the whole container is
// parsed into memory on open and written back on flush or close, so every
// read and write between open and close is an in-memory operation.
package engine
