// Package typecode maps the closed set of supported Go value types to the
// FITS binary codes that describe them on disk.
//
// FITS uses two independent encodings for element types:
//
//   - Images declare a BITPIX code (8, 16, 32, 64, -32, -64). Unsigned
//     integers and signed bytes have no native BITPIX; they are stored as
//     the signed type of the same width with a BZERO offset.
//   - Binary tables declare a TFORMn string per column: a repeat count
//     followed by a single type letter (e.g. "12E"). String columns use the
//     repeat count as a character width.
//
// The mapping is resolved statically: every entry point is a generic
// function constrained to the [Value] (or [Numeric]) type set, so an
// unsupported element type is a compile error, never a runtime failure.
// There is no inspection of arbitrary values anywhere in this package.
//
//	FITS letter | Go type     | bytes on disk
//	------------|-------------|--------------
//	L           | bool        | 1 ('T'/'F')
//	B           | uint8       | 1
//	S           | int8        | 1 (local convention)
//	I           | int16       | 2
//	U           | uint16      | 2 (local convention)
//	J           | int32       | 4
//	V           | uint32      | 4 (local convention)
//	K           | int64       | 8
//	W           | uint64      | 8 (local convention)
//	E           | float32     | 4
//	D           | float64     | 8
//	C           | complex64   | 8
//	M           | complex128  | 16
//	A           | string      | repeat (space padded)
//
// All multi-byte values are big-endian, as required by the FITS standard.
package typecode
