// Package checksum implements the FITS checksum convention.
//
// The convention accumulates a 32-bit ones' complement sum over big-endian
// 32-bit words. The DATASUM keyword stores the data-unit sum as a decimal
// string; the CHECKSUM keyword stores a 16-character ASCII encoding of the
// complement of the whole-HDU sum, chosen so that recomputing the sum over
// the final header yields 0xFFFFFFFF.
package checksum
