package checksum

// Sum1s accumulates data into a 32-bit ones' complement sum, starting from
// sum. Data is interpreted as big-endian 32-bit words; its length must be a
// multiple of 4 (FITS blocks always are).
func Sum1s(sum uint32, data []byte) uint32 {
	// Accumulate in 64 bits and fold the carries back in.
	hi := uint64(sum >> 16)
	lo := uint64(sum & 0xFFFF)
	for i := 0; i+4 <= len(data); i += 4 {
		hi += uint64(data[i])<<8 | uint64(data[i+1])
		lo += uint64(data[i+2])<<8 | uint64(data[i+3])
	}
	for hi > 0xFFFF || lo > 0xFFFF {
		hi = (hi & 0xFFFF) + (lo >> 16)
		lo = (lo & 0xFFFF) + (hi >> 16)
		hi &= 0xFFFF
	}
	return uint32(hi)<<16 | uint32(lo)
}

// asciiExclude lists the characters the encoding must avoid so that the
// result stays within the alphanumeric range: ":;<=>?@[\]^_`".
var asciiExclude = []byte{0x3a, 0x3b, 0x3c, 0x3d, 0x3e, 0x3f, 0x40, 0x5b, 0x5c, 0x5d, 0x5e, 0x5f, 0x60}

// Encode renders the complement of sum as the 16-character CHECKSUM value.
// Each byte of the complement is spread over four characters offset from
// '0', nudged in pairs off the excluded punctuation range, interleaved
// column-wise and rotated right by one position.
func Encode(sum uint32) string {
	value := ^sum
	var ascii [16]byte
	for i := 0; i < 4; i++ {
		b := byte(value >> (24 - 8*i))
		var ch [4]byte
		q := b/4 + '0'
		r := b % 4
		ch[0], ch[1], ch[2], ch[3] = q+r, q, q, q
		for again := true; again; {
			again = false
			for _, x := range asciiExclude {
				for j := 0; j < 4; j += 2 {
					if ch[j] == x || ch[j+1] == x {
						ch[j]++
						ch[j+1]--
						again = true
					}
				}
			}
		}
		for j := 0; j < 4; j++ {
			ascii[4*j+i] = ch[j]
		}
	}
	var out [16]byte
	for i := range ascii {
		out[(i+1)%16] = ascii[i]
	}
	return string(out[:])
}

// Verify reports whether data (a complete HDU with its CHECKSUM keyword in
// place) sums to the all-ones value required by the convention.
func Verify(data []byte) bool {
	return Sum1s(0, data) == 0xFFFFFFFF
}
