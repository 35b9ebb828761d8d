package typecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	assert.Equal(t, Code{Letter: 'L', Size: 1}, Of[bool]())
	assert.Equal(t, Code{Letter: 'B', Size: 1, Bitpix: 8}, Of[uint8]())
	assert.Equal(t, Code{Letter: 'S', Size: 1, Bitpix: 8, BZero: -128}, Of[int8]())
	assert.Equal(t, Code{Letter: 'I', Size: 2, Bitpix: 16}, Of[int16]())
	assert.Equal(t, Code{Letter: 'U', Size: 2, Bitpix: 16, BZero: 32768}, Of[uint16]())
	assert.Equal(t, Code{Letter: 'J', Size: 4, Bitpix: 32}, Of[int32]())
	assert.Equal(t, Code{Letter: 'K', Size: 8, Bitpix: 64}, Of[int64]())
	assert.Equal(t, Code{Letter: 'E', Size: 4, Bitpix: -32}, Of[float32]())
	assert.Equal(t, Code{Letter: 'D', Size: 8, Bitpix: -64}, Of[float64]())
	assert.Equal(t, Code{Letter: 'M', Size: 16}, Of[complex128]())
	assert.Equal(t, Code{Letter: 'A', Size: 1}, Of[string]())
}

func TestTForm(t *testing.T) {
	assert.Equal(t, "D", Of[float64]().TForm(1))
	assert.Equal(t, "3D", Of[float64]().TForm(3))
	assert.Equal(t, "J", Of[int32]().TForm(1))
	// String columns always carry their width.
	assert.Equal(t, "1A", Of[string]().TForm(1))
	assert.Equal(t, "16A", Of[string]().TForm(16))
}

func TestParseTForm(t *testing.T) {
	repeat, letter, err := ParseTForm("D")
	require.NoError(t, err)
	assert.Equal(t, int64(1), repeat)
	assert.Equal(t, byte('D'), letter)

	repeat, letter, err = ParseTForm("12E")
	require.NoError(t, err)
	assert.Equal(t, int64(12), repeat)
	assert.Equal(t, byte('E'), letter)

	_, _, err = ParseTForm("")
	assert.Error(t, err)
	_, _, err = ParseTForm("12")
	assert.Error(t, err)
}

func TestLetterSize(t *testing.T) {
	for letter, want := range map[byte]int{'L': 1, 'B': 1, 'I': 2, 'U': 2, 'J': 4, 'E': 4, 'K': 8, 'D': 8, 'C': 8, 'M': 16, 'A': 1} {
		got, err := LetterSize(letter)
		require.NoError(t, err)
		assert.Equal(t, want, got, "letter %c", letter)
	}
	_, err := LetterSize('Z')
	assert.Error(t, err)
}

func TestElemRoundTrip(t *testing.T) {
	b2 := make([]byte, 2)
	PutElem(b2, int16(-1234))
	assert.Equal(t, int16(-1234), GetElem[int16](b2))

	b8 := make([]byte, 8)
	PutElem(b8, 3.5)
	assert.Equal(t, 3.5, GetElem[float64](b8))

	b1 := make([]byte, 1)
	PutElem(b1, true)
	assert.Equal(t, byte('T'), b1[0])
	assert.True(t, GetElem[bool](b1))

	b16 := make([]byte, 16)
	PutElem(b16, complex(1.5, -2.5))
	assert.Equal(t, complex(1.5, -2.5), GetElem[complex128](b16))
}

func TestStringElemPadding(t *testing.T) {
	b := make([]byte, 6)
	PutElem(b, "abc")
	assert.Equal(t, []byte("abc   "), b)
	assert.Equal(t, "abc", GetElem[string](b))
}

func TestPixelSignFlip(t *testing.T) {
	b := make([]byte, 2)
	PutPixel(b, uint16(0))
	assert.Equal(t, []byte{0x80, 0x00}, b)
	assert.Equal(t, uint16(0), GetPixel[uint16](b))

	PutPixel(b, uint16(65535))
	assert.Equal(t, []byte{0x7f, 0xff}, b)
	assert.Equal(t, uint16(65535), GetPixel[uint16](b))

	b1 := make([]byte, 1)
	PutPixel(b1, int8(-128))
	assert.Equal(t, byte(0x00), b1[0])
	assert.Equal(t, int8(-128), GetPixel[int8](b1))

	b8 := make([]byte, 8)
	PutPixel(b8, uint64(1))
	assert.Equal(t, uint64(1), GetPixel[uint64](b8))
}

func TestEncodeDecodePixels(t *testing.T) {
	src := []float32{0, 1.5, -2.25, 3e8}
	buf := make([]byte, len(src)*4)
	EncodePixels(buf, src)
	dst := make([]float32, len(src))
	DecodePixels(dst, buf)
	assert.Equal(t, src, dst)
}
