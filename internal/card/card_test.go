package card

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValueFixed(t *testing.T) {
	img, err := Format(Card{Kind: KindValue, Keyword: "SIMPLE", Value: "T", Comment: "file conforms"})
	require.NoError(t, err)
	require.Len(t, img, Width)
	assert.Equal(t, "SIMPLE  = ", string(img[:10]))
	// Short values are right justified to column 30.
	assert.Equal(t, byte('T'), img[29])
	assert.Equal(t, " / file conforms", string(img[30:46]))
}

func TestFormatStringPadding(t *testing.T) {
	img, err := Format(Card{Kind: KindValue, Keyword: "DATE", Value: "x", IsString: true})
	require.NoError(t, err)
	require.Len(t, img, Width)
	assert.Contains(t, string(img), "'x       '")
}

func TestEnd(t *testing.T) {
	img := End()
	require.Len(t, img, Width)
	assert.Equal(t, "END", string(img[:3]))
	assert.Equal(t, strings.Repeat(" ", Width-3), string(img[3:]))
}

func TestValueRoundTrip(t *testing.T) {
	cards := []Card{
		{Kind: KindValue, Keyword: "SIMPLE", Value: "T", Comment: "file conforms"},
		{Kind: KindValue, Keyword: "BITPIX", Value: "-32"},
		{Kind: KindValue, Keyword: "EXPTIME", Value: "3.6E+03", Comment: "[s] exposure time"},
		{Kind: KindValue, Keyword: "OBJECT", Value: "NGC 6543", IsString: true, Comment: "target"},
		{Kind: KindValue, Keyword: "QUOTED", Value: "it's", IsString: true},
	}
	var raw []byte
	for _, c := range cards {
		img, err := Format(c)
		require.NoError(t, err)
		raw = append(raw, img...)
	}
	parsed, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, cards, parsed)
}

func TestHierarchRoundTrip(t *testing.T) {
	c := Card{Kind: KindValue, Keyword: "ESO TEL AIRM START", Value: "1.204", Comment: "airmass"}
	require.True(t, NeedsHierarch(c.Keyword))
	img, err := Format(c)
	require.NoError(t, err)
	require.Len(t, img, Width)
	assert.True(t, strings.HasPrefix(string(img), "HIERARCH ESO TEL AIRM START = "))
	parsed, err := Decode(img)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, c, parsed[0])
}

func TestLongStringRoundTrip(t *testing.T) {
	value := strings.Repeat("the quick brown fox jumps over the lazy dog ", 5) + "end"
	require.True(t, NeedsContinue(value))
	c := Card{Kind: KindValue, Keyword: "SVALUE", Value: value, IsString: true, Comment: "wrapped"}
	img, err := Format(c)
	require.NoError(t, err)
	require.Greater(t, len(img), Width)
	require.Zero(t, len(img)%Width)
	assert.Equal(t, "CONTINUE", string(img[Width:Width+8]))
	parsed, err := Decode(img)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, c, parsed[0])
}

func TestHierarchLongStringRoundTrip(t *testing.T) {
	// The HIERARCH prefix eats into the first card's value field, so the
	// first chunk must be shorter than the CONTINUE ones.
	c := Card{Kind: KindValue, Keyword: "ESO OBS NOTE", Value: strings.Repeat("x", 100), IsString: true}
	img, err := Format(c)
	require.NoError(t, err)
	require.Greater(t, len(img), Width)
	require.Zero(t, len(img)%Width)
	assert.True(t, strings.HasPrefix(string(img), "HIERARCH ESO OBS NOTE = '"))
	assert.Equal(t, "CONTINUE", string(img[Width:Width+8]))
	parsed, err := Decode(img)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, c, parsed[0])
}

func TestHierarchKeywordTooLong(t *testing.T) {
	c := Card{Kind: KindValue, Keyword: strings.Repeat("K", 70), Value: "some value", IsString: true}
	_, err := Format(c)
	assert.Error(t, err)
}

func TestLongStringWithQuotes(t *testing.T) {
	value := strings.Repeat("o'brien said 'hello there' again and again ", 4) + "done"
	c := Card{Kind: KindValue, Keyword: "SVALUE", Value: value, IsString: true}
	img, err := Format(c)
	require.NoError(t, err)
	parsed, err := Decode(img)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, value, parsed[0].Value)
}

func TestCommentaryWrap(t *testing.T) {
	text := strings.Repeat("x", 100)
	img, err := Format(Card{Kind: KindCommentary, Keyword: "COMMENT", Comment: text})
	require.NoError(t, err)
	require.Len(t, img, 2*Width)
	parsed, err := Decode(img)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, text, parsed[0].Comment+parsed[1].Comment)
	assert.Equal(t, KindCommentary, parsed[0].Kind)
}

func TestDecodeBlankCard(t *testing.T) {
	img := make([]byte, Width)
	for i := range img {
		img[i] = ' '
	}
	parsed, err := Decode(img)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, KindCommentary, parsed[0].Kind)
	assert.Equal(t, "", parsed[0].Keyword)
}

func TestNeedsHierarch(t *testing.T) {
	assert.False(t, NeedsHierarch("NAXIS1"))
	assert.False(t, NeedsHierarch("OBS-DATE"))
	assert.True(t, NeedsHierarch("VERYLONGKEY"))
	assert.True(t, NeedsHierarch("ESO TEL"))
	assert.True(t, NeedsHierarch("lower"))
}
