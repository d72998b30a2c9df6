package beide

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/beidekit/internal/apperr"
	"github.com/starford/beidekit/internal/beide/beidetest"
)

func testDecoder(order binary.ByteOrder, data []byte) decoder {
	return decoder{src: NewSource("test", data), order: order}
}

func TestReadInt32_AdvancesCursor(t *testing.T) {
	d := testDecoder(binary.BigEndian, []byte{0, 0, 0, 7, 0xff, 0xff, 0xff, 0xfe})

	v, cur, err := d.readInt32(0, d.src.Size())
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
	assert.Equal(t, int64(4), cur)

	v, cur, err = d.readInt32(cur, d.src.Size())
	require.NoError(t, err)
	assert.Equal(t, int32(-2), v)
	assert.Equal(t, int64(8), cur)

	_, same, err := d.readInt32(cur, d.src.Size())
	require.ErrorIs(t, err, apperr.ErrTruncatedRecord)
	assert.Equal(t, cur, same)
}

func TestReadInt32_LittleEndian(t *testing.T) {
	d := testDecoder(binary.LittleEndian, []byte{7, 0, 0, 0})
	v, _, err := d.readInt32(0, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
}

func TestReadInt32_RespectsLimit(t *testing.T) {
	d := testDecoder(binary.BigEndian, []byte{0, 0, 0, 1, 0, 0, 0, 2})
	_, _, err := d.readInt32(2, 5)
	require.ErrorIs(t, err, apperr.ErrTruncatedRecord)
}

func TestReadString(t *testing.T) {
	d := testDecoder(binary.BigEndian, []byte("abc\x00\x00de\x00"))

	s, cur, err := d.readString(0, d.src.Size())
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
	assert.Equal(t, int64(4), cur)

	s, cur, err = d.readString(cur, d.src.Size())
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Equal(t, int64(5), cur)

	s, cur, err = d.readString(cur, d.src.Size())
	require.NoError(t, err)
	assert.Equal(t, "de", s)
	assert.Equal(t, d.src.Size(), cur)
}

func TestReadString_Unterminated(t *testing.T) {
	d := testDecoder(binary.BigEndian, []byte("abc\x00def"))
	_, _, err := d.readString(4, d.src.Size())
	require.ErrorIs(t, err, apperr.ErrTruncatedRecord)

	// The terminator exists, but beyond the limit.
	_, _, err = d.readString(0, 2)
	require.ErrorIs(t, err, apperr.ErrTruncatedRecord)
}

func TestFindTag(t *testing.T) {
	b := beidetest.New(binary.BigEndian).
		Int("AAAA", 1).
		String("BBBB", "x").
		Int("CCCC", 3)
	d := testDecoder(binary.BigEndian, b.Bytes())
	size := d.src.Size()

	rec, found, err := d.findTag(FourCC("CCCC"), 0, size)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(b.Boundaries()[2]), rec.start)
	assert.Equal(t, rec.start+recordHeaderSize, rec.payload)
	assert.Equal(t, size, rec.end)

	_, found, err = d.findTag(FourCC("AAAA"), rec.end, size)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = d.findTag(FourCC("ZZZZ"), 0, size)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindTag_ReportsSkipped(t *testing.T) {
	b := beidetest.New(binary.BigEndian).Int("AAAA", 1).Int("BBBB", 2).Int("CCCC", 3)
	d := testDecoder(binary.BigEndian, b.Bytes())

	var skipped []Tag
	d.onSkip = func(r record) { skipped = append(skipped, r.tag) }

	_, found, err := d.findTag(FourCC("CCCC"), 0, d.src.Size())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []Tag{FourCC("AAAA"), FourCC("BBBB")}, skipped)
}

func TestFindTag_LengthPastEnd(t *testing.T) {
	data := beidetest.New(binary.BigEndian).Int("AAAA", 1).Bytes()
	data = append(data, 'B', 'B', 'B', 'B', 0, 0, 0, 9, 1, 2)
	d := testDecoder(binary.BigEndian, data)

	_, _, err := d.findTag(FourCC("ZZZZ"), 0, d.src.Size())
	require.ErrorIs(t, err, apperr.ErrTruncatedRecord)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, FourCC("BBBB"), de.Tag)
	assert.Equal(t, int64(12), de.Offset)
}

func TestFindTag_ShortHeader(t *testing.T) {
	data := append(beidetest.New(binary.BigEndian).Int("AAAA", 1).Bytes(), 'B', 'B')
	d := testDecoder(binary.BigEndian, data)

	_, _, err := d.findTag(FourCC("ZZZZ"), 0, d.src.Size())
	require.ErrorIs(t, err, apperr.ErrTruncatedRecord)
}

func TestSourceRange(t *testing.T) {
	src := NewSource("r", []byte{1, 2, 3})

	b, err := src.Range(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, b)

	b, err = src.Range(3, 0)
	require.NoError(t, err)
	assert.Empty(t, b)

	for _, c := range [][2]int64{{-1, 1}, {2, 2}, {4, 0}, {0, -1}} {
		_, err := src.Range(c[0], c[1])
		assert.ErrorIs(t, err, apperr.ErrTruncatedRecord, "range %v", c)
	}
}

func TestNewSource_CopiesInput(t *testing.T) {
	data := []byte{1, 2, 3}
	src := NewSource("c", data)
	data[0] = 9

	b, err := src.Range(0, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(1), b[0])
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "'TNam'", TagTargetName.String())
	assert.Equal(t, "0x00000001", Tag(1).String())
	assert.Panics(t, func() { FourCC("abc") })
}

func TestDetectByteOrder(t *testing.T) {
	be := beidetest.New(binary.BigEndian).Header(1).Bytes()
	le := beidetest.New(binary.LittleEndian).Header(1).Bytes()

	assert.Equal(t, binary.BigEndian, DetectByteOrder(NewSource("be", be)))
	assert.Equal(t, binary.LittleEndian, DetectByteOrder(NewSource("le", le)))
	assert.Equal(t, binary.BigEndian, DetectByteOrder(NewSource("none", []byte("TNam"))))
	assert.Equal(t, binary.BigEndian, DetectByteOrder(NewSource("short", []byte{1})))
}
