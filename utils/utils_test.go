package utils

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestStreamStickyError(t *testing.T) {
	stream := NewStream(bytes.NewReader([]byte{0x01, 0x02, 0xff, 0xfe, 0x07}))

	assert.Equal(t, uint16(0x0102), stream.Uint16BE())
	assert.Equal(t, int16(-257), stream.Int16LE())
	assert.Equal(t, int64(4), stream.Offset())
	require.NoError(t, stream.Err())

	assert.Equal(t, uint32(0), stream.Uint32LE())
	require.ErrorIs(t, stream.Err(), io.ErrUnexpectedEOF)

	// later reads keep returning zero values and the first error
	assert.Equal(t, byte(0), stream.Byte())
	require.ErrorIs(t, stream.Err(), io.ErrUnexpectedEOF)
}

func TestStreamEOFIsUnexpected(t *testing.T) {
	stream := NewStream(bytes.NewReader(nil))
	_, err := stream.ReadByte()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReaders(t *testing.T) {
	r := bytes.NewReader([]byte{0x12, 0x34, 0x78, 0x56, 0x34, 0x12, 0x09})

	be, err := ReadUint16BE(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), be)

	u32, err := ReadUint32LE(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	b, err := ReadByte(r)
	require.NoError(t, err)
	assert.Equal(t, byte(9), b)

	_, err = ReadByte(r)
	require.ErrorIs(t, err, io.EOF)
}

func TestHexDump(t *testing.T) {
	data := []byte("SLUDGE\x00\x01abcdefghijklmnop")
	var out strings.Builder
	require.NoError(t, HexDump(&out, bytes.NewReader(data), 2, 100))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "00000002  55 44 47 45 00 01 61 62"))
	assert.True(t, strings.HasSuffix(lines[0], "|UDGE..abcdefghij|"))
	assert.True(t, strings.HasPrefix(lines[1], "00000012  6b 6c"))
	assert.True(t, strings.HasSuffix(lines[1], "|klmnop|"))
}

func TestCString(t *testing.T) {
	assert.Equal(t, "abc", CString("abc\x00def").String())
	assert.Equal(t, "", CString("\x00abc").String())
	assert.Equal(t, "abc", CString("abc").String())

	assert.Equal(t, "é", CString([]byte{0xe9}).Decode(charmap.Windows1252))
	assert.Equal(t, "é", CString([]byte{0xe9}).Decode(nil))
	assert.Equal(t, "Ж", CString([]byte{0xc6}).Decode(charmap.Windows1251))
	assert.Equal(t, "aé", CString([]byte{'a', 0xe9}).Decode(charmap.ISO8859_1))
}

func TestCharmap(t *testing.T) {
	cm, ok := Charmap("windows-1252")
	require.True(t, ok)
	assert.Equal(t, charmap.Windows1252, cm)

	cm, ok = Charmap("utf-8")
	require.True(t, ok)
	assert.Nil(t, cm)

	cm, ok = Charmap("CP437")
	require.True(t, ok)
	assert.Equal(t, charmap.CodePage437, cm)

	cm, ok = Charmap(" KOI8-R ")
	require.True(t, ok)
	assert.Equal(t, charmap.KOI8R, cm)

	_, ok = Charmap("ebcdic")
	assert.False(t, ok)
}
