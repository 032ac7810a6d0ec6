package utils

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CString is a NUL-terminated byte string as stored in game data files.
type CString []byte

func (c CString) NullTerminateBytes() []byte {
	i := bytes.IndexByte(c, 0)
	if i == -1 {
		return c
	} else if i == 0 {
		return nil
	} else {
		return c[:i]
	}
}

func (c CString) String() string { return string(c.NullTerminateBytes()) }

// Decode interprets the string in a legacy single-byte code page. A nil
// encoding means the bytes are already UTF-8; invalid UTF-8 then falls back
// to Windows-1252, which is what old font tables were written in.
func (c CString) Decode(encoding *charmap.Charmap) string {
	raw := c.NullTerminateBytes()
	if encoding == nil {
		if utf8.Valid(raw) {
			return string(raw)
		}
		encoding = charmap.Windows1252
	}
	buf, err := encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return c.String()
	}
	return string(buf)
}

var charmaps = map[string]*charmap.Charmap{
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp866":        charmap.CodePage866,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-15":  charmap.ISO8859_15,
	"koi8-r":       charmap.KOI8R,
}

// Charmap resolves a code page name, ignoring case. "" and "utf-8" resolve
// to nil.
func Charmap(name string) (*charmap.Charmap, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "utf-8", "utf8":
		return nil, true
	}
	cm, ok := charmaps[name]
	return cm, ok
}
