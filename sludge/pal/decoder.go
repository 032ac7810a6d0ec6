package pal

import (
	"fmt"
	"io"
)

type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads count RGB triplets into p starting at index start. p must
// already hold at least start+count entries.
func (decoder *Decoder) Decode(p *Palette, start, count int) error {
	if start < 0 || count < 0 || start+count > p.Len() {
		return fmt.Errorf("pal: range %d+%d exceeds table of %d", start, count, p.Len())
	}
	buf := make([]byte, 3*count)
	if _, err := io.ReadFull(decoder.r, buf); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		off := i * 3
		p.Set(start+i, buf[off+0], buf[off+1], buf[off+2])
	}
	return nil
}
