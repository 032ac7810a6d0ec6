// Package rle implements the two run-length codings found in SLUDGE data:
// palette-index runs in version 2 sprite banks, and zone runs in depth maps.
package rle

import (
	"errors"
	"io"
)

var ErrIndexOverlap = errors.New("rle: index collides with run codes")

// Decoder expands a version 2 sprite pixel stream. Bytes up to the bank's
// colour count are literal palette indices; a larger byte b starts a run of
// colour b-colours-1 repeated next+1 times. Exactly size indices are
// produced; a run crossing the end is clipped.
type Decoder struct {
	r         io.ByteReader
	colours   byte
	remaining int64
	run       byte
	runLeft   int
}

func NewDecoder(r io.ByteReader, colours byte, size int64) *Decoder {
	return &Decoder{
		r:         r,
		colours:   colours,
		remaining: size,
	}
}

func (decoder *Decoder) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if decoder.remaining <= 0 {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}

		if decoder.runLeft > 0 {
			for decoder.runLeft > 0 && n < len(p) && decoder.remaining > 0 {
				p[n] = decoder.run
				n++
				decoder.runLeft--
				decoder.remaining--
			}
			if decoder.remaining == 0 {
				decoder.runLeft = 0
			}
			continue
		}

		col, err := decoder.r.ReadByte()
		if err != nil {
			return n, unexpected(err)
		}
		if col <= decoder.colours {
			p[n] = col
			n++
			decoder.remaining--
			continue
		}

		count, err := decoder.r.ReadByte()
		if err != nil {
			return n, unexpected(err)
		}
		decoder.run = col - decoder.colours - 1
		decoder.runLeft = int(count) + 1
	}
	return n, nil
}

// ReadAll drains the decoder into a freshly allocated buffer.
func (decoder *Decoder) ReadAll() ([]byte, error) {
	out := make([]byte, decoder.remaining)
	if _, err := io.ReadFull(decoder, out); err != nil {
		return nil, unexpected(err)
	}
	return out, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
