package spr

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/sludge/pal"
	"github.com/cam-per/sludge/sludge/rle"
	"github.com/cam-per/sludge/utils"
)

const op = "spr"

type Decoder struct {
	r          *utils.Stream
	bank       *Bank
	howmany    int
	startIndex int
	headers    []spriteHeader
	data       [][]byte
}

func NewDecoder(r io.Reader, isFont bool) (*Decoder, error) {
	decoder := &Decoder{
		r:    utils.NewStream(r),
		bank: &Bank{IsFont: isFont},
	}
	if err := decoder.decode(); err != nil {
		return nil, err
	}
	return decoder, nil
}

func Decode(r io.Reader, isFont bool) (*Bank, error) {
	decoder, err := NewDecoder(r, isFont)
	if err != nil {
		return nil, err
	}
	return decoder.Bank(), nil
}

func (decoder *Decoder) Bank() *Bank { return decoder.bank }

func (decoder *Decoder) decode() error {
	total, err := decoder.decodeHeader()
	if err != nil {
		return err
	}
	decoder.bank.Sprites = make([]Sprite, total)

	if decoder.bank.Version == V3 {
		for i := range decoder.bank.Sprites {
			if err := decoder.decodePNG(&decoder.bank.Sprites[i]); err != nil {
				return err
			}
		}
		return nil
	}

	// version 1, 2: colour count precedes the pixels
	if decoder.bank.Version != V0 {
		decoder.howmany = int(decoder.r.Byte())
		decoder.startIndex = 1
	}

	decoder.headers = make([]spriteHeader, total)
	decoder.data = make([][]byte, total)
	for i := range decoder.bank.Sprites {
		if err := decoder.decodeIndexed(i); err != nil {
			return err
		}
	}

	// version 0: colour count and first palette slot trail the pixels
	if decoder.bank.Version == V0 {
		decoder.howmany = int(decoder.r.Byte())
		decoder.startIndex = int(decoder.r.Byte())
	}
	if err := decoder.r.Err(); err != nil {
		return errs.Stream(op, err)
	}

	if err := decoder.decodePalette(); err != nil {
		return err
	}

	for i := range decoder.bank.Sprites {
		if err := decoder.expand(i); err != nil {
			return err
		}
		decoder.data[i] = nil
	}
	decoder.data = nil
	return nil
}

func (decoder *Decoder) decodeHeader() (int, error) {
	total := int(decoder.r.Uint16BE())
	if total == 0 {
		decoder.bank.Version = Version(decoder.r.Byte())
		total = int(decoder.r.Uint16BE())
	}
	if err := decoder.r.Err(); err != nil {
		return 0, errs.Stream(op, err)
	}
	if decoder.bank.Version > maxVersion {
		return 0, errs.Format(op, "unsupported sprite bank version %d", decoder.bank.Version)
	}
	if total <= 0 {
		return 0, errs.Format(op, "no sprites in bank")
	}
	return total, nil
}

func (decoder *Decoder) decodePNG(sprite *Sprite) error {
	sprite.XHot = int(decoder.r.Int16LE())
	sprite.YHot = int(decoder.r.Int16LE())
	if err := decoder.r.Err(); err != nil {
		return errs.Stream(op, err)
	}
	img, err := png.Decode(decoder.r.Reader())
	if err != nil {
		return errs.Stream(op, err)
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)
	sprite.Image = canvas
	return nil
}

func (decoder *Decoder) decodeIndexed(i int) error {
	h := &decoder.headers[i]
	if decoder.bank.Version == V2 {
		h.width = int(decoder.r.Uint16BE())
		h.height = int(decoder.r.Uint16BE())
		h.xhot = int(decoder.r.Int16LE())
		h.yhot = int(decoder.r.Int16LE())
	} else {
		h.width = int(decoder.r.Byte())
		h.height = int(decoder.r.Byte())
		h.xhot = int(decoder.r.Byte())
		h.yhot = int(decoder.r.Byte())
	}
	if err := decoder.r.Err(); err != nil {
		return decoder.failAt(err, "sprite %d header", i)
	}

	size := h.width * h.height
	if decoder.bank.Version == V2 {
		data, err := rle.NewDecoder(decoder.r, byte(decoder.howmany), int64(size)).ReadAll()
		if err != nil {
			return decoder.failAt(err, "sprite %d pixels", i)
		}
		decoder.data[i] = data
		return nil
	}

	data := make([]byte, size)
	if _, err := decoder.r.Read(data); err != nil {
		return decoder.failAt(err, "sprite %d pixels", i)
	}
	decoder.data[i] = data
	return nil
}

func (decoder *Decoder) decodePalette() error {
	palette := pal.New(decoder.howmany + decoder.startIndex)
	if err := pal.NewDecoder(decoder.r).Decode(palette, decoder.startIndex, decoder.howmany); err != nil {
		return decoder.failAt(err, "palette")
	}
	decoder.bank.Palette = palette
	return nil
}

// failAt reports a read failure with the stream position it stopped at.
func (decoder *Decoder) failAt(err error, format string, args ...any) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.ErrUnexpectedEOF
	}
	return errs.Format(op, "%s at offset %d: %w", fmt.Sprintf(format, args...), decoder.r.Offset(), err)
}
