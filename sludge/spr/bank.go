// Package spr decodes SLUDGE sprite banks: the animation frames of a
// character or the glyphs of a font, sharing one palette.
package spr

import (
	"image"

	"github.com/cam-per/sludge/sludge/pal"
)

type Version uint8

const (
	V0 Version = iota // 8-bit geometry, raw pixels, palette size after the pixels
	V1                // 8-bit geometry, raw pixels
	V2                // 16-bit geometry, run-coded pixels
	V3                // per-sprite PNG, no palette

	maxVersion = V3
)

type Sprite struct {
	XHot, YHot int
	Image      *image.NRGBA
	// Burn is only set for font banks: white pixels whose alpha is the
	// glyph coverage, tinted with an arbitrary colour at draw time.
	Burn *image.NRGBA
}

func (sprite *Sprite) Bounds() image.Rectangle {
	if sprite.Image == nil {
		return image.Rectangle{}
	}
	return sprite.Image.Bounds()
}

func (sprite *Sprite) Width() int  { return sprite.Bounds().Dx() }
func (sprite *Sprite) Height() int { return sprite.Bounds().Dy() }

type Bank struct {
	Version Version
	Sprites []Sprite
	Palette *pal.Palette
	IsFont  bool
}

func (bank *Bank) Total() int { return len(bank.Sprites) }

func (bank *Bank) Sprite(i int) (*Sprite, bool) {
	if i < 0 || i >= len(bank.Sprites) {
		return nil, false
	}
	return &bank.Sprites[i], true
}

// Bytes is the pixel memory held by the bank's surfaces.
func (bank *Bank) Bytes() int {
	n := 0
	for i := range bank.Sprites {
		if img := bank.Sprites[i].Image; img != nil {
			n += len(img.Pix)
		}
		if img := bank.Sprites[i].Burn; img != nil {
			n += len(img.Pix)
		}
	}
	return n
}

type spriteHeader struct {
	width, height int
	xhot, yhot    int
}
