package render

import (
	"image"
	"image/color"

	"golang.org/x/text/encoding/charmap"

	"github.com/cam-per/sludge/sludge/pal"
	"github.com/cam-per/sludge/sludge/spr"
	"github.com/cam-per/sludge/utils"
)

func glyphOptions(tint color.NRGBA, mirror bool) BlitOptions {
	opt := BlitOptions{Tint: tint}
	if mirror {
		opt.Flip = FlipH
	}
	return opt
}

// DrawGlyph draws a font sprite with its hotspot at (x, y): the indexed
// surface first, then the burn surface over it.
func DrawGlyph(dst *image.NRGBA, x, y int, s *spr.Sprite, tint color.NRGBA, mirror bool) {
	if s == nil {
		return
	}
	x1, y1 := x-s.XHot, y-s.YHot
	opt := glyphOptions(tint, mirror)
	Blit(dst, s.Image, x1, y1, opt)
	if s.Burn != nil {
		Blit(dst, s.Burn, x1, y1, opt)
	}
}

// PasteGlyph draws s permanently onto a backdrop using the palette's
// original colour.
func PasteGlyph(backdrop *image.NRGBA, x, y int, s *spr.Sprite, p *pal.Palette) {
	tint := White
	if p != nil {
		tint = p.Original()
	}
	DrawGlyph(backdrop, x, y, s, tint, false)
}

// BurnGlyph stamps s onto a backdrop in a single colour, using the burn
// surface for anti-aliased coverage when the bank has one. The glyph sits one
// row lower than DrawGlyph puts it. A zero c burns white, like any zero tint.
func BurnGlyph(backdrop *image.NRGBA, x, y int, s *spr.Sprite, c color.NRGBA) {
	if s == nil {
		return
	}
	src := s.Burn
	if src == nil {
		src = s.Image
	}
	Blit(backdrop, src, x-s.XHot, y-(s.YHot-1), glyphOptions(c, false))
}

// Font maps characters to the sprites of a font bank. Characters missing
// from the table use sprite 0.
type Font struct {
	Bank    *spr.Bank
	Spacing int
	glyphs  map[rune]int
}

// NewFont builds a font whose table lists one character per sprite.
func NewFont(bank *spr.Bank, table string, spacing int) *Font {
	font := &Font{Bank: bank, Spacing: spacing, glyphs: make(map[rune]int)}
	i := 0
	for _, r := range table {
		if _, dup := font.glyphs[r]; !dup {
			font.glyphs[r] = i
		}
		i++
	}
	return font
}

// NewFontCharmap builds a font from a table stored in a legacy code page.
func NewFontCharmap(bank *spr.Bank, raw []byte, cm *charmap.Charmap, spacing int) *Font {
	return NewFont(bank, utils.CString(raw).Decode(cm), spacing)
}

func (font *Font) Glyph(r rune) (*spr.Sprite, bool) {
	if font == nil || font.Bank == nil {
		return nil, false
	}
	i, ok := font.glyphs[r]
	if !ok {
		i = 0
	}
	return font.Bank.Sprite(i)
}

// Width is the advance of text in pixels.
func (font *Font) Width(text string) int {
	w := 0
	for _, r := range text {
		if s, ok := font.Glyph(r); ok {
			w += s.Width() + font.Spacing
		}
	}
	return w
}

// Draw renders text with each glyph hotspot on the pen position, starting
// at (x, y), and returns the pen x after the last glyph.
func (font *Font) Draw(dst *image.NRGBA, x, y int, text string, tint color.NRGBA) int {
	for _, r := range text {
		s, ok := font.Glyph(r)
		if !ok {
			continue
		}
		DrawGlyph(dst, x, y, s, tint, false)
		x += s.Width() + font.Spacing
	}
	return x
}

func (font *Font) Paste(backdrop *image.NRGBA, x, y int, text string) int {
	var p *pal.Palette
	if font != nil && font.Bank != nil {
		p = font.Bank.Palette
	}
	for _, r := range text {
		s, ok := font.Glyph(r)
		if !ok {
			continue
		}
		PasteGlyph(backdrop, x, y, s, p)
		x += s.Width() + font.Spacing
	}
	return x
}

// Burn stamps text in colour c; see BurnGlyph.
func (font *Font) Burn(backdrop *image.NRGBA, x, y int, text string, c color.NRGBA) int {
	for _, r := range text {
		s, ok := font.Glyph(r)
		if !ok {
			continue
		}
		BurnGlyph(backdrop, x, y, s, c)
		x += s.Width() + font.Spacing
	}
	return x
}
