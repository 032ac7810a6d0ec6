// Package pal holds the indexed colour tables of SLUDGE sprite banks.
//
// Index 0 is reserved: run-coded sprite data uses it for "no colour", so a
// table decoded from a bank leaves it black and never assigns it.
package pal

import (
	"image/color"
)

type Palette struct {
	r, g, b  []byte
	packed   []uint16
	original color.NRGBA
}

func New(n int) *Palette {
	p := &Palette{}
	p.Reserve(n)
	return p
}

// Reserve discards any existing entries and allocates n black ones.
func (p *Palette) Reserve(n int) {
	if n < 0 {
		n = 0
	}
	p.r = make([]byte, n)
	p.g = make([]byte, n)
	p.b = make([]byte, n)
	p.packed = make([]uint16, n)
	p.original = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

func (p *Palette) Len() int { return len(p.r) }

func (p *Palette) Set(i int, r, g, b byte) {
	p.r[i], p.g[i], p.b[i] = r, g, b
	p.packed[i] = RGB565(r, g, b)
}

func (p *Palette) Grab(i int) (r, g, b byte) {
	return p.r[i], p.g[i], p.b[i]
}

// Packed returns the entry in the legacy 16-bit pixel format.
func (p *Palette) Packed(i int) uint16 { return p.packed[i] }

func (p *Palette) RGBA(i int) color.NRGBA {
	return color.NRGBA{R: p.r[i], G: p.g[i], B: p.b[i], A: 0xff}
}

func (p *Palette) Colors() color.Palette {
	out := make(color.Palette, p.Len())
	for i := range out {
		out[i] = p.RGBA(i)
	}
	return out
}

// Original is the tint used when a font glyph is pasted without an explicit
// colour. Freshly reserved tables use opaque white.
func (p *Palette) Original() color.NRGBA     { return p.original }
func (p *Palette) SetOriginal(c color.NRGBA) { p.original = c }

func RGB565(r, g, b byte) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func ExpandRGB565(pel uint16) (r, g, b byte) {
	r5 := byte(pel >> 11 & 0x1f)
	g6 := byte(pel >> 5 & 0x3f)
	b5 := byte(pel & 0x1f)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}
