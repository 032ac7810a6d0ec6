// Package render composites sprites and depth panels into a frame.
//
// Everything here works on *image.NRGBA surfaces with straight alpha and
// copies pixels with a binary mask: a source pixel whose (tinted) alpha is
// zero leaves the destination alone, any other pixel replaces it. There is
// no partial-alpha blending, matching the hard edges of palette art.
package render

import (
	"image"
	"image/color"
)

type Flip uint8

const (
	FlipH Flip = 1 << iota
	FlipV

	FlipNone Flip = 0
)

// White is the neutral tint.
var White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

type BlitOptions struct {
	Flip Flip
	// Width and Height scale the source to that destination size. Zero
	// keeps the source size on that axis.
	Width, Height int
	// Tint multiplies every sampled channel. The zero value, {0,0,0,0},
	// draws untinted rather than invisible.
	Tint color.NRGBA
	// Clip further restricts the destination rectangle.
	Clip *image.Rectangle
}

func (opt BlitOptions) tint() color.NRGBA {
	if opt.Tint == (color.NRGBA{}) {
		return White
	}
	return opt.Tint
}

// Blit copies src into dst with its top-left corner at (x, y). Scaling is
// nearest-neighbour. Rectangles that miss dst or the clip are a no-op.
func Blit(dst, src *image.NRGBA, x, y int, opt BlitOptions) {
	if dst == nil || src == nil {
		return
	}
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 {
		return
	}
	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = sw
	}
	if h <= 0 {
		h = sh
	}

	rect := image.Rect(x, y, x+w, y+h).Intersect(dst.Bounds())
	if opt.Clip != nil {
		rect = rect.Intersect(*opt.Clip)
	}
	if rect.Empty() {
		return
	}

	t := opt.tint()
	tr, tg, tb, ta := uint32(t.R), uint32(t.G), uint32(t.B), uint32(t.A)
	for dy := rect.Min.Y; dy < rect.Max.Y; dy++ {
		sy := (dy - y) * sh / h
		if opt.Flip&FlipV != 0 {
			sy = sh - 1 - sy
		}
		srow := src.PixOffset(sb.Min.X, sb.Min.Y+sy)
		doff := dst.PixOffset(rect.Min.X, dy)
		for dx := rect.Min.X; dx < rect.Max.X; dx, doff = dx+1, doff+4 {
			sx := (dx - x) * sw / w
			if opt.Flip&FlipH != 0 {
				sx = sw - 1 - sx
			}
			s := src.Pix[srow+sx*4 : srow+sx*4+4 : srow+sx*4+4]
			a := uint32(s[3]) * ta / 0xff
			if a == 0 {
				continue
			}
			d := dst.Pix[doff : doff+4 : doff+4]
			d[0] = uint8(uint32(s[0]) * tr / 0xff)
			d[1] = uint8(uint32(s[1]) * tg / 0xff)
			d[2] = uint8(uint32(s[2]) * tb / 0xff)
			d[3] = uint8(a)
		}
	}
}
