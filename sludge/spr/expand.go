package spr

import (
	"image"

	"github.com/cam-per/sludge/sludge/errs"
)

// expand converts sprite i from palette indices to NRGBA.
//
// Index 0 is transparent, but a transparent pixel keeps the colour of the
// most recent opaque pixel (or the first opaque pixel of the sprite, for a
// leading run). A sprite with no opaque pixel stays all zero.
func (decoder *Decoder) expand(i int) error {
	h := decoder.headers[i]
	data := decoder.data[i]
	palette := decoder.bank.Palette
	sprite := &decoder.bank.Sprites[i]

	sprite.XHot, sprite.YHot = h.xhot, h.yhot
	canvas := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	sprite.Image = canvas
	var burn *image.NRGBA
	if decoder.bank.IsFont {
		burn = image.NewNRGBA(canvas.Rect)
		sprite.Burn = burn
	}

	trans := -1
	for _, s := range data {
		if s != 0 {
			trans = int(s)
			break
		}
	}

	from := 0
	for y := 0; y < h.height; y++ {
		row := y * canvas.Stride
		for x := 0; x < h.width; x++ {
			s := int(data[from])
			from++
			if s >= palette.Len() {
				return errs.Format(op, "sprite %d: index %d outside palette of %d", i, s, palette.Len())
			}

			target := canvas.Pix[row+x*4 : row+x*4+4 : row+x*4+4]
			if s != 0 {
				r, g, b := palette.Grab(s)
				target[0], target[1], target[2], target[3] = r, g, b, 0xff
				trans = s
			} else if trans >= 0 {
				r, g, b := palette.Grab(trans)
				target[0], target[1], target[2], target[3] = r, g, b, 0
			}

			if burn != nil {
				target = burn.Pix[row+x*4 : row+x*4+4 : row+x*4+4]
				target[0], target[1], target[2] = 0xff, 0xff, 0xff
				if s != 0 {
					target[3], _, _ = palette.Grab(s)
				}
			}
		}
	}
	return nil
}
