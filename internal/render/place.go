package render

import (
	"image"
	"image/color"

	"github.com/cam-per/sludge/sludge/spr"
)

// MinScale is the scale at or below which a character is not drawn.
const MinScale = 0.05

type PlaceParams struct {
	X, Y   float64
	Scale  float64
	Floaty int
	Mirror bool

	CameraX, CameraY int
	// FixToScreen characters ignore the camera and are divided by Zoom
	// instead. Zero zoom is treated as 1.
	FixToScreen bool
	Zoom        float64
}

// Placement is where a sprite lands in frame coordinates.
type Placement struct {
	Rect        image.Rectangle
	Mirror      bool
	Rectangular bool
}

func (pl Placement) Options(tint color.NRGBA) BlitOptions {
	opt := BlitOptions{Width: pl.Rect.Dx(), Height: pl.Rect.Dy(), Tint: tint}
	if pl.Mirror {
		opt.Flip = FlipH
	}
	return opt
}

// Place computes the destination rectangle of s drawn at the logical
// position in p. It reports false when the sprite would be invisible.
func Place(s *spr.Sprite, p PlaceParams) (Placement, bool) {
	if s == nil || s.Image == nil || p.Scale <= MinScale {
		return Placement{}, false
	}
	w, h := float64(s.Width()), float64(s.Height())
	diffX := int(w * p.Scale)
	diffY := int(h * p.Scale)
	if diffX <= 0 || diffY <= 0 {
		return Placement{}, false
	}

	x, y := p.X, p.Y
	div := 1.0
	if p.FixToScreen {
		if p.Zoom > 0 {
			div = p.Zoom
		}
		x /= div
		y /= div
	} else {
		x -= float64(p.CameraX)
		y -= float64(p.CameraY)
	}

	xhot := float64(s.XHot)
	var hx float64
	switch {
	case s.XHot < 0 && p.Mirror:
		hx = w - xhot
	case s.XHot < 0:
		hx = xhot + 1
	case p.Mirror:
		hx = w - (xhot + 1)
	default:
		hx = xhot
	}
	hy := float64(s.YHot - p.Floaty)

	x1 := int(x - float64(int(hx*p.Scale/div)))
	y1 := int(y - float64(int(hy*p.Scale/div)))
	x2 := x1 + int(float64(diffX)/div)
	y2 := y1 + int(float64(diffY)/div)
	if x2 <= x1 || y2 <= y1 {
		return Placement{}, false
	}
	return Placement{Rect: image.Rect(x1, y1, x2, y2), Mirror: p.Mirror}, true
}
