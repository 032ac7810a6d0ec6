package render

import (
	"image"

	"github.com/cam-per/sludge/sludge/spr"
)

// HitTest reports whether pt lands on an opaque pixel of s drawn at pl.
// Rectangular placements hit anywhere inside their rectangle.
func HitTest(pt image.Point, s *spr.Sprite, pl Placement) bool {
	if s == nil || s.Image == nil || !pt.In(pl.Rect) {
		return false
	}
	if pl.Rectangular {
		return true
	}

	b := s.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	sx := w * (pt.X - pl.Rect.Min.X) / pl.Rect.Dx()
	sy := h * (pt.Y - pl.Rect.Min.Y) / pl.Rect.Dy()
	if pl.Mirror {
		sx = w - 1 - sx
	}
	sx = min(max(sx, 0), w-1)
	sy = min(max(sy, 0), h-1)
	return s.Image.NRGBAAt(b.Min.X+sx, b.Min.Y+sy).A != 0
}
