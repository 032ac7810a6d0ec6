package scene

import (
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/cam-per/sludge/internal/render"
)

// CompositeFrame draws the backdrop, the depth panels and chars into the
// target, scrolled by the camera.
func (ctx *Context) CompositeFrame(chars []*Character) {
	clear(ctx.target.Pix)
	if ctx.backdrop != nil {
		render.Blit(ctx.target, ctx.backdrop, -ctx.cameraX, -ctx.cameraY, render.BlitOptions{})
	}
	ctx.DrawDepthMap(-ctx.cameraX, -ctx.cameraY, false)

	n := 0
	for _, c := range chars {
		if ctx.queue(c, ctx.cameraX, ctx.cameraY) {
			n++
		}
	}
	layers := ctx.compositor.Layers()
	ctx.compositor.Flush(ctx.target)
	ctx.log.Debug("frame composited", zap.Int("layers", layers), zap.Int("characters", n))
}

func (ctx *Context) queue(c *Character, cameraX, cameraY int) bool {
	s, pl, ok := ctx.place(c, cameraX, cameraY)
	if !ok {
		return false
	}
	tint := ctx.DrawColour(c)
	if tint.A == 0 {
		return false
	}
	d := render.Drawable{
		Src:  s.Image,
		X:    pl.Rect.Min.X,
		Y:    pl.Rect.Min.Y,
		Opts: pl.Options(tint),
	}
	if c.Extra&NoZBuffer != 0 {
		ctx.compositor.AddLayer(d, 0)
	} else {
		_, y := ctx.scenePoint(c)
		ctx.compositor.Add(d, y)
	}
	return true
}

// layerOf is the layer c would be queued in this frame.
func (ctx *Context) layerOf(c *Character) int {
	if c.Extra&NoZBuffer != 0 || ctx.depth == nil {
		return 0
	}
	_, y := ctx.scenePoint(c)
	return render.LayerFor(ctx.depth.Thresholds(), y)
}

// HitTest reports whether pt, in frame coordinates, is over an opaque
// pixel of c as currently placed.
func (ctx *Context) HitTest(pt image.Point, c *Character) bool {
	s, pl, ok := ctx.place(c, ctx.cameraX, ctx.cameraY)
	if !ok {
		return false
	}
	return render.HitTest(pt, s, pl)
}

// CharacterAt returns the character drawn topmost at pt, or nil.
func (ctx *Context) CharacterAt(pt image.Point, chars []*Character) *Character {
	var (
		top   *Character
		layer = -1
	)
	for _, c := range chars {
		if !ctx.HitTest(pt, c) {
			continue
		}
		if l := ctx.layerOf(c); l >= layer {
			top, layer = c, l
		}
	}
	return top
}

// PasteCharacter draws c into the backdrop in scene coordinates, behind any
// depth panel that covers it, then rebuilds the depth map.
func (ctx *Context) PasteCharacter(c *Character) error {
	if ctx.backdrop == nil {
		return nil
	}
	baked := image.NewNRGBA(ctx.backdrop.Bounds())
	draw.Copy(baked, baked.Bounds().Min, ctx.backdrop, ctx.backdrop.Bounds(), draw.Src, nil)

	ctx.compositor.Reset(ctx.depth, 0, 0, false)
	ok := ctx.queue(c, 0, 0)
	ctx.compositor.Flush(baked)
	if !ok {
		return nil
	}
	ctx.log.Debug("character pasted", zap.String("name", c.Name))
	return ctx.SetBackdrop(baked)
}
