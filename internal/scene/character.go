package scene

import (
	"image"
	"image/color"

	"github.com/cam-per/sludge/internal/render"
	"github.com/cam-per/sludge/sludge/spr"
)

type Extra uint8

const (
	// NoZBuffer characters ignore the depth map and go to layer 0.
	NoZBuffer Extra = 1 << iota
	NoLight
	// FixToScreen characters are positioned on screen, not in the scene.
	FixToScreen
	// Rectangular characters hit-test against their bounding box.
	Rectangular
)

// Character is the live state the interpreter keeps for one on-screen
// person or object.
type Character struct {
	Name   string
	Bank   *spr.Bank
	Frame  int
	X, Y   float64
	Scale  float64
	Floaty int
	Mirror bool
	Extra  Extra

	Transparency byte
	ColourMix    byte
}

func (c *Character) sprite() (*spr.Sprite, bool) {
	if c == nil || c.Bank == nil {
		return nil, false
	}
	return c.Bank.Sprite(c.Frame)
}

// scenePoint is where the character's hotspot sits in scene coordinates.
func (ctx *Context) scenePoint(c *Character) (int, int) {
	if c.Extra&FixToScreen != 0 {
		return int(c.X) + ctx.cameraX, int(c.Y) + ctx.cameraY
	}
	return int(c.X), int(c.Y)
}

func (ctx *Context) place(c *Character, cameraX, cameraY int) (*spr.Sprite, render.Placement, bool) {
	s, ok := c.sprite()
	if !ok {
		return nil, render.Placement{}, false
	}
	pl, ok := render.Place(s, render.PlaceParams{
		X:           c.X,
		Y:           c.Y,
		Scale:       c.Scale,
		Floaty:      c.Floaty,
		Mirror:      c.Mirror,
		CameraX:     cameraX,
		CameraY:     cameraY,
		FixToScreen: c.Extra&FixToScreen != 0,
	})
	if !ok {
		return nil, render.Placement{}, false
	}
	pl.Rectangular = c.Extra&Rectangular != 0
	return s, pl, true
}

// light is the light map colour for c. Only hotspot mode samples the map;
// pixel mode and characters outside the map are lit white.
func (ctx *Context) light(c *Character) color.NRGBA {
	if c.Extra&NoLight != 0 || ctx.lightMap == nil || ctx.lightMode != LightMapHotspot {
		return render.White
	}
	x, y := ctx.scenePoint(c)
	if !(image.Point{X: x, Y: y}).In(ctx.lightMap.Bounds()) {
		return render.White
	}
	return ctx.lightMap.NRGBAAt(x, y)
}

// DrawColour is the tint a character is drawn with: the light colour
// faded by ColourMix, with Transparency taken off the alpha.
func (ctx *Context) DrawColour(c *Character) color.NRGBA {
	l := ctx.light(c)
	mix := 255 - uint32(c.ColourMix)
	return color.NRGBA{
		R: uint8(uint32(l.R) * mix / 255),
		G: uint8(uint32(l.G) * mix / 255),
		B: uint8(uint32(l.B) * mix / 255),
		A: 255 - c.Transparency,
	}
}
