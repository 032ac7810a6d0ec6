package render

import (
	"image"

	"github.com/cam-per/sludge/sludge/zbuf"
)

// Drawable is a blit deferred until Flush. It only references Src; the
// surface must stay alive until the frame is flushed.
type Drawable struct {
	Src  *image.NRGBA
	X, Y int
	Opts BlitOptions
}

func (d Drawable) Draw(dst *image.NRGBA) {
	Blit(dst, d.Src, d.X, d.Y, d.Opts)
}

// Compositor buckets one frame's drawables into the depth layers of the
// active depth map. Layer i starts with depth panel i; a drawable added at
// depth d joins the last layer whose threshold is <= d. Without a depth map
// there is a single layer and drawables keep their insertion order.
type Compositor struct {
	thresholds []int
	layers     [][]Drawable
}

func NewCompositor() *Compositor {
	return &Compositor{}
}

// Reset clears the frame and seeds one layer per panel of dm, each panel
// placed at (x, y). A nil or empty depth map resets to a single layer.
func (compositor *Compositor) Reset(dm *zbuf.DepthMap, x, y int, upsideDown bool) {
	compositor.Clear()
	if dm.Len() == 0 {
		return
	}
	compositor.thresholds = dm.Thresholds()
	compositor.grow(len(compositor.thresholds))

	var flip Flip
	if upsideDown {
		flip = FlipV
	}
	for i, panel := range dm.Panels {
		compositor.layers[i] = append(compositor.layers[i], Drawable{
			Src:  panel.Image,
			X:    x,
			Y:    y,
			Opts: BlitOptions{Flip: flip},
		})
	}
}

func (compositor *Compositor) grow(n int) {
	for len(compositor.layers) < n {
		compositor.layers = append(compositor.layers, nil)
	}
}

func (compositor *Compositor) Layers() int {
	if len(compositor.thresholds) == 0 {
		return 1
	}
	return len(compositor.thresholds)
}

func (compositor *Compositor) LayerFor(depth int) int {
	return LayerFor(compositor.thresholds, depth)
}

// LayerFor picks the last panel from 1 upward whose threshold is <= depth.
// Anything shallower than panel 1 belongs to panel 0.
func LayerFor(thresholds []int, depth int) int {
	layer := 0
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= depth {
			layer = i
		}
	}
	return layer
}

// Add queues d at the end of the layer for depth and returns the layer.
func (compositor *Compositor) Add(d Drawable, depth int) int {
	layer := compositor.LayerFor(depth)
	compositor.AddLayer(d, layer)
	return layer
}

// AddLayer queues d at the end of an explicit layer, clamped to the
// layers in use.
func (compositor *Compositor) AddLayer(d Drawable, layer int) {
	layer = min(max(layer, 0), compositor.Layers()-1)
	compositor.grow(layer + 1)
	compositor.layers[layer] = append(compositor.layers[layer], d)
}

// Drawables returns the queued drawables of one layer in draw order.
func (compositor *Compositor) Drawables(layer int) []Drawable {
	if layer < 0 || layer >= len(compositor.layers) {
		return nil
	}
	return compositor.layers[layer]
}

// Flush draws every layer in ascending order into dst, then clears.
func (compositor *Compositor) Flush(dst *image.NRGBA) {
	for _, layer := range compositor.layers {
		for _, d := range layer {
			d.Draw(dst)
		}
	}
	compositor.Clear()
}

func (compositor *Compositor) Clear() {
	for i := range compositor.layers {
		clear(compositor.layers[i])
		compositor.layers[i] = compositor.layers[i][:0]
	}
	compositor.thresholds = nil
}
