// Package scene is the render context: the bank cache, the current
// backdrop, light map and depth map, the camera and the frame target.
//
// A Context is not safe for concurrent use. Reloading banks while a frame
// is being composited is the caller's problem.
package scene

import (
	"fmt"
	"image"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cam-per/sludge/internal/render"
	"github.com/cam-per/sludge/sludge/spr"
	"github.com/cam-per/sludge/sludge/zbuf"
)

// Source hands out the bytes of a resource by id.
type Source interface {
	Open(id int) (io.ReadCloser, error)
}

type LightMapMode int

const (
	LightMapNone LightMapMode = iota
	LightMapHotspot
	LightMapPixel
)

var lightMapModes = [...]string{"none", "hotspot", "pixel"}

func (mode LightMapMode) String() string {
	if mode < 0 || int(mode) >= len(lightMapModes) {
		return fmt.Sprintf("LightMapMode(%d)", int(mode))
	}
	return lightMapModes[mode]
}

func ParseLightMapMode(s string) (LightMapMode, error) {
	for i, name := range lightMapModes {
		if strings.EqualFold(s, name) {
			return LightMapMode(i), nil
		}
	}
	return LightMapNone, fmt.Errorf("scene: unknown light map mode %q", s)
}

type Options struct {
	Logger *zap.Logger
	// Width and Height size the frame target.
	Width, Height int
	LightMapMode  LightMapMode
}

const noPending = -1

type Context struct {
	src Source
	log *zap.Logger

	banks map[int]*cachedBank
	font  *render.Font

	backdrop  *image.NRGBA
	lightMap  *image.NRGBA
	lightMode LightMapMode

	depth   *zbuf.DepthMap
	pending int

	cameraX, cameraY int

	target     *image.NRGBA
	compositor *render.Compositor
}

type cachedBank struct {
	bank   *spr.Bank
	isFont bool
}

func New(src Source, opts Options) *Context {
	l := opts.Logger
	if l == nil {
		l = zap.L()
	}
	return &Context{
		src:        src,
		log:        l.Named("scene"),
		banks:      make(map[int]*cachedBank),
		lightMode:  opts.LightMapMode,
		pending:    noPending,
		target:     image.NewNRGBA(image.Rect(0, 0, max(opts.Width, 0), max(opts.Height, 0))),
		compositor: render.NewCompositor(),
	}
}

// Target is the frame written by CompositeFrame.
func (ctx *Context) Target() *image.NRGBA { return ctx.target }

func (ctx *Context) SetCamera(x, y int) {
	ctx.cameraX, ctx.cameraY = x, y
}

func (ctx *Context) Camera() (x, y int) { return ctx.cameraX, ctx.cameraY }

// SceneSize is the size of the backdrop, or zero without one.
func (ctx *Context) SceneSize() (w, h int) {
	if ctx.backdrop == nil {
		return 0, 0
	}
	b := ctx.backdrop.Bounds()
	return b.Dx(), b.Dy()
}

func (ctx *Context) Backdrop() *image.NRGBA { return ctx.backdrop }

// SetBackdrop replaces the backdrop. An active depth map is rebuilt from
// the new pixels and a pending one is activated.
func (ctx *Context) SetBackdrop(img *image.NRGBA) error {
	ctx.backdrop = img
	if img == nil {
		if ctx.depth != nil {
			ctx.pending = ctx.depth.Resource
			ctx.depth = nil
		}
		return nil
	}
	if ctx.depth != nil {
		id := ctx.depth.Resource
		dm, err := ctx.buildDepthMap(id)
		if err != nil {
			ctx.depth = nil
			return err
		}
		ctx.depth = dm
		ctx.log.Debug("depth map rebuilt", zap.Int("resource", id))
	}
	_, err := ctx.TryActivatePending()
	return err
}

func (ctx *Context) SetLightMap(img *image.NRGBA, mode LightMapMode) {
	ctx.lightMap = img
	ctx.lightMode = mode
}

func (ctx *Context) LightMap() (*image.NRGBA, LightMapMode) {
	return ctx.lightMap, ctx.lightMode
}
