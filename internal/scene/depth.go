package scene

import (
	"go.uber.org/zap"

	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/sludge/zbuf"
)

// RequestDepthMap builds depth map id against the current backdrop. Without
// a backdrop the request is parked until TryActivatePending succeeds.
func (ctx *Context) RequestDepthMap(id int) error {
	ctx.depth = nil
	if ctx.backdrop == nil {
		ctx.pending = id
		ctx.log.Debug("depth map deferred", zap.Int("resource", id))
		return nil
	}
	ctx.pending = noPending
	dm, err := ctx.buildDepthMap(id)
	if err != nil {
		return err
	}
	ctx.depth = dm
	return nil
}

// TryActivatePending builds a parked depth map once a backdrop exists. It
// reports whether a depth map was activated.
func (ctx *Context) TryActivatePending() (bool, error) {
	if ctx.pending == noPending || ctx.backdrop == nil {
		return false, nil
	}
	id := ctx.pending
	ctx.pending = noPending
	dm, err := ctx.buildDepthMap(id)
	if err != nil {
		return false, err
	}
	ctx.depth = dm
	return true, nil
}

// Pending is the parked depth map id, if any.
func (ctx *Context) Pending() (int, bool) {
	return ctx.pending, ctx.pending != noPending
}

func (ctx *Context) KillDepthMap() {
	ctx.depth = nil
	ctx.pending = noPending
}

func (ctx *Context) DepthMap() *zbuf.DepthMap { return ctx.depth }

func (ctx *Context) buildDepthMap(id int) (*zbuf.DepthMap, error) {
	rc, err := ctx.open(id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dm, err := zbuf.Decode(rc, ctx.backdrop)
	if err != nil {
		return nil, errs.WithResource(err, id)
	}
	dm.Resource = id
	ctx.log.Debug("depth map activated",
		zap.Int("resource", id),
		zap.Int("panels", dm.Len()),
		zap.Int("width", dm.Width),
		zap.Int("height", dm.Height))
	return dm, nil
}

// DrawDepthMap starts a frame: the compositor is reset to one layer per
// panel with every panel placed at (x, y).
func (ctx *Context) DrawDepthMap(x, y int, upsideDown bool) {
	ctx.compositor.Reset(ctx.depth, x, y, upsideDown)
}
