package scene

import (
	"errors"
	"io"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/cam-per/sludge/internal/render"
	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/sludge/spr"
)

// LoadSpriteBank returns the bank for id, decoding it on first use.
func (ctx *Context) LoadSpriteBank(id int, isFont bool) (*spr.Bank, error) {
	if cached, ok := ctx.banks[id]; ok {
		ctx.log.Debug("bank cache hit", zap.Int("resource", id))
		return cached.bank, nil
	}
	bank, err := ctx.decodeBank(id, isFont)
	if err != nil {
		return nil, err
	}
	ctx.banks[id] = &cachedBank{bank: bank, isFont: isFont}
	return bank, nil
}

// ReloadAll decodes every cached bank again and swaps the result into the
// existing *spr.Bank values, so characters holding them see the new
// surfaces.
func (ctx *Context) ReloadAll() error {
	for _, id := range slices.Sorted(maps.Keys(ctx.banks)) {
		cached := ctx.banks[id]
		bank, err := ctx.decodeBank(id, cached.isFont)
		if err != nil {
			return err
		}
		*cached.bank = *bank
		ctx.log.Debug("bank reloaded", zap.Int("resource", id))
	}
	return nil
}

func (ctx *Context) ForgetBank(id int) {
	delete(ctx.banks, id)
}

// Banks lists the cached resource ids in ascending order.
func (ctx *Context) Banks() []int {
	return slices.Sorted(maps.Keys(ctx.banks))
}

func (ctx *Context) decodeBank(id int, isFont bool) (*spr.Bank, error) {
	rc, err := ctx.open(id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	bank, err := spr.Decode(rc, isFont)
	if err != nil {
		return nil, errs.WithResource(err, id)
	}
	ctx.log.Debug("bank decoded",
		zap.Int("resource", id),
		zap.Uint8("version", uint8(bank.Version)),
		zap.Int("sprites", bank.Total()),
		zap.Bool("font", isFont))
	return bank, nil
}

// SetFont loads a font bank and maps table's characters to its sprites.
func (ctx *Context) SetFont(id int, table string, spacing int) error {
	bank, err := ctx.LoadSpriteBank(id, true)
	if err != nil {
		return err
	}
	ctx.font = render.NewFont(bank, table, spacing)
	return nil
}

func (ctx *Context) Font() *render.Font { return ctx.font }

// open resolves id through the source. Failures that are not already
// classified become ResourceErrors.
func (ctx *Context) open(id int) (io.ReadCloser, error) {
	if ctx.src == nil {
		return nil, errs.Resource(id, errors.New("no resource source"))
	}
	rc, err := ctx.src.Open(id)
	if err != nil {
		var re *errs.ResourceError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, errs.Resource(id, err)
	}
	return rc, nil
}
