package main

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/cam-per/sludge/internal/logger"
	"github.com/cam-per/sludge/internal/render"
	"github.com/cam-per/sludge/internal/rendering"
	"github.com/cam-per/sludge/internal/scene"
	"github.com/cam-per/sludge/internal/scenefile"
	"github.com/cam-per/sludge/internal/term"
	"github.com/cam-per/sludge/utils"
)

type stage struct {
	ctx   *scene.Context
	chars []*scene.Character
}

func (st *stage) hover(pt image.Point) string {
	if c := st.ctx.CharacterAt(pt, st.chars); c != nil {
		return fmt.Sprintf("(%d,%d) %s", pt.X, pt.Y, c.Name)
	}
	return fmt.Sprintf("(%d,%d)", pt.X, pt.Y)
}

// fontTable is bytes 32..255, the glyph order of banks without an explicit
// character table.
func fontTable() []byte {
	table := make([]byte, 0, 224)
	for b := 32; b < 256; b++ {
		table = append(table, byte(b))
	}
	return table
}

func (a *app) buildStage(ctx context.Context, path string) (*stage, error) {
	l := logger.L(ctx)
	sf, err := scenefile.Load(path)
	if err != nil {
		return nil, err
	}
	src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}

	w, h := sf.Width, sf.Height
	if w == 0 || h == 0 {
		w, h = a.cfg.Render.SceneWidth, a.cfg.Render.SceneHeight
	}
	modeName := sf.LightMapMode
	if modeName == "" {
		modeName = a.cfg.Render.LightMapMode
	}
	mode, err := scene.ParseLightMapMode(modeName)
	if err != nil {
		return nil, err
	}

	sc := scene.New(src, scene.Options{Logger: l, Width: w, Height: h, LightMapMode: mode})
	dir := filepath.Dir(path)

	var backdrop *image.NRGBA
	if sf.Backdrop != "" {
		if backdrop, err = loadNRGBA(filepath.Join(dir, sf.Backdrop)); err != nil {
			return nil, err
		}
	} else {
		backdrop = solid(w, h, sf.Colour)
	}

	cm, ok := utils.Charmap(a.cfg.Display.FontCharset)
	if !ok {
		return nil, fmt.Errorf("unknown font charset: %s", a.cfg.Display.FontCharset)
	}
	for _, t := range sf.Texts {
		bank, err := sc.LoadSpriteBank(t.Font, true)
		if err != nil {
			return nil, err
		}
		font := render.NewFont(bank, t.Table, t.Spacing)
		if t.Table == "" {
			font = render.NewFontCharmap(bank, fontTable(), cm, t.Spacing)
		}
		if t.Mode == "burn" {
			font.Burn(backdrop, t.X, t.Y, t.Text, t.Colour)
		} else {
			font.Paste(backdrop, t.X, t.Y, t.Text)
		}
	}

	if sf.ZBuffer >= 0 {
		if err := sc.RequestDepthMap(sf.ZBuffer); err != nil {
			return nil, err
		}
	}
	if err := sc.SetBackdrop(backdrop); err != nil {
		return nil, err
	}
	if sf.LightMap != "" {
		light, err := loadNRGBA(filepath.Join(dir, sf.LightMap))
		if err != nil {
			return nil, err
		}
		sc.SetLightMap(light, mode)
	}
	sc.SetCamera(sf.CameraX, sf.CameraY)

	st := &stage{ctx: sc}
	for _, c := range sf.Characters {
		bank, err := sc.LoadSpriteBank(c.Bank, false)
		if err != nil {
			return nil, err
		}
		st.chars = append(st.chars, &scene.Character{
			Name:         c.Name,
			Bank:         bank,
			Frame:        c.Frame,
			X:            c.X,
			Y:            c.Y,
			Scale:        c.Scale,
			Floaty:       c.Floaty,
			Mirror:       c.Mirror,
			Extra:        extra(c),
			Transparency: byte(c.Transparency),
			ColourMix:    byte(c.ColourMix),
		})
	}
	sc.CompositeFrame(st.chars)
	l.Info("scene composed",
		zap.String("scene", path),
		zap.Int("characters", len(st.chars)),
		zap.Int("panels", sc.DepthMap().Len()))
	return st, nil
}

func extra(c scenefile.Character) scene.Extra {
	var e scene.Extra
	if c.NoZBuffer {
		e |= scene.NoZBuffer
	}
	if c.NoLight {
		e |= scene.NoLight
	}
	if c.FixToScreen {
		e |= scene.FixToScreen
	}
	if c.Rectangular {
		e |= scene.Rectangular
	}
	return e
}

func (a *app) composeCommand() *cli.Command {
	return &cli.Command{
		Name:      "compose",
		Usage:     "render a scene description to PNG",
		ArgsUsage: "SCENE.ini",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "frame.png", Usage: "output file"},
			&cli.IntFlag{Name: "scale", Value: 1, Usage: "nearest-neighbour upscale factor"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "a scene file")
			if err != nil {
				return err
			}
			if cmd.Int("scale") < 1 {
				return fmt.Errorf("compose: scale must be at least 1")
			}
			st, err := a.buildStage(ctx, path)
			if err != nil {
				return err
			}
			return writePNG(cmd.String("out"), st.ctx.Target(), cmd.Int("scale"))
		},
	}
}

func (a *app) previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "show a scene in the terminal",
		ArgsUsage: "SCENE.ini",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "a scene file")
			if err != nil {
				return err
			}
			st, err := a.buildStage(ctx, path)
			if err != nil {
				return err
			}
			presenter, err := term.NewTerminal()
			if err != nil {
				return err
			}
			defer presenter.Close()
			presenter.SetStatus(path + "  q: quit")
			presenter.Run(st.ctx.Target(), st.hover)
			return nil
		},
	}
}

func (a *app) viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "show a scene in a window",
		ArgsUsage: "SCENE.ini",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "a scene file")
			if err != nil {
				return err
			}
			st, err := a.buildStage(ctx, path)
			if err != nil {
				return err
			}
			frame := st.ctx.Target()
			title := filepath.Base(path)
			presenter, err := rendering.NewPresenter(title, frame.Bounds().Dx(), frame.Bounds().Dy(), a.cfg.Display.WindowScale)
			if err != nil {
				return err
			}
			defer presenter.Close()
			l := logger.L(ctx)
			presenter.Run(frame, title, func(pt image.Point) string {
				s := st.hover(pt)
				l.Debug("hover", zap.Int("x", pt.X), zap.Int("y", pt.Y), zap.String("at", s))
				return s
			})
			return nil
		},
	}
}
