package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/cam-per/sludge/internal/logger"
)

func (a *app) exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write every sprite of a bank as PNG",
		ArgsUsage: "ID...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
			&cli.BoolFlag{Name: "font", Usage: "decode as font banks and export burn surfaces"},
			&cli.IntFlag{Name: "scale", Value: 1, Usage: "nearest-neighbour upscale factor"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids, err := resourceIDs(cmd)
			if err != nil {
				return err
			}
			scale := cmd.Int("scale")
			if scale < 1 {
				return fmt.Errorf("export: scale must be at least 1")
			}
			out := cmd.String("out")
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			for _, id := range ids {
				bank, err := a.loadBank(ctx, id, cmd.Bool("font"))
				if err != nil {
					return err
				}
				for i := range bank.Sprites {
					s := &bank.Sprites[i]
					name := filepath.Join(out, fmt.Sprintf("%d_%03d.png", id, i))
					if err := writePNG(name, s.Image, scale); err != nil {
						return err
					}
					if s.Burn != nil {
						name := filepath.Join(out, fmt.Sprintf("%d_%03d_burn.png", id, i))
						if err := writePNG(name, s.Burn, scale); err != nil {
							return err
						}
					}
				}
				logger.L(ctx).Info("exported bank",
					zap.Int("resource", id),
					zap.Int("sprites", bank.Total()),
					zap.String("dir", out))
			}
			return nil
		},
	}
}

// upscale enlarges img by an integer factor without smoothing.
func upscale(img *image.NRGBA, scale int) *image.NRGBA {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func writePNG(name string, img *image.NRGBA, scale int) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, upscale(img, scale)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
