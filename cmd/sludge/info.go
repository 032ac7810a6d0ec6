package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/sludge/spr"
)

func (a *app) infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "describe sprite banks",
		ArgsUsage: "ID...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "font", Usage: "decode as font banks"},
			&cli.BoolFlag{Name: "sprites", Aliases: []string{"s"}, Usage: "list every sprite"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids, err := resourceIDs(cmd)
			if err != nil {
				return err
			}
			for _, id := range ids {
				bank, err := a.loadBank(ctx, id, cmd.Bool("font"))
				if err != nil {
					return err
				}
				printBank(os.Stdout, id, bank, cmd.Bool("sprites"))
			}
			return nil
		},
	}
}

func (a *app) loadBank(ctx context.Context, id int, isFont bool) (*spr.Bank, error) {
	src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := src.Open(id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	bank, err := spr.Decode(rc, isFont)
	if err != nil {
		return nil, errs.WithResource(err, id)
	}
	return bank, nil
}

func printBank(w io.Writer, id int, bank *spr.Bank, sprites bool) {
	colours := 0
	if bank.Palette != nil {
		colours = bank.Palette.Len()
	}
	pixels := 0
	for i := range bank.Sprites {
		pixels += bank.Sprites[i].Width() * bank.Sprites[i].Height()
	}
	fmt.Fprintf(w, "resource %d: version %d, %d sprites, font %v, %d palette entries, %s pixels in %s\n",
		id, bank.Version, bank.Total(), bank.IsFont, colours,
		humanize.Comma(int64(pixels)), humanize.IBytes(uint64(bank.Bytes())))
	if !sprites {
		return
	}
	for i := range bank.Sprites {
		s := &bank.Sprites[i]
		fmt.Fprintf(w, "  %4d: %dx%d hotspot (%d,%d)\n", i, s.Width(), s.Height(), s.XHot, s.YHot)
	}
}
