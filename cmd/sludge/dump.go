package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cam-per/sludge/utils"
)

func (a *app) dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "hex dump a raw resource",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "offset", Usage: "first byte to dump"},
			&cli.Int64Flag{Name: "length", Usage: "bytes to dump, 0 for the rest"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids, err := resourceIDs(cmd)
			if err != nil {
				return err
			}
			if len(ids) != 1 {
				return fmt.Errorf("dump: expected one resource id")
			}
			src, err := a.source(ctx)
			if err != nil {
				return err
			}
			data, err := src.ReadAll(ids[0])
			if err != nil {
				return err
			}

			offset, length := cmd.Int64("offset"), cmd.Int64("length")
			if offset < 0 || offset > int64(len(data)) {
				return fmt.Errorf("dump: offset %d outside resource of %d bytes", offset, len(data))
			}
			if length <= 0 {
				length = int64(len(data)) - offset
			}
			return utils.HexDump(os.Stdout, bytes.NewReader(data), offset, length)
		},
	}
}
