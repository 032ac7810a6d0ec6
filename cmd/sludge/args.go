package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

func resourceIDs(cmd *cli.Command) ([]int, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: expected at least one resource id", cmd.Name)
	}
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("%s: bad resource id %q", cmd.Name, arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func oneArg(cmd *cli.Command, what string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected %s", cmd.Name, what)
	}
	return cmd.Args().First(), nil
}
