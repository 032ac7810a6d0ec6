package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sludge:", err)
		os.Exit(1)
	}
}
