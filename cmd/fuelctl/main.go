package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Renal37/fuel-orders/internal/utils"
)

func main() {
	ctx, cancel := utils.HandleTerminationProcess(context.Background(), nil)
	defer cancel()

	if err := newApp(os.Stdin, os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
