package main

import (
	"os"

	"github.com/pixelshop-dev/pixelshop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
