package main

import (
	"os"

	"github.com/ligoview/ligoview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
