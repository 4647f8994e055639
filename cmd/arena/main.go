package main

import (
	"os"

	"github.com/bracketlab/arena/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
