package main

import (
	"os"

	"github.com/joonhok/cafeloop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
