package main

import (
	"os"

	"github.com/ayusman/stroked/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
