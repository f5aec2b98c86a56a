package main

import (
	"os"

	"github.com/rustyeddy/spotsim/cmd/spotsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
