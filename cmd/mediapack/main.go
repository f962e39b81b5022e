package main

import (
	"os"

	"github.com/avrel/mediapack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
