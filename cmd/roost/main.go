package main

import (
	"os"

	"github.com/kvasern/roost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
