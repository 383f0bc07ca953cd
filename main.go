package main

import (
	"os"

	"github.com/flexfleet/flexdispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
