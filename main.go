package main

import (
	"os"

	"github.com/climatestory/storyboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
